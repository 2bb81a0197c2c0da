// Package challenge holds the challenge registry, the per-kind generation
// strategies and the orchestrator that drives the gameplay loop.
package challenge

import "errors"

// Challenge kind constants. The names follow the game's Kinyarwanda modes:
// "gusakuza" is the riddle game, opened with the call "Sakwe sakwe!".
const (
	KindProverb     = "kin_to_eng_proverb"
	KindPhrase      = "eng_to_kin_phrase"
	KindThemed      = "themed_translation"
	KindImage       = "image_description"
	KindStory       = "story_translation"
	KindRiddle      = "gusakuza"
	KindRiddleIntro = "gusakuza_init"
)

// Fixed per-kind score rewards.
const (
	rewardTranslation = 10
	rewardRiddle      = 15
)

// Sentinel errors surfaced to the request layer.
var (
	// ErrUnknownChallenge marks a missing, expired or already consumed
	// challenge id. It never mutates score or lives.
	ErrUnknownChallenge = errors.New("unknown or already consumed challenge")

	// ErrInvalidState marks an operation invoked outside the multi-step
	// state machine's legal transitions.
	ErrInvalidState = errors.New("operation not valid in current game state")

	// ErrHintUnavailable marks a hint request for a kind without hints.
	ErrHintUnavailable = errors.New("hints are not available for this challenge")

	// ErrUnknownMode marks a request for a game mode that does not exist.
	ErrUnknownMode = errors.New("unknown game mode")
)

// Challenge is one outstanding question, stored server-side with its hidden
// answer. It is valid for exactly one evaluation or one reveal.
type Challenge struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Prompt   string `json:"prompt"`
	Answer   string `json:"answer"`
	Context  string `json:"context,omitempty"`
	Hint     string `json:"hint,omitempty"`
	HintUsed bool   `json:"hint_used"`
	Reward   int    `json:"reward"`
}

// View is the redacted client-facing projection; it never carries the answer.
type View struct {
	ChallengeID string `json:"challenge_id"`
	Kind        string `json:"kind"`
	Prompt      string `json:"prompt"`
	Context     string `json:"context,omitempty"`
}

// View returns the redacted projection of the challenge.
func (c *Challenge) View() View {
	return View{
		ChallengeID: c.ID,
		Kind:        c.Kind,
		Prompt:      c.Prompt,
		Context:     c.Context,
	}
}

func rewardFor(kind string) int {
	if kind == KindRiddle {
		return rewardRiddle
	}
	return rewardTranslation
}
