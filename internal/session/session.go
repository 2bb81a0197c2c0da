// Package session persists per-player game state keyed by an opaque session
// identifier. The orchestration layer serializes load -> mutate -> save per
// request; concurrent writers for the same id are last-write-wins.
package session

// MaxLives is the number of lives a fresh or reset session holds.
const MaxLives = 3

// Game mode constants.
const (
	ModeTranslation = "translation"
	ModeStory       = "story"
	ModeSakwe       = "sakwe"
	ModeImage       = "image"
)

// Modes lists every playable game mode.
var Modes = []string{ModeTranslation, ModeStory, ModeSakwe, ModeImage}

// PhaseIntro marks a sakwe session waiting for the player to accept the
// riddle. Revealing clears PendingRiddle, so no separate phase exists for it.
const PhaseIntro = "intro"

// Narrative is the serialized story context used by story mode.
type Narrative struct {
	Title    string   `json:"title"`
	Chapters []string `json:"chapters"`
	Chapter  int      `json:"chapter"`
}

// Exhausted reports whether every chapter has been consumed.
func (n *Narrative) Exhausted() bool {
	return n.Chapter >= len(n.Chapters)
}

// PendingRiddle is the hidden payload of an in-progress sakwe challenge. The
// riddle text and answer stay server-side until the player triggers reveal.
type PendingRiddle struct {
	ChallengeID string `json:"challenge_id"`
	Riddle      string `json:"riddle"`
	Answer      string `json:"answer"`
	Phase       string `json:"phase"`
}

// Session is the durable per-player state.
type Session struct {
	ID            string         `json:"id"`
	Score         int            `json:"score"`
	Lives         int            `json:"lives"`
	GameMode      string         `json:"game_mode"`
	Difficulty    int            `json:"difficulty"`
	Narrative     *Narrative     `json:"narrative,omitempty"`
	PendingRiddle *PendingRiddle `json:"pending_riddle,omitempty"`
	ThematicWords []string       `json:"thematic_words,omitempty"`
}

// NewSession returns a fresh session with default score and lives.
func NewSession(id string) *Session {
	return &Session{
		ID:         id,
		Score:      0,
		Lives:      MaxLives,
		GameMode:   ModeTranslation,
		Difficulty: 1,
	}
}

// Reset zeroes the score and restores full lives in place. Narrative and
// pending riddle state survive a game over; only the counters reset.
func (s *Session) Reset() {
	s.Score = 0
	s.Lives = MaxLives
}
