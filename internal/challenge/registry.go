package challenge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
)

// Strategy builds one challenge of a fixed kind. Strategies may mutate the
// session (narrative cursor, thematic words, pending riddle); the orchestrator
// persists those mutations before returning.
type Strategy interface {
	Kind() string
	Build(ctx context.Context, sess *session.Session) (*Challenge, error)
}

// PromptHistory supplies recently issued prompts so generation can avoid
// repeating itself. Implemented by the submission history repository.
type PromptHistory interface {
	RecentPrompts(ctx context.Context, limit int) ([]string, error)
}

// Registry is the fixed lookup table of challenge kinds. Adding a kind means
// registering one more strategy and listing it under a mode.
type Registry struct {
	strategies map[string]Strategy
	modeKinds  map[string][]string
}

// NewRegistry wires every strategy against the shared generation capability,
// the riddle corpus and the curated image directory. Image mode is enabled
// only when the directory actually holds images, so players are never rotated
// into a mode that cannot produce a challenge.
func NewRegistry(gen genai.Generator, corpus *Corpus, imageDir string, history PromptHistory) *Registry {
	strategies := []Strategy{
		&proverbStrategy{gen: gen, history: history},
		&phraseStrategy{gen: gen, history: history},
		&imageStrategy{gen: gen, dir: imageDir},
		&storyStrategy{gen: gen},
		&riddleStrategy{corpus: corpus},
	}

	modeKinds := map[string][]string{
		session.ModeTranslation: {KindProverb, KindPhrase},
		session.ModeStory:       {KindStory},
		session.ModeSakwe:       {KindRiddleIntro},
	}
	if hasImages(imageDir) {
		modeKinds[session.ModeImage] = []string{KindImage}
	}

	r := &Registry{
		strategies: make(map[string]Strategy, len(strategies)),
		modeKinds:  modeKinds,
	}
	for _, s := range strategies {
		r.strategies[s.Kind()] = s
	}
	return r
}

// Modes lists the enabled game modes in the canonical order.
func (r *Registry) Modes() []string {
	modes := make([]string, 0, len(r.modeKinds))
	for _, mode := range session.Modes {
		if _, ok := r.modeKinds[mode]; ok {
			modes = append(modes, mode)
		}
	}
	return modes
}

// StrategyFor resolves the handler for a challenge kind.
func (r *Registry) StrategyFor(kind string) (Strategy, bool) {
	s, ok := r.strategies[kind]
	return s, ok
}

// KindsFor lists the challenge kinds enabled for a game mode.
func (r *Registry) KindsFor(mode string) ([]string, error) {
	kinds, ok := r.modeKinds[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return kinds, nil
}

var markdownNoise = regexp.MustCompile(`#+\s*|\*+\s*|` + "```[a-z]*")

// parsePair splits a delimiter-separated generation result into its two
// halves. Markdown decoration is stripped first; anything that does not match
// the expected shape is a retriable generation failure, never a crash.
func parsePair(raw string) (left, right string, err error) {
	cleaned := strings.TrimSpace(markdownNoise.ReplaceAllString(raw, ""))
	parts := strings.SplitN(cleaned, "|", 3)
	if len(parts) < 2 {
		return "", "", &genai.GenerationError{
			Backend: "parser",
			Err:     fmt.Errorf("expected 'left|right' record, got %q", truncate(raw, 120)),
		}
	}
	left = strings.TrimSpace(parts[0])
	right = strings.TrimSpace(parts[1])
	if left == "" || right == "" {
		return "", "", &genai.GenerationError{
			Backend: "parser",
			Err:     fmt.Errorf("empty field in record %q", truncate(raw, 120)),
		}
	}
	return left, right, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func levelName(difficulty int) string {
	switch difficulty {
	case 1:
		return "beginner"
	case 3:
		return "advanced"
	default:
		return "intermediate"
	}
}

// avoidClause renders a prompt suffix steering generation away from recently
// issued challenges. Best-effort: history errors are ignored.
func avoidClause(ctx context.Context, history PromptHistory) string {
	if history == nil {
		return ""
	}
	recent, err := history.RecentPrompts(ctx, 20)
	if err != nil || len(recent) == 0 {
		return ""
	}
	return " Avoid these recently used phrases: " + strings.Join(recent, "; ") + "."
}
