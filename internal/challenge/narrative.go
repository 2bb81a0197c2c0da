package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
)

// storyStrategy drives narrative mode. Without an active narrative it first
// creates a full story (title + ordered chapters) in one generation call and
// stores it on the session; each subsequent challenge consumes the current
// chapter as grounding context for a second generation call. An exhausted
// narrative is cleared so the next challenge starts a new story.
type storyStrategy struct {
	gen genai.Generator
}

func (s *storyStrategy) Kind() string { return KindStory }

func (s *storyStrategy) Build(ctx context.Context, sess *session.Session) (*Challenge, error) {
	if sess.Narrative == nil || sess.Narrative.Exhausted() {
		narrative, err := s.createNarrative(ctx)
		if err != nil {
			return nil, err
		}
		sess.Narrative = narrative
	}

	chapter := sess.Narrative.Chapters[sess.Narrative.Chapter]
	prompt := fmt.Sprintf(
		"Based on this chapter of a story: '%s', create a language challenge. "+
			"The challenge should be a phrase from the story to translate from English to Kinyarwanda. "+
			"The output should be in the format 'English phrase|Kinyarwanda translation'. "+
			"Do not add any other text, titles, or formatting.", chapter)

	raw, err := s.gen.Generate(ctx, genai.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	source, target, err := parsePair(raw)
	if err != nil {
		return nil, err
	}

	ch := &Challenge{
		Kind:    KindStory,
		Prompt:  source,
		Answer:  target,
		Context: fmt.Sprintf("Chapter %d: %s", sess.Narrative.Chapter+1, chapter),
	}

	sess.Narrative.Chapter++
	if sess.Narrative.Exhausted() {
		sess.Narrative = nil
	}
	return ch, nil
}

func (s *storyStrategy) createNarrative(ctx context.Context) (*session.Narrative, error) {
	prompt := "Write a short, engaging story for a language learning game. " +
		"The story should be about a character exploring Rwanda and broken down into 3 chapters. " +
		"Each chapter should introduce new vocabulary. The story should be in English. " +
		"The output should be a JSON object with a 'title' and a list of 'chapters', " +
		"where each chapter is a string. Do not add any other text, titles, or formatting."

	raw, err := s.gen.Generate(ctx, genai.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	cleaned := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(raw))
	var narrative session.Narrative
	if err := json.Unmarshal([]byte(cleaned), &narrative); err != nil {
		return nil, &genai.GenerationError{
			Backend: "parser",
			Err:     fmt.Errorf("unparsable narrative JSON: %w", err),
		}
	}
	if len(narrative.Chapters) == 0 {
		return nil, &genai.GenerationError{
			Backend: "parser",
			Err:     fmt.Errorf("narrative has no chapters"),
		}
	}
	narrative.Chapter = 0
	return &narrative, nil
}
