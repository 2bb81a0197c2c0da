package challenge

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path"
	"strings"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
)

// proverbStrategy asks for a Kinyarwanda proverb and its English translation.
type proverbStrategy struct {
	gen     genai.Generator
	history PromptHistory
}

func (s *proverbStrategy) Kind() string { return KindProverb }

func (s *proverbStrategy) Build(ctx context.Context, sess *session.Session) (*Challenge, error) {
	prompt := fmt.Sprintf(
		"Provide a %s Kinyarwanda proverb and its English translation, separated by a pipe (|). "+
			"Example: 'Akabando k'iminsi gacibwa kare|A walking stick for old age is prepared in advance'. "+
			"Do not add any other text, titles, or formatting.%s",
		levelName(sess.Difficulty), avoidClause(ctx, s.history))

	raw, err := s.gen.Generate(ctx, genai.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	source, target, err := parsePair(raw)
	if err != nil {
		return nil, err
	}
	return &Challenge{
		Kind:    KindProverb,
		Prompt:  source,
		Answer:  target,
		Context: "Translate this Kinyarwanda proverb to English.",
	}, nil
}

// phraseStrategy asks for an English phrase and its Kinyarwanda translation.
// When the session carries thematic words (answers of solved riddles), the
// first one is consumed and the phrase is built around it.
type phraseStrategy struct {
	gen     genai.Generator
	history PromptHistory
}

func (s *phraseStrategy) Kind() string { return KindPhrase }

func (s *phraseStrategy) Build(ctx context.Context, sess *session.Session) (*Challenge, error) {
	kind := KindPhrase
	themed := len(sess.ThematicWords) > 0
	var prompt string

	if themed {
		kind = KindThemed
		prompt = fmt.Sprintf(
			"Provide a simple English phrase using the word '%s' and its Kinyarwanda translation, "+
				"separated by a pipe (|). Example: 'The honey is sweet|Ubuki buraryoshye'. "+
				"Do not add any other text, titles, or formatting.", sess.ThematicWords[0])
	} else {
		prompt = fmt.Sprintf(
			"Provide a simple %s English phrase and its Kinyarwanda translation, separated by a pipe (|). "+
				"Example: 'Good morning|Mwaramutse'. Do not add any other text, titles, or formatting.%s",
			levelName(sess.Difficulty), avoidClause(ctx, s.history))
	}

	raw, err := s.gen.Generate(ctx, genai.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	source, target, err := parsePair(raw)
	if err != nil {
		return nil, err
	}
	// The earned word is consumed only once a challenge actually comes out of
	// it; a failed attempt leaves it for the retry.
	if themed {
		sess.ThematicWords = sess.ThematicWords[1:]
	}
	return &Challenge{
		Kind:    kind,
		Prompt:  source,
		Answer:  target,
		Context: "Translate this English phrase to Kinyarwanda.",
	}, nil
}

// imageStrategy picks a curated image and asks the capability for a bilingual
// one-sentence description.
type imageStrategy struct {
	gen genai.Generator
	dir string
}

func (s *imageStrategy) Kind() string { return KindImage }

func (s *imageStrategy) Build(ctx context.Context, sess *session.Session) (*Challenge, error) {
	name, data, mime, err := pickImage(s.dir)
	if err != nil {
		return nil, err
	}

	prompt := "Describe this image of Rwanda in a single, descriptive sentence. " +
		"Provide the description in both Kinyarwanda and English, separated by a pipe (|). " +
		"Example: 'Umusozi w'u Rwanda|A Rwandan hill'. Do not add any other text, titles, or formatting."

	raw, err := s.gen.Generate(ctx, genai.Request{Prompt: prompt, ImageData: data, ImageMIME: mime})
	if err != nil {
		return nil, err
	}
	kin, eng, err := parsePair(raw)
	if err != nil {
		return nil, err
	}
	return &Challenge{
		Kind:    KindImage,
		Prompt:  imageURLPath(s.dir, name),
		Answer:  fmt.Sprintf("Kinyarwanda: %s | English: %s", kin, eng),
		Context: "Describe the image in either Kinyarwanda or English.",
	}, nil
}

// imageURLPath builds the client-facing URL for an image, matching the static
// file mount which serves the whole image directory under its trimmed path.
func imageURLPath(dir, name string) string {
	return "/" + path.Join(strings.Trim(dir, "/"), name)
}

func pickImage(dir string) (name string, data []byte, mime string, err error) {
	candidates, err := listImages(dir)
	if err != nil {
		return "", nil, "", err
	}
	if len(candidates) == 0 {
		return "", nil, "", fmt.Errorf("no images found in %s", dir)
	}

	name = candidates[rand.Intn(len(candidates))]
	data, err = os.ReadFile(path.Join(dir, name))
	if err != nil {
		return "", nil, "", fmt.Errorf("read image %s: %w", name, err)
	}
	mime = "image/jpeg"
	if strings.ToLower(path.Ext(name)) == ".png" {
		mime = "image/png"
	}
	return name, data, mime, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image directory: %w", err)
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			candidates = append(candidates, e.Name())
		}
	}
	return candidates, nil
}

// hasImages reports whether dir exists and holds at least one usable image.
func hasImages(dir string) bool {
	candidates, err := listImages(dir)
	return err == nil && len(candidates) > 0
}

// riddleStrategy draws a riddle from the curated corpus and withholds it
// behind the "Sakwe sakwe!" intro until the player replies with "soma". No
// generation call is made.
type riddleStrategy struct {
	corpus *Corpus
}

func (s *riddleStrategy) Kind() string { return KindRiddleIntro }

func (s *riddleStrategy) Build(ctx context.Context, sess *session.Session) (*Challenge, error) {
	riddle, err := s.corpus.Pick()
	if err != nil {
		return nil, err
	}
	sess.PendingRiddle = &session.PendingRiddle{
		Riddle: riddle.Riddle,
		Answer: riddle.Answer,
		Phase:  session.PhaseIntro,
	}
	return introChallenge(), nil
}

const (
	introPrompt  = "Sakwe sakwe!"
	introContext = "Reply with 'soma' to get the riddle."
)

func introChallenge() *Challenge {
	return &Challenge{
		Kind:    KindRiddleIntro,
		Prompt:  introPrompt,
		Context: introContext,
	}
}
