package challenge

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// Riddle is one curated (riddle, answer) pair. Riddle content is retrieved,
// never generated: the corpus enforces cultural accuracy.
type Riddle struct {
	Riddle string `json:"riddle"`
	Answer string `json:"answer"`
}

// Corpus is the fixed riddle set loaded once at startup and shared read-only
// by all sessions.
type Corpus struct {
	riddles []Riddle
}

// NewCorpus builds a corpus from an in-memory riddle list.
func NewCorpus(riddles []Riddle) *Corpus {
	return &Corpus{riddles: riddles}
}

// LoadCorpus reads the riddle corpus from a JSON file.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read riddle corpus: %w", err)
	}
	var riddles []Riddle
	if err := json.Unmarshal(data, &riddles); err != nil {
		return nil, fmt.Errorf("parse riddle corpus %s: %w", path, err)
	}
	return &Corpus{riddles: riddles}, nil
}

// Len returns the number of riddles in the corpus.
func (c *Corpus) Len() int { return len(c.riddles) }

// Pick draws a riddle uniformly at random.
func (c *Corpus) Pick() (Riddle, error) {
	if len(c.riddles) == 0 {
		return Riddle{}, fmt.Errorf("riddle corpus is empty")
	}
	return c.riddles[rand.Intn(len(c.riddles))], nil
}
