package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreCreatesFreshSessionOnMiss(t *testing.T) {
	store := NewMemoryStore()

	sess, err := store.Load(context.Background(), "new-player")
	assert.NoError(t, err)
	assert.Equal(t, "new-player", sess.ID)
	assert.Equal(t, 0, sess.Score)
	assert.Equal(t, MaxLives, sess.Lives)
	assert.Equal(t, ModeTranslation, sess.GameMode)
	assert.Equal(t, 1, sess.Difficulty)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := NewSession("p1")
	sess.Score = 40
	sess.Lives = 2
	sess.GameMode = ModeSakwe
	sess.PendingRiddle = &PendingRiddle{
		ChallengeID: "c1",
		Riddle:      "Inshyushyu y'umusambi",
		Answer:      "amazi",
		Phase:       PhaseIntro,
	}
	sess.ThematicWords = []string{"amazi"}

	assert.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, "p1")
	assert.NoError(t, err)
	assert.Equal(t, 40, loaded.Score)
	assert.Equal(t, 2, loaded.Lives)
	assert.Equal(t, ModeSakwe, loaded.GameMode)
	if assert.NotNil(t, loaded.PendingRiddle) {
		assert.Equal(t, PhaseIntro, loaded.PendingRiddle.Phase)
		assert.Equal(t, "amazi", loaded.PendingRiddle.Answer)
	}
	assert.Equal(t, []string{"amazi"}, loaded.ThematicWords)
}

func TestSessionReset(t *testing.T) {
	sess := NewSession("p1")
	sess.Score = 120
	sess.Lives = 0
	sess.Narrative = &Narrative{Title: "t", Chapters: []string{"a"}, Chapter: 1}

	sess.Reset()

	assert.Equal(t, 0, sess.Score)
	assert.Equal(t, MaxLives, sess.Lives)
	assert.NotNil(t, sess.Narrative, "reset keeps narrative state")
}

func TestNarrativeExhausted(t *testing.T) {
	n := &Narrative{Title: "t", Chapters: []string{"one", "two"}}
	assert.False(t, n.Exhausted())
	n.Chapter = 2
	assert.True(t, n.Exhausted())
}
