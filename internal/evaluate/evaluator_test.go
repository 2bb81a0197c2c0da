package evaluate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/challenge"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
)

// stubGrader returns a fixed verdict or error for every grading call.
type stubGrader struct {
	verdict string
	err     error
	calls   int
}

func (s *stubGrader) Name() string { return "stub" }

func (s *stubGrader) Generate(ctx context.Context, req genai.Request) (string, error) {
	s.calls++
	return s.verdict, s.err
}

// memoryRecorder captures recorded submissions.
type memoryRecorder struct {
	subs []Submission
}

func (r *memoryRecorder) Record(ctx context.Context, sub Submission) error {
	r.subs = append(r.subs, sub)
	return nil
}

func newTestEvaluator(grader genai.Generator, rec Recorder) (*Evaluator, session.Store, challenge.Store) {
	sessions := session.NewMemoryStore()
	challenges := challenge.NewMemoryStore()
	ev := NewEvaluator(sessions, challenges, grader, rec, nil, zerolog.Nop())
	return ev, sessions, challenges
}

func putChallenge(t *testing.T, store challenge.Store, ch *challenge.Challenge) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), ch))
}

func TestEvaluateCorrectTranslation(t *testing.T) {
	grader := &stubGrader{verdict: "Correct"}
	rec := &memoryRecorder{}
	ev, _, challenges := newTestEvaluator(grader, rec)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "Good morning", Answer: "Mwaramutse", Reward: 10,
	})

	res, err := ev.Evaluate(context.Background(), "p1", "c1", "Mwaramutse")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 10, res.ScoreAwarded)
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, session.MaxLives, res.Lives)

	require.Len(t, rec.subs, 1)
	assert.True(t, rec.subs[0].IsCorrect)
	assert.Equal(t, "c1", rec.subs[0].ChallengeID)
}

func TestEvaluateIncorrectCostsOneLife(t *testing.T) {
	grader := &stubGrader{verdict: "Incorrect"}
	ev, sessions, challenges := newTestEvaluator(grader, nil)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "Good morning", Answer: "Mwaramutse", Reward: 10,
	})

	res, err := ev.Evaluate(context.Background(), "p1", "c1", "wrong")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, "Mwaramutse", res.CorrectAnswer)
	assert.Equal(t, session.MaxLives-1, res.Lives)
	assert.Equal(t, 0, res.Score)

	sess, err := sessions.Load(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, session.MaxLives-1, sess.Lives)
}

func TestEvaluateReplayedChallengeID(t *testing.T) {
	grader := &stubGrader{verdict: "Correct"}
	ev, sessions, challenges := newTestEvaluator(grader, nil)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "p", Answer: "a", Reward: 10,
	})
	ctx := context.Background()

	_, err := ev.Evaluate(ctx, "p1", "c1", "a")
	require.NoError(t, err)

	// The id was consumed: a replay fails and mutates nothing.
	_, err = ev.Evaluate(ctx, "p1", "c1", "a")
	assert.ErrorIs(t, err, challenge.ErrUnknownChallenge)

	sess, err := sessions.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, sess.Score)
	assert.Equal(t, session.MaxLives, sess.Lives)
}

func TestEvaluateUnknownChallengeID(t *testing.T) {
	ev, _, _ := newTestEvaluator(&stubGrader{}, nil)

	_, err := ev.Evaluate(context.Background(), "p1", "missing", "a")
	assert.ErrorIs(t, err, challenge.ErrUnknownChallenge)
}

func TestEvaluateRiddleIntroIsInvalidState(t *testing.T) {
	grader := &stubGrader{}
	ev, _, challenges := newTestEvaluator(grader, nil)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindRiddleIntro, Prompt: "Sakwe sakwe!",
	})
	ctx := context.Background()

	_, err := ev.Evaluate(ctx, "p1", "c1", "soma")
	assert.ErrorIs(t, err, challenge.ErrInvalidState)

	// The intro record survives so the reveal step keeps working.
	_, err = challenges.Peek(ctx, "c1")
	assert.NoError(t, err)
	assert.Equal(t, 0, grader.calls)
}

func TestEvaluateRiddleExactMatchLocally(t *testing.T) {
	grader := &stubGrader{verdict: "Incorrect"}
	ev, sessions, challenges := newTestEvaluator(grader, nil)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindRiddle, Prompt: "Inzu yanjye ntigira umuryango", Answer: "Igi", Reward: 15,
	})

	res, err := ev.Evaluate(context.Background(), "p1", "c1", "  igi ")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect, "riddle grading is a normalized exact match")
	assert.Equal(t, 0, grader.calls, "riddles never reach the grading capability")
	assert.Equal(t, 15, res.ScoreAwarded)

	// The solved answer seeds later themed translations.
	sess, err := sessions.Load(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Igi"}, sess.ThematicWords)
}

func TestEvaluateGameOverResetsSession(t *testing.T) {
	grader := &stubGrader{verdict: "Incorrect"}
	ev, sessions, challenges := newTestEvaluator(grader, nil)
	ctx := context.Background()

	sess := session.NewSession("p1")
	sess.Score = 30
	sess.Lives = 1
	require.NoError(t, sessions.Save(ctx, sess))
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "p", Answer: "a", Reward: 10,
	})

	res, err := ev.Evaluate(ctx, "p1", "c1", "wrong")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Contains(t, res.Message, "Game Over")
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, session.MaxLives, res.Lives)
}

func TestEvaluateGradingFailureCountsIncorrect(t *testing.T) {
	grader := &stubGrader{err: &genai.GenerationError{Backend: "stub", Err: errors.New("boom")}}
	ev, sessions, challenges := newTestEvaluator(grader, nil)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "p", Answer: "a", Reward: 10,
	})

	res, err := ev.Evaluate(context.Background(), "p1", "c1", "whatever")
	require.NoError(t, err, "a grading failure is an incorrect result, not a request error")
	assert.False(t, res.IsCorrect)
	assert.Contains(t, res.Message, "could not grade")
	assert.Equal(t, session.MaxLives-1, res.Lives)

	sess, err := sessions.Load(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, session.MaxLives-1, sess.Lives, "exactly one life lost")
}

func TestEvaluateUnparsableVerdictCountsIncorrect(t *testing.T) {
	grader := &stubGrader{verdict: "maybe, hard to say"}
	ev, _, challenges := newTestEvaluator(grader, nil)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "p", Answer: "a", Reward: 10,
	})

	res, err := ev.Evaluate(context.Background(), "p1", "c1", "whatever")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
}

func TestEvaluateIncorrectVerdictNotMistakenForCorrect(t *testing.T) {
	// "Incorrect" contains "correct" as a substring; the verdict parser must
	// not treat it as a pass.
	grader := &stubGrader{verdict: "Incorrect."}
	ev, _, challenges := newTestEvaluator(grader, nil)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "p", Answer: "a", Reward: 10,
	})

	res, err := ev.Evaluate(context.Background(), "p1", "c1", "wrong")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
}

func TestEvaluateGiveUpRevealsWithoutLifeLoss(t *testing.T) {
	grader := &stubGrader{verdict: "Incorrect"}
	ev, _, challenges := newTestEvaluator(grader, nil)
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "p", Answer: "Mwaramutse", Reward: 10,
	})

	res, err := ev.Evaluate(context.Background(), "p1", "c1", "gitore")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, "Mwaramutse", res.CorrectAnswer)
	assert.Equal(t, session.MaxLives, res.Lives, "giving up never costs a life")
	assert.Equal(t, 0, grader.calls)
}

func TestEvaluateModeUnlockAtThreshold(t *testing.T) {
	grader := &stubGrader{verdict: "Correct"}
	ev, sessions, challenges := newTestEvaluator(grader, nil)
	ctx := context.Background()

	sess := session.NewSession("p1")
	sess.Score = 40
	require.NoError(t, sessions.Save(ctx, sess))
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "p", Answer: "a", Reward: 10,
	})

	res, err := ev.Evaluate(ctx, "p1", "c1", "a")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 50, res.Score)
	assert.Contains(t, res.Message, "unlocked")

	after, err := sessions.Load(ctx, "p1")
	require.NoError(t, err)
	assert.NotEqual(t, session.ModeTranslation, after.GameMode, "mode rotates on unlock")
	assert.Equal(t, 2, after.Difficulty)
}

func TestEvaluateModeUnlockRespectsEnabledModes(t *testing.T) {
	grader := &stubGrader{verdict: "Correct"}
	sessions := session.NewMemoryStore()
	challenges := challenge.NewMemoryStore()
	// Image mode is disabled (e.g. no curated images available); rotation
	// must never land on it.
	ev := NewEvaluator(sessions, challenges, grader, nil,
		[]string{session.ModeTranslation, session.ModeSakwe}, zerolog.Nop())
	ctx := context.Background()

	sess := session.NewSession("p1")
	sess.Score = 40
	require.NoError(t, sessions.Save(ctx, sess))
	putChallenge(t, challenges, &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "p", Answer: "a", Reward: 10,
	})

	_, err := ev.Evaluate(ctx, "p1", "c1", "a")
	require.NoError(t, err)

	after, err := sessions.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, session.ModeSakwe, after.GameMode, "only enabled modes are eligible")
}
