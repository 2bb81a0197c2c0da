// Package evaluate grades submitted answers and applies the score/lives
// policy. Every challenge id is consumable exactly once.
package evaluate

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/challenge"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
)

// unlockStep is the score interval at which a new game mode unlocks and
// difficulty increases.
const unlockStep = 50

// giveUpKeywords are phrases the player uses to surrender a challenge. Giving
// up reveals the answer without costing a life.
var giveUpKeywords = []string{"gitore", "ngicyo", "ndatsinzwe"}

// Result is the outcome of one evaluation.
type Result struct {
	IsCorrect     bool   `json:"is_correct"`
	Message       string `json:"message"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	ScoreAwarded  int    `json:"score_awarded"`
	Score         int    `json:"score"`
	Lives         int    `json:"lives"`
}

// Submission is the history record of one graded answer.
type Submission struct {
	ChallengeID  string
	Kind         string
	Prompt       string
	UserAnswer   string
	IsCorrect    bool
	ScoreAwarded int
}

// Recorder persists graded submissions. Recording is best-effort; failures
// are logged and never block the game.
type Recorder interface {
	Record(ctx context.Context, sub Submission) error
}

// Evaluator resolves challenges, grades answers and mutates session state.
type Evaluator struct {
	sessions   session.Store
	challenges challenge.Store
	grader     genai.Generator
	recorder   Recorder
	modes      []string
	logger     zerolog.Logger
}

// NewEvaluator creates an evaluator. recorder may be nil. modes lists the
// game modes unlocks may rotate into; nil means every mode.
func NewEvaluator(sessions session.Store, challenges challenge.Store, grader genai.Generator, recorder Recorder, modes []string, logger zerolog.Logger) *Evaluator {
	if len(modes) == 0 {
		modes = session.Modes
	}
	return &Evaluator{
		sessions:   sessions,
		challenges: challenges,
		grader:     grader,
		recorder:   recorder,
		modes:      modes,
		logger:     logger.With().Str("component", "evaluator").Logger(),
	}
}

// Evaluate grades one answer against a stored challenge. The challenge is
// consumed atomically first: a replayed id fails with ErrUnknownChallenge and
// never mutates score or lives.
func (e *Evaluator) Evaluate(ctx context.Context, sessionID, challengeID, userAnswer string) (Result, error) {
	ch, err := e.challenges.Peek(ctx, challengeID)
	if err != nil {
		return Result{}, err
	}
	if ch.Kind == challenge.KindRiddleIntro {
		// The riddle has not been revealed yet; the intro record stays so
		// the reveal step keeps working.
		return Result{}, fmt.Errorf("%w: riddle not yet revealed, reply 'soma' first", challenge.ErrInvalidState)
	}

	ch, err = e.challenges.Consume(ctx, challengeID)
	if err != nil {
		return Result{}, err
	}

	sess, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if gaveUp(userAnswer) {
		res = Result{
			IsCorrect:     false,
			Message:       "You gave up. The correct answer was:",
			CorrectAnswer: ch.Answer,
		}
	} else {
		correct, gradingFailed := e.grade(ctx, ch, userAnswer)
		res = e.applyScoring(sess, ch, correct, gradingFailed)
	}

	res.Score = sess.Score
	res.Lives = sess.Lives

	if err := e.sessions.Save(ctx, sess); err != nil {
		return Result{}, err
	}

	e.record(ctx, ch, userAnswer, res)
	answersEvaluated.WithLabelValues(outcomeLabel(res.IsCorrect)).Inc()
	return res, nil
}

// grade returns (correct, gradingFailed). Riddles are graded locally with a
// normalized exact match and never reach the grading capability.
func (e *Evaluator) grade(ctx context.Context, ch *challenge.Challenge, userAnswer string) (bool, bool) {
	if ch.Kind == challenge.KindRiddle {
		return normalize(userAnswer) == normalize(ch.Answer), false
	}

	prompt := fmt.Sprintf(
		"You are an expert in Kinyarwanda and English. The target text is '%s'. The user's answer is '%s'. "+
			"Is the user's answer a correct translation? Consider synonyms and minor grammatical variations. "+
			"Respond ONLY with 'Correct' or 'Incorrect'.",
		ch.Answer, userAnswer)

	raw, err := e.grader.Generate(ctx, genai.Request{Prompt: prompt})
	if err != nil {
		e.logger.Warn().Err(err).Str("challenge_id", ch.ID).Msg("grading capability failed")
		return false, true
	}

	verdict := strings.ToLower(raw)
	switch {
	case strings.Contains(verdict, "incorrect"):
		return false, false
	case strings.Contains(verdict, "correct"):
		return true, false
	default:
		// Neither token present: unusable verdict, never silently correct.
		e.logger.Warn().Str("challenge_id", ch.ID).Str("verdict", raw).Msg("unparsable grading verdict")
		return false, true
	}
}

// applyScoring mutates the session per the scoring policy and builds the
// player-facing message. Lives never drop below zero: reaching zero resets
// the session in the same mutation.
func (e *Evaluator) applyScoring(sess *session.Session, ch *challenge.Challenge, correct, gradingFailed bool) Result {
	if correct {
		sess.Score += ch.Reward
		message := "Correct!"
		if ch.Kind == challenge.KindRiddle {
			sess.ThematicWords = append(sess.ThematicWords, ch.Answer)
		}
		if sess.Score > 0 && sess.Score%unlockStep == 0 {
			e.rotateMode(sess)
			message += fmt.Sprintf(" You've unlocked a new game mode: %s! Difficulty increased.", titleCase(sess.GameMode))
		}
		return Result{IsCorrect: true, Message: message, ScoreAwarded: ch.Reward}
	}

	sess.Lives--
	message := "Incorrect."
	if gradingFailed {
		message = "We could not grade your answer this time; it counts as incorrect."
	}
	if sess.Lives <= 0 {
		message = "Game Over! You have no lives left."
		sess.Reset()
	}
	return Result{IsCorrect: false, Message: message, CorrectAnswer: ch.Answer}
}

func (e *Evaluator) record(ctx context.Context, ch *challenge.Challenge, userAnswer string, res Result) {
	if e.recorder == nil {
		return
	}
	err := e.recorder.Record(ctx, Submission{
		ChallengeID:  ch.ID,
		Kind:         ch.Kind,
		Prompt:       ch.Prompt,
		UserAnswer:   userAnswer,
		IsCorrect:    res.IsCorrect,
		ScoreAwarded: res.ScoreAwarded,
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("challenge_id", ch.ID).Msg("submission record failed")
	}
}

// rotateMode switches to a random other enabled game mode and bumps
// difficulty.
func (e *Evaluator) rotateMode(sess *session.Session) {
	var others []string
	for _, mode := range e.modes {
		if mode != sess.GameMode {
			others = append(others, mode)
		}
	}
	if len(others) > 0 {
		sess.GameMode = others[rand.Intn(len(others))]
	}
	if sess.Difficulty < 3 {
		sess.Difficulty++
	}
}

func gaveUp(answer string) bool {
	lower := strings.ToLower(answer)
	for _, kw := range giveUpKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// normalize lowercases and collapses all whitespace for riddle comparison.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func outcomeLabel(correct bool) string {
	if correct {
		return "correct"
	}
	return "incorrect"
}
