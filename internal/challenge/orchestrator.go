package challenge

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
)

// maxGenerationAttempts bounds retries on retriable generation failures
// (malformed output, backend errors already failed over inside the chain).
const maxGenerationAttempts = 2

// Orchestrator routes challenge requests to the right strategy, advances the
// multi-step riddle state machine and serves hints.
type Orchestrator struct {
	sessions   session.Store
	challenges Store
	registry   *Registry
	gen        genai.Generator
	logger     zerolog.Logger
}

// NewOrchestrator creates the challenge orchestrator.
func NewOrchestrator(sessions session.Store, challenges Store, registry *Registry, gen genai.Generator, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		sessions:   sessions,
		challenges: challenges,
		registry:   registry,
		gen:        gen,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
	}
}

// GetChallenge issues a new challenge for the session. While a riddle intro is
// pending it returns the stored intro again without generating anything, so
// repeated calls are idempotent until the player triggers reveal.
func (o *Orchestrator) GetChallenge(ctx context.Context, sessionID, mode string, difficulty int) (View, error) {
	sess, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	if pending := sess.PendingRiddle; pending != nil && pending.Phase == session.PhaseIntro {
		return o.pendingIntroView(ctx, pending)
	}

	if mode == "" {
		mode = sess.GameMode
	}
	kinds, err := o.registry.KindsFor(mode)
	if err != nil {
		return View{}, err
	}
	sess.GameMode = mode
	if difficulty > 0 {
		sess.Difficulty = clampDifficulty(difficulty)
	}

	kind := kinds[rand.Intn(len(kinds))]
	strategy, ok := o.registry.StrategyFor(kind)
	if !ok {
		return View{}, fmt.Errorf("no strategy registered for kind %q", kind)
	}

	ch, err := o.buildWithRetry(ctx, strategy, sess)
	if err != nil {
		return View{}, err
	}

	ch.ID = uuid.NewString()
	ch.Reward = rewardFor(ch.Kind)
	if err := o.challenges.Put(ctx, ch); err != nil {
		return View{}, err
	}
	if sess.PendingRiddle != nil && sess.PendingRiddle.Phase == session.PhaseIntro {
		sess.PendingRiddle.ChallengeID = ch.ID
	}

	if err := o.sessions.Save(ctx, sess); err != nil {
		return View{}, err
	}

	challengesIssued.WithLabelValues(ch.Kind).Inc()
	o.logger.Info().
		Str("session_id", sessionID).
		Str("kind", ch.Kind).
		Str("challenge_id", ch.ID).
		Msg("challenge issued")
	return ch.View(), nil
}

// buildWithRetry runs the strategy, retrying bounded times on retriable
// generation failures (the chain has already failed over per attempt).
func (o *Orchestrator) buildWithRetry(ctx context.Context, strategy Strategy, sess *session.Session) (*Challenge, error) {
	var lastErr error
	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		ch, err := strategy.Build(ctx, sess)
		if err == nil {
			return ch, nil
		}
		lastErr = err
		if !genai.IsGenerationFailure(err) || ctx.Err() != nil {
			return nil, err
		}
		o.logger.Warn().Err(err).Int("attempt", attempt).Str("kind", strategy.Kind()).Msg("generation attempt failed")
	}
	return nil, fmt.Errorf("challenge generation exhausted after %d attempts: %w", maxGenerationAttempts, lastErr)
}

// pendingIntroView returns the stored intro, re-creating the record if its
// TTL lapsed so the reveal and evaluate guards keep working.
func (o *Orchestrator) pendingIntroView(ctx context.Context, pending *session.PendingRiddle) (View, error) {
	ch, err := o.challenges.Peek(ctx, pending.ChallengeID)
	if err == ErrUnknownChallenge {
		ch = introChallenge()
		ch.ID = pending.ChallengeID
		if err := o.challenges.Put(ctx, ch); err != nil {
			return View{}, err
		}
	} else if err != nil {
		return View{}, err
	}
	return ch.View(), nil
}

// Reveal advances a pending riddle from intro to revealed: the hidden riddle
// text becomes the visible challenge under a fresh id and the intro record is
// invalidated. Calling it with no pending intro is an invalid-state error.
func (o *Orchestrator) Reveal(ctx context.Context, sessionID string) (View, error) {
	sess, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	pending := sess.PendingRiddle
	if pending == nil || pending.Phase != session.PhaseIntro {
		return View{}, fmt.Errorf("%w: no pending riddle to reveal", ErrInvalidState)
	}

	if pending.ChallengeID != "" {
		if err := o.challenges.Delete(ctx, pending.ChallengeID); err != nil {
			return View{}, err
		}
	}

	ch := &Challenge{
		ID:      uuid.NewString(),
		Kind:    KindRiddle,
		Prompt:  pending.Riddle,
		Answer:  pending.Answer,
		Context: "Igisakuzo",
		Reward:  rewardFor(KindRiddle),
	}
	if err := o.challenges.Put(ctx, ch); err != nil {
		return View{}, err
	}

	sess.PendingRiddle = nil
	if err := o.sessions.Save(ctx, sess); err != nil {
		return View{}, err
	}

	challengesIssued.WithLabelValues(ch.Kind).Inc()
	return ch.View(), nil
}

// Hint serves one hint per riddle challenge. The first call generates a hint
// grounded in the hidden answer; later calls return the cached hint.
func (o *Orchestrator) Hint(ctx context.Context, challengeID string) (string, error) {
	ch, err := o.challenges.Peek(ctx, challengeID)
	if err != nil {
		return "", err
	}
	if ch.Kind != KindRiddle {
		return "", ErrHintUnavailable
	}
	if ch.HintUsed {
		return ch.Hint, nil
	}

	prompt := fmt.Sprintf(
		"The answer to the Kinyarwanda riddle '%s' is '%s'. "+
			"Give a short, cryptic hint in English that points toward the answer. "+
			"Never write the answer itself. Respond with the hint only.",
		ch.Prompt, ch.Answer)

	hint, err := o.gen.Generate(ctx, genai.Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	hint = redactAnswer(hint, ch.Answer)

	ch.Hint = hint
	ch.HintUsed = true
	if err := o.challenges.Put(ctx, ch); err != nil {
		return "", err
	}
	return hint, nil
}

// redactAnswer strips verbatim answer leaks from a generated hint.
func redactAnswer(hint, answer string) string {
	if answer == "" {
		return hint
	}
	lower := strings.ToLower(hint)
	target := strings.ToLower(answer)
	if !strings.Contains(lower, target) {
		return hint
	}
	var b strings.Builder
	for len(lower) > 0 {
		i := strings.Index(lower, target)
		if i < 0 {
			b.WriteString(hint)
			break
		}
		b.WriteString(hint[:i])
		b.WriteString("...")
		hint = hint[i+len(answer):]
		lower = lower[i+len(target):]
	}
	return b.String()
}

func clampDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > 3 {
		return 3
	}
	return d
}
