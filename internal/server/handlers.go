package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/challenge"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/evaluate"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/logging"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/speech"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/stream"
	httperrors "github.com/Nindenkawe/Bavuga-Nti-bavuga/pkg/http/errors"
)

const sessionCookie = "bnb_session"

// ScoreSource reports the all-time total score across recorded submissions.
type ScoreSource interface {
	TotalScore(ctx context.Context) (int, error)
}

// Handlers holds the request handlers for the gameplay API.
type Handlers struct {
	orchestrator *challenge.Orchestrator
	evaluator    *evaluate.Evaluator
	sessions     session.Store
	scores       ScoreSource
	streams      *stream.Manager
	synth        speech.Synthesizer
	logger       zerolog.Logger
}

// NewHandlers creates the API handlers. scores, synth and streams may be nil
// when the corresponding provider is not configured.
func NewHandlers(orchestrator *challenge.Orchestrator, evaluator *evaluate.Evaluator, sessions session.Store, scores ScoreSource, streams *stream.Manager, synth speech.Synthesizer, logger zerolog.Logger) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		evaluator:    evaluator,
		sessions:     sessions,
		scores:       scores,
		streams:      streams,
		synth:        synth,
		logger:       logger.With().Str("component", "http_handlers").Logger(),
	}
}

// sessionID reads the session cookie, minting a new id when absent.
func (h *Handlers) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// GetChallenge issues (or re-issues, while a riddle intro is pending) a
// challenge for the session.
func (h *Handlers) GetChallenge(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	mode := r.URL.Query().Get("mode")
	difficulty := 0
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "difficulty must be an integer")
			return
		}
		difficulty = d
	}

	view, err := h.orchestrator.GetChallenge(r.Context(), sessionID, mode, difficulty)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Reveal advances a pending riddle from its intro to the riddle itself.
func (h *Handlers) Reveal(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	view, err := h.orchestrator.Reveal(r.Context(), sessionID)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	ChallengeID string `json:"challenge_id"`
	Answer      string `json:"answer"`
}

// Answer grades a submitted answer against its stored challenge.
func (h *Handlers) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "request body must be valid JSON")
		return
	}
	if req.ChallengeID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "challenge_id is required")
		return
	}

	res, err := h.evaluator.Evaluate(r.Context(), sessionID, req.ChallengeID, req.Answer)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	logger := logging.FromContext(r.Context())
	logger.Info().
		Str("challenge_id", req.ChallengeID).
		Bool("is_correct", res.IsCorrect).
		Int("score", res.Score).
		Msg("answer evaluated")
	respondJSON(w, http.StatusOK, res)
}

// Hint serves a hint for a riddle challenge.
func (h *Handlers) Hint(w http.ResponseWriter, r *http.Request) {
	challengeID := r.URL.Query().Get("challenge_id")
	if challengeID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "challenge_id is required")
		return
	}
	hint, err := h.orchestrator.Hint(r.Context(), challengeID)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"hint": hint})
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

// Synthesize converts text to audio and streams MP3 bytes back.
func (h *Handlers) Synthesize(w http.ResponseWriter, r *http.Request) {
	if h.synth == nil {
		httperrors.RespondError(w, http.StatusNotImplemented, httperrors.ErrCodeFeatureNotAvailable, "speech synthesis is not configured")
		return
	}
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidPayload, "text is required")
		return
	}
	audio, err := h.synth.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.logger.Error().Err(err).Msg("synthesis failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "speech synthesis failed")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	_, _ = w.Write(audio)
}

// Score reports the session's current score and lives plus the all-time
// total across recorded submissions.
func (h *Handlers) Score(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	sess, err := h.sessions.Load(r.Context(), sessionID)
	if err != nil {
		h.logger.Error().Err(err).Msg("session load failed")
		httperrors.RespondInternalError(w, "could not load session")
		return
	}

	totalScore := sess.Score
	if h.scores != nil {
		if total, err := h.scores.TotalScore(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("total score lookup failed")
		} else {
			totalScore = total
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_score": totalScore,
		"score":       sess.Score,
		"lives":       sess.Lives,
		"game_mode":   sess.GameMode,
		"difficulty":  sess.Difficulty,
	})
}

// Transcribe upgrades to a WebSocket and runs a live transcription session.
func (h *Handlers) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.streams == nil {
		httperrors.RespondError(w, http.StatusNotImplemented, httperrors.ErrCodeFeatureNotAvailable, "transcription is not configured")
		return
	}
	conn, err := WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if err := h.streams.Run(r.Context(), conn); err != nil && !errors.Is(err, stream.ErrIdleTimeout) {
		h.logger.Warn().Err(err).Msg("transcription session failed")
	}
}

// respondGameError maps domain errors to HTTP status codes.
func (h *Handlers) respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, challenge.ErrUnknownChallenge):
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownChallenge, err.Error())
	case errors.Is(err, challenge.ErrInvalidState):
		httperrors.RespondConflict(w, httperrors.ErrCodeInvalidState, err.Error())
	case errors.Is(err, challenge.ErrHintUnavailable):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeHintUnavailable, err.Error())
	case errors.Is(err, challenge.ErrUnknownMode):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, err.Error())
	case genai.IsGenerationFailure(err):
		h.logger.Error().Err(err).Msg("generation failed")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeGenerationFailed, "challenge generation is temporarily unavailable")
	default:
		h.logger.Error().Err(err).Msg("request failed")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
