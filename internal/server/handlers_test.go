package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/challenge"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/evaluate"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
)

// fixedGrader answers every grading call with the same verdict.
type fixedGrader struct {
	verdict string
}

func (g *fixedGrader) Name() string { return "fixed" }

func (g *fixedGrader) Generate(ctx context.Context, req genai.Request) (string, error) {
	return g.verdict, nil
}

func newTestHandlers(t *testing.T, verdict string) (*Handlers, challenge.Store) {
	t.Helper()
	sessions := session.NewMemoryStore()
	challenges := challenge.NewMemoryStore()
	ev := evaluate.NewEvaluator(sessions, challenges, &fixedGrader{verdict: verdict}, nil, nil, zerolog.Nop())
	return NewHandlers(nil, ev, sessions, nil, nil, nil, zerolog.Nop()), challenges
}

func TestAnswerGradesSubmission(t *testing.T) {
	h, challenges := newTestHandlers(t, "Correct")
	require.NoError(t, challenges.Put(context.Background(), &challenge.Challenge{
		ID: "c1", Kind: challenge.KindPhrase, Prompt: "Good morning", Answer: "Mwaramutse", Reward: 10,
	}))

	body := `{"challenge_id":"c1","answer":"Mwaramutse"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Answer(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res evaluate.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, session.MaxLives, res.Lives)
}

func TestAnswerRequiresChallengeID(t *testing.T) {
	h, _ := newTestHandlers(t, "Correct")

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{"answer":"a"}`))
	rec := httptest.NewRecorder()
	h.Answer(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnswerUnknownChallengeIs404(t *testing.T) {
	h, _ := newTestHandlers(t, "Correct")

	body := `{"challenge_id":"missing","answer":"a"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Answer(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnswerRejectsMalformedBody(t *testing.T) {
	h, _ := newTestHandlers(t, "Correct")

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Answer(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
