package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeSendsRequestAndReturnsAudio(t *testing.T) {
	var gotPath, gotKey string
	var gotBody synthesisRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	e, err := NewElevenLabs("secret", "rw-voice", WithBaseURL(srv.URL))
	require.NoError(t, err)

	audio, err := e.Synthesize(context.Background(), "Mwaramutse")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, "/v1/text-to-speech/rw-voice", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "Mwaramutse", gotBody.Text)
}

func TestSynthesizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e, err := NewElevenLabs("secret", "v", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = e.Synthesize(context.Background(), "Mwaramutse")
	assert.ErrorContains(t, err, "429")
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e, err := NewElevenLabs("secret", "v", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = e.Synthesize(context.Background(), "Mwaramutse")
	assert.ErrorContains(t, err, "empty audio")
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	e, err := NewElevenLabs("secret", "v")
	require.NoError(t, err)

	_, err = e.Synthesize(context.Background(), "")
	assert.Error(t, err)
}

func TestNewElevenLabsRequiresKey(t *testing.T) {
	_, err := NewElevenLabs("", "v")
	assert.Error(t, err)
}
