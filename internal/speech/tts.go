package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultElevenLabsBaseURL = "https://api.elevenlabs.io"

// ElevenLabsOption is a functional option for configuring the synthesizer.
type ElevenLabsOption func(*ElevenLabs)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(baseURL string) ElevenLabsOption {
	return func(e *ElevenLabs) {
		e.baseURL = baseURL
	}
}

// ElevenLabs implements Synthesizer via the ElevenLabs REST API, returning
// MP3 audio for a piece of text.
type ElevenLabs struct {
	apiKey     string
	voice      string
	baseURL    string
	httpClient *http.Client
}

var _ Synthesizer = (*ElevenLabs)(nil)

// NewElevenLabs creates a synthesizer. apiKey must be non-empty.
func NewElevenLabs(apiKey, voice string, opts ...ElevenLabsOption) (*ElevenLabs, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	if voice == "" {
		voice = "default"
	}
	e := &ElevenLabs{
		apiKey:     apiKey,
		voice:      voice,
		baseURL:    defaultElevenLabsBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

type synthesisRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize converts text to audio bytes.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("elevenlabs: text must not be empty")
	}

	body, err := json.Marshal(synthesisRequest{Text: text, ModelID: "eleven_flash_v2_5"})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("elevenlabs: synthesize returned status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs: empty audio response")
	}
	return audio, nil
}
