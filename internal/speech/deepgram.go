package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/coder/websocket"
)

const (
	deepgramEndpoint  = "wss://api.deepgram.com/v1/listen"
	defaultModel      = "nova-3"
	defaultSampleRate = 48000
)

// Deepgram implements Transcriber backed by the Deepgram streaming WebSocket
// API.
type Deepgram struct {
	apiKey     string
	model      string
	language   string
	sampleRate int
}

var _ Transcriber = (*Deepgram)(nil)

// NewDeepgram creates a Deepgram transcriber. apiKey must be non-empty.
func NewDeepgram(apiKey, language string, sampleRate int) (*Deepgram, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: apiKey must not be empty")
	}
	if language == "" {
		language = "en"
	}
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	return &Deepgram{
		apiKey:     apiKey,
		model:      defaultModel,
		language:   language,
		sampleRate: sampleRate,
	}, nil
}

// StartStream opens a streaming transcription session.
func (d *Deepgram) StartStream(ctx context.Context, cfg StreamConfig) (Stream, error) {
	wsURL, err := d.buildURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("deepgram: build URL: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+d.apiKey)

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: headers})
	if err != nil {
		return nil, fmt.Errorf("deepgram: dial: %w", err)
	}

	s := &deepgramStream{
		conn:    conn,
		results: make(chan TranscriptResult, 64),
		audio:   make(chan []byte, 256),
		done:    make(chan struct{}),
	}
	s.wg.Add(2)
	go s.readLoop(ctx)
	go s.writeLoop(ctx)
	return s, nil
}

func (d *Deepgram) buildURL(cfg StreamConfig) (string, error) {
	u, err := url.Parse(deepgramEndpoint)
	if err != nil {
		return "", err
	}
	lang := cfg.Language
	if lang == "" {
		lang = d.language
	}
	sr := cfg.SampleRate
	if sr == 0 {
		sr = d.sampleRate
	}

	q := u.Query()
	q.Set("model", d.model)
	q.Set("language", lang)
	q.Set("punctuate", "true")
	q.Set("interim_results", "true")
	q.Set("sample_rate", strconv.Itoa(sr))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// deepgramStream is a live Deepgram session implementing Stream.
type deepgramStream struct {
	conn    *websocket.Conn
	results chan TranscriptResult
	audio   chan []byte

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// SendAudio queues an audio chunk for delivery.
func (s *deepgramStream) SendAudio(chunk []byte) error {
	select {
	case <-s.done:
		return errors.New("deepgram: stream is closed")
	default:
	}
	select {
	case s.audio <- chunk:
		return nil
	case <-s.done:
		return errors.New("deepgram: stream is closed")
	}
}

// Results returns the transcript channel; closed when the stream ends.
func (s *deepgramStream) Results() <-chan TranscriptResult { return s.results }

// Close terminates the session cleanly and waits for both loops.
func (s *deepgramStream) Close() error {
	s.once.Do(func() {
		close(s.done)
		// Ask Deepgram to flush pending audio before the socket goes away.
		_ = s.conn.Write(context.Background(), websocket.MessageText, []byte(`{"type":"CloseStream"}`))
		s.wg.Wait()
		s.conn.Close(websocket.StatusNormalClosure, "stream closed")
	})
	return nil
}

func (s *deepgramStream) writeLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case chunk := <-s.audio:
			if err := s.conn.Write(ctx, websocket.MessageBinary, chunk); err != nil {
				return
			}
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *deepgramStream) readLoop(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.results)

	for {
		_, msg, err := s.conn.Read(ctx)
		if err != nil {
			return
		}
		res, ok := parseDeepgramMessage(msg)
		if !ok {
			continue
		}
		select {
		case s.results <- res:
		case <-s.done:
			return
		}
	}
}

// deepgramMessage is the subset of the Results payload the game consumes.
type deepgramMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func parseDeepgramMessage(data []byte) (TranscriptResult, bool) {
	var msg deepgramMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return TranscriptResult{}, false
	}
	if msg.Type != "Results" || len(msg.Channel.Alternatives) == 0 {
		return TranscriptResult{}, false
	}
	text := msg.Channel.Alternatives[0].Transcript
	if text == "" {
		return TranscriptResult{}, false
	}
	return TranscriptResult{Text: text, IsFinal: msg.IsFinal}, true
}
