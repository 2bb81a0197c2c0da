// Package stream bridges a client WebSocket connection to a live
// transcription stream: audio frames flow upstream, transcript events flow
// back down as JSON.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/speech"
)

// ErrIdleTimeout marks a session torn down because no audio arrived within
// the idle window.
var ErrIdleTimeout = errors.New("transcription session idle timeout")

// clientEvent is a text control frame from the client.
type clientEvent struct {
	Type string `json:"type"`
}

// serverEvent is an outbound JSON frame to the client.
type serverEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// transcriptPayload mirrors speech.TranscriptResult on the wire.
type transcriptPayload struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

// Manager runs transcription sessions over client WebSocket connections.
type Manager struct {
	transcriber speech.Transcriber
	language    string
	sampleRate  int
	idleTimeout time.Duration
	logger      zerolog.Logger
}

// NewManager creates a stream manager. idleTimeout bounds how long a session
// may sit without receiving audio before it is closed.
func NewManager(transcriber speech.Transcriber, language string, sampleRate int, idleTimeout time.Duration, logger zerolog.Logger) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = 60 * time.Second
	}
	return &Manager{
		transcriber: transcriber,
		language:    language,
		sampleRate:  sampleRate,
		idleTimeout: idleTimeout,
		logger:      logger.With().Str("component", "stream_manager").Logger(),
	}
}

// Run drives one transcription session over conn until the client stops, the
// connection drops, the idle window lapses or ctx is cancelled. The upstream
// stream is always released before Run returns; conn stays owned by the
// caller.
func (m *Manager) Run(ctx context.Context, conn *websocket.Conn) error {
	upstream, err := m.transcriber.StartStream(ctx, speech.StreamConfig{
		Language:   m.language,
		SampleRate: m.sampleRate,
	})
	if err != nil {
		m.logger.Error().Err(err).Msg("transcriber start failed")
		return err
	}
	defer upstream.Close()

	sess := newStreamSession()
	logger := m.logger.With().Str("stream_id", sess.ID).Logger()
	logger.Info().Msg("transcription session opened")

	openSessions.Inc()
	defer openSessions.Dec()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.inbound(ctx, conn, upstream, sess) })
	g.Go(func() error { return m.outbound(ctx, conn, upstream) })

	err = g.Wait()
	sess.markClosed()
	logger.Info().
		Int64("audio_bytes", sess.BytesReceived()).
		Str("status", sess.Status()).
		Msg("transcription session closed")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// inbound relays client audio frames upstream. Binary frames carry audio;
// a text frame {"type":"stop"} ends the session cleanly. Returning closes the
// upstream via errgroup cancellation propagating to outbound.
func (m *Manager) inbound(ctx context.Context, conn *websocket.Conn, upstream speech.Stream, sess *Session) error {
	defer upstream.Close()
	for {
		if err := conn.SetReadDeadline(time.Now().Add(m.idleTimeout)); err != nil {
			return err
		}
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			sess.markClosing()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
				return ErrIdleTimeout
			}
			return err
		}
		if ctx.Err() != nil {
			sess.markClosing()
			return ctx.Err()
		}

		switch msgType {
		case websocket.BinaryMessage:
			sess.addBytes(len(data))
			if err := upstream.SendAudio(data); err != nil {
				return err
			}
		case websocket.TextMessage:
			var ev clientEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}
			if ev.Type == "stop" {
				sess.markClosing()
				return nil
			}
		}
	}
}

// outbound relays transcript results back to the client as JSON text frames.
// It ends when the upstream results channel closes or ctx is cancelled.
func (m *Manager) outbound(ctx context.Context, conn *websocket.Conn, upstream speech.Stream) error {
	for {
		select {
		case res, ok := <-upstream.Results():
			if !ok {
				return nil
			}
			ev := serverEvent{
				Type:    "transcript",
				Payload: transcriptPayload{Text: res.Text, IsFinal: res.IsFinal},
			}
			if err := conn.WriteJSON(ev); err != nil {
				return err
			}
			if res.IsFinal {
				transcriptsRelayed.Inc()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
