// Package speech defines the boundary to the external speech capabilities:
// streaming speech-to-text and one-shot text-to-speech.
package speech

import "context"

// TranscriptResult is one text fragment from the streaming transcriber.
// Partial results may overwrite earlier partials; a final result marks the
// end of an utterance.
type TranscriptResult struct {
	Text    string
	IsFinal bool
}

// StreamConfig parameterizes one transcription stream.
type StreamConfig struct {
	Language   string
	SampleRate int
}

// Stream is a live bidirectional transcription session. Close is idempotent
// and must release all background work before returning; Results is closed
// when the stream ends.
type Stream interface {
	SendAudio(chunk []byte) error
	Results() <-chan TranscriptResult
	Close() error
}

// Transcriber opens streaming transcription sessions.
type Transcriber interface {
	StartStream(ctx context.Context, cfg StreamConfig) (Stream, error)
}

// Synthesizer converts text to spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
