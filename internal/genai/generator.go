// Package genai wraps the external text/image generation capability used for
// challenge creation, grading and hints. Backends are opaque single-shot
// prompt-to-text services; callers must treat every failure as retriable
// against the next configured backend.
package genai

import (
	"context"
	"errors"
	"fmt"
)

// Request carries a single generation call. ImageData is optional; when set,
// ImageMIME must name its content type (e.g. "image/jpeg").
type Request struct {
	Prompt    string
	ImageData []byte
	ImageMIME string
}

// Generator produces text from a prompt (plus optional image).
type Generator interface {
	// Name identifies the backend for logs and retry accounting.
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// GenerationError marks unusable or malformed backend output. Orchestration
// retries it against the next backend instead of surfacing it directly.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on backend %q: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationFailure reports whether err is (or wraps) a GenerationError.
func IsGenerationFailure(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
