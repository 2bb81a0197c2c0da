package genai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Chain tries an ordered list of backends until one produces usable output.
// Exhausting the list is a hard failure surfaced to the caller.
type Chain struct {
	backends []Generator
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewChain builds a fail-over chain. At least one backend is required.
// A positive timeout bounds each individual backend call; zero disables
// the per-call bound.
func NewChain(logger zerolog.Logger, timeout time.Duration, backends ...Generator) (*Chain, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("genai: at least one backend is required")
	}
	return &Chain{
		backends: backends,
		timeout:  timeout,
		logger:   logger.With().Str("component", "genai_chain").Logger(),
	}, nil
}

// Name implements Generator.
func (c *Chain) Name() string { return "chain" }

// Generate implements Generator by failing over across backends in order.
func (c *Chain) Generate(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for _, backend := range c.backends {
		text, err := c.callBackend(ctx, backend, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", err
		}
		c.logger.Warn().Err(err).Str("backend", backend.Name()).Msg("backend failed, trying next")
		retriesTotal.WithLabelValues(backend.Name()).Inc()
		lastErr = err
	}
	return "", fmt.Errorf("all %d generation backends exhausted: %w", len(c.backends), lastErr)
}

// callBackend applies the per-call timeout so a hung backend cannot stall
// the whole chain. The outer ctx still governs the request as a whole.
func (c *Chain) callBackend(ctx context.Context, backend Generator, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return backend.Generate(ctx, req)
}
