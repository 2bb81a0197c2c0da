package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBackend answers with a fixed text or error and records the context
// it was called with.
type scriptedBackend struct {
	name    string
	text    string
	err     error
	calls   int
	lastCtx context.Context
}

func (b *scriptedBackend) Name() string { return b.name }

func (b *scriptedBackend) Generate(ctx context.Context, req Request) (string, error) {
	b.calls++
	b.lastCtx = ctx
	return b.text, b.err
}

func TestChainFailsOverToNextBackend(t *testing.T) {
	broken := &scriptedBackend{name: "broken", err: &GenerationError{Backend: "broken", Err: errors.New("boom")}}
	working := &scriptedBackend{name: "working", text: "Mwaramutse|Good morning"}
	chain, err := NewChain(zerolog.Nop(), 0, broken, working)
	require.NoError(t, err)

	text, err := chain.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Mwaramutse|Good morning", text)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, working.calls)
}

func TestChainExhaustion(t *testing.T) {
	a := &scriptedBackend{name: "a", err: errors.New("down")}
	b := &scriptedBackend{name: "b", err: errors.New("also down")}
	chain, err := NewChain(zerolog.Nop(), 0, a, b)
	require.NoError(t, err)

	_, err = chain.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "exhausted")
	assert.ErrorContains(t, err, "also down")
}

func TestChainAppliesPerCallTimeout(t *testing.T) {
	backend := &scriptedBackend{name: "a", text: "ok"}
	chain, err := NewChain(zerolog.Nop(), 5*time.Second, backend)
	require.NoError(t, err)

	_, err = chain.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)

	deadline, ok := backend.lastCtx.Deadline()
	require.True(t, ok, "each backend call carries a deadline")
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestChainTimeoutDoesNotAbortFailOver(t *testing.T) {
	// One backend timing out must not consume the caller's context; the next
	// backend still gets a full per-call budget.
	slow := &scriptedBackend{name: "slow", err: context.DeadlineExceeded}
	fast := &scriptedBackend{name: "fast", text: "ok"}
	chain, err := NewChain(zerolog.Nop(), 50*time.Millisecond, slow, fast)
	require.NoError(t, err)

	text, err := chain.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, fast.calls)
}

func TestChainStopsWhenCallerContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &scriptedBackend{name: "a", err: context.Canceled}
	b := &scriptedBackend{name: "b", text: "ok"}
	chain, err := NewChain(zerolog.Nop(), 0, a, b)
	require.NoError(t, err)

	_, err = chain.Generate(ctx, Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 0, b.calls, "a canceled caller never reaches later backends")
}

func TestNewChainRequiresBackend(t *testing.T) {
	_, err := NewChain(zerolog.Nop(), 0)
	assert.Error(t, err)
}
