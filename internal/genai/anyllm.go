package genai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"
)

// LLMBackend implements Generator on top of github.com/mozilla-ai/any-llm-go,
// so the game can run against Gemini, OpenAI, Ollama, Mistral or Groq with the
// same code path.
type LLMBackend struct {
	name    string
	model   string
	backend anyllmlib.Provider
}

// NewLLMBackend creates a backend by provider name ("gemini", "openai",
// "ollama", "mistral", "groq"). An empty apiKey falls back to the provider's
// environment variable (GEMINI_API_KEY, OPENAI_API_KEY, ...).
func NewLLMBackend(providerName, model, apiKey string) (*LLMBackend, error) {
	if model == "" {
		return nil, fmt.Errorf("genai: model must not be empty")
	}

	var opts []anyllmlib.Option
	if apiKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(apiKey))
	}

	var (
		backend anyllmlib.Provider
		err     error
	)
	switch strings.ToLower(providerName) {
	case "gemini":
		backend, err = gemini.New(opts...)
	case "openai":
		backend, err = anyllmoai.New(opts...)
	case "ollama":
		backend, err = ollama.New(opts...)
	case "mistral":
		backend, err = mistral.New(opts...)
	case "groq":
		backend, err = groq.New(opts...)
	default:
		return nil, fmt.Errorf("genai: unsupported provider %q; supported: gemini, openai, ollama, mistral, groq", providerName)
	}
	if err != nil {
		return nil, fmt.Errorf("genai: create %q backend: %w", providerName, err)
	}

	return &LLMBackend{name: providerName, model: model, backend: backend}, nil
}

// Name implements Generator.
func (b *LLMBackend) Name() string { return b.name }

// Generate implements Generator. Any backend error and any empty response is
// wrapped in a GenerationError so the caller can fail over.
func (b *LLMBackend) Generate(ctx context.Context, req Request) (string, error) {
	content := req.Prompt
	if len(req.ImageData) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		// Inline the image as a data URI; OpenAI-compatible providers accept
		// data URIs in message content.
		uri := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(req.ImageData))
		content = req.Prompt + "\n\n" + uri
	}

	params := anyllmlib.CompletionParams{
		Model: b.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleUser, Content: content},
		},
	}

	resp, err := b.backend.Completion(ctx, params)
	if err != nil {
		return "", &GenerationError{Backend: b.name, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Backend: b.name, Err: fmt.Errorf("empty choices in response")}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.ContentString())
	if text == "" {
		return "", &GenerationError{Backend: b.name, Err: fmt.Errorf("empty completion text")}
	}
	return text, nil
}
