// Package llm defines the model-facing seams of the service: a Generator that
// returns JSON and an Embedder that turns text into a KB vector.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Prompt is a single-turn instruction for a JSON-producing model.
type Prompt struct {
	System string
	User   string
	// Name labels the prompt in logs, e.g. "salary_benchmark".
	Name string
}

// Generator produces a JSON document for a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, p Prompt) (json.RawMessage, error)
}

// Embedder produces a dense vector for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var (
	// ErrNotConfigured is returned by the placeholder provider.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrInvalidJSON is returned when model output holds no JSON object.
	ErrInvalidJSON = errors.New("llm returned invalid JSON")
	// ErrEmptyResponse is returned when a provider answers with no content.
	ErrEmptyResponse = errors.New("llm returned empty response")
)

// Placeholder satisfies both interfaces and always fails with ErrNotConfigured.
type Placeholder struct{}

func (Placeholder) GenerateJSON(context.Context, Prompt) (json.RawMessage, error) {
	return nil, ErrNotConfigured
}

func (Placeholder) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrNotConfigured
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, p Prompt) (json.RawMessage, error)

func (f GeneratorFunc) GenerateJSON(ctx context.Context, p Prompt) (json.RawMessage, error) {
	return f(ctx, p)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
