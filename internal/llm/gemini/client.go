// Package gemini implements llm.Generator and llm.Embedder with the Google
// Gen AI SDK against the Gemini API backend.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
)

const (
	defaultModel          = "gemini-2.5-flash"
	defaultEmbeddingModel = "gemini-embedding-001"
	maxEmbedChars         = 10000
)

// Client wraps a genai client.
type Client struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

// NewClient constructs a Gemini client. Empty models fall back to defaults.
func NewClient(ctx context.Context, apiKey, model, embeddingModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if strings.TrimSpace(embeddingModel) == "" {
		embeddingModel = defaultEmbeddingModel
	}
	return &Client{client: client, model: model, embeddingModel: embeddingModel}, nil
}

// GenerateJSON asks the model for an application/json response.
func (c *Client) GenerateJSON(ctx context.Context, p llm.Prompt) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}
	if strings.TrimSpace(p.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(p.User), cfg)
	if err != nil {
		return nil, classify(err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, llm.ErrEmptyResponse
	}
	return llm.ExtractJSON(result.Text())
}

// Embed returns the first embedding for text, truncated to the model's input budget.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("embed: empty text")
	}
	if len(text) > maxEmbedChars {
		text = text[:maxEmbedChars]
	}
	content := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	result, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, content, nil)
	if err != nil {
		return nil, classify(err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	values := result.Embeddings[0].Values
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("gemini embedding: invalid value at index %d", i)
		}
	}
	return values, nil
}

// classify rewrites API errors into the "http status N" shape llm.IsRetryable understands.
func classify(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return fmt.Errorf("gemini http status %d: %s", apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("gemini request: %w", err)
}

var (
	_ llm.Generator = (*Client)(nil)
	_ llm.Embedder  = (*Client)(nil)
)
