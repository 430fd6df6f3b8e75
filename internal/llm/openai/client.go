// Package openai implements llm.Generator and llm.Embedder against the OpenAI
// chat completions and embeddings endpoints.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
)

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultModel          = "gpt-4o-mini"
	defaultEmbeddingModel = "text-embedding-3-small"
)

// Client talks to OpenAI over HTTP.
type Client struct {
	http           *resty.Client
	model          string
	embeddingModel string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a compatible endpoint, mostly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(strings.TrimRight(url, "/")) }
}

// NewClient constructs a new OpenAI client. Empty models fall back to defaults.
func NewClient(apiKey, model, embeddingModel string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if strings.TrimSpace(embeddingModel) == "" {
		embeddingModel = defaultEmbeddingModel
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		model:          model,
		embeddingModel: embeddingModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

type apiError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateJSON runs a chat completion in JSON mode.
func (c *Client) GenerateJSON(ctx context.Context, p llm.Prompt) (json.RawMessage, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(p.System) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: p.User})

	req := chatRequest{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if supportsTemperature(c.model) {
		temp := float32(0.1)
		req.Temperature = &temp
	}

	var out chatResponse
	var failure apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		return nil, wrapTransport(err)
	}
	if resp.IsError() {
		return nil, statusError(resp.StatusCode(), failure)
	}
	if len(out.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	if out.Usage != nil {
		telemetry.Info("llm.usage", map[string]any{
			"provider":          "openai",
			"model":             c.model,
			"prompt":            p.Name,
			"prompt_tokens":     out.Usage.PromptTokens,
			"completion_tokens": out.Usage.CompletionTokens,
		})
	}
	return llm.ExtractJSON(out.Choices[0].Message.Content)
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("embed: empty text")
	}
	var out embeddingResponse
	var failure apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: c.embeddingModel, Input: text}).
		SetResult(&out).
		SetError(&failure).
		Post("/embeddings")
	if err != nil {
		return nil, wrapTransport(err)
	}
	if resp.IsError() {
		return nil, statusError(resp.StatusCode(), failure)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	return out.Data[0].Embedding, nil
}

func wrapTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
		return fmt.Errorf("openai request timeout: %w", err)
	}
	return fmt.Errorf("openai request: %w", err)
}

func statusError(status int, failure apiError) error {
	msg := "unknown error"
	if failure.Error != nil && failure.Error.Message != "" {
		msg = failure.Error.Message
	}
	return fmt.Errorf("openai http status %d: %s", status, msg)
}

// Reasoning models reject a custom temperature.
func supportsTemperature(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return !strings.HasPrefix(m, "gpt-5") && !strings.HasPrefix(m, "o1") && !strings.HasPrefix(m, "o3")
}

var (
	_ llm.Generator = (*Client)(nil)
	_ llm.Embedder  = (*Client)(nil)
)
