// Package openrouter implements llm.Generator over the OpenRouter chat API.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eduardolat/openroutergo"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
)

const defaultModel = "openai/gpt-4o-mini"

type completeFunc func(model, system, user string) (string, error)

// Client is a Generator backed by openroutergo.
type Client struct {
	model    string
	complete completeFunc
}

// NewClient builds a generator for model. An empty model uses the default.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	client, err := openroutergo.NewClient().WithAPIKey(apiKey).Create()
	if err != nil {
		return nil, fmt.Errorf("create openrouter client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{
		model: model,
		complete: func(model, system, user string) (string, error) {
			_, resp, err := client.
				NewChatCompletion().
				WithModel(model).
				WithSystemMessage(system).
				WithUserMessage(user).
				Execute()
			if err != nil {
				return "", err
			}
			if len(resp.Choices) == 0 {
				return "", llm.ErrEmptyResponse
			}
			return resp.Choices[0].Message.Content, nil
		},
	}, nil
}

type completion struct {
	content string
	err     error
}

// GenerateJSON runs the completion and extracts the JSON object from the reply.
// Execute is not context aware, so ctx only bounds how long we wait for it.
func (c *Client) GenerateJSON(ctx context.Context, p llm.Prompt) (json.RawMessage, error) {
	system := p.System
	if strings.TrimSpace(system) == "" {
		system = "Always respond with a single valid JSON object."
	}
	done := make(chan completion, 1)
	go func() {
		content, err := c.complete(c.model, system, p.User)
		done <- completion{content: content, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("openrouter completion: %w", res.err)
		}
		if strings.TrimSpace(res.content) == "" {
			return nil, llm.ErrEmptyResponse
		}
		return llm.ExtractJSON(res.content)
	}
}

var _ llm.Generator = (*Client)(nil)
