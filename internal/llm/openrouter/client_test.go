package openrouter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
)

func TestGenerateJSONStripsFences(t *testing.T) {
	var gotModel, gotSystem string
	c := &Client{model: "m", complete: func(model, system, user string) (string, error) {
		gotModel, gotSystem = model, system
		return "```json\n{\"ok\":true}\n```", nil
	}}
	out, err := c.GenerateJSON(context.Background(), llm.Prompt{User: "hi"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if string(out) != `{"ok":true}` {
		t.Fatalf("unexpected output %s", out)
	}
	if gotModel != "m" || gotSystem == "" {
		t.Fatalf("model=%q system=%q", gotModel, gotSystem)
	}
}

func TestGenerateJSONEmptyContent(t *testing.T) {
	c := &Client{model: "m", complete: func(string, string, string) (string, error) { return "  ", nil }}
	if _, err := c.GenerateJSON(context.Background(), llm.Prompt{User: "hi"}); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateJSONHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := &Client{model: "m", complete: func(string, string, string) (string, error) {
		<-release
		return "{}", nil
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.GenerateJSON(ctx, llm.Prompt{User: "hi"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Fatalf("expected error without api key")
	}
}
