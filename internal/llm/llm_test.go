package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "bare object", in: `{"median": 1}`, want: `{"median": 1}`},
		{name: "fenced", in: "```json\n{\"a\":[1,2]}\n```", want: `{"a":[1,2]}`},
		{name: "prose around", in: "Here you go: {\"a\":{\"b\":true}} thanks!", want: `{"a":{"b":true}}`},
		{name: "empty", in: "   ", wantErr: ErrEmptyResponse},
		{name: "no object", in: "sorry, I cannot", wantErr: ErrInvalidJSON},
		{name: "broken object", in: `{"a": }`, wantErr: ErrInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: context.DeadlineExceeded, want: true},
		{err: context.Canceled, want: false},
		{err: fmt.Errorf("openai http status 503: overloaded"), want: true},
		{err: fmt.Errorf("openai http status 429: slow down"), want: true},
		{err: fmt.Errorf("openai http status 400: bad request"), want: false},
		{err: fmt.Errorf("read: connection reset by peer"), want: true},
		{err: ErrNotConfigured, want: false},
		{err: ErrInvalidJSON, want: false},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Fatalf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWithRetryRetriesTransientOnce(t *testing.T) {
	calls := 0
	gen := GeneratorFunc(func(ctx context.Context, p Prompt) (json.RawMessage, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("http status 502")
		}
		return json.RawMessage(`{"ok":true}`), nil
	})
	r := retryingGenerator{base: gen, delay: time.Millisecond}

	out, err := r.GenerateJSON(context.Background(), Prompt{Name: "test"})
	if err != nil {
		t.Fatalf("expected success after retry: %v", err)
	}
	if string(out) != `{"ok":true}` || calls != 2 {
		t.Fatalf("unexpected out=%s calls=%d", out, calls)
	}
}

func TestWithRetrySkipsPermanentErrors(t *testing.T) {
	calls := 0
	gen := GeneratorFunc(func(ctx context.Context, p Prompt) (json.RawMessage, error) {
		calls++
		return nil, fmt.Errorf("http status 401: bad key")
	})
	if _, err := WithRetry(gen).GenerateJSON(context.Background(), Prompt{}); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestPlaceholder(t *testing.T) {
	if _, err := (Placeholder{}).GenerateJSON(context.Background(), Prompt{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := (Placeholder{}).Embed(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
