package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
)

func TestClassifyAPIErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantText  string
		retryable bool
	}{
		{name: "server error", err: &genai.APIError{Code: 503, Message: "overloaded"}, wantText: "http status 503", retryable: true},
		{name: "rate limited", err: &genai.APIError{Code: 429, Message: "quota"}, wantText: "http status 429", retryable: true},
		{name: "bad request", err: fmt.Errorf("wrapped: %w", &genai.APIError{Code: 400, Message: "bad"}), wantText: "http status 400", retryable: false},
		{name: "transport", err: errors.New("dial tcp: connection refused"), wantText: "gemini request", retryable: true},
		{name: "deadline", err: context.DeadlineExceeded, wantText: "gemini request", retryable: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if !strings.Contains(got.Error(), tt.wantText) {
				t.Fatalf("classify(%v) = %q, want substring %q", tt.err, got, tt.wantText)
			}
			if llm.IsRetryable(got) != tt.retryable {
				t.Fatalf("retryable mismatch for %q", got)
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "", ""); err == nil {
		t.Fatalf("expected error without api key")
	}
}
