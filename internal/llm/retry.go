package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingGenerator struct {
	base  Generator
	delay time.Duration
}

// WithRetry wraps gen so a transient failure is retried once.
func WithRetry(gen Generator) Generator {
	if gen == nil {
		return nil
	}
	if _, ok := gen.(retryingGenerator); ok {
		return gen
	}
	return retryingGenerator{base: gen, delay: retryBaseDelay}
}

func (r retryingGenerator) GenerateJSON(ctx context.Context, p Prompt) (json.RawMessage, error) {
	out, err := r.base.GenerateJSON(ctx, p)
	if err == nil || !IsRetryable(err) {
		return out, err
	}
	telemetry.Warn("llm.retry", map[string]any{"prompt": p.Name, "attempt": 1, "error": err.Error()})
	if err := sleep(ctx, r.delay); err != nil {
		return nil, err
	}
	return r.base.GenerateJSON(ctx, p)
}

type retryingEmbedder struct {
	base  Embedder
	delay time.Duration
}

// WithEmbedRetry wraps emb so a transient failure is retried once.
func WithEmbedRetry(emb Embedder) Embedder {
	if emb == nil {
		return nil
	}
	return retryingEmbedder{base: emb, delay: retryBaseDelay}
}

func (r retryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := r.base.Embed(ctx, text)
	if err == nil || !IsRetryable(err) {
		return out, err
	}
	telemetry.Warn("llm.embed_retry", map[string]any{"attempt": 1, "error": err.Error()})
	if err := sleep(ctx, r.delay); err != nil {
		return nil, err
	}
	return r.base.Embed(ctx, text)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsTimeout reports deadline and client timeout errors.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// IsRetryable reports errors worth one more attempt: timeouts, 5xx and 429
// responses, and dropped connections.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	if IsTimeout(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "http status 429") || strings.Contains(msg, "server_error") {
		return true
	}
	for _, s := range []string{"connection reset", "connection refused", "connection closed", "broken pipe", "eof"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
