// Package cache stores AI responses keyed by a digest of their inputs, so a
// repeated salary benchmark or job match does not call the model again.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/util"
)

// Cache is a byte store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key builds a cache key from a namespace and the parts that identify a response.
func Key(namespace string, parts ...string) string {
	return namespace + ":" + util.HashParts(parts...)
}

// GetJSON decodes a cached JSON value into dst. An undecodable entry is
// treated as a miss and removed.
func GetJSON(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes value and stores it for ttl.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return c.Set(ctx, key, raw, ttl)
}
