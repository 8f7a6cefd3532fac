package repository

import (
	"context"
	"time"
)

// StateStore abstracts the ephemeral key-value state behind the rate
// limiter's window counters. Implementations: Redis (production, TTL-backed
// expiry as the garbage-collection backstop) or in-memory (local dev and
// tests).
//
// Get returns (nil, nil) for a missing or expired key.
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
