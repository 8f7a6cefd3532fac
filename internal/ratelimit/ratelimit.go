// Package ratelimit implements per-key fixed-window admission control on top
// of the repository.StateStore. The read-modify-write cycle is best effort:
// two concurrent requests for the same key may race and admit one extra
// request, which is an accepted tradeoff over distributed locking.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stemgharbiya/siteapi/internal/repository"
)

// counter is the persisted window state. The entry is stored with a TTL to
// the window end so lapsed windows are garbage-collected by the store even
// if the key is never read again.
type counter struct {
	Count   int   `json:"count"`
	Expires int64 `json:"expires"` // unix seconds
}

type Limiter struct {
	store  repository.StateStore
	window time.Duration
	max    int
	now    func() time.Time
}

func New(store repository.StateStore, window time.Duration, maxRequests int) *Limiter {
	// Expiry and TTL are tracked in whole seconds; a shorter window would
	// round both down to zero and leave counters without a TTL backstop.
	if window < time.Second {
		window = time.Second
	}
	return &Limiter{
		store:  store,
		window: window,
		max:    maxRequests,
		now:    time.Now,
	}
}

// Allow admits or rejects one request for key. Within an active window the
// count is incremented up to the ceiling; at the ceiling the request is
// rejected without mutating the counter. An expired window is replaced by a
// fresh one with count 1.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	kvKey := "rate:" + key
	now := l.now().Unix()

	raw, err := l.store.Get(ctx, kvKey)
	if err != nil {
		return false, fmt.Errorf("read rate counter: %w", err)
	}

	if raw != nil {
		var c counter
		if err := json.Unmarshal(raw, &c); err == nil && c.Expires > now {
			if c.Count >= l.max {
				return false, nil
			}
			c.Count++
			if err := l.put(ctx, kvKey, c, now); err != nil {
				return false, err
			}
			return true, nil
		}
		// Corrupt or expired entry: fall through and start a new window.
	}

	c := counter{Count: 1, Expires: now + int64(l.window.Seconds())}
	if err := l.put(ctx, kvKey, c, now); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Limiter) put(ctx context.Context, key string, c counter, now int64) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ttl := time.Duration(c.Expires-now) * time.Second
	if err := l.store.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("write rate counter: %w", err)
	}
	return nil
}
