package cache

import (
	"context"
	"time"
)

// NullCache stores nothing; every Get misses. Reason, when set, says why
// caching is off so callers can tell the user.
type NullCache struct {
	Reason string
}

var _ Cache = (*NullCache)(nil)

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Disabled creates a null cache recording why caching is off.
func Disabled(reason string) *NullCache {
	return &NullCache{Reason: reason}
}

// DisabledReason reports why c does not cache, or "" if it does.
func DisabledReason(c Cache) string {
	if n, ok := c.(*NullCache); ok {
		if n.Reason == "" {
			return "disabled"
		}
		return n.Reason
	}
	return ""
}

// Get always misses.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (*NullCache) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (*NullCache) Close() error { return nil }
