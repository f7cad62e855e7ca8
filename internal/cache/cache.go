// Package cache provides the key-value cache tier for the catalog:
// a fault-tolerant store wrapper, the namespace TTL policy and the
// deterministic cache key builder.
//
// Every Store operation is best-effort: failures are logged and reported
// as a miss or an unsuccessful write, never raised to callers. A cache
// outage degrades latency, not correctness.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is the injected cache capability. Implementations must never
// propagate backend or serialization failures to callers.
type Store interface {
	// Get deserializes the cached value for key into dest and reports
	// whether a usable entry was found.
	Get(ctx context.Context, key string, dest any) bool

	// Set serializes value under key. When no ttl is given, one is
	// derived from the key's namespace via TTLFor.
	Set(ctx context.Context, key string, value any, ttl ...time.Duration) bool

	// Delete removes a single key.
	Delete(ctx context.Context, key string) bool

	// DeleteByPattern removes all keys matching a glob pattern and
	// returns how many were removed. O(n) over total key count; used
	// only for coarse invalidation, never on hot paths.
	DeleteByPattern(ctx context.Context, pattern string) int

	// GetMany fetches multiple keys in one round trip. Missing or
	// unreadable keys are absent from the result.
	GetMany(ctx context.Context, keys []string) map[string]json.RawMessage

	// SetMany writes multiple entries in one round trip, deriving each
	// TTL from its key.
	SetMany(ctx context.Context, entries map[string]any) bool

	// Ping probes backend liveness.
	Ping(ctx context.Context) error

	// Stats returns operation counters.
	Stats() Stats

	Close() error
}

// Stats holds cache operation counters.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Errors  uint64 `json:"errors"`
}
