package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds the in-process cache. LRU eviction keeps
// memory flat when the key space grows past it.
const DefaultMemoryEntries = 4096

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store backed by an LRU with per-entry
// TTL. It serves as the cache tier when no Redis backend is configured
// and as the fake in tests.
type MemoryStore struct {
	entries *lru.Cache[string, *memoryEntry]
	now     func() time.Time

	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
	errors  atomic.Uint64
}

// NewMemoryStore creates an in-process cache holding up to maxEntries
// entries. maxEntries <= 0 selects DefaultMemoryEntries.
func NewMemoryStore(maxEntries int) (*MemoryStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}

	entries, err := lru.New[string, *memoryEntry](maxEntries)
	if err != nil {
		return nil, err
	}

	return &MemoryStore{
		entries: entries,
		now:     time.Now,
	}, nil
}

func (m *MemoryStore) lookup(key string) ([]byte, bool) {
	entry, ok := m.entries.Get(key)
	if !ok {
		return nil, false
	}
	if m.now().After(entry.expiresAt) {
		m.entries.Remove(key)
		return nil, false
	}
	return entry.payload, true
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, key string, dest any) bool {
	payload, ok := m.lookup(key)
	if !ok {
		m.misses.Add(1)
		return false
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		m.errors.Add(1)
		m.entries.Remove(key)
		return false
	}

	m.hits.Add(1)
	return true
}

// Set implements Store.
func (m *MemoryStore) Set(ctx context.Context, key string, value any, ttl ...time.Duration) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		m.errors.Add(1)
		return false
	}

	expiry := TTLFor(key)
	if len(ttl) > 0 && ttl[0] > 0 {
		expiry = ttl[0]
	}

	m.entries.Add(key, &memoryEntry{
		payload:   payload,
		expiresAt: m.now().Add(expiry),
	})
	m.sets.Add(1)
	return true
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, key string) bool {
	if m.entries.Remove(key) {
		m.deletes.Add(1)
	}
	return true
}

// DeleteByPattern implements Store. Patterns follow glob syntax as
// understood by path.Match; keys contain no separators that would
// trigger its slash special-casing.
func (m *MemoryStore) DeleteByPattern(ctx context.Context, pattern string) int {
	removed := 0
	for _, key := range m.entries.Keys() {
		ok, err := path.Match(pattern, key)
		if err != nil {
			m.errors.Add(1)
			return removed
		}
		if ok && m.entries.Remove(key) {
			removed++
		}
	}

	m.deletes.Add(uint64(removed))
	return removed
}

// GetMany implements Store.
func (m *MemoryStore) GetMany(ctx context.Context, keys []string) map[string]json.RawMessage {
	result := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		if payload, ok := m.lookup(key); ok {
			result[key] = json.RawMessage(payload)
			m.hits.Add(1)
		} else {
			m.misses.Add(1)
		}
	}
	return result
}

// SetMany implements Store.
func (m *MemoryStore) SetMany(ctx context.Context, entries map[string]any) bool {
	ok := true
	for key, value := range entries {
		if !m.Set(ctx, key, value) {
			ok = false
		}
	}
	return ok
}

// Ping implements Store. The in-process cache is always live.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Stats implements Store.
func (m *MemoryStore) Stats() Stats {
	return Stats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Sets:    m.sets.Load(),
		Deletes: m.deletes.Load(),
		Errors:  m.errors.Load(),
	}
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.entries.Purge()
	return nil
}
