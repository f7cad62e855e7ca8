package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// scanBatchSize is the COUNT hint passed to SCAN during pattern
	// deletion.
	scanBatchSize = 200

	// deleteChunkSize bounds how many keys a single DEL carries.
	deleteChunkSize = 512
)

// RedisConfig holds Redis cache backend configuration.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	OpTimeout time.Duration
}

// RedisStore is a Store backed by Redis. All operations fail open: a
// connectivity or serialization problem is logged and surfaced as a
// miss or unsuccessful write.
type RedisStore struct {
	mu     sync.RWMutex
	client *redis.Client

	cfg    RedisConfig
	logger *slog.Logger

	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
	errors  atomic.Uint64
}

// NewRedisStore connects to Redis. An initial ping failure is logged
// rather than returned; the keep-alive loop reconnects in the
// background and requests fall through to the catalog store meanwhile.
func NewRedisStore(cfg RedisConfig, logger *slog.Logger) *RedisStore {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &RedisStore{
		cfg:    cfg,
		logger: logger,
		client: newRedisClient(cfg),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OpTimeout)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, serving without cache", "addr", cfg.Addr, "err", err)
	}

	return s
}

func newRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (s *RedisStore) getClient() *redis.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *RedisStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OpTimeout)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string, dest any) bool {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	payload, err := s.getClient().Get(opCtx, key).Bytes()
	if err == redis.Nil {
		s.misses.Add(1)
		return false
	}
	if err != nil {
		s.errors.Add(1)
		s.logger.Warn("cache get failed", "key", key, "err", err)
		return false
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		s.errors.Add(1)
		s.logger.Warn("cache entry undecodable, treating as miss", "key", key, "err", err)
		return false
	}

	s.hits.Add(1)
	return true
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl ...time.Duration) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		s.errors.Add(1)
		s.logger.Warn("cache value unserializable", "key", key, "err", err)
		return false
	}

	expiry := TTLFor(key)
	if len(ttl) > 0 && ttl[0] > 0 {
		expiry = ttl[0]
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.getClient().Set(opCtx, key, payload, expiry).Err(); err != nil {
		s.errors.Add(1)
		s.logger.Warn("cache set failed", "key", key, "err", err)
		return false
	}

	s.sets.Add(1)
	return true
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) bool {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.getClient().Del(opCtx, key).Err(); err != nil {
		s.errors.Add(1)
		s.logger.Warn("cache delete failed", "key", key, "err", err)
		return false
	}

	s.deletes.Add(1)
	return true
}

// DeleteByPattern implements Store. SCAN is used instead of KEYS so the
// probe never blocks the backend; matched keys are deleted in chunked
// pipelined DELs. No per-operation timeout: a broad pattern over a
// large key space legitimately takes longer than a point lookup, so
// only the caller's context bounds it.
func (s *RedisStore) DeleteByPattern(ctx context.Context, pattern string) int {
	client := s.getClient()

	var keys []string
	iter := client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.errors.Add(1)
		s.logger.Warn("cache pattern scan failed", "pattern", pattern, "err", err)
		return 0
	}

	removed := 0
	for start := 0; start < len(keys); start += deleteChunkSize {
		end := min(start+deleteChunkSize, len(keys))
		n, err := client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			s.errors.Add(1)
			s.logger.Warn("cache pattern delete failed", "pattern", pattern, "err", err)
			break
		}
		removed += int(n)
	}

	s.deletes.Add(uint64(removed))
	return removed
}

// GetMany implements Store, pipelining the point lookups.
func (s *RedisStore) GetMany(ctx context.Context, keys []string) map[string]json.RawMessage {
	if len(keys) == 0 {
		return nil
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	pipe := s.getClient().Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(keys))
	for _, key := range keys {
		cmds[key] = pipe.Get(opCtx, key)
	}

	if _, err := pipe.Exec(opCtx); err != nil && err != redis.Nil {
		s.errors.Add(1)
		s.logger.Warn("cache batch get failed", "keys", len(keys), "err", err)
		return nil
	}

	result := make(map[string]json.RawMessage, len(keys))
	for key, cmd := range cmds {
		payload, err := cmd.Bytes()
		if err == redis.Nil {
			s.misses.Add(1)
			continue
		}
		if err != nil {
			s.errors.Add(1)
			continue
		}
		result[key] = json.RawMessage(payload)
		s.hits.Add(1)
	}

	return result
}

// SetMany implements Store, pipelining the writes with per-key TTLs.
func (s *RedisStore) SetMany(ctx context.Context, entries map[string]any) bool {
	if len(entries) == 0 {
		return true
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	pipe := s.getClient().Pipeline()
	for key, value := range entries {
		payload, err := json.Marshal(value)
		if err != nil {
			s.errors.Add(1)
			s.logger.Warn("cache value unserializable", "key", key, "err", err)
			continue
		}
		pipe.Set(opCtx, key, payload, TTLFor(key))
	}

	if _, err := pipe.Exec(opCtx); err != nil {
		s.errors.Add(1)
		s.logger.Warn("cache batch set failed", "entries", len(entries), "err", err)
		return false
	}

	s.sets.Add(uint64(len(entries)))
	return true
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return s.getClient().Ping(opCtx).Err()
}

// Stats implements Store.
func (s *RedisStore) Stats() Stats {
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Sets:    s.sets.Load(),
		Deletes: s.deletes.Load(),
		Errors:  s.errors.Load(),
	}
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.getClient().Close()
}

// reconnect swaps in a fresh client after closing the old one.
func (s *RedisStore) reconnect(ctx context.Context) error {
	s.mu.Lock()
	old := s.client
	s.client = newRedisClient(s.cfg)
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	return s.Ping(ctx)
}
