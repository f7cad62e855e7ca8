package cache

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	reconnectAttempts  = 5
	reconnectBaseDelay = 200 * time.Millisecond
	reconnectMaxDelay  = 10 * time.Second
)

// StartKeepAlive runs a supervised liveness probe for the Redis backend
// until ctx is cancelled. On a failed ping it reconnects with
// exponential backoff and jitter. Independent of request-serving paths:
// requests keep failing open while the backend is down.
func (s *RedisStore) StartKeepAlive(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Ping(ctx); err == nil {
					continue
				}

				s.logger.Warn("cache backend unreachable, reconnecting", "addr", s.cfg.Addr)

				err := retry.Do(
					func() error { return s.reconnect(ctx) },
					retry.Context(ctx),
					retry.Attempts(reconnectAttempts),
					retry.Delay(reconnectBaseDelay),
					retry.MaxDelay(reconnectMaxDelay),
					retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
					retry.LastErrorOnly(true),
					retry.OnRetry(func(n uint, err error) {
						s.logger.Debug("cache reconnect attempt failed", "attempt", n+1, "err", err)
					}),
				)
				if err != nil {
					s.logger.Warn("cache reconnect failed, will retry next probe", "addr", s.cfg.Addr, "err", err)
				} else {
					s.logger.Info("cache backend reconnected", "addr", s.cfg.Addr)
				}
			}
		}
	}()
}
