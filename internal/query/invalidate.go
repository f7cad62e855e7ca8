package query

import (
	"context"
	"log/slog"

	"github.com/agentmart/agentmart/internal/cache"
	"github.com/sourcegraph/conc/pool"
)

// maxInvalidationWorkers bounds concurrent pattern scans per mutation.
const maxInvalidationWorkers = 4

// Invalidator clears cache entries affected by catalog mutations. The
// mutation surface calls it after every write, before acknowledging the
// caller, so the writer's own next read is consistent. Other in-flight
// readers may still observe pre-write state; that weak-consistency
// window is accepted.
type Invalidator struct {
	cache  cache.Store
	logger *slog.Logger
}

// NewInvalidator creates an invalidation coordinator over the cache.
func NewInvalidator(cacheStore cache.Store) *Invalidator {
	return &Invalidator{
		cache:  cacheStore,
		logger: slog.Default(),
	}
}

// categoryPatterns covers every listing, category, search and featured
// key that may embed records of the given category, including the
// whole-collection aggregate. The patterns are rooted at the catalog
// parent namespace so they reach both the listing and the category
// sub-namespace. Hash-collapsed keys escape these patterns and age out
// by TTL instead.
func categoryPatterns(category string) []string {
	// An unscoped mutation cannot be narrowed; flush every category's
	// listings rather than risk serving stale ones.
	if category == "" {
		category = "*"
	}

	return []string{
		cache.NamespaceCatalog + ":*category:" + CategoryAll + "*",
		cache.NamespaceCatalog + ":*category:" + category + "*",
		cache.NamespaceSearch + ":*",
		cache.NamespaceFeatured + ":*",
	}
}

// InvalidateAgent clears, in order: the record's own detail key, every
// listing/category/search key covering its category, and any per-user
// derived keys embedding the record id. Pattern deletes within a group
// run concurrently.
func (inv *Invalidator) InvalidateAgent(ctx context.Context, id, category string) {
	inv.cache.Delete(ctx, cache.DetailKey(id))

	inv.deletePatterns(ctx, categoryPatterns(category))
	inv.deletePatterns(ctx, []string{
		cache.NamespaceUser + ":*:" + cache.NamespaceDetail + ":" + id + ":*",
	})
}

// InvalidateCategory clears every listing-derived key covering a
// category.
func (inv *Invalidator) InvalidateCategory(ctx context.Context, category string) {
	inv.deletePatterns(ctx, categoryPatterns(category))
}

// InvalidateAll clears every catalog-derived namespace. Used by bulk
// imports and the scheduled maintenance flush.
func (inv *Invalidator) InvalidateAll(ctx context.Context) {
	inv.deletePatterns(ctx, []string{
		cache.NamespaceDetail + ":*",
		cache.NamespaceCatalog + ":*",
		cache.NamespaceUser + ":*",
	})
}

func (inv *Invalidator) deletePatterns(ctx context.Context, patterns []string) {
	p := pool.New().WithMaxGoroutines(maxInvalidationWorkers)
	for _, pattern := range patterns {
		pattern := pattern
		p.Go(func() {
			n := inv.cache.DeleteByPattern(ctx, pattern)
			if n > 0 {
				inv.logger.Debug("cache entries invalidated", "pattern", pattern, "count", n)
			}
		})
	}
	p.Wait()
}
