package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentmart/agentmart/internal/cache"
	"github.com/agentmart/agentmart/internal/store"
)

// CatalogStore is the document store capability the engine reads from.
// The store supports a single equality predicate (category); all richer
// filtering happens in memory here.
type CatalogStore interface {
	GetByID(ctx context.Context, id string) (*store.AgentRecord, error)
	QueryByCategory(ctx context.Context, category string) ([]*store.AgentRecord, error)
	ListAll(ctx context.Context) ([]*store.AgentRecord, error)
}

// ServiceConfig holds query engine tuning.
type ServiceConfig struct {
	// StoreTimeout bounds every catalog store read issued by the
	// engine. Zero selects the default.
	StoreTimeout time.Duration
}

// Service is the catalog query engine: cache-aside listing and detail
// reads over the category-pushdown store.
type Service struct {
	store        CatalogStore
	cache        cache.Store
	logger       *slog.Logger
	storeTimeout time.Duration
	now          func() time.Time
}

// NewService creates a query engine over the given store and cache.
func NewService(catalog CatalogStore, cacheStore cache.Store, cfg ServiceConfig) *Service {
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Service{
		store:        catalog,
		cache:        cacheStore,
		logger:       slog.Default(),
		storeTimeout: timeout,
		now:          time.Now,
	}
}

// ListAgents serves a filtered, sorted, paginated listing. Repeat
// queries are absorbed by the cache tier; a cache outage falls open to
// the store. Concurrent misses on one key may both recompute and write
// the same value; that bounded stampede is accepted rather than paying
// for per-key locking.
func (s *Service) ListAgents(ctx context.Context, params Params) (*PagedResult, error) {
	p := params.Normalized()
	key := p.CacheKey()

	var cached PagedResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var (
		recs []*store.AgentRecord
		err  error
	)
	if p.Category == CategoryAll {
		recs, err = s.store.ListAll(storeCtx)
	} else {
		recs, err = s.store.QueryByCategory(storeCtx, p.Category)
	}
	if err != nil {
		return nil, &StoreError{Op: "list", cause: err}
	}

	filtered := applyFilters(p, recs)
	sortRecords(p.Sort, filtered, s.now())

	result := paginate(filtered, p.Page, p.Limit)

	// Best-effort write-back; the TTL is derived from the key namespace.
	s.cache.Set(ctx, key, result)

	return result, nil
}

// GetAgentDetail serves a cache-first single-record fetch. skipCache
// forces a store read and refreshes the cached entry.
func (s *Service) GetAgentDetail(ctx context.Context, id string, skipCache bool) (*store.AgentRecord, error) {
	key := cache.DetailKey(id)

	if !skipCache {
		var cached store.AgentRecord
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rec, err := s.store.GetByID(storeCtx, id)
	if err != nil {
		return nil, &StoreError{Op: "detail", cause: err}
	}
	if rec == nil {
		return nil, &NotFoundError{ID: id}
	}

	s.cache.Set(ctx, key, rec)

	return rec, nil
}

// paginate slices the filtered set. totalPages is computed against the
// filtered total, not the unfiltered collection size.
func paginate(recs []*store.AgentRecord, page, limit int) *PagedResult {
	total := len(recs)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := min(start+limit, total)

	items := recs[start:end]
	if items == nil {
		items = []*store.AgentRecord{}
	}

	return &PagedResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
