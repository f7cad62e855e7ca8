// Package query implements the catalog read path: the in-memory filter,
// sort and pagination pipeline over the category-scoped store result,
// the cache-aside flow around it, and write-driven cache invalidation.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agentmart/agentmart/internal/cache"
	"github.com/agentmart/agentmart/internal/store"
)

// SortStrategy selects the result ordering of a listing query.
type SortStrategy string

const (
	SortNone     SortStrategy = ""
	SortHotNow   SortStrategy = "hotnow"
	SortTopRated SortStrategy = "toprated"
	SortNewest   SortStrategy = "newest"
	SortFree     SortStrategy = "free"
)

// CategoryAll is the pseudo-category selecting the whole collection.
const CategoryAll = "All"

// DefaultLimit is used whenever the requested page size is missing or
// non-positive.
const DefaultLimit = 12

// ParseSortStrategy maps a raw sort parameter onto a strategy. An
// unrecognized value falls back to SortNone, which preserves store
// order.
func ParseSortStrategy(raw string) SortStrategy {
	normalized := strings.ToLower(raw)
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch SortStrategy(normalized) {
	case SortHotNow, SortTopRated, SortNewest, SortFree:
		return SortStrategy(normalized)
	default:
		return SortNone
	}
}

// Params are the listing query parameters. Malformed numeric inputs are
// coerced to defaults by Normalized, never rejected.
type Params struct {
	Category  string
	Sort      SortStrategy
	PriceMin  *float64
	PriceMax  *float64
	RatingMin *float64
	Tags      []string
	Features  []string
	Search    string
	Page      int
	Limit     int
}

// Normalized returns a copy with defaults applied: empty category
// becomes CategoryAll, page floors at 1, limit falls back to
// DefaultLimit, and an inverted price range is swapped.
func (p Params) Normalized() Params {
	if p.Category == "" {
		p.Category = CategoryAll
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.PriceMin != nil && p.PriceMax != nil && *p.PriceMin > *p.PriceMax {
		p.PriceMin, p.PriceMax = p.PriceMax, p.PriceMin
	}
	return p
}

// CacheKey builds the deterministic cache key for this parameter set.
// Search queries get the search namespace, category-scoped queries the
// category namespace, and whole-collection listings the listing
// namespace.
func (p Params) CacheKey() string {
	namespace := cache.NamespaceListing
	if p.Search != "" {
		namespace = cache.NamespaceSearch
	} else if p.Category != CategoryAll {
		namespace = cache.NamespaceCategory
	}

	kv := map[string]string{
		"category": p.Category,
		"sort":     string(p.Sort),
		"q":        strings.ToLower(p.Search),
		"page":     strconv.Itoa(p.Page),
		"limit":    strconv.Itoa(p.Limit),
	}
	if p.PriceMin != nil {
		kv["pricemin"] = strconv.FormatFloat(*p.PriceMin, 'f', -1, 64)
	}
	if p.PriceMax != nil {
		kv["pricemax"] = strconv.FormatFloat(*p.PriceMax, 'f', -1, 64)
	}
	if p.RatingMin != nil {
		kv["ratingmin"] = strconv.FormatFloat(*p.RatingMin, 'f', -1, 64)
	}
	if len(p.Tags) > 0 {
		kv["tags"] = sortedJoin(p.Tags)
	}
	if len(p.Features) > 0 {
		kv["features"] = sortedJoin(p.Features)
	}

	return cache.BuildKey(namespace, kv)
}

func sortedJoin(values []string) string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// PagedResult is the listing response envelope.
type PagedResult struct {
	Items      []*store.AgentRecord `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
}
