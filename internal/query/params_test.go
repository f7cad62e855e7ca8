package query

import (
	"strings"
	"testing"

	"github.com/agentmart/agentmart/internal/cache"
	"github.com/stretchr/testify/assert"
)

func TestParseSortStrategy(t *testing.T) {
	tests := []struct {
		raw  string
		want SortStrategy
	}{
		{"hotnow", SortHotNow},
		{"hot-now", SortHotNow},
		{"HOT_NOW", SortHotNow},
		{"TopRated", SortTopRated},
		{"top_rated", SortTopRated},
		{"newest", SortNewest},
		{"free", SortFree},
		{"", SortNone},
		{"bogus", SortNone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSortStrategy(tt.raw))
		})
	}
}

func TestParamsNormalized(t *testing.T) {
	p := Params{Page: 0, Limit: -5}.Normalized()
	assert.Equal(t, CategoryAll, p.Category)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = Params{Category: "Design", Page: 3, Limit: 50}.Normalized()
	assert.Equal(t, "Design", p.Category)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)
}

func TestParamsNormalized_SwapsInvertedPriceRange(t *testing.T) {
	p := Params{PriceMin: floatPtr(30), PriceMax: floatPtr(10)}.Normalized()
	assert.Equal(t, 10.0, *p.PriceMin)
	assert.Equal(t, 30.0, *p.PriceMax)
}

func TestParamsCacheKey_NamespaceSelection(t *testing.T) {
	listing := Params{}.Normalized().CacheKey()
	assert.True(t, strings.HasPrefix(listing, cache.NamespaceListing+":"), listing)
	assert.False(t, strings.HasPrefix(listing, cache.NamespaceCategory+":"), listing)

	category := Params{Category: "Design"}.Normalized().CacheKey()
	assert.True(t, strings.HasPrefix(category, cache.NamespaceCategory+":"), category)

	// Search wins over category scoping
	search := Params{Category: "Design", Search: "email"}.Normalized().CacheKey()
	assert.True(t, strings.HasPrefix(search, cache.NamespaceSearch+":"), search)
}

func TestParamsCacheKey_Deterministic(t *testing.T) {
	a := Params{
		Category: "Design",
		Tags:     []string{"b", "a"},
		Features: []string{"y", "x"},
	}.Normalized()
	b := Params{
		Category: "Design",
		Tags:     []string{"a", "b"},
		Features: []string{"x", "y"},
	}.Normalized()

	assert.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestParamsCacheKey_SearchCaseFolded(t *testing.T) {
	a := Params{Search: "Email"}.Normalized()
	b := Params{Search: "email"}.Normalized()
	assert.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestParamsCacheKey_DistinctPerPage(t *testing.T) {
	a := Params{Page: 1}.Normalized()
	b := Params{Page: 2}.Normalized()
	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
}
