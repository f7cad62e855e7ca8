package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey_Deterministic(t *testing.T) {
	// Two logically identical parameter sets built in different orders
	a := map[string]string{"category": "Design", "page": "1", "limit": "12"}
	b := map[string]string{"limit": "12", "category": "Design", "page": "1"}

	assert.Equal(t, BuildKey(NamespaceListing, a), BuildKey(NamespaceListing, b))
}

func TestBuildKey_SortedPairs(t *testing.T) {
	key := BuildKey(NamespaceListing, map[string]string{
		"sort":     "newest",
		"category": "All",
		"page":     "2",
	})

	assert.Equal(t, "agents:list:category:All:page:2:sort:newest", key)
}

func TestBuildKey_DropsEmptyValues(t *testing.T) {
	key := BuildKey(NamespaceListing, map[string]string{
		"category": "All",
		"q":        "",
		"tags":     "",
	})

	assert.Equal(t, "agents:list:category:All", key)
}

func TestBuildKey_HashFallbackForLargeParameterSets(t *testing.T) {
	params := map[string]string{
		"category":  "Productivity",
		"tags":      strings.Repeat("automation,", 20),
		"features":  strings.Repeat("integrations,", 10),
		"q":         "an unreasonably long search phrase",
		"pricemin":  "0",
		"pricemax":  "100",
		"ratingmin": "4",
		"sort":      "toprated",
		"page":      "3",
		"limit":     "24",
	}

	key := BuildKey(NamespaceListing, params)

	assert.True(t, strings.HasPrefix(key, NamespaceListing+":"))
	assert.Len(t, key, len(NamespaceListing)+1+16, "hash fallback is fixed width")

	// The hash form stays deterministic
	assert.Equal(t, key, BuildKey(NamespaceListing, params))

	// And still lands in its namespace's TTL bucket
	assert.Equal(t, TTLListing, TTLFor(key))
}

func TestDetailKey(t *testing.T) {
	assert.Equal(t, "agent:a1", DetailKey("a1"))
}

func TestUserAgentKey(t *testing.T) {
	assert.Equal(t, "user:u1:agent:a1:liked", UserAgentKey("u1", "a1", "liked"))
}
