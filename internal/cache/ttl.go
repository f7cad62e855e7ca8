package cache

import (
	"strings"
	"time"
)

// Cache key namespaces. Keys are built as "{namespace}:{...}" and the
// namespace alone decides the expiry bucket. The collection-derived
// namespaces all live under NamespaceCatalog, and no sibling is a
// boundary-prefix of another: a listing key can never alias into the
// category namespace.
const (
	NamespaceDetail   = "agent"           // single-record detail entries
	NamespaceCatalog  = "agents"          // parent of every collection-derived namespace
	NamespaceListing  = "agents:list"     // paginated listing results
	NamespaceCategory = "agents:category" // category-scoped aggregates
	NamespaceSearch   = "agents:search"   // search result pages
	NamespaceFeatured = "agents:featured" // featured/home rail results
	NamespaceUser     = "user"            // per-user derived state (likes, wishlist)
	NamespaceAdmin    = "admin"           // admin dashboards, volatile counters
	NamespaceExternal = "external"        // rate-limited third-party provider data
)

// TTL buckets, shortest to longest. Unknown namespaces get the shortest
// bucket: when policy is ambiguous, freshness wins over staleness.
const (
	TTLDynamic  = 5 * time.Minute
	TTLSearch   = time.Hour
	TTLListing  = 24 * time.Hour
	TTLDetail   = 7 * 24 * time.Hour
	TTLExternal = 30 * 24 * time.Hour
)

var ttlBuckets = map[string]time.Duration{
	NamespaceAdmin:    TTLDynamic,
	NamespaceUser:     TTLDynamic,
	NamespaceSearch:   TTLSearch,
	NamespaceFeatured: TTLSearch,
	NamespaceCatalog:  TTLListing,
	NamespaceListing:  TTLListing,
	NamespaceCategory: TTLListing,
	NamespaceDetail:   TTLDetail,
	NamespaceExternal: TTLExternal,
}

// TTLFor returns the expiry duration for a cache key. It is a pure
// function of the key's namespace prefix; the longest matching
// namespace wins, so "agents:search:..." resolves to the search bucket
// rather than the listing bucket.
func TTLFor(key string) time.Duration {
	var (
		best    int = -1
		bestTTL time.Duration
	)

	for ns, ttl := range ttlBuckets {
		if key != ns && !strings.HasPrefix(key, ns+":") {
			continue
		}
		if len(ns) > best {
			best = len(ns)
			bestTTL = ttl
		}
	}

	if best < 0 {
		return TTLDynamic
	}
	return bestTTL
}
