package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// maxPlainKeyLength caps readable keys. Past it the builder switches to
// a fixed-width content hash: collision probability at 64 bits is
// treated as negligible and not defended against.
const maxPlainKeyLength = 200

// BuildKey constructs a deterministic cache key from a namespace and a
// set of parameters. Pairs with empty values are dropped and the rest
// are sorted by key name, so two logically identical parameter sets
// produce an identical key regardless of construction order.
//
// Result shape: "{namespace}:{k1}:{v1}:{k2}:{v2}..." or, for oversized
// parameter sets, "{namespace}:{contentHash}".
func BuildKey(namespace string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(namespace)
	for _, name := range names {
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(params[name])
	}

	key := b.String()
	if len(key) > maxPlainKeyLength {
		return namespace + ":" + contentHash(key)
	}
	return key
}

// DetailKey returns the cache key for a single record's detail entry.
func DetailKey(id string) string {
	return NamespaceDetail + ":" + id
}

// UserAgentKey returns the cache key for a user's derived state on a
// record, e.g. a cached like/wishlist status.
func UserAgentKey(userID, agentID, kind string) string {
	return NamespaceUser + ":" + userID + ":" + NamespaceDetail + ":" + agentID + ":" + kind
}

func contentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
