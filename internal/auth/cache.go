package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/yukio/micropost/internal/model"
)

// DefaultCacheTTL is how long a verified identity is served from the cache
// before the credential must be re-verified against the provider.
const DefaultCacheTTL = 10 * time.Minute

// TokenCache is a process-wide store of verified identities, keyed by a
// SHA-256 digest of the raw bearer token. It exists to keep the common path
// (same client, same token, many requests) to a single map lookup instead of
// a round trip to the identity provider.
//
// Expiry is absolute (write time + TTL) and checked lazily on read; entries
// are never proactively evicted. Two requests racing to verify the same
// never-seen token may both call the provider and both write the key — the
// values are equivalent, so last writer wins and no coordination beyond the
// map lock is needed.
type TokenCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	// now is swapped out in tests so expiry is testable without sleeping.
	now func() time.Time
}

type cacheEntry struct {
	identity  *model.Identity
	expiresAt time.Time
}

// NewTokenCache creates a TokenCache. A non-positive ttl selects
// DefaultCacheTTL.
func NewTokenCache(ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TokenCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// cacheKey derives the storage key from a raw credential. One-way and
// collision-resistant — the raw token itself must never be stored or logged.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached identity for the token, or (nil, false) if the key
// is absent or past its expiry. An expired entry is a miss, full stop — the
// caller re-verifies and overwrites it via Put.
func (c *TokenCache) Get(token string) (*model.Identity, bool) {
	key := cacheKey(token)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.identity, true
}

// Put stores a verified identity for the token with expiry now + TTL.
func (c *TokenCache) Put(token string, identity *model.Identity) {
	key := cacheKey(token)
	entry := cacheEntry{
		identity:  identity,
		expiresAt: c.now().Add(c.ttl),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Len reports the number of entries currently held, including ones past
// their expiry (they linger until overwritten).
func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
