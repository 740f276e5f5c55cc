package adminapi

import (
	"sync"
	"sync/atomic"
	"time"
)

// authCacheEntry holds a validated-token result with a stale-while-
// revalidate TTL, the same shape as the teacher's auth.AuthCache.
type authCacheEntry struct {
	valid      bool
	expiresAt  time.Time
	refreshing atomic.Bool
}

type authCache struct {
	store sync.Map // map[string]*authCacheEntry, keyed by full token
	ttl   time.Duration
}

func newAuthCache(ttl time.Duration) *authCache {
	return &authCache{ttl: ttl}
}

func (c *authCache) get(token string) (valid bool, hit bool, needsRefresh bool) {
	v, ok := c.store.Load(token)
	if !ok {
		return false, false, false
	}
	entry := v.(*authCacheEntry)
	if time.Now().Before(entry.expiresAt) {
		return entry.valid, true, false
	}
	needsRefresh = entry.refreshing.CompareAndSwap(false, true)
	return entry.valid, true, needsRefresh
}

func (c *authCache) set(token string, valid bool) {
	c.store.Store(token, &authCacheEntry{
		valid:     valid,
		expiresAt: time.Now().Add(c.ttl),
	})
}
