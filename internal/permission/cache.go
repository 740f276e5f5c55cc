package permission

import (
	"sync"
	"sync/atomic"
	"time"
)

// overrideCache is a TTL-based in-memory cache over the durable override
// store, using sync.Map for lock-free reads on the per-dispatch hot
// path. Stale-while-revalidate: an expired entry is still returned
// immediately, with a flag telling the caller a background refresh is
// needed — no dispatch ever blocks on a store round-trip after the
// first cold lookup for a given (project, tool) pair.
type overrideCache struct {
	store sync.Map // map[string]*cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	override   *PolicyOverride // nil means "looked up, no override exists"
	expiresAt  time.Time
	refreshing atomic.Bool
}

func newOverrideCache(ttl time.Duration) *overrideCache {
	return &overrideCache{ttl: ttl}
}

type cacheResult struct {
	Override     *PolicyOverride
	Hit          bool
	NeedsRefresh bool
}

func cacheKey(projectID, toolName string) string {
	return projectID + "\x00" + toolName
}

func (c *overrideCache) get(projectID, toolName string) cacheResult {
	val, ok := c.store.Load(cacheKey(projectID, toolName))
	if !ok {
		return cacheResult{}
	}
	entry := val.(*cacheEntry)

	if time.Now().Before(entry.expiresAt) {
		return cacheResult{Override: entry.override, Hit: true}
	}

	needsRefresh := entry.refreshing.CompareAndSwap(false, true)
	return cacheResult{Override: entry.override, Hit: true, NeedsRefresh: needsRefresh}
}

func (c *overrideCache) set(projectID, toolName string, override *PolicyOverride) {
	c.store.Store(cacheKey(projectID, toolName), &cacheEntry{
		override:  override,
		expiresAt: time.Now().Add(c.ttl),
	})
}

func (c *overrideCache) delete(projectID, toolName string) {
	c.store.Delete(cacheKey(projectID, toolName))
}
