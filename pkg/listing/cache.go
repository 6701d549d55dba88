package listing

import (
	"slices"
	"sync"
)

// NameCache maps enumeration keys to complete key lists.
//
// Entries never expire and are only replaced wholesale. The cache is safe
// for concurrent use.
type NameCache struct {
	mu      sync.RWMutex
	entries map[Key][]string
}

// NewNameCache returns an empty cache.
func NewNameCache() *NameCache {
	return &NameCache{entries: make(map[Key][]string)}
}

// Get returns the cached list for k. The returned slice is shared and must
// not be modified; its capacity is clipped so appending to it copies.
func (c *NameCache) Get(k Key) ([]string, bool) {
	c.mu.RLock()
	names, ok := c.entries[k]
	c.mu.RUnlock()
	return names, ok
}

// Put stores a copy of names under k, replacing any previous entry.
func (c *NameCache) Put(k Key, names []string) {
	stored := slices.Clip(slices.Clone(names))
	if stored == nil {
		stored = []string{}
	}
	c.mu.Lock()
	c.entries[k] = stored
	c.mu.Unlock()
}

// Len returns the number of cached enumerations.
func (c *NameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
