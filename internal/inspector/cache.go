package inspector

import "sync"

type cacheEntry struct {
	hash uint64
	data []byte
}

// cache remembers the hashes of the last frames sent, so a frame
// that did not change can be sent as its index.
type cache struct {
	entries []cacheEntry
	idx     int
	enabled bool

	sync.RWMutex
}

func newCache(size int) *cache {
	return &cache{
		entries: make([]cacheEntry, size),
		enabled: true,
	}
}

// index returns the slot holding hash, or -1.
func (c *cache) index(hash uint64) int {
	c.RLock()
	defer c.RUnlock()
	if !c.enabled {
		return -1
	}
	for i, e := range c.entries {
		if e.data != nil && e.hash == hash {
			return i
		}
	}
	return -1
}

// add stores data in the next slot, overwriting the oldest entry.
func (c *cache) add(hash uint64, data []byte) int {
	c.Lock()
	defer c.Unlock()
	i := c.idx
	c.entries[i] = cacheEntry{hash: hash, data: data}
	c.idx = (c.idx + 1) % len(c.entries)
	return i
}

func (c *cache) setEnabled(on bool) {
	c.Lock()
	defer c.Unlock()
	c.enabled = on
	if !on {
		for i := range c.entries {
			c.entries[i] = cacheEntry{}
		}
		c.idx = 0
	}
}
