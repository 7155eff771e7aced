// Package jobcache is a bounded, thread-safe LRU cache of job-description
// embeddings, mirroring the OrderedDict move-to-end eviction semantics of
// the original service.
package jobcache

import (
	"container/list"
	"sync"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

type entry struct {
	jobID string
	value models.JobCacheEntry
}

// Cache is a fixed-capacity LRU cache keyed by job ID.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[string]*list.Element
}

// New constructs a Cache holding at most capacity entries.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// Store inserts or updates jobID's entry, promoting it to most recently
// used and evicting the least recently used entry if the cache is full.
func (c *Cache) Store(jobID string, value models.JobCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[jobID]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*entry).jobID)
		}
	}

	el := c.order.PushFront(&entry{jobID: jobID, value: value})
	c.index[jobID] = el
}

// Get returns jobID's cached entry, promoting it to most recently used.
func (c *Cache) Get(jobID string) (models.JobCacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[jobID]
	if !ok {
		return models.JobCacheEntry{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Delete removes jobID from the cache, if present.
func (c *Cache) Delete(jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[jobID]
	if !ok {
		return
	}
	c.order.Remove(el)
	delete(c.index, jobID)
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
