package fetcher

import (
	"container/list"
	"sync"
)

// pageCache is a bounded LRU cache mapping URLs to page bodies.
//
// The cache is shared state during a walk: reads and writes happen from
// concurrent branch goroutines, so every operation takes the mutex.
// Entries never expire; they are only evicted when the cache is full,
// least recently used first. The first stored body for a URL wins and is
// never replaced within the cache's lifetime.
type pageCache struct {
	mu       sync.Mutex
	capacity int

	// ll orders entries by recency, front = most recently used.
	ll    *list.List
	items map[string]*list.Element
}

// cacheEntry is the value stored in each list element.
type cacheEntry struct {
	url  string
	body string
}

func newPageCache(capacity int) *pageCache {
	if capacity < 1 {
		capacity = 1
	}
	return &pageCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// get returns the cached body for url and refreshes its recency.
func (c *pageCache) get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[url]
	if !ok {
		return "", false
	}
	c.ll.MoveToFront(elem)
	return elem.Value.(*cacheEntry).body, true
}

// put stores a body for url unless one is already present (first success
// wins). When the cache is at capacity, the least recently used entry is
// evicted.
func (c *pageCache) put(url, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[url]; ok {
		c.ll.MoveToFront(elem)
		return
	}

	if c.ll.Len() >= c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).url)
		}
	}
	c.items[url] = c.ll.PushFront(&cacheEntry{url: url, body: body})
}

// len returns the number of cached entries.
func (c *pageCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
