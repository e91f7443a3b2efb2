package graph

import (
	"sync"

	"github.com/gyaneshwarpardhi/wordgraph/internal/metrics"
)

// Cache is a bounded least-recently-used alias table from node id to a node
// owned by a Store. Membership is a hint only: a miss says nothing about the
// store, and a hit must still be checked against the node's tombstone.
//
// All operations are O(1) and serialized behind one mutex.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*cacheEntry

	// Intrusive list: head is MRU, tail is LRU.
	head *cacheEntry
	tail *cacheEntry
}

type cacheEntry struct {
	id   string
	node *Node
	prev *cacheEntry
	next *cacheEntry
}

// NewCache returns an empty cache holding at most capacity entries.
func NewCache(capacity int) (*Cache, error) {
	if capacity < 1 {
		return nil, invalidf("cache capacity must be positive, got %d", capacity)
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry, capacity),
	}, nil
}

// Get returns the aliased node and promotes it to most-recently-used.
func (c *Cache) Get(id string) (*Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.node, true
}

// Put inserts or refreshes id. When the cache is full the least-recently-used
// entry is evicted first.
func (c *Cache) Put(id string, n *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		e.node = n
		c.moveToFront(e)
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictTail()
	}
	e := &cacheEntry{id: id, node: n}
	c.entries[id] = e
	c.pushFront(e)
}

// Remove drops id from the cache. It says nothing about the node itself.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		c.unlink(e)
		delete(c.entries, id)
	}
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry, c.capacity)
	c.head, c.tail = nil, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Cap() int { return c.capacity }

// Keys lists cached ids from most to least recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for e := c.head; e != nil; e = e.next {
		out = append(out, e.id)
	}
	return out
}

func (c *Cache) evictTail() {
	victim := c.tail
	if victim == nil {
		return
	}
	c.unlink(victim)
	delete(c.entries, victim.id)
	metrics.CacheEvictions.Inc()
}

func (c *Cache) pushFront(e *cacheEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) unlink(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *Cache) moveToFront(e *cacheEntry) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}
