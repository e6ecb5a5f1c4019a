// Package cache provides a thread-safe LRU cache of collapsed notation ASTs.
//
// The cache is used by the parser when the WithCache option is set.
// It skips lexing and collapsing for notation that was seen before, which
// matters for bots and tools that roll the same few expressions all day.
// Only the immutable AST is cached: every parse still builds a fresh tree,
// so take-list state and memoized results are never shared.
//
// # Example
//
//	c := cache.New(1024)
//	ast, err := c.GetOrCollapse("4d6kh3", collapse)
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/sandrolain/godice/pkg/types"
)

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key string
	ast *types.ASTNode
}

// Cache is a thread-safe LRU (Least Recently Used) cache for collapsed ASTs.
// Once the capacity is reached, the least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a collapsed AST from the cache.
// Returns (ast, true) if found and moves the entry to front (MRU).
// Returns (nil, false) if not present.
func (c *Cache) Get(key string) (*types.ASTNode, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	// Already most recent: skip the write lock entirely.
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if !alreadyFront {
		// Promote to front under write lock; re-check in case of concurrent eviction.
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()

		if !ok {
			c.misses.Add(1)
			return nil, false
		}
	}
	c.hits.Add(1)
	return el.Value.(*entry).ast, true
}

// Set inserts or replaces an AST in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key string, ast *types.ASTNode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).ast = ast
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{key: key, ast: ast})
	c.items[key] = el
}

// GetOrCollapse retrieves the AST for key from cache, or calls collapse()
// to create it, caches the result, and returns it.
// Errors are not cached.
func (c *Cache) GetOrCollapse(key string, collapse func() (*types.ASTNode, error)) (*types.ASTNode, error) {
	if ast, ok := c.Get(key); ok {
		return ast, nil
	}
	ast, err := collapse()
	if err != nil {
		return nil, err
	}
	c.Set(key, ast)
	return ast, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns the number of lookups that hit and missed since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
