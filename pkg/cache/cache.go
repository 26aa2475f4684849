// Package cache is a bounded in-process LRU cache with per-entry TTL.
package cache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"
)

type entry struct {
	key     string
	value   any
	expires time.Time // zero = never
}

func (e *entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// Cache is safe for concurrent use. A nil *Cache is a valid, always-empty cache.
type Cache struct {
	mu    sync.Mutex
	index map[string]*list.Element
	lru   *list.List // front = most recently used
	max   int        // 0 = unbounded
	now   func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// New returns a cache holding at most maxItems entries (0 = unbounded). When
// sweepEvery > 0 a background goroutine drops expired entries until Close.
func New(maxItems int, sweepEvery time.Duration) *Cache {
	c := &Cache{
		index: make(map[string]*list.Element),
		lru:   list.New(),
		max:   max(maxItems, 0),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if sweepEvery > 0 {
		go c.sweepLoop(sweepEvery)
	}
	return c
}

// Close stops the sweeper. Safe to call more than once and on nil.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() { close(c.stop) })
}

// Len reports the number of entries, expired or not.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if e.expired(c.now()) {
		c.unlink(el)
		return nil, false
	}
	c.lru.MoveToFront(el)
	return e.value, true
}

// Set stores v under key for ttl; ttl <= 0 never expires.
func (c *Cache) Set(key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		e := el.Value.(*entry)
		e.value, e.expires = v, expires
		c.lru.MoveToFront(el)
		return
	}
	c.index[key] = c.lru.PushFront(&entry{key: key, value: v, expires: expires})
	if c.max > 0 && c.lru.Len() > c.max {
		c.unlink(c.lru.Back())
	}
}

func (c *Cache) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.unlink(el)
	}
}

func (c *Cache) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.sweep()
		}
	}
}

// sweep drops every expired entry.
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*entry).expired(now) {
			c.unlink(el)
		}
		el = prev
	}
}

// unlink removes el; caller holds c.mu.
func (c *Cache) unlink(el *list.Element) {
	c.lru.Remove(el)
	delete(c.index, el.Value.(*entry).key)
}

// KeyFromStrings hashes parts into a compact key. Parts are separated so
// ("ab","c") and ("a","bc") differ.
func KeyFromStrings(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return string(h.Sum(nil))
}
