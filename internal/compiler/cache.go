package compiler

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes compiles of one Options. Concurrent requests for the same
// text share a single compile. Entries are evicted oldest first once the
// cache holds size results.
//
// Cached results are shared between callers and must not be modified.
type Cache struct {
	opts  Options
	size  int
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]Result
	order   []string
}

// NewCache returns a cache of at most size results compiled with opts.
func NewCache(opts Options, size int) *Cache {
	if size <= 0 {
		size = 1
	}
	return &Cache{
		opts:    opts,
		size:    size,
		entries: make(map[string]Result),
	}
}

// Compile returns the cached result for text, compiling it on a miss.
// Relative dates are keyed by the day they were resolved against, so a
// cache created with a zero Today does not serve stale partial dates once
// its clock crosses midnight.
func (c *Cache) Compile(text string) Result {
	opts := c.opts
	opts.Today = opts.today()
	key := opts.Today.Format(time.DateOnly) + "\x00" + text

	c.mu.Lock()
	res, ok := c.entries[key]
	c.mu.Unlock()
	c.opts.Metrics.cacheLookup(ok)
	if ok {
		return res
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		res := Compile(text, opts)
		c.store(key, res)
		return res, nil
	})
	return v.(Result)
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) store(key string, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	for len(c.order) >= c.size {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = res
	c.order = append(c.order, key)
}
