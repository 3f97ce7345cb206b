package svg

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the graphics held for one target. A part has at
// most one graphic per view.
const DefaultCacheSize = 8

type cached struct {
	g   *Graphic
	err error
}

// Cache shares parsed graphics between all checkers of one target run so
// that every file is parsed at most once. Failed loads are remembered too.
type Cache struct {
	lru *lru.Cache[string, cached]
}

// NewCache creates a cache holding at most size graphics. Evicted graphics
// are released.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.NewWithEvict(size, func(_ string, v cached) {
		if v.g != nil {
			v.g.Release()
		}
	})
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &Cache{lru: c}
}

// Load returns the parsed graphic at path, parsing it on first use.
func (c *Cache) Load(path string) (*Graphic, error) {
	if v, ok := c.lru.Get(path); ok {
		return v.g, v.err
	}
	g, err := Open(path)
	c.lru.Add(path, cached{g: g, err: err})
	return g, err
}

// Forget drops path so the next Load parses the file again. It is used
// after a fix rewrote the file.
func (c *Cache) Forget(path string) {
	c.lru.Remove(path)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge releases every cached graphic.
func (c *Cache) Purge() {
	c.lru.Purge()
}
