package router

import (
	"regexp"
	"sync"
)

// regexCacheMaxSize is the maximum number of entries in the regex cache.
const regexCacheMaxSize = 1000

// regexCacheEntry holds a compiled regex and its access order for LRU eviction.
type regexCacheEntry struct {
	regex       *regexp.Regexp
	accessOrder int64
}

// regexCache is a bounded LRU cache of compiled expressions. Route tables
// are rebuilt on every reload, so matchers for unchanged patterns reuse
// their compiled form.
type regexCache struct {
	mu      sync.Mutex
	entries map[string]*regexCacheEntry
	counter int64
	maxSize int
	metrics *routerMetrics
}

var defaultRegexCache = newRegexCache(regexCacheMaxSize)

func newRegexCache(maxSize int) *regexCache {
	return &regexCache{
		entries: make(map[string]*regexCacheEntry),
		maxSize: maxSize,
		metrics: getRouterMetrics(),
	}
}

// compile returns the compiled expression for pattern.
func (c *regexCache) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	if entry, ok := c.entries[pattern]; ok {
		c.counter++
		entry.accessOrder = c.counter
		c.mu.Unlock()
		c.metrics.regexCache.WithLabelValues(cacheHit).Inc()
		return entry.regex, nil
	}
	c.mu.Unlock()

	c.metrics.regexCache.WithLabelValues(cacheMiss).Inc()

	// Compile outside the lock.
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have added it.
	if entry, ok := c.entries[pattern]; ok {
		c.counter++
		entry.accessOrder = c.counter
		return entry.regex, nil
	}

	if len(c.entries) >= c.maxSize {
		c.evictLRU()
		c.metrics.regexCache.WithLabelValues(cacheEviction).Inc()
	}

	c.counter++
	c.entries[pattern] = &regexCacheEntry{regex: regex, accessOrder: c.counter}
	c.metrics.regexCacheSize.Set(float64(len(c.entries)))

	return regex, nil
}

// evictLRU removes the least recently used entry. Must be called with
// c.mu held.
func (c *regexCache) evictLRU() {
	var lruKey string
	var lruOrder int64 = -1

	for key, entry := range c.entries {
		if lruOrder == -1 || entry.accessOrder < lruOrder {
			lruOrder = entry.accessOrder
			lruKey = key
		}
	}

	if lruKey != "" {
		delete(c.entries, lruKey)
	}
}

// len returns the number of cached expressions.
func (c *regexCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
