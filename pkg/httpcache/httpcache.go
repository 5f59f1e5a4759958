// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package httpcache is a small in-process TTL cache for rendered API
// responses.
//
// Each Cache is an explicit instance owned by whoever constructs it, so
// tests get isolated caches and the process holds no package-level
// mutable state. Entries expire lazily on read and are also swept when
// the cache grows past its bound, keeping memory use predictable under
// load.
package httpcache

import (
	"sync"
	"time"
)

// Entry is a cached response body with its content type and status.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

type record struct {
	entry     Entry
	expiresAt time.Time
}

// Cache stores rendered responses keyed by request path for a fixed TTL.
type Cache struct {
	mu         sync.RWMutex
	records    map[string]record
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	hits   uint64
	misses uint64
}

// New creates a Cache holding entries for ttl. maxEntries bounds the
// cache; when exceeded, expired records are swept and, if still over
// the bound, the incoming write is dropped rather than evicting live
// entries.
func New(ttl time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Cache{
		records:    make(map[string]record),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached entry for key, if present and unexpired.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	rec, ok := c.records[key]
	c.mu.RUnlock()

	if !ok {
		c.miss()
		return Entry{}, false
	}
	if c.now().After(rec.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; Set may have refreshed it.
		if cur, ok := c.records[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.records, key)
		}
		c.mu.Unlock()
		c.miss()
		return Entry{}, false
	}

	c.hit()
	return rec.entry, true
}

// Set stores an entry under key. Writes past the size bound are dropped
// after a sweep of expired records.
func (c *Cache) Set(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[key]; !exists && len(c.records) >= c.maxEntries {
		c.sweepLocked()
		if len(c.records) >= c.maxEntries {
			return
		}
	}
	c.records[key] = record{entry: entry, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate removes the entry for key, if any.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.records, key)
	c.mu.Unlock()
}

// Clear removes every entry. Called after writes that change catalog
// state, since any cached listing may now be stale.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.records = make(map[string]record)
	c.mu.Unlock()
}

// Len reports the number of records currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Stats reports cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *Cache) sweepLocked() {
	now := c.now()
	for key, rec := range c.records {
		if now.After(rec.expiresAt) {
			delete(c.records, key)
		}
	}
}

func (c *Cache) hit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache) miss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
