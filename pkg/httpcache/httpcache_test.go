// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package httpcache

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	cache := New(time.Minute, 10)

	entry := Entry{Status: http.StatusOK, ContentType: "application/json", Body: []byte(`{"success":true}`)}
	cache.Set("/v1/products", entry)

	got, ok := cache.Get("/v1/products")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Status != http.StatusOK || string(got.Body) != `{"success":true}` {
		t.Errorf("got %+v, want %+v", got, entry)
	}
}

func TestCache_Miss(t *testing.T) {
	cache := New(time.Minute, 10)

	if _, ok := cache.Get("/v1/unknown"); ok {
		t.Error("expected cache miss")
	}
}

func TestCache_Expiry(t *testing.T) {
	cache := New(time.Minute, 10)
	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	cache.Set("/v1/products", Entry{Status: 200, Body: []byte("ok")})

	current = current.Add(59 * time.Second)
	if _, ok := cache.Get("/v1/products"); !ok {
		t.Error("entry should still be live before TTL")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get("/v1/products"); ok {
		t.Error("entry should expire after TTL")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be deleted on read, len = %d", cache.Len())
	}
}

func TestCache_Invalidate(t *testing.T) {
	cache := New(time.Minute, 10)
	cache.Set("/v1/products/hat", Entry{Status: 200})
	cache.Set("/v1/products/scarf", Entry{Status: 200})

	cache.Invalidate("/v1/products/hat")

	if _, ok := cache.Get("/v1/products/hat"); ok {
		t.Error("invalidated entry should miss")
	}
	if _, ok := cache.Get("/v1/products/scarf"); !ok {
		t.Error("other entries should survive Invalidate")
	}
}

func TestCache_Clear(t *testing.T) {
	cache := New(time.Minute, 10)
	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("/v1/products/%d", i), Entry{Status: 200})
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", cache.Len())
	}
}

func TestCache_BoundDropsWrites(t *testing.T) {
	cache := New(time.Minute, 2)
	cache.Set("a", Entry{Status: 200})
	cache.Set("b", Entry{Status: 200})
	cache.Set("c", Entry{Status: 200})

	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (write past bound dropped)", cache.Len())
	}
	if _, ok := cache.Get("c"); ok {
		t.Error("overflow write should not be stored")
	}
}

func TestCache_BoundSweepsExpiredFirst(t *testing.T) {
	cache := New(time.Minute, 2)
	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	cache.Set("a", Entry{Status: 200})
	cache.Set("b", Entry{Status: 200})

	// Both expire; the next write should sweep them and land.
	current = current.Add(2 * time.Minute)
	cache.Set("c", Entry{Status: 200})

	if _, ok := cache.Get("c"); !ok {
		t.Error("write should succeed after sweeping expired entries")
	}
}

func TestCache_RefreshExistingKeyAtBound(t *testing.T) {
	cache := New(time.Minute, 2)
	cache.Set("a", Entry{Status: 200, Body: []byte("v1")})
	cache.Set("b", Entry{Status: 200})

	// Overwriting an existing key must work even at the bound.
	cache.Set("a", Entry{Status: 200, Body: []byte("v2")})

	got, ok := cache.Get("a")
	if !ok || string(got.Body) != "v2" {
		t.Errorf("Get(a) = %q, %v; want v2, true", got.Body, ok)
	}
}

func TestCache_Stats(t *testing.T) {
	cache := New(time.Minute, 10)
	cache.Set("a", Entry{Status: 200})

	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	hits, misses := cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 2, 1", hits, misses)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := New(time.Minute, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("/v1/products/%d", n)
			cache.Set(key, Entry{Status: 200})
			cache.Get(key)
			cache.Invalidate(key)
		}(i)
	}
	wg.Wait()

	if cache.Len() != 0 {
		t.Errorf("Len() = %d after paired set/invalidate, want 0", cache.Len())
	}
}
