// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/httpcache"
)

func cacheRouter(cache *httpcache.Cache, hits *int) *gin.Engine {
	router := gin.New()
	router.GET("/products", CacheResponses(cache, nil), func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"served": *hits})
	})
	router.GET("/missing", CacheResponses(cache, nil), func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})
	return router
}

func TestCacheResponses_ServesSecondRequestFromCache(t *testing.T) {
	cache := httpcache.New(time.Minute, 16)
	var handlerRuns int
	router := cacheRouter(cache, &handlerRuns)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/products", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/products", nil))

	if handlerRuns != 1 {
		t.Errorf("handler ran %d times, want 1", handlerRuns)
	}
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body differs: %s vs %s", first.Body.String(), second.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("cached Content-Type = %q", ct)
	}
}

func TestCacheResponses_QueryStringsCacheIndependently(t *testing.T) {
	cache := httpcache.New(time.Minute, 16)
	var handlerRuns int
	router := cacheRouter(cache, &handlerRuns)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products?page=1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products?page=2", nil))

	if handlerRuns != 2 {
		t.Errorf("handler ran %d times, want 2 (distinct keys)", handlerRuns)
	}
}

func TestCacheResponses_DoesNotCacheErrors(t *testing.T) {
	cache := httpcache.New(time.Minute, 16)
	var handlerRuns int
	router := cacheRouter(cache, &handlerRuns)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if handlerRuns != 2 {
		t.Errorf("handler ran %d times, want 2 (404s pass through uncached)", handlerRuns)
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries, want 0", cache.Len())
	}
}

func TestInvalidateCache_ClearsOnSuccessfulMutation(t *testing.T) {
	cache := httpcache.New(time.Minute, 16)
	cache.Set("/v1/products", httpcache.Entry{Status: 200, Body: []byte("{}")})

	router := gin.New()
	router.POST("/admin/products", InvalidateCache(cache), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/products", nil))

	if cache.Len() != 0 {
		t.Error("a successful mutation should clear the cache")
	}
}

func TestInvalidateCache_ClearsEveryCache(t *testing.T) {
	products := httpcache.New(time.Minute, 16)
	products.Set("/v1/products", httpcache.Entry{Status: 200, Body: []byte("{}")})
	collections := httpcache.New(time.Minute, 16)
	collections.Set("/v1/collections", httpcache.Entry{Status: 200, Body: []byte("{}")})

	router := gin.New()
	router.POST("/admin/collections", InvalidateCache(products, collections), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/collections", nil))

	if products.Len() != 0 || collections.Len() != 0 {
		t.Errorf("caches hold %d and %d entries, want both cleared", products.Len(), collections.Len())
	}
}

func TestInvalidateCache_KeepsCacheOnFailure(t *testing.T) {
	cache := httpcache.New(time.Minute, 16)
	cache.Set("/v1/products", httpcache.Entry{Status: 200, Body: []byte("{}")})

	router := gin.New()
	router.POST("/admin/products", InvalidateCache(cache), func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/products", nil))

	if cache.Len() != 1 {
		t.Error("a failed mutation must not clear the cache")
	}
}

func TestInvalidateCache_IgnoresReads(t *testing.T) {
	cache := httpcache.New(time.Minute, 16)
	cache.Set("/v1/products", httpcache.Entry{Status: 200, Body: []byte("{}")})

	router := gin.New()
	router.GET("/admin/products", InvalidateCache(cache), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/products", nil))

	if cache.Len() != 1 {
		t.Error("reads must not clear the cache")
	}
}
