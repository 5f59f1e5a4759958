// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/httpcache"
	"github.com/fifthjohnson/storefront/services/catalog/observability"
)

// CacheResponses creates a Gin middleware that serves GET responses
// from the cache and stores fresh 200 responses on miss.
//
// The cache key is path plus raw query, so paginated and filtered
// listings cache independently. Non-GET methods and non-200 responses
// pass through uncached. Each route class carries its own cache
// instance with its own TTL; InvalidateCache clears them on writes.
//
// metrics may be nil.
func CacheResponses(cache *httpcache.Cache, metrics *observability.RequestMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			key += "?" + raw
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if entry, ok := cache.Get(key); ok {
			if metrics != nil {
				metrics.CacheHitsTotal.WithLabelValues(route).Inc()
			}
			c.Header("X-Cache", "HIT")
			c.Data(entry.Status, entry.ContentType, entry.Body)
			c.Abort()
			return
		}
		if metrics != nil {
			metrics.CacheMissesTotal.WithLabelValues(route).Inc()
		}

		capture := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Header("X-Cache", "MISS")
		c.Next()

		if capture.Status() == http.StatusOK {
			cache.Set(key, httpcache.Entry{
				Status:      capture.Status(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
		}
	}
}

// InvalidateCache creates a Gin middleware that clears the given
// response caches after any successful mutating request. Installed on
// the admin group, where every write can change what public listings
// render; product and collection caches are cleared together because
// membership writes touch both.
func InvalidateCache(caches ...*httpcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet && c.Writer.Status() < 400 {
			for _, cache := range caches {
				cache.Clear()
			}
		}
	}
}

// captureWriter tees the response body so it can be cached after the
// handler runs.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
