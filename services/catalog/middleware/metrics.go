// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/perf"
	"github.com/fifthjohnson/storefront/services/catalog/observability"
)

// Metrics creates a Gin middleware that records every request into the
// Prometheus collectors and the in-process timing recorder.
//
// The route label comes from c.FullPath() so parameterized routes
// collapse to their template (e.g. /v1/products/:id), keeping label
// cardinality bounded. Unmatched routes are labeled "unmatched".
//
// Either argument may be nil to disable that sink.
func Metrics(m *observability.RequestMetrics, recorder *perf.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		status := c.Writer.Status()

		if m != nil {
			m.RecordRequest(c.Request.Method, route, status, duration)
		}
		if recorder != nil {
			recorder.Record(perf.Sample{
				Route:    route,
				Method:   c.Request.Method,
				Status:   status,
				Duration: duration,
				At:       start,
			})
		}
	}
}
