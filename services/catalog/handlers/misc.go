// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/perf"
)

// Health reports liveness. Kept dependency-free so load balancers get
// an answer even when the database is down.
func Health(version string) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		respondOK(c, "OK", gin.H{
			"status":  "healthy",
			"version": version,
			"uptime":  time.Since(started).Round(time.Second).String(),
		})
	}
}

// PerfSnapshot exposes the in-process request timing recorder for
// diagnostics. Admin-only; the recent samples include route templates.
func PerfSnapshot(recorder *perf.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondOK(c, "Performance snapshot", recorder.Snapshot())
	}
}
