// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the catalog
// service.
//
// Metrics are registered against an injected Registerer so tests can
// use a fresh registry without duplicate-registration panics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Constants
// =============================================================================

const (
	metricsNamespace = "storefront"
	httpSubsystem    = "http"
	cacheSubsystem   = "cache"
)

// =============================================================================
// Request Metrics
// =============================================================================

// RequestMetrics holds the Prometheus collectors for HTTP traffic.
type RequestMetrics struct {
	// RequestsTotal counts requests by method, route, and status class.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds tracks request latency by method and route.
	RequestDurationSeconds *prometheus.HistogramVec

	// CacheHitsTotal counts response-cache hits by route.
	CacheHitsTotal *prometheus.CounterVec

	// CacheMissesTotal counts response-cache misses by route.
	CacheMissesTotal *prometheus.CounterVec

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal prometheus.Counter
}

// NewRequestMetrics creates and registers the request collectors.
//
// # Inputs
//
//   - reg: Target registry. Pass prometheus.DefaultRegisterer in the
//     server, a fresh prometheus.NewRegistry() in tests.
//
// # Limitations
//
//   - Panics if the same registry is used twice (duplicate registration).
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	factory := promauto.With(reg)

	return &RequestMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route, and status class",
			},
			[]string{"method", "route", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by method and route",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "hits_total",
				Help:      "Response cache hits by route",
			},
			[]string{"route"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "misses_total",
				Help:      "Response cache misses by route",
			},
			[]string{"route"},
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the per-client rate limiter",
			},
		),
	}
}

// RecordRequest records one completed request.
func (m *RequestMetrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, classifyStatus(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// classifyStatus buckets a status code into its class to bound label
// cardinality.
func classifyStatus(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return "unknown"
}
