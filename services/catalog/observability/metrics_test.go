// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
		{99, "unknown"},
		{700, "unknown"},
	}
	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestRecordRequest(t *testing.T) {
	m := NewRequestMetrics(prometheus.NewRegistry())

	m.RecordRequest("GET", "/v1/products", 200, 15*time.Millisecond)
	m.RecordRequest("GET", "/v1/products", 200, 20*time.Millisecond)
	m.RecordRequest("GET", "/v1/products", 500, 5*time.Millisecond)

	ok := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/v1/products", "2xx"))
	if ok != 2 {
		t.Errorf("2xx count = %v, want 2", ok)
	}
	failed := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/v1/products", "5xx"))
	if failed != 1 {
		t.Errorf("5xx count = %v, want 1", failed)
	}
}

func TestNewRequestMetrics_FreshRegistryPerTest(t *testing.T) {
	// Registering twice against distinct registries must not panic.
	_ = NewRequestMetrics(prometheus.NewRegistry())
	_ = NewRequestMetrics(prometheus.NewRegistry())
}
