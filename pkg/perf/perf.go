// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package perf records per-request timings in a bounded ring buffer.
//
// The recorder keeps the most recent N samples plus running aggregates
// over the process lifetime. Memory use is fixed regardless of uptime;
// old samples fall off the ring as new ones arrive. Snapshot exposes
// the data for diagnostics endpoints.
package perf

import (
	"sort"
	"sync"
	"time"
)

// Sample is one recorded request.
type Sample struct {
	Route    string        `json:"route"`
	Method   string        `json:"method"`
	Status   int           `json:"status"`
	Duration time.Duration `json:"durationNs"`
	At       time.Time     `json:"at"`
}

// Snapshot is a point-in-time view of recorder state.
type Snapshot struct {
	TotalRequests uint64        `json:"totalRequests"`
	TotalErrors   uint64        `json:"totalErrors"`
	SlowRequests  uint64        `json:"slowRequests"`
	MeanDuration  time.Duration `json:"meanDurationNs"`
	P95Duration   time.Duration `json:"p95DurationNs"`
	MaxDuration   time.Duration `json:"maxDurationNs"`
	Recent        []Sample      `json:"recent"`
}

// Recorder accumulates request samples. Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	ring []Sample
	next int
	full bool

	slowThreshold time.Duration
	totalRequests uint64
	totalErrors   uint64
	slowRequests  uint64
	totalDuration time.Duration
	maxDuration   time.Duration
}

// NewRecorder creates a Recorder keeping the last capacity samples.
// Requests slower than slowThreshold are counted separately; pass 0 to
// use the one-second default.
func NewRecorder(capacity int, slowThreshold time.Duration) *Recorder {
	if capacity <= 0 {
		capacity = 256
	}
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}
	return &Recorder{
		ring:          make([]Sample, capacity),
		slowThreshold: slowThreshold,
	}
}

// Record stores one sample, overwriting the oldest when the ring is full.
func (r *Recorder) Record(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ring[r.next] = s
	r.next++
	if r.next == len(r.ring) {
		r.next = 0
		r.full = true
	}

	r.totalRequests++
	r.totalDuration += s.Duration
	if s.Duration > r.maxDuration {
		r.maxDuration = s.Duration
	}
	if s.Duration >= r.slowThreshold {
		r.slowRequests++
	}
	if s.Status >= 500 {
		r.totalErrors++
	}
}

// Snapshot returns aggregates plus the retained samples, oldest first.
// The p95 is computed over the ring contents, not all-time.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	recent := r.orderedLocked()

	snap := Snapshot{
		TotalRequests: r.totalRequests,
		TotalErrors:   r.totalErrors,
		SlowRequests:  r.slowRequests,
		MaxDuration:   r.maxDuration,
		Recent:        recent,
	}
	if r.totalRequests > 0 {
		snap.MeanDuration = r.totalDuration / time.Duration(r.totalRequests)
	}
	if len(recent) > 0 {
		durations := make([]time.Duration, len(recent))
		for i, s := range recent {
			durations[i] = s.Duration
		}
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		idx := (95 * len(durations)) / 100
		if idx >= len(durations) {
			idx = len(durations) - 1
		}
		snap.P95Duration = durations[idx]
	}
	return snap
}

// Reset clears the ring and the running aggregates.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next = 0
	r.full = false
	r.totalRequests = 0
	r.totalErrors = 0
	r.slowRequests = 0
	r.totalDuration = 0
	r.maxDuration = 0
	for i := range r.ring {
		r.ring[i] = Sample{}
	}
}

func (r *Recorder) orderedLocked() []Sample {
	if !r.full {
		out := make([]Sample, r.next)
		copy(out, r.ring[:r.next])
		return out
	}
	out := make([]Sample, 0, len(r.ring))
	out = append(out, r.ring[r.next:]...)
	out = append(out, r.ring[:r.next]...)
	return out
}
