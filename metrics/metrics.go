/*
 * Copyright 2021 Dgraph Labs, Inc. and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics reports hit/miss/eviction counters for an admission
// oracle wired into a cache's eviction policy. Adapted from ristretto's
// Metrics in metrics.go, narrowed to the three counters that make sense
// without a full Get/Set cache façade: ristretto's cost-tracking,
// buffer-drop, and key-lifetime counters all assume a façade that is out of
// scope here.
package metrics

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

type counterType int

const (
	hit counterType = iota
	miss
	eviction
	numCounters
)

func stringFor(t counterType) string {
	switch t {
	case hit:
		return "hit"
	case miss:
		return "miss"
	case eviction:
		return "eviction"
	default:
		return "unidentified"
	}
}

// shards is how many counters back each counterType, matching ristretto's
// false-sharing mitigation (many small atomics beaten on round-robin rather
// than one hot cache line per counter).
const shards = 25

// Recorder implements tinylfu.StatsRecorder: it counts hits, misses, and
// evictions reported by a windowed eviction policy driven by an
// admission.Oracle. Safe for concurrent use.
type Recorder struct {
	counters [numCounters][]*uint64
	next     uint64 // round-robins which shard an increment lands on
}

// New returns a ready-to-use Recorder with all counters at zero.
func New() *Recorder {
	r := &Recorder{}
	for i := range r.counters {
		shard := make([]*uint64, shards)
		for j := range shard {
			shard[j] = new(uint64)
		}
		r.counters[i] = shard
	}
	return r
}

func (r *Recorder) add(t counterType) {
	if r == nil {
		return
	}
	idx := atomic.AddUint64(&r.next, 1) % shards
	atomic.AddUint64(r.counters[t][idx], 1)
}

func (r *Recorder) get(t counterType) uint64 {
	if r == nil {
		return 0
	}
	var total uint64
	for _, c := range r.counters[t] {
		total += atomic.LoadUint64(c)
	}
	return total
}

// RecordHit increments the hit counter.
func (r *Recorder) RecordHit() { r.add(hit) }

// RecordMiss increments the miss counter.
func (r *Recorder) RecordMiss() { r.add(miss) }

// RecordEviction increments the eviction counter.
func (r *Recorder) RecordEviction() { r.add(eviction) }

// Hits returns the number of recorded hits.
func (r *Recorder) Hits() uint64 { return r.get(hit) }

// Misses returns the number of recorded misses.
func (r *Recorder) Misses() uint64 { return r.get(miss) }

// Evictions returns the number of recorded evictions.
func (r *Recorder) Evictions() uint64 { return r.get(eviction) }

// Ratio is Hits over (Hits + Misses), the fraction of lookups that found a
// value already in the cache.
func (r *Recorder) Ratio() float64 {
	if r == nil {
		return 0.0
	}
	hits, misses := r.get(hit), r.get(miss)
	if hits == 0 && misses == 0 {
		return 0.0
	}
	return float64(hits) / float64(hits+misses)
}

// Clear resets every counter to zero.
func (r *Recorder) Clear() {
	if r == nil {
		return
	}
	for _, shard := range r.counters {
		for _, c := range shard {
			atomic.StoreUint64(c, 0)
		}
	}
}

// String renders a human-readable summary, using go-humanize to format the
// raw counts the way ristretto's CLI-facing diagnostics do.
func (r *Recorder) String() string {
	if r == nil {
		return ""
	}
	var buf bytes.Buffer
	for i := counterType(0); i < numCounters; i++ {
		fmt.Fprintf(&buf, "%s: %s  ", stringFor(i), humanize.Comma(int64(r.get(i))))
	}
	fmt.Fprintf(&buf, "total-lookups: %s  ", humanize.Comma(int64(r.get(hit)+r.get(miss))))
	fmt.Fprintf(&buf, "hit-ratio: %.2f", r.Ratio())
	return buf.String()
}
