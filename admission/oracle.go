/*
 * Copyright 2019 Dgraph Labs, Inc. and Contributors
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

// Package admission implements the TinyLFU admission decision: given a
// candidate that would like to enter a cache's main store and the victim it
// would displace, decide whether the candidate is frequent enough to be
// worth the eviction. It is grounded on ristretto's TinyLFU.Admit
// estimate-then-compare pattern in policy.go.
package admission

import (
	"github.com/tessellate/freqsketch/cms"
	"github.com/tessellate/freqsketch/doorkeeper"
)

// Oracle is the admission decision procedure built on top of a frequency
// sketch. Its method set deliberately matches the pack's
// tinylfu.AdmissionPolicy interface (Record(uint64), Admit(uint64, uint64)
// bool) so an Oracle can be handed straight to tinylfu.WithAdmission.
type Oracle struct {
	sketch *cms.Sketch
	gate   *doorkeeper.Doorkeeper
}

// Option configures an Oracle at construction time.
type Option func(*Oracle)

// WithDoorkeeper gates Record behind a Bloom-filter doorkeeper, per the
// TinyLFU paper's recommendation (§3.4.2): an item's first-ever Record only
// sets a doorkeeper bit instead of touching the sketch, so a single
// one-off access never inflates a counter that a repeat visitor's estimate
// will be compared against. Only once the doorkeeper already has the item
// does Record fall through to the sketch.
func WithDoorkeeper(d *doorkeeper.Doorkeeper) Option {
	return func(o *Oracle) { o.gate = d }
}

// New wraps an existing sketch with the admission decision rule.
func New(sketch *cms.Sketch, opts ...Option) *Oracle {
	o := &Oracle{sketch: sketch}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Record increments the frequency of a pre-hashed item. Callers typically
// Record a candidate before calling Admit, so a first-sight item has an
// estimate of at least 1 by the time it's compared against a victim. If a
// doorkeeper is configured, a genuinely first-ever item only sets the
// doorkeeper bit and skips the sketch.
func (o *Oracle) Record(item uint64) {
	if o.gate != nil && o.gate.Set(item) {
		// Set returned true: this is the item's first-ever sighting, so only
		// the doorkeeper bit is set and the sketch is left untouched.
		return
	}
	o.sketch.AddUint64(item, 1)
}

// RecordBytes is Record for a variable-length byte-string item.
func (o *Oracle) RecordBytes(item []byte) {
	if o.gate != nil && o.gate.SetBytes(item) {
		return
	}
	o.sketch.Add(item, 1)
}

// Admit implements the TinyLFU decision rule: admit the candidate only if
// it is estimated strictly more frequent than the victim. Ties reject the
// candidate (do not evict).
func (o *Oracle) Admit(candidate, victim uint64) bool {
	return o.sketch.EstimateUint64(candidate) > o.sketch.EstimateUint64(victim)
}

// AdmitBytes is Admit for variable-length byte-string items.
func (o *Oracle) AdmitBytes(candidate, victim []byte) bool {
	return o.sketch.Estimate(candidate) > o.sketch.Estimate(victim)
}

// Sketch returns the underlying frequency sketch, e.g. for a caller that
// wants to inspect Size/SampleSize for diagnostics.
func (o *Oracle) Sketch() *cms.Sketch {
	return o.sketch
}
