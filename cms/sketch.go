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

// Package cms implements an approximate frequency sketch with aging: a
// Count-Min sketch with Conservative Update wrapped in a TinyLFU
// sample-size-triggered halving reset. It is based on ristretto's
// single-row cmSketch in sketch.go, generalized to arbitrary depth/width
// and conservative (rather than classical) updates.
package cms

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tessellate/freqsketch/hash"
)

// Sketch is a Count-Min sketch with Conservative Update and TinyLFU aging.
// It is not safe for concurrent use; callers serialize access externally
// (see the buffer package for one way to do that).
type Sketch struct {
	family *hash.Family
	matrix matrix

	seed       uint64
	sampleSize uint64
	size       uint64

	cols []uint64 // scratch buffer, reused across probes
}

// New constructs a Sketch directly from depth, width, seed, and
// sample_size. Depth, width and sample_size must be positive; any seed,
// including 0, is accepted.
func New(depth, width int, seed uint64, sampleSize uint64) (*Sketch, error) {
	if depth < 1 {
		return nil, errors.WithStack(ErrInvalidDepth)
	}
	if width < 1 {
		return nil, errors.WithStack(ErrInvalidWidth)
	}
	if sampleSize == 0 {
		return nil, errors.WithStack(ErrInvalidSampleSize)
	}

	return &Sketch{
		family:     hash.New(depth, uint64(width), seed),
		matrix:     newMatrix(depth, width),
		seed:       seed,
		sampleSize: sampleSize,
		cols:       make([]uint64, depth),
	}, nil
}

// NewWithError constructs a Sketch from an (epsilon, delta) error/failure
// budget: width = ceil(e/epsilon), depth = ceil(ln(1/delta)). Both epsilon
// and delta must be in (0, 1).
func NewWithError(epsilon, delta float64, seed uint64, sampleSize uint64) (*Sketch, error) {
	if epsilon <= 0 || epsilon >= 1 {
		return nil, errors.WithStack(ErrInvalidEpsilon)
	}
	if delta <= 0 || delta >= 1 {
		return nil, errors.WithStack(ErrInvalidDelta)
	}

	width := int(math.Ceil(math.E / epsilon))
	depth := int(math.Ceil(math.Log(1 / delta)))
	if depth < 1 {
		depth = 1
	}
	return New(depth, width, seed, sampleSize)
}

// Depth returns the configured number of rows.
func (s *Sketch) Depth() int { return s.matrix.depth }

// Width returns the configured counters per row.
func (s *Sketch) Width() int { return s.matrix.width }

// SampleSize returns the configured aging threshold S.
func (s *Sketch) SampleSize() uint64 { return s.sampleSize }

// Size returns the current running sample accumulator.
func (s *Sketch) Size() uint64 { return s.size }

// probe fills s.cols with the row-wise column indices for itemHash and
// returns it. The returned slice is only valid until the next probe call.
func (s *Sketch) probe(itemHash uint64) []uint64 {
	s.family.Columns(itemHash, s.cols)
	return s.cols
}

// Estimate returns the estimated frequency of a byte-string item (C3).
func (s *Sketch) Estimate(item []byte) uint64 {
	return s.EstimateUint64(hash.Sum64(item))
}

// EstimateUint64 returns the estimated frequency of a pre-hashed or
// naturally-integer item: the minimum counter among the d probed cells.
func (s *Sketch) EstimateUint64(itemHash uint64) uint64 {
	cols := s.probe(itemHash)
	min := counterMax
	for row, col := range cols {
		if v := s.matrix.at(row, col); v < min {
			min = v
		}
	}
	return uint64(min)
}

// AddClassical performs the classical Count-Min update: every probed cell
// is incremented by count, saturating at the counter maximum. It is
// provided for reference/testing (comparing it against conservative update
// shows the latter's tighter estimates) and is not what Add uses.
func (s *Sketch) AddClassical(item []byte, count uint64) {
	s.AddClassicalUint64(hash.Sum64(item), count)
}

// AddClassicalUint64 is AddClassical for a pre-hashed item.
func (s *Sketch) AddClassicalUint64(itemHash uint64, count uint64) {
	if count == 0 {
		return
	}
	cols := s.probe(itemHash)
	for row, col := range cols {
		s.matrix.set(row, col, saturatingAdd(s.matrix.at(row, col), count))
	}
}

// conservativeAdd implements C4: probe the d cells, take their minimum m,
// and raise every cell to max(current, m+count) rather than incrementing
// all of them unconditionally. This keeps the estimator (the minimum)
// identical to classical Count-Min while leaving fewer inflated cells
// behind for other items that collide in non-minimum rows.
func (s *Sketch) conservativeAdd(itemHash uint64, count uint64) {
	cols := s.probe(itemHash)

	min := counterMax
	for row, col := range cols {
		if v := s.matrix.at(row, col); v < min {
			min = v
		}
	}

	target := saturatingAdd(min, count)
	for row, col := range cols {
		if v := s.matrix.at(row, col); v < target {
			s.matrix.set(row, col, target)
		}
	}
}
