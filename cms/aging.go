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

package cms

import "github.com/tessellate/freqsketch/hash"

// Add is the sketch operation the admission oracle actually uses: every
// call increments the running sample size by count, triggers exactly one
// aging reset if the sample threshold S is crossed, and then performs the
// underlying conservative update.
func (s *Sketch) Add(item []byte, count uint64) {
	s.AddUint64(hash.Sum64(item), count)
}

// AddUint64 is Add for a pre-hashed or naturally-integer item.
func (s *Sketch) AddUint64(itemHash uint64, count uint64) {
	if count == 0 {
		return
	}

	s.size += count
	if s.size > s.sampleSize {
		s.reset()
	}

	s.conservativeAdd(itemHash, count)
}

// reset halves every counter and restores size to stay consistent with the
// halved table:
//
//  1. size <- size / 2 (integer floor division)
//  2. for every cell, in row-major order: subtract (cell & 1) from size,
//     then logically (zero-fill) right-shift the cell by 1.
//
// The low bit being shifted out of a cell represents a half-count that
// would otherwise be silently dropped from the running sample; step 2's
// subtraction is what keeps size from drifting away from "roughly half the
// sum of the table" over many resets.
//
// This parity correction is an approximation, not an exact identity:
// conservative update touches between 1 and d cells per insertion (not all
// d, and not count-each), while size is incremented by count once per Add
// regardless of how many cells conservative update actually changed. Treat
// the correction as an intentional heuristic rather than a bug to fix;
// tightening it would change the admission semantics this sketch produces.
func (s *Sketch) reset() {
	s.size /= 2

	var parity uint64
	for i, v := range s.matrix.table {
		parity += uint64(v & 1)
		// Counters are non-negative uint16s, so >> is already a logical
		// (zero-fill) shift; no separate unsigned cast is needed in Go.
		s.matrix.table[i] = v >> 1
	}

	if parity > s.size {
		s.size = 0
	} else {
		s.size -= parity
	}
}
