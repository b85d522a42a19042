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

// Package hash derives the family of independent, uniform, deterministic
// hash functions that a Count-Min sketch needs one-per-row. It replaces the
// single FNV-64a row ristretto's cmSketch used (sufficient only because that
// sketch was fixed at depth 1) with a row-salted avalanche mixer that stays
// independent across an arbitrary number of rows.
package hash

import (
	"encoding/binary"
	"math/bits"

	farm "github.com/dgryski/go-farm"
	"github.com/cespare/xxhash/v2"
)

// Sum64 pre-hashes a variable-length byte-string item to a fixed-width
// 64-bit integer suitable for mixing into row-independent column hashes.
func Sum64(item []byte) uint64 {
	return xxhash.Sum64(item)
}

// Mix applies a 64-bit avalanche finalizer (the splitmix64 output mixer) to
// spread the bits of x so that nearby inputs land in unrelated outputs.
func Mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Reduce maps a 64-bit hash into [0, n) without modulo bias, using Lemire's
// 64x64->128 multiply-shift reduction. Works for any n, not just powers of
// two, unlike the next2Power-constrained table in ristretto's cmRow.
func Reduce(x, n uint64) uint64 {
	hi, _ := bits.Mul64(x, n)
	return hi
}

// RowSalt derives the per-row salt used to diversify row i's mixer input,
// independent of Family so callers that only need k independent probes (the
// doorkeeper's Bloom filter, for instance) don't need to build a full
// column-reducing Family just to get salts.
func RowSalt(seed uint64, row int) uint64 {
	var rowBuf [8]byte
	binary.LittleEndian.PutUint64(rowBuf[:], uint64(row))
	return farm.Hash64WithSeed(rowBuf[:], seed)
}

// Family derives depth independent column-selection functions from a single
// seed. Each row gets its own salt, itself derived via a different hash
// (go-farm) than the one used to pre-hash items (xxhash), so a row's salt
// isn't just a linear function of the seed a caller might otherwise reuse.
type Family struct {
	salts []uint64
	width uint64
}

// New builds a Family with the given depth (number of rows) and width
// (columns per row), deterministic for a fixed seed.
func New(depth int, width uint64, seed uint64) *Family {
	salts := make([]uint64, depth)
	for i := range salts {
		salts[i] = RowSalt(seed, i)
	}
	return &Family{salts: salts, width: width}
}

// Depth returns the number of rows (hash functions) in the family.
func (f *Family) Depth() int {
	return len(f.salts)
}

// Column returns the column index in [0, width) for row i given an
// already-computed 64-bit item hash.
func (f *Family) Column(row int, itemHash uint64) uint64 {
	return Reduce(Mix(itemHash^f.salts[row]), f.width)
}

// Columns fills dst (which must have length Depth()) with the column index
// for every row. Reusing a caller-owned slice avoids an allocation per
// probe; this is safe only because a sketch is not used concurrently (its
// callers serialize access to it).
func (f *Family) Columns(itemHash uint64, dst []uint64) {
	for i := range f.salts {
		dst[i] = Reduce(Mix(itemHash^f.salts[i]), f.width)
	}
}
