// Package doorkeeper implements the Bloom-filter "doorkeeper" gate the
// TinyLFU paper recommends placing in front of a Count-Min sketch (§3.4.2 of
// https://arxiv.org/abs/1512.00727): an item's first occurrence only sets
// doorkeeper bits instead of inflating the frequency sketch, so one-hit
// wonders don't pollute estimates that drive admission decisions. Adapted
// from ristretto's Filter in filter.go, rewired to share hash.Family's
// mixer instead of deriving its own per-probe FNV hash.
package doorkeeper

import (
	"math"

	"github.com/tessellate/freqsketch/hash"
)

// Doorkeeper is a standard k-hash Bloom filter sized from a target false
// positive rate, exactly ristretto's NewFilter sizing formula.
type Doorkeeper struct {
	keys  uint64
	data  []byte
	mask  uint64
	salts []uint64
}

// New builds a Doorkeeper sized to hold approximately size items at the
// given false positive rate.
func New(size uint64, falsePositiveRate float64, seed uint64) *Doorkeeper {
	m := -1 * float64(size) * math.Log(falsePositiveRate) / math.Pow(math.Log(2), 2)
	bytesNeeded := uint64(math.Ceil(m / 8))
	if bytesNeeded == 0 {
		bytesNeeded = 1
	}
	keys := uint64(math.Ceil(math.Log(2) * m / float64(size)))
	if keys == 0 {
		keys = 1
	}
	bytesNeeded = nextPow2(bytesNeeded)

	salts := make([]uint64, keys)
	for i := range salts {
		salts[i] = hash.RowSalt(seed, i)
	}

	return &Doorkeeper{
		keys:  keys,
		data:  make([]byte, bytesNeeded),
		mask:  bytesNeeded - 1,
		salts: salts,
	}
}

func nextPow2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// SetBytes is Set for a variable-length byte-string item.
func (d *Doorkeeper) SetBytes(item []byte) bool {
	return d.Set(hash.Sum64(item))
}

// HasBytes is Has for a variable-length byte-string item.
func (d *Doorkeeper) HasBytes(item []byte) bool {
	return d.Has(hash.Sum64(item))
}

// Set marks item as seen, returning true if at least one bit was newly set
// (i.e. the item was probably not already present).
func (d *Doorkeeper) Set(itemHash uint64) bool {
	changed := false
	for i := uint64(0); i < d.keys; i++ {
		block, bit := d.index(d.probe(itemHash, i))
		if !d.has(block, bit) {
			changed = true
			d.data[block] |= 1 << bit
		}
	}
	return changed
}

// Has reports whether item has probably been Set before. False means
// definitely not; true means probably.
func (d *Doorkeeper) Has(itemHash uint64) bool {
	for i := uint64(0); i < d.keys; i++ {
		if !d.hasAt(d.probe(itemHash, i)) {
			return false
		}
	}
	return true
}

// Reset clears every bit, matching Filter.Reset.
func (d *Doorkeeper) Reset() {
	for i := range d.data {
		d.data[i] = 0
	}
}

func (d *Doorkeeper) hasAt(hashed uint64) bool {
	block, bit := d.index(hashed)
	return d.has(block, bit)
}

func (d *Doorkeeper) has(block, bit uint64) bool {
	return d.data[block]<<(7-bit)>>7 == 1
}

func (d *Doorkeeper) index(hashed uint64) (uint64, uint64) {
	return hashed & d.mask, hashed & 7
}

// probe reuses hash.Mix and hash.RowSalt rather than ristretto's per-call
// fnv.New64a, so the doorkeeper's k probes come from the same avalanche
// mixer as the sketch's row hashes instead of a second, independently-chosen
// hash family.
func (d *Doorkeeper) probe(itemHash, i uint64) uint64 {
	return hash.Mix(itemHash ^ d.salts[i])
}
