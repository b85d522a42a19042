// Package buffer batches concurrent admission-oracle updates onto a small
// number of stripes so that many goroutines can feed one cms.Sketch without
// taking a lock per item. The sketch itself is single-threaded and leaves
// concurrent access as the caller's problem; this package is one answer to
// that problem, adapted from ristretto's ring.Stripe/ring.Buffer
// (ring/ring.go).
package buffer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind selects how a Striped buffer behaves when every stripe is momentarily
// busy draining. It mirrors ring.BufferType.
type Kind byte

const (
	// Lossy reuses stripes from a sync.Pool; a burst that races a drain may
	// drop a handful of items rather than block. Matches ring's LOSSY mode.
	Lossy Kind = iota
	// Lossless retries the next stripe until one accepts the item, never
	// dropping input at the cost of a busy-wait under contention.
	Lossless
)

// Consumer receives a drained batch of pre-hashed item frequencies to
// record. In ristretto's ring package this was Push([]ring.Element); here a
// batch is a slice of (item, count) pairs destined for
// admission.Oracle.Record or cms.Sketch.AddUint64. PushBatch runs on the
// goroutine that filled the stripe, and drains of different stripes are not
// serialized with each other, so PushBatch can be called concurrently.
type Consumer interface {
	PushBatch(items []Record)
}

// Record is one buffered increment: item is the pre-hashed key, count is the
// weight to add (almost always 1 for a Get/admission check).
type Record struct {
	Item  uint64
	Count uint64
}

// stripe is a single ring buffer; not concurrency-safe on its own, matching
// ring.Stripe.
type stripe struct {
	consumer Consumer
	data     []Record
	head     int
	capacity int
	busy     int32
}

func newStripe(consumer Consumer, capacity int) *stripe {
	return &stripe{
		consumer: consumer,
		data:     make([]Record, capacity),
		capacity: capacity,
	}
}

// push appends a record and drains (copies and hands to Consumer) once full.
func (s *stripe) push(r Record) {
	s.data[s.head] = r
	s.head++

	if s.head >= s.capacity {
		batch := append([]Record(nil), s.data...)
		s.consumer.PushBatch(batch)
		s.head = 0
	}
}

// Config parameterizes a Striped buffer.
type Config struct {
	Consumer Consumer
	Stripes  int // must be a power of two for Lossless
	Capacity int
}

// Striped distributes Push calls across multiple stripes to reduce
// contention when many goroutines feed a single sketch, per the BP-Wrapper
// batching strategy ristretto's ring.Buffer implements.
type Striped struct {
	stripes []*stripe
	pool    *sync.Pool
	push    func(*Striped, Record)
	rnd     int
	mask    int
}

// New builds a Striped buffer of the given Kind.
func New(kind Kind, cfg Config) *Striped {
	if kind == Lossy {
		return &Striped{
			pool: &sync.Pool{
				New: func() interface{} { return newStripe(cfg.Consumer, cfg.Capacity) },
			},
			push: pushLossy,
		}
	}

	stripes := make([]*stripe, cfg.Stripes)
	for i := range stripes {
		stripes[i] = newStripe(cfg.Consumer, cfg.Capacity)
	}
	return &Striped{
		stripes: stripes,
		mask:    cfg.Stripes - 1,
		rnd:     int(time.Now().UnixNano()),
		push:    pushLossless,
	}
}

// Push records one item, possibly draining a stripe into the Consumer.
func (b *Striped) Push(item uint64, count uint64) {
	b.push(b, Record{Item: item, Count: count})
}

func pushLossy(b *Striped, r Record) {
	s := b.pool.Get().(*stripe)
	s.push(r)
	b.pool.Put(s)
}

func pushLossless(b *Striped, r Record) {
	b.rnd ^= b.rnd << 13
	b.rnd ^= b.rnd >> 7
	b.rnd ^= b.rnd << 17
	for i := b.rnd & b.mask; ; i = (i + 1) & b.mask {
		if atomic.CompareAndSwapInt32(&b.stripes[i].busy, 0, 1) {
			b.stripes[i].push(r)
			atomic.StoreInt32(&b.stripes[i].busy, 0)
			return
		}
	}
}
