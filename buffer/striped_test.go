package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessellate/freqsketch/cms"
)

type countingConsumer struct {
	mu     sync.Mutex
	drains int
	total  uint64
}

func (c *countingConsumer) PushBatch(items []Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drains++
	for _, r := range items {
		c.total += r.Count
	}
}

func TestLossyDrainsOnFull(t *testing.T) {
	consumer := &countingConsumer{}
	b := New(Lossy, Config{Consumer: consumer, Capacity: 4})

	b.Push(1, 1)
	b.Push(2, 1)
	b.Push(3, 1)
	b.Push(4, 1)

	assert.Equal(t, 1, consumer.drains)
	assert.Equal(t, uint64(4), consumer.total)
}

func TestLosslessDrainsAcrossStripes(t *testing.T) {
	consumer := &countingConsumer{}
	b := New(Lossless, Config{Consumer: consumer, Stripes: 8, Capacity: 4})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(item uint64) {
			defer wg.Done()
			b.Push(item, 1)
		}(uint64(i))
	}
	wg.Wait()

	consumer.mu.Lock()
	defer consumer.mu.Unlock()
	// Only full stripes are drained; records in a partly filled stripe stay
	// buffered, so drained plus buffered accounts for every push.
	var buffered uint64
	for _, s := range b.stripes {
		buffered += uint64(s.head)
	}
	assert.Equal(t, uint64(64), consumer.total+buffered)
}

// sketchConsumer adapts a *cms.Sketch to the Consumer interface, draining a
// batch straight into AddUint64 calls - the shape a real cache would use to
// let many goroutines feed one sketch without locking it directly.
type sketchConsumer struct {
	sketch *cms.Sketch
}

func (c *sketchConsumer) PushBatch(items []Record) {
	for _, r := range items {
		c.sketch.AddUint64(r.Item, r.Count)
	}
}

func TestDrainFeedsSketch(t *testing.T) {
	s, err := cms.New(4, 64, 1, 10000)
	require.NoError(t, err)

	b := New(Lossy, Config{Consumer: &sketchConsumer{sketch: s}, Capacity: 2})
	b.Push(42, 1)
	b.Push(42, 1)

	assert.Equal(t, uint64(2), s.EstimateUint64(42))
}
