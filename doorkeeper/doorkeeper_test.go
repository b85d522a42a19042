package doorkeeper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessellate/freqsketch/hash"
)

func TestDoorkeeper(t *testing.T) {
	d := New(1374, 0.01, 1)
	h := hash.Sum64([]byte("*"))

	assert.False(t, d.Has(h), "item exists but was never added")
	assert.True(t, d.Set(h), "item didn't exist so Set() should return true")
	assert.False(t, d.Set(h), "item did exist so Set() should return false")
	assert.True(t, d.Has(h), "item was added but Has() is false")

	d.Reset()
	assert.False(t, d.Has(h), "doorkeeper was reset but Has() returns true")
}

func TestDoorkeeperBytesRoundTrip(t *testing.T) {
	d := New(1000, 0.01, 7)

	assert.False(t, d.HasBytes([]byte("hot")))
	assert.True(t, d.SetBytes([]byte("hot")))
	assert.True(t, d.HasBytes([]byte("hot")))
}

func TestDoorkeeperLowFalsePositiveRate(t *testing.T) {
	d := New(1000, 0.001, 42)

	for i := 0; i < 1000; i++ {
		d.SetBytes([]byte{byte(i), byte(i >> 8)})
	}

	falsePositives := 0
	for i := 2000; i < 3000; i++ {
		if d.HasBytes([]byte{byte(i), byte(i >> 8), byte(i >> 16)}) {
			falsePositives++
		}
	}
	assert.Less(t, falsePositives, 100, "false positive rate should stay well under 10%% for unseen items")
}
