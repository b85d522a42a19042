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

package admission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessellate/freqsketch/cms"
	"github.com/tessellate/freqsketch/doorkeeper"
)

func newOracle(t *testing.T) *Oracle {
	t.Helper()
	s, err := cms.New(4, 64, 1, 10000)
	require.NoError(t, err)
	return New(s)
}

// A hot candidate is admitted over a cold victim, and a cold candidate is
// not admitted over a hot victim.
func TestAdmitHotOverCold(t *testing.T) {
	o := newOracle(t)

	for i := 0; i < 10; i++ {
		o.RecordBytes([]byte("hot"))
	}
	o.RecordBytes([]byte("cold"))

	require.True(t, o.AdmitBytes([]byte("hot"), []byte("cold")))
	require.False(t, o.AdmitBytes([]byte("cold"), []byte("hot")))
}

func TestAdmitRejectsOnTie(t *testing.T) {
	o := newOracle(t)

	o.RecordBytes([]byte("cold-a"))
	o.RecordBytes([]byte("cold-b"))

	require.False(t, o.AdmitBytes([]byte("cold-a"), []byte("cold-b")))
}

func TestAdmitRejectsUnseenAgainstUnseen(t *testing.T) {
	o := newOracle(t)
	require.False(t, o.AdmitBytes([]byte("never-seen-a"), []byte("never-seen-b")))
}

func TestRecordUint64RoundTrips(t *testing.T) {
	o := newOracle(t)
	o.Record(42)
	o.Record(42)
	require.True(t, o.Admit(42, 99))
	require.Equal(t, uint64(2), o.Sketch().EstimateUint64(42))
}

// With a doorkeeper configured, a one-hit-wonder's first Record must not
// touch the sketch at all; only a repeat sighting should.
func TestDoorkeeperSuppressesFirstSighting(t *testing.T) {
	s, err := cms.New(4, 64, 1, 10000)
	require.NoError(t, err)
	gate := doorkeeper.New(1000, 0.01, 1)
	o := New(s, WithDoorkeeper(gate))

	o.Record(7)
	require.Equal(t, uint64(0), o.Sketch().EstimateUint64(7), "first sighting should be absorbed by the doorkeeper")

	o.Record(7)
	require.Equal(t, uint64(1), o.Sketch().EstimateUint64(7), "second sighting should reach the sketch")
}
