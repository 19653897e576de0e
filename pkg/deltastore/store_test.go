/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package deltastore

import (
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/scoir/canis-revreg/pkg/deltastore/mocks"
	"github.com/scoir/canis-revreg/pkg/registry"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

type history struct {
	genesis *revocation.RegistryState
	states  []*revocation.RegistryState
	deltas  []*revocation.Delta
}

// issues 0, 1, 2 at 100, 200, 300 and revokes 1 at 400
func newHistory(t *testing.T) *history {
	def, sk, err := registry.NewDefinition("did", "cred-def", "tag", &revocation.RegistryConfig{
		MaxCredNum:   5,
		IssuanceType: revocation.IssuanceOnDemand,
	}, 512)
	require.NoError(t, err)

	clk := fakeclock.NewFakeClock(time.Unix(100, 0))
	reg, err := registry.New(def, sk, registry.WithClock(clk))
	require.NoError(t, err)

	h := &history{}
	h.genesis, err = reg.Create()
	require.NoError(t, err)

	state := h.genesis
	for i := uint32(0); i < 4; i++ {
		var d *revocation.Delta
		if i == 3 {
			state, d, err = reg.Revoke(state, 1)
		} else {
			state, d, err = reg.Issue(state, i)
		}
		require.NoError(t, err)
		h.states = append(h.states, state)
		h.deltas = append(h.deltas, d)
		clk.Increment(100 * time.Second)
	}

	return h
}

func newStore(t *testing.T, h *history) *Store {
	store := New(NewMemoryLog())
	for _, d := range h.deltas {
		require.NoError(t, store.Append(d))
	}

	return store
}

func TestStore_Append(t *testing.T) {
	h := newHistory(t)

	t.Run("monotonic timestamps", func(t *testing.T) {
		store := newStore(t, h)

		stale := *h.deltas[3]
		err := store.Append(&stale)
		require.True(t, errors.Is(err, revocation.ErrNonMonotonicTimestamp))

		stale.Timestamp = 50
		err = store.Append(&stale)
		require.True(t, errors.Is(err, revocation.ErrNonMonotonicTimestamp))
	})

	t.Run("registries are independent", func(t *testing.T) {
		store := newStore(t, h)

		other := *h.deltas[0]
		other.RegistryID = "other"
		require.NoError(t, store.Append(&other))
	})

	t.Run("genesis timestamp rejected", func(t *testing.T) {
		store := New(NewMemoryLog())
		d := *h.deltas[0]
		d.Timestamp = 0
		err := store.Append(&d)
		require.True(t, errors.Is(err, revocation.ErrNonMonotonicTimestamp))
	})

	t.Run("missing registry", func(t *testing.T) {
		store := New(NewMemoryLog())
		require.Error(t, store.Append(&revocation.Delta{}))
		require.Error(t, store.Append(nil))
	})

	t.Run("log failure", func(t *testing.T) {
		log := &mocks.Log{}
		log.On("Last", h.deltas[0].RegistryID, int64(9223372036854775807)).Return(nil, errors.New("boom"))

		err := New(log).Append(h.deltas[0])
		require.Error(t, err)
		log.AssertExpectations(t)
	})
}

func TestStore_DeltaBetween(t *testing.T) {
	h := newHistory(t)
	store := newStore(t, h)
	id := h.genesis.RegistryID

	t.Run("from genesis folds to the registry state", func(t *testing.T) {
		for i, ts := range []int64{100, 200, 300, 400} {
			d, err := store.DeltaBetween(id, nil, ts)
			require.NoError(t, err)
			require.Equal(t, h.genesis.Accumulator, d.PrevAccumulator)
			require.Equal(t, h.states[i].Accumulator, d.Accumulator)
			require.Equal(t, ts, d.Timestamp)

			state, err := registry.Apply(h.genesis, d)
			require.NoError(t, err)
			require.Equal(t, h.states[i].IssuedIndices(), state.IssuedIndices())
			require.Equal(t, h.states[i].RevokedIndices(), state.RevokedIndices())
		}
	})

	t.Run("keeps indices issued and revoked in range", func(t *testing.T) {
		d, err := store.DeltaBetween(id, nil, 400)
		require.NoError(t, err)
		require.Equal(t, []uint32{0, 2}, d.Issued)
		require.Equal(t, []uint32{1}, d.Revoked)
		require.Equal(t, []uint32{1}, d.Transient)
		require.Empty(t, d.Removed())
	})

	t.Run("half open range", func(t *testing.T) {
		from := int64(100)
		d, err := store.DeltaBetween(id, &from, 300)
		require.NoError(t, err)
		require.Equal(t, h.states[0].Accumulator, d.PrevAccumulator)
		require.Equal(t, h.states[2].Accumulator, d.Accumulator)
		require.Equal(t, []uint32{1, 2}, d.Issued)
	})

	t.Run("snaps to latest delta before to", func(t *testing.T) {
		d, err := store.DeltaBetween(id, nil, 250)
		require.NoError(t, err)
		require.Equal(t, int64(200), d.Timestamp)
		require.Equal(t, h.states[1].Accumulator, d.Accumulator)
	})

	t.Run("empty range after data is the identity", func(t *testing.T) {
		from := int64(400)
		d, err := store.DeltaBetween(id, &from, 1000)
		require.NoError(t, err)
		require.True(t, d.Empty())
		require.Equal(t, h.states[3].Accumulator, d.PrevAccumulator)
		require.Equal(t, h.states[3].Accumulator, d.Accumulator)
		require.Equal(t, int64(400), d.Timestamp)
	})

	t.Run("no data in range", func(t *testing.T) {
		from := int64(0)
		_, err := New(NewMemoryLog()).DeltaBetween(id, &from, 1000)
		require.True(t, errors.Is(err, revocation.ErrNoDataInRange))

		_, err = store.DeltaBetween(id, nil, 99)
		require.True(t, errors.Is(err, revocation.ErrNoDataInRange))
	})

	t.Run("inverted range", func(t *testing.T) {
		from := int64(300)
		_, err := store.DeltaBetween(id, &from, 200)
		require.Error(t, err)
	})

	t.Run("broken chain", func(t *testing.T) {
		log := &mocks.Log{}
		log.On("Range", id, int64(-9223372036854775808), int64(300)).Return([]*revocation.Delta{h.deltas[0], h.deltas[2]}, nil)

		_, err := New(log).DeltaBetween(id, nil, 300)
		require.True(t, errors.Is(err, revocation.ErrDeltaOrderMismatch))
	})
}

func TestStore_LatestTimestampAtOrBefore(t *testing.T) {
	h := newHistory(t)
	store := newStore(t, h)
	id := h.genesis.RegistryID

	tests := []struct {
		at       int64
		expected int64
	}{
		{50, revocation.Genesis},
		{100, 100},
		{199, 100},
		{350, 300},
		{5000, 400},
	}

	for _, tt := range tests {
		ts, err := store.LatestTimestampAtOrBefore(id, tt.at)
		require.NoError(t, err)
		require.Equal(t, tt.expected, ts)
	}

	ts, err := store.LatestTimestampAtOrBefore("unknown", 1000)
	require.NoError(t, err)
	require.Equal(t, revocation.Genesis, ts)
}
