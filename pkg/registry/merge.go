/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package registry

import (
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/revocation"
)

// Merge composes two adjacent deltas into one spanning both. Revocation is
// sticky: an index issued in d1 and revoked in d2 stays in Revoked and is
// also recorded in Transient, since it never belonged to d1's base.
func Merge(d1, d2 *revocation.Delta) (*revocation.Delta, error) {
	if d1.RegistryID != d2.RegistryID {
		return nil, errors.Wrapf(revocation.ErrDeltaOrderMismatch, "registries %s and %s", d1.RegistryID, d2.RegistryID)
	}

	if d2.PrevAccumulator != d1.Accumulator {
		return nil, errors.Wrapf(revocation.ErrDeltaOrderMismatch, "delta at %d does not follow delta at %d", d2.Timestamp, d1.Timestamp)
	}

	if d2.Timestamp < d1.Timestamp {
		return nil, errors.Wrapf(revocation.ErrDeltaOrderMismatch, "delta at %d precedes delta at %d", d2.Timestamp, d1.Timestamp)
	}

	i1, r1 := revocation.BitSetOf(d1.Issued), revocation.BitSetOf(d1.Revoked)
	i2, r2 := revocation.BitSetOf(d2.Issued), revocation.BitSetOf(d2.Revoked)

	issued := i1.Difference(r2).Union(i2.Difference(r1))
	revoked := r1.Difference(i2).Union(r2)

	transient := i1.Intersection(r2)
	transient.InPlaceUnion(revocation.BitSetOf(d1.Transient))
	transient.InPlaceUnion(revocation.BitSetOf(d2.Transient))

	out := &revocation.Delta{
		RegistryID:      d1.RegistryID,
		PrevAccumulator: d1.PrevAccumulator,
		Accumulator:     d2.Accumulator,
		Issued:          revocation.Indices(issued),
		Revoked:         revocation.Indices(revoked),
		Timestamp:       d2.Timestamp,
	}

	if transient.Any() {
		out.Transient = revocation.Indices(transient)
	}

	return out, nil
}

// Apply moves state forward by one delta.
func Apply(state *revocation.RegistryState, delta *revocation.Delta) (*revocation.RegistryState, error) {
	if delta.PrevAccumulator != state.Accumulator {
		return nil, errors.Wrapf(revocation.ErrDeltaOrderMismatch, "delta at %d does not start at state %d", delta.Timestamp, state.Timestamp)
	}

	if delta.Timestamp <= state.Timestamp && !delta.Empty() {
		return nil, errors.Wrapf(revocation.ErrNonMonotonicTimestamp, "delta at %d, state at %d", delta.Timestamp, state.Timestamp)
	}

	next := state.Clone()
	for _, idx := range delta.Revoked {
		next.Issued.Clear(uint(idx))
		next.Revoked.Set(uint(idx))
	}

	for _, idx := range delta.Issued {
		next.Revoked.Clear(uint(idx))
		next.Issued.Set(uint(idx))
	}

	next.Accumulator = delta.Accumulator
	if delta.Timestamp > next.Timestamp {
		next.Timestamp = delta.Timestamp
	}

	return next, nil
}

// Fold replays deltas, oldest first, on top of state.
func Fold(state *revocation.RegistryState, deltas ...*revocation.Delta) (*revocation.RegistryState, error) {
	var err error
	for _, d := range deltas {
		state, err = Apply(state, d)
		if err != nil {
			return nil, err
		}
	}

	return state, nil
}
