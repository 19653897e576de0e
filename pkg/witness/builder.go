/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package witness

import (
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/accumulator"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

// Builder derives and refreshes the witnesses of credentials in one registry.
type Builder struct {
	def *revocation.RegistryDefinition
	key *accumulator.PublicKey
}

func NewBuilder(def *revocation.RegistryDefinition) (*Builder, error) {
	if def == nil {
		return nil, errors.New("registry definition is required")
	}

	key, err := accumulator.ParsePublicKey(def.PublicKeys.N, def.PublicKeys.G)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid public keys for registry %s", def.ID)
	}

	return &Builder{def: def, key: key}, nil
}

// Build creates the witness of index from a delta composed from genesis up
// to target. The witness is stamped with the delta's timestamp, the latest
// committed state at or before target.
func (r *Builder) Build(delta *revocation.Delta, target int64, index uint32) (*revocation.RevocationState, error) {
	if !r.def.InRange(index) {
		return nil, errors.Wrapf(revocation.ErrInvalidIndex, "index %d outside [0, %d)", index, r.def.MaxCredNum)
	}

	if err := r.checkRegistry(delta); err != nil {
		return nil, err
	}

	if delta.Timestamp > target {
		return nil, errors.Errorf("delta at %d is newer than target %d", delta.Timestamp, target)
	}

	members := r.def.GenesisMembers()
	members.InPlaceUnion(revocation.BitSetOf(delta.Issued))
	members.InPlaceDifference(revocation.BitSetOf(delta.Revoked))

	if !members.Test(uint(index)) {
		return nil, errors.Wrapf(revocation.ErrIndexNotIssued, "index %d at %d", index, target)
	}

	w, err := r.key.Witness(revocation.Indices(members), index)
	if err != nil {
		return nil, errors.Wrapf(revocation.ErrIndexNotIssued, "index %d: %v", index, err)
	}

	acc, err := accumulator.Parse(string(delta.Accumulator))
	if err != nil {
		return nil, errors.Wrap(err, "invalid delta accumulator")
	}

	if !r.key.VerifyWitness(acc, w, index) {
		return nil, errors.Wrap(revocation.ErrStaleBase, "delta is not composed from registry genesis")
	}

	return &revocation.RevocationState{
		RegistryID:  r.def.ID,
		Index:       index,
		Witness:     accumulator.Format(w),
		Accumulator: delta.Accumulator,
		Timestamp:   delta.Timestamp,
	}, nil
}

// Update advances state across delta, the change since state.Timestamp.
func (r *Builder) Update(state *revocation.RevocationState, delta *revocation.Delta, index uint32) (*revocation.RevocationState, error) {
	if state == nil {
		return nil, errors.New("existing revocation state is required")
	}

	if state.Index != index {
		return nil, errors.Errorf("state belongs to index %d, not %d", state.Index, index)
	}

	if err := r.checkRegistry(delta); err != nil {
		return nil, err
	}

	if delta.PrevAccumulator != state.Accumulator {
		return nil, errors.Wrapf(revocation.ErrStaleBase, "delta at %d, witness at %d", delta.Timestamp, state.Timestamp)
	}

	for _, idx := range delta.Revoked {
		if idx == index {
			return nil, errors.Wrapf(revocation.ErrIndexNotIssued, "index %d revoked at %d", index, delta.Timestamp)
		}
	}

	next := *state
	if delta.Timestamp > next.Timestamp {
		next.Timestamp = delta.Timestamp
	}

	if delta.Empty() {
		return &next, nil
	}

	w, err := accumulator.Parse(state.Witness)
	if err != nil {
		return nil, errors.Wrap(err, "invalid witness")
	}

	acc, err := accumulator.Parse(string(delta.Accumulator))
	if err != nil {
		return nil, errors.Wrap(err, "invalid delta accumulator")
	}

	updated, err := r.key.UpdateWitness(w, index, delta.Issued, delta.Removed(), acc)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to update witness of index %d", index)
	}

	if !r.key.VerifyWitness(acc, updated, index) {
		return nil, errors.Wrapf(revocation.ErrStaleBase, "delta at %d is inconsistent with witness", delta.Timestamp)
	}

	next.Witness = accumulator.Format(updated)
	next.Accumulator = delta.Accumulator

	return &next, nil
}

// Verify checks that a state is a valid membership witness for its accumulator.
func (r *Builder) Verify(state *revocation.RevocationState) bool {
	w, err := accumulator.Parse(state.Witness)
	if err != nil {
		return false
	}

	acc, err := accumulator.Parse(string(state.Accumulator))
	if err != nil {
		return false
	}

	return r.key.VerifyWitness(acc, w, state.Index)
}

func (r *Builder) checkRegistry(delta *revocation.Delta) error {
	if delta == nil {
		return errors.New("delta is required")
	}

	if delta.RegistryID != "" && delta.RegistryID != r.def.ID {
		return errors.Errorf("delta of %s used for registry %s", delta.RegistryID, r.def.ID)
	}

	return nil
}
