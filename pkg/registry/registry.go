/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package registry

import (
	"math/big"

	"code.cloudfoundry.org/clock"
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/accumulator"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

// Registry is the issuer side of one revocation registry. Its methods never
// modify the state passed in; they return a new state and the delta that
// leads to it.
type Registry struct {
	def   *revocation.RegistryDefinition
	key   *accumulator.PrivateKey
	clock clock.Clock
}

type Option func(r *Registry)

func WithClock(c clock.Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// NewDefinition generates the accumulator keys of a new registry and the
// definition that publishes them.
func NewDefinition(issuerDID, credDefID, tag string, cfg *revocation.RegistryConfig, keyBits int) (*revocation.RegistryDefinition, *accumulator.PrivateKey, error) {
	if cfg == nil {
		return nil, nil, errors.New("registry config is required")
	}

	if cfg.MaxCredNum <= 0 {
		return nil, nil, errors.Wrapf(revocation.ErrCapacityInvalid, "max_cred_num %d", cfg.MaxCredNum)
	}

	if !cfg.IssuanceType.Valid() {
		return nil, nil, errors.Errorf("unknown issuance type %s", cfg.IssuanceType)
	}

	if keyBits == 0 {
		keyBits = accumulator.DefaultKeyBits
	}

	sk, err := accumulator.GenerateKey(nil, keyBits)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to generate accumulator key")
	}

	def := &revocation.RegistryDefinition{
		ID:           revocation.RegistryID(issuerDID, credDefID, tag),
		Type:         revocation.RegistryType,
		Tag:          tag,
		CredDefID:    credDefID,
		MaxCredNum:   cfg.MaxCredNum,
		IssuanceType: cfg.IssuanceType,
		PublicKeys: revocation.PublicKeys{
			N: accumulator.Format(sk.N),
			G: accumulator.Format(sk.G),
		},
	}

	return def, sk, nil
}

func New(def *revocation.RegistryDefinition, key *accumulator.PrivateKey, opts ...Option) (*Registry, error) {
	if def == nil || key == nil {
		return nil, errors.New("registry definition and key are required")
	}

	if accumulator.Format(key.N) != def.PublicKeys.N || accumulator.Format(key.G) != def.PublicKeys.G {
		return nil, errors.Errorf("key does not belong to registry %s", def.ID)
	}

	r := &Registry{
		def:   def,
		key:   key,
		clock: clock.NewClock(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

func (r *Registry) Definition() *revocation.RegistryDefinition {
	return r.def
}

// Create returns the genesis state of the registry.
func (r *Registry) Create() (*revocation.RegistryState, error) {
	if r.def.MaxCredNum <= 0 {
		return nil, errors.Wrapf(revocation.ErrCapacityInvalid, "max_cred_num %d", r.def.MaxCredNum)
	}

	issued := r.def.GenesisMembers()

	return &revocation.RegistryState{
		RegistryID:  r.def.ID,
		Accumulator: revocation.Accumulator(accumulator.Format(r.key.Accumulate(revocation.Indices(issued)))),
		Issued:      issued,
		Revoked:     newSet(r.def),
		Timestamp:   revocation.Genesis,
	}, nil
}

func (r *Registry) Issue(state *revocation.RegistryState, index uint32) (*revocation.RegistryState, *revocation.Delta, error) {
	if !r.def.InRange(index) {
		return nil, nil, errors.Wrapf(revocation.ErrInvalidIndex, "index %d outside [0, %d)", index, r.def.MaxCredNum)
	}

	if r.def.IssuanceType == revocation.IssuanceOnDemand && state.Used() >= uint(r.def.MaxCredNum) {
		return nil, nil, errors.Wrapf(revocation.ErrRegistryFull, "registry %s", r.def.ID)
	}

	switch state.Status(index) {
	case revocation.StatusValid:
		return nil, nil, errors.Wrapf(revocation.ErrDuplicateIndex, "index %d already issued", index)
	case revocation.StatusRevoked:
		return nil, nil, errors.Wrapf(revocation.ErrDuplicateIndex, "index %d was revoked", index)
	}

	acc, err := accumulator.Parse(string(state.Accumulator))
	if err != nil {
		return nil, nil, errors.Wrap(err, "corrupt registry state")
	}

	next := state.Clone()
	next.Issued.Set(uint(index))

	return r.advance(state, next, r.key.ApplyIssuance(acc, index), []uint32{index}, nil)
}

func (r *Registry) Revoke(state *revocation.RegistryState, index uint32) (*revocation.RegistryState, *revocation.Delta, error) {
	if !r.def.InRange(index) {
		return nil, nil, errors.Wrapf(revocation.ErrInvalidIndex, "index %d outside [0, %d)", index, r.def.MaxCredNum)
	}

	switch state.Status(index) {
	case revocation.StatusUnissued:
		return nil, nil, errors.Wrapf(revocation.ErrNotIssued, "index %d was never issued", index)
	case revocation.StatusRevoked:
		return nil, nil, errors.Wrapf(revocation.ErrNotIssued, "index %d already revoked", index)
	}

	acc, err := accumulator.Parse(string(state.Accumulator))
	if err != nil {
		return nil, nil, errors.Wrap(err, "corrupt registry state")
	}

	removed, err := r.key.ApplyRevocation(acc, index)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to revoke index %d", index)
	}

	next := state.Clone()
	next.Issued.Clear(uint(index))
	next.Revoked.Set(uint(index))

	return r.advance(state, next, removed, nil, []uint32{index})
}

// Publish returns the identity delta that puts the current accumulator on
// record, such as the first entry of a newly created registry.
func (r *Registry) Publish(state *revocation.RegistryState) (*revocation.RegistryState, *revocation.Delta, error) {
	acc, err := accumulator.Parse(string(state.Accumulator))
	if err != nil {
		return nil, nil, errors.Wrap(err, "corrupt registry state")
	}

	return r.advance(state, state.Clone(), acc, []uint32{}, []uint32{})
}

// NextIndex returns the lowest index that was never used.
func (r *Registry) NextIndex(state *revocation.RegistryState) (uint32, error) {
	used := state.Issued.Union(state.Revoked)
	for i := uint(0); i < uint(r.def.MaxCredNum); i++ {
		if !used.Test(i) {
			return uint32(i), nil
		}
	}

	return 0, errors.Wrapf(revocation.ErrRegistryFull, "registry %s", r.def.ID)
}

func (r *Registry) advance(prev, next *revocation.RegistryState, acc *big.Int, issued, revoked []uint32) (*revocation.RegistryState, *revocation.Delta, error) {
	ts := r.clock.Now().Unix()
	if ts <= prev.Timestamp {
		ts = prev.Timestamp + 1
	}

	next.Accumulator = revocation.Accumulator(accumulator.Format(acc))
	next.Timestamp = ts

	delta := &revocation.Delta{
		RegistryID:      r.def.ID,
		PrevAccumulator: prev.Accumulator,
		Accumulator:     next.Accumulator,
		Issued:          issued,
		Revoked:         revoked,
		Timestamp:       ts,
	}

	return next, delta, nil
}

func newSet(def *revocation.RegistryDefinition) *bitset.BitSet {
	return bitset.New(uint(def.MaxCredNum))
}
