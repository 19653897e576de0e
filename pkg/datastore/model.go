/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package datastore

import (
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/accumulator"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
)

// Registry is the issuer record of a revocation registry: its definition,
// the accumulator trapdoor and the current state.
type Registry struct {
	ID          string
	Definition  *revocation.RegistryDefinition
	SecretP     string
	SecretQ     string
	Accumulator revocation.Accumulator
	Issued      []uint32
	Revoked     []uint32
	Timestamp   int64
}

type RegistryCriteria struct {
	Start, PageSize int
	CredDefID       string
}

type RegistryList struct {
	Count      int
	Registries []*Registry
}

func NewRegistry(def *revocation.RegistryDefinition, key *accumulator.PrivateKey, state *revocation.RegistryState) *Registry {
	r := &Registry{
		ID:         def.ID,
		Definition: def,
		SecretP:    accumulator.Format(key.P),
		SecretQ:    accumulator.Format(key.Q),
	}
	r.SetState(state)

	return r
}

func (r *Registry) SetState(state *revocation.RegistryState) {
	r.Accumulator = state.Accumulator
	r.Issued = state.IssuedIndices()
	r.Revoked = state.RevokedIndices()
	r.Timestamp = state.Timestamp
}

func (r *Registry) State() *revocation.RegistryState {
	issued := revocation.BitSetOf(r.Issued)
	revoked := revocation.BitSetOf(r.Revoked)

	return &revocation.RegistryState{
		RegistryID:  r.ID,
		Accumulator: r.Accumulator,
		Issued:      issued,
		Revoked:     revoked,
		Timestamp:   r.Timestamp,
	}
}

func (r *Registry) PrivateKey() (*accumulator.PrivateKey, error) {
	pub, err := accumulator.ParsePublicKey(r.Definition.PublicKeys.N, r.Definition.PublicKeys.G)
	if err != nil {
		return nil, errors.Wrapf(err, "registry %s has invalid public keys", r.ID)
	}

	return accumulator.ParsePrivateKey(pub, r.SecretP, r.SecretQ)
}

// Credential is a wallet record: a held credential, its registry binding and
// the witness last built for it.
type Credential struct {
	ID         string
	RevRegID   string
	RevIdx     uint32
	Credential *schema.IndyCredential
	State      *revocation.RevocationState
	Revoked    bool
}
