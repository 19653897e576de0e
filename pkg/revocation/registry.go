/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"encoding/json"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

const (
	RegistryType = "CL_ACCUM"
	Genesis      = int64(0)
)

type IssuanceType string

const (
	IssuanceByDefault IssuanceType = "ISSUANCE_BY_DEFAULT"
	IssuanceOnDemand  IssuanceType = "ISSUANCE_ON_DEMAND"
)

func (r IssuanceType) Valid() bool {
	return r == IssuanceByDefault || r == IssuanceOnDemand
}

// Accumulator is an opaque accumulator value, encoded as a decimal string.
type Accumulator string

// RegistryConfig is the issuer supplied configuration for a new registry.
type RegistryConfig struct {
	MaxCredNum   int          `json:"max_cred_num"`
	IssuanceType IssuanceType `json:"issuance_type"`
}

func ParseRegistryConfig(d []byte) (*RegistryConfig, error) {
	cfg := &RegistryConfig{}
	err := json.Unmarshal(d, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid registry config")
	}

	if cfg.IssuanceType == "" {
		cfg.IssuanceType = IssuanceOnDemand
	}

	if !cfg.IssuanceType.Valid() {
		return nil, errors.Errorf("unknown issuance type %s", cfg.IssuanceType)
	}

	if cfg.MaxCredNum <= 0 {
		return nil, errors.Wrapf(ErrCapacityInvalid, "max_cred_num %d", cfg.MaxCredNum)
	}

	return cfg, nil
}

type PublicKeys struct {
	N string `json:"n"`
	G string `json:"g"`
}

type RegistryDefinition struct {
	ID           string       `json:"id"`
	Type         string       `json:"revocDefType"`
	Tag          string       `json:"tag"`
	CredDefID    string       `json:"credDefId"`
	MaxCredNum   int          `json:"maxCredNum"`
	IssuanceType IssuanceType `json:"issuanceType"`
	PublicKeys   PublicKeys   `json:"publicKeys"`
}

// InRange reports whether index addresses a slot of the registry.
func (r *RegistryDefinition) InRange(index uint32) bool {
	return int64(index) < int64(r.MaxCredNum)
}

// GenesisMembers returns the indices accumulated before any delta exists.
func (r *RegistryDefinition) GenesisMembers() *bitset.BitSet {
	members := bitset.New(uint(r.MaxCredNum))
	if r.IssuanceType == IssuanceByDefault {
		members.FlipRange(0, uint(r.MaxCredNum))
	}

	return members
}

type Status int

const (
	StatusUnissued Status = iota
	StatusValid
	StatusRevoked
)

func (r Status) String() string {
	switch r {
	case StatusValid:
		return "VALID"
	case StatusRevoked:
		return "REVOKED"
	}
	return "UNISSUED"
}

// RegistryState is the current accumulator and index partition of one registry.
// Issued and Revoked are disjoint.
type RegistryState struct {
	RegistryID  string
	Accumulator Accumulator
	Issued      *bitset.BitSet
	Revoked     *bitset.BitSet
	Timestamp   int64
}

func (r *RegistryState) Clone() *RegistryState {
	return &RegistryState{
		RegistryID:  r.RegistryID,
		Accumulator: r.Accumulator,
		Issued:      r.Issued.Clone(),
		Revoked:     r.Revoked.Clone(),
		Timestamp:   r.Timestamp,
	}
}

func (r *RegistryState) Status(index uint32) Status {
	switch {
	case r.Issued.Test(uint(index)):
		return StatusValid
	case r.Revoked.Test(uint(index)):
		return StatusRevoked
	}
	return StatusUnissued
}

func (r *RegistryState) IssuedIndices() []uint32 {
	return Indices(r.Issued)
}

func (r *RegistryState) RevokedIndices() []uint32 {
	return Indices(r.Revoked)
}

// Used counts the indices that are either issued or revoked.
func (r *RegistryState) Used() uint {
	return r.Issued.UnionCardinality(r.Revoked)
}

// RevocationState is the witness a prover holds for one credential.
type RevocationState struct {
	RegistryID  string      `json:"rev_reg_id"`
	Index       uint32      `json:"rev_idx"`
	Witness     string      `json:"witness"`
	Accumulator Accumulator `json:"accum"`
	Timestamp   int64       `json:"timestamp"`
}

// BitSetOf builds a set from a list of indices.
func BitSetOf(indices []uint32) *bitset.BitSet {
	b := &bitset.BitSet{}
	for _, idx := range indices {
		b.Set(uint(idx))
	}

	return b
}

// Indices lists the members of b in ascending order.
func Indices(b *bitset.BitSet) []uint32 {
	out := make([]uint32, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, uint32(i))
	}

	return out
}
