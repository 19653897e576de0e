/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const DeltaVersion = "1.0"

// Delta is the change between two consecutive accumulator values of a registry.
// Issued and Revoked are disjoint and sorted. Transient lists the revoked
// indices that were also issued inside the span of a composed delta, so were
// never members of PrevAccumulator.
type Delta struct {
	RegistryID      string
	PrevAccumulator Accumulator
	Accumulator     Accumulator
	Issued          []uint32
	Revoked         []uint32
	Transient       []uint32
	Timestamp       int64
}

// Empty reports whether the delta leaves the accumulator untouched.
func (r *Delta) Empty() bool {
	return len(r.Issued) == 0 && len(r.Revoked) == 0
}

// Removed returns the revoked indices that left PrevAccumulator.
func (r *Delta) Removed() []uint32 {
	if len(r.Transient) == 0 {
		return r.Revoked
	}

	return Indices(BitSetOf(r.Revoked).Difference(BitSetOf(r.Transient)))
}

type deltaValue struct {
	PrevAccum Accumulator `json:"prevAccum"`
	Accum     Accumulator `json:"accum"`
	Issued    []uint32    `json:"issued"`
	Revoked   []uint32    `json:"revoked"`
	Transient []uint32    `json:"transient,omitempty"`
}

type deltaJSON struct {
	Ver           string     `json:"ver"`
	RevocRegDefID string     `json:"revocRegDefId,omitempty"`
	Value         deltaValue `json:"value"`
	Timestamp     int64      `json:"timestamp"`
}

func (r Delta) MarshalJSON() ([]byte, error) {
	issued, revoked := r.Issued, r.Revoked
	if issued == nil {
		issued = []uint32{}
	}
	if revoked == nil {
		revoked = []uint32{}
	}

	return json.Marshal(deltaJSON{
		Ver:           DeltaVersion,
		RevocRegDefID: r.RegistryID,
		Value: deltaValue{
			PrevAccum: r.PrevAccumulator,
			Accum:     r.Accumulator,
			Issued:    issued,
			Revoked:   revoked,
			Transient: r.Transient,
		},
		Timestamp: r.Timestamp,
	})
}

func (r *Delta) UnmarshalJSON(d []byte) error {
	dj := deltaJSON{}
	err := json.Unmarshal(d, &dj)
	if err != nil {
		return err
	}

	if dj.Ver != "" && dj.Ver != DeltaVersion {
		return errors.Errorf("unsupported delta version %s", dj.Ver)
	}

	if dj.Value.Accum == "" {
		return errors.New("delta is missing accum")
	}

	*r = Delta{
		RegistryID:      dj.RevocRegDefID,
		PrevAccumulator: dj.Value.PrevAccum,
		Accumulator:     dj.Value.Accum,
		Issued:          dj.Value.Issued,
		Revoked:         dj.Value.Revoked,
		Transient:       dj.Value.Transient,
		Timestamp:       dj.Timestamp,
	}

	return nil
}
