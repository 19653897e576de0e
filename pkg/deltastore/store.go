/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package deltastore

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/registry"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

// Log is the ordered persistence underneath a Store.
//go:generate mockery -name=Log
type Log interface {
	// Put persists a delta. Ordering is checked by the Store.
	Put(d *revocation.Delta) error

	// Range returns the deltas of a registry with from < timestamp <= to, oldest first.
	Range(registryID string, from, to int64) ([]*revocation.Delta, error)

	// Last returns the newest delta with timestamp <= at, or nil when there is none.
	Last(registryID string, at int64) (*revocation.Delta, error)
}

// Store is the timestamp ordered view of the deltas of many registries.
type Store struct {
	log   Log
	lock  sync.Mutex
	locks map[string]*sync.Mutex
}

func New(log Log) *Store {
	return &Store{
		log:   log,
		locks: map[string]*sync.Mutex{},
	}
}

func (r *Store) registryLock(id string) *sync.Mutex {
	r.lock.Lock()
	defer r.lock.Unlock()

	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}

	return l
}

// Append adds a delta whose timestamp is strictly after every stored delta
// of the same registry.
func (r *Store) Append(d *revocation.Delta) error {
	if d == nil || d.RegistryID == "" {
		return errors.New("delta with registry id is required")
	}

	l := r.registryLock(d.RegistryID)
	l.Lock()
	defer l.Unlock()

	last, err := r.log.Last(d.RegistryID, math.MaxInt64)
	if err != nil {
		return errors.Wrapf(err, "unable to read latest delta of %s", d.RegistryID)
	}

	if last != nil && d.Timestamp <= last.Timestamp {
		return errors.Wrapf(revocation.ErrNonMonotonicTimestamp, "delta at %d, latest at %d", d.Timestamp, last.Timestamp)
	}

	if d.Timestamp <= revocation.Genesis {
		return errors.Wrapf(revocation.ErrNonMonotonicTimestamp, "delta at %d is not after genesis", d.Timestamp)
	}

	err = r.log.Put(d)
	return errors.Wrapf(err, "unable to store delta of %s", d.RegistryID)
}

// DeltaBetween composes the deltas in (from, to]. A nil from composes from
// genesis. When the range holds no delta but the registry has older ones, the
// identity delta at the latest state before to is returned.
func (r *Store) DeltaBetween(registryID string, from *int64, to int64) (*revocation.Delta, error) {
	start := int64(math.MinInt64)
	if from != nil {
		start = *from
	}

	if from != nil && *from > to {
		return nil, errors.Errorf("invalid range (%d, %d]", *from, to)
	}

	deltas, err := r.log.Range(registryID, start, to)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load deltas of %s", registryID)
	}

	if len(deltas) == 0 {
		last, err := r.log.Last(registryID, to)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to load deltas of %s", registryID)
		}

		if last == nil {
			return nil, errors.Wrapf(revocation.ErrNoDataInRange, "registry %s up to %d", registryID, to)
		}

		return &revocation.Delta{
			RegistryID:      registryID,
			PrevAccumulator: last.Accumulator,
			Accumulator:     last.Accumulator,
			Issued:          []uint32{},
			Revoked:         []uint32{},
			Timestamp:       last.Timestamp,
		}, nil
	}

	out := deltas[0]
	for _, d := range deltas[1:] {
		out, err = registry.Merge(out, d)
		if err != nil {
			return nil, errors.Wrapf(err, "stored deltas of %s do not chain", registryID)
		}
	}

	return out, nil
}

// LatestTimestampAtOrBefore snaps t to the newest committed delta, or to genesis.
func (r *Store) LatestTimestampAtOrBefore(registryID string, t int64) (int64, error) {
	last, err := r.log.Last(registryID, t)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to load deltas of %s", registryID)
	}

	if last == nil {
		return revocation.Genesis, nil
	}

	return last.Timestamp, nil
}
