/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"encoding/json"
	"sync"

	"code.cloudfoundry.org/clock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/scoir/canis-revreg/pkg/amqp"
	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/registry"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/watcher"
)

//go:generate mockery -name=Ledger
type Ledger interface {
	CreateRevocRegDef(def *revocation.RegistryDefinition) error
	AppendEntry(d *revocation.Delta) error
}

// Issuer owns the registries of this deployment. Every change is written to
// the ledger before the local record and then announced on the delta queue.
type Issuer struct {
	store     datastore.Store
	ledger    Ledger
	publisher amqp.Publisher
	clock     clock.Clock
	keyBits   int

	lock  sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(r *Issuer)

func WithClock(c clock.Clock) Option {
	return func(r *Issuer) {
		r.clock = c
	}
}

func WithKeyBits(bits int) Option {
	return func(r *Issuer) {
		r.keyBits = bits
	}
}

// WithPublisher announces every appended delta on pub.
func WithPublisher(pub amqp.Publisher) Option {
	return func(r *Issuer) {
		r.publisher = pub
	}
}

func New(store datastore.Store, ledger Ledger, opts ...Option) *Issuer {
	r := &Issuer{
		store:   store,
		ledger:  ledger,
		clock:   clock.NewClock(),
		keyBits: 2048,
		locks:   map[string]*sync.Mutex{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// CreateRegistry generates the keys of a new registry, writes its definition
// and first entry to the ledger and stores the issuer record.
func (r *Issuer) CreateRegistry(issuerDID, credDefID, tag string, cfg *revocation.RegistryConfig) (*revocation.RegistryDefinition, error) {
	def, sk, err := registry.NewDefinition(issuerDID, credDefID, tag, cfg, r.keyBits)
	if err != nil {
		return nil, err
	}

	l := r.registryLock(def.ID)
	l.Lock()
	defer l.Unlock()

	_, err = r.store.GetRegistry(def.ID)
	if err == nil {
		return nil, errors.Errorf("registry %s already exists", def.ID)
	}
	if !errors.Is(err, revocation.ErrItemNotFound) {
		return nil, errors.Wrapf(err, "unable to check for registry %s", def.ID)
	}

	reg, err := registry.New(def, sk, registry.WithClock(r.clock))
	if err != nil {
		return nil, err
	}

	state, err := reg.Create()
	if err != nil {
		return nil, err
	}

	state, delta, err := reg.Publish(state)
	if err != nil {
		return nil, err
	}

	err = r.ledger.CreateRevocRegDef(def)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to write definition of %s", def.ID)
	}

	err = r.ledger.AppendEntry(delta)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to write first entry of %s", def.ID)
	}

	err = r.store.InsertRegistry(datastore.NewRegistry(def, sk, state))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to store registry %s", def.ID)
	}

	log.WithField("registry", def.ID).Infof("created %s registry of %d", def.IssuanceType, def.MaxCredNum)
	r.announce(delta)

	return def, nil
}

// Issue marks index issued. A nil index takes the first unused one.
func (r *Issuer) Issue(id string, index *uint32) (uint32, *revocation.Delta, error) {
	var out uint32
	delta, err := r.update(id, func(reg *registry.Registry, state *revocation.RegistryState) (*revocation.RegistryState, *revocation.Delta, error) {
		idx := index
		if idx == nil {
			next, err := reg.NextIndex(state)
			if err != nil {
				return nil, nil, err
			}
			idx = &next
		}

		out = *idx
		return reg.Issue(state, *idx)
	})

	return out, delta, err
}

func (r *Issuer) Revoke(id string, index uint32) (*revocation.Delta, error) {
	return r.update(id, func(reg *registry.Registry, state *revocation.RegistryState) (*revocation.RegistryState, *revocation.Delta, error) {
		return reg.Revoke(state, index)
	})
}

// Status reports whether index was never issued, is valid or was revoked.
func (r *Issuer) Status(id string, index uint32) (revocation.Status, error) {
	rec, err := r.store.GetRegistry(id)
	if err != nil {
		return revocation.StatusUnissued, err
	}

	if !rec.Definition.InRange(index) {
		return revocation.StatusUnissued, errors.Wrapf(revocation.ErrInvalidIndex, "index %d", index)
	}

	return rec.State().Status(index), nil
}

func (r *Issuer) Definition(id string) (*revocation.RegistryDefinition, error) {
	rec, err := r.store.GetRegistry(id)
	if err != nil {
		return nil, err
	}

	return rec.Definition, nil
}

func (r *Issuer) ListDefinitions(c *datastore.RegistryCriteria) (int, []*revocation.RegistryDefinition, error) {
	list, err := r.store.ListRegistries(c)
	if err != nil {
		return 0, nil, err
	}

	out := make([]*revocation.RegistryDefinition, len(list.Registries))
	for i, rec := range list.Registries {
		out[i] = rec.Definition
	}

	return list.Count, out, nil
}

type change func(reg *registry.Registry, state *revocation.RegistryState) (*revocation.RegistryState, *revocation.Delta, error)

func (r *Issuer) update(id string, apply change) (*revocation.Delta, error) {
	l := r.registryLock(id)
	l.Lock()
	defer l.Unlock()

	rec, err := r.store.GetRegistry(id)
	if err != nil {
		return nil, err
	}

	sk, err := rec.PrivateKey()
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(rec.Definition, sk, registry.WithClock(r.clock))
	if err != nil {
		return nil, err
	}

	state, delta, err := apply(reg, rec.State())
	if err != nil {
		return nil, err
	}

	err = r.ledger.AppendEntry(delta)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to write entry of %s at %d", id, delta.Timestamp)
	}

	rec.SetState(state)
	err = r.store.UpdateRegistry(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "registry %s is behind the ledger at %d", id, delta.Timestamp)
	}

	r.announce(delta)
	return delta, nil
}

func (r *Issuer) announce(delta *revocation.Delta) {
	if r.publisher == nil {
		return
	}

	message, err := json.Marshal(&watcher.DeltaEvent{Delta: delta})
	if err != nil {
		log.WithError(err).Errorln("unable to encode delta event")
		return
	}

	err = r.publisher.Publish(message, "application/json")
	if err != nil {
		log.WithError(err).WithField("registry", delta.RegistryID).Errorln("unable to publish delta event")
	}
}

func (r *Issuer) registryLock(id string) *sync.Mutex {
	r.lock.Lock()
	defer r.lock.Unlock()

	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}

	return l
}
