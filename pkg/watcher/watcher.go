/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package watcher

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/scoir/canis-revreg/pkg/amqp"
	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/witness"
)

//go:generate mockery -name=Wallet
type Wallet interface {
	ListByRegistry(revRegID string) ([]*datastore.Credential, error)
	UpdateState(id string, state *revocation.RevocationState) error
	MarkRevoked(id string) error
}

//go:generate mockery -name=Ledger
type Ledger interface {
	GetRevocRegDef(id string) (*revocation.RegistryDefinition, error)
	GetRevocRegDelta(id string, from *int64, to int64) (*revocation.Delta, error)
}

// Server keeps the witnesses of held credentials current as issuers
// announce new deltas.
type Server struct {
	wallet   Wallet
	ledger   Ledger
	listener amqp.Listener
	errors   chan error

	lock     sync.Mutex
	builders map[string]*witness.Builder
}

type provider interface {
	GetWallet() Wallet
	GetLedger() Ledger
	GetAMQPListener(queue string) amqp.Listener
}

type options struct {
	queue string
}

type Option func(o *options)

// WithQueue consumes delta events from queue instead of QueueName.
func WithQueue(queue string) Option {
	return func(o *options) {
		if queue != "" {
			o.queue = queue
		}
	}
}

func New(prov provider, opts ...Option) (*Server, error) {
	o := &options{queue: QueueName}
	for _, opt := range opts {
		opt(o)
	}

	srv := &Server{
		wallet:   prov.GetWallet(),
		ledger:   prov.GetLedger(),
		listener: prov.GetAMQPListener(o.queue),
		builders: map[string]*witness.Builder{},
	}

	if srv.listener == nil {
		return nil, errors.Errorf("no listener for queue %s", o.queue)
	}

	return srv, nil
}

func (r *Server) Start() error {
	return r.listenAndServe()
}

func (r *Server) listenAndServe() error {
	msgs, err := r.listener.Listen()
	if err != nil {
		return errors.Wrap(err, "unable to consume")
	}

	for d := range msgs {
		evt := &DeltaEvent{}
		err := json.Unmarshal(d.Body, evt)
		if err != nil {
			r.Error(errors.Wrap(err, "bad delta event message"))
			continue
		}

		if evt.Delta == nil || evt.Delta.RegistryID == "" {
			r.Error(errors.New("delta event without registry"))
			continue
		}

		r.Refresh(evt.Delta)
	}

	return errors.New("delta event messages closed")
}

// Refresh advances every unrevoked credential of the delta's registry to the
// delta's timestamp. Failures are reported per credential.
func (r *Server) Refresh(delta *revocation.Delta) {
	b, err := r.builder(delta.RegistryID)
	if err != nil {
		r.Error(err)
		return
	}

	creds, err := r.wallet.ListByRegistry(delta.RegistryID)
	if err != nil {
		r.Error(err)
		return
	}

	for _, cred := range creds {
		if cred.Revoked {
			continue
		}

		err = r.refresh(b, cred, delta)
		if err != nil {
			r.Error(errors.Wrapf(err, "unable to refresh witness of credential %s", cred.ID))
		}
	}
}

func (r *Server) refresh(b *witness.Builder, cred *datastore.Credential, delta *revocation.Delta) error {
	state := cred.State
	if state != nil && state.Timestamp >= delta.Timestamp {
		return nil
	}

	var next *revocation.RevocationState
	var err error

	if state == nil {
		next, err = r.build(b, cred, delta.Timestamp)
	} else {
		next, err = b.Update(state, delta, cred.RevIdx)
		if errors.Is(err, revocation.ErrStaleBase) {
			next, err = r.catchUp(b, cred, delta.Timestamp)
		}
	}

	if errors.Is(err, revocation.ErrIndexNotIssued) {
		log.Infof("credential %s revoked in registry %s", cred.ID, cred.RevRegID)
		return r.wallet.MarkRevoked(cred.ID)
	}

	if err != nil {
		return err
	}

	return r.wallet.UpdateState(cred.ID, next)
}

func (r *Server) build(b *witness.Builder, cred *datastore.Credential, to int64) (*revocation.RevocationState, error) {
	full, err := r.ledger.GetRevocRegDelta(cred.RevRegID, nil, to)
	if err != nil {
		return nil, err
	}

	return b.Build(full, to, cred.RevIdx)
}

// catchUp fetches everything since the stored witness when the announced
// delta does not start at it.
func (r *Server) catchUp(b *witness.Builder, cred *datastore.Credential, to int64) (*revocation.RevocationState, error) {
	from := cred.State.Timestamp
	gap, err := r.ledger.GetRevocRegDelta(cred.RevRegID, &from, to)
	if err != nil {
		return nil, err
	}

	next, err := b.Update(cred.State, gap, cred.RevIdx)
	if errors.Is(err, revocation.ErrStaleBase) {
		log.Debugf("witness of %s diverged from ledger, rebuilding", cred.ID)
		return r.build(b, cred, to)
	}

	return next, err
}

func (r *Server) builder(id string) (*witness.Builder, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if b, ok := r.builders[id]; ok {
		return b, nil
	}

	def, err := r.ledger.GetRevocRegDef(id)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load registry definition %s", id)
	}

	b, err := witness.NewBuilder(def)
	if err != nil {
		return nil, err
	}

	r.builders[id] = b
	return b, nil
}

func (r *Server) Error(err error) {
	if r.errors == nil {
		log.Errorln(err.Error())
		return
	}

	r.errors <- err
}

func (r *Server) Errors() (chan error, error) {
	if r.errors != nil {
		return nil, errors.New("error listener already registered")
	}

	r.errors = make(chan error, 1)
	return r.errors, nil
}
