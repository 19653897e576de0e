/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package watcher

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	samqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/require"

	"github.com/scoir/canis-revreg/pkg/amqp"
	lmocks "github.com/scoir/canis-revreg/pkg/amqp/mocks"
	"github.com/scoir/canis-revreg/pkg/datastore/memory"
	"github.com/scoir/canis-revreg/pkg/deltastore"
	"github.com/scoir/canis-revreg/pkg/ledger"
	"github.com/scoir/canis-revreg/pkg/registry"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
	"github.com/scoir/canis-revreg/pkg/wallet"
	"github.com/scoir/canis-revreg/pkg/watcher/mocks"
	"github.com/scoir/canis-revreg/pkg/witness"
)

const issuerDID = "Th7MpTaRZVRYnPiabds81Y"

type mockProvider struct {
	wallet   Wallet
	ledger   Ledger
	listener *lmocks.Listener
	queue    string
}

func (m mockProvider) GetWallet() Wallet {
	return m.wallet
}

func (m mockProvider) GetLedger() Ledger {
	return m.ledger
}

func (m *mockProvider) GetAMQPListener(queue string) amqp.Listener {
	m.queue = queue
	if m.listener == nil {
		return nil
	}
	return m.listener
}

type fixture struct {
	def    *revocation.RegistryDefinition
	reg    *registry.Registry
	clk    *fakeclock.FakeClock
	state  *revocation.RegistryState
	client *ledger.Client
	wallet *wallet.Wallet
	creds  map[uint32]string
}

func newFixture(t *testing.T) *fixture {
	def, sk, err := registry.NewDefinition(issuerDID, "Th7MpTaRZVRYnPiabds81Y:3:CL:12:default", "tag", &revocation.RegistryConfig{
		MaxCredNum:   5,
		IssuanceType: revocation.IssuanceOnDemand,
	}, 512)
	require.NoError(t, err)

	f := &fixture{
		def:   def,
		clk:   fakeclock.NewFakeClock(time.Unix(100, 0)),
		creds: map[uint32]string{},
	}

	f.reg, err = registry.New(def, sk, registry.WithClock(f.clk))
	require.NoError(t, err)

	handler := ledger.NewHandler(memory.NewStore(), deltastore.NewMemoryLog())
	f.client = ledger.NewClient(&ledger.LocalSubmitter{Handler: handler}, issuerDID)
	require.NoError(t, f.client.CreateRevocRegDef(def))

	f.wallet = wallet.New(memory.NewStore())

	f.state, err = f.reg.Create()
	require.NoError(t, err)

	state, d, err := f.reg.Publish(f.state)
	f.commit(t, state, d, err)

	return f
}

func (f *fixture) commit(t *testing.T, state *revocation.RegistryState, d *revocation.Delta, err error) *revocation.Delta {
	require.NoError(t, err)
	require.NoError(t, f.client.AppendEntry(d))
	f.state = state
	f.clk.Increment(100 * time.Second)
	return d
}

func (f *fixture) issue(t *testing.T, idx uint32) *revocation.Delta {
	state, d, err := f.reg.Issue(f.state, idx)
	f.commit(t, state, d, err)

	id, err := f.wallet.Save(&schema.IndyCredential{
		SchemaID:  "Th7MpTaRZVRYnPiabds81Y:2:degree:1.0",
		CredDefID: f.def.CredDefID,
		RevRegID:  f.def.ID,
		CredRevID: &idx,
	})
	require.NoError(t, err)
	f.creds[idx] = id

	return d
}

func (f *fixture) revoke(t *testing.T, idx uint32) *revocation.Delta {
	state, d, err := f.reg.Revoke(f.state, idx)
	return f.commit(t, state, d, err)
}

func (f *fixture) witness(t *testing.T, idx uint32) *revocation.RevocationState {
	rec, err := f.wallet.Get(f.creds[idx])
	require.NoError(t, err)
	return rec.State
}

func (f *fixture) revoked(t *testing.T, idx uint32) bool {
	rec, err := f.wallet.Get(f.creds[idx])
	require.NoError(t, err)
	return rec.Revoked
}

func (f *fixture) server(t *testing.T) (*Server, *lmocks.Listener) {
	listener := &lmocks.Listener{}
	srv, err := New(&mockProvider{wallet: f.wallet, ledger: f.client, listener: listener})
	require.NoError(t, err)
	return srv, listener
}

func TestServer_Refresh(t *testing.T) {
	f := newFixture(t)
	srv, _ := f.server(t)
	errCh, err := srv.Errors()
	require.NoError(t, err)

	b, err := witness.NewBuilder(f.def)
	require.NoError(t, err)

	f.issue(t, 0)
	d := f.issue(t, 1)

	t.Run("builds missing witnesses", func(t *testing.T) {
		srv.Refresh(d)

		for _, idx := range []uint32{0, 1} {
			state := f.witness(t, idx)
			require.NotNil(t, state)
			require.Equal(t, d.Timestamp, state.Timestamp)
			require.Equal(t, d.Accumulator, state.Accumulator)
			require.True(t, b.Verify(state))
		}
	})

	t.Run("replayed event is ignored", func(t *testing.T) {
		before := f.witness(t, 1)
		srv.Refresh(d)
		require.Equal(t, before, f.witness(t, 1))
	})

	t.Run("revocation marks the credential", func(t *testing.T) {
		d := f.revoke(t, 0)
		srv.Refresh(d)

		require.True(t, f.revoked(t, 0))
		require.Nil(t, f.witness(t, 0))

		state := f.witness(t, 1)
		require.Equal(t, d.Timestamp, state.Timestamp)
		require.True(t, b.Verify(state))
	})

	t.Run("missed event is caught up from the ledger", func(t *testing.T) {
		f.issue(t, 2)
		d := f.issue(t, 3)

		srv.Refresh(d)

		for _, idx := range []uint32{1, 3} {
			state := f.witness(t, idx)
			require.Equal(t, d.Timestamp, state.Timestamp)
			require.Equal(t, d.Accumulator, state.Accumulator)
			require.True(t, b.Verify(state))
		}
	})

	require.Len(t, errCh, 0)
}

func TestServer_Start(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		f := newFixture(t)
		srv, listener := f.server(t)
		d := f.issue(t, 2)

		msgs := make(chan samqp.Delivery, 1)
		listener.On("Listen").Return((<-chan samqp.Delivery)(msgs), nil)

		go func() {
			_ = srv.Start()
		}()

		body, err := json.Marshal(&DeltaEvent{Delta: d})
		require.NoError(t, err)
		msgs <- samqp.Delivery{
			ContentType: "application/json",
			Body:        body,
		}

		require.Eventually(t, func() bool {
			rec, err := f.wallet.Get(f.creds[2])
			return err == nil && rec.State != nil && rec.State.Timestamp == d.Timestamp
		}, 5*time.Second, 10*time.Millisecond)
		close(msgs)
	})

	t.Run("invalid message", func(t *testing.T) {
		prov := &mockProvider{
			wallet:   &mocks.Wallet{},
			ledger:   &mocks.Ledger{},
			listener: &lmocks.Listener{},
		}

		target, err := New(prov)
		require.NoError(t, err)

		msgs := make(chan samqp.Delivery, 2)
		prov.listener.On("Listen").Return((<-chan samqp.Delivery)(msgs), nil)

		errCh, err := target.Errors()
		require.NoError(t, err)
		go func() {
			_ = target.Start()
		}()

		msgs <- samqp.Delivery{Body: []byte(`{`)}
		require.Error(t, <-errCh)

		msgs <- samqp.Delivery{Body: []byte(`{"delta":{}}`)}
		require.Error(t, <-errCh)
	})

	t.Run("unknown registry", func(t *testing.T) {
		led := &mocks.Ledger{}
		prov := &mockProvider{
			wallet:   &mocks.Wallet{},
			ledger:   led,
			listener: &lmocks.Listener{},
		}

		target, err := New(prov)
		require.NoError(t, err)

		msgs := make(chan samqp.Delivery, 1)
		prov.listener.On("Listen").Return((<-chan samqp.Delivery)(msgs), nil)
		led.On("GetRevocRegDef", "unknown").Return(nil, revocation.ErrItemNotFound)

		errCh, err := target.Errors()
		require.NoError(t, err)
		go func() {
			_ = target.Start()
		}()

		body, _ := json.Marshal(&DeltaEvent{Delta: &revocation.Delta{RegistryID: "unknown", Timestamp: 10}})
		msgs <- samqp.Delivery{Body: body}

		err = <-errCh
		require.True(t, errors.Is(err, revocation.ErrItemNotFound))
	})

	t.Run("wallet failure", func(t *testing.T) {
		f := newFixture(t)
		w := &mocks.Wallet{}
		target, err := New(&mockProvider{wallet: w, ledger: f.client, listener: &lmocks.Listener{}})
		require.NoError(t, err)

		errCh, err := target.Errors()
		require.NoError(t, err)

		w.On("ListByRegistry", f.def.ID).Return(nil, errors.New("boom"))
		target.Refresh(&revocation.Delta{RegistryID: f.def.ID, Timestamp: 100})

		require.Error(t, <-errCh)
		w.AssertExpectations(t)
	})

	t.Run("listener error", func(t *testing.T) {
		listener := &lmocks.Listener{}
		target, err := New(&mockProvider{wallet: &mocks.Wallet{}, ledger: &mocks.Ledger{}, listener: listener})
		require.NoError(t, err)

		listener.On("Listen").Return(nil, errors.New("BOOM"))
		err = target.Start()
		require.Error(t, err)
	})

	t.Run("messages closed", func(t *testing.T) {
		listener := &lmocks.Listener{}
		target, err := New(&mockProvider{wallet: &mocks.Wallet{}, ledger: &mocks.Ledger{}, listener: listener})
		require.NoError(t, err)

		msgs := make(chan samqp.Delivery, 1)
		listener.On("Listen").Return((<-chan samqp.Delivery)(msgs), nil)

		errCh := make(chan error, 1)
		go func() {
			errCh <- target.Start()
		}()

		close(msgs)

		startErr := <-errCh
		require.Equal(t, "delta event messages closed", startErr.Error())
	})
}

func TestNew(t *testing.T) {
	prov := &mockProvider{wallet: &mocks.Wallet{}, ledger: &mocks.Ledger{}, listener: &lmocks.Listener{}}
	_, err := New(prov)
	require.NoError(t, err)
	require.Equal(t, QueueName, prov.queue)

	_, err = New(prov, WithQueue("deltas"))
	require.NoError(t, err)
	require.Equal(t, "deltas", prov.queue)

	_, err = New(&mockProvider{wallet: &mocks.Wallet{}, ledger: &mocks.Ledger{}})
	require.Error(t, err)
}

func TestServer_Errors(t *testing.T) {
	target, err := New(&mockProvider{wallet: &mocks.Wallet{}, ledger: &mocks.Ledger{}, listener: &lmocks.Listener{}})
	require.NoError(t, err)

	_, err = target.Errors()
	require.NoError(t, err)

	_, err = target.Errors()
	require.Error(t, err)
}
