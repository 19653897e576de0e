/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"encoding/json"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	amocks "github.com/scoir/canis-revreg/pkg/amqp/mocks"
	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/datastore/memory"
	dsmocks "github.com/scoir/canis-revreg/pkg/datastore/mocks"
	"github.com/scoir/canis-revreg/pkg/deltastore"
	"github.com/scoir/canis-revreg/pkg/issuer/mocks"
	"github.com/scoir/canis-revreg/pkg/ledger"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/watcher"
)

const (
	issuerDID = "Th7MpTaRZVRYnPiabds81Y"
	credDefID = "Th7MpTaRZVRYnPiabds81Y:3:CL:12:default"
)

type env struct {
	store   *memory.Store
	handler *ledger.Handler
	client  *ledger.Client
	pub     *amocks.Publisher
	clk     *fakeclock.FakeClock
	issuer  *Issuer
}

func newEnv(t *testing.T) *env {
	e := &env{
		store:   memory.NewStore(),
		handler: ledger.NewHandler(memory.NewStore(), deltastore.NewMemoryLog()),
		pub:     &amocks.Publisher{},
		clk:     fakeclock.NewFakeClock(time.Unix(100, 0)),
	}
	e.client = ledger.NewClient(&ledger.LocalSubmitter{Handler: e.handler}, issuerDID)
	e.pub.On("Publish", mock.Anything, "application/json").Return(nil)

	e.issuer = New(e.store, e.client, WithClock(e.clk), WithKeyBits(512), WithPublisher(e.pub))
	return e
}

func (e *env) create(t *testing.T, it revocation.IssuanceType) *revocation.RegistryDefinition {
	def, err := e.issuer.CreateRegistry(issuerDID, credDefID, "tag", &revocation.RegistryConfig{
		MaxCredNum:   4,
		IssuanceType: it,
	})
	require.NoError(t, err)
	return def
}

func (e *env) published(t *testing.T) []*revocation.Delta {
	var out []*revocation.Delta
	for _, call := range e.pub.Calls {
		evt := &watcher.DeltaEvent{}
		require.NoError(t, json.Unmarshal(call.Arguments.Get(0).([]byte), evt))
		out = append(out, evt.Delta)
	}
	return out
}

func TestIssuer_CreateRegistry(t *testing.T) {
	e := newEnv(t)
	def := e.create(t, revocation.IssuanceOnDemand)

	require.Equal(t, revocation.RegistryID(issuerDID, credDefID, "tag"), def.ID)

	rec, err := e.store.GetRegistry(def.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), rec.Timestamp)

	onLedger, err := e.client.GetRevocRegDef(def.ID)
	require.NoError(t, err)
	require.Equal(t, def, onLedger)

	d, err := e.client.GetRevocRegDelta(def.ID, nil, 100)
	require.NoError(t, err)
	require.Equal(t, rec.Accumulator, d.Accumulator)

	events := e.published(t)
	require.Len(t, events, 1)
	require.True(t, events[0].Empty())

	t.Run("duplicate", func(t *testing.T) {
		_, err := e.issuer.CreateRegistry(issuerDID, credDefID, "tag", &revocation.RegistryConfig{
			MaxCredNum:   4,
			IssuanceType: revocation.IssuanceOnDemand,
		})
		require.Error(t, err)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		_, err := e.issuer.CreateRegistry(issuerDID, credDefID, "other", &revocation.RegistryConfig{
			IssuanceType: revocation.IssuanceOnDemand,
		})
		require.True(t, errors.Is(err, revocation.ErrCapacityInvalid))
	})

	t.Run("ledger rejects definition", func(t *testing.T) {
		led := &mocks.Ledger{}
		led.On("CreateRevocRegDef", mock.Anything).Return(errors.New("boom"))
		store := memory.NewStore()

		iss := New(store, led, WithKeyBits(512))
		_, err := iss.CreateRegistry(issuerDID, credDefID, "tag", &revocation.RegistryConfig{
			MaxCredNum:   4,
			IssuanceType: revocation.IssuanceOnDemand,
		})
		require.Error(t, err)

		list, err := store.ListRegistries(&datastore.RegistryCriteria{})
		require.NoError(t, err)
		require.Equal(t, 0, list.Count)
	})

	t.Run("store lookup fails", func(t *testing.T) {
		store := &dsmocks.Store{}
		store.On("GetRegistry", mock.Anything).Return(nil, errors.New("connection refused"))
		led := &mocks.Ledger{}

		iss := New(store, led, WithKeyBits(512))
		_, err := iss.CreateRegistry(issuerDID, credDefID, "tag", &revocation.RegistryConfig{
			MaxCredNum:   4,
			IssuanceType: revocation.IssuanceOnDemand,
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "connection refused")
		require.False(t, errors.Is(err, revocation.ErrItemNotFound))

		store.AssertNotCalled(t, "InsertRegistry", mock.Anything)
		led.AssertNotCalled(t, "CreateRevocRegDef", mock.Anything)
	})
}

func TestIssuer_IssueAndRevoke(t *testing.T) {
	e := newEnv(t)
	def := e.create(t, revocation.IssuanceOnDemand)

	idx, d, err := e.issuer.Issue(def.ID, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(0), idx)
	require.Equal(t, []uint32{0}, d.Issued)
	require.Equal(t, int64(101), d.Timestamp)

	idx, _, err = e.issuer.Issue(def.ID, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(1), idx)

	three := uint32(3)
	idx, _, err = e.issuer.Issue(def.ID, &three)
	require.NoError(t, err)
	require.Equal(t, three, idx)

	_, _, err = e.issuer.Issue(def.ID, &three)
	require.True(t, errors.Is(err, revocation.ErrDuplicateIndex))

	d, err = e.issuer.Revoke(def.ID, 1)
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, d.Revoked)

	_, err = e.issuer.Revoke(def.ID, 2)
	require.True(t, errors.Is(err, revocation.ErrNotIssued))

	tests := []struct {
		index  uint32
		status revocation.Status
	}{
		{0, revocation.StatusValid},
		{1, revocation.StatusRevoked},
		{2, revocation.StatusUnissued},
		{3, revocation.StatusValid},
	}
	for _, tt := range tests {
		st, err := e.issuer.Status(def.ID, tt.index)
		require.NoError(t, err)
		require.Equal(t, tt.status, st)
	}

	_, err = e.issuer.Status(def.ID, 4)
	require.True(t, errors.Is(err, revocation.ErrInvalidIndex))

	t.Run("ledger and record agree", func(t *testing.T) {
		rec, err := e.store.GetRegistry(def.ID)
		require.NoError(t, err)

		d, err := e.client.GetRevocRegDelta(def.ID, nil, rec.Timestamp)
		require.NoError(t, err)
		require.Equal(t, rec.Accumulator, d.Accumulator)
		require.Equal(t, rec.Timestamp, d.Timestamp)
	})

	t.Run("every change is announced", func(t *testing.T) {
		events := e.published(t)
		require.Len(t, events, 5)
		for i := 1; i < len(events); i++ {
			require.Equal(t, events[i-1].Accumulator, events[i].PrevAccumulator)
		}
	})

	t.Run("next index exhausts the registry", func(t *testing.T) {
		idx, _, err := e.issuer.Issue(def.ID, nil)
		require.NoError(t, err)
		require.Equal(t, uint32(2), idx)

		_, _, err = e.issuer.Issue(def.ID, nil)
		require.True(t, errors.Is(err, revocation.ErrRegistryFull))
	})

	t.Run("unknown registry", func(t *testing.T) {
		_, _, err := e.issuer.Issue("unknown", nil)
		require.True(t, errors.Is(err, revocation.ErrItemNotFound))
	})
}

func TestIssuer_LedgerFailure(t *testing.T) {
	e := newEnv(t)
	def := e.create(t, revocation.IssuanceByDefault)

	led := &mocks.Ledger{}
	led.On("AppendEntry", mock.Anything).Return(errors.New("boom"))
	iss := New(e.store, led, WithClock(e.clk), WithKeyBits(512))

	before, err := e.store.GetRegistry(def.ID)
	require.NoError(t, err)

	_, err = iss.Revoke(def.ID, 2)
	require.Error(t, err)

	after, err := e.store.GetRegistry(def.ID)
	require.NoError(t, err)
	require.Equal(t, before, after)

	led.AssertExpectations(t)
}

func TestIssuer_ListDefinitions(t *testing.T) {
	e := newEnv(t)
	def := e.create(t, revocation.IssuanceOnDemand)

	count, defs, err := e.issuer.ListDefinitions(&datastore.RegistryCriteria{CredDefID: credDefID})
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, []*revocation.RegistryDefinition{def}, defs)

	got, err := e.issuer.Definition(def.ID)
	require.NoError(t, err)
	require.Equal(t, def, got)

	_, err = e.issuer.Definition("unknown")
	require.True(t, errors.Is(err, revocation.ErrItemNotFound))
}
