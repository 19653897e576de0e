package wallet

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scoir/canis-revreg/pkg/datastore/memory"
	"github.com/scoir/canis-revreg/pkg/datastore/mocks"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
)

func revocable(regID string, idx uint32) *schema.IndyCredential {
	return &schema.IndyCredential{
		SchemaID:  "schema",
		CredDefID: "cred-def",
		RevRegID:  regID,
		CredRevID: &idx,
		Values:    schema.IndyCredentialValues{},
	}
}

func TestWallet(t *testing.T) {
	w := New(memory.NewStore())

	id, err := w.Save(revocable("reg", 3))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	t.Run("binding", func(t *testing.T) {
		regID, idx, err := w.Binding(id)
		require.NoError(t, err)
		require.Equal(t, "reg", regID)
		require.Equal(t, uint32(3), idx)
	})

	t.Run("not revocable", func(t *testing.T) {
		plain, err := w.Save(&schema.IndyCredential{SchemaID: "schema"})
		require.NoError(t, err)

		_, _, err = w.Binding(plain)
		require.Error(t, err)
	})

	t.Run("missing index", func(t *testing.T) {
		_, err := w.Save(&schema.IndyCredential{RevRegID: "reg"})
		require.Error(t, err)

		_, err = w.Save(nil)
		require.Error(t, err)
	})

	t.Run("item not found", func(t *testing.T) {
		_, _, err := w.Binding("nope")
		require.True(t, errors.Is(err, revocation.ErrItemNotFound))
		require.Equal(t, revocation.KindNotFound, revocation.Kind(err))
	})

	t.Run("update state", func(t *testing.T) {
		state := &revocation.RevocationState{RegistryID: "reg", Index: 3, Witness: "7", Accumulator: "9", Timestamp: 100}
		require.NoError(t, w.UpdateState(id, state))

		rec, err := w.Get(id)
		require.NoError(t, err)
		require.Equal(t, state, rec.State)

		err = w.UpdateState(id, &revocation.RevocationState{RegistryID: "reg", Index: 4})
		require.Error(t, err)
	})

	t.Run("list and revoke", func(t *testing.T) {
		creds, err := w.ListByRegistry("reg")
		require.NoError(t, err)
		require.Len(t, creds, 1)

		require.NoError(t, w.MarkRevoked(id))
		rec, err := w.Get(id)
		require.NoError(t, err)
		require.True(t, rec.Revoked)
		require.Nil(t, rec.State)
	})
}

func TestWallet_StoreFailure(t *testing.T) {
	store := &mocks.Store{}
	store.On("InsertCredential", mock.Anything).Return(errors.New("boom"))

	_, err := New(store).Save(revocable("reg", 1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
	store.AssertExpectations(t)
}
