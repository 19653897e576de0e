/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/
package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/deltastore"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

const (
	mongoStoreDBURL = "mongodb://localhost:27017"
)

// For these unit tests to run, you must ensure you have a Mongo DB instance running at the URL specified in
// mongoStoreDBURL.
// To run the tests manually, start an instance by running the following command in the terminal
// docker run -p 27017:27017 --name MongoStoreTest -d mongo:4.2.8
// delete using
//   docker kill MongoStoreTest
//   docker rm MongoStoreTest
func TestMain(m *testing.M) {
	err := waitForMongoDBToStart()
	if err != nil {
		fmt.Printf(err.Error() +
			". Make sure you start a mongo instance using" +
			" 'docker run -p 27017:27017 mongo:4.2.8' before running the unit tests")
		os.Exit(0)
	}

	os.Exit(m.Run())
}

func waitForMongoDBToStart() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoStoreDBURL))
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	return client.Ping(ctx, nil)
}

func newProvider(t *testing.T) *Provider {
	p, err := NewProvider(&Config{URL: mongoStoreDBURL, Database: "revreg_test_" + uuid.New().String()[:8]})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = p.db.Drop(context.Background())
		_ = p.Close()
	})

	return p
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(nil)
	require.Error(t, err)
}

func TestMongoDBStore_Registry(t *testing.T) {
	store, err := newProvider(t).OpenStore("issuer")
	require.NoError(t, err)

	reg := &datastore.Registry{
		ID:          "reg-1",
		Definition:  &revocation.RegistryDefinition{ID: "reg-1", CredDefID: "cred-def-a", MaxCredNum: 10},
		Accumulator: "42",
		Issued:      []uint32{1, 3},
		Revoked:     []uint32{},
		Timestamp:   100,
	}
	require.NoError(t, store.InsertRegistry(reg))

	out, err := store.GetRegistry("reg-1")
	require.NoError(t, err)
	require.Equal(t, reg.Definition.CredDefID, out.Definition.CredDefID)
	require.Equal(t, []uint32{1, 3}, out.Issued)

	reg.Timestamp = 200
	require.NoError(t, store.UpdateRegistry(reg))
	out, err = store.GetRegistry("reg-1")
	require.NoError(t, err)
	require.Equal(t, int64(200), out.Timestamp)

	list, err := store.ListRegistries(&datastore.RegistryCriteria{CredDefID: "def-a", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)

	_, err = store.GetRegistry("nope")
	require.True(t, errors.Is(err, revocation.ErrItemNotFound))
}

func TestMongoDBStore_Credential(t *testing.T) {
	store, err := newProvider(t).OpenStore("holder")
	require.NoError(t, err)

	require.NoError(t, store.InsertCredential(&datastore.Credential{ID: "a", RevRegID: "reg", RevIdx: 4}))
	creds, err := store.ListCredentials("reg")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	require.Equal(t, uint32(4), creds[0].RevIdx)

	err = store.UpdateCredential(&datastore.Credential{ID: "b"})
	require.True(t, errors.Is(err, revocation.ErrItemNotFound))
}

func TestDeltaLog(t *testing.T) {
	log, err := newProvider(t).DeltaLog("ledger")
	require.NoError(t, err)

	store := deltastore.New(log)
	require.NoError(t, store.Append(&revocation.Delta{RegistryID: "reg", PrevAccumulator: "1", Accumulator: "2", Issued: []uint32{0}, Timestamp: 100}))
	require.NoError(t, store.Append(&revocation.Delta{RegistryID: "reg", PrevAccumulator: "2", Accumulator: "3", Issued: []uint32{1}, Timestamp: 200}))

	err = store.Append(&revocation.Delta{RegistryID: "reg", PrevAccumulator: "3", Accumulator: "4", Timestamp: 150})
	require.True(t, errors.Is(err, revocation.ErrNonMonotonicTimestamp))

	d, err := store.DeltaBetween("reg", nil, 300)
	require.NoError(t, err)
	require.Equal(t, revocation.Accumulator("1"), d.PrevAccumulator)
	require.Equal(t, revocation.Accumulator("3"), d.Accumulator)
	require.Equal(t, []uint32{0, 1}, d.Issued)

	last, err := log.Last("reg", 150)
	require.NoError(t, err)
	require.Equal(t, int64(100), last.Timestamp)

	last, err = log.Last("reg", 50)
	require.NoError(t, err)
	require.Nil(t, last)
}
