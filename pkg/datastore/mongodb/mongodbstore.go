/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mongodb

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/deltastore"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

type Config struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// Provider represents a Mongo DB implementation of the datastore.Provider interface
type Provider struct {
	db     *mongo.Database
	stores map[string]*mongoDBStore
	logs   map[string]*DeltaLog
	sync.RWMutex
}

type mongoDBStore struct {
	registries  *mongo.Collection
	credentials *mongo.Collection
}

// NewProvider instantiates Provider
func NewProvider(config *Config) (*Provider, error) {
	if config == nil {
		return nil, errors.New("config missing")
	}

	tM := reflect.TypeOf(bson.M{})
	reg := bson.NewRegistryBuilder().RegisterTypeMapEntry(bsontype.EmbeddedDocument, tM).Build()
	clientOpts := options.Client().SetRegistry(reg).ApplyURI(config.URL)

	mongoClient, err := mongo.NewClient(clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "error creating mongo client")
	}

	err = mongoClient.Connect(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to mongo")
	}

	return &Provider{
		db:     mongoClient.Database(config.Database),
		stores: map[string]*mongoDBStore{},
		logs:   map[string]*DeltaLog{},
	}, nil
}

func collectionName(name, kind string) string {
	return fmt.Sprintf("%s_%s", name, kind)
}

// OpenStore opens and returns the collections for given name space.
func (p *Provider) OpenStore(name string) (datastore.Store, error) {
	p.Lock()
	defer p.Unlock()

	if name == "" {
		return nil, errors.New("store name is required")
	}

	if store, ok := p.stores[name]; ok {
		return store, nil
	}

	store := &mongoDBStore{
		registries:  p.db.Collection(collectionName(name, datastore.RegistryC)),
		credentials: p.db.Collection(collectionName(name, datastore.CredentialC)),
	}

	p.stores[name] = store

	return store, nil
}

// DeltaLog opens the delta collection for given name space, creating its
// unique (registry, timestamp) index on first use.
func (p *Provider) DeltaLog(name string) (deltastore.Log, error) {
	p.Lock()
	defer p.Unlock()

	if name == "" {
		return nil, errors.New("store name is required")
	}

	if log, ok := p.logs[name]; ok {
		return log, nil
	}

	log, err := NewDeltaLog(p.db.Collection(collectionName(name, datastore.DeltaC)))
	if err != nil {
		return nil, err
	}

	p.logs[name] = log

	return log, nil
}

// Close closes the provider.
func (p *Provider) Close() error {
	p.Lock()
	defer p.Unlock()

	p.stores = make(map[string]*mongoDBStore)
	p.logs = make(map[string]*DeltaLog)

	return p.db.Client().Disconnect(context.Background())
}

// CloseStore closes a previously opened stores
func (p *Provider) CloseStore(name string) error {
	p.Lock()
	defer p.Unlock()

	delete(p.stores, name)
	delete(p.logs, name)

	return nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Wrapf(revocation.ErrItemNotFound, format, args...)
	}

	return errors.Wrapf(err, format, args...)
}

func (r *mongoDBStore) InsertRegistry(reg *datastore.Registry) error {
	_, err := r.registries.InsertOne(context.Background(), reg)
	if err != nil {
		return errors.Wrap(err, "unable to insert registry")
	}

	return nil
}

func (r *mongoDBStore) GetRegistry(id string) (*datastore.Registry, error) {
	reg := &datastore.Registry{}

	err := r.registries.FindOne(context.Background(), bson.M{"id": id}).Decode(reg)
	if err != nil {
		return nil, notFound(err, "unable to load registry %s", id)
	}

	return reg, nil
}

func (r *mongoDBStore) UpdateRegistry(reg *datastore.Registry) error {
	res, err := r.registries.UpdateOne(context.Background(), bson.M{"id": reg.ID}, bson.M{"$set": reg})
	if err != nil {
		return errors.Wrap(err, "unable to update registry")
	}

	if res.MatchedCount == 0 {
		return errors.Wrapf(revocation.ErrItemNotFound, "registry %s", reg.ID)
	}

	return nil
}

func (r *mongoDBStore) ListRegistries(c *datastore.RegistryCriteria) (*datastore.RegistryList, error) {
	if c == nil {
		c = &datastore.RegistryCriteria{
			Start:    0,
			PageSize: 10,
		}
	}

	bc := bson.M{}
	if c.CredDefID != "" {
		p := fmt.Sprintf(".*%s.*", c.CredDefID)
		bc["definition.creddefid"] = primitive.Regex{Pattern: p, Options: ""}
	}

	opts := &options.FindOptions{}
	opts = opts.SetSkip(int64(c.Start)).SetSort(bson.M{"id": 1})
	if c.PageSize > 0 {
		opts = opts.SetLimit(int64(c.PageSize))
	}

	ctx := context.Background()
	count, err := r.registries.CountDocuments(ctx, bc)
	if err != nil {
		return nil, errors.Wrap(err, "error trying to count registries")
	}

	results, err := r.registries.Find(ctx, bc, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error trying to find registries")
	}

	out := datastore.RegistryList{
		Count:      int(count),
		Registries: []*datastore.Registry{},
	}

	err = results.All(ctx, &out.Registries)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode registries")
	}

	return &out, nil
}

func (r *mongoDBStore) InsertCredential(c *datastore.Credential) error {
	_, err := r.credentials.InsertOne(context.Background(), c)
	if err != nil {
		return errors.Wrap(err, "unable to insert credential")
	}

	return nil
}

func (r *mongoDBStore) GetCredential(id string) (*datastore.Credential, error) {
	cred := &datastore.Credential{}

	err := r.credentials.FindOne(context.Background(), bson.M{"id": id}).Decode(cred)
	if err != nil {
		return nil, notFound(err, "unable to load credential %s", id)
	}

	return cred, nil
}

func (r *mongoDBStore) UpdateCredential(c *datastore.Credential) error {
	res, err := r.credentials.UpdateOne(context.Background(), bson.M{"id": c.ID}, bson.M{"$set": c})
	if err != nil {
		return errors.Wrap(err, "unable to update credential")
	}

	if res.MatchedCount == 0 {
		return errors.Wrapf(revocation.ErrItemNotFound, "credential %s", c.ID)
	}

	return nil
}

func (r *mongoDBStore) ListCredentials(revRegID string) ([]*datastore.Credential, error) {
	ctx := context.Background()
	opts := options.Find().SetSort(bson.M{"id": 1})

	results, err := r.credentials.Find(ctx, bson.M{"revregid": revRegID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error trying to find credentials")
	}

	out := []*datastore.Credential{}
	err = results.All(ctx, &out)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode credentials")
	}

	return out, nil
}
