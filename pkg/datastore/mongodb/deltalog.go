/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scoir/canis-revreg/pkg/revocation"
)

type deltaDoc struct {
	RegistryID      string   `bson:"registry_id"`
	PrevAccumulator string   `bson:"prev_accum"`
	Accumulator     string   `bson:"accum"`
	Issued          []uint32 `bson:"issued"`
	Revoked         []uint32 `bson:"revoked"`
	Timestamp       int64    `bson:"timestamp"`
}

func toDoc(d *revocation.Delta) *deltaDoc {
	return &deltaDoc{
		RegistryID:      d.RegistryID,
		PrevAccumulator: string(d.PrevAccumulator),
		Accumulator:     string(d.Accumulator),
		Issued:          append([]uint32{}, d.Issued...),
		Revoked:         append([]uint32{}, d.Revoked...),
		Timestamp:       d.Timestamp,
	}
}

func (r *deltaDoc) delta() *revocation.Delta {
	out := &revocation.Delta{
		RegistryID:      r.RegistryID,
		PrevAccumulator: revocation.Accumulator(r.PrevAccumulator),
		Accumulator:     revocation.Accumulator(r.Accumulator),
		Issued:          r.Issued,
		Revoked:         r.Revoked,
		Timestamp:       r.Timestamp,
	}

	if out.Issued == nil {
		out.Issued = []uint32{}
	}
	if out.Revoked == nil {
		out.Revoked = []uint32{}
	}

	return out
}

// DeltaLog persists revocation deltas in a Mongo collection.
type DeltaLog struct {
	collection *mongo.Collection
}

func NewDeltaLog(collection *mongo.Collection) (*DeltaLog, error) {
	_, err := collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "registry_id", Value: 1}, {Key: "timestamp", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to index delta collection")
	}

	return &DeltaLog{collection: collection}, nil
}

func (r *DeltaLog) Put(d *revocation.Delta) error {
	_, err := r.collection.InsertOne(context.Background(), toDoc(d))
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(revocation.ErrNonMonotonicTimestamp, "delta of %s at %d already stored", d.RegistryID, d.Timestamp)
	}

	return errors.Wrap(err, "unable to insert delta")
}

func (r *DeltaLog) Range(registryID string, from, to int64) ([]*revocation.Delta, error) {
	ctx := context.Background()
	filter := bson.M{
		"registry_id": registryID,
		"timestamp":   bson.M{"$gt": from, "$lte": to},
	}

	results, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"timestamp": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "error trying to find deltas")
	}

	var docs []*deltaDoc
	err = results.All(ctx, &docs)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode deltas")
	}

	out := make([]*revocation.Delta, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.delta())
	}

	return out, nil
}

func (r *DeltaLog) Last(registryID string, at int64) (*revocation.Delta, error) {
	filter := bson.M{
		"registry_id": registryID,
		"timestamp":   bson.M{"$lte": at},
	}

	doc := &deltaDoc{}
	err := r.collection.FindOne(context.Background(), filter, options.FindOne().SetSort(bson.M{"timestamp": -1})).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to load latest delta")
	}

	return doc.delta(), nil
}
