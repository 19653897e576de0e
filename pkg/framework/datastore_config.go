/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package framework

import (
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/datastore/memory"
	"github.com/scoir/canis-revreg/pkg/datastore/mongodb"
)

type DatastoreConfig struct {
	Database string          `mapstructure:"database"`
	Mongo    *mongodb.Config `mapstructure:"mongo"`
}

func (r *DatastoreConfig) StorageProvider() (datastore.Provider, error) {
	var dp datastore.Provider
	var err error

	switch r.Database {
	case "mongo":
		if r.Mongo == nil {
			return nil, errors.New("mongo datastore selected without mongo configuration")
		}
		dp, err = mongodb.NewProvider(r.Mongo)
	case "memory":
		dp = memory.NewProvider()
	default:
		return nil, errors.New("no datastore configuration was provided")
	}

	if err != nil {
		return nil, errors.Wrap(err, "unable to create datastore based on config")
	}

	return dp, nil
}
