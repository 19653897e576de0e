/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package context

import (
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/wallet"
)

const (
	apiKey    = "api"
	storeName = "revreg"
)

func (r *Provider) Datastore() (datastore.Provider, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.datastore()
}

func (r *Provider) datastore() (datastore.Provider, error) {
	if r.dp != nil {
		return r.dp, nil
	}

	dc, err := r.conf.DataStore()
	if err != nil {
		return nil, errors.Wrap(err, "datastore is not correctly configured")
	}

	r.dp, err = dc.StorageProvider()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get datastore from config")
	}

	return r.dp, nil
}

// Store opens the registry and credential store of this deployment.
func (r *Provider) Store() (datastore.Store, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.store != nil {
		return r.store, nil
	}

	dp, err := r.datastore()
	if err != nil {
		return nil, err
	}

	r.store, err = dp.OpenStore(storeName)
	return r.store, errors.Wrap(err, "unable to open store")
}

func (r *Provider) Wallet() (*wallet.Wallet, error) {
	store, err := r.Store()
	if err != nil {
		return nil, err
	}

	return wallet.New(store), nil
}
