/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package datastore

import (
	"github.com/scoir/canis-revreg/pkg/deltastore"
)

const (
	RegistryC   = "RevocationRegistry"
	CredentialC = "Credential"
	DeltaC      = "RevocationDelta"
)

// Provider storage provider interface
type Provider interface {
	// OpenStore opens a store with given name space and returns the handle
	OpenStore(name string) (Store, error)

	// DeltaLog opens the delta log of the given name space
	DeltaLog(name string) (deltastore.Log, error)

	// CloseStore closes store of given name space
	CloseStore(name string) error

	// Close closes all stores created under this store provider
	Close() error
}

//go:generate mockery -name=Store
type Store interface {
	InsertRegistry(r *Registry) error
	GetRegistry(id string) (*Registry, error)
	UpdateRegistry(r *Registry) error
	ListRegistries(c *RegistryCriteria) (*RegistryList, error)

	InsertCredential(c *Credential) error
	GetCredential(id string) (*Credential, error)
	UpdateCredential(c *Credential) error
	ListCredentials(revRegID string) ([]*Credential, error)
}
