/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/deltastore"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

// Provider keeps every store in process memory.
type Provider struct {
	stores map[string]*Store
	logs   map[string]*deltastore.MemoryLog
	sync.RWMutex
}

func NewProvider() *Provider {
	return &Provider{
		stores: map[string]*Store{},
		logs:   map[string]*deltastore.MemoryLog{},
	}
}

func (p *Provider) OpenStore(name string) (datastore.Store, error) {
	p.Lock()
	defer p.Unlock()

	if name == "" {
		return nil, errors.New("store name is required")
	}

	store, ok := p.stores[name]
	if !ok {
		store = NewStore()
		p.stores[name] = store
	}

	return store, nil
}

func (p *Provider) DeltaLog(name string) (deltastore.Log, error) {
	p.Lock()
	defer p.Unlock()

	if name == "" {
		return nil, errors.New("store name is required")
	}

	log, ok := p.logs[name]
	if !ok {
		log = deltastore.NewMemoryLog()
		p.logs[name] = log
	}

	return log, nil
}

func (p *Provider) CloseStore(name string) error {
	p.Lock()
	defer p.Unlock()

	delete(p.stores, name)
	delete(p.logs, name)

	return nil
}

func (p *Provider) Close() error {
	p.Lock()
	defer p.Unlock()

	p.stores = map[string]*Store{}
	p.logs = map[string]*deltastore.MemoryLog{}

	return nil
}

type Store struct {
	mu          sync.RWMutex
	registries  map[string]datastore.Registry
	credentials map[string]datastore.Credential
}

func NewStore() *Store {
	return &Store{
		registries:  map[string]datastore.Registry{},
		credentials: map[string]datastore.Credential{},
	}
}

func (r *Store) InsertRegistry(reg *datastore.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.registries[reg.ID]; ok {
		return errors.Errorf("registry %s already exists", reg.ID)
	}

	r.registries[reg.ID] = *reg
	return nil
}

func (r *Store) GetRegistry(id string) (*datastore.Registry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.registries[id]
	if !ok {
		return nil, errors.Wrapf(revocation.ErrItemNotFound, "registry %s", id)
	}

	return &reg, nil
}

func (r *Store) UpdateRegistry(reg *datastore.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.registries[reg.ID]; !ok {
		return errors.Wrapf(revocation.ErrItemNotFound, "registry %s", reg.ID)
	}

	r.registries[reg.ID] = *reg
	return nil
}

func (r *Store) ListRegistries(c *datastore.RegistryCriteria) (*datastore.RegistryList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c == nil {
		c = &datastore.RegistryCriteria{PageSize: 10}
	}

	var all []*datastore.Registry
	for _, reg := range r.registries {
		if c.CredDefID != "" && !strings.Contains(reg.Definition.CredDefID, c.CredDefID) {
			continue
		}
		reg := reg
		all = append(all, &reg)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})

	out := &datastore.RegistryList{
		Count:      len(all),
		Registries: []*datastore.Registry{},
	}

	for i := c.Start; i < len(all) && (c.PageSize == 0 || i < c.Start+c.PageSize); i++ {
		out.Registries = append(out.Registries, all[i])
	}

	return out, nil
}

func (r *Store) InsertCredential(cred *datastore.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.credentials[cred.ID]; ok {
		return errors.Errorf("credential %s already exists", cred.ID)
	}

	r.credentials[cred.ID] = *cred
	return nil
}

func (r *Store) GetCredential(id string) (*datastore.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.credentials[id]
	if !ok {
		return nil, errors.Wrapf(revocation.ErrItemNotFound, "credential %s", id)
	}

	return &cred, nil
}

func (r *Store) UpdateCredential(cred *datastore.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.credentials[cred.ID]; !ok {
		return errors.Wrapf(revocation.ErrItemNotFound, "credential %s", cred.ID)
	}

	r.credentials[cred.ID] = *cred
	return nil
}

func (r *Store) ListCredentials(revRegID string) ([]*datastore.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*datastore.Credential{}
	for _, cred := range r.credentials {
		if cred.RevRegID == revRegID {
			cred := cred
			out = append(out, &cred)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}
