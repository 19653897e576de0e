package wallet

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
)

// Wallet holds credentials by opaque id together with the witness last
// built for each of them.
type Wallet struct {
	store datastore.Store
}

func New(store datastore.Store) *Wallet {
	return &Wallet{store: store}
}

// Save stores a credential and returns its id.
func (r *Wallet) Save(cred *schema.IndyCredential) (string, error) {
	if cred == nil {
		return "", errors.New("credential is required")
	}

	rec := &datastore.Credential{
		ID:         uuid.New().String(),
		Credential: cred,
	}

	if cred.RevRegID != "" {
		if cred.CredRevID == nil {
			return "", errors.Errorf("credential in registry %s has no revocation index", cred.RevRegID)
		}
		rec.RevRegID = cred.RevRegID
		rec.RevIdx = *cred.CredRevID
	}

	err := r.store.InsertCredential(rec)
	if err != nil {
		return "", errors.Wrap(err, "unable to save credential")
	}

	return rec.ID, nil
}

func (r *Wallet) Get(id string) (*datastore.Credential, error) {
	rec, err := r.store.GetCredential(id)
	if err != nil {
		return nil, errors.Wrapf(err, "credential %s", id)
	}

	return rec, nil
}

// Binding resolves the registry and index a credential was issued into.
func (r *Wallet) Binding(id string) (string, uint32, error) {
	rec, err := r.Get(id)
	if err != nil {
		return "", 0, err
	}

	if rec.RevRegID == "" {
		return "", 0, errors.Errorf("credential %s is not revocable", id)
	}

	return rec.RevRegID, rec.RevIdx, nil
}

// UpdateState replaces the cached witness of a credential.
func (r *Wallet) UpdateState(id string, state *revocation.RevocationState) error {
	rec, err := r.Get(id)
	if err != nil {
		return err
	}

	if state.RegistryID != rec.RevRegID || state.Index != rec.RevIdx {
		return errors.Errorf("state for %s/%d does not belong to credential %s", state.RegistryID, state.Index, id)
	}

	rec.State = state
	return errors.Wrap(r.store.UpdateCredential(rec), "unable to update revocation state")
}

// MarkRevoked drops the witness of a credential that was revoked.
func (r *Wallet) MarkRevoked(id string) error {
	rec, err := r.Get(id)
	if err != nil {
		return err
	}

	rec.Revoked = true
	rec.State = nil
	return errors.Wrap(r.store.UpdateCredential(rec), "unable to mark credential revoked")
}

func (r *Wallet) ListByRegistry(revRegID string) ([]*datastore.Credential, error) {
	creds, err := r.store.ListCredentials(revRegID)
	return creds, errors.Wrapf(err, "unable to list credentials of %s", revRegID)
}
