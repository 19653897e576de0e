package ledger

import (
	"math"

	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/revocation"
)

//go:generate mockery -name=Submitter
type Submitter interface {
	Submit(req *Request) (*Reply, error)
}

// Client reads and writes revocation registries on the ledger. It is also
// a delta log, so a deltastore.Store can sit on top of the ledger.
type Client struct {
	submitter Submitter
	did       string
}

func NewClient(submitter Submitter, did string) *Client {
	return &Client{submitter: submitter, did: did}
}

func (r *Client) submit(req *Request) (*Reply, error) {
	rply, err := r.submitter.Submit(req)
	if err != nil {
		return nil, errors.Wrap(err, "unable to submit ledger request")
	}

	return rply, nil
}

func (r *Client) CreateRevocRegDef(def *revocation.RegistryDefinition) error {
	rply, err := r.submit(NewRevocRegDef(r.did, def))
	if err != nil {
		return err
	}

	return errors.Wrapf(rply.Err(), "unable to create registry %s", def.ID)
}

func (r *Client) AppendEntry(d *revocation.Delta) error {
	rply, err := r.submit(NewRevocRegEntry(r.did, d))
	if err != nil {
		return err
	}

	return errors.Wrapf(rply.Err(), "unable to publish delta of %s at %d", d.RegistryID, d.Timestamp)
}

func (r *Client) GetRevocRegDef(id string) (*revocation.RegistryDefinition, error) {
	rply, err := r.submit(NewGetRevocRegDef(id))
	if err != nil {
		return nil, err
	}

	def := &revocation.RegistryDefinition{}
	ok, err := rply.Decode(def)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, errors.Wrapf(revocation.ErrItemNotFound, "registry definition %s", id)
	}

	return def, nil
}

// GetRevocReg returns the accumulator that held at timestamp, or nil when the
// registry has no entry at or before it.
func (r *Client) GetRevocReg(id string, timestamp int64) (*RevocReg, error) {
	rply, err := r.submit(NewGetRevocReg(id, timestamp))
	if err != nil {
		return nil, err
	}

	reg := &RevocReg{}
	ok, err := rply.Decode(reg)
	if err != nil || !ok {
		return nil, err
	}

	return reg, nil
}

func (r *Client) GetRevocRegDelta(id string, from *int64, to int64) (*revocation.Delta, error) {
	rply, err := r.submit(NewGetRevocRegDelta(id, from, to))
	if err != nil {
		return nil, err
	}

	d := &revocation.Delta{}
	ok, err := rply.Decode(d)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, errors.Wrapf(revocation.ErrNoDataInRange, "registry %s up to %d", id, to)
	}

	return d, nil
}

func (r *Client) Put(d *revocation.Delta) error {
	return r.AppendEntry(d)
}

// Range asks the ledger for the composed delta of the range, returned as a
// chain of one.
func (r *Client) Range(registryID string, from, to int64) ([]*revocation.Delta, error) {
	var f *int64
	if from != math.MinInt64 {
		f = &from
	}

	d, err := r.GetRevocRegDelta(registryID, f, to)
	if errors.Is(err, revocation.ErrNoDataInRange) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if d.Timestamp <= from {
		return nil, nil
	}

	return []*revocation.Delta{d}, nil
}

func (r *Client) Last(registryID string, at int64) (*revocation.Delta, error) {
	reg, err := r.GetRevocReg(registryID, at)
	if err != nil || reg == nil {
		return nil, err
	}

	return &revocation.Delta{
		RegistryID:      registryID,
		PrevAccumulator: reg.Accumulator,
		Accumulator:     reg.Accumulator,
		Issued:          []uint32{},
		Revoked:         []uint32{},
		Timestamp:       reg.Timestamp,
	}, nil
}
