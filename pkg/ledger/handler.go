package ledger

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/deltastore"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

// Handler is the node side of the ledger: it answers revocation requests
// from a datastore holding definitions and a delta log.
type Handler struct {
	store  datastore.Store
	log    deltastore.Log
	deltas *deltastore.Store
}

func NewHandler(store datastore.Store, dl deltastore.Log) *Handler {
	return &Handler{
		store:  store,
		log:    dl,
		deltas: deltastore.New(dl),
	}
}

func (r *Handler) Handle(d []byte) *Reply {
	req := &rawRequest{}
	err := json.Unmarshal(d, req)
	if err != nil {
		return reject(nil, errors.Wrap(err, "malformed request"))
	}

	op := Operation{}
	err = json.Unmarshal(req.Operation, &op)
	if err != nil {
		return reject(req, errors.Wrap(err, "malformed operation"))
	}

	var data interface{}
	var txnTime int64

	switch op.Type {
	case REVOC_REG_DEF:
		err = r.revocRegDef(req)
	case REVOC_REG_ENTRY:
		txnTime, err = r.revocRegEntry(req)
	case GET_REVOC_REG_DEF:
		data, err = r.getRevocRegDef(req)
	case GET_REVOC_REG:
		data, err = r.getRevocReg(req)
	case GET_REVOC_REG_DELTA:
		data, err = r.getRevocRegDelta(req)
	default:
		err = errors.Errorf("unsupported operation type %s", op.Type)
	}

	if err != nil {
		log.WithError(err).WithField("type", op.Type).Debug("ledger request rejected")
		return reject(req, err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return reject(req, errors.Wrap(err, "unable to encode reply"))
	}

	return &Reply{
		Op: OpReply,
		Result: &Result{
			Type:       op.Type,
			ReqID:      req.ReqID,
			Identifier: req.Identifier,
			Data:       raw,
			TxnTime:    txnTime,
		},
	}
}

func authorize(identifier, registryID string) error {
	did, _, _, err := revocation.SplitRegistryID(registryID)
	if err != nil {
		return err
	}

	if identifier != did {
		return errors.Errorf("%s may not write to registry %s", identifier, registryID)
	}

	return nil
}

func (r *Handler) revocRegDef(req *rawRequest) error {
	op := &RevocRegDef{}
	err := json.Unmarshal(req.Operation, op)
	if err != nil {
		return errors.Wrap(err, "malformed registry definition")
	}

	err = authorize(req.Identifier, op.ID)
	if err != nil {
		return err
	}

	def := op.Definition()
	if def.MaxCredNum <= 0 {
		return errors.Wrapf(revocation.ErrCapacityInvalid, "max_cred_num %d", def.MaxCredNum)
	}

	_, err = r.store.GetRegistry(def.ID)
	if err == nil {
		return errors.Errorf("registry %s already defined", def.ID)
	}

	return r.store.InsertRegistry(&datastore.Registry{ID: def.ID, Definition: def})
}

func (r *Handler) revocRegEntry(req *rawRequest) (int64, error) {
	op := &RevocRegEntry{}
	err := json.Unmarshal(req.Operation, op)
	if err != nil {
		return 0, errors.Wrap(err, "malformed registry entry")
	}

	if op.Value == nil || op.Value.RegistryID != op.RevocRegDefID {
		return 0, errors.Errorf("entry value does not belong to %s", op.RevocRegDefID)
	}

	err = authorize(req.Identifier, op.RevocRegDefID)
	if err != nil {
		return 0, err
	}

	reg, err := r.store.GetRegistry(op.RevocRegDefID)
	if err != nil {
		return 0, err
	}

	for _, idx := range append(append([]uint32{}, op.Value.Issued...), op.Value.Revoked...) {
		if !reg.Definition.InRange(idx) {
			return 0, errors.Wrapf(revocation.ErrInvalidIndex, "index %d outside [0, %d)", idx, reg.Definition.MaxCredNum)
		}
	}

	last, err := r.log.Last(op.RevocRegDefID, math.MaxInt64)
	if err != nil {
		return 0, err
	}

	if last != nil && last.Accumulator != op.Value.PrevAccumulator {
		return 0, errors.Wrapf(revocation.ErrDeltaOrderMismatch, "entry at %d does not follow the entry at %d", op.Value.Timestamp, last.Timestamp)
	}

	err = r.deltas.Append(op.Value)
	if err != nil {
		return 0, err
	}

	return op.Value.Timestamp, nil
}

func (r *Handler) getRevocRegDef(req *rawRequest) (interface{}, error) {
	op := &GetRevocRegDef{}
	err := json.Unmarshal(req.Operation, op)
	if err != nil {
		return nil, errors.Wrap(err, "malformed request")
	}

	reg, err := r.store.GetRegistry(op.ID)
	if errors.Is(err, revocation.ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return reg.Definition, nil
}

func (r *Handler) getRevocReg(req *rawRequest) (interface{}, error) {
	op := &GetRevocReg{}
	err := json.Unmarshal(req.Operation, op)
	if err != nil {
		return nil, errors.Wrap(err, "malformed request")
	}

	last, err := r.log.Last(op.RevocRegDefID, op.Timestamp)
	if err != nil || last == nil {
		return nil, err
	}

	return &RevocReg{
		RevocRegDefID: op.RevocRegDefID,
		Accumulator:   last.Accumulator,
		Timestamp:     last.Timestamp,
	}, nil
}

func (r *Handler) getRevocRegDelta(req *rawRequest) (interface{}, error) {
	op := &GetRevocRegDelta{}
	err := json.Unmarshal(req.Operation, op)
	if err != nil {
		return nil, errors.Wrap(err, "malformed request")
	}

	d, err := r.deltas.DeltaBetween(op.RevocRegDefID, op.From, op.To)
	if errors.Is(err, revocation.ErrNoDataInRange) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return d, nil
}
