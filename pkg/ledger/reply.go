package ledger

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/revocation"
)

const (
	OpReply  = "REPLY"
	OpReject = "REJECT"
)

type Reply struct {
	Op     string  `json:"op"`
	Reason string  `json:"reason,omitempty"`
	Kind   string  `json:"kind,omitempty"`
	Result *Result `json:"result,omitempty"`
}

type Result struct {
	Type       string          `json:"type"`
	ReqID      uint32          `json:"reqId"`
	Identifier string          `json:"identifier,omitempty"`
	Data       json.RawMessage `json:"data"`
	TxnTime    int64           `json:"txnTime,omitempty"`
}

// RevocReg is the accumulator of a registry as of a timestamp.
type RevocReg struct {
	RevocRegDefID string                 `json:"revocRegDefId"`
	Accumulator   revocation.Accumulator `json:"accum"`
	Timestamp     int64                  `json:"timestamp"`
}

var kindErrors = map[string]error{
	revocation.ErrNonMonotonicTimestamp.Error(): revocation.ErrNonMonotonicTimestamp,
	revocation.ErrDeltaOrderMismatch.Error():    revocation.ErrDeltaOrderMismatch,
	revocation.ErrItemNotFound.Error():          revocation.ErrItemNotFound,
	revocation.ErrNoDataInRange.Error():         revocation.ErrNoDataInRange,
}

func reject(req *rawRequest, err error) *Reply {
	kind := ""
	for k, sentinel := range kindErrors {
		if errors.Is(err, sentinel) {
			kind = k
			break
		}
	}

	rply := &Reply{Op: OpReject, Reason: err.Error(), Kind: kind}
	if req != nil {
		rply.Result = &Result{ReqID: req.ReqID, Identifier: req.Identifier}
	}

	return rply
}

// Err turns a rejected reply back into an error, restoring the sentinel the
// node reported.
func (r *Reply) Err() error {
	if r.Op == OpReply {
		return nil
	}

	if sentinel, ok := kindErrors[r.Kind]; ok {
		return errors.Wrap(sentinel, r.Reason)
	}

	return errors.Errorf("ledger rejected request: %s", r.Reason)
}

// Decode unmarshals the result data into v. It reports false when the
// ledger holds no data for the request.
func (r *Reply) Decode(v interface{}) (bool, error) {
	if err := r.Err(); err != nil {
		return false, err
	}

	if r.Result == nil || len(r.Result.Data) == 0 || string(r.Result.Data) == "null" {
		return false, nil
	}

	err := json.Unmarshal(r.Result.Data, v)
	if err != nil {
		return false, errors.Wrap(err, "invalid reply data from ledger")
	}

	return true, nil
}
