package ledger

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/scoir/canis-revreg/pkg/revocation"
)

const (
	REVOC_REG_DEF       = "113"
	REVOC_REG_ENTRY     = "114"
	GET_REVOC_REG_DEF   = "115"
	GET_REVOC_REG       = "116"
	GET_REVOC_REG_DELTA = "117"

	protocolVersion = 2
)

type Operation struct {
	Type string `json:"type"`
}

type Request struct {
	Operation       interface{} `json:"operation"`
	Identifier      string      `json:"identifier,omitempty"`
	ProtocolVersion int         `json:"protocolVersion"`
	ReqID           uint32      `json:"reqId"`
}

// rawRequest is a Request as received, operation still undecoded.
type rawRequest struct {
	Operation       json.RawMessage `json:"operation"`
	Identifier      string          `json:"identifier,omitempty"`
	ProtocolVersion int             `json:"protocolVersion"`
	ReqID           uint32          `json:"reqId"`
}

type RevocRegDef struct {
	Operation    `json:",inline"`
	ID           string           `json:"id"`
	RevocDefType string           `json:"revocDefType"`
	Tag          string           `json:"tag"`
	CredDefID    string           `json:"credDefId"`
	Value        RevocRegDefValue `json:"value"`
}

type RevocRegDefValue struct {
	IssuanceType revocation.IssuanceType `json:"issuanceType"`
	MaxCredNum   int                     `json:"maxCredNum"`
	PublicKeys   revocation.PublicKeys   `json:"publicKeys"`
}

func (r *RevocRegDef) Definition() *revocation.RegistryDefinition {
	return &revocation.RegistryDefinition{
		ID:           r.ID,
		Type:         r.RevocDefType,
		Tag:          r.Tag,
		CredDefID:    r.CredDefID,
		MaxCredNum:   r.Value.MaxCredNum,
		IssuanceType: r.Value.IssuanceType,
		PublicKeys:   r.Value.PublicKeys,
	}
}

// RevocRegEntry publishes one delta. Timestamp is the issuer's transaction time.
type RevocRegEntry struct {
	Operation     `json:",inline"`
	RevocRegDefID string            `json:"revocRegDefId"`
	RevocDefType  string            `json:"revocDefType"`
	Value         *revocation.Delta `json:"value"`
}

type GetRevocRegDef struct {
	Operation `json:",inline"`
	ID        string `json:"id"`
}

type GetRevocReg struct {
	Operation     `json:",inline"`
	RevocRegDefID string `json:"revocRegDefId"`
	Timestamp     int64  `json:"timestamp"`
}

type GetRevocRegDelta struct {
	Operation     `json:",inline"`
	RevocRegDefID string `json:"revocRegDefId"`
	From          *int64 `json:"from,omitempty"`
	To            int64  `json:"to"`
}

func newRequest(from string, op interface{}) *Request {
	return &Request{
		Operation:       op,
		Identifier:      from,
		ProtocolVersion: protocolVersion,
		ReqID:           uuid.New().ID(),
	}
}

func NewRevocRegDef(from string, def *revocation.RegistryDefinition) *Request {
	return newRequest(from, RevocRegDef{
		Operation:    Operation{Type: REVOC_REG_DEF},
		ID:           def.ID,
		RevocDefType: def.Type,
		Tag:          def.Tag,
		CredDefID:    def.CredDefID,
		Value: RevocRegDefValue{
			IssuanceType: def.IssuanceType,
			MaxCredNum:   def.MaxCredNum,
			PublicKeys:   def.PublicKeys,
		},
	})
}

func NewRevocRegEntry(from string, d *revocation.Delta) *Request {
	return newRequest(from, RevocRegEntry{
		Operation:     Operation{Type: REVOC_REG_ENTRY},
		RevocRegDefID: d.RegistryID,
		RevocDefType:  revocation.RegistryType,
		Value:         d,
	})
}

func NewGetRevocRegDef(id string) *Request {
	return newRequest("", GetRevocRegDef{
		Operation: Operation{Type: GET_REVOC_REG_DEF},
		ID:        id,
	})
}

func NewGetRevocReg(id string, timestamp int64) *Request {
	return newRequest("", GetRevocReg{
		Operation:     Operation{Type: GET_REVOC_REG},
		RevocRegDefID: id,
		Timestamp:     timestamp,
	})
}

func NewGetRevocRegDelta(id string, from *int64, to int64) *Request {
	return newRequest("", GetRevocRegDelta{
		Operation:     Operation{Type: GET_REVOC_REG_DELTA},
		RevocRegDefID: id,
		From:          from,
		To:            to,
	})
}
