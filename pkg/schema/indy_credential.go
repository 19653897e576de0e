package schema

import (
	"encoding/json"
)

type IndyCredential struct {
	SchemaID                  string               `json:"schema_id"`
	CredDefID                 string               `json:"cred_def_id"`
	RevRegID                  string               `json:"rev_reg_id,omitempty"`
	CredRevID                 *uint32              `json:"cred_rev_id,omitempty"`
	Signature                 json.RawMessage      `json:"signature,omitempty"`
	SignatureCorrectnessProof json.RawMessage      `json:"signature_correctness_proof,omitempty"`
	Values                    IndyCredentialValues `json:"values"`
}

type IndyCredentialValues map[string]*IndyAttributeValue

// Schema is the ledger schema a credential definition is built on.
type Schema struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	AttrNames []string `json:"attrNames"`
}

type CredentialDefinition struct {
	ID       string `json:"id"`
	SchemaID string `json:"schemaId"`
	Type     string `json:"type"`
	Tag      string `json:"tag"`
	// SupportsRevocation is set when the definition carries revocation keys.
	SupportsRevocation bool `json:"supportsRevocation"`
}
