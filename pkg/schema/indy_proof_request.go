/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

type IndyProofRequest struct {
	Name                string                                `json:"name"`
	Version             string                                `json:"version"`
	Nonce               string                                `json:"nonce"`
	RequestedAttributes map[string]*IndyProofRequestAttr      `json:"requested_attributes"`
	RequestedPredicates map[string]*IndyProofRequestPredicate `json:"requested_predicates"`
	NonRevoked          *NonRevokedInterval                   `json:"non_revoked,omitempty"`
}

type IndyProofRequestAttr struct {
	Name         string              `json:"name,omitempty"`
	Names        []string            `json:"names,omitempty"`
	Restrictions interface{}         `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

type IndyProofRequestPredicate struct {
	Name         string              `json:"name"`
	PType        string              `json:"p_type"`
	PValue       int32               `json:"p_value"`
	Restrictions interface{}         `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// NonRevokedInterval bounds the timestamps a verifier accepts for
// non-revocation. A missing From means "since genesis".
type NonRevokedInterval struct {
	From *int64 `json:"from,omitempty"`
	To   *int64 `json:"to,omitempty"`
}

// Contains reports whether ts falls inside [From, To].
func (r *NonRevokedInterval) Contains(ts int64) bool {
	if r.From != nil && ts < *r.From {
		return false
	}

	if r.To != nil && ts > *r.To {
		return false
	}

	return true
}

// Effective picks the attribute level interval over the request level one.
func Effective(global, local *NonRevokedInterval) *NonRevokedInterval {
	if local != nil {
		return local
	}

	return global
}
