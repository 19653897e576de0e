/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prover

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
)

// Wallet resolves held credentials by id.
type Wallet interface {
	Get(id string) (*datastore.Credential, error)
}

// Prover assembles proof bundles from credentials held in a wallet.
type Prover struct {
	wallet Wallet
}

func New(w Wallet) *Prover {
	return &Prover{wallet: w}
}

type subProof struct {
	rec       *datastore.Credential
	timestamp *int64
	proof     *schema.SubProof
}

type subProofs struct {
	wallet Wallet
	index  map[string]int32
	list   []*subProof
}

func (r *subProofs) get(credID string, timestamp *int64) (int32, *subProof, error) {
	key := credID
	if timestamp != nil {
		key += "::" + strconv.FormatInt(*timestamp, 10)
	}

	if idx, ok := r.index[key]; ok {
		return idx, r.list[idx], nil
	}

	rec, err := r.wallet.Get(credID)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "unable to load credential %s", credID)
	}

	sp := &subProof{
		rec:       rec,
		timestamp: timestamp,
		proof: &schema.SubProof{
			Primary: &schema.PrimaryProof{
				EqProof: schema.PrimaryEqualProof{RevealedAttrs: map[string]string{}},
				NeProof: []*schema.PrimaryPredicateInequalityProof{},
			},
		},
	}

	idx := int32(len(r.list))
	r.index[key] = idx
	r.list = append(r.list, sp)

	return idx, sp, nil
}

// CreateProof answers a proof request with the credentials selected in
// requested. A credential referenced with a timestamp proves non-revocation
// at that timestamp using the witness cached in the wallet.
func (r *Prover) CreateProof(req *schema.IndyProofRequest, requested *schema.IndyRequestedCredentials) (*schema.IndyProof, error) {
	if req == nil || requested == nil {
		return nil, errors.New("proof request and requested credentials are required")
	}

	sps := &subProofs{wallet: r.wallet, index: map[string]int32{}}
	rp := &schema.IndyRequestedProof{
		RevealedAttrs:      map[string]*schema.RevealedAttributeInfo{},
		RevealedAttrGroups: map[string]*schema.RevealedAttributeGroupInfo{},
		SelfAttestedAttrs:  map[string]string{},
		UnrevealedAttrs:    map[string]*schema.SubProofReferent{},
		Predicates:         map[string]*schema.SubProofReferent{},
	}

	for referent, v := range requested.SelfAttestedAttrs {
		if _, ok := req.RequestedAttributes[referent]; !ok {
			return nil, errors.Errorf("self attested attribute %s was not requested", referent)
		}
		rp.SelfAttestedAttrs[referent] = v
	}

	for _, referent := range sortedKeys(requested.RequestedAttributes) {
		ra := requested.RequestedAttributes[referent]
		attr, ok := req.RequestedAttributes[referent]
		if !ok {
			return nil, errors.Errorf("attribute %s was not requested", referent)
		}

		idx, sp, err := sps.get(ra.CredID, ra.Timestamp)
		if err != nil {
			return nil, err
		}

		if !ra.Revealed {
			rp.UnrevealedAttrs[referent] = &schema.SubProofReferent{SubProofIndex: idx}
			continue
		}

		if attr.Name != "" {
			v, err := sp.value(attr.Name)
			if err != nil {
				return nil, err
			}
			rp.RevealedAttrs[referent] = &schema.RevealedAttributeInfo{SubProofIndex: idx, Raw: v.Raw, Encoded: v.Encoded}
			continue
		}

		group := &schema.RevealedAttributeGroupInfo{SubProofIndex: idx, Values: map[string]*schema.IndyAttributeValue{}}
		for _, name := range attr.Names {
			v, err := sp.value(name)
			if err != nil {
				return nil, err
			}
			group.Values[name] = v
		}
		rp.RevealedAttrGroups[referent] = group
	}

	for _, referent := range sortedPredicateKeys(requested.RequestedPredicates) {
		key := requested.RequestedPredicates[referent]
		pred, ok := req.RequestedPredicates[referent]
		if !ok {
			return nil, errors.Errorf("predicate %s was not requested", referent)
		}

		idx, sp, err := sps.get(key.CredID, key.Timestamp)
		if err != nil {
			return nil, err
		}

		err = sp.predicate(pred)
		if err != nil {
			return nil, err
		}
		rp.Predicates[referent] = &schema.SubProofReferent{SubProofIndex: idx}
	}

	proof := &schema.IndyProof{RequestedProof: rp, Identifiers: []*schema.Identifier{}}
	crypto := &schema.CryptoProof{
		Proofs:     []*schema.SubProof{},
		Aggregated: &schema.AggregatedProof{CHash: schema.Challenge(req.Nonce), CList: [][]uint8{}},
	}

	for _, sp := range sps.list {
		cred := sp.rec.Credential
		ident := &schema.Identifier{SchemaID: cred.SchemaID, CredDefID: cred.CredDefID}

		if sp.timestamp != nil && sp.rec.RevRegID != "" {
			nrp, err := sp.nonRevocation()
			if err != nil {
				return nil, err
			}
			ident.RevRegID = sp.rec.RevRegID
			ident.Timestamp = sp.timestamp
			sp.proof.NonRevocProof = nrp
		}

		proof.Identifiers = append(proof.Identifiers, ident)
		crypto.Proofs = append(crypto.Proofs, sp.proof)
	}

	var err error
	proof.Proof, err = json.Marshal(crypto)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode crypto proof")
	}

	return proof, nil
}

func (r *subProof) value(name string) (*schema.IndyAttributeValue, error) {
	v, ok := r.rec.Credential.Values.Get(name)
	if !ok {
		return nil, errors.Errorf("credential %s has no attribute %s", r.rec.ID, name)
	}

	r.proof.Primary.EqProof.RevealedAttrs[schema.AttrCommonView(name)] = v.Encoded
	return &schema.IndyAttributeValue{Raw: v.Raw, Encoded: v.Encoded}, nil
}

func (r *subProof) predicate(pred *schema.IndyProofRequestPredicate) error {
	v, ok := r.rec.Credential.Values.Get(pred.Name)
	if !ok {
		return errors.Errorf("credential %s has no attribute %s", r.rec.ID, pred.Name)
	}

	val, err := strconv.ParseInt(v.Encoded, 10, 32)
	if err != nil {
		return errors.Errorf("attribute %s is not an integer", pred.Name)
	}

	ok, err = Satisfies(int32(val), pred.PType, pred.PValue)
	if err != nil {
		return err
	}

	if !ok {
		return errors.Errorf("attribute %s does not satisfy %s %d", pred.Name, pred.PType, pred.PValue)
	}

	r.proof.Primary.NeProof = append(r.proof.Primary.NeProof, &schema.PrimaryPredicateInequalityProof{
		Predicate: *pred,
	})

	return nil
}

func (r *subProof) nonRevocation() (*schema.NonRevocProof, error) {
	if r.rec.Revoked {
		return nil, errors.Wrapf(revocation.ErrIndexNotIssued, "credential %s is revoked", r.rec.ID)
	}

	state := r.rec.State
	if state == nil {
		return nil, errors.Errorf("credential %s has no revocation state", r.rec.ID)
	}

	if state.Timestamp != *r.timestamp {
		return nil, errors.Wrapf(revocation.ErrStaleBase, "credential %s has a witness at %d, not %d", r.rec.ID, state.Timestamp, *r.timestamp)
	}

	return &schema.NonRevocProof{
		Accumulator: string(state.Accumulator),
		Witness:     state.Witness,
		RevIdx:      state.Index,
	}, nil
}

// Satisfies evaluates an Indy predicate.
func Satisfies(v int32, ptype string, pvalue int32) (bool, error) {
	switch ptype {
	case ">=":
		return v >= pvalue, nil
	case ">":
		return v > pvalue, nil
	case "<=":
		return v <= pvalue, nil
	case "<":
		return v < pvalue, nil
	}

	return false, errors.Errorf("unsupported predicate type %s", ptype)
}

func sortedKeys(m map[string]*schema.IndyRequestedAttribute) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedPredicateKeys(m map[string]schema.ProvingCredentialKey) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
