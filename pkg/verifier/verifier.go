/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
	"github.com/scoir/canis-revreg/pkg/witness"
)

// Deltas holds, per registry, the delta from genesis that was current at
// each timestamp a proof may claim.
type Deltas map[string]map[int64]*revocation.Delta

// Result is the outcome of a verification. An invalid proof is a normal
// outcome, Reason tells why.
type Result struct {
	Valid  bool
	Reason error
}

func invalid(err error) *Result {
	log.WithError(err).Debug("proof rejected")
	return &Result{Valid: false, Reason: err}
}

// Verify checks a proof bundle against the request it answers and the
// ledger state it claims.
func Verify(request *schema.IndyProofRequest, proof *schema.IndyProof, schemas map[string]*schema.Schema,
	credDefs map[string]*schema.CredentialDefinition, revRegDefs map[string]*revocation.RegistryDefinition,
	revRegDeltas Deltas) *Result {

	if request == nil || proof == nil || proof.RequestedProof == nil {
		return invalid(errors.New("proof request and proof are required"))
	}

	cryptoProof := &schema.CryptoProof{}
	err := json.Unmarshal(proof.Proof, cryptoProof)
	if err != nil {
		return invalid(errors.Wrap(err, "invalid crypto proof"))
	}

	if len(cryptoProof.Proofs) != len(proof.Identifiers) {
		return invalid(errors.Errorf("%d sub proofs for %d identifiers", len(cryptoProof.Proofs), len(proof.Identifiers)))
	}

	err = checkStructure(request, proof, cryptoProof)
	if err != nil {
		return invalid(err)
	}

	if cryptoProof.Aggregated == nil || cryptoProof.Aggregated.CHash != schema.Challenge(request.Nonce) {
		return invalid(errors.New("proof does not answer the request nonce"))
	}

	receivedRevealedAttrs, err := receivedRevealedAttrs(proof)
	if err != nil {
		return invalid(err)
	}

	receivedUnrevealedAttrs, err := receivedUnrevealedAttrs(proof)
	if err != nil {
		return invalid(err)
	}

	receivedPredicates, err := receivedPredicates(proof)
	if err != nil {
		return invalid(err)
	}

	receivedSelfAttestedAttrs := receivedSelfAttestedAttrs(proof)

	err = compareAttrFromProofAndRequest(request, receivedRevealedAttrs, receivedUnrevealedAttrs,
		receivedSelfAttestedAttrs, receivedPredicates)
	if err != nil {
		return invalid(err)
	}

	err = verifyRevealedAttributeValues(request, proof.RequestedProof, cryptoProof)
	if err != nil {
		return invalid(err)
	}

	err = verifyPredicates(request, proof.RequestedProof, cryptoProof)
	if err != nil {
		return invalid(err)
	}

	err = compareTimestampsFromProofAndRequest(request, receivedRevealedAttrs, receivedUnrevealedAttrs,
		receivedSelfAttestedAttrs, receivedPredicates)
	if err != nil {
		return invalid(err)
	}

	for i, ident := range proof.Identifiers {
		err = verifyIdentifier(ident, cryptoProof.Proofs[i], schemas, credDefs, revRegDefs, revRegDeltas)
		if err != nil {
			return invalid(errors.Wrapf(err, "sub proof %d", i))
		}
	}

	return &Result{Valid: true}
}

func verifyIdentifier(ident *schema.Identifier, sub *schema.SubProof, schemas map[string]*schema.Schema,
	credDefs map[string]*schema.CredentialDefinition, revRegDefs map[string]*revocation.RegistryDefinition,
	revRegDeltas Deltas) error {

	if _, ok := schemas[ident.SchemaID]; !ok {
		return errors.Wrapf(revocation.ErrItemNotFound, "schema %s", ident.SchemaID)
	}

	credDef, ok := credDefs[ident.CredDefID]
	if !ok {
		return errors.Wrapf(revocation.ErrItemNotFound, "credential definition %s", ident.CredDefID)
	}

	if ident.RevRegID == "" {
		return nil
	}

	if ident.Timestamp == nil {
		return errors.Errorf("identifier for %s has no timestamp", ident.RevRegID)
	}

	if !credDef.SupportsRevocation {
		return errors.Errorf("credential definition %s does not support revocation", credDef.ID)
	}

	def, ok := revRegDefs[ident.RevRegID]
	if !ok {
		return errors.Wrapf(revocation.ErrItemNotFound, "revocation registry definition %s", ident.RevRegID)
	}

	if def.CredDefID != ident.CredDefID {
		return errors.Errorf("registry %s belongs to %s, not %s", def.ID, def.CredDefID, ident.CredDefID)
	}

	delta, ok := revRegDeltas[ident.RevRegID][*ident.Timestamp]
	if !ok || delta == nil {
		return errors.Wrapf(revocation.ErrMissingRevocationState, "registry %s at %d", ident.RevRegID, *ident.Timestamp)
	}

	nrp := sub.NonRevocProof
	if nrp == nil {
		return errors.Errorf("no non-revocation proof for registry %s", ident.RevRegID)
	}

	if revocation.Accumulator(nrp.Accumulator) != delta.Accumulator {
		return errors.Wrapf(revocation.ErrAccumulatorMismatch, "registry %s at %d", ident.RevRegID, *ident.Timestamp)
	}

	b, err := witness.NewBuilder(def)
	if err != nil {
		return err
	}

	state := &revocation.RevocationState{
		RegistryID:  def.ID,
		Index:       nrp.RevIdx,
		Witness:     nrp.Witness,
		Accumulator: delta.Accumulator,
		Timestamp:   *ident.Timestamp,
	}

	if !def.InRange(nrp.RevIdx) || !b.Verify(state) {
		return errors.Wrapf(revocation.ErrAccumulatorMismatch, "witness of index %d does not match registry %s", nrp.RevIdx, def.ID)
	}

	return nil
}

// DeltaSource is the part of a delta store the verifier reads from.
type DeltaSource interface {
	DeltaBetween(registryID string, from *int64, to int64) (*revocation.Delta, error)
}

// ResolveDeltas looks up, for every timestamp a proof claims, the state of
// the registry at that timestamp. Timestamps with no recorded state are
// left out so verification reports them as missing.
func ResolveDeltas(store DeltaSource, proof *schema.IndyProof) (Deltas, error) {
	out := Deltas{}
	for _, ident := range proof.Identifiers {
		if ident == nil || ident.RevRegID == "" || ident.Timestamp == nil {
			continue
		}

		if _, ok := out[ident.RevRegID][*ident.Timestamp]; ok {
			continue
		}

		d, err := store.DeltaBetween(ident.RevRegID, nil, *ident.Timestamp)
		if errors.Is(err, revocation.ErrNoDataInRange) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve registry %s at %d", ident.RevRegID, *ident.Timestamp)
		}

		if out[ident.RevRegID] == nil {
			out[ident.RevRegID] = map[int64]*revocation.Delta{}
		}
		out[ident.RevRegID][*ident.Timestamp] = d
	}

	return out, nil
}
