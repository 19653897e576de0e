package verifier

import (
	"math/big"
	"reflect"

	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
)

// checkStructure rejects null entries in a decoded request or proof.
func checkStructure(request *schema.IndyProofRequest, proof *schema.IndyProof, cryptoProof *schema.CryptoProof) error {
	for k, v := range request.RequestedAttributes {
		if v == nil {
			return errors.Errorf("requested attribute %s is null", k)
		}
	}

	for k, v := range request.RequestedPredicates {
		if v == nil {
			return errors.Errorf("requested predicate %s is null", k)
		}
	}

	for i, ident := range proof.Identifiers {
		if ident == nil {
			return errors.Errorf("identifier %d is null", i)
		}
	}

	for i, sub := range cryptoProof.Proofs {
		if sub == nil {
			return errors.Errorf("sub proof %d is null", i)
		}

		if sub.Primary == nil {
			continue
		}

		for _, ne := range sub.Primary.NeProof {
			if ne == nil {
				return errors.Errorf("sub proof %d has a null predicate proof", i)
			}
		}
	}

	rp := proof.RequestedProof
	for k, v := range rp.RevealedAttrs {
		if v == nil {
			return errors.Errorf("revealed attribute %s is null", k)
		}
	}

	for k, v := range rp.RevealedAttrGroups {
		if v == nil {
			return errors.Errorf("revealed attribute group %s is null", k)
		}

		for name, val := range v.Values {
			if val == nil {
				return errors.Errorf("value %s of revealed attribute group %s is null", name, k)
			}
		}
	}

	for k, v := range rp.UnrevealedAttrs {
		if v == nil {
			return errors.Errorf("unrevealed attribute %s is null", k)
		}
	}

	for k, v := range rp.Predicates {
		if v == nil {
			return errors.Errorf("predicate %s is null", k)
		}
	}

	return nil
}

func compareAttrFromProofAndRequest(proofReq *schema.IndyProofRequest, receivedRevealedAttrs map[string]*schema.Identifier,
	receivedUnrevealedAttrs map[string]*schema.Identifier, receivedSelfAttestedAttrs []string, receivedPredicates map[string]*schema.Identifier) error {

	empty := struct{}{}
	requestedAttrs := map[string]struct{}{}
	for k := range proofReq.RequestedAttributes {
		requestedAttrs[k] = empty
	}

	receivedAttrs := map[string]struct{}{}
	for k := range receivedRevealedAttrs {
		receivedAttrs[k] = empty
	}

	for k := range receivedUnrevealedAttrs {
		receivedAttrs[k] = empty
	}

	for _, k := range receivedSelfAttestedAttrs {
		receivedAttrs[k] = empty
	}

	if !reflect.DeepEqual(requestedAttrs, receivedAttrs) {
		return errors.Errorf("requested attributes [%v] do not correspond with received [%v]", requestedAttrs, receivedAttrs)
	}

	requestedPreds := map[string]struct{}{}
	for k := range proofReq.RequestedPredicates {
		requestedPreds[k] = empty
	}

	receivedPreds := map[string]struct{}{}
	for k := range receivedPredicates {
		receivedPreds[k] = empty
	}

	if !reflect.DeepEqual(requestedPreds, receivedPreds) {
		return errors.Errorf("requested predicates [%v] do not correspond to received [%v]", requestedPreds, receivedPreds)
	}

	return nil
}

func verifyRevealedAttributeValues(proofRequest *schema.IndyProofRequest, requestedProof *schema.IndyRequestedProof, cryptoProof *schema.CryptoProof) error {

	for attrReferent, info := range requestedProof.RevealedAttrs {
		requestAttr, ok := proofRequest.RequestedAttributes[attrReferent]
		if !ok {
			return errors.Errorf("attribute with referent %s not found in ProofRequests", attrReferent)
		}

		err := verifyRevealedAttrValue(requestAttr.Name, cryptoProof, info)
		if err != nil {
			return err
		}
	}

	for attrReferent, infos := range requestedProof.RevealedAttrGroups {
		requestAttr, ok := proofRequest.RequestedAttributes[attrReferent]
		if !ok {
			return errors.Errorf("attribute with referent %s not found in ProofRequests", attrReferent)
		}

		if len(infos.Values) != len(requestAttr.Names) {
			return errors.Errorf("proof revealed attr group does not match proof request attribute group, referent: %s", attrReferent)
		}

		for _, attrName := range requestAttr.Names {
			attrInfo, ok := infos.Values[attrName]
			if !ok {
				return errors.Errorf("attribute %s of referent %s not found in proof", attrName, attrReferent)
			}

			err := verifyRevealedAttrValue(attrName, cryptoProof, &schema.RevealedAttributeInfo{
				SubProofIndex: infos.SubProofIndex,
				Raw:           attrInfo.Raw,
				Encoded:       attrInfo.Encoded,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyRevealedAttrValue(attrName string, cryptoProof *schema.CryptoProof, info *schema.RevealedAttributeInfo) error {
	revealedAttrEnc := info.Encoded
	subProofIdx := int(info.SubProofIndex)

	if subProofIdx < 0 || subProofIdx >= len(cryptoProof.Proofs) {
		return errors.Errorf("crypto proof not found by index %d", subProofIdx)
	}

	attrs := cryptoProof.Proofs[subProofIdx].RevealedAttrs()

	var cryptoProofEnc string
	for k, v := range attrs {
		if schema.AttrCommonView(k) == schema.AttrCommonView(attrName) {
			cryptoProofEnc = v
			break
		}
	}

	if cryptoProofEnc == "" {
		return errors.Errorf("attribute with name \"%s\" not found in crypto proof", attrName)
	}

	i, ok := new(big.Int).SetString(revealedAttrEnc, 10)
	if !ok {
		return errors.Errorf("encoded value for \"%s\" is not a number", attrName)
	}

	j, ok := new(big.Int).SetString(cryptoProofEnc, 10)
	if !ok || i.Cmp(j) != 0 {
		return errors.Errorf("encoded values for \"%s\" are different in requested proof \"%s\" and crypto proof \"%s\"", attrName, revealedAttrEnc, cryptoProofEnc)
	}

	return nil
}

func verifyPredicates(proofReq *schema.IndyProofRequest, requestedProof *schema.IndyRequestedProof, cryptoProof *schema.CryptoProof) error {
	for referent, ref := range requestedProof.Predicates {
		pred := proofReq.RequestedPredicates[referent]

		idx := int(ref.SubProofIndex)
		if idx < 0 || idx >= len(cryptoProof.Proofs) {
			return errors.Errorf("crypto proof not found by index %d", idx)
		}

		sub := cryptoProof.Proofs[idx]
		if sub.Primary == nil {
			return errors.Errorf("predicate %s has no primary proof", referent)
		}

		found := false
		for _, ne := range sub.Primary.NeProof {
			p := ne.Predicate
			if schema.AttrCommonView(p.Name) == schema.AttrCommonView(pred.Name) && p.PType == pred.PType && p.PValue == pred.PValue {
				found = true
				break
			}
		}

		if !found {
			return errors.Errorf("predicate %s not found in crypto proof", referent)
		}
	}

	return nil
}

func compareTimestampsFromProofAndRequest(proofReq *schema.IndyProofRequest, receivedRevealedAttrs map[string]*schema.Identifier,
	receivedUnrevealedAttrs map[string]*schema.Identifier, receivedSelfAttestedAttrs []string, receivedPredicates map[string]*schema.Identifier) error {

	for referent, info := range proofReq.RequestedAttributes {
		if isSelfAttested(referent, receivedSelfAttestedAttrs) {
			continue
		}

		attrs := receivedRevealedAttrs
		if _, ok := attrs[referent]; !ok {
			attrs = receivedUnrevealedAttrs
		}

		err := validateTimestamp(attrs, referent, proofReq.NonRevoked, info.NonRevoked)
		if err != nil {
			return err
		}
	}

	for referent, predicate := range proofReq.RequestedPredicates {
		err := validateTimestamp(receivedPredicates, referent, proofReq.NonRevoked, predicate.NonRevoked)
		if err != nil {
			return err
		}
	}

	return nil
}

func isSelfAttested(referent string, attrs []string) bool {
	for _, attr := range attrs {
		if attr == referent {
			return true
		}
	}
	return false
}

func validateTimestamp(attrs map[string]*schema.Identifier, referent string, globalInterval, localInterval *schema.NonRevokedInterval) error {
	interval := schema.Effective(globalInterval, localInterval)
	if interval == nil {
		return nil
	}

	ident, ok := attrs[referent]
	if !ok {
		return errors.Errorf("invalid structure, %s not received", referent)
	}

	if ident.Timestamp == nil || ident.RevRegID == "" {
		return errors.Wrapf(revocation.ErrMissingRevocationState, "%s does not prove non-revocation", referent)
	}

	if !interval.Contains(*ident.Timestamp) {
		return errors.Wrapf(revocation.ErrTimestampOutOfRange, "%s proves %d", referent, *ident.Timestamp)
	}

	return nil
}

func receivedRevealedAttrs(proof *schema.IndyProof) (map[string]*schema.Identifier, error) {
	out := map[string]*schema.Identifier{}
	for k, v := range proof.RequestedProof.RevealedAttrs {
		ident, err := getProofIdentifier(proof, int(v.SubProofIndex))
		if err != nil {
			return nil, err
		}
		out[k] = ident
	}

	for k, v := range proof.RequestedProof.RevealedAttrGroups {
		ident, err := getProofIdentifier(proof, int(v.SubProofIndex))
		if err != nil {
			return nil, err
		}
		out[k] = ident
	}

	return out, nil
}

func receivedUnrevealedAttrs(proof *schema.IndyProof) (map[string]*schema.Identifier, error) {
	return referents(proof, proof.RequestedProof.UnrevealedAttrs)
}

func receivedPredicates(proof *schema.IndyProof) (map[string]*schema.Identifier, error) {
	return referents(proof, proof.RequestedProof.Predicates)
}

func referents(proof *schema.IndyProof, refs map[string]*schema.SubProofReferent) (map[string]*schema.Identifier, error) {
	out := map[string]*schema.Identifier{}
	for k, v := range refs {
		ident, err := getProofIdentifier(proof, int(v.SubProofIndex))
		if err != nil {
			return nil, err
		}
		out[k] = ident
	}

	return out, nil
}

func receivedSelfAttestedAttrs(proof *schema.IndyProof) []string {
	out := make([]string, 0, len(proof.RequestedProof.SelfAttestedAttrs))
	for k := range proof.RequestedProof.SelfAttestedAttrs {
		out = append(out, k)
	}

	return out
}

func getProofIdentifier(proof *schema.IndyProof, idx int) (*schema.Identifier, error) {
	if idx < 0 || idx >= len(proof.Identifiers) {
		return nil, errors.Errorf("identifier index %d out of range", idx)
	}
	return proof.Identifiers[idx], nil
}
