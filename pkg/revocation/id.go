package revocation

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const registryMarker = "4"

// NewIssuerDID creates an unqualified Indy style DID from 16 random bytes.
func NewIssuerDID(random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}

	seed := make([]byte, 16)
	_, err := io.ReadFull(random, seed)
	if err != nil {
		return "", errors.Wrap(err, "unable to read DID seed")
	}

	return base58.Encode(seed), nil
}

func RegistryID(issuerDID, credDefID, tag string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", issuerDID, registryMarker, credDefID, RegistryType, tag)
}

// SplitRegistryID returns the issuer DID and tag of a registry id.
func SplitRegistryID(id string) (issuerDID, credDefID, tag string, err error) {
	parts := strings.Split(id, ":")
	if len(parts) < 5 || parts[1] != registryMarker || parts[len(parts)-2] != RegistryType {
		return "", "", "", errors.Errorf("malformed revocation registry id %s", id)
	}

	_, err = base58.Decode(parts[0])
	if err != nil {
		return "", "", "", errors.Wrapf(err, "malformed issuer DID in %s", id)
	}

	return parts[0], strings.Join(parts[2:len(parts)-2], ":"), parts[len(parts)-1], nil
}
