package accumulator

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/pkg/errors"
)

const (
	primeBits   = 256
	primeRounds = 20
	cacheBytes  = 32 * 1024 * 1024
)

var primes = fastcache.New(cacheBytes)

// Prime maps a registry index to a 256 bit prime. The mapping is deterministic
// so issuer, prover and verifier agree on it without exchanging it.
func Prime(index uint32) *big.Int {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, index)

	if b, ok := primes.HasGet(nil, key); ok {
		return new(big.Int).SetBytes(b)
	}

	p := hashToPrime(key)
	primes.Set(key, p.Bytes())

	return p
}

func hashToPrime(seed []byte) *big.Int {
	buf := make([]byte, len(seed)+8)
	copy(buf, seed)

	for ctr := uint64(0); ; ctr++ {
		binary.BigEndian.PutUint64(buf[len(seed):], ctr)
		h := sha256.Sum256(append([]byte("canis-revreg-prime"), buf...))

		candidate := new(big.Int).SetBytes(h[:])
		candidate.SetBit(candidate, primeBits-1, 1)
		candidate.SetBit(candidate, 0, 1)

		if candidate.ProbablyPrime(primeRounds) {
			return candidate
		}
	}
}

// Parse decodes a decimal accumulator, witness or key component.
func Parse(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, errors.Errorf("invalid accumulator value %q", s)
	}

	return v, nil
}

func Format(v *big.Int) string {
	return v.Text(10)
}

func ParsePublicKey(n, g string) (*PublicKey, error) {
	nn, err := Parse(n)
	if err != nil {
		return nil, errors.Wrap(err, "invalid modulus")
	}

	gg, err := Parse(g)
	if err != nil {
		return nil, errors.Wrap(err, "invalid generator")
	}

	return &PublicKey{N: nn, G: gg}, nil
}

func ParsePrivateKey(pub *PublicKey, p, q string) (*PrivateKey, error) {
	pp, err := Parse(p)
	if err != nil {
		return nil, errors.Wrap(err, "invalid secret factor")
	}

	qq, err := Parse(q)
	if err != nil {
		return nil, errors.Wrap(err, "invalid secret factor")
	}

	return NewPrivateKey(pub, pp, qq)
}
