/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package accumulator implements an RSA accumulator over registry indices.
//
// Every index i maps to a prime p(i). The accumulator of a member set S is
// g^(prod p(i) for i in S) mod N, and the witness of a member x is the same
// product with p(x) left out, so that witness^p(x) == accumulator.
package accumulator

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

const DefaultKeyBits = 2048

var one = big.NewInt(1)

type PublicKey struct {
	N *big.Int
	G *big.Int
}

// PrivateKey holds the factorization of N, needed to remove members.
type PrivateKey struct {
	PublicKey
	P   *big.Int
	Q   *big.Int
	phi *big.Int
}

func GenerateKey(random io.Reader, bits int) (*PrivateKey, error) {
	if random == nil {
		random = rand.Reader
	}

	if bits < 128 {
		return nil, errors.Errorf("key size %d too small", bits)
	}

	var p, q *big.Int
	var err error
	for p == nil || p.Cmp(q) == 0 {
		p, err = rand.Prime(random, bits/2)
		if err != nil {
			return nil, errors.Wrap(err, "unable to generate prime p")
		}

		q, err = rand.Prime(random, bits-bits/2)
		if err != nil {
			return nil, errors.Wrap(err, "unable to generate prime q")
		}
	}

	n := new(big.Int).Mul(p, q)

	var h *big.Int
	for h == nil || new(big.Int).GCD(nil, nil, h, n).Cmp(one) != 0 || h.Cmp(one) <= 0 {
		h, err = rand.Int(random, n)
		if err != nil {
			return nil, errors.Wrap(err, "unable to pick generator")
		}
	}

	return NewPrivateKey(&PublicKey{N: n, G: new(big.Int).Exp(h, big.NewInt(2), n)}, p, q)
}

func NewPrivateKey(pub *PublicKey, p, q *big.Int) (*PrivateKey, error) {
	if new(big.Int).Mul(p, q).Cmp(pub.N) != 0 {
		return nil, errors.New("factors do not match modulus")
	}

	phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

	return &PrivateKey{
		PublicKey: *pub,
		P:         p,
		Q:         q,
		phi:       phi,
	}, nil
}

// Accumulate computes the accumulator of members starting from the generator.
func (r *PublicKey) Accumulate(members []uint32) *big.Int {
	return new(big.Int).Exp(r.G, product(members), r.N)
}

// ApplyIssuance adds the given indices to acc.
func (r *PublicKey) ApplyIssuance(acc *big.Int, indices ...uint32) *big.Int {
	return new(big.Int).Exp(acc, product(indices), r.N)
}

// Witness computes the membership witness of index from the full member list.
func (r *PublicKey) Witness(members []uint32, index uint32) (*big.Int, error) {
	others := make([]uint32, 0, len(members))
	found := false
	for _, m := range members {
		if m == index {
			found = true
			continue
		}
		others = append(others, m)
	}

	if !found {
		return nil, errors.Errorf("index %d is not a member", index)
	}

	return r.Accumulate(others), nil
}

func (r *PublicKey) VerifyWitness(acc, witness *big.Int, index uint32) bool {
	if acc == nil || witness == nil {
		return false
	}

	return new(big.Int).Exp(witness, Prime(index), r.N).Cmp(acc) == 0
}

// UpdateWitness moves a witness of index across one delta. issued and revoked
// are the net member changes of the delta and acc is its resulting accumulator.
func (r *PublicKey) UpdateWitness(witness *big.Int, index uint32, issued, revoked []uint32, acc *big.Int) (*big.Int, error) {
	for _, idx := range revoked {
		if idx == index {
			return nil, errors.Errorf("index %d was removed", index)
		}
	}

	for _, idx := range issued {
		if idx == index {
			return nil, errors.Errorf("index %d was already a member", index)
		}
	}

	w := new(big.Int).Exp(witness, product(issued), r.N)
	if len(revoked) == 0 {
		return w, nil
	}

	// a*p(x) + b*prod(revoked) = 1, so W = acc^a * w^b
	a, b := new(big.Int), new(big.Int)
	gcd := new(big.Int).GCD(a, b, Prime(index), product(revoked))
	if gcd.Cmp(one) != 0 {
		return nil, errors.New("witness prime shares a factor with removed members")
	}

	left, err := r.exp(acc, a)
	if err != nil {
		return nil, err
	}

	right, err := r.exp(w, b)
	if err != nil {
		return nil, err
	}

	return left.Mod(left.Mul(left, right), r.N), nil
}

func (r *PublicKey) exp(base, e *big.Int) (*big.Int, error) {
	if e.Sign() >= 0 {
		return new(big.Int).Exp(base, e, r.N), nil
	}

	inv := new(big.Int).ModInverse(base, r.N)
	if inv == nil {
		return nil, errors.New("value is not invertible modulo N")
	}

	return inv.Exp(inv, new(big.Int).Neg(e), r.N), nil
}

// Accumulate uses the trapdoor to reduce the exponent before exponentiating.
func (r *PrivateKey) Accumulate(members []uint32) *big.Int {
	e := new(big.Int).Mod(product(members), r.phi)
	return new(big.Int).Exp(r.G, e, r.N)
}

// ApplyRevocation removes the given indices from acc.
func (r *PrivateKey) ApplyRevocation(acc *big.Int, indices ...uint32) (*big.Int, error) {
	e := new(big.Int).Mod(product(indices), r.phi)
	inv := new(big.Int).ModInverse(e, r.phi)
	if inv == nil {
		return nil, errors.New("index prime is not invertible for this key")
	}

	return new(big.Int).Exp(acc, inv, r.N), nil
}

func product(indices []uint32) *big.Int {
	out := big.NewInt(1)
	for _, idx := range indices {
		out.Mul(out, Prime(idx))
	}

	return out
}
