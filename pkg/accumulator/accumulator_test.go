/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package accumulator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const testKeyBits = 512

func TestPrime(t *testing.T) {
	p := Prime(7)
	require.True(t, p.ProbablyPrime(20))
	require.Equal(t, primeBits, p.BitLen())
	require.Equal(t, 0, p.Cmp(Prime(7)))
	require.NotEqual(t, 0, p.Cmp(Prime(8)))
	require.Equal(t, 0, hashToPrime([]byte{0, 0, 0, 7}).Cmp(p))
}

func TestGenerateKey(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		sk, err := GenerateKey(nil, testKeyBits)
		require.NoError(t, err)
		require.Equal(t, 0, new(big.Int).Mul(sk.P, sk.Q).Cmp(sk.N))

		pub, err := ParsePublicKey(Format(sk.N), Format(sk.G))
		require.NoError(t, err)
		require.Equal(t, 0, pub.N.Cmp(sk.N))

		again, err := ParsePrivateKey(pub, Format(sk.P), Format(sk.Q))
		require.NoError(t, err)
		require.Equal(t, 0, again.phi.Cmp(sk.phi))
	})

	t.Run("too small", func(t *testing.T) {
		_, err := GenerateKey(nil, 64)
		require.Error(t, err)
	})

	t.Run("mismatched factors", func(t *testing.T) {
		sk, err := GenerateKey(nil, testKeyBits)
		require.NoError(t, err)

		_, err = NewPrivateKey(&sk.PublicKey, sk.P, big.NewInt(3))
		require.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	_, err := Parse("abc")
	require.Error(t, err)

	_, err = Parse("-5")
	require.Error(t, err)

	v, err := Parse("12345")
	require.NoError(t, err)
	require.Equal(t, "12345", Format(v))
}

func TestAccumulator(t *testing.T) {
	sk, err := GenerateKey(nil, testKeyBits)
	require.NoError(t, err)
	pk := &sk.PublicKey

	t.Run("trapdoor and public accumulate agree", func(t *testing.T) {
		members := []uint32{0, 1, 4}
		require.Equal(t, 0, sk.Accumulate(members).Cmp(pk.Accumulate(members)))
	})

	t.Run("issue then revoke returns to previous value", func(t *testing.T) {
		acc := pk.Accumulate([]uint32{1})
		added := pk.ApplyIssuance(acc, 2)
		require.Equal(t, 0, added.Cmp(pk.Accumulate([]uint32{1, 2})))

		removed, err := sk.ApplyRevocation(added, 2)
		require.NoError(t, err)
		require.Equal(t, 0, removed.Cmp(acc))
	})

	t.Run("witness verifies only for members", func(t *testing.T) {
		members := []uint32{1, 2, 3}
		acc := pk.Accumulate(members)

		w, err := pk.Witness(members, 2)
		require.NoError(t, err)
		require.True(t, pk.VerifyWitness(acc, w, 2))
		require.False(t, pk.VerifyWitness(acc, w, 1))
		require.False(t, pk.VerifyWitness(nil, w, 2))

		_, err = pk.Witness(members, 9)
		require.Error(t, err)
	})

	t.Run("witness update matches rebuilt witness", func(t *testing.T) {
		before := []uint32{0, 1, 2, 3}
		after := []uint32{0, 2, 3, 5, 6}
		issued, revoked := []uint32{5, 6}, []uint32{1}

		w, err := pk.Witness(before, 2)
		require.NoError(t, err)

		acc := pk.Accumulate(after)
		updated, err := pk.UpdateWitness(w, 2, issued, revoked, acc)
		require.NoError(t, err)

		expected, err := pk.Witness(after, 2)
		require.NoError(t, err)
		require.Equal(t, 0, expected.Cmp(updated))
		require.True(t, pk.VerifyWitness(acc, updated, 2))
	})

	t.Run("witness update without removals", func(t *testing.T) {
		w, err := pk.Witness([]uint32{3}, 3)
		require.NoError(t, err)

		updated, err := pk.UpdateWitness(w, 3, []uint32{4}, nil, pk.Accumulate([]uint32{3, 4}))
		require.NoError(t, err)
		require.True(t, pk.VerifyWitness(pk.Accumulate([]uint32{3, 4}), updated, 3))
	})

	t.Run("witness update for removed index", func(t *testing.T) {
		w, err := pk.Witness([]uint32{1, 2}, 2)
		require.NoError(t, err)

		_, err = pk.UpdateWitness(w, 2, nil, []uint32{2}, pk.Accumulate([]uint32{1}))
		require.Error(t, err)

		_, err = pk.UpdateWitness(w, 2, []uint32{2}, nil, pk.Accumulate([]uint32{1}))
		require.Error(t, err)
	})
}
