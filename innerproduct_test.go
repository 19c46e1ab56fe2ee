// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import (
	"testing"

	"github.com/gtank/ristretto255"
	"github.com/stretchr/testify/require"
)

const ippLabel = "ipp v1"

// proveFixture runs the prover over a and b at the given offset and
// returns the proof plus the claimed commitment A = <a, G> and inner
// product z = <a, b>.
func proveFixture(t *testing.T, a, b []*ristretto255.Scalar, genOffset uint64) (InnerProductProof, CompressedRistretto, *ristretto255.Scalar) {
	t.Helper()

	var proof InnerProductProof
	ProveInnerProduct(&proof, NewTranscript(ippLabel), len(a), genOffset, a, b)

	// A = <a, G>, computed through the commitment facade and
	// cross-checked term by term.
	commit := commitScalarsCompressed(t, a, genOffset)
	require.Equal(t, 1, mustDecodePoint(t, commit).Equal(naiveCommit(t, a, genOffset)))

	z := ristretto255.NewScalar()
	tmp := ristretto255.NewScalar()
	for i := range a {
		z.Add(z, tmp.Multiply(a[i], b[i]))
	}
	return proof, commit, z
}

func TestInnerProductCompleteness(t *testing.T) {
	newTestContext(t)

	cases := []struct {
		name   string
		a, b   []uint64
		offset uint64
	}{
		{"n=1", []uint64{7}, []uint64{3}, 0},
		{"n=2", []uint64{1, 2}, []uint64{3, 4}, 0},
		{"n=4", []uint64{1, 2, 3, 4}, []uint64{5, 6, 7, 8}, 0},
		{"n=7 padded", []uint64{9, 0, 4, 4, 2, 1, 8}, []uint64{1, 1, 2, 3, 5, 8, 13}, 0},
		{"n=4 offset", []uint64{11, 22, 33, 44}, []uint64{5, 0, 5, 0}, 123},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := scalarsFromUint64s(tc.a...)
			b := scalarsFromUint64s(tc.b...)
			proof, commit, z := proveFixture(t, a, b, tc.offset)

			k := ceilLog2(len(a))
			require.Len(t, proof.L, k)
			require.Len(t, proof.R, k)
			require.NotNil(t, proof.A)

			got := VerifyInnerProduct(NewTranscript(ippLabel), len(b), tc.offset, b, z, commit, proof.L, proof.R, proof.A)
			require.Equal(t, 1, got, "valid proof rejected")
		})
	}
}

func TestInnerProductKnownAnswer(t *testing.T) {
	newTestContext(t)

	// n=4, a=[1,2,3,4], b=[5,6,7,8]: z = 5+12+21+32 = 70.
	a := scalarsFromUint64s(1, 2, 3, 4)
	b := scalarsFromUint64s(5, 6, 7, 8)
	proof, commit, z := proveFixture(t, a, b, 0)

	require.Equal(t, 1, scalarFromUint64(70).Equal(z), "<a,b> should be 70")
	require.Len(t, proof.L, 2)

	got := VerifyInnerProduct(NewTranscript(ippLabel), 4, 0, b, scalarFromUint64(70), commit, proof.L, proof.R, proof.A)
	require.Equal(t, 1, got)

	// Mutating a* to a*+1 must reject.
	badA := ristretto255.NewScalar().Add(proof.A, scalarFromUint64(1))
	got = VerifyInnerProduct(NewTranscript(ippLabel), 4, 0, b, scalarFromUint64(70), commit, proof.L, proof.R, badA)
	require.Equal(t, 0, got)
}

func TestInnerProductSoundness(t *testing.T) {
	newTestContext(t)

	a := scalarsFromUint64s(4, 9, 16, 25, 36, 49)
	b := scalarsFromUint64s(1, 2, 3, 4, 5, 6)
	proof, commit, z := proveFixture(t, a, b, 0)

	verify := func(b []*ristretto255.Scalar, z *ristretto255.Scalar, commit CompressedRistretto, l, r []CompressedRistretto, aStar *ristretto255.Scalar) int {
		return VerifyInnerProduct(NewTranscript(ippLabel), len(b), 0, b, z, commit, l, r, aStar)
	}

	// Baseline sanity before mutations.
	require.Equal(t, 1, verify(b, z, commit, proof.L, proof.R, proof.A))

	t.Run("flip commitment bit", func(t *testing.T) {
		bad := commit
		bad[3] ^= 0x10
		require.Equal(t, 0, verify(b, z, bad, proof.L, proof.R, proof.A))
	})

	t.Run("flip L bit", func(t *testing.T) {
		l := append([]CompressedRistretto(nil), proof.L...)
		l[0][7] ^= 0x01
		require.Equal(t, 0, verify(b, z, commit, l, proof.R, proof.A))
	})

	t.Run("flip R bit", func(t *testing.T) {
		r := append([]CompressedRistretto(nil), proof.R...)
		r[len(r)-1][0] ^= 0x02
		require.Equal(t, 0, verify(b, z, commit, proof.L, r, proof.A))
	})

	t.Run("wrong z", func(t *testing.T) {
		badZ := ristretto255.NewScalar().Add(z, scalarFromUint64(1))
		require.Equal(t, 0, verify(b, badZ, commit, proof.L, proof.R, proof.A))
	})

	t.Run("wrong b", func(t *testing.T) {
		badB := append([]*ristretto255.Scalar(nil), b...)
		badB[2] = scalarFromUint64(1000)
		require.Equal(t, 0, verify(badB, z, commit, proof.L, proof.R, proof.A))
	})

	t.Run("swapped rounds", func(t *testing.T) {
		l := append([]CompressedRistretto(nil), proof.L...)
		l[0], l[1] = l[1], l[0]
		require.Equal(t, 0, verify(b, z, commit, l, proof.R, proof.A))
	})

	t.Run("wrong round count", func(t *testing.T) {
		require.Equal(t, 0, verify(b, z, commit, proof.L[:1], proof.R, proof.A))
	})

	t.Run("wrong generator offset", func(t *testing.T) {
		got := VerifyInnerProduct(NewTranscript(ippLabel), len(b), 999, b, z, commit, proof.L, proof.R, proof.A)
		require.Equal(t, 0, got)
	})

	t.Run("wrong protocol label", func(t *testing.T) {
		got := VerifyInnerProduct(NewTranscript("ipp v2"), len(b), 0, b, z, commit, proof.L, proof.R, proof.A)
		require.Equal(t, 0, got)
	})
}

func TestInnerProductTranscriptDiscipline(t *testing.T) {
	newTestContext(t)

	// Two transcripts absorbing the same labeled sequence agree on the
	// challenge; diverging at any append diverges the challenge.
	p := generatorRange(t, 0, 2)

	t1 := NewTranscript(ippLabel)
	t2 := NewTranscript(ippLabel)
	t1.AppendPoint("L", &p[0])
	t2.AppendPoint("L", &p[0])
	t1.AppendScalar("a", scalarFromUint64(42))
	t2.AppendScalar("a", scalarFromUint64(42))
	require.Equal(t, 1, t1.ChallengeScalar("x").Equal(t2.ChallengeScalar("x")))

	t3 := NewTranscript(ippLabel)
	t3.AppendPoint("R", &p[0]) // same bytes, different label
	t4 := NewTranscript(ippLabel)
	t4.AppendPoint("L", &p[0])
	require.Zero(t, t3.ChallengeScalar("x").Equal(t4.ChallengeScalar("x")))
}

func TestInnerProductPanics(t *testing.T) {
	newTestContext(t)

	a := scalarsFromUint64s(1)
	require.Panics(t, func() {
		var proof InnerProductProof
		ProveInnerProduct(&proof, NewTranscript(ippLabel), 0, 0, nil, nil)
	}, "n = 0")

	require.Panics(t, func() {
		ProveInnerProduct(nil, NewTranscript(ippLabel), 1, 0, a, a)
	}, "nil proof")

	require.Panics(t, func() {
		var proof InnerProductProof
		ProveInnerProduct(&proof, nil, 1, 0, a, a)
	}, "nil transcript")

	require.Panics(t, func() {
		VerifyInnerProduct(NewTranscript(ippLabel), 0, 0, nil, scalarFromUint64(0), CompressedRistretto{}, nil, nil, scalarFromUint64(0))
	}, "verify n = 0")
}
