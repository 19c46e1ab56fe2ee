// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import (
	"math/bits"
	"runtime"

	"github.com/gtank/ristretto255"
)

// InnerProductProof is the output of ProveInnerProduct: one (L, R) pair
// per fold round, most significant round first, plus the fully folded
// scalar a*. All points are carried compressed; they are the wire form.
type InnerProductProof struct {
	L []CompressedRistretto
	R []CompressedRistretto
	A *ristretto255.Scalar
}

// ProveInnerProduct produces a logarithmic proof of knowledge of a with
// <a, G> = A and <a, b> = z, where G is the generator stream at
// genOffset and the commitment base Q is the generator one past the
// padded vector. The transcript must be initialized with the protocol
// label agreed with the verifier; it is mutated in place.
//
// Prover inputs are trusted: nil arguments, n = 0, or length mismatches
// panic. The negligible event of a zero transcript challenge also
// panics, as the proof cannot be completed.
func ProveInnerProduct(proof *InnerProductProof, t *Transcript, n int, genOffset uint64, a, b []*ristretto255.Scalar) {
	s := requireInit()
	if proof == nil || t == nil {
		panic("blitzar: nil proof or transcript")
	}
	if n <= 0 {
		panic("blitzar: inner-product length must be non-zero")
	}
	if len(a) != n || len(b) != n {
		panic("blitzar: scalar vector length does not match n")
	}

	k := ceilLog2(n)
	np := 1 << k
	gens := s.oracle.generatorsAt(genOffset, np+1)
	q := gens[np]

	av := padScalars(a, np)
	bv := padScalars(b, np)
	gv := make([]*ristretto255.Element, np)
	copy(gv, gens[:np])

	proof.L = make([]CompressedRistretto, 0, k)
	proof.R = make([]CompressedRistretto, 0, k)

	zero := ristretto255.NewScalar()
	for j := k - 1; j >= 0; j-- {
		half := 1 << j
		aLo, aHi := av[:half], av[half:]
		bLo, bHi := bv[:half], bv[half:]
		gLo, gHi := gv[:half], gv[half:]

		// L = <aLo, gHi> + <aLo, bHi>*Q, R = <aHi, gLo> + <aHi, bLo>*Q.
		lPt := crossCommit(s.engine, aLo, gHi, innerProduct(aLo, bHi), q)
		rPt := crossCommit(s.engine, aHi, gLo, innerProduct(aHi, bLo), q)

		var lEnc, rEnc CompressedRistretto
		encodeElement(&lEnc, lPt)
		encodeElement(&rEnc, rPt)
		t.AppendPoint("L", &lEnc)
		t.AppendPoint("R", &rEnc)
		proof.L = append(proof.L, lEnc)
		proof.R = append(proof.R, rEnc)

		u := t.ChallengeScalar("x")
		if u.Equal(zero) == 1 {
			panic("blitzar: transcript produced a zero challenge")
		}
		uInv := ristretto255.NewScalar().Invert(u)

		av = foldScalars(aLo, aHi, u, uInv)
		bv = foldScalars(bLo, bHi, uInv, u)
		gv = foldPoints(gLo, gHi, uInv, u)
	}

	proof.A = av[0]
}

// VerifyInnerProduct checks a proof against the claimed commitment
// A = <a, G> and inner product z = <a, b>. It returns 1 on accept and 0
// on reject. The commitment and the proof points are untrusted: any
// non-canonical encoding rejects, it never aborts. A nil transcript or
// n = 0 is caller misuse and panics.
//
// The check is a single multiscalar multiplication of
//
//	a*·<s,G> + (a*·b' − z)·Q − A − Σ_j (u_j²·L_j + u_j⁻²·R_j)
//
// against the identity, with s the standard folding vector and b' the
// collapsed b.
func VerifyInnerProduct(t *Transcript, n int, genOffset uint64, b []*ristretto255.Scalar, z *ristretto255.Scalar, commit CompressedRistretto, l, r []CompressedRistretto, aStar *ristretto255.Scalar) int {
	st := requireInit()
	if t == nil || z == nil || aStar == nil {
		panic("blitzar: nil transcript or scalar argument")
	}
	if n <= 0 {
		panic("blitzar: inner-product length must be non-zero")
	}
	if len(b) != n {
		panic("blitzar: scalar vector length does not match n")
	}

	k := ceilLog2(n)
	np := 1 << k
	if len(l) != k || len(r) != k {
		return 0
	}

	aPt := ristretto255.NewElement()
	if aPt.Decode(commit[:]) != nil {
		return 0
	}
	lPts := make([]*ristretto255.Element, k)
	rPts := make([]*ristretto255.Element, k)
	for i := 0; i < k; i++ {
		lPts[i] = ristretto255.NewElement()
		rPts[i] = ristretto255.NewElement()
		if lPts[i].Decode(l[i][:]) != nil || rPts[i].Decode(r[i][:]) != nil {
			return 0
		}
	}

	gens := st.oracle.generatorsAt(genOffset, np+1)
	q := gens[np]

	// Replay the prover's absorb order to recover the challenges.
	// l[i] belongs to round j = k-1-i.
	zero := ristretto255.NewScalar()
	u := make([]*ristretto255.Scalar, k)
	uInv := make([]*ristretto255.Scalar, k)
	for i := 0; i < k; i++ {
		t.AppendPoint("L", &l[i])
		t.AppendPoint("R", &r[i])
		c := t.ChallengeScalar("x")
		if c.Equal(zero) == 1 {
			return 0
		}
		j := k - 1 - i
		u[j] = c
		uInv[j] = ristretto255.NewScalar().Invert(c)
	}

	sVec := foldingVector(u, uInv, np)

	// b' = <b (zero-padded), s>: the prover folds b with the same
	// per-round coefficients as G.
	bPrime := ristretto255.NewScalar()
	tmp := ristretto255.NewScalar()
	for i := 0; i < len(b); i++ {
		bPrime.Add(bPrime, tmp.Multiply(b[i], sVec[i]))
	}

	// Assemble the combined MSM.
	scalars := make([]*ristretto255.Scalar, 0, np+2+2*k)
	points := make([]*ristretto255.Element, 0, np+2+2*k)
	for i := 0; i < np; i++ {
		scalars = append(scalars, ristretto255.NewScalar().Multiply(aStar, sVec[i]))
		points = append(points, gens[i])
	}
	qCoeff := ristretto255.NewScalar().Multiply(aStar, bPrime)
	qCoeff.Subtract(qCoeff, z)
	scalars = append(scalars, qCoeff)
	points = append(points, q)

	minusOne := ristretto255.NewScalar().Negate(scalarOne())
	scalars = append(scalars, minusOne)
	points = append(points, aPt)

	for j := 0; j < k; j++ {
		i := k - 1 - j
		uSq := ristretto255.NewScalar().Multiply(u[j], u[j])
		uInvSq := ristretto255.NewScalar().Multiply(uInv[j], uInv[j])
		scalars = append(scalars, uSq.Negate(uSq), uInvSq.Negate(uInvSq))
		points = append(points, lPts[i], rPts[i])
	}

	res := st.engine.MSMSingle(scalars, points)
	if res.Equal(ristretto255.NewElement().Zero()) == 1 {
		return 1
	}
	return 0
}

// ceilLog2 returns the smallest k with 2^k >= n.
func ceilLog2(n int) int {
	k := 0
	for 1<<k < n {
		k++
	}
	return k
}

// padScalars copies v and zero-pads it to length np. Entries alias the
// input scalars; folding always writes fresh scalars, never in place.
func padScalars(v []*ristretto255.Scalar, np int) []*ristretto255.Scalar {
	out := make([]*ristretto255.Scalar, np)
	copy(out, v)
	for i := len(v); i < np; i++ {
		out[i] = ristretto255.NewScalar()
	}
	return out
}

// innerProduct computes <x, y> over the scalar field.
func innerProduct(x, y []*ristretto255.Scalar) *ristretto255.Scalar {
	sum := ristretto255.NewScalar()
	tmp := ristretto255.NewScalar()
	for i := range x {
		sum.Add(sum, tmp.Multiply(x[i], y[i]))
	}
	return sum
}

// crossCommit computes <a, g> + c*Q as one multiscalar multiplication.
func crossCommit(e msmEngine, a []*ristretto255.Scalar, g []*ristretto255.Element, c *ristretto255.Scalar, q *ristretto255.Element) *ristretto255.Element {
	scalars := make([]*ristretto255.Scalar, 0, len(a)+1)
	points := make([]*ristretto255.Element, 0, len(a)+1)
	scalars = append(scalars, a...)
	points = append(points, g...)
	scalars = append(scalars, c)
	points = append(points, q)
	return e.MSMSingle(scalars, points)
}

// foldScalars computes cLo*lo + cHi*hi pointwise.
func foldScalars(lo, hi []*ristretto255.Scalar, cLo, cHi *ristretto255.Scalar) []*ristretto255.Scalar {
	out := make([]*ristretto255.Scalar, len(lo))
	for i := range lo {
		left := ristretto255.NewScalar().Multiply(cLo, lo[i])
		right := ristretto255.NewScalar().Multiply(cHi, hi[i])
		out[i] = left.Add(left, right)
	}
	return out
}

// foldPoints computes cLo*lo + cHi*hi pointwise. This is the prover's
// hot loop; halves above a modest size fan out over all CPUs.
func foldPoints(lo, hi []*ristretto255.Element, cLo, cHi *ristretto255.Scalar) []*ristretto255.Element {
	out := make([]*ristretto255.Element, len(lo))
	fold := func(i int) {
		left := ristretto255.NewElement().ScalarMult(cLo, lo[i])
		right := ristretto255.NewElement().ScalarMult(cHi, hi[i])
		out[i] = left.Add(left, right)
	}
	const parallelThreshold = 32
	if len(lo) < parallelThreshold {
		for i := range lo {
			fold(i)
		}
		return out
	}
	parallelChunks(len(lo), runtime.NumCPU(), func(a, b int) {
		for i := a; i < b; i++ {
			fold(i)
		}
	})
	return out
}

// foldingVector builds s with s[i] = prod_j pos[j] when bit j of i is
// set, neg[j] otherwise. s[i] extends s[i & (i-1)] by the squared
// challenge of i's lowest set bit, so construction is linear.
func foldingVector(pos, neg []*ristretto255.Scalar, np int) []*ristretto255.Scalar {
	k := len(pos)
	out := make([]*ristretto255.Scalar, np)

	base := scalarOne()
	for j := 0; j < k; j++ {
		base = ristretto255.NewScalar().Multiply(base, neg[j])
	}
	out[0] = base

	// ratio[j] = pos[j] / neg[j]: flipping bit j multiplies by it.
	ratio := make([]*ristretto255.Scalar, k)
	for j := 0; j < k; j++ {
		inv := ristretto255.NewScalar().Invert(neg[j])
		ratio[j] = inv.Multiply(pos[j], inv)
	}

	for i := 1; i < np; i++ {
		j := bits.TrailingZeros(uint(i))
		out[i] = ristretto255.NewScalar().Multiply(out[i&(i-1)], ratio[j])
	}
	return out
}

// scalarOne returns a fresh scalar set to 1.
func scalarOne() *ristretto255.Scalar {
	var one [32]byte
	one[0] = 1
	s := ristretto255.NewScalar()
	if err := s.Decode(one[:]); err != nil {
		panic("blitzar: canonical one failed to decode")
	}
	return s
}
