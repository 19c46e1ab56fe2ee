// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package blitzar computes batched Pedersen commitments and
// inner-product arguments over the Ristretto255 prime-order group.
//
// The library is configured once per process with Init, selecting a CPU
// or GPU multiscalar-multiplication backend. Commitments are taken
// against either the canonical deterministic generator stream, fetched
// at an arbitrary offset, or a caller-supplied generator vector. Both
// backends produce bit-identical compressed outputs.
//
// All buffers are caller-owned; entry points are synchronous and safe
// for concurrent use with disjoint outputs, except that a Transcript
// must not be shared across concurrent calls.
package blitzar

import (
	"github.com/gtank/ristretto255"
)

// CompressedRistretto is the canonical 32-byte encoding of a group
// element. The identity encodes as all zero bytes. Non-canonical byte
// strings fail decoding.
type CompressedRistretto [32]byte

// encodeElement writes p's canonical encoding into out.
func encodeElement(out *CompressedRistretto, p *ristretto255.Element) {
	copy(out[:], p.Encode(nil))
}

// ComputePedersenCommitments computes, for each descriptor, the Pedersen
// commitment sum_j a_j * G[offsetGenerators + j] over the canonical
// generator stream, writing compressed results to out in descriptor
// order. An empty descriptor batch is a successful no-op; an empty
// sequence commits to the identity.
//
// Misuse panics: library not initialized, out too short for the batch,
// or an invalid descriptor (see SequenceDescriptor).
func ComputePedersenCommitments(out []CompressedRistretto, descriptors []SequenceDescriptor, offsetGenerators uint64) {
	s := requireInit()
	if len(descriptors) == 0 {
		return
	}
	if out == nil || len(out) < len(descriptors) {
		panic("blitzar: output buffer does not cover the descriptor batch")
	}
	for i := range descriptors {
		descriptors[i].validate()
	}
	gens := s.oracle.generatorsAt(offsetGenerators, maxSequenceLength(descriptors))
	s.engine.CommitBatch(out[:len(descriptors)], descriptors, gens)
}

// ComputePedersenCommitmentsWithGenerators is ComputePedersenCommitments
// against a caller-supplied generator vector, which must cover the
// longest sequence in the batch. Generators are trusted input: a vector
// that is too short or fails to decode panics.
func ComputePedersenCommitmentsWithGenerators(out []CompressedRistretto, descriptors []SequenceDescriptor, generators []CompressedRistretto) {
	s := requireInit()
	if len(descriptors) == 0 {
		return
	}
	if out == nil || len(out) < len(descriptors) {
		panic("blitzar: output buffer does not cover the descriptor batch")
	}
	for i := range descriptors {
		descriptors[i].validate()
	}
	maxN := maxSequenceLength(descriptors)
	if len(generators) < maxN {
		panic("blitzar: generator vector shorter than the longest sequence")
	}
	gens := make([]*ristretto255.Element, maxN)
	for i := 0; i < maxN; i++ {
		gens[i] = ristretto255.NewElement()
		if err := gens[i].Decode(generators[i][:]); err != nil {
			panic("blitzar: non-canonical generator encoding: " + err.Error())
		}
	}
	s.engine.CommitBatch(out[:len(descriptors)], descriptors, gens)
}

// GetGenerators fills out[:numGenerators] with the compressed encodings
// of G[offsetGenerators] .. G[offsetGenerators+numGenerators-1] from the
// canonical stream. A nil out with a zero-length request is a no-op;
// otherwise a nil out, or one shorter than numGenerators, is reported
// as ErrNilOutput.
func GetGenerators(out []CompressedRistretto, offsetGenerators uint64, numGenerators int) error {
	s := requireInit()
	if numGenerators == 0 {
		return nil
	}
	if out == nil || len(out) < numGenerators {
		return ErrNilOutput
	}
	gens := s.oracle.generatorsAt(offsetGenerators, numGenerators)
	for i, g := range gens {
		encodeElement(&out[i], g)
	}
	return nil
}

// GetOneCommit writes the compressed running prefix sum
// G[0] + ... + G[n-1] to out, the identity when n is zero.
func GetOneCommit(out *CompressedRistretto, n uint64) error {
	s := requireInit()
	if out == nil {
		return ErrNilOutput
	}
	encodeElement(out, s.oracle.oneCommit(n))
	return nil
}
