// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import (
	"github.com/gtank/merlin"
	"github.com/gtank/ristretto255"
)

// Transcript adapts the STROBE-128 transcript to the group: labeled
// point and scalar absorption plus uniform scalar challenges. Labels are
// part of the wire contract; prover and verifier must absorb the same
// (label, bytes) sequence in the same order to derive the same
// challenges. The state is mutated in place and must not be shared
// across concurrent calls.
type Transcript struct {
	inner *merlin.Transcript
}

// NewTranscript creates a transcript domain-separated by the protocol
// label (the inner-product tests use "ipp v1").
func NewTranscript(label string) *Transcript {
	return &Transcript{inner: merlin.NewTranscript(label)}
}

// AppendPoint absorbs a compressed point under the given label.
func (t *Transcript) AppendPoint(label string, p *CompressedRistretto) {
	t.inner.AppendMessage([]byte(label), p[:])
}

// AppendScalar absorbs a scalar's canonical 32-byte encoding.
func (t *Transcript) AppendScalar(label string, s *ristretto255.Scalar) {
	t.inner.AppendMessage([]byte(label), s.Encode(nil))
}

// ChallengeScalar derives a challenge scalar: 64 bytes of transcript
// PRF output reduced mod l, so the distribution over the field is
// uniform.
func (t *Transcript) ChallengeScalar(label string) *ristretto255.Scalar {
	wide := t.inner.ExtractBytes([]byte(label), 64)
	return ristretto255.NewScalar().FromUniformBytes(wide)
}
