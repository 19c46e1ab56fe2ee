// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import (
	"sync"
	"testing"

	"github.com/gtank/ristretto255"
	"github.com/stretchr/testify/require"
)

// initOnce configures the CPU backend for the whole test binary: Init
// is single-shot per process.
var initOnce sync.Once

// testContext holds common fixtures for library tests.
type testContext struct{}

// newTestContext initializes the library (first caller wins) and
// returns the shared fixture.
func newTestContext(t testing.TB) *testContext {
	t.Helper()
	initOnce.Do(func() {
		cfg := DefaultConfig()
		cfg.NumPrecomputedGenerators = 16
		if err := Init(cfg); err != nil {
			t.Fatalf("init CPU backend: %v", err)
		}
	})
	return &testContext{}
}

// scalarFromUint64 lifts a small integer into the scalar field.
func scalarFromUint64(v uint64) *ristretto255.Scalar {
	var enc [32]byte
	for i := 0; i < 8; i++ {
		enc[i] = byte(v >> (8 * i))
	}
	s := ristretto255.NewScalar()
	if err := s.Decode(enc[:]); err != nil {
		panic(err)
	}
	return s
}

// scalarsFromUint64s lifts a vector of small integers.
func scalarsFromUint64s(vs ...uint64) []*ristretto255.Scalar {
	out := make([]*ristretto255.Scalar, len(vs))
	for i, v := range vs {
		out[i] = scalarFromUint64(v)
	}
	return out
}

// mustDecodePoint decodes a compressed encoding or fails the test.
func mustDecodePoint(t testing.TB, enc CompressedRistretto) *ristretto255.Element {
	t.Helper()
	p := ristretto255.NewElement()
	require.NoError(t, p.Decode(enc[:]), "decode compressed point")
	return p
}

// generatorRange fetches compressed generators through the public API.
func generatorRange(t testing.TB, offset uint64, count int) []CompressedRistretto {
	t.Helper()
	out := make([]CompressedRistretto, count)
	require.NoError(t, GetGenerators(out, offset, count))
	return out
}

// naiveCommit computes sum_i scalars[i] * G[offset+i] term by term,
// independently of the MSM engine under test.
func naiveCommit(t testing.TB, scalars []*ristretto255.Scalar, offset uint64) *ristretto255.Element {
	t.Helper()
	gens := generatorRange(t, offset, len(scalars))
	acc := ristretto255.NewElement().Zero()
	for i, s := range scalars {
		g := mustDecodePoint(t, gens[i])
		acc.Add(acc, ristretto255.NewElement().ScalarMult(s, g))
	}
	return acc
}

// commitScalarsCompressed commits a scalar vector through the public
// facade by packing it as a 32-byte-wide unsigned sequence.
func commitScalarsCompressed(t testing.TB, scalars []*ristretto255.Scalar, offset uint64) CompressedRistretto {
	t.Helper()
	data := make([]byte, 0, 32*len(scalars))
	for _, s := range scalars {
		data = append(data, s.Encode(nil)...)
	}
	out := make([]CompressedRistretto, 1)
	ComputePedersenCommitments(out, []SequenceDescriptor{{ElementNBytes: 32, Data: data}}, offset)
	return out[0]
}
