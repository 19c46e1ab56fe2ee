//go:build !cgo

// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// This file tests pure Go mode (CGO_ENABLED=0): the CPU backend must be
// fully functional and the GPU backend must be reported unavailable.

package blitzar

import (
	"testing"

	"github.com/Adamphu/blitzar/gpu"
	"github.com/stretchr/testify/require"
)

func TestPureGoMode(t *testing.T) {
	t.Log("Running in Pure Go mode (CGO_ENABLED=0)")
	newTestContext(t)

	require.False(t, gpu.Available())
	require.ErrorIs(t, Init(Config{Backend: BackendGPU}), ErrGPUUnavailable)

	t.Run("CommitRoundTrip", func(t *testing.T) {
		values := []uint64{1, 2, 3, 4, 5}
		out := make([]CompressedRistretto, 1)
		ComputePedersenCommitments(out, []SequenceDescriptor{
			{ElementNBytes: 2, Data: packLE(values, 2)},
		}, 0)
		want := naiveCommit(t, scalarsFromUint64s(values...), 0)
		require.Equal(t, 1, mustDecodePoint(t, out[0]).Equal(want))
	})

	t.Run("InnerProductRoundTrip", func(t *testing.T) {
		a := scalarsFromUint64s(2, 4, 6, 8)
		b := scalarsFromUint64s(1, 3, 5, 7)
		proof, commit, z := proveFixture(t, a, b, 0)
		got := VerifyInnerProduct(NewTranscript(ippLabel), 4, 0, b, z, commit, proof.L, proof.R, proof.A)
		require.Equal(t, 1, got)
	})
}
