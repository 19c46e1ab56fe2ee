// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import (
	"runtime"

	"github.com/Adamphu/blitzar/gpu"
	"github.com/gtank/ristretto255"
)

// msmEngine is the capability set behind the backend dispatcher: batched
// Pedersen commitments over sequences, and a single generic multiscalar
// multiplication used by the inner-product argument.
type msmEngine interface {
	// CommitBatch writes one compressed commitment per descriptor,
	// using gens[j] as the j-th base. gens must cover the longest
	// sequence. Outputs land in descriptor order.
	CommitBatch(out []CompressedRistretto, descriptors []SequenceDescriptor, gens []*ristretto255.Element)

	// MSMSingle computes sum_i scalars[i] * points[i].
	MSMSingle(scalars []*ristretto255.Scalar, points []*ristretto255.Element) *ristretto255.Element
}

// deviceDigitizer is the slice of the GPU engine the commit path needs:
// window-digit extraction for packed little-endian sequence data.
type deviceDigitizer interface {
	DigitizeWindows(data []byte, elemNBytes, n int) [][]int64
	MinBatch() int
}

// cpuEngine runs everything on the host. Sequences in a batch fan out
// over a bounded worker pool and join before return.
type cpuEngine struct {
	workers int
}

func newCPUEngine(workers int) *cpuEngine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &cpuEngine{workers: workers}
}

func (e *cpuEngine) CommitBatch(out []CompressedRistretto, descriptors []SequenceDescriptor, gens []*ristretto255.Element) {
	e.commitBatch(out, descriptors, gens, nil)
}

func (e *cpuEngine) MSMSingle(scalars []*ristretto255.Scalar, points []*ristretto255.Element) *ristretto255.Element {
	if len(scalars) == 0 {
		return ristretto255.NewElement().Zero()
	}
	return ristretto255.NewElement().VarTimeMultiScalarMult(scalars, points)
}

// commitBatch is shared by both backends; dev is nil on the CPU path.
// The generator slice is fetched once by the caller and shared across
// the whole batch, so generator loads amortize over all sequences.
func (e *cpuEngine) commitBatch(out []CompressedRistretto, descriptors []SequenceDescriptor, gens []*ristretto255.Element, dev deviceDigitizer) {
	workers := e.workers
	if workers > len(descriptors) {
		workers = len(descriptors)
	}
	if workers <= 1 {
		for i := range descriptors {
			encodeElement(&out[i], commitSequence(&descriptors[i], gens, dev))
		}
		return
	}
	parallelChunks(len(descriptors), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			encodeElement(&out[i], commitSequence(&descriptors[i], gens, dev))
		}
	})
}

// gpuEngine reuses the CPU accumulation schedule but sources window
// digits from the device for large unsigned narrow-width sequences, the
// bandwidth-bound case. Point arithmetic is identical on both backends,
// which is what makes the compressed outputs bit-identical.
type gpuEngine struct {
	cpu *cpuEngine
	dev *gpu.Engine
}

func newGPUEngine(workers int) (*gpuEngine, error) {
	dev, err := gpu.New(gpu.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &gpuEngine{cpu: newCPUEngine(workers), dev: dev}, nil
}

func (e *gpuEngine) CommitBatch(out []CompressedRistretto, descriptors []SequenceDescriptor, gens []*ristretto255.Element) {
	e.cpu.commitBatch(out, descriptors, gens, e.dev)
}

func (e *gpuEngine) MSMSingle(scalars []*ristretto255.Scalar, points []*ristretto255.Element) *ristretto255.Element {
	return e.cpu.MSMSingle(scalars, points)
}

// commitSequence computes sum_j a_j * gens[j] for one sequence.
func commitSequence(d *SequenceDescriptor, gens []*ristretto255.Element, dev deviceDigitizer) *ristretto255.Element {
	n := d.NumElements()
	if n == 0 {
		return ristretto255.NewElement().Zero()
	}

	if d.isNarrow() {
		// Device digitization covers the unsigned fast path; signed and
		// small batches extract on the host with the same schedule.
		if dev != nil && !d.IsSigned && n >= dev.MinBatch() {
			c := uint(16)
			if d.ElementNBytes == 1 {
				c = 8
			}
			return accumulateWindows(dev.DigitizeWindows(d.Data, d.ElementNBytes, n), nil, gens[:n], c)
		}
		c := windowBits(n, d.ElementNBytes*8)
		windows, neg := extractWindows(d, c)
		return accumulateWindows(windows, neg, gens[:n], c)
	}

	// Wide widths (16, 32 bytes) lift to field scalars and go through
	// the group library's generic Pippenger.
	scalars := make([]*ristretto255.Scalar, n)
	for j := 0; j < n; j++ {
		scalars[j] = d.scalarAt(j)
	}
	return ristretto255.NewElement().VarTimeMultiScalarMult(scalars, gens[:n])
}

// windowBits picks the bucket window as a function of the sequence
// length, capped at the actual element bit-width.
func windowBits(n, maxBits int) uint {
	var c uint
	switch {
	case n < 32:
		c = 4
	case n < 1024:
		c = 8
	default:
		c = 16
	}
	if c > uint(maxBits) {
		c = uint(maxBits)
	}
	return c
}

// extractWindows splits every element magnitude of a narrow sequence
// into c-bit little-endian digits. neg carries the per-element sign for
// signed sequences, nil otherwise.
func extractWindows(d *SequenceDescriptor, c uint) ([][]int64, []bool) {
	n := d.NumElements()
	numWindows := (d.ElementNBytes*8 + int(c) - 1) / int(c)
	windows := make([][]int64, numWindows)
	for w := range windows {
		windows[w] = make([]int64, n)
	}
	var neg []bool
	if d.IsSigned {
		neg = make([]bool, n)
	}
	mask := uint64(1)<<c - 1
	for j := 0; j < n; j++ {
		v, isNeg := d.wordAt(j)
		if isNeg {
			neg[j] = true
		}
		for w := 0; w < numWindows; w++ {
			windows[w][j] = int64(v >> (uint(w) * c) & mask)
		}
	}
	return windows, neg
}

// accumulateWindows runs the bucket method over precomputed window
// digits: most significant window first, doubling between windows, each
// window reduced by the running-sum trick. The schedule is a fixed
// function of the inputs, so both backends reduce identically.
func accumulateWindows(windows [][]int64, neg []bool, gens []*ristretto255.Element, c uint) *ristretto255.Element {
	acc := ristretto255.NewElement().Zero()
	numBuckets := (1 << c) - 1

	for w := len(windows) - 1; w >= 0; w-- {
		if w != len(windows)-1 {
			for b := uint(0); b < c; b++ {
				acc = ristretto255.NewElement().Add(acc, acc)
			}
		}
		buckets := make([]*ristretto255.Element, numBuckets)
		top := 0
		for j, digit := range windows[w] {
			if digit == 0 {
				continue
			}
			g := gens[j]
			if neg != nil && neg[j] {
				g = ristretto255.NewElement().Negate(g)
			}
			if buckets[digit-1] == nil {
				buckets[digit-1] = ristretto255.NewElement().Zero()
			}
			buckets[digit-1].Add(buckets[digit-1], g)
			if int(digit) > top {
				top = int(digit)
			}
		}
		// sum_d (d+1) * buckets[d], via running suffix sums. Buckets
		// above the largest digit seen are empty and contribute nothing.
		running := ristretto255.NewElement().Zero()
		windowSum := ristretto255.NewElement().Zero()
		for b := top - 1; b >= 0; b-- {
			if buckets[b] != nil {
				running.Add(running, buckets[b])
			}
			windowSum.Add(windowSum, running)
		}
		acc.Add(acc, windowSum)
	}
	return acc
}
