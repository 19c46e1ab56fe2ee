//go:build cgo

// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu accelerates the bandwidth-bound half of batched Pedersen
// commitments using MLX: extracting bucket-window digits from packed
// little-endian sequence data. MLX runs on Metal, CUDA or CPU; when CGO
// is disabled the stub build falls back to host extraction.
//
// Point arithmetic never runs on the device. The digitizer feeds the
// same accumulation schedule as the host path, so commitment outputs
// are identical byte for byte whichever backend computed the digits.
package gpu

import (
	"fmt"
	"sync/atomic"

	"github.com/luxfi/mlx"
)

// Engine owns the device context for the process lifetime; it is torn
// down only at process exit.
type Engine struct {
	cfg     Config
	backend mlx.Backend
	device  *mlx.Device

	totalSequences atomic.Uint64
	totalElements  atomic.Uint64
}

// Available reports whether device digitization can be used. CGO builds
// always have an MLX backend (Metal, CUDA or its CPU fallback).
func Available() bool {
	return true
}

// Backend names the active MLX backend.
func Backend() string {
	return fmt.Sprintf("%v", mlx.GetBackend())
}

// New creates the digitizer engine and binds the device context.
func New(cfg Config) (*Engine, error) {
	if cfg.MinBatchSize <= 0 {
		cfg.MinBatchSize = DefaultConfig().MinBatchSize
	}

	backend := mlx.GetBackend()
	device := mlx.GetDevice()

	fmt.Printf("blitzar GPU digitizer initializing...\n")
	fmt.Printf("  Backend: %v\n", backend)
	fmt.Printf("  Device: %s\n", device.Name)
	fmt.Printf("  Memory: %.1f GB\n", float64(device.Memory)/(1024*1024*1024))

	return &Engine{
		cfg:     cfg,
		backend: backend,
		device:  device,
	}, nil
}

// MinBatch returns the smallest sequence length worth shipping to the
// device.
func (e *Engine) MinBatch() int {
	return e.cfg.MinBatchSize
}

// DigitizeWindows extracts the bucket-window digits of n unsigned
// little-endian elements of elemNBytes bytes each. Widths of two bytes
// and up yield 16-bit windows (digit = b[2w] + 256*b[2w+1]); width one
// yields a single 8-bit window. Digits are exact: every lane value fits
// an int64 with headroom, so device integer arithmetic cannot round.
//
// The returned slice is indexed [window][element], least significant
// window first, matching the host extractor.
func (e *Engine) DigitizeWindows(data []byte, elemNBytes, n int) [][]int64 {
	numWindows := (elemNBytes + 1) / 2
	if elemNBytes == 1 {
		numWindows = 1
	}

	// Stage through pinned memory when the CUDA runtime is present;
	// harmless no-op elsewhere.
	if buf := NewPinnedBuffer(len(data)); buf != nil {
		copy(buf.Bytes(), data)
		data = buf.Bytes()
		defer buf.Free()
	}

	// One int64 lane array per byte column of the element. Each lane
	// gets its own backing slice: the device may reference it lazily.
	cols := make([]*mlx.Array, elemNBytes)
	for k := 0; k < elemNBytes; k++ {
		lane := make([]int64, n)
		for j := 0; j < n; j++ {
			lane[j] = int64(data[j*elemNBytes+k])
		}
		cols[k] = mlx.ArrayFromSlice(lane, []int{n}, mlx.Int64)
	}

	out := make([][]int64, numWindows)
	for w := 0; w < numWindows; w++ {
		win := cols[2*w]
		if elemNBytes > 1 && 2*w+1 < elemNBytes {
			radix := mlx.Full([]int{n}, int64(256), mlx.Int64)
			win = mlx.Add(win, mlx.Multiply(cols[2*w+1], radix))
		}
		mlx.Eval(win)
		out[w] = mlx.AsSlice[int64](win)
	}

	e.totalSequences.Add(1)
	e.totalElements.Add(uint64(n))
	return out
}

// Sync waits for all outstanding device work.
func (e *Engine) Sync() {
	mlx.Synchronize()
}

// GetStats returns current engine statistics.
func (e *Engine) GetStats() Stats {
	return Stats{
		Backend:        fmt.Sprintf("%v", e.backend),
		DeviceName:     e.device.Name,
		DeviceMemory:   uint64(e.device.Memory),
		TotalSequences: e.totalSequences.Load(),
		TotalElements:  e.totalElements.Load(),
	}
}
