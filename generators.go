// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import (
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/gtank/ristretto255"
	"github.com/zeebo/blake3"
)

// generatorDomain prefixes the hashed index so that the generator stream
// cannot collide with any other use of the hash. The derivation is part
// of the wire contract and must never change:
//
//	G[i] = fromUniformBytes(BLAKE3-XOF64(generatorDomain || LE64(i)))
const generatorDomain = "blitzar generator"

// generatorAt derives G[i]. The cost is independent of i, so the stream
// supports random access at arbitrary offsets.
func generatorAt(i uint64) *ristretto255.Element {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], i)

	h := blake3.New()
	h.Write([]byte(generatorDomain))
	h.Write(idx[:])

	var wide [64]byte
	h.Digest().Read(wide[:])

	return ristretto255.NewElement().FromUniformBytes(wide[:])
}

// generatorOracle serves the deterministic generator stream and the
// one-commit prefix sums. The precomputation table is immutable after
// construction; the prefix-sum cache grows monotonically under its lock.
type generatorOracle struct {
	precomputed []*ristretto255.Element
	workers     int

	mu sync.Mutex
	// oneCommits[k] = G[0] + ... + G[k-1]; oneCommits[0] is the identity.
	oneCommits []*ristretto255.Element
}

func newGeneratorOracle(numPrecomputed uint64, workers int) *generatorOracle {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	o := &generatorOracle{
		workers:    workers,
		oneCommits: []*ristretto255.Element{ristretto255.NewElement().Zero()},
	}
	if numPrecomputed > 0 {
		o.precomputed = make([]*ristretto255.Element, numPrecomputed)
		o.fill(o.precomputed, 0)
	}
	return o
}

// generatorsAt returns G[offset] .. G[offset+count-1]. Precomputed
// entries are shared; entries past the table are derived on the fly.
// Callers must not mutate the returned elements.
func (o *generatorOracle) generatorsAt(offset uint64, count int) []*ristretto255.Element {
	out := make([]*ristretto255.Element, count)
	cached := 0
	if offset < uint64(len(o.precomputed)) {
		cached = copy(out, o.precomputed[offset:])
	}
	if cached < count {
		o.fill(out[cached:], offset+uint64(cached))
	}
	return out
}

// fill derives generators for consecutive indices starting at base.
// Derivation is embarrassingly parallel, so large requests fan out.
func (o *generatorOracle) fill(dst []*ristretto255.Element, base uint64) {
	const parallelThreshold = 64
	if len(dst) < parallelThreshold || o.workers <= 1 {
		for i := range dst {
			dst[i] = generatorAt(base + uint64(i))
		}
		return
	}
	parallelChunks(len(dst), o.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = generatorAt(base + uint64(i))
		}
	})
}

// oneCommit returns the running prefix sum over the generator stream:
// the identity for n = 0, otherwise G[0] + ... + G[n-1]. The cache is
// extended at most once per distinct n and reused by later calls, which
// keeps repeated calls with growing n linear overall.
func (o *generatorOracle) oneCommit(n uint64) *ristretto255.Element {
	o.mu.Lock()
	defer o.mu.Unlock()

	for uint64(len(o.oneCommits)) <= n {
		k := uint64(len(o.oneCommits))
		next := ristretto255.NewElement().Add(o.oneCommits[k-1], o.generatorLocked(k-1))
		o.oneCommits = append(o.oneCommits, next)
	}
	// Copy so callers cannot alias the cache.
	return ristretto255.NewElement().Add(o.oneCommits[n], ristretto255.NewElement().Zero())
}

func (o *generatorOracle) generatorLocked(i uint64) *ristretto255.Element {
	if i < uint64(len(o.precomputed)) {
		return o.precomputed[i]
	}
	return generatorAt(i)
}

// parallelChunks splits [0, n) into at most workers contiguous chunks
// and runs fn on each concurrently, joining before return.
func parallelChunks(n, workers int, fn func(lo, hi int)) {
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
