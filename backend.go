// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import (
	"fmt"
	"sync"

	"github.com/Adamphu/blitzar/gpu"
)

// state is the immutable handle established by the first successful
// Init. Entry points read it under initMu; it is never replaced or torn
// down until process exit.
type state struct {
	cfg    Config
	engine msmEngine
	oracle *generatorOracle
}

var (
	initMu  sync.Mutex
	current *state // written once under initMu, then read-only
)

// Init configures the process-wide backend. It succeeds at most once:
// later calls return ErrAlreadyInitialized regardless of configuration.
// Invalid configurations (unknown backend selector, GPU backend in a
// build without device support) are reported before the single-shot
// check so they are always diagnosable.
func Init(cfg Config) error {
	switch cfg.Backend {
	case BackendCPU:
	case BackendGPU:
		if !gpu.Available() {
			return ErrGPUUnavailable
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidBackend, cfg.Backend)
	}

	initMu.Lock()
	defer initMu.Unlock()
	if current != nil {
		return ErrAlreadyInitialized
	}

	var engine msmEngine
	switch cfg.Backend {
	case BackendCPU:
		engine = newCPUEngine(cfg.Workers)
	case BackendGPU:
		gpuEng, err := newGPUEngine(cfg.Workers)
		if err != nil {
			return fmt.Errorf("blitzar: GPU backend init: %w", err)
		}
		engine = gpuEng
	}

	current = &state{
		cfg:    cfg,
		engine: engine,
		oracle: newGeneratorOracle(cfg.NumPrecomputedGenerators, cfg.Workers),
	}
	return nil
}

// requireInit returns the process handle, panicking if Init has not
// succeeded. Calling any compute entry point before Init is misuse.
func requireInit() *state {
	initMu.Lock()
	s := current
	initMu.Unlock()
	if s == nil {
		panic("blitzar: library not initialized; call Init first")
	}
	return s
}
