// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import "errors"

// Recoverable errors returned by Init, GetGenerators and GetOneCommit.
// Programmer errors (nil required outputs on the commitment paths, bad
// sequence widths, use before Init, n = 0 in the inner-product argument)
// are not represented here: they panic, since the caller cannot safely
// continue after misuse.
var (
	ErrAlreadyInitialized = errors.New("blitzar: already initialized")
	ErrInvalidBackend     = errors.New("blitzar: invalid backend selector")
	ErrGPUUnavailable     = errors.New("blitzar: GPU backend not available in this build")
	ErrNilOutput          = errors.New("blitzar: nil or undersized output buffer")
)
