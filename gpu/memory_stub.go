//go:build !(linux && cgo && cuda) && !(windows && cgo && cuda)

// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "unsafe"

// PinnedBuffer stub for non-CUDA platforms; sequence staging uses
// pageable memory there.
type PinnedBuffer struct{}

func NewPinnedBuffer(size int) *PinnedBuffer {
	return nil
}

func (pb *PinnedBuffer) Free() {}

func (pb *PinnedBuffer) Pointer() unsafe.Pointer {
	return nil
}

func (pb *PinnedBuffer) Size() int {
	return 0
}

func (pb *PinnedBuffer) Bytes() []byte {
	return nil
}
