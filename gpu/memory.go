//go:build (linux || windows) && cgo && cuda

// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package gpu

/*
#cgo LDFLAGS: -lcudart

#include <cuda_runtime.h>

// Allocate pinned host memory so sequence uploads bypass the pageable
// staging copy.
void* cuda_host_alloc(size_t size) {
    void* ptr = NULL;
    cudaHostAlloc(&ptr, size, cudaHostAllocDefault);
    return ptr;
}

// Free pinned host memory
void cuda_host_free(void* ptr) {
    if (ptr != NULL) {
        cudaFreeHost(ptr);
    }
}
*/
import "C"
import "unsafe"

// PinnedBuffer is page-locked host memory used to stage large sequence
// buffers ahead of digitization, so CUDA transfers run at full
// bandwidth.
type PinnedBuffer struct {
	ptr  unsafe.Pointer
	size int
}

// NewPinnedBuffer allocates pinned host memory. Returns nil when the
// allocation fails; callers fall back to the pageable path.
func NewPinnedBuffer(size int) *PinnedBuffer {
	if size <= 0 {
		return nil
	}
	ptr := C.cuda_host_alloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	return &PinnedBuffer{ptr: ptr, size: size}
}

// Free releases the pinned buffer
func (pb *PinnedBuffer) Free() {
	if pb.ptr != nil {
		C.cuda_host_free(pb.ptr)
		pb.ptr = nil
	}
}

// Pointer returns the buffer pointer
func (pb *PinnedBuffer) Pointer() unsafe.Pointer {
	return pb.ptr
}

// Size returns the buffer size
func (pb *PinnedBuffer) Size() int {
	return pb.size
}

// Bytes returns the buffer as a byte slice (for reading/writing)
func (pb *PinnedBuffer) Bytes() []byte {
	if pb.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(pb.ptr), pb.size)
}
