// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package blitzar

import (
	"fmt"

	"github.com/gtank/ristretto255"
)

// SequenceDescriptor describes one variable-width integer sequence to be
// committed. Elements are packed little-endian, ElementNBytes bytes
// each; signed sequences are two's complement.
//
// Constraints: ElementNBytes must be a power of two in [1, 32]; signed
// sequences are limited to ElementNBytes <= 16; Data must hold a whole
// number of elements. Violations are programmer errors and panic.
type SequenceDescriptor struct {
	// ElementNBytes is the byte width of each element.
	ElementNBytes int
	// IsSigned marks the elements as two's complement.
	IsSigned bool
	// Data is the packed element buffer, owned by the caller.
	Data []byte
}

// NumElements returns the number of elements described.
func (d *SequenceDescriptor) NumElements() int {
	if d.ElementNBytes == 0 {
		return 0
	}
	return len(d.Data) / d.ElementNBytes
}

// validate panics on any constraint violation. Misuse here is a
// programmer error, not a recoverable condition.
func (d *SequenceDescriptor) validate() {
	w := d.ElementNBytes
	if w < 1 || w > 32 || w&(w-1) != 0 {
		panic(fmt.Sprintf("blitzar: element width %d not a power of two in [1, 32]", w))
	}
	if d.IsSigned && w > 16 {
		panic(fmt.Sprintf("blitzar: signed element width %d exceeds 16", w))
	}
	if len(d.Data)%w != 0 {
		panic(fmt.Sprintf("blitzar: data length %d not a multiple of element width %d", len(d.Data), w))
	}
}

// elementBytes returns the raw little-endian bytes of element i.
func (d *SequenceDescriptor) elementBytes(i int) []byte {
	w := d.ElementNBytes
	return d.Data[i*w : (i+1)*w]
}

// isNarrow reports whether elements fit a machine word. Narrow
// sequences are consumed by the MSM engine without materializing field
// scalars, which is what keeps the wide-batch paths bandwidth-bound
// rather than reduction-bound.
func (d *SequenceDescriptor) isNarrow() bool {
	return d.ElementNBytes <= 8
}

// wordAt interprets element i of a narrow sequence as a value and a
// sign. For unsigned sequences neg is always false. For signed
// sequences the returned magnitude is |e|, with the most negative value
// of each width wrapping to its own magnitude as two's complement does.
func (d *SequenceDescriptor) wordAt(i int) (magnitude uint64, neg bool) {
	e := d.elementBytes(i)
	var v uint64
	for k := len(e) - 1; k >= 0; k-- {
		v = v<<8 | uint64(e[k])
	}
	if !d.IsSigned {
		return v, false
	}
	signBit := uint64(1) << (uint(len(e))*8 - 1)
	if v&signBit == 0 {
		return v, false
	}
	width := uint(len(e)) * 8
	mag := (^v + 1)
	if width < 64 {
		mag &= (uint64(1) << width) - 1
	}
	return mag, true
}

// scalarAt lifts element i into the scalar field: zero extension for
// unsigned sequences, sign extension and reduction mod l for signed
// (negative values map to l - |e|). The lift goes through the wide
// 512-bit reduction so that 32-byte elements above the group order
// reduce canonically.
func (d *SequenceDescriptor) scalarAt(i int) *ristretto255.Scalar {
	e := d.elementBytes(i)
	var wide [64]byte
	if !d.IsSigned || e[len(e)-1]&0x80 == 0 {
		copy(wide[:], e)
		return ristretto255.NewScalar().FromUniformBytes(wide[:])
	}
	// Negative: lift the two's-complement magnitude, then negate.
	carry := 1
	for k := 0; k < len(e); k++ {
		v := int(^e[k]&0xff) + carry
		wide[k] = byte(v)
		carry = v >> 8
	}
	s := ristretto255.NewScalar().FromUniformBytes(wide[:])
	return s.Negate(s)
}

// maxSequenceLength returns the longest element count in the batch.
func maxSequenceLength(descriptors []SequenceDescriptor) int {
	maxN := 0
	for i := range descriptors {
		if n := descriptors[i].NumElements(); n > maxN {
			maxN = n
		}
	}
	return maxN
}
