/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package tensor provides non-owning views over the flat float32 buffers
// produced by the inference engine, and checked descriptors for addressing
// sub-tensors packed inside them.
package tensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"
)

var (
	// ErrNilTensor is returned when the caller hands over no buffer at all.
	ErrNilTensor = errors.New("tensor: nil buffer")
	// ErrOutOfBounds is returned when a read falls outside the view.
	ErrOutOfBounds = errors.New("tensor: index out of bounds")
)

var hostLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// View is a read-only window over a float32 buffer owned by the caller.
// The view never copies the data it was built from.
type View struct {
	data []float32
}

// NewView wraps data. A nil slice is rejected, an empty one is not.
func NewView(data []float32) (View, error) {
	if data == nil {
		return View{}, ErrNilTensor
	}
	return View{data: data}, nil
}

// FromBytes builds a view over a raw little-endian float32 buffer, as
// delivered by a sensor channel. Trailing bytes that do not form a whole
// float are ignored. When raw is 4-byte aligned on a little-endian host the
// view aliases raw; otherwise the values are decoded into a new slice.
func FromBytes(raw []byte) (View, error) {
	if raw == nil {
		return View{}, ErrNilTensor
	}
	n := len(raw) / 4
	if n == 0 {
		return View{data: []float32{}}, nil
	}
	if hostLittleEndian && uintptr(unsafe.Pointer(&raw[0]))%4 == 0 {
		return View{data: unsafe.Slice((*float32)(unsafe.Pointer(&raw[0])), n)}, nil
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return View{data: data}, nil
}

// Len returns the number of float32 elements.
func (v View) Len() int { return len(v.data) }

// Data exposes the underlying slice. Callers must not modify it.
func (v View) Data() []float32 { return v.data }

// At returns element i.
func (v View) At(i int) (float32, error) {
	if i < 0 || i >= len(v.data) {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfBounds, i, len(v.data))
	}
	return v.data[i], nil
}

// Slice returns n elements starting at off.
func (v View) Slice(off, n int) ([]float32, error) {
	if off < 0 || n < 0 || off+n > len(v.data) {
		return nil, fmt.Errorf("%w: [%d,%d) not in [0,%d)", ErrOutOfBounds, off, off+n, len(v.data))
	}
	return v.data[off : off+n : off+n], nil
}
