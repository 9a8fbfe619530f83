// Package bitmap provides the single-channel pixel buffer written by blankpng.
//
// A Bitmap owns one contiguous slice of 8-bit grayscale samples in row-major
// order. Row access goes through RowTable, a non-owning view that must not
// outlive the Bitmap it was built from.
package bitmap

import (
	"errors"
	"fmt"
	"image"
)

// Common errors for bitmap operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("bitmap: invalid dimensions")

	// ErrOutOfMemory is returned when the sample buffer cannot be allocated.
	ErrOutOfMemory = errors.New("bitmap: out of memory")

	// ErrReleased is returned when a released bitmap is used.
	ErrReleased = errors.New("bitmap: use after release")
)

// BytesPerPixel is the sample size of a grayscale 8-bit bitmap.
const BytesPerPixel = 1

// Bitmap is a W x H buffer of 8-bit gray samples.
//
// Thread safety: a Bitmap is not safe for concurrent mutation.
type Bitmap struct {
	data   []byte
	width  int
	height int
	alloc  Allocator
}

// New allocates a width x height bitmap from alloc and sets every sample to
// fill. A nil alloc uses the process heap.
func New(width, height int, fill uint8, alloc Allocator) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	n, ok := ImageBytes(width, height)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrOutOfMemory, width, height)
	}
	if alloc == nil {
		alloc = Heap
	}

	data, err := alloc.Alloc(n)
	if err != nil {
		return nil, err
	}

	b := &Bitmap{
		data:   data,
		width:  width,
		height: height,
		alloc:  alloc,
	}
	b.Fill(fill)
	return b, nil
}

// ImageBytes returns width*height*BytesPerPixel and whether it fits in an int.
func ImageBytes(width, height int) (int, bool) {
	if width <= 0 || height <= 0 {
		return 0, false
	}
	row := width * BytesPerPixel
	if row/BytesPerPixel != width {
		return 0, false
	}
	n := row * height
	if n/height != row {
		return 0, false
	}
	return n, true
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int {
	return b.width
}

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int {
	return b.height
}

// Stride returns the number of bytes per row.
func (b *Bitmap) Stride() int {
	return b.width * BytesPerPixel
}

// Data returns the raw sample slice, or nil after Release.
func (b *Bitmap) Data() []byte {
	return b.data
}

// ByteSize returns the total size of the sample data in bytes.
func (b *Bitmap) ByteSize() int {
	return len(b.data)
}

// RowBytes returns the samples of row y.
// Returns nil if y is out of bounds or the bitmap was released.
func (b *Bitmap) RowBytes(y int) []byte {
	if b.data == nil || y < 0 || y >= b.height {
		return nil
	}
	start := y * b.Stride()
	end := start + b.Stride()
	return b.data[start:end:end]
}

// At returns the sample at (x, y), or 0 if out of bounds.
func (b *Bitmap) At(x, y int) uint8 {
	if b.data == nil || x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0
	}
	return b.data[y*b.Stride()+x]
}

// Fill sets every sample to v.
func (b *Bitmap) Fill(v uint8) {
	if v == 0 {
		clear(b.data)
		return
	}
	for i := range b.data {
		b.data[i] = v
	}
}

// Gray returns an image.Gray sharing the bitmap's samples.
// Writes through the returned image modify the bitmap.
func (b *Bitmap) Gray() *image.Gray {
	return &image.Gray{
		Pix:    b.data,
		Stride: b.Stride(),
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

// Released reports whether Release has been called.
func (b *Bitmap) Released() bool {
	return b.data == nil
}

// Release returns the samples to the allocator. Calling it twice is a no-op.
func (b *Bitmap) Release() {
	if b.data == nil {
		return
	}
	b.alloc.Free(b.data)
	b.data = nil
}
