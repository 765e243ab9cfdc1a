// Package morphology implements flat grayscale morphology on gonum matrices:
// erosion, dilation, opening, closing, top-hat transforms and reconstruction
// by dilation. Every operation honours an optional mask of valid pixels.
package morphology

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyImage is returned when an operation receives a nil or empty matrix.
	ErrEmptyImage = errors.New("morphology: empty image")

	// ErrShapeMismatch is returned when a mask or a second image does not
	// have the same dimensions as the image being processed.
	ErrShapeMismatch = errors.New("morphology: shape mismatch")
)

// Mask marks the pixels that take part in a computation. A nil *Mask
// includes every pixel.
type Mask struct {
	rows, cols int
	data       []bool
}

// NewMask returns a mask of the given size with every pixel included.
func NewMask(rows, cols int) *Mask {
	data := make([]bool, rows*cols)
	for i := range data {
		data[i] = true
	}
	return &Mask{rows: rows, cols: cols, data: data}
}

// NewMaskFrom wraps row-major data as a mask. The slice is used directly.
func NewMaskFrom(rows, cols int, data []bool) (*Mask, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("morphology: invalid mask size %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: mask data has %d entries, want %d", ErrShapeMismatch, len(data), rows*cols)
	}
	return &Mask{rows: rows, cols: cols, data: data}, nil
}

// Dims returns the number of rows and columns of the mask.
func (m *Mask) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// At reports whether the pixel at (r, c) is included.
func (m *Mask) At(r, c int) bool {
	return m.data[r*m.cols+c]
}

// Set includes or excludes the pixel at (r, c).
func (m *Mask) Set(r, c int, v bool) {
	m.data[r*m.cols+c] = v
}

// Count returns the number of included pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	data := make([]bool, len(m.data))
	copy(data, m.data)
	return &Mask{rows: m.rows, cols: m.cols, data: data}
}

// includes is the nil-safe lookup used by the filters.
func (m *Mask) includes(r, c int) bool {
	return m == nil || m.data[r*m.cols+c]
}

// CheckShape verifies that img is non-empty and that mask, when present,
// has the same dimensions.
func CheckShape(img *mat.Dense, mask *Mask) error {
	if img == nil || img.IsEmpty() {
		return ErrEmptyImage
	}
	if mask == nil {
		return nil
	}
	rows, cols := img.Dims()
	if mask.rows != rows || mask.cols != cols {
		return fmt.Errorf("%w: image is %dx%d, mask is %dx%d", ErrShapeMismatch, rows, cols, mask.rows, mask.cols)
	}
	return nil
}
