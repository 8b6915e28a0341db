package models

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrInconsistentShape is returned when the slices of a stack differ in
	// shape or when the data length does not match the declared shape.
	ErrInconsistentShape = errors.New("inconsistent shape")

	// ErrEmptyStack is returned when a stack is built from zero slices.
	ErrEmptyStack = errors.New("empty stack")
)

// Array is an N-dimensional numeric array stored in row-major order.
// A background image stack is an Array with Shape (D, Y, X), where D is the
// index, Z or T axis and Y/X are the spatial axes.
type Array struct {
	// Data holds the values in row-major order
	Data []float64

	// Shape holds the length of every axis
	Shape []int

	// Mask marks invalid elements when non-nil (true = masked)
	Mask []bool
}

// NewArray wraps data with the given shape. The data is not copied.
func NewArray(data []float64, shape ...int) *Array {
	return &Array{Data: data, Shape: shape}
}

// Dims returns the number of axes
func (a *Array) Dims() int {
	return len(a.Shape)
}

// Len returns the number of elements implied by the shape
func (a *Array) Len() int {
	n := 1
	for _, s := range a.Shape {
		n *= s
	}
	return n
}

// Validate checks that the shape, data and mask agree with each other.
func (a *Array) Validate() error {
	for i, s := range a.Shape {
		if s < 0 {
			return fmt.Errorf("%w: axis %d has negative length %d", ErrInconsistentShape, i, s)
		}
	}
	if a.Len() != len(a.Data) {
		return fmt.Errorf("%w: shape %v needs %d elements, data has %d",
			ErrInconsistentShape, a.Shape, a.Len(), len(a.Data))
	}
	if a.Mask != nil && len(a.Mask) != len(a.Data) {
		return fmt.Errorf("%w: mask has %d entries, data has %d",
			ErrInconsistentShape, len(a.Mask), len(a.Data))
	}
	return nil
}

// Valid reports whether the element at flat index i takes part in statistics.
// Masked and NaN elements are invalid.
func (a *Array) Valid(i int) bool {
	if a.Mask != nil && a.Mask[i] {
		return false
	}
	return !math.IsNaN(a.Data[i])
}

// Values returns the valid elements. When nothing is masked the backing
// slice is returned as is.
func (a *Array) Values() []float64 {
	if a.Mask == nil && !hasNaN(a.Data) {
		return a.Data
	}
	out := make([]float64, 0, len(a.Data))
	for i, v := range a.Data {
		if a.Valid(i) {
			out = append(out, v)
		}
	}
	return out
}

// Index3 returns the flat index of (z, y, x) in a three dimensional array.
func (a *Array) Index3(z, y, x int) int {
	return (z*a.Shape[1]+y)*a.Shape[2] + x
}

// MaskWhere masks every element for which fn returns true and returns the
// array for chaining.
func (a *Array) MaskWhere(fn func(v float64) bool) *Array {
	if a.Mask == nil {
		a.Mask = make([]bool, len(a.Data))
	}
	for i, v := range a.Data {
		if fn(v) {
			a.Mask[i] = true
		}
	}
	return a
}

// FromSlices builds a (D, Y, X) stack from nested slices. Every slice must
// have the same number of rows and every row the same number of columns.
func FromSlices(slices [][][]float64) (*Array, error) {
	if len(slices) == 0 {
		return nil, ErrEmptyStack
	}

	height := len(slices[0])
	width := 0
	if height > 0 {
		width = len(slices[0][0])
	}

	data := make([]float64, 0, len(slices)*height*width)
	for z, slice := range slices {
		if len(slice) != height {
			return nil, fmt.Errorf("%w: slice %d has %d rows, expected %d",
				ErrInconsistentShape, z, len(slice), height)
		}
		for y, row := range slice {
			if len(row) != width {
				return nil, fmt.Errorf("%w: slice %d row %d has %d columns, expected %d",
					ErrInconsistentShape, z, y, len(row), width)
			}
			data = append(data, row...)
		}
	}

	return NewArray(data, len(slices), height, width), nil
}

// FromImages builds a (D, Y, X) stack from grayscale-converted images, one
// image per slice. Intensities are normalized to [0, 1].
func FromImages(images []image.Image) (*Array, error) {
	if len(images) == 0 {
		return nil, ErrEmptyStack
	}

	bounds := images[0].Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	data := make([]float64, 0, len(images)*width*height)
	for z, img := range images {
		b := img.Bounds()
		if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("%w: image %d is %dx%d, expected %dx%d",
				ErrInconsistentShape, z, b.Dx(), b.Dy(), width, height)
		}
		data = append(data, imageToFloat(img)...)
	}

	return NewArray(data, len(images), height, width), nil
}

// imageToFloat converts an image to luminance values in row-major order
func imageToFloat(img image.Image) []float64 {
	bounds := img.Bounds()
	out := make([]float64, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma
			gray := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			out = append(out, gray/65535.0)
		}
	}
	return out
}

func hasNaN(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
