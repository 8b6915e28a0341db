package models

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// TestFromSlices verifies that nested slices are flattened in row-major order
func TestFromSlices(t *testing.T) {
	slices := [][][]float64{
		{{1, 2, 3}, {4, 5, 6}},
		{{7, 8, 9}, {10, 11, 12}},
	}

	arr, err := FromSlices(slices)
	if err != nil {
		t.Fatalf("FromSlices failed: %v", err)
	}

	if arr.Dims() != 3 {
		t.Fatalf("Expected 3 dimensions, got %d", arr.Dims())
	}
	if arr.Shape[0] != 2 || arr.Shape[1] != 2 || arr.Shape[2] != 3 {
		t.Errorf("Unexpected shape %v", arr.Shape)
	}

	for z := range slices {
		for y := range slices[z] {
			for x := range slices[z][y] {
				if got := arr.Data[arr.Index3(z, y, x)]; got != slices[z][y][x] {
					t.Errorf("Element (%d,%d,%d): expected %f, got %f", z, y, x, slices[z][y][x], got)
				}
			}
		}
	}
}

// TestFromSlicesInconsistent verifies that ragged stacks are rejected
func TestFromSlicesInconsistent(t *testing.T) {
	tests := []struct {
		name   string
		slices [][][]float64
	}{
		{"different row count", [][][]float64{{{1, 2}, {3, 4}}, {{1, 2}}}},
		{"different column count", [][][]float64{{{1, 2}, {3, 4}}, {{1, 2}, {3}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSlices(tt.slices)
			if !errors.Is(err, ErrInconsistentShape) {
				t.Errorf("Expected ErrInconsistentShape, got %v", err)
			}
		})
	}

	if _, err := FromSlices(nil); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("Expected ErrEmptyStack, got %v", err)
	}
}

// TestFromImages verifies image conversion and the size check
func TestFromImages(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 4, 3))
	img.SetGray16(1, 2, color.Gray16{Y: 65535})

	arr, err := FromImages([]image.Image{img, img})
	if err != nil {
		t.Fatalf("FromImages failed: %v", err)
	}
	if arr.Shape[0] != 2 || arr.Shape[1] != 3 || arr.Shape[2] != 4 {
		t.Fatalf("Unexpected shape %v", arr.Shape)
	}
	if v := arr.Data[arr.Index3(1, 2, 1)]; math.Abs(v-1.0) > 1e-9 {
		t.Errorf("Expected white pixel to be 1.0, got %f", v)
	}
	if v := arr.Data[arr.Index3(0, 0, 0)]; v != 0 {
		t.Errorf("Expected black pixel to be 0, got %f", v)
	}

	other := image.NewGray16(image.Rect(0, 0, 5, 3))
	if _, err := FromImages([]image.Image{img, other}); !errors.Is(err, ErrInconsistentShape) {
		t.Errorf("Expected ErrInconsistentShape, got %v", err)
	}
}

// TestValidate covers shape, data and mask mismatches
func TestValidate(t *testing.T) {
	if err := NewArray(make([]float64, 6), 1, 2, 3).Validate(); err != nil {
		t.Errorf("Expected valid array, got %v", err)
	}
	if err := NewArray(make([]float64, 5), 1, 2, 3).Validate(); !errors.Is(err, ErrInconsistentShape) {
		t.Errorf("Expected ErrInconsistentShape for short data, got %v", err)
	}

	arr := NewArray(make([]float64, 6), 2, 3)
	arr.Mask = make([]bool, 4)
	if err := arr.Validate(); !errors.Is(err, ErrInconsistentShape) {
		t.Errorf("Expected ErrInconsistentShape for short mask, got %v", err)
	}
}

// TestValues verifies that masked and NaN elements are excluded
func TestValues(t *testing.T) {
	arr := NewArray([]float64{1, 8, math.NaN(), 4, 8}, 5)
	if got := len(arr.Values()); got != 4 {
		t.Errorf("Expected 4 non-NaN values, got %d", got)
	}

	arr.MaskWhere(func(v float64) bool { return v == 8 })
	values := arr.Values()
	if len(values) != 2 || values[0] != 1 || values[1] != 4 {
		t.Errorf("Expected [1 4], got %v", values)
	}

	plain := NewArray([]float64{1, 2, 3}, 3)
	if &plain.Values()[0] != &plain.Data[0] {
		t.Error("Expected unmasked values to share the backing slice")
	}
}

// TestSpan covers span and region sizes
func TestSpan(t *testing.T) {
	r := Region{Y: Span{Start: 2, Stop: 5}, X: Span{Start: 0, Stop: 4}}
	if r.Area() != 12 {
		t.Errorf("Expected area 12, got %d", r.Area())
	}
	if (Span{Start: 3, Stop: 1}).Len() != 0 {
		t.Error("Expected inverted span to be empty")
	}
}
