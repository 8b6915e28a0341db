package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"bgbootstrap/internal/models"
)

// Viewer renders a threshold map as a grayscale image, one square block of
// cellSize pixels per grid cell. The darkest block is the lowest threshold.
type Viewer struct {
	// thresholds holds one value per grid cell
	thresholds mat.Matrix

	// cellSize is the edge length of a block in pixels
	cellSize int
}

// NewViewer creates a viewer for a threshold map
func NewViewer(thresholds mat.Matrix, cellSize int) *Viewer {
	if cellSize < 1 {
		cellSize = 1
	}
	return &Viewer{
		thresholds: thresholds,
		cellSize:   cellSize,
	}
}

// Render draws the map, scaling values linearly between the map's minimum
// and maximum. A constant map renders mid-gray.
func (v *Viewer) Render() image.Image {
	rows, cols := v.thresholds.Dims()
	values := denseData(v.thresholds)
	lo, hi := floats.Min(values), floats.Max(values)

	img := image.NewGray16(image.Rect(0, 0, cols*v.cellSize, rows*v.cellSize))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			level := 0.5
			if hi > lo {
				level = (v.thresholds.At(r, c) - lo) / (hi - lo)
			}
			gray := color.Gray16{Y: toGray16(level)}
			for y := r * v.cellSize; y < (r+1)*v.cellSize; y++ {
				for x := c * v.cellSize; x < (c+1)*v.cellSize; x++ {
					img.SetGray16(x, y, gray)
				}
			}
		}
	}
	return img
}

// Save renders the map and writes it to filename. The format follows the
// extension: .png, or .jpg/.jpeg.
func (v *Viewer) Save(filename string) error {
	return SaveImage(v.Render(), filename)
}

// ExtractSlice returns slice z of a (D, Y, X) stack as a grayscale image.
// Values are clamped to [0, 1]; masked and NaN pixels are black.
func ExtractSlice(stack *models.Array, z int) (image.Image, error) {
	if stack.Dims() != 3 {
		return nil, fmt.Errorf("stack must be 3D, got %d dimensions", stack.Dims())
	}
	depth, height, width := stack.Shape[0], stack.Shape[1], stack.Shape[2]
	if z < 0 || z >= depth {
		return nil, fmt.Errorf("position %d exceeds depth %d", z, depth)
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := stack.Index3(z, y, x)
			if !stack.Valid(idx) {
				continue
			}
			img.SetGray16(x, y, color.Gray16{Y: toGray16(stack.Data[idx])})
		}
	}
	return img, nil
}

// SaveSliceSequence writes every slice of a stack to outputDir as JPEG
// after scaling the whole stack to [0, 1].
func SaveSliceSequence(stack *models.Array, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	scaled := normalize(stack)
	for z := 0; z < stack.Shape[0]; z++ {
		img, err := ExtractSlice(scaled, z)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_z_%03d.jpg", z))
		if err := SaveImage(img, filename); err != nil {
			return err
		}
	}

	return nil
}

// SaveImage encodes img by file extension
func SaveImage(img image.Image, filename string) error {
	var encode func(*os.File) error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 90}) }
	default:
		return fmt.Errorf("unsupported image format: %q", filepath.Ext(filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return encode(file)
}

// normalize returns a copy of stack scaled to [0, 1] over its valid values
func normalize(stack *models.Array) *models.Array {
	out := &models.Array{
		Data:  make([]float64, len(stack.Data)),
		Shape: stack.Shape,
		Mask:  stack.Mask,
	}
	copy(out.Data, stack.Data)

	valid := stack.Values()
	if len(valid) == 0 {
		return out
	}
	lo, hi := floats.Min(valid), floats.Max(valid)
	if hi == lo {
		return out
	}
	floats.AddConst(-lo, out.Data)
	floats.Scale(1/(hi-lo), out.Data)
	return out
}

func denseData(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data = append(data, m.At(r, c))
		}
	}
	return data
}

func toGray16(level float64) uint16 {
	return uint16(math.Max(0, math.Min(65535, level*65535)))
}
