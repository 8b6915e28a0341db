// Package bootstrap estimates spatially local percentile thresholds of a
// background image stack by Monte Carlo resampling.
//
// The (Y, X) plane of a (D, Y, X) stack is divided into a grid of regions.
// For every region, index triples are drawn uniformly with replacement over
// the full depth and the region's rows and columns, and the percentile of the
// sampled values is taken as the region's threshold.
package bootstrap

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"bgbootstrap/internal/models"
	"bgbootstrap/pkg/stats"
)

// DefaultSamples is the number of index triples drawn per region
const DefaultSamples = 10000

var (
	// ErrDimensionality is returned for stacks that are not (D, Y, X)
	ErrDimensionality = errors.New("bootstrapper: stack must be 3D (D, Y, X) where D is index or Z or T")

	// ErrDivisionTooLarge is returned when a spatial axis is shorter than
	// the division, which would leave grid cells without pixels
	ErrDivisionTooLarge = errors.New("bootstrapper: division exceeds spatial axis length")

	// ErrNoValidSamples is returned when every drawn element was masked
	ErrNoValidSamples = errors.New("bootstrapper: no valid samples drawn")

	// ErrNilStack is returned when no stack is given
	ErrNilStack = errors.New("bootstrapper: nil stack")

	// ErrSpanOutOfRange is returned when a sampling span leaves the stack
	ErrSpanOutOfRange = errors.New("bootstrapper: span out of range")
)

// Params holds the bootstrapper configuration
type Params struct {
	// Division is the number of regions per spatial axis. A division of 3
	// gives 9 independently handled patches. Values below 1 mean 1.
	Division int

	// Samples is the number of index triples drawn per region.
	// Zero selects DefaultSamples.
	Samples int

	// Source is the random source for sampling. Nil selects a source
	// seeded from the clock.
	Source rand.Source
}

// Bootstrapper samples a background stack region by region
type Bootstrapper struct {
	// stack is the (D, Y, X) background data, shared with the caller
	stack *models.Array

	division int
	samples  int
	grid     Grid
	rng      *rand.Rand
}

// NewBootstrapper validates the stack and computes the region grid.
// params may be nil for the defaults.
func NewBootstrapper(stack *models.Array, params *Params) (*Bootstrapper, error) {
	if params == nil {
		params = &Params{}
	}

	if stack == nil {
		return nil, ErrNilStack
	}
	if err := stack.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrapper: stack has inconsistent shape / different sizes: %w", err)
	}
	if stack.Dims() != 3 {
		return nil, fmt.Errorf("%w: got %d dimensions", ErrDimensionality, stack.Dims())
	}

	b := &Bootstrapper{
		stack:    stack,
		division: max(params.Division, 1),
		samples:  params.Samples,
	}
	if b.samples <= 0 {
		b.samples = DefaultSamples
	}

	height, width := stack.Shape[1], stack.Shape[2]
	if height < b.division || width < b.division {
		return nil, fmt.Errorf("%w: division %d, plane %dx%d",
			ErrDivisionTooLarge, b.division, height, width)
	}

	src := params.Source
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	b.rng = rand.New(src)

	b.grid = b.ComputeGrid()
	return b, nil
}

// Division returns the number of regions per spatial axis
func (b *Bootstrapper) Division() int {
	return b.division
}

// Samples returns the number of draws per region
func (b *Bootstrapper) Samples() int {
	return b.samples
}

// Grid returns the region grid computed at construction
func (b *Bootstrapper) Grid() Grid {
	return b.grid
}

// ComputeGrid partitions the last two axes of the stack by the division
func (b *Bootstrapper) ComputeGrid() Grid {
	return ComputeGrid(b.stack.Shape[1], b.stack.Shape[2], b.division)
}

// ComputeConfidence returns the threshold map: the bootstrapped percentile
// (0-100) of every grid cell over the full depth, indexed [row, col].
func (b *Bootstrapper) ComputeConfidence(threshold float64) (*mat.Dense, error) {
	rows, cols := b.grid.Shape()
	depth := models.Span{Start: 0, Stop: b.stack.Shape[0]}

	thresholds := mat.NewDense(rows, cols, nil)
	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			cell := b.grid.Cell(row, col)
			v, err := b.ComputeLocalConf(threshold, depth, cell.Y, cell.X)
			if err != nil {
				return nil, fmt.Errorf("region (%d, %d): %w", row, col, err)
			}
			thresholds.Set(row, col, v)
		}
	}
	return thresholds, nil
}

// ComputeLocalConf draws the configured number of (z, y, x) triples, each
// axis uniform over its span, and returns the percentile of the sampled
// values. Masked and NaN elements are dropped from the sample.
func (b *Bootstrapper) ComputeLocalConf(threshold float64, z, y, x models.Span) (float64, error) {
	if err := stats.ValidatePercentile(threshold); err != nil {
		return 0, err
	}
	for axis, s := range []models.Span{z, y, x} {
		if s.Start < 0 || s.Stop > b.stack.Shape[axis] {
			return 0, fmt.Errorf("%w: axis %d span [%d, %d) with length %d",
				ErrSpanOutOfRange, axis, s.Start, s.Stop, b.stack.Shape[axis])
		}
	}
	if z.Len() == 0 || y.Len() == 0 || x.Len() == 0 {
		return 0, fmt.Errorf("%w: empty span", ErrNoValidSamples)
	}

	zs := b.draw(z)
	ys := b.draw(y)
	xs := b.draw(x)

	values := make([]float64, 0, b.samples)
	for i := 0; i < b.samples; i++ {
		idx := b.stack.Index3(zs[i], ys[i], xs[i])
		if b.stack.Valid(idx) {
			values = append(values, b.stack.Data[idx])
		}
	}
	if len(values) == 0 {
		return 0, ErrNoValidSamples
	}

	sort.Float64s(values)
	return stats.SortedQuantile(values, threshold/100, stats.Linear), nil
}

// draw returns Samples indices uniform over the span
func (b *Bootstrapper) draw(s models.Span) []int {
	out := make([]int, b.samples)
	n := s.Len()
	for i := range out {
		out[i] = s.Start + b.rng.Intn(n)
	}
	return out
}

// Mean returns the mean of the valid elements of the whole stack
func (b *Bootstrapper) Mean() float64 {
	mean, _ := stats.PopMeanVariance(b.stack.Values())
	return mean
}

// Variance returns the population variance of the valid elements of the
// whole stack
func (b *Bootstrapper) Variance() float64 {
	_, variance := stats.PopMeanVariance(b.stack.Values())
	return variance
}
