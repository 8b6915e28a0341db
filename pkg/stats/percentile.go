// Package stats provides the percentile and moment primitives shared by the
// analyzer and the bootstrapper.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmpty is returned when a statistic is requested over no values
	ErrEmpty = errors.New("empty input")

	// ErrThresholdRange is returned for percentiles outside [0, 100]
	ErrThresholdRange = errors.New("percentile must be in the range [0, 100]")
)

// Method selects the quantile interpolation convention
type Method int

const (
	// Linear interpolates between the two closest order statistics at
	// virtual index (n-1)*p. This is the default convention of numpy.
	Linear Method = iota

	// Empirical returns the smallest value whose empirical CDF reaches p
	Empirical

	// LinInterp interpolates the empirical CDF linearly
	LinInterp
)

// Percentile returns the q-th percentile (0-100) of x using the Linear
// convention. x is not modified.
func Percentile(x []float64, q float64) (float64, error) {
	if err := ValidatePercentile(q); err != nil {
		return 0, err
	}
	return Quantile(x, q/100, Linear)
}

// ValidatePercentile returns ErrThresholdRange unless q is in [0, 100]
func ValidatePercentile(q float64) error {
	if q < 0 || q > 100 || math.IsNaN(q) {
		return fmt.Errorf("%w: got %g", ErrThresholdRange, q)
	}
	return nil
}

// Quantile returns the p-quantile (0-1) of x with the given method.
// x is copied and sorted; callers holding sorted data can use
// SortedQuantile instead. Any NaN in x makes the result NaN.
func Quantile(x []float64, p float64, method Method) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmpty
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: got %g", ErrThresholdRange, p*100)
	}

	if floats.HasNaN(x) {
		return math.NaN(), nil
	}

	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	return SortedQuantile(sorted, p, method), nil
}

// SortedQuantile is Quantile over data already sorted in increasing order.
// It panics on empty input like the gonum routines it wraps.
func SortedQuantile(sorted []float64, p float64, method Method) float64 {
	switch method {
	case Empirical:
		return stat.Quantile(p, stat.Empirical, sorted, nil)
	case LinInterp:
		return stat.Quantile(p, stat.LinInterp, sorted, nil)
	}

	n := len(sorted)
	if n == 0 {
		panic("stats: zero length slice")
	}

	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return lerp(sorted[i], sorted[i+1], h-lo)
}

// lerp interpolates between a and b. For t >= 0.5 it interpolates from b,
// which keeps the result monotonic and exact at t = 1.
func lerp(a, b, t float64) float64 {
	d := b - a
	if t >= 0.5 {
		return b - d*(1-t)
	}
	return a + d*t
}

// PopMeanVariance returns the mean and the population variance of x
func PopMeanVariance(x []float64) (mean, variance float64) {
	return stat.PopMeanVariance(x, nil)
}
