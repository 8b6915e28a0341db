// Package analyzer provides whole-stack statistics for background images:
// percentile thresholds, moments and normality tests.
package analyzer

import (
	"fmt"
	"io"
	"log"
	"os"

	"gonum.org/v1/gonum/stat"

	"bgbootstrap/internal/models"
	"bgbootstrap/pkg/normality"
	"bgbootstrap/pkg/stats"
)

// DefaultAlpha is the usual significance level for the Shapiro-Wilk test
const DefaultAlpha = 0.05

// Analyzer evaluates where a value lies in the distribution of background
// data and whether that distribution looks Gaussian.
type Analyzer struct {
	// values are the samples, shared with the caller
	values []float64

	// out receives the printed test reports
	out io.Writer
}

// New creates an analyzer over values. The slice is not copied; arrays of
// any shape are passed in flattened row-major form. Values are used as
// given: a NaN makes ComputeConfidence return NaN. Use FromArray to drop
// NaN and masked elements.
func New(values []float64) *Analyzer {
	return &Analyzer{
		values: values,
		out:    os.Stdout,
	}
}

// FromArray creates an analyzer over the valid (unmasked, non-NaN)
// elements of arr.
func FromArray(arr *models.Array) *Analyzer {
	return New(arr.Values())
}

// SetOutput sets the destination of the test reports
func (a *Analyzer) SetOutput(w io.Writer) {
	a.out = w
}

// ComputeConfidence returns the value at the given percentile (0-100) of
// the data. A threshold of 95 is the value above which the top 5% lies.
func (a *Analyzer) ComputeConfidence(threshold float64) (float64, error) {
	return stats.Percentile(a.values, threshold)
}

// Mean returns the mean of the data
func (a *Analyzer) Mean() float64 {
	return stat.Mean(a.values, nil)
}

// Variance returns the population variance of the data
func (a *Analyzer) Variance() float64 {
	_, variance := stats.PopMeanVariance(a.values)
	return variance
}

// Shapiro runs the Shapiro-Wilk test and reports whether the data looks
// Gaussian, i.e. the p-value exceeds alpha. The statistic and p-value are
// always printed; the verdict only when pleasePrint is set.
func (a *Analyzer) Shapiro(alpha float64, pleasePrint bool) (bool, error) {
	if len(a.values) > normality.ShapiroMaxReliable {
		log.Printf("Warning: Shapiro-Wilk p-value may not be accurate for N > %d (N = %d)",
			normality.ShapiroMaxReliable, len(a.values))
	}

	res, err := normality.ShapiroWilk(a.values)
	if err != nil {
		return false, fmt.Errorf("shapiro-wilk test failed: %w", err)
	}
	fmt.Fprintf(a.out, "Statistics=%.3f, p=%.3f\n", res.Statistic, res.PValue)

	isGaussian := res.PValue > alpha
	if pleasePrint {
		if isGaussian {
			fmt.Fprintln(a.out, "Sample looks Gaussian (fail to reject H0)")
		} else {
			fmt.Fprintln(a.out, "Sample does not look Gaussian (reject H0)")
		}
	}
	return isGaussian, nil
}

// AndersonDarling runs the Anderson-Darling test and reports whether the
// data is normal at every significance level offered by the test.
func (a *Analyzer) AndersonDarling(pleasePrint bool) (bool, error) {
	res, err := normality.AndersonDarling(a.values)
	if err != nil {
		return false, fmt.Errorf("anderson-darling test failed: %w", err)
	}

	if pleasePrint {
		fmt.Fprintf(a.out, "Statistic: %.3f\n", res.Statistic)
		for i, cv := range res.CriticalValues {
			sl := res.SignificanceLevels[i]
			if res.Accepts(i) {
				fmt.Fprintf(a.out, "%.3f: %.3f, data looks normal (fail to reject H0)\n", sl, cv)
			} else {
				fmt.Fprintf(a.out, "%.3f: %.3f, data does not look normal (reject H0)\n", sl, cv)
			}
		}
	}
	return res.Normal(), nil
}
