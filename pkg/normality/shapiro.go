// Package normality implements hypothesis tests for normality of a sample.
//
// ShapiroWilk follows Royston's algorithm AS R94 (1995), the reference
// implementation used by most statistical packages. AndersonDarling tests
// against a normal distribution with mean and standard deviation estimated
// from the sample.
package normality

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrTooFewSamples is returned when a test needs more data points
	ErrTooFewSamples = errors.New("too few samples")

	// ErrZeroRange is returned when every sample has the same value
	ErrZeroRange = errors.New("all samples are identical")
)

// ShapiroMaxReliable is the sample size above which the W statistic stays
// accurate but the p-value approximation is no longer validated.
const ShapiroMaxReliable = 5000

// Polynomial coefficients of AS R94
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroResult holds the outcome of a Shapiro-Wilk test
type ShapiroResult struct {
	// Statistic is W, in (0, 1]; values near 1 indicate normality
	Statistic float64

	// PValue is the probability of a W this small under normality
	PValue float64

	// N is the sample size
	N int
}

// ShapiroWilk runs the Shapiro-Wilk test on x. x is not modified.
func ShapiroWilk(x []float64) (ShapiroResult, error) {
	n := len(x)
	if n < 3 {
		return ShapiroResult{}, fmt.Errorf("%w: shapiro-wilk needs at least 3, got %d", ErrTooFewSamples, n)
	}

	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Float64s(sorted)

	if sorted[n-1]-sorted[0] == 0 {
		return ShapiroResult{}, ErrZeroRange
	}

	a := shapiroCoefficients(n)

	// W is the squared correlation between the order statistics and a
	mean := 0.0
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(n)

	var num, ssq float64
	for i, v := range sorted {
		d := v - mean
		num += a[i] * d
		ssq += d * d
	}
	w := num * num / ssq
	if w > 1 {
		w = 1
	}

	return ShapiroResult{Statistic: w, PValue: shapiroPValue(w, n), N: n}, nil
}

// shapiroCoefficients returns the antisymmetric weights a_1..a_n
func shapiroCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
		return a
	}

	norm := distuv.UnitNormal
	an := float64(n)

	// expected normal order statistics, Blom's approximation
	m := make([]float64, n)
	summ2 := 0.0
	for i := range m {
		m[i] = norm.Quantile((float64(i+1) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	last := m[n-1] / ssumm2
	an1 := poly(swC1, rsn) + last

	var phi float64
	tail := 1
	if n > 5 {
		tail = 2
		an2 := poly(swC2, rsn) + m[n-2]/ssumm2
		phi = (summ2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
			(1 - 2*an1*an1 - 2*an2*an2)
		a[n-2], a[1] = an2, -an2
	} else {
		phi = (summ2 - 2*m[n-1]*m[n-1]) / (1 - 2*an1*an1)
	}
	a[n-1], a[0] = an1, -an1

	sphi := math.Sqrt(phi)
	for i := tail; i < n-tail; i++ {
		a[i] = m[i] / sphi
	}
	return a
}

// shapiroPValue approximates the upper tail probability of W
func shapiroPValue(w float64, n int) float64 {
	an := float64(n)
	if n == 3 {
		const pi6 = 6 / math.Pi
		const stqr = math.Pi / 3 // asin(sqrt(3/4))
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return math.Max(p, 0)
	}

	w1 := math.Log(1 - w)
	var y, mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, an)
		if w1 >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - w1)
		mu = poly(swC3, an)
		sigma = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		y = w1
		mu = poly(swC5, xx)
		sigma = math.Exp(poly(swC6, xx))
	}

	return distuv.Normal{Mu: mu, Sigma: sigma}.Survival(y)
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	res := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		res = res*x + c[i]
	}
	return res
}
