package normality

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Significance levels (percent) and base critical values for the normal case
var (
	andersonSignificance = []float64{15, 10, 5, 2.5, 1}
	andersonBaseCritical = []float64{0.576, 0.656, 0.787, 0.918, 1.092}
)

// AndersonResult holds the outcome of an Anderson-Darling test
type AndersonResult struct {
	// Statistic is A^2
	Statistic float64

	// CriticalValues holds one critical value per significance level
	CriticalValues []float64

	// SignificanceLevels are in percent, from the loosest to the strictest
	SignificanceLevels []float64
}

// Normal reports whether the statistic is below every critical value, i.e.
// normality is not rejected at any of the offered significance levels.
func (r AndersonResult) Normal() bool {
	normal := true
	for i := range r.CriticalValues {
		normal = normal && r.Accepts(i)
	}
	return normal
}

// Accepts reports whether normality is not rejected at level i
func (r AndersonResult) Accepts(i int) bool {
	return r.Statistic < r.CriticalValues[i]
}

// AndersonDarling runs the Anderson-Darling test for normality on x.
// x is not modified.
func AndersonDarling(x []float64) (AndersonResult, error) {
	n := len(x)
	if n < 2 {
		return AndersonResult{}, fmt.Errorf("%w: anderson-darling needs at least 2, got %d", ErrTooFewSamples, n)
	}

	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Float64s(sorted)

	mean, sd := stat.MeanStdDev(sorted, nil)
	if sd == 0 {
		return AndersonResult{}, ErrZeroRange
	}

	norm := distuv.UnitNormal
	an := float64(n)

	sum := 0.0
	for i := 0; i < n; i++ {
		lo := (sorted[i] - mean) / sd
		hi := (sorted[n-1-i] - mean) / sd
		sum += float64(2*i+1) * (math.Log(norm.CDF(lo)) + math.Log(norm.Survival(hi)))
	}
	a2 := -an - sum/an

	critical := make([]float64, len(andersonBaseCritical))
	scale := 1 + 4/an - 25/(an*an)
	for i, c := range andersonBaseCritical {
		critical[i] = math.Round(c/scale*1000) / 1000
	}

	levels := make([]float64, len(andersonSignificance))
	copy(levels, andersonSignificance)

	return AndersonResult{
		Statistic:          a2,
		CriticalValues:     critical,
		SignificanceLevels: levels,
	}, nil
}
