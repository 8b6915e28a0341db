package normality

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// normalScores returns n evenly spaced quantiles of the standard normal,
// an idealized Gaussian sample
func normalScores(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
	}
	return x
}

// exponentialScores returns n evenly spaced quantiles of Exp(1), a strongly
// skewed sample
func exponentialScores(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = -math.Log(1 - (float64(i)+0.5)/float64(n))
	}
	return x
}

// weights is the classic eleven-value sample of Shapiro and Wilk (1965)
var weights = []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}

func TestShapiroWilkReference(t *testing.T) {
	// R: shapiro.test(weights) gives W = 0.78881, p-value = 0.006704
	res, err := ShapiroWilk(weights)
	if err != nil {
		t.Fatalf("ShapiroWilk failed: %v", err)
	}
	if math.Abs(res.Statistic-0.78881) > 1e-5 {
		t.Errorf("Expected W=0.78881, got %.6f", res.Statistic)
	}
	if math.Abs(res.PValue-0.006704) > 1e-5 {
		t.Errorf("Expected p=0.006704, got %.6f", res.PValue)
	}
}

func TestShapiroWilkGaussian(t *testing.T) {
	for _, n := range []int{10, 50, 500, 4000} {
		res, err := ShapiroWilk(normalScores(n))
		if err != nil {
			t.Fatalf("n=%d: ShapiroWilk failed: %v", n, err)
		}
		if res.Statistic < 0.98 || res.Statistic > 1 {
			t.Errorf("n=%d: expected W close to 1, got %f", n, res.Statistic)
		}
		if res.PValue <= 0.05 {
			t.Errorf("n=%d: expected p > 0.05 for Gaussian data, got %g", n, res.PValue)
		}
		if res.N != n {
			t.Errorf("n=%d: result reports N=%d", n, res.N)
		}
	}
}

func TestShapiroWilkSkewed(t *testing.T) {
	res, err := ShapiroWilk(exponentialScores(500))
	if err != nil {
		t.Fatalf("ShapiroWilk failed: %v", err)
	}
	if res.PValue >= 0.05 {
		t.Errorf("Expected exponential data to be rejected, got W=%f p=%g", res.Statistic, res.PValue)
	}

	// single outlier in a small sample goes through the n <= 11 branch
	outlier := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	res, err = ShapiroWilk(outlier)
	if err != nil {
		t.Fatalf("ShapiroWilk failed: %v", err)
	}
	if res.PValue >= 0.05 {
		t.Errorf("Expected outlier sample to be rejected, got W=%f p=%g", res.Statistic, res.PValue)
	}
}

func TestShapiroWilkThreeSamples(t *testing.T) {
	res, err := ShapiroWilk([]float64{3, 1, 2})
	if err != nil {
		t.Fatalf("ShapiroWilk failed: %v", err)
	}
	if math.Abs(res.Statistic-1) > 1e-12 {
		t.Errorf("Expected W=1 for equally spaced points, got %f", res.Statistic)
	}
	if math.Abs(res.PValue-1) > 1e-9 {
		t.Errorf("Expected p=1 for equally spaced points, got %g", res.PValue)
	}

	res, err = ShapiroWilk([]float64{1, 2, 10})
	if err != nil {
		t.Fatalf("ShapiroWilk failed: %v", err)
	}
	if res.Statistic >= 1 || res.PValue >= 1 || res.PValue < 0 {
		t.Errorf("Unexpected result for skewed triple: %+v", res)
	}
}

func TestShapiroWilkErrors(t *testing.T) {
	if _, err := ShapiroWilk([]float64{1, 2}); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("Expected ErrTooFewSamples, got %v", err)
	}
	if _, err := ShapiroWilk([]float64{4, 4, 4, 4}); !errors.Is(err, ErrZeroRange) {
		t.Errorf("Expected ErrZeroRange, got %v", err)
	}
}

func TestShapiroCoefficientsAntisymmetric(t *testing.T) {
	for _, n := range []int{4, 5, 6, 11, 12, 101} {
		a := shapiroCoefficients(n)
		sumSq := 0.0
		for i := range a {
			if math.Abs(a[i]+a[n-1-i]) > 1e-12 {
				t.Errorf("n=%d: a[%d]=%f is not the negative of a[%d]=%f", n, i, a[i], n-1-i, a[n-1-i])
			}
			sumSq += a[i] * a[i]
		}
		if math.Abs(sumSq-1) > 1e-6 {
			t.Errorf("n=%d: expected unit-norm coefficients, got sum of squares %f", n, sumSq)
		}
	}
}

func TestAndersonDarlingGaussian(t *testing.T) {
	res, err := AndersonDarling(normalScores(10000))
	if err != nil {
		t.Fatalf("AndersonDarling failed: %v", err)
	}
	if !res.Normal() {
		t.Errorf("Expected Gaussian data to pass at every level, statistic %f critical %v", res.Statistic, res.CriticalValues)
	}
	if res.CriticalValues[0] != 0.576 || res.CriticalValues[4] != 1.092 {
		t.Errorf("Unexpected critical values for large n: %v", res.CriticalValues)
	}
	if len(res.SignificanceLevels) != 5 || res.SignificanceLevels[0] != 15 || res.SignificanceLevels[4] != 1 {
		t.Errorf("Unexpected significance levels: %v", res.SignificanceLevels)
	}
}

func TestAndersonDarlingReference(t *testing.T) {
	res, err := AndersonDarling(weights)
	if err != nil {
		t.Fatalf("AndersonDarling failed: %v", err)
	}
	if math.Abs(res.Statistic-0.946772) > 1e-5 {
		t.Errorf("Expected A2=0.946772, got %.6f", res.Statistic)
	}

	want := []float64{0.498, 0.567, 0.68, 0.793, 0.944}
	for i, cv := range res.CriticalValues {
		if cv != want[i] {
			t.Errorf("Critical value %d: expected %.3f, got %.3f", i, want[i], cv)
		}
	}
	if res.Normal() {
		t.Error("Expected the weights to be rejected at every level")
	}
}

func TestAndersonDarlingSkewed(t *testing.T) {
	res, err := AndersonDarling(exponentialScores(1000))
	if err != nil {
		t.Fatalf("AndersonDarling failed: %v", err)
	}
	if res.Normal() {
		t.Errorf("Expected exponential data to be rejected, statistic %f", res.Statistic)
	}
	for i := range res.CriticalValues {
		if res.Accepts(i) {
			t.Errorf("Expected rejection at %.1f%%, statistic %f critical %f",
				res.SignificanceLevels[i], res.Statistic, res.CriticalValues[i])
		}
	}
}

// TestAndersonStrictestWins checks that passing at the loose levels only is
// not enough to be called normal
func TestAndersonStrictestWins(t *testing.T) {
	res := AndersonResult{
		Statistic:          0.8,
		CriticalValues:     []float64{0.576, 0.656, 0.787, 0.918, 1.092},
		SignificanceLevels: []float64{15, 10, 5, 2.5, 1},
	}
	if res.Accepts(0) || res.Accepts(2) {
		t.Error("Expected rejection at 15% and 5%")
	}
	if !res.Accepts(3) || !res.Accepts(4) {
		t.Error("Expected acceptance at 2.5% and 1%")
	}
	if res.Normal() {
		t.Error("Expected Normal() to require acceptance at every level")
	}
}

func TestAndersonDarlingErrors(t *testing.T) {
	if _, err := AndersonDarling([]float64{1}); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("Expected ErrTooFewSamples, got %v", err)
	}
	if _, err := AndersonDarling([]float64{2, 2, 2}); !errors.Is(err, ErrZeroRange) {
		t.Errorf("Expected ErrZeroRange, got %v", err)
	}
}
