package rolling

import (
	"math"
	"testing"
)

const eps = 1e-12

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean_PartialAndFullWindow(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	got := Mean(xs, 3)

	want := []float64{1, 1.5, 2, 3, 4}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestSum_SlidesWindow(t *testing.T) {
	xs := []float64{1, 1, 1, 1, 1}
	got := Sum(xs, 2)

	want := []float64{1, 2, 2, 2, 2}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestStd_SampleDenominator(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := Std(xs, len(xs))

	// Sample std of the full series: sqrt(32/7)
	want := math.Sqrt(32.0 / 7.0)
	if !approx(got[len(got)-1], want) {
		t.Errorf("expected %f, got %f", want, got[len(got)-1])
	}
	// First index has a single sample
	if got[0] != 0 {
		t.Errorf("expected 0 for single sample, got %f", got[0])
	}
}

func TestStdMin_RespectsMinPeriods(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	got := StdMin(xs, 5, 3)

	if got[0] != 0 || got[1] != 0 {
		t.Errorf("expected zeros below min periods, got %f %f", got[0], got[1])
	}
	if got[2] == 0 {
		t.Error("expected non-zero std at min periods")
	}
}

func TestCovariance_MatchesDirectComputation(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{2, 4, 6, 8}
	got := Covariance(xs, ys, 4)

	// cov(x, 2x) = 2*var(x); sample var of 1..4 = 5/3
	want := 2 * 5.0 / 3.0
	if !approx(got[3], want) {
		t.Errorf("expected %f, got %f", want, got[3])
	}
}

func TestCorrelation_PerfectAndZeroVariance(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{10, 20, 30, 40}
	got := Correlation(xs, ys, 4)
	if !approx(got[3], 1.0) {
		t.Errorf("expected correlation 1, got %f", got[3])
	}

	flat := []float64{5, 5, 5, 5}
	got = Correlation(xs, flat, 4)
	if got[3] != 0 {
		t.Errorf("expected 0 for zero-variance side, got %f", got[3])
	}
}

func TestDiff_NStep(t *testing.T) {
	xs := []float64{1, 3, 6, 10}
	got := Diff(xs, 2)

	want := []float64{0, 0, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestCumSum_Running(t *testing.T) {
	xs := []float64{1, -2, 3}
	got := CumSum(xs)

	want := []float64{1, -1, 2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > eps {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestDeterminism_RepeatedCalls(t *testing.T) {
	xs := []float64{0.1, -0.2, 0.3, 0.05, -0.7, 0.42}
	a := Std(xs, 3)
	b := Std(xs, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("index %d: outputs differ across calls: %v vs %v", i, a[i], b[i])
		}
	}
}
