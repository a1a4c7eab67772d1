// Package stats validates analyzer signals: correlation screens against
// forward returns, distribution summaries with normality testing, OLS
// predictive-power fits and threshold-strategy performance.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// significanceLevel is the two-sided p-value cutoff used throughout.
const significanceLevel = 0.05

// minCorrelationObs is the minimum paired observations for a correlation
// to be reported.
const minCorrelationObs = 10

// pearson computes the Pearson coefficient with its two-sided p-value
// from the t distribution with n-2 degrees of freedom. Returns (0, 1)
// when the inputs are degenerate.
func pearson(xs, ys []float64) (r, p float64) {
	n := len(xs)
	if n < 3 {
		return 0, 1
	}
	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0, 1
	}
	if r >= 1 || r <= -1 {
		return r, 0
	}

	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	p = 2 * dist.Survival(math.Abs(t))
	if p > 1 {
		p = 1
	}
	return r, p
}
