// Package stats computes descriptive statistics over transaction amounts.
package stats

import (
	"math"

	"github.com/shopspring/decimal"
)

// Summary is the mean and population standard deviation of a sample.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

// Describe returns the mean and population standard deviation (divide by N).
// Mean and variance are accumulated in decimal; only the square root is taken in float.
// An empty sample yields the zero Summary.
func Describe(sample []decimal.Decimal) Summary {
	if len(sample) == 0 {
		return Summary{}
	}

	n := decimal.NewFromInt(int64(len(sample)))
	mean := decimal.Sum(decimal.Zero, sample...).Div(n)

	sumSquares := decimal.Zero
	for _, x := range sample {
		d := x.Sub(mean)
		sumSquares = sumSquares.Add(d.Mul(d))
	}
	variance := sumSquares.Div(n)

	return Summary{
		Mean:   mean.InexactFloat64(),
		StdDev: math.Sqrt(variance.InexactFloat64()),
	}
}

// Deviation is |x - mean| in standard deviations, or 0 when the sample has no spread.
func Deviation(x float64, s Summary) float64 {
	if s.StdDev == 0 {
		return 0
	}
	return math.Abs(x-s.Mean) / s.StdDev
}

// Exceeds reports whether x lies strictly more than k standard deviations from the mean.
func Exceeds(x float64, s Summary, k float64) bool {
	return math.Abs(x-s.Mean) > k*s.StdDev
}
