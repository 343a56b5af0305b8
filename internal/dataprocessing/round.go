package dataprocessing

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundTo rounds half away from zero on the shortest decimal representation
// of f, so 0.125 becomes 0.13 rather than the binary-float 0.12.
func roundTo(f float64, places int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r, _ := decimal.NewFromFloat(f).Round(places).Float64()
	return r
}

// percentOf returns 100*part/whole rounded to two places, or NaN when whole is
// zero or either operand is undefined.
func percentOf(part, whole float64) float64 {
	if math.IsNaN(part) || math.IsNaN(whole) || whole == 0 {
		return math.NaN()
	}
	return roundTo(100*part/whole, 2)
}
