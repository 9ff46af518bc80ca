// Package numeric holds the fixed-precision helpers shared by the
// methodology formulas and the time-series breakdowns.
package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every reported tCO2e and MWh figure
// is rounded to.
const Places = 4

// IsFinite reports whether f is neither NaN nor an infinity. Every helper in
// this package requires finite input.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Round4 rounds f half away from zero to Places decimal places.
func Round4(f float64) float64 {
	return decimal.NewFromFloat(f).Round(Places).InexactFloat64()
}

// Sum adds values in decimal arithmetic so the result does not depend on the
// order of the input.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Accumulator collects a running decimal sum.
// The zero value is ready to use.
type Accumulator struct {
	total decimal.Decimal
}

// Add adds v to the running sum.
func (a *Accumulator) Add(v float64) {
	a.total = a.total.Add(decimal.NewFromFloat(v))
}

// Float64 returns the running sum.
func (a *Accumulator) Float64() float64 {
	return a.total.InexactFloat64()
}

// Decompose rounds the three emission sources to Places and derives the
// reduction from the rounded values, so total == baseline - project - leakage
// holds exactly on the reported figures.
func Decompose(baseline, project, leakage float64) (total, b, p, l float64) {
	bd := decimal.NewFromFloat(baseline).Round(Places)
	pd := decimal.NewFromFloat(project).Round(Places)
	ld := decimal.NewFromFloat(leakage).Round(Places)
	td := bd.Sub(pd).Sub(ld)
	return td.InexactFloat64(), bd.InexactFloat64(), pd.InexactFloat64(), ld.InexactFloat64()
}
