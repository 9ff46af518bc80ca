// Package timeseries aggregates normalized generation data into the totals and
// vintage breakdowns reported with every calculation.
package timeseries

import (
	"sort"
	"time"

	"github.com/rshade/carbon-credit-engine/internal/numeric"
)

// MonthLayout is the bucket key format of the monthly breakdown.
const MonthLayout = "2006-01"

// DataPoint is one normalized generation reading.
type DataPoint struct {
	// Timestamp is the start of the interval in UTC. The zero value means the
	// reading carried no timestamp.
	Timestamp time.Time `json:"timestamp"`

	// EnergyMWh is the energy delivered in the interval, already in MWh.
	EnergyMWh float64 `json:"energy_mwh"`
}

// MonthlyEntry is one month of the monthly breakdown.
type MonthlyEntry struct {
	Month                   string  `json:"month"`
	GenerationMWh           float64 `json:"generation_mwh"`
	EmissionReductionsTCO2e float64 `json:"emission_reductions_tco2e"`
}

// AnnualEntry is one vintage of the annual breakdown.
type AnnualEntry struct {
	Vintage                 int     `json:"vintage"`
	GenerationMWh           float64 `json:"generation_mwh"`
	EmissionReductionsTCO2e float64 `json:"emission_reductions_tco2e"`
}

// Total returns the summed energy of points.
func Total(points []DataPoint) float64 {
	var acc numeric.Accumulator
	for _, p := range points {
		acc.Add(p.EnergyMWh)
	}
	return acc.Float64()
}

// Monthly groups points by calendar month and applies efGrid to each bucket.
// Points without a timestamp fall into the month of now (UTC). Only months
// present in the data are returned, sorted ascending.
func Monthly(points []DataPoint, efGrid float64, now time.Time) []MonthlyEntry {
	buckets := make(map[string]*numeric.Accumulator)
	for _, p := range points {
		key := bucketTime(p, now).Format(MonthLayout)
		acc, ok := buckets[key]
		if !ok {
			acc = &numeric.Accumulator{}
			buckets[key] = acc
		}
		acc.Add(p.EnergyMWh)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthlyEntry, 0, len(keys))
	for _, k := range keys {
		gen := buckets[k].Float64()
		out = append(out, MonthlyEntry{
			Month:                   k,
			GenerationMWh:           numeric.Round4(gen),
			EmissionReductionsTCO2e: numeric.Round4(gen * efGrid),
		})
	}
	return out
}

// Annual groups points by calendar year (vintage) and applies efGrid to each
// bucket. Points without a timestamp fall into the year of now (UTC).
func Annual(points []DataPoint, efGrid float64, now time.Time) []AnnualEntry {
	buckets := make(map[int]*numeric.Accumulator)
	for _, p := range points {
		year := bucketTime(p, now).Year()
		acc, ok := buckets[year]
		if !ok {
			acc = &numeric.Accumulator{}
			buckets[year] = acc
		}
		acc.Add(p.EnergyMWh)
	}

	years := make([]int, 0, len(buckets))
	for y := range buckets {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]AnnualEntry, 0, len(years))
	for _, y := range years {
		gen := buckets[y].Float64()
		out = append(out, AnnualEntry{
			Vintage:                 y,
			GenerationMWh:           numeric.Round4(gen),
			EmissionReductionsTCO2e: numeric.Round4(gen * efGrid),
		})
	}
	return out
}

// Window returns the points whose timestamp lies within [start, end]. A zero
// start or end leaves that side open. Points without a timestamp are kept only
// when both sides are open.
func Window(points []DataPoint, start, end time.Time) []DataPoint {
	if start.IsZero() && end.IsZero() {
		return append([]DataPoint(nil), points...)
	}
	out := make([]DataPoint, 0, len(points))
	for _, p := range points {
		if p.Timestamp.IsZero() {
			continue
		}
		if !start.IsZero() && p.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && p.Timestamp.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func bucketTime(p DataPoint, now time.Time) time.Time {
	if p.Timestamp.IsZero() {
		return now.UTC()
	}
	return p.Timestamp.UTC()
}
