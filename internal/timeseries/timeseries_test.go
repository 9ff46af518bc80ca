package timeseries

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

var fixedNow = ts("2025-06-15T12:00:00Z")

func TestTotal(t *testing.T) {
	points := []DataPoint{
		{Timestamp: ts("2024-01-15T00:00:00Z"), EnergyMWh: 500},
		{Timestamp: ts("2024-02-10T00:00:00Z"), EnergyMWh: 300},
	}
	assert.Equal(t, 800.0, Total(points))
	assert.Equal(t, 0.0, Total(nil))
}

func TestMonthly(t *testing.T) {
	points := []DataPoint{
		{Timestamp: ts("2024-02-10T00:00:00Z"), EnergyMWh: 300},
		{Timestamp: ts("2024-01-15T00:00:00Z"), EnergyMWh: 500},
		{Timestamp: ts("2024-01-31T23:00:00Z"), EnergyMWh: 0.5},
	}

	got := Monthly(points, 0.727, fixedNow)
	want := []MonthlyEntry{
		{Month: "2024-01", GenerationMWh: 500.5, EmissionReductionsTCO2e: 363.8635},
		{Month: "2024-02", GenerationMWh: 300, EmissionReductionsTCO2e: 218.1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Monthly() mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthly_BucketsInUTC(t *testing.T) {
	// 2024-02-01T01:00 in UTC+5 is still January in UTC.
	loc := time.FixedZone("UTC+5", 5*3600)
	points := []DataPoint{{Timestamp: time.Date(2024, 2, 1, 1, 0, 0, 0, loc), EnergyMWh: 1}}

	got := Monthly(points, 1, fixedNow)
	assert.Equal(t, "2024-01", got[0].Month)
}

func TestMonthly_MissingTimestampUsesCurrentMonth(t *testing.T) {
	got := Monthly([]DataPoint{{EnergyMWh: 10}}, 0.5, fixedNow)
	if diff := cmp.Diff([]MonthlyEntry{{Month: "2025-06", GenerationMWh: 10, EmissionReductionsTCO2e: 5}}, got); diff != "" {
		t.Errorf("Monthly() mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthly_NoGapFilling(t *testing.T) {
	points := []DataPoint{
		{Timestamp: ts("2024-01-01T00:00:00Z"), EnergyMWh: 1},
		{Timestamp: ts("2024-06-01T00:00:00Z"), EnergyMWh: 1},
	}
	got := Monthly(points, 1, fixedNow)
	assert.Len(t, got, 2)
}

func TestAnnual(t *testing.T) {
	points := []DataPoint{
		{Timestamp: ts("2024-01-15T00:00:00Z"), EnergyMWh: 500},
		{Timestamp: ts("2023-12-31T00:00:00Z"), EnergyMWh: 100},
		{Timestamp: ts("2024-02-10T00:00:00Z"), EnergyMWh: 300},
		{EnergyMWh: 1},
	}

	got := Annual(points, 0.5, fixedNow)
	want := []AnnualEntry{
		{Vintage: 2023, GenerationMWh: 100, EmissionReductionsTCO2e: 50},
		{Vintage: 2024, GenerationMWh: 800, EmissionReductionsTCO2e: 400},
		{Vintage: 2025, GenerationMWh: 1, EmissionReductionsTCO2e: 0.5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Annual() mismatch (-want +got):\n%s", diff)
	}
}

// TestBreakdowns_SumToTotal checks that monthly and annual breakdowns partition
// the same generation for data spread across several years.
func TestBreakdowns_SumToTotal(t *testing.T) {
	var points []DataPoint
	start := ts("2022-11-01T00:00:00Z")
	for i := 0; i < 24*90; i++ {
		points = append(points, DataPoint{
			Timestamp: start.Add(time.Duration(i) * 17 * time.Hour),
			EnergyMWh: 0.125 + float64(i%7)*0.01,
		})
	}

	total := Total(points)
	monthlySum, annualSum := 0.0, 0.0
	for _, m := range Monthly(points, 0.7, fixedNow) {
		monthlySum += m.GenerationMWh
	}
	for _, a := range Annual(points, 0.7, fixedNow) {
		annualSum += a.GenerationMWh
	}

	assert.InDelta(t, total, monthlySum, 1e-6)
	assert.InDelta(t, total, annualSum, 1e-6)
}

func TestWindow(t *testing.T) {
	points := []DataPoint{
		{Timestamp: ts("2024-01-15T00:00:00Z"), EnergyMWh: 1},
		{Timestamp: ts("2024-02-10T00:00:00Z"), EnergyMWh: 2},
		{Timestamp: ts("2024-03-01T00:00:00Z"), EnergyMWh: 3},
		{EnergyMWh: 4},
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  float64
	}{
		{"open window keeps everything", time.Time{}, time.Time{}, 10},
		{"start only", ts("2024-02-10T00:00:00Z"), time.Time{}, 5},
		{"end only, inclusive", time.Time{}, ts("2024-02-10T00:00:00Z"), 3},
		{"both sides", ts("2024-02-01T00:00:00Z"), ts("2024-02-28T00:00:00Z"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(Window(points, tt.start, tt.end)))
		})
	}
}
