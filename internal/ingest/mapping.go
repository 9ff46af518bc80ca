package ingest

import (
	"fmt"
	"sort"
	"time"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
	"github.com/rshade/carbon-credit-engine/internal/units"
)

// sampleConversionValue is the raw value converted in a validation preview.
const sampleConversionValue = 1000.0

// Mapping tells the reader which columns hold the timestamp and the value,
// and how to interpret the value.
type Mapping struct {
	TimestampColumn  string `json:"timestamp_column" yaml:"timestamp_column"`
	ValueColumn      string `json:"value_column" yaml:"value_column"`
	Unit             string `json:"unit" yaml:"unit"`
	Semantics        string `json:"value_semantics" yaml:"value_semantics"`
	FrequencySeconds int    `json:"frequency_seconds" yaml:"frequency_seconds"`

	// Timezone applies to timestamps without an offset. Empty means UTC.
	Timezone string `json:"timezone" yaml:"timezone"`

	// TimestampFormat is a Go time layout. Empty selects automatic detection.
	TimestampFormat string `json:"timestamp_format,omitempty" yaml:"timestamp_format,omitempty"`
}

// location resolves the mapping timezone.
func (m Mapping) location() (*time.Location, error) {
	if m.Timezone == "" || m.Timezone == "UTC" {
		return time.UTC, nil
	}
	return time.LoadLocation(m.Timezone)
}

// check validates the mapping fields that do not depend on the file.
func (m Mapping) check() (units.Unit, units.Semantics, *time.Location, []string) {
	var errs []string

	if m.TimestampColumn != "" && m.TimestampColumn == m.ValueColumn {
		errs = append(errs, fmt.Sprintf("Timestamp and value columns must differ, both are '%s'", m.TimestampColumn))
	}

	unit, err := units.ParseUnit(m.Unit)
	if err != nil {
		errs = append(errs, err.Error())
	}
	semantics, err := units.ParseSemantics(m.Semantics)
	if err != nil {
		errs = append(errs, err.Error())
	}
	if m.FrequencySeconds <= 0 {
		errs = append(errs, "frequency_seconds must be greater than 0")
	}
	loc, err := m.location()
	if err != nil {
		errs = append(errs, fmt.Sprintf("Invalid timezone: %s", m.Timezone))
	}

	return unit, semantics, loc, errs
}

// SampleConversion previews how a raw value converts under a mapping.
type SampleConversion struct {
	OriginalValue   float64 `json:"original_value"`
	OriginalUnit    string  `json:"original_unit"`
	ConvertedValue  float64 `json:"converted_value"`
	ConvertedUnit   string  `json:"converted_unit"`
	IntervalSeconds int     `json:"interval_seconds"`
}

// MappingValidation is the outcome of ValidateMapping.
type MappingValidation struct {
	Valid             bool              `json:"valid"`
	Warnings          []string          `json:"warnings"`
	Errors            []string          `json:"errors"`
	SampleConversion  *SampleConversion `json:"sample_conversion"`
	DetectedFrequency *int              `json:"detected_frequency"`
}

// ValidateMapping checks m against an inspected file. Errors make the mapping
// unusable; warnings flag likely mistakes such as a power unit declared as
// energy per interval. When insp is nil only the file-independent checks run.
func ValidateMapping(m Mapping, insp *Inspection) MappingValidation {
	res := MappingValidation{Warnings: []string{}, Errors: []string{}}

	if insp != nil {
		if !insp.HasColumn(m.TimestampColumn) {
			res.Errors = append(res.Errors, fmt.Sprintf("Timestamp column '%s' not found", m.TimestampColumn))
		}
		if !insp.HasColumn(m.ValueColumn) {
			res.Errors = append(res.Errors, fmt.Sprintf("Value column '%s' not found", m.ValueColumn))
		}
	}

	unit, semantics, loc, errs := m.check()
	res.Errors = append(res.Errors, errs...)

	if unit != "" && semantics != "" {
		if w := units.Inconsistency(unit, semantics); w != "" {
			res.Warnings = append(res.Warnings, w)
		}
	}

	if insp != nil && loc != nil {
		if idx := insp.columnIndex(m.TimestampColumn); idx >= 0 {
			var stamps []time.Time
			for _, row := range insp.PreviewRows {
				if t, err := parseTimestamp(cell(row, idx), m.TimestampFormat, loc); err == nil {
					stamps = append(stamps, t)
				}
			}
			if freq, ok := DetectFrequency(stamps); ok {
				res.DetectedFrequency = &freq
				if m.FrequencySeconds > 0 && freq != m.FrequencySeconds {
					res.Warnings = append(res.Warnings, fmt.Sprintf(
						"Detected sampling interval of %d seconds differs from frequency_seconds %d", freq, m.FrequencySeconds))
				}
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	if res.Valid {
		res.SampleConversion = &SampleConversion{
			OriginalValue:   sampleConversionValue,
			OriginalUnit:    string(unit),
			ConvertedValue:  units.ToMWh(sampleConversionValue, unit, semantics, m.FrequencySeconds),
			ConvertedUnit:   string(units.MWh),
			IntervalSeconds: m.FrequencySeconds,
		}
	}

	return res
}

// DetectFrequency returns the most common positive interval, in seconds,
// between consecutive timestamps. Ties go to the shorter interval. ok is false
// when fewer than two timestamps are ordered apart.
func DetectFrequency(stamps []time.Time) (seconds int, ok bool) {
	counts := make(map[int]int)
	for i := 1; i < len(stamps); i++ {
		d := int(stamps[i].Sub(stamps[i-1]) / time.Second)
		if d > 0 {
			counts[d]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}

	intervals := make([]int, 0, len(counts))
	for d := range counts {
		intervals = append(intervals, d)
	}
	sort.Ints(intervals)

	best := intervals[0]
	for _, d := range intervals[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best, true
}

// mappingError wraps file-independent mapping problems as a validation error.
func mappingError(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return calcerr.Validation(errs)
}
