package ingest

import (
	"fmt"
	"io"
	"time"

	"github.com/rshade/carbon-credit-engine/internal/timeseries"
	"github.com/rshade/carbon-credit-engine/internal/units"
)

// Series is the result of reading a generation file through a mapping.
type Series struct {
	Points []timeseries.DataPoint `json:"points"`

	// Rows is the number of data rows read; Skipped counts rows whose
	// timestamp or value could not be parsed.
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`

	// DetectedFrequency is the dominant sampling interval in seconds, or 0
	// when it could not be determined.
	DetectedFrequency int `json:"detected_frequency"`
}

// TotalMWh returns the summed energy of the series.
func (s *Series) TotalMWh() float64 {
	return timeseries.Total(s.Points)
}

// ReadSeries converts the mapped columns of a CSV generation file into UTC
// data points in MWh. Mapping problems and missing columns are validation
// errors; unparseable rows are skipped and counted.
func ReadSeries(r io.Reader, m Mapping) (*Series, error) {
	unit, semantics, loc, errs := m.check()
	if err := mappingError(errs); err != nil {
		return nil, err
	}

	rows, _, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("generation file is empty")
	}

	tsIdx, valIdx := -1, -1
	for i, name := range rows[0] {
		if name == m.TimestampColumn {
			tsIdx = i
		}
		if name == m.ValueColumn {
			valIdx = i
		}
	}
	errs = nil
	if tsIdx < 0 {
		errs = append(errs, fmt.Sprintf("Timestamp column '%s' not found", m.TimestampColumn))
	}
	if valIdx < 0 {
		errs = append(errs, fmt.Sprintf("Value column '%s' not found", m.ValueColumn))
	}
	if err := mappingError(errs); err != nil {
		return nil, err
	}

	s := &Series{Points: make([]timeseries.DataPoint, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		s.Rows++

		ts, err := parseTimestamp(cell(row, tsIdx), m.TimestampFormat, loc)
		if err != nil {
			s.Skipped++
			continue
		}
		value, err := parseNumber(cell(row, valIdx))
		if err != nil {
			s.Skipped++
			continue
		}

		s.Points = append(s.Points, timeseries.DataPoint{
			Timestamp: ts.UTC(),
			EnergyMWh: units.ToMWh(value, unit, semantics, m.FrequencySeconds),
		})
	}

	stamps := make([]time.Time, 0, len(s.Points))
	for _, p := range s.Points {
		stamps = append(stamps, p.Timestamp)
	}
	s.DetectedFrequency, _ = DetectFrequency(stamps)

	return s, nil
}
