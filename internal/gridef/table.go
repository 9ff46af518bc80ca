// Package gridef provides the grid emission factor reference dataset used as
// the baseline intensity of displaced grid electricity.
//
// Factors are in tCO2/MWh. National records come from the host country's
// designated national authority or the IEA where none is published; the US
// additionally carries per-NERC-region records from EPA eGRID.
package gridef

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
	"github.com/rshade/carbon-credit-engine/internal/numeric"
)

// CSV column indices for grid emission factor records.
const (
	colCountryCode     = 0
	colCountryName     = 1
	colRegionCode      = 2
	colRegionName      = 3
	colCombinedMargin  = 4
	colOperatingMargin = 5
	colBuildMargin     = 6
	colWeightedAverage = 7
	colSourceName      = 8
	colSourceURL       = 9
	colDataYear        = 10

	numColumns = 11
)

var csvHeader = []string{
	"country_code", "country_name", "region_code", "region_name",
	"combined_margin", "operating_margin", "build_margin", "weighted_average",
	"source_name", "source_url", "data_year",
}

//go:embed data/grid_emission_factors.csv
var gridFactorsCSV string

// Record is one grid emission factor entry.
type Record struct {
	// CountryCode is the ISO-3166 alpha-2 code, upper case.
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`

	// RegionCode is empty for national records.
	RegionCode string `json:"region_code,omitempty"`
	RegionName string `json:"region_name,omitempty"`

	// CombinedMargin is the CDM combined margin in tCO2/MWh.
	CombinedMargin float64 `json:"combined_margin"`

	// OperatingMargin, BuildMargin and WeightedAverage are only set where the
	// source publishes them.
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	BuildMargin     *float64 `json:"build_margin,omitempty"`
	WeightedAverage *float64 `json:"weighted_average,omitempty"`

	SourceName string `json:"source_name"`
	SourceURL  string `json:"source_url,omitempty"`
	DataYear   int    `json:"data_year"`
}

// EmissionFactor returns the factor used for crediting: the published
// weighted average when present, otherwise the combined margin.
func (r Record) EmissionFactor() float64 {
	if r.WeightedAverage != nil {
		return *r.WeightedAverage
	}
	return r.CombinedMargin
}

// Regional reports whether r is a sub-national record.
func (r Record) Regional() bool {
	return r.RegionCode != ""
}

// Table is an immutable lookup over grid emission factor records.
type Table struct {
	records   []Record
	countries map[string]Record
	regions   map[string]map[string]Record
}

// NewTable builds a table from records. Codes are upper-cased; a duplicate
// (country, region) pair is a configuration error.
func NewTable(records []Record) (*Table, error) {
	t := &Table{
		records:   make([]Record, 0, len(records)),
		countries: make(map[string]Record),
		regions:   make(map[string]map[string]Record),
	}

	for _, r := range records {
		r.CountryCode = strings.ToUpper(strings.TrimSpace(r.CountryCode))
		r.RegionCode = strings.ToUpper(strings.TrimSpace(r.RegionCode))
		if r.CountryCode == "" {
			return nil, calcerr.Configuration("grid emission factor record without country code")
		}

		if !r.Regional() {
			if _, dup := t.countries[r.CountryCode]; dup {
				return nil, calcerr.Configuration("duplicate grid emission factor for country %s", r.CountryCode)
			}
			t.countries[r.CountryCode] = r
		} else {
			byRegion, ok := t.regions[r.CountryCode]
			if !ok {
				byRegion = make(map[string]Record)
				t.regions[r.CountryCode] = byRegion
			}
			if _, dup := byRegion[r.RegionCode]; dup {
				return nil, calcerr.Configuration("duplicate grid emission factor for %s/%s", r.CountryCode, r.RegionCode)
			}
			byRegion[r.RegionCode] = r
		}
		t.records = append(t.records, r)
	}

	sort.SliceStable(t.records, func(i, j int) bool {
		if t.records[i].CountryCode != t.records[j].CountryCode {
			return t.records[i].CountryCode < t.records[j].CountryCode
		}
		return t.records[i].RegionCode < t.records[j].RegionCode
	})

	return t, nil
}

// ParseCSV reads records in the embedded dataset's column layout, header row
// included, and builds a table from them.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading grid emission factor header: %w", err)
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading grid emission factor row %d: %w", line, err)
		}
		if len(row) < numColumns {
			log().Warn().Int("line", line).Int("columns", len(row)).Msg("skipping short grid emission factor row")
			continue
		}

		rec, err := parseRecord(row)
		if err != nil {
			return nil, calcerr.Configuration("grid emission factor row %d: %v", line, err)
		}
		records = append(records, rec)
	}

	return NewTable(records)
}

func parseRecord(row []string) (Record, error) {
	field := func(i int) string { return strings.TrimSpace(row[i]) }

	cm, err := strconv.ParseFloat(field(colCombinedMargin), 64)
	if err != nil {
		return Record{}, fmt.Errorf("combined_margin: %w", err)
	}
	if cm < 0 || !numeric.IsFinite(cm) {
		return Record{}, fmt.Errorf("combined_margin must be a non-negative number, got %v", cm)
	}

	om, err := optionalFloat(field(colOperatingMargin))
	if err != nil {
		return Record{}, fmt.Errorf("operating_margin: %w", err)
	}
	bm, err := optionalFloat(field(colBuildMargin))
	if err != nil {
		return Record{}, fmt.Errorf("build_margin: %w", err)
	}
	wa, err := optionalFloat(field(colWeightedAverage))
	if err != nil {
		return Record{}, fmt.Errorf("weighted_average: %w", err)
	}

	year, err := strconv.Atoi(field(colDataYear))
	if err != nil {
		return Record{}, fmt.Errorf("data_year: %w", err)
	}

	return Record{
		CountryCode:     field(colCountryCode),
		CountryName:     field(colCountryName),
		RegionCode:      field(colRegionCode),
		RegionName:      field(colRegionName),
		CombinedMargin:  cm,
		OperatingMargin: om,
		BuildMargin:     bm,
		WeightedAverage: wa,
		SourceName:      field(colSourceName),
		SourceURL:       field(colSourceURL),
		DataYear:        year,
	}, nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if !numeric.IsFinite(v) {
		return nil, fmt.Errorf("non-finite value %q", s)
	}
	return &v, nil
}

// WriteCSV writes records, header first, in the layout ParseCSV reads.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, numColumns)
	for _, r := range records {
		row[colCountryCode] = r.CountryCode
		row[colCountryName] = r.CountryName
		row[colRegionCode] = r.RegionCode
		row[colRegionName] = r.RegionName
		row[colCombinedMargin] = formatFactor(&r.CombinedMargin)
		row[colOperatingMargin] = formatFactor(r.OperatingMargin)
		row[colBuildMargin] = formatFactor(r.BuildMargin)
		row[colWeightedAverage] = formatFactor(r.WeightedAverage)
		row[colSourceName] = r.SourceName
		row[colSourceURL] = r.SourceURL
		row[colDataYear] = strconv.Itoa(r.DataYear)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFactor(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

var (
	defaultTable     *Table
	defaultTableErr  error
	defaultTableOnce sync.Once
)

// Default returns the table parsed from the embedded dataset. It is built once
// and shared; the returned table is read-only.
func Default() (*Table, error) {
	defaultTableOnce.Do(func() {
		defaultTable, defaultTableErr = ParseCSV(strings.NewReader(gridFactorsCSV))
		if defaultTableErr != nil {
			log().Error().Err(defaultTableErr).Msg("failed to load embedded grid emission factors")
			return
		}
		log().Debug().Int("records", defaultTable.Len()).Msg("loaded embedded grid emission factors")
	})
	return defaultTable, defaultTableErr
}

// MustDefault is Default for callers that treat a broken embedded dataset as
// a programming error.
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Get looks up the factor for a country and optional region. The region is
// consulted only when given and the country has regional records; an unknown
// region of such a country is reported as absent rather than falling back to
// the national value.
func (t *Table) Get(countryCode, regionCode string) (Record, bool) {
	country := strings.ToUpper(strings.TrimSpace(countryCode))
	region := strings.ToUpper(strings.TrimSpace(regionCode))

	if region != "" {
		if byRegion, ok := t.regions[country]; ok {
			rec, found := byRegion[region]
			return rec, found
		}
	}

	rec, ok := t.countries[country]
	return rec, ok
}

// All returns every record sorted by country then region.
func (t *Table) All() []Record {
	return append([]Record(nil), t.records...)
}

// Country is a row of the country listing.
type Country struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	HasRegions bool   `json:"has_regions"`
}

// Countries lists the countries with a national record, sorted by code.
func (t *Table) Countries() []Country {
	out := make([]Country, 0, len(t.countries))
	for code, rec := range t.countries {
		_, hasRegions := t.regions[code]
		out = append(out, Country{Code: code, Name: rec.CountryName, HasRegions: hasRegions})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Regions returns the regional records of a country, sorted by region code.
func (t *Table) Regions(countryCode string) []Record {
	byRegion := t.regions[strings.ToUpper(strings.TrimSpace(countryCode))]
	out := make([]Record, 0, len(byRegion))
	for _, rec := range byRegion {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegionCode < out[j].RegionCode })
	return out
}

// Len reports the number of records.
func (t *Table) Len() int {
	return len(t.records)
}
