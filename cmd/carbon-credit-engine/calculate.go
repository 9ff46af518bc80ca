package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carbon-credit-engine/internal/calculator"
	"github.com/rshade/carbon-credit-engine/internal/ingest"
	"github.com/rshade/carbon-credit-engine/internal/methodology"
	"github.com/rshade/carbon-credit-engine/internal/timeseries"
)

const dateLayout = "2006-01-02"

type calculateOptions struct {
	methodologyID string
	country       string
	region        string
	projectType   string
	efOverride    float64
	inputs        []string

	file        string
	mappingPath string
	dataPath    string
	totalMWh    float64

	start string
	end   string

	eligibilityOnly bool
}

func newCalculateCmd(a *app) *cobra.Command {
	opts := &calculateOptions{}
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate emission reductions for a project",
		Long: `Calculate emission reductions from generation data.

Generation data comes from exactly one of:
  --file with --mapping   a CSV export read through a column mapping
  --data                  a JSON array of {"timestamp", "energy_mwh"} points;
                          timestamps may be RFC 3339 or a date such as 2024-01-15
  --mwh                   a single total for the period`,
		Example: `  carbon-credit-engine calculate --country IN --mwh 1000
  carbon-credit-engine calculate --methodology CDM_ACM0002 --country BR --file gen.csv --mapping mapping.yaml --input capacity_mw=50
  carbon-credit-engine calculate --methodology GS_RE --country KE --mwh 500 --input 'sdg_contributions=[7,13]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalculate(cmd, a, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.methodologyID, "methodology", "", "methodology id (default from config)")
	f.StringVar(&opts.country, "country", "", "ISO 3166-1 alpha-2 country code")
	f.StringVar(&opts.region, "region", "", "grid region code within the country")
	f.StringVar(&opts.projectType, "project-type", "", "project type (default from config)")
	f.Float64Var(&opts.efOverride, "ef-override", 0, "grid emission factor in tCO2/MWh, replaces the dataset lookup")
	f.StringArrayVar(&opts.inputs, "input", nil, "additional methodology input as key=value; values are parsed as JSON when possible")
	f.StringVar(&opts.file, "file", "", "CSV generation file")
	f.StringVar(&opts.mappingPath, "mapping", "", "YAML or JSON column mapping for --file")
	f.StringVar(&opts.dataPath, "data", "", "JSON file of generation data points")
	f.Float64Var(&opts.totalMWh, "mwh", 0, "total generation in MWh")
	f.StringVar(&opts.start, "start", "", "first day of the calculation period (YYYY-MM-DD)")
	f.StringVar(&opts.end, "end", "", "last day of the calculation period (YYYY-MM-DD)")
	f.BoolVar(&opts.eligibilityOnly, "eligibility-only", false, "only check eligibility")
	_ = cmd.MarkFlagRequired("country")
	cmd.MarkFlagsRequiredTogether("file", "mapping")
	cmd.MarkFlagsMutuallyExclusive("file", "data", "mwh")
	return cmd
}

func runCalculate(cmd *cobra.Command, a *app, opts *calculateOptions) error {
	methodologyID := opts.methodologyID
	if methodologyID == "" {
		methodologyID = a.cfg.DefaultMethodology
	}
	projectType := opts.projectType
	if projectType == "" {
		projectType = a.cfg.DefaultProjectType
	}

	calc, err := a.newCalculator(methodologyID)
	if err != nil {
		return err
	}

	points, err := a.loadGenerationData(cmd, opts)
	if err != nil {
		return err
	}
	start, end, err := parsePeriod(opts.start, opts.end)
	if err != nil {
		return err
	}
	points = timeseries.Window(points, start, end)

	additional, err := parseInputs(opts.inputs)
	if err != nil {
		return err
	}

	req := calculator.Request{
		GenerationData:   points,
		CountryCode:      opts.country,
		ProjectType:      projectType,
		RegionCode:       opts.region,
		AdditionalInputs: additional,
	}
	if cmd.Flags().Changed("ef-override") {
		ef := opts.efOverride
		req.EFOverride = &ef
	} else if ef, ok := a.cfg.efOverride(opts.country); ok {
		req.EFOverride = &ef
	}

	if opts.eligibilityOnly {
		eligibility, err := calc.CheckEligibility(req)
		if err != nil {
			return err
		}
		return a.writeJSON(eligibility)
	}

	result, err := calc.Calculate(req)
	if err != nil {
		return err
	}
	return a.writeJSON(result)
}

func (a *app) loadGenerationData(cmd *cobra.Command, opts *calculateOptions) ([]timeseries.DataPoint, error) {
	switch {
	case opts.file != "":
		m, err := loadMapping(opts.mappingPath)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, fmt.Errorf("opening generation file: %w", err)
		}
		defer f.Close()

		series, err := ingest.ReadSeries(f, m)
		if err != nil {
			return nil, err
		}
		if series.Skipped > 0 {
			a.logger.Warn().
				Str("file", opts.file).
				Int("rows", series.Rows).
				Int("skipped", series.Skipped).
				Msg("unparseable rows skipped")
		}
		if series.DetectedFrequency > 0 && series.DetectedFrequency != m.FrequencySeconds {
			a.logger.Warn().
				Int("declared_seconds", m.FrequencySeconds).
				Int("detected_seconds", series.DetectedFrequency).
				Msg("detected sampling frequency differs from mapping")
		}
		return series.Points, nil

	case opts.dataPath != "":
		b, err := os.ReadFile(opts.dataPath)
		if err != nil {
			return nil, fmt.Errorf("reading generation data: %w", err)
		}
		points, err := parsePoints(b)
		if err != nil {
			return nil, fmt.Errorf("parsing generation data %s: %w", opts.dataPath, err)
		}
		return points, nil

	case cmd.Flags().Changed("mwh"):
		if opts.totalMWh < 0 {
			return nil, errors.New("--mwh must not be negative")
		}
		return []timeseries.DataPoint{{Timestamp: time.Now().UTC(), EnergyMWh: opts.totalMWh}}, nil

	default:
		return nil, errors.New("one of --file, --data or --mwh is required")
	}
}

// parsePoints decodes a JSON array of readings. Timestamps use the same
// layouts as generation files, read as UTC when they carry no zone; a missing
// timestamp leaves the reading undated.
func parsePoints(b []byte) ([]timeseries.DataPoint, error) {
	var raw []struct {
		Timestamp string  `json:"timestamp"`
		EnergyMWh float64 `json:"energy_mwh"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	points := make([]timeseries.DataPoint, 0, len(raw))
	for i, r := range raw {
		p := timeseries.DataPoint{EnergyMWh: r.EnergyMWh}
		if strings.TrimSpace(r.Timestamp) != "" {
			ts, err := ingest.ParseTimestamp(r.Timestamp, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			p.Timestamp = ts
		}
		points = append(points, p)
	}
	return points, nil
}

// loadMapping reads a column mapping. JSON mappings are accepted as YAML.
func loadMapping(path string) (ingest.Mapping, error) {
	var m ingest.Mapping
	b, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading mapping: %w", err)
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parsing mapping %s: %w", path, err)
	}
	return m, nil
}

// parsePeriod parses the inclusive calendar period [start, end]. An empty
// bound leaves that side open.
func parsePeriod(start, end string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if start != "" {
		if from, err = time.Parse(dateLayout, start); err != nil {
			return from, to, fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", start)
		}
	}
	if end != "" {
		if to, err = time.Parse(dateLayout, end); err != nil {
			return from, to, fmt.Errorf("invalid --end %q: expected YYYY-MM-DD", end)
		}
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("--end %s is before --start %s", end, start)
	}
	return from, to, nil
}

// parseInputs turns key=value pairs into methodology inputs. Values that are
// valid JSON keep their JSON type, anything else is a string.
func parseInputs(pairs []string) (methodology.Inputs, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	in := make(methodology.Inputs, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --input %q: expected key=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		in[key] = v
	}
	return in, nil
}

func newQuickEstimateCmd(a *app) *cobra.Command {
	var (
		methodologyID string
		country       string
		projectType   string
		totalMWh      float64
	)
	cmd := &cobra.Command{
		Use:   "quick-estimate",
		Short: "Estimate total emission reductions from a generation total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if methodologyID == "" {
				methodologyID = a.cfg.DefaultMethodology
			}
			if projectType == "" {
				projectType = a.cfg.DefaultProjectType
			}
			total, err := calculator.QuickEstimate(a.registry, a.table, totalMWh, country, projectType, methodologyID)
			if err != nil {
				return err
			}
			return a.writeJSON(map[string]any{
				"methodology_id":       methodologyID,
				"country_code":         strings.ToUpper(country),
				"total_generation_mwh": totalMWh,
				"total_er_tco2e":       total,
			})
		},
	}
	cmd.Flags().StringVar(&methodologyID, "methodology", "", "methodology id (default from config)")
	cmd.Flags().StringVar(&country, "country", "", "ISO 3166-1 alpha-2 country code")
	cmd.Flags().StringVar(&projectType, "project-type", "", "project type (default from config)")
	cmd.Flags().Float64Var(&totalMWh, "mwh", 0, "total generation in MWh")
	_ = cmd.MarkFlagRequired("country")
	_ = cmd.MarkFlagRequired("mwh")
	return cmd
}
