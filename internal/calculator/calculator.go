// Package calculator turns generation data into auditable emission reduction
// results: it resolves the grid emission factor, prepares methodology inputs,
// runs the methodology and attaches monthly and annual breakdowns.
package calculator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
	"github.com/rshade/carbon-credit-engine/internal/gridef"
	"github.com/rshade/carbon-credit-engine/internal/methodology"
	"github.com/rshade/carbon-credit-engine/internal/numeric"
	"github.com/rshade/carbon-credit-engine/internal/timeseries"
)

const (
	// EFSourceManual is reported as the source of an overridden emission factor.
	EFSourceManual = "Manual override"

	// DefaultCapacityMW is assumed when the caller does not give a capacity.
	DefaultCapacityMW = 10.0

	// BiogasM3PerMWh is a placeholder yield used to derive captured biogas
	// from generation when the caller does not measure it.
	BiogasM3PerMWh = 500.0
)

// CreditCalculator runs calculations for one methodology.
// It holds no per-call state and is safe for concurrent use.
type CreditCalculator struct {
	methodology methodology.Methodology
	table       *gridef.Table
	logger      zerolog.Logger // logger is immutable (copy-on-write)
	metrics     *Metrics
	now         func() time.Time
}

// Option configures a CreditCalculator.
type Option func(*CreditCalculator)

// WithLogger sets the calculator logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *CreditCalculator) { c.logger = l }
}

// WithMetrics records calculation outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(c *CreditCalculator) { c.metrics = m }
}

// WithClock replaces the wall clock used for the calculation date, manual
// override years and undated readings.
func WithClock(now func() time.Time) Option {
	return func(c *CreditCalculator) { c.now = now }
}

// New returns a calculator for methodologyID. A nil registry or table selects
// the built-in one. An unknown id fails with a not-found error listing the
// registered ids.
func New(methodologyID string, registry *methodology.Registry, table *gridef.Table, opts ...Option) (*CreditCalculator, error) {
	if registry == nil {
		registry = methodology.Default()
	}
	if table == nil {
		t, err := gridef.Default()
		if err != nil {
			return nil, fmt.Errorf("loading grid emission factors: %w", err)
		}
		table = t
	}

	m, err := registry.Get(methodologyID)
	if err != nil {
		return nil, err
	}

	c := &CreditCalculator{
		methodology: m,
		table:       table,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "calculator").Logger()
	return c, nil
}

// Methodology returns the descriptor of the calculator's methodology.
func (c *CreditCalculator) Methodology() methodology.Descriptor {
	return c.methodology.Descriptor()
}

type emissionFactor struct {
	value  float64
	source string
	year   int
}

// resolveEF picks the manual override when given, otherwise the dataset value.
func (c *CreditCalculator) resolveEF(req Request, now time.Time) (emissionFactor, error) {
	if req.EFOverride != nil {
		return emissionFactor{value: *req.EFOverride, source: EFSourceManual, year: now.Year()}, nil
	}

	rec, ok := c.table.Get(req.CountryCode, req.RegionCode)
	if !ok {
		codes := make([]string, 0)
		for _, country := range c.table.Countries() {
			codes = append(codes, country.Code)
		}
		return emissionFactor{}, calcerr.NotFound("grid_emission_factor",
			fmt.Sprintf("No emission factor data for country: %s", req.CountryCode), codes)
	}
	return emissionFactor{value: rec.EmissionFactor(), source: rec.SourceName, year: rec.DataYear}, nil
}

// checkRequest reports non-finite numbers in req, which no formula can use.
func checkRequest(req Request) error {
	var errs []string
	if req.EFOverride != nil && !numeric.IsFinite(*req.EFOverride) {
		errs = append(errs, "ef_override must be a finite number")
	}
	for i, p := range req.GenerationData {
		if !numeric.IsFinite(p.EnergyMWh) {
			errs = append(errs, fmt.Sprintf("generation_data[%d].energy_mwh must be a finite number", i))
		}
	}
	if len(errs) > 0 {
		return calcerr.Validation(errs)
	}
	return nil
}

// buildInputs derives every input the built-in methodologies may need from
// the generation total and emission factor, then overlays the caller's inputs.
func buildInputs(req Request, totalMWh, ef float64) methodology.Inputs {
	in := methodology.Inputs{
		methodology.KeyGenerationMWh: totalMWh,
		methodology.KeyEFGrid:        ef,
		methodology.KeyProjectType:   req.ProjectType,
		methodology.KeyCapacityMW:    DefaultCapacityMW,
		"captive_generation_mwh":     totalMWh,
		"ef_baseline":                ef,
		"baseline_type":              "grid",
		"biogas_captured_m3":         totalMWh * BiogasM3PerMWh,
		"biogas_utilization":         "electricity",
	}
	for k, v := range req.AdditionalInputs {
		in[k] = v
	}
	return in
}

// Calculate computes emission reductions for req.
func (c *CreditCalculator) Calculate(req Request) (*Result, error) {
	start := time.Now()
	now := c.now().UTC()
	desc := c.methodology.Descriptor()
	calcID := uuid.New().String()

	log := c.logger.With().
		Str("calculation_id", calcID).
		Str("methodology_id", desc.ID).
		Str("country_code", req.CountryCode).
		Logger()

	if err := checkRequest(req); err != nil {
		log.Error().Err(err).Msg("invalid calculation request")
		c.metrics.observeFailure(desc.ID, outcomeInvalid)
		return nil, err
	}

	ef, err := c.resolveEF(req, now)
	if err != nil {
		log.Error().Err(err).Str("region_code", req.RegionCode).Msg("emission factor lookup failed")
		c.metrics.observeFailure(desc.ID, outcomeNotFound)
		return nil, err
	}

	log.Debug().
		Str("ef_source", ef.source).
		Float64("ef_value", ef.value).
		Int("data_points", len(req.GenerationData)).
		Msg("calculation started")

	total := timeseries.Total(req.GenerationData)
	inputs := buildInputs(req, total, ef.value)

	eligibility := c.methodology.CheckEligibility(inputs)
	if !eligibility.Eligible {
		log.Warn().Strs("reasons", eligibility.Reasons).Msg("project not eligible for methodology")
	}

	res, err := c.methodology.ComputeEmissionReductions(inputs)
	if err != nil {
		log.Error().Err(err).Msg("emission reduction calculation failed")
		outcome := outcomeError
		if calcerr.KindOf(err) == calcerr.KindValidation {
			outcome = outcomeInvalid
		}
		c.metrics.observeFailure(desc.ID, outcome)
		return nil, err
	}

	var region *string
	if req.RegionCode != "" {
		r := strings.ToUpper(req.RegionCode)
		region = &r
	}

	out := &Result{
		CalculationID:          calcID,
		ProjectType:            req.ProjectType,
		MethodologyID:          desc.ID,
		Registry:               desc.Registry,
		TotalGenerationMWh:     numeric.Round4(total),
		TotalERTCO2e:           res.TotalERTCO2e,
		BaselineEmissionsTCO2e: res.BaselineEmissionsTCO2e,
		ProjectEmissionsTCO2e:  res.ProjectEmissionsTCO2e,
		LeakageTCO2e:           res.LeakageTCO2e,
		CountryCode:            strings.ToUpper(req.CountryCode),
		RegionCode:             region,
		EFValue:                ef.value,
		EFSource:               ef.source,
		EFYear:                 ef.year,
		MonthlyBreakdown:       timeseries.Monthly(req.GenerationData, ef.value, now),
		AnnualBreakdown:        timeseries.Annual(req.GenerationData, ef.value, now),
		CalculationDate:        now,
		Assumptions:            res.Assumptions,
		MethodologyInfo:        desc,
		Eligibility:            eligibility,
	}

	c.metrics.observeSuccess(desc.ID, out.TotalERTCO2e)
	log.Debug().
		Str("ef_source", ef.source).
		Float64("total_er_tco2e", out.TotalERTCO2e).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("calculation finished")

	return out, nil
}

// CalculateSimple computes reductions for a single total, dated now.
func (c *CreditCalculator) CalculateSimple(totalMWh float64, countryCode, projectType string, efOverride *float64) (*Result, error) {
	return c.Calculate(Request{
		GenerationData: []timeseries.DataPoint{{Timestamp: c.now().UTC(), EnergyMWh: totalMWh}},
		CountryCode:    countryCode,
		ProjectType:    projectType,
		EFOverride:     efOverride,
	})
}

// CheckEligibility runs the methodology eligibility check on the inputs a
// calculation for req would use.
func (c *CreditCalculator) CheckEligibility(req Request) (methodology.Eligibility, error) {
	if err := checkRequest(req); err != nil {
		return methodology.Eligibility{}, err
	}
	ef, err := c.resolveEF(req, c.now().UTC())
	if err != nil {
		return methodology.Eligibility{}, err
	}
	return c.methodology.CheckEligibility(buildInputs(req, timeseries.Total(req.GenerationData), ef.value)), nil
}

// QuickEstimate returns the total emission reduction for generationMWh.
// Empty projectType and methodologyID default to solar and CDM AMS-I.D.
func QuickEstimate(registry *methodology.Registry, table *gridef.Table, generationMWh float64, countryCode, projectType, methodologyID string) (float64, error) {
	if projectType == "" {
		projectType = "solar"
	}
	if methodologyID == "" {
		methodologyID = methodology.IDAMSID
	}

	c, err := New(methodologyID, registry, table)
	if err != nil {
		return 0, err
	}
	res, err := c.CalculateSimple(generationMWh, countryCode, projectType, nil)
	if err != nil {
		return 0, err
	}
	return res.TotalERTCO2e, nil
}
