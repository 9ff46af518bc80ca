package calculator

import (
	"time"

	"github.com/rshade/carbon-credit-engine/internal/methodology"
	"github.com/rshade/carbon-credit-engine/internal/timeseries"
)

// Request is the input of a calculation.
type Request struct {
	GenerationData []timeseries.DataPoint
	CountryCode    string
	ProjectType    string

	// EFOverride replaces the dataset lookup when set.
	EFOverride *float64

	// RegionCode selects a sub-national grid where the dataset has one.
	RegionCode string

	// AdditionalInputs are applied last and win over every derived input.
	AdditionalInputs methodology.Inputs
}

// Result is the auditable outcome of a calculation, ready for persistence.
type Result struct {
	// EstimationID is assigned by the persistence layer and is nil here.
	EstimationID  *string `json:"estimation_id"`
	CalculationID string  `json:"calculation_id"`

	ProjectType   string `json:"project_type"`
	MethodologyID string `json:"methodology_id"`
	Registry      string `json:"registry"`

	TotalGenerationMWh     float64 `json:"total_generation_mwh"`
	TotalERTCO2e           float64 `json:"total_er_tco2e"`
	BaselineEmissionsTCO2e float64 `json:"baseline_emissions_tco2e"`
	ProjectEmissionsTCO2e  float64 `json:"project_emissions_tco2e"`
	LeakageTCO2e           float64 `json:"leakage_tco2e"`

	CountryCode string  `json:"country_code"`
	RegionCode  *string `json:"region_code"`
	EFValue     float64 `json:"ef_value"`
	EFSource    string  `json:"ef_source"`
	EFYear      int     `json:"ef_year"`

	MonthlyBreakdown []timeseries.MonthlyEntry `json:"monthly_breakdown"`
	AnnualBreakdown  []timeseries.AnnualEntry  `json:"annual_breakdown"`

	CalculationDate time.Time               `json:"calculation_date"`
	Assumptions     map[string]any          `json:"assumptions"`
	MethodologyInfo methodology.Descriptor  `json:"methodology_info"`
	Eligibility     methodology.Eligibility `json:"eligibility"`
}
