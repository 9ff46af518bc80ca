package methodology

import (
	"fmt"

	"github.com/rshade/carbon-credit-engine/internal/numeric"
)

// AMSIIID is CDM AMS-III.D, methane recovery in animal manure management
// systems.
//
//	CH4  = biogas_captured_m3 × methane_fraction × ρ_CH4
//	BE_y = CH4 × GWP_CH4
//	PE_y = CH4 × leak × GWP_CH4 [+ CH4 × (1 - leak) × (1 - η_flare) × GWP_CH4 when flared]
//	ER_y = BE_y - PE_y - LE_y
type AMSIIID struct {
	base
}

var (
	biogasUtilizations = []string{"flared", "electricity", "heat", "upgraded", "combined"}
	livestockTypes     = []string{"cattle", "swine", "poultry", "mixed"}
)

// NewAMSIIID returns the AMS-III.D methodology.
func NewAMSIIID() *AMSIIID {
	return &AMSIIID{base{Descriptor{
		ID:       IDAMSIIID,
		Registry: RegistryCDM,
		Name:     "Methane recovery in animal manure management systems",
		Version:  "22.0",
		Description: "Applies to projects that recover and destroy/utilize methane from " +
			"animal manure management systems. Includes anaerobic digesters, " +
			"covered lagoons, and biogas capture systems.",
		ApplicableProjectTypes: []string{"biogas"},
		MethodologyURL:         "https://cdm.unfccc.int/methodologies/DB/",
		ToolReferences:         []string{"TOOL03", "Project and leakage emissions from anaerobic digesters"},
	}}}
}

// RequiredInputsSchema lists the AMS-III.D inputs.
func (m *AMSIIID) RequiredInputsSchema() Schema {
	return Schema{
		"biogas_captured_m3": {Type: TypeNumber, Required: true, Description: "Total biogas captured (m³)"},
		"methane_fraction": {Type: TypeNumber, Default: DefaultMethaneFraction,
			Description: "Methane fraction in biogas (0-1, typically 0.55-0.65)"},
		"biogas_utilization": {Type: TypeString, Required: true, Enum: biogasUtilizations,
			Description: "How captured biogas is utilized"},
		"electricity_generated_mwh": {Type: TypeNumber, Description: "Electricity generated from biogas (MWh)"},
		"livestock_type":            {Type: TypeString, Enum: livestockTypes, Description: "Type of livestock"},
		"livestock_count":           {Type: TypeNumber, Description: "Number of animals"},
		"flare_efficiency": {Type: TypeNumber, Default: DefaultFlareEfficiency,
			Description: "Flare destruction efficiency (0-1)"},
		"physical_leakage_fraction": {Type: TypeNumber, Default: DefaultPhysicalLeakageFraction,
			Description: "Physical leakage fraction from system (0-1)"},
		"average_temperature_c": {Type: TypeNumber, Description: "Annual average temperature (°C)"},
	}
}

// ValidateInputs requires a captured biogas volume and a utilization route,
// and only accepts sites with an annual average above 5°C.
func (m *AMSIIID) ValidateInputs(in Inputs) []string {
	var errs []string
	errs = requireNonNegative(errs, in, "biogas_captured_m3")

	if !in.Has("biogas_utilization") {
		errs = append(errs, "biogas_utilization is required")
	} else {
		errs = checkEnum(errs, in, "biogas_utilization", biogasUtilizations)
	}

	if in.Has("methane_fraction") {
		f, ok := in.Number("methane_fraction")
		if !ok || f <= 0 || f > 1 {
			errs = append(errs, "methane_fraction must be between 0 and 1")
		}
	}

	errs = optionalFraction(errs, in, "flare_efficiency")
	errs = optionalFraction(errs, in, "physical_leakage_fraction")
	errs = optionalNonNegative(errs, in, "electricity_generated_mwh")
	errs = optionalNonNegative(errs, in, "livestock_count")
	errs = checkEnum(errs, in, "livestock_type", livestockTypes)

	if temp, ok := in.Number("average_temperature_c"); ok && temp <= ManureMinTemperatureC {
		errs = append(errs, m.temperatureMessage())
	}

	return errs
}

// CheckEligibility adds the climate condition to the base checks.
func (m *AMSIIID) CheckEligibility(in Inputs) Eligibility {
	reasons := m.eligibilityReasons(in)
	if temp, ok := in.Number("average_temperature_c"); ok && temp <= ManureMinTemperatureC {
		reasons = append(reasons, m.temperatureMessage())
	}
	return newEligibility(reasons)
}

func (m *AMSIIID) temperatureMessage() string {
	return fmt.Sprintf("AMS-III.D requires annual average temperature > %s°C for eligibility",
		formatFloat(ManureMinTemperatureC))
}

// ComputeEmissionReductions converts captured biogas to CH4 and credits its
// GWP, less physical leakage and unburned methane when flared.
func (m *AMSIIID) ComputeEmissionReductions(in Inputs) (Result, error) {
	return compute(m, in, func() Result {
		biogas := in.NumberOr("biogas_captured_m3", 0)
		fraction := in.NumberOr("methane_fraction", DefaultMethaneFraction)
		utilization := in.StringOr("biogas_utilization", "flared")

		ch4 := biogas * fraction * CH4DensityTonnesPerM3
		baseline := ch4 * GWPCH4
		project := m.projectEmissions(in, ch4, utilization)

		a := m.assumptions("ER = CH4_captured × GWP - PE - LE")
		a["gwp_ch4"] = GWPCH4
		a["gwp_source"] = "IPCC AR5 (100-year)"
		a["ch4_density_tonnes_per_m3"] = CH4DensityTonnesPerM3
		a["methane_fraction_used"] = fraction
		a["biogas_utilization"] = utilization
		a["ch4_captured_tonnes"] = numeric.Round4(ch4)

		return m.result(baseline, project, 0, a)
	})
}

// projectEmissions covers physical leakage from the system and, when biogas
// is flared, the methane that escapes combustion.
func (m *AMSIIID) projectEmissions(in Inputs, ch4 float64, utilization string) float64 {
	leak := in.NumberOr("physical_leakage_fraction", DefaultPhysicalLeakageFraction)
	pe := ch4 * leak * GWPCH4

	if utilization == "flared" || utilization == "combined" {
		efficiency := in.NumberOr("flare_efficiency", DefaultFlareEfficiency)
		pe += ch4 * (1 - leak) * (1 - efficiency) * GWPCH4
	}
	return pe
}
