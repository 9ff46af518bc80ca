package methodology

import "fmt"

// AMSID is CDM AMS-I.D, grid-connected renewable electricity generation for
// small-scale projects up to 15 MW.
//
//	ER_y = EG_y × EF_grid,y - PE_y - LE_y
//
// Project emissions and leakage are zero for grid-connected renewables.
type AMSID struct {
	base
}

var hydroTypes = []string{"run_of_river", "reservoir", "pumped_storage"}

// NewAMSID returns the AMS-I.D methodology.
func NewAMSID() *AMSID {
	return &AMSID{base{Descriptor{
		ID:       IDAMSID,
		Registry: RegistryCDM,
		Name:     "Grid-connected renewable electricity generation (small-scale)",
		Version:  "19.0",
		Description: "Applies to renewable energy projects up to 15 MW capacity that supply " +
			"electricity to a national or regional grid. Covers solar PV, wind, " +
			"hydro (run-of-river), geothermal, and tidal/wave power.",
		ApplicableProjectTypes: []string{"solar", "wind", "hydro", "geothermal", "tidal", "wave"},
		MaxCapacityMW:          float64Ptr(SmallScaleMaxCapacityMW),
		MethodologyURL:         "https://cdm.unfccc.int/methodologies/DB/GNFWB3Y5IZGG3SHZTJYF8OPHXOGW3U",
		ToolReferences:         []string{"TOOL07", "TOOL01"},
	}}}
}

// RequiredInputsSchema lists the AMS-I.D inputs. Hydro reservoirs also need
// hydro_type and power_density.
func (m *AMSID) RequiredInputsSchema() Schema {
	return Schema{
		KeyGenerationMWh: {Type: TypeNumber, Required: true, Description: "Net electricity generated and supplied to grid (MWh)"},
		KeyEFGrid:        {Type: TypeNumber, Required: true, Description: "Grid emission factor (tCO₂/MWh)"},
		KeyProjectType: {Type: TypeString, Required: true, Enum: m.desc.ApplicableProjectTypes,
			Description: "Type of renewable energy project"},
		KeyCapacityMW:   {Type: TypeNumber, Description: "Installed capacity (MW)"},
		"hydro_type":    {Type: TypeString, Enum: hydroTypes, Description: "Type of hydro project (required for hydro)"},
		"power_density": {Type: TypeNumber, Description: "Power density for reservoir projects (W/m²)"},
	}
}

// ValidateInputs rejects capacities above the 15 MW small-scale ceiling and
// reservoir hydro with a power density of 4 W/m² or less.
func (m *AMSID) ValidateInputs(in Inputs) []string {
	var errs []string
	errs = requireNonNegative(errs, in, KeyGenerationMWh)
	errs = requireNonNegative(errs, in, KeyEFGrid)
	errs = m.checkProjectType(errs, in)
	errs = optionalNonNegative(errs, in, KeyCapacityMW)
	errs = checkEnum(errs, in, "hydro_type", hydroTypes)

	if capacity := in.NumberOr(KeyCapacityMW, 0); capacity > SmallScaleMaxCapacityMW {
		errs = append(errs, fmt.Sprintf("Capacity %s MW exceeds AMS-I.D limit of %s MW. Use ACM0002 for large-scale projects.",
			formatFloat(capacity), formatFloat(SmallScaleMaxCapacityMW)))
	}

	if in.String(KeyProjectType) == "hydro" && in.String("hydro_type") == "reservoir" &&
		in.NumberOr("power_density", 0) <= ReservoirMinPowerDensity {
		errs = append(errs, "Reservoir hydro projects require power density > 4 W/m² for eligibility")
	}

	return errs
}

// ComputeEmissionReductions credits EG × EF_grid with no project emissions
// or leakage.
func (m *AMSID) ComputeEmissionReductions(in Inputs) (Result, error) {
	return compute(m, in, func() Result {
		generation := in.NumberOr(KeyGenerationMWh, 0)
		ef := in.NumberOr(KeyEFGrid, 0)
		projectType := in.StringOr(KeyProjectType, "solar")

		a := m.assumptions("ER = EG × EF_grid - PE - LE")
		a["project_emissions_assumption"] = "Zero direct emissions for renewable generation"
		a["leakage_assumption"] = "No leakage for grid-connected renewable electricity"
		a["om_bm_weighting"] = omBMWeighting(projectType)

		return m.result(generation*ef, 0, 0, a)
	})
}
