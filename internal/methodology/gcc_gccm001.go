package methodology

// GCCM001 is Global Carbon Council GCCM001 v4.0, grid-connected renewable
// energy generation with optional battery storage.
//
//	BE_y = EG_y × EF_grid,CM,y
//	PE_y = onsite_power_consumption_mwh × EF_grid
//	ER_y = BE_y - PE_y - LE_y
type GCCM001 struct {
	base
}

// NewGCCM001 returns the GCCM001 methodology.
func NewGCCM001() *GCCM001 {
	return &GCCM001{base{Descriptor{
		ID:       IDGCCM001,
		Registry: RegistryGCC,
		Name:     "Grid-connected renewable energy generation",
		Version:  "4.0",
		Description: "Global Carbon Council methodology for grid-connected renewable energy projects. " +
			"Supports solar PV, wind (onshore/offshore), tidal, and wave energy. " +
			"Version 4.0 includes support for battery storage systems.",
		ApplicableProjectTypes: []string{"solar", "wind", "tidal", "wave"},
		MethodologyURL:         "https://globalcarboncouncil.com/gcc-methodologies/",
		ToolReferences:         []string{"TOOL07 (CDM)", "TOOL01 (CDM)"},
	}}}
}

// RequiredInputsSchema lists the GCCM001 inputs.
func (m *GCCM001) RequiredInputsSchema() Schema {
	return Schema{
		KeyGenerationMWh: {Type: TypeNumber, Required: true, Description: "Net electricity generated and supplied to grid (MWh)"},
		KeyEFGrid:        {Type: TypeNumber, Required: true, Description: "Grid emission factor (tCO₂/MWh)"},
		KeyProjectType: {Type: TypeString, Required: true, Enum: m.desc.ApplicableProjectTypes,
			Description: "Type of renewable energy project"},
		KeyCapacityMW:       {Type: TypeNumber, Description: "Installed capacity (MW)"},
		"has_bess":          {Type: TypeBoolean, Default: false, Description: "Whether project includes battery storage"},
		"bess_capacity_mwh": {Type: TypeNumber, Description: "Battery storage capacity (MWh)"},
		"captive_consumption_mwh": {Type: TypeNumber, Default: 0,
			Description: "Electricity consumed on-site (MWh)"},
		"onsite_power_consumption_mwh": {Type: TypeNumber, Default: 0,
			Description: "On-site power consumption from grid (MWh)"},
	}
}

// ValidateInputs requires bess_capacity_mwh when has_bess is set.
func (m *GCCM001) ValidateInputs(in Inputs) []string {
	var errs []string
	errs = requireNonNegative(errs, in, KeyGenerationMWh)
	errs = requireNonNegative(errs, in, KeyEFGrid)
	errs = m.checkProjectType(errs, in)
	errs = optionalNonNegative(errs, in, KeyCapacityMW)
	errs = optionalNonNegative(errs, in, "captive_consumption_mwh")
	errs = optionalNonNegative(errs, in, "onsite_power_consumption_mwh")

	if in.Bool("has_bess", false) {
		if v, ok := in.Number("bess_capacity_mwh"); !ok || v == 0 {
			errs = append(errs, "bess_capacity_mwh is required when has_bess is true")
		} else if v < 0 {
			errs = append(errs, "bess_capacity_mwh must be non-negative")
		}
	}

	return errs
}

// ComputeEmissionReductions credits EG × EF_grid less on-site consumption
// drawn from the grid.
func (m *GCCM001) ComputeEmissionReductions(in Inputs) (Result, error) {
	return compute(m, in, func() Result {
		generation := in.NumberOr(KeyGenerationMWh, 0)
		ef := in.NumberOr(KeyEFGrid, 0)
		onsite := in.NumberOr("onsite_power_consumption_mwh", 0)

		a := m.assumptions("ER = EG × EF_grid - PE - LE")
		a["registry"] = m.desc.Registry
		a["om_bm_weighting"] = weightingIntermittent + " (solar/wind)"
		a["based_on"] = "CDM methodologies and tools"
		if in.Bool("has_bess", false) {
			a["bess_included"] = true
			a["bess_capacity_mwh"] = in.NumberOr("bess_capacity_mwh", 0)
		}
		if captive := in.NumberOr("captive_consumption_mwh", 0); captive > 0 {
			a["captive_consumption_mwh"] = captive
		}

		return m.result(generation*ef, onsite*ef, 0, a)
	})
}
