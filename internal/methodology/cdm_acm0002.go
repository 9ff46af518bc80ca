package methodology

// ACM0002 is CDM ACM0002, grid-connected electricity generation from
// renewable sources without a capacity ceiling.
//
//	BE_y = EG_y × EF_grid,CM,y
//	PE_y = auxiliary_power_mwh × EF_grid + fossil_fuel_consumption_gj × EF_fossil
//	ER_y = BE_y - PE_y - LE_y
type ACM0002 struct {
	base
}

var (
	efTypes      = []string{"CM", "BM", "OM"}
	biomassTypes = []string{"agricultural_residue", "forestry", "dedicated_crops"}
)

// NewACM0002 returns the ACM0002 methodology.
func NewACM0002() *ACM0002 {
	return &ACM0002{base{Descriptor{
		ID:       IDACM0002,
		Registry: RegistryCDM,
		Name:     "Grid-connected electricity generation from renewable sources",
		Version:  "21.0",
		Description: "Consolidated methodology for large-scale grid-connected renewable energy projects. " +
			"Applies to solar PV, wind, hydro, geothermal, and renewable biomass projects " +
			"with no capacity limit.",
		ApplicableProjectTypes: []string{"solar", "wind", "hydro", "geothermal", "biomass"},
		MinCapacityMW:          float64Ptr(SmallScaleMaxCapacityMW),
		MethodologyURL:         "https://cdm.unfccc.int/methodologies/DB/N8QWQBT0TP7HQV8W6YWSWGEO4FTRDT",
		ToolReferences:         []string{"TOOL07", "TOOL01", "TOOL02", "TOOL03"},
	}}}
}

// RequiredInputsSchema lists the ACM0002 inputs; capacity is mandatory.
func (m *ACM0002) RequiredInputsSchema() Schema {
	return Schema{
		KeyGenerationMWh: {Type: TypeNumber, Required: true, Description: "Net electricity generated and supplied to grid (MWh)"},
		KeyEFGrid:        {Type: TypeNumber, Required: true, Description: "Combined Margin grid emission factor (tCO₂/MWh)"},
		"ef_type":        {Type: TypeString, Default: "CM", Enum: efTypes, Description: "Type of emission factor used"},
		KeyProjectType: {Type: TypeString, Required: true, Enum: m.desc.ApplicableProjectTypes,
			Description: "Type of renewable energy project"},
		KeyCapacityMW: {Type: TypeNumber, Required: true, Description: "Installed capacity (MW)"},
		"biomass_type": {Type: TypeString, Enum: biomassTypes,
			Description: "Type of biomass fuel (required for biomass projects)"},
		"biomass_sustainable": {Type: TypeBoolean, Default: true, Description: "Whether biomass is sustainably sourced"},
		"auxiliary_power_mwh": {Type: TypeNumber, Default: 0, Description: "Auxiliary power consumption from grid (MWh)"},
		"fossil_fuel_consumption_gj": {Type: TypeNumber, Default: 0,
			Description: "Fossil fuel consumption for project operation (GJ)"},
		"ef_fossil_fuel": {Type: TypeNumber, Default: DefaultFossilFuelEF,
			Description: "Emission factor of the fossil fuel consumed (tCO₂/GJ)"},
	}
}

// ValidateInputs checks the grid inputs and requires sustainably sourced
// biomass for biomass projects.
func (m *ACM0002) ValidateInputs(in Inputs) []string {
	var errs []string
	errs = requireNonNegative(errs, in, KeyGenerationMWh)
	errs = requireNonNegative(errs, in, KeyEFGrid)
	errs = requireNonNegative(errs, in, KeyCapacityMW)
	errs = m.checkProjectType(errs, in)
	errs = checkEnum(errs, in, "ef_type", efTypes)
	errs = checkEnum(errs, in, "biomass_type", biomassTypes)
	errs = optionalNonNegative(errs, in, "auxiliary_power_mwh")
	errs = optionalNonNegative(errs, in, "fossil_fuel_consumption_gj")
	errs = optionalNonNegative(errs, in, "ef_fossil_fuel")

	if in.String(KeyProjectType) == "biomass" && !in.Bool("biomass_sustainable", true) {
		errs = append(errs, "Biomass must be sustainably sourced for ACM0002 eligibility")
	}

	return errs
}

// ComputeEmissionReductions credits EG × EF_grid less auxiliary grid imports
// and fossil fuel burned on site.
func (m *ACM0002) ComputeEmissionReductions(in Inputs) (Result, error) {
	return compute(m, in, func() Result {
		generation := in.NumberOr(KeyGenerationMWh, 0)
		ef := in.NumberOr(KeyEFGrid, 0)
		projectType := in.StringOr(KeyProjectType, "solar")

		project := m.projectEmissions(in, ef)

		a := m.assumptions("ER = BE - PE - LE; BE = EG × EF_grid")
		a["ef_type"] = in.StringOr("ef_type", "CM")
		a["om_bm_weighting"] = omBMWeighting(projectType)
		a["tool_references"] = append([]string(nil), m.desc.ToolReferences...)
		if project > 0 {
			a["project_emissions_sources"] = "Auxiliary power and/or fossil fuel consumption"
		}

		return m.result(generation*ef, project, 0, a)
	})
}

// projectEmissions sums grid imports for auxiliary load and on-site fossil
// fuel combustion.
func (m *ACM0002) projectEmissions(in Inputs, efGrid float64) float64 {
	var pe float64
	if aux := in.NumberOr("auxiliary_power_mwh", 0); aux > 0 {
		pe += aux * efGrid
	}
	if fossil := in.NumberOr("fossil_fuel_consumption_gj", 0); fossil > 0 {
		pe += fossil * in.NumberOr("ef_fossil_fuel", DefaultFossilFuelEF)
	}
	return pe
}
