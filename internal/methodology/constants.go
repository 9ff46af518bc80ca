package methodology

// Methodology identifiers. These are stable and appear in persisted results.
const (
	IDAMSID     = "CDM_AMS_ID"
	IDACM0002   = "CDM_ACM0002"
	IDAMSIIID   = "CDM_AMS_III_D"
	IDAM0123    = "VERRA_AM0123"
	IDGCCM001   = "GCC_GCCM001"
	IDGoldStdRE = "GS_RE"
)

// Crediting standards (registries) the methodologies belong to.
const (
	RegistryCDM          = "CDM"
	RegistryVerra        = "VERRA"
	RegistryGCC          = "GCC"
	RegistryGoldStandard = "GOLD_STANDARD"
)

// Shared input keys. Every methodology may read these regardless of its schema.
const (
	KeyGenerationMWh = "generation_mwh"
	KeyEFGrid        = "ef_grid"
	KeyProjectType   = "project_type"
	KeyCapacityMW    = "capacity_mw"
)

const (
	// GWPCH4 is the 100-year global warming potential of methane.
	// Source: IPCC AR5.
	GWPCH4 = 28.0

	// CH4DensityTonnesPerM3 is the density of methane at standard temperature
	// and pressure.
	CH4DensityTonnesPerM3 = 0.000717

	// DefaultMethaneFraction is the methane share of raw biogas when the
	// project does not measure it (typical range 0.55-0.65).
	DefaultMethaneFraction = 0.60

	// DefaultFlareEfficiency is the destruction efficiency of an enclosed flare.
	DefaultFlareEfficiency = 0.98

	// DefaultPhysicalLeakageFraction is the share of captured biogas lost from
	// digesters, pipes and storage.
	DefaultPhysicalLeakageFraction = 0.05

	// DefaultFossilFuelEF is the average of diesel and natural gas in tCO2/GJ.
	DefaultFossilFuelEF = 0.074

	// SmallScaleMaxCapacityMW is the AMS-I.D capacity ceiling. Above it a
	// project is large scale and uses ACM0002.
	SmallScaleMaxCapacityMW = 15.0

	// ReservoirMinPowerDensity is the power density (W/m²) a reservoir hydro
	// project must exceed.
	ReservoirMinPowerDensity = 4.0

	// ManureMinTemperatureC is the annual average temperature a manure
	// management system must exceed.
	ManureMinTemperatureC = 5.0

	// MinSDGContributions is the number of SDGs a Gold Standard project must
	// contribute to.
	MinSDGContributions = 2
)

// MandatorySDGs are the goals every Gold Standard energy project contributes
// to: SDG 7 (clean energy) and SDG 13 (climate action).
var MandatorySDGs = []int{7, 13}

// Weighting of operating and build margin recorded in assumptions.
const (
	weightingIntermittent = "75% OM / 25% BM"
	weightingFirm         = "50% OM / 50% BM"
)

// WarningPrefix marks an advisory eligibility reason.
const WarningPrefix = "Warning:"
