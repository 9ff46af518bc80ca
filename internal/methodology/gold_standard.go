package methodology

import (
	"fmt"
	"slices"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
)

// GoldStandardRE is the Gold Standard for the Global Goals renewable energy
// activity. Emission reductions come from an approved CDM methodology chosen
// by capacity: AMS-I.D up to 15 MW, ACM0002 above. Gold Standard adds SDG,
// stakeholder and safeguard requirements on top.
type GoldStandardRE struct {
	base

	small Methodology
	large Methodology
}

// NewGoldStandardRE returns the Gold Standard renewable energy methodology.
func NewGoldStandardRE() *GoldStandardRE {
	return &GoldStandardRE{
		base: base{Descriptor{
			ID:       IDGoldStdRE,
			Registry: RegistryGoldStandard,
			Name:     "Gold Standard Renewable Energy",
			Version:  "1.0",
			Description: "Gold Standard for the Global Goals renewable energy activities. " +
				"Uses approved CDM methodologies with additional requirements for SDG impacts, " +
				"stakeholder engagement, and environmental/social safeguards.",
			ApplicableProjectTypes: []string{"solar", "wind", "hydro", "geothermal", "biogas", "biomass"},
			MethodologyURL:         "https://globalgoals.goldstandard.org/standards/431_V1.2_AR_Renewable-Energy-Activity-Requirements.pdf",
			ToolReferences:         []string{"CDM AMS-I.D", "CDM ACM0002", "CDM AMS-III.D"},
		}},
		small: NewAMSID(),
		large: NewACM0002(),
	}
}

// RequiredInputsSchema lists the Gold Standard inputs. SDG contributions
// default to the mandatory SDGs 7 and 13.
func (m *GoldStandardRE) RequiredInputsSchema() Schema {
	return Schema{
		KeyGenerationMWh: {Type: TypeNumber, Required: true, Description: "Net electricity generated (MWh)"},
		KeyEFGrid:        {Type: TypeNumber, Required: true, Description: "Grid emission factor (tCO₂/MWh)"},
		KeyProjectType: {Type: TypeString, Required: true, Enum: m.desc.ApplicableProjectTypes,
			Description: "Type of renewable energy project"},
		KeyCapacityMW: {Type: TypeNumber, Required: true, Description: "Installed capacity (MW)"},
		"sdg_contributions": {Type: TypeArray, Default: slices.Clone(MandatorySDGs),
			Description: "List of SDG numbers the project contributes to"},
		"stakeholder_consultation_done": {Type: TypeBoolean, Default: false,
			Description: "Whether stakeholder consultation has been completed"},
		"safeguards_assessment_done": {Type: TypeBoolean, Default: false,
			Description: "Whether safeguards assessment has been completed"},
	}
}

// ValidateInputs checks the grid inputs and, when an SDG list is given,
// that it includes SDGs 7 and 13.
func (m *GoldStandardRE) ValidateInputs(in Inputs) []string {
	var errs []string
	errs = requireNonNegative(errs, in, KeyGenerationMWh)
	errs = requireNonNegative(errs, in, KeyEFGrid)
	errs = requireNonNegative(errs, in, KeyCapacityMW)
	errs = m.checkProjectType(errs, in)

	if in.Has("sdg_contributions") {
		sdgs, ok := in.IntList("sdg_contributions")
		switch {
		case !ok:
			errs = append(errs, "sdg_contributions must be a list of SDG numbers")
		case len(sdgs) > 0:
			for _, mandatory := range MandatorySDGs {
				if !slices.Contains(sdgs, mandatory) {
					errs = append(errs, fmt.Sprintf("SDG %d must be included in contributions", mandatory))
				}
			}
		}
	}

	return errs
}

// CheckEligibility adds the SDG and stakeholder requirements to the base
// checks. Missing mandatory SDGs make a project ineligible; a pending
// stakeholder consultation is only a warning.
func (m *GoldStandardRE) CheckEligibility(in Inputs) Eligibility {
	reasons := m.eligibilityReasons(in)

	sdgs, _ := in.IntList("sdg_contributions")
	if len(sdgs) < MinSDGContributions {
		reasons = append(reasons, fmt.Sprintf("Gold Standard requires contribution to at least %d SDGs", MinSDGContributions))
	}
	for _, mandatory := range MandatorySDGs {
		if !slices.Contains(sdgs, mandatory) {
			reasons = append(reasons, fmt.Sprintf("Must contribute to SDG %d", mandatory))
		}
	}

	if !in.Bool("stakeholder_consultation_done", false) {
		reasons = append(reasons, WarningPrefix+" Stakeholder consultation must be completed before certification")
	}

	return newEligibility(reasons)
}

// Underlying returns the CDM methodology used for a project of the given
// capacity.
func (m *GoldStandardRE) Underlying(capacityMW float64) Methodology {
	if capacityMW <= SmallScaleMaxCapacityMW {
		return m.small
	}
	return m.large
}

// ComputeEmissionReductions delegates to AMS-I.D up to 15 MW and to ACM0002
// above, then relabels the result as Gold Standard.
func (m *GoldStandardRE) ComputeEmissionReductions(in Inputs) (Result, error) {
	if errs := validate(m, in); len(errs) > 0 {
		return Result{}, calcerr.Validation(errs)
	}

	capacity := in.NumberOr(KeyCapacityMW, 0)
	underlying := m.Underlying(capacity)

	res, err := underlying.ComputeEmissionReductions(Inputs{
		KeyGenerationMWh: in[KeyGenerationMWh],
		KeyEFGrid:        in[KeyEFGrid],
		KeyProjectType:   in.StringOr(KeyProjectType, "solar"),
		KeyCapacityMW:    capacity,
	})
	if err != nil {
		return Result{}, err
	}

	res.MethodologyID = m.desc.ID
	res.Registry = m.desc.Registry

	sdgs, ok := in.IntList("sdg_contributions")
	if !ok {
		sdgs = slices.Clone(MandatorySDGs)
	}
	res.Assumptions["gold_standard_version"] = m.desc.Version
	res.Assumptions["underlying_cdm_methodology"] = underlying.Descriptor().ID
	res.Assumptions["sdg_contributions"] = sdgs
	res.Assumptions["stakeholder_consultation"] = in.Bool("stakeholder_consultation_done", false)
	res.Assumptions["safeguards_assessment"] = in.Bool("safeguards_assessment_done", false)

	return res, nil
}
