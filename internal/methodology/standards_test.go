package methodology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
)

func TestAM0123_WheelingLosses(t *testing.T) {
	m := NewAM0123()

	res, err := m.ComputeEmissionReductions(Inputs{
		"captive_generation_mwh":  1000.0,
		"ef_baseline":             0.8,
		"baseline_type":           "grid",
		"wheeling_losses_percent": 5.0,
		"delivery_method":         "grid_wheeling",
	})
	require.NoError(t, err)
	assert.InDelta(t, 760.0, res.BaselineEmissionsTCO2e, 1e-9)
	assert.InDelta(t, 760.0, res.TotalERTCO2e, 1e-9)
	assert.Equal(t, "VERRA", res.Registry)
	assert.Equal(t, "5.0%", res.Assumptions["wheeling_losses_applied"])
	assert.Equal(t, "grid_wheeling", res.Assumptions["delivery_method"])
	assert.InDelta(t, 950.0, res.Assumptions["effective_generation_mwh"], 1e-9)
	assert.NotContains(t, res.Assumptions, "fossil_fuel_displaced")
}

func TestAM0123_FossilBaseline(t *testing.T) {
	res, err := NewAM0123().ComputeEmissionReductions(Inputs{
		"captive_generation_mwh": 200.0,
		"ef_baseline":            0.7,
		"baseline_type":          "fossil_fuel",
	})
	require.NoError(t, err)
	assert.InDelta(t, 140.0, res.TotalERTCO2e, 1e-9)
	assert.Equal(t, "not_specified", res.Assumptions["fossil_fuel_displaced"])
	assert.Equal(t, "not_specified", res.Assumptions["delivery_method"])
	assert.Equal(t, "0.0%", res.Assumptions["wheeling_losses_applied"])
}

func TestAM0123_Validation(t *testing.T) {
	m := NewAM0123()

	assert.Equal(t, []string{
		"captive_generation_mwh is required",
		"ef_baseline is required",
		"baseline_type is required",
	}, m.ValidateInputs(Inputs{}))

	assert.Equal(t, []string{"Invalid baseline_type: solar. Allowed: grid, fossil_fuel, mixed"},
		m.ValidateInputs(Inputs{"captive_generation_mwh": 1.0, "ef_baseline": 0.5, "baseline_type": "solar"}))

	assert.Equal(t, []string{"wheeling_losses_percent must be between 0 and 100"},
		m.ValidateInputs(Inputs{"captive_generation_mwh": 1.0, "ef_baseline": 0.5, "baseline_type": "grid",
			"wheeling_losses_percent": 120.0}))
}

func TestGCCM001_OnsiteConsumption(t *testing.T) {
	res, err := NewGCCM001().ComputeEmissionReductions(Inputs{
		"generation_mwh":               1000.0,
		"ef_grid":                      0.6,
		"onsite_power_consumption_mwh": 50.0,
		"captive_consumption_mwh":      20.0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 600.0, res.BaselineEmissionsTCO2e, 1e-9)
	assert.InDelta(t, 30.0, res.ProjectEmissionsTCO2e, 1e-9)
	assert.InDelta(t, 570.0, res.TotalERTCO2e, 1e-9)
	assert.Equal(t, "GCC", res.Assumptions["registry"])
	assert.Equal(t, 20.0, res.Assumptions["captive_consumption_mwh"])
	assert.NotContains(t, res.Assumptions, "bess_included")
}

func TestGCCM001_BESS(t *testing.T) {
	m := NewGCCM001()

	errs := m.ValidateInputs(Inputs{"generation_mwh": 1.0, "ef_grid": 0.5, "has_bess": true})
	assert.Equal(t, []string{"bess_capacity_mwh is required when has_bess is true"}, errs)

	res, err := m.ComputeEmissionReductions(Inputs{"generation_mwh": 1.0, "ef_grid": 0.5,
		"has_bess": true, "bess_capacity_mwh": 4.0})
	require.NoError(t, err)
	assert.Equal(t, true, res.Assumptions["bess_included"])
	assert.Equal(t, 4.0, res.Assumptions["bess_capacity_mwh"])
}

func TestGoldStandard_Delegation(t *testing.T) {
	m := NewGoldStandardRE()

	tests := []struct {
		capacity       float64
		wantUnderlying string
	}{
		{10, IDAMSID},
		{15, IDAMSID},
		{20, IDACM0002},
	}

	for _, tt := range tests {
		t.Run(tt.wantUnderlying, func(t *testing.T) {
			res, err := m.ComputeEmissionReductions(Inputs{
				"generation_mwh":    5000.0,
				"ef_grid":           0.5,
				"project_type":      "wind",
				"capacity_mw":       tt.capacity,
				"sdg_contributions": []any{7.0, 13.0, 8.0},
			})
			require.NoError(t, err)

			assert.Equal(t, IDGoldStdRE, res.MethodologyID)
			assert.Equal(t, RegistryGoldStandard, res.Registry)
			assert.Equal(t, tt.wantUnderlying, res.Assumptions["underlying_cdm_methodology"])
			assert.Equal(t, tt.wantUnderlying, res.Assumptions["methodology"])
			assert.Equal(t, "1.0", res.Assumptions["gold_standard_version"])
			assert.Equal(t, []int{7, 13, 8}, res.Assumptions["sdg_contributions"])
			assert.Equal(t, false, res.Assumptions["stakeholder_consultation"])
			assert.InDelta(t, 2500.0, res.TotalERTCO2e, 1e-9)
		})
	}
}

func TestGoldStandard_DefaultSDGs(t *testing.T) {
	res, err := NewGoldStandardRE().ComputeEmissionReductions(Inputs{
		"generation_mwh": 100.0, "ef_grid": 0.5, "capacity_mw": 5.0,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 13}, res.Assumptions["sdg_contributions"])
}

func TestGoldStandard_Validation(t *testing.T) {
	m := NewGoldStandardRE()
	base := Inputs{"generation_mwh": 100.0, "ef_grid": 0.5, "capacity_mw": 5.0}

	tests := []struct {
		name string
		sdgs any
		want []string
	}{
		{"mandatory present", []any{7.0, 13.0}, nil},
		{"missing 13", []any{7.0, 8.0}, []string{"SDG 13 must be included in contributions"}},
		{"missing both", []int{1, 2}, []string{
			"SDG 7 must be included in contributions",
			"SDG 13 must be included in contributions",
		}},
		{"empty list passes validation", []any{}, nil},
		{"not a list", "7,13", []string{"sdg_contributions must be a list of SDG numbers"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base.Clone()
			in["sdg_contributions"] = tt.sdgs
			assert.Equal(t, tt.want, m.ValidateInputs(in))
		})
	}

	_, err := m.ComputeEmissionReductions(Inputs{"generation_mwh": 1.0, "ef_grid": 0.5})
	require.Error(t, err)
	assert.Equal(t, []string{"capacity_mw is required"}, calcerr.Violations(err))
}

func TestGoldStandard_UnderlyingRejectsProjectType(t *testing.T) {
	_, err := NewGoldStandardRE().ComputeEmissionReductions(Inputs{
		"generation_mwh": 100.0, "ef_grid": 0.5, "capacity_mw": 5.0, "project_type": "biogas",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, calcerr.ErrValidation)
	assert.Equal(t, []string{"Invalid project_type: biogas"}, calcerr.Violations(err))
}

func TestGoldStandard_Eligibility(t *testing.T) {
	m := NewGoldStandardRE()

	tests := []struct {
		name     string
		in       Inputs
		eligible bool
		reasons  []string
	}{
		{
			name:     "no SDGs",
			in:       Inputs{"project_type": "solar", "stakeholder_consultation_done": true},
			eligible: false,
			reasons: []string{
				"Gold Standard requires contribution to at least 2 SDGs",
				"Must contribute to SDG 7",
				"Must contribute to SDG 13",
			},
		},
		{
			name:     "complete",
			in:       Inputs{"project_type": "solar", "sdg_contributions": []any{7.0, 13.0}, "stakeholder_consultation_done": true},
			eligible: true,
			reasons:  []string{},
		},
		{
			name:     "consultation pending is advisory",
			in:       Inputs{"project_type": "solar", "sdg_contributions": []any{7.0, 13.0}},
			eligible: true,
			reasons:  []string{"Warning: Stakeholder consultation must be completed before certification"},
		},
		{
			name:     "single SDG",
			in:       Inputs{"project_type": "solar", "sdg_contributions": []any{7.0}, "stakeholder_consultation_done": true},
			eligible: false,
			reasons: []string{
				"Gold Standard requires contribution to at least 2 SDGs",
				"Must contribute to SDG 13",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.CheckEligibility(tt.in)
			assert.Equal(t, tt.eligible, got.Eligible)
			assert.Equal(t, tt.reasons, got.Reasons)
		})
	}
}
