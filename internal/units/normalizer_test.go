package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMWh(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		unit      Unit
		semantics Semantics
		freq      int
		want      float64
	}{
		{"kW power over one hour", 1000, KW, Power, 3600, 1.0},
		{"kW power over 15 minutes", 1000, KW, Power, 900, 0.25},
		{"MW power over 30 minutes", 2, MW, Power, 1800, 1.0},
		{"kWh energy", 1000, KWh, EnergyPerInterval, 3600, 1.0},
		{"kWh energy ignores frequency", 1000, KWh, EnergyPerInterval, 60, 1.0},
		{"MWh energy passes through", 3.5, MWh, EnergyPerInterval, 900, 3.5},
		{"kW under energy semantics treated as kWh", 1000, KW, EnergyPerInterval, 900, 1.0},
		{"MW under energy semantics treated as MWh", 7, MW, EnergyPerInterval, 900, 7},
		{"kWh under power semantics is already energy", 1000, KWh, Power, 900, 1.0},
		{"MWh under power semantics is already energy", 2, MWh, Power, 900, 2},
		{"zero", 0, KW, Power, 3600, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToMWh(tt.value, tt.unit, tt.semantics, tt.freq), 1e-12)
		})
	}
}

func TestToMWh_UnknownUnitPassesThrough(t *testing.T) {
	assert.Equal(t, 42.0, ToMWh(42, Unit("GWh"), EnergyPerInterval, 3600))
	assert.Equal(t, 42.0, ToMWh(42, Unit("GW"), Power, 3600))
}

func TestToMWh_PowerRoundTrip(t *testing.T) {
	// Integrating a constant 1 MW reading sampled every 5 minutes over an hour
	// must yield exactly 1 MWh.
	total := 0.0
	for i := 0; i < 12; i++ {
		total += ToMWh(1000, KW, Power, 300)
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

func TestParseUnit(t *testing.T) {
	for _, u := range Units() {
		got, err := ParseUnit(string(u))
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}

	_, err := ParseUnit("GWh")
	require.Error(t, err)
	assert.Equal(t, "Invalid unit: GWh", err.Error())

	_, err = ParseUnit("kwh")
	assert.Error(t, err, "unit labels are case-significant")
}

func TestParseSemantics(t *testing.T) {
	got, err := ParseSemantics("POWER")
	require.NoError(t, err)
	assert.Equal(t, Power, got)

	got, err = ParseSemantics(" ENERGY_PER_INTERVAL ")
	require.NoError(t, err)
	assert.Equal(t, EnergyPerInterval, got)

	_, err = ParseSemantics("ENERGY")
	assert.EqualError(t, err, "Invalid value_semantics: ENERGY")
}

func TestInconsistency(t *testing.T) {
	assert.Empty(t, Inconsistency(KW, Power))
	assert.Empty(t, Inconsistency(MWh, EnergyPerInterval))
	assert.Contains(t, Inconsistency(KW, EnergyPerInterval), "(power)")
	assert.Contains(t, Inconsistency(MWh, Power), "(energy)")
}
