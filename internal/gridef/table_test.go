package gridef

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
)

// TestDefault_AllWithinValidRange checks every factor is physically plausible
// and expressed in tCO2/MWh rather than kg or g.
func TestDefault_AllWithinValidRange(t *testing.T) {
	const minValidFactor = 0.0
	const maxValidFactor = 2.0

	table, err := Default()
	require.NoError(t, err)
	require.Positive(t, table.Len())

	for _, rec := range table.All() {
		name := rec.CountryCode
		if rec.Regional() {
			name += "/" + rec.RegionCode
		}
		t.Run(name, func(t *testing.T) {
			assert.GreaterOrEqual(t, rec.CombinedMargin, minValidFactor)
			assert.LessOrEqual(t, rec.CombinedMargin, maxValidFactor)
			assert.GreaterOrEqual(t, rec.EmissionFactor(), minValidFactor)
			assert.LessOrEqual(t, rec.EmissionFactor(), maxValidFactor)
			assert.NotEmpty(t, rec.SourceName)
			assert.GreaterOrEqual(t, rec.DataYear, 2015)
		})
	}
}

func TestDefault_ExpectedCountriesPresent(t *testing.T) {
	table := MustDefault()

	for _, code := range []string{"IN", "PK", "BD", "BR", "CN", "US", "ZA", "KE", "DE", "GB"} {
		t.Run(code, func(t *testing.T) {
			rec, ok := table.Get(code, "")
			require.True(t, ok, "expected a national record for %s", code)
			assert.Equal(t, code, rec.CountryCode)
			assert.False(t, rec.Regional())
		})
	}
}

func TestDefault_IsShared(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestGet_India(t *testing.T) {
	rec, ok := MustDefault().Get("in", "")
	require.True(t, ok)

	assert.Equal(t, "India", rec.CountryName)
	assert.Equal(t, 0.757, rec.CombinedMargin)
	require.NotNil(t, rec.WeightedAverage)
	assert.Equal(t, 0.727, rec.EmissionFactor())
	assert.Equal(t, "CEA CO2 Baseline Database v20.0", rec.SourceName)
	assert.Equal(t, 2024, rec.DataYear)
}

func TestGet_CombinedMarginWithoutWeightedAverage(t *testing.T) {
	rec, ok := MustDefault().Get("PK", "")
	require.True(t, ok)
	assert.Nil(t, rec.WeightedAverage)
	assert.Equal(t, rec.CombinedMargin, rec.EmissionFactor())
}

func TestGet_Regions(t *testing.T) {
	table := MustDefault()

	tests := []struct {
		name    string
		country string
		region  string
		wantOK  bool
		wantEF  float64
	}{
		{"national US", "US", "", true, 0.386},
		{"WECC", "US", "WECC", true, 0.396},
		{"lower-case region", "us", "npcc", true, 0.221},
		{"unknown US region", "US", "XXXX", false, 0},
		{"region ignored without regional data", "IN", "SOUTH", true, 0.727},
		{"unknown country", "NOPE", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := table.Get(tt.country, tt.region)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantEF, rec.EmissionFactor())
			}
		})
	}
}

// TestRegionalVariation checks that US regional records differ, so a regional
// lookup is not silently returning the national value.
func TestRegionalVariation(t *testing.T) {
	regions := MustDefault().Regions("US")
	require.Len(t, regions, 7)

	seen := make(map[float64]bool)
	for _, r := range regions {
		seen[r.EmissionFactor()] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestCountries(t *testing.T) {
	countries := MustDefault().Countries()
	require.NotEmpty(t, countries)

	for i := 1; i < len(countries); i++ {
		assert.Less(t, countries[i-1].Code, countries[i].Code)
	}

	for _, c := range countries {
		if c.Code == "US" {
			assert.True(t, c.HasRegions)
		}
		if c.Code == "IN" {
			assert.False(t, c.HasRegions)
		}
	}
}

const header = "country_code,country_name,region_code,region_name,combined_margin,operating_margin,build_margin,weighted_average,source_name,source_url,data_year\n"

func TestParseCSV(t *testing.T) {
	data := header +
		"xx,Testland,,,0.5,,,0.45,Test Authority,https://example.org,2023\n" +
		"XX,Testland,north,North Grid,0.6,,,,Test Authority,,2023\n"

	table, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	rec, ok := table.Get("XX", "")
	require.True(t, ok)
	assert.Equal(t, 0.45, rec.EmissionFactor())
	assert.Equal(t, "https://example.org", rec.SourceURL)

	rec, ok = table.Get("XX", "NORTH")
	require.True(t, ok)
	assert.Equal(t, 0.6, rec.EmissionFactor())
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"duplicate country", header +
			"XX,Testland,,,0.5,,,,A,,2023\n" +
			"XX,Testland,,,0.6,,,,B,,2023\n"},
		{"duplicate region", header +
			"XX,Testland,R1,One,0.5,,,,A,,2023\n" +
			"XX,Testland,r1,One,0.6,,,,B,,2023\n"},
		{"bad combined margin", header + "XX,Testland,,,abc,,,,A,,2023\n"},
		{"negative combined margin", header + "XX,Testland,,,-0.1,,,,A,,2023\n"},
		{"NaN combined margin", header + "XX,Testland,,,NaN,,,,A,,2023\n"},
		{"infinite weighted average", header + "XX,Testland,,,0.5,,,+Inf,A,,2023\n"},
		{"bad year", header + "XX,Testland,,,0.5,,,,A,,twenty\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, calcerr.ErrConfiguration)
		})
	}
}

func TestParseCSV_SkipsShortRows(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(header + "XX,Testland\nYY,Other,,,0.3,,,,A,,2022\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestParseCSV_EmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestWriteCSV_ReadableByParseCSV(t *testing.T) {
	table := MustDefault()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table.All()))
	assert.True(t, strings.HasPrefix(buf.String(), header))

	reread, err := ParseCSV(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(table.All(), reread.All()); diff != "" {
		t.Errorf("records changed after rewrite (-want +got):\n%s", diff)
	}
}
