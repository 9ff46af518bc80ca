package methodology

import (
	"encoding/json"
	"strings"
)

// Descriptor identifies a methodology and its applicability limits.
type Descriptor struct {
	ID          string `json:"id"`
	Registry    string `json:"registry"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`

	ApplicableProjectTypes []string `json:"applicable_project_types"`

	// MinCapacityMW and MaxCapacityMW are nil when the methodology has no bound.
	MinCapacityMW *float64 `json:"min_capacity_mw"`
	MaxCapacityMW *float64 `json:"max_capacity_mw"`

	MethodologyURL string   `json:"methodology_url,omitempty"`
	ToolReferences []string `json:"tool_references"`
}

// AppliesTo reports whether projectType is one of the applicable types,
// ignoring case.
func (d Descriptor) AppliesTo(projectType string) bool {
	for _, t := range d.ApplicableProjectTypes {
		if strings.EqualFold(t, projectType) {
			return true
		}
	}
	return false
}

func (d Descriptor) clone() Descriptor {
	d.ApplicableProjectTypes = append([]string(nil), d.ApplicableProjectTypes...)
	d.ToolReferences = append([]string(nil), d.ToolReferences...)
	if d.MinCapacityMW != nil {
		v := *d.MinCapacityMW
		d.MinCapacityMW = &v
	}
	if d.MaxCapacityMW != nil {
		v := *d.MaxCapacityMW
		d.MaxCapacityMW = &v
	}
	return d
}

// Input types used in schemas.
const (
	TypeNumber  = "number"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// InputSpec describes one methodology input.
type InputSpec struct {
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description"`
}

// Schema maps input keys to their description.
type Schema map[string]InputSpec

// Inputs is the open key/value mapping a methodology computes from.
// Numbers may be any Go numeric type or a json.Number.
type Inputs map[string]any

// Has reports whether key is present with a non-nil value.
func (in Inputs) Has(key string) bool {
	v, ok := in[key]
	return ok && v != nil
}

// Number returns the numeric value of key. ok is false when the key is
// missing or not a number.
func (in Inputs) Number(key string) (v float64, ok bool) {
	if !in.Has(key) {
		return 0, false
	}
	return toFloat(in[key])
}

// NumberOr returns the numeric value of key, or def when it is missing or not
// a number.
func (in Inputs) NumberOr(key string, def float64) float64 {
	if v, ok := in.Number(key); ok {
		return v
	}
	return def
}

// String returns the string value of key, or "" when missing.
func (in Inputs) String(key string) string {
	s, _ := in[key].(string)
	return s
}

// StringOr returns the string value of key, or def when missing or empty.
func (in Inputs) StringOr(key, def string) string {
	if s := in.String(key); s != "" {
		return s
	}
	return def
}

// Bool returns the boolean value of key. Missing keys and non-boolean values
// report def.
func (in Inputs) Bool(key string, def bool) bool {
	if b, ok := in[key].(bool); ok {
		return b
	}
	return def
}

// IntList returns the integer list stored under key. ok is false when the key
// is missing or holds anything other than a list of whole numbers.
func (in Inputs) IntList(key string) (list []int, ok bool) {
	if !in.Has(key) {
		return nil, false
	}
	switch vs := in[key].(type) {
	case []int:
		return append([]int(nil), vs...), true
	case []float64:
		out := make([]int, 0, len(vs))
		for _, f := range vs {
			if f != float64(int(f)) {
				return nil, false
			}
			out = append(out, int(f))
		}
		return out, true
	case []any:
		out := make([]int, 0, len(vs))
		for _, item := range vs {
			f, ok := toFloat(item)
			if !ok || f != float64(int(f)) {
				return nil, false
			}
			out = append(out, int(f))
		}
		return out, true
	default:
		return nil, false
	}
}

// Clone returns a shallow copy of in.
func (in Inputs) Clone() Inputs {
	out := make(Inputs, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Result is the outcome of a methodology computation. Emission figures are
// in tCO2e rounded to four decimal places, and TotalERTCO2e equals
// BaselineEmissionsTCO2e - ProjectEmissionsTCO2e - LeakageTCO2e exactly.
type Result struct {
	TotalERTCO2e           float64 `json:"total_er_tco2e"`
	BaselineEmissionsTCO2e float64 `json:"baseline_emissions_tco2e"`
	ProjectEmissionsTCO2e  float64 `json:"project_emissions_tco2e"`
	LeakageTCO2e           float64 `json:"leakage_tco2e"`

	// Assumptions always holds "methodology", "version" and "formula".
	Assumptions map[string]any `json:"assumptions"`

	MethodologyID string `json:"methodology_id"`
	Registry      string `json:"registry"`
}

// Eligibility is the advisory applicability check of a methodology.
type Eligibility struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
}

// newEligibility derives Eligible from reasons: only reasons without the
// warning prefix make a project ineligible.
func newEligibility(reasons []string) Eligibility {
	if reasons == nil {
		reasons = []string{}
	}
	eligible := true
	for _, r := range reasons {
		if !strings.HasPrefix(r, WarningPrefix) {
			eligible = false
			break
		}
	}
	return Eligibility{Eligible: eligible, Reasons: reasons}
}
