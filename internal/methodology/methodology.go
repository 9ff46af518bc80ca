// Package methodology implements the carbon crediting methodologies and the
// registry that dispatches to them.
//
// Each methodology turns an open set of inputs into baseline emissions,
// project emissions and leakage, from which the emission reduction is derived:
//
//	ER = BE - PE - LE
//
// Validation findings block a computation. Eligibility findings are data for
// the caller; reasons prefixed with "Warning:" never make a project
// ineligible.
package methodology

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
	"github.com/rshade/carbon-credit-engine/internal/numeric"
)

// Methodology is a crediting methodology.
type Methodology interface {
	// Descriptor returns the identity and applicability limits.
	Descriptor() Descriptor

	// RequiredInputsSchema describes every input the methodology reads.
	RequiredInputsSchema() Schema

	// ValidateInputs returns every problem with in. An empty result means the
	// inputs can be computed.
	ValidateInputs(in Inputs) []string

	// CheckEligibility reports whether the project fits the methodology.
	CheckEligibility(in Inputs) Eligibility

	// ComputeEmissionReductions validates in and computes the reductions. A
	// validation failure is returned as a *calcerr.Error of KindValidation
	// carrying every message.
	ComputeEmissionReductions(in Inputs) (Result, error)
}

// base carries the descriptor and the default eligibility check shared by
// all methodologies.
type base struct {
	desc Descriptor
}

func (b base) Descriptor() Descriptor {
	return b.desc.clone()
}

func (b base) CheckEligibility(in Inputs) Eligibility {
	return newEligibility(b.eligibilityReasons(in))
}

// eligibilityReasons checks project type membership and the capacity bounds.
func (b base) eligibilityReasons(in Inputs) []string {
	var reasons []string

	if pt := in.String(KeyProjectType); pt != "" && !b.desc.AppliesTo(pt) {
		reasons = append(reasons, fmt.Sprintf("Project type '%s' not supported. Eligible types: %s",
			pt, strings.Join(b.desc.ApplicableProjectTypes, ", ")))
	}

	capacity := in.NumberOr(KeyCapacityMW, 0)
	if b.desc.MinCapacityMW != nil && capacity < *b.desc.MinCapacityMW {
		reasons = append(reasons, fmt.Sprintf("Capacity %s MW below minimum %s MW",
			formatFloat(capacity), formatFloat(*b.desc.MinCapacityMW)))
	}
	if b.desc.MaxCapacityMW != nil && capacity > *b.desc.MaxCapacityMW {
		reasons = append(reasons, fmt.Sprintf("Capacity %s MW exceeds maximum %s MW",
			formatFloat(capacity), formatFloat(*b.desc.MaxCapacityMW)))
	}

	return reasons
}

// checkProjectType appends a violation when in names a project type outside
// the descriptor's list. An absent project type is accepted.
func (b base) checkProjectType(errs []string, in Inputs) []string {
	if pt := in.String(KeyProjectType); pt != "" && !b.desc.AppliesTo(pt) {
		return append(errs, fmt.Sprintf("Invalid project_type: %s", pt))
	}
	return errs
}

// assumptions starts the assumption trail every result carries.
func (b base) assumptions(formula string) map[string]any {
	return map[string]any{
		"methodology": b.desc.ID,
		"version":     b.desc.Version,
		"formula":     formula,
	}
}

// result rounds the three sources and derives the total from them.
func (b base) result(baseline, project, leakage float64, assumptions map[string]any) Result {
	total, be, pe, le := numeric.Decompose(baseline, project, leakage)
	return Result{
		TotalERTCO2e:           total,
		BaselineEmissionsTCO2e: be,
		ProjectEmissionsTCO2e:  pe,
		LeakageTCO2e:           le,
		Assumptions:            assumptions,
		MethodologyID:          b.desc.ID,
		Registry:               b.desc.Registry,
	}
}

// requireNonNegative checks a required numeric input.
func requireNonNegative(errs []string, in Inputs, key string) []string {
	if !in.Has(key) {
		return append(errs, key+" is required")
	}
	v, ok := in.Number(key)
	if !ok {
		return append(errs, key+" must be a number")
	}
	if !numeric.IsFinite(v) {
		return append(errs, key+" must be a finite number")
	}
	if v < 0 {
		return append(errs, key+" must be non-negative")
	}
	return errs
}

// optionalNonNegative checks an optional numeric input when it is present.
func optionalNonNegative(errs []string, in Inputs, key string) []string {
	if !in.Has(key) {
		return errs
	}
	return requireNonNegative(errs, in, key)
}

// optionalFraction checks that an optional input, when present, lies in [0, 1].
func optionalFraction(errs []string, in Inputs, key string) []string {
	if !in.Has(key) {
		return errs
	}
	v, ok := in.Number(key)
	if !ok {
		return append(errs, key+" must be a number")
	}
	if !numeric.IsFinite(v) {
		return append(errs, key+" must be a finite number")
	}
	if v < 0 || v > 1 {
		return append(errs, key+" must be between 0 and 1")
	}
	return errs
}

// checkEnum validates an optional enumerated string input.
func checkEnum(errs []string, in Inputs, key string, allowed []string) []string {
	if !in.Has(key) {
		return errs
	}
	s, ok := in[key].(string)
	if !ok {
		return append(errs, key+" must be a string")
	}
	for _, a := range allowed {
		if s == a {
			return errs
		}
	}
	return append(errs, fmt.Sprintf("Invalid %s: %s. Allowed: %s", key, s, strings.Join(allowed, ", ")))
}

// validate runs m's checks and adds one error for every non-finite number
// in in that those checks did not already report.
func validate(m Methodology, in Inputs) []string {
	errs := m.ValidateInputs(in)
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, ok := in.Number(k)
		if !ok || numeric.IsFinite(v) {
			continue
		}
		if msg := k + " must be a finite number"; !slices.Contains(errs, msg) {
			errs = append(errs, msg)
		}
	}
	return errs
}

// compute validates in with m and runs calc when there is nothing to report.
func compute(m Methodology, in Inputs, calc func() Result) (Result, error) {
	if errs := validate(m, in); len(errs) > 0 {
		return Result{}, calcerr.Validation(errs)
	}
	return calc(), nil
}

// omBMWeighting is the margin weighting recorded for a project type.
func omBMWeighting(projectType string) string {
	if projectType == "solar" || projectType == "wind" {
		return weightingIntermittent
	}
	return weightingFirm
}

// formatFloat renders capacities and thresholds in messages: whole numbers
// without a fraction, everything else with the shortest exact representation.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func float64Ptr(f float64) *float64 {
	return &f
}
