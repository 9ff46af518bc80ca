// Package units converts raw generation readings into canonical energy (MWh).
package units

import (
	"fmt"
	"strings"
)

// Unit is the unit label attached to a raw generation value.
type Unit string

// Supported units.
const (
	KW  Unit = "kW"
	MW  Unit = "MW"
	KWh Unit = "kWh"
	MWh Unit = "MWh"
)

// Semantics says whether a raw value is an instantaneous power reading or the
// energy delivered over one sampling interval.
type Semantics string

// Supported value semantics.
const (
	Power             Semantics = "POWER"
	EnergyPerInterval Semantics = "ENERGY_PER_INTERVAL"
)

// SecondsPerHour converts a sampling interval to hours.
const SecondsPerHour = 3600.0

// kiloPerMega scales kW and kWh to MW and MWh.
const kiloPerMega = 1000.0

// Units lists the supported units in display order.
func Units() []Unit {
	return []Unit{KW, MW, KWh, MWh}
}

// ParseUnit returns the Unit for s. Matching is exact, as unit labels are
// case-significant (MW vs mW).
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.TrimSpace(s)); u {
	case KW, MW, KWh, MWh:
		return u, nil
	}
	return "", fmt.Errorf("Invalid unit: %s", s)
}

// ParseSemantics returns the Semantics for s.
func ParseSemantics(s string) (Semantics, error) {
	switch v := Semantics(strings.TrimSpace(s)); v {
	case Power, EnergyPerInterval:
		return v, nil
	}
	return "", fmt.Errorf("Invalid value_semantics: %s", s)
}

// IsPower reports whether u is a power unit.
func (u Unit) IsPower() bool {
	return u == KW || u == MW
}

// IsEnergy reports whether u is an energy unit.
func (u Unit) IsEnergy() bool {
	return u == KWh || u == MWh
}

// ToMWh converts a raw reading into MWh.
//
// Under EnergyPerInterval the value is already energy: kWh is divided by 1000
// and MWh passes through. A power unit under this semantics is treated as the
// matching energy unit (kW as kWh, MW as MWh); Inconsistency reports that
// mismatch so callers can surface it.
//
// Under Power the value is integrated over the interval:
//
//	MWh = value × (frequencySeconds / 3600), scaled from kW to MW when needed.
//
// An energy unit under Power is already energy and is only scaled to MWh.
//
// ToMWh is pure. Units other than the four supported ones return value
// unchanged; validate them with ParseUnit first.
func ToMWh(value float64, unit Unit, semantics Semantics, frequencySeconds int) float64 {
	if semantics == EnergyPerInterval {
		switch unit {
		case KWh, KW:
			return value / kiloPerMega
		case MWh, MW:
			return value
		}
		return value
	}

	hours := float64(frequencySeconds) / SecondsPerHour
	switch unit {
	case KW:
		return (value / kiloPerMega) * hours
	case MW:
		return value * hours
	case KWh:
		return value / kiloPerMega
	case MWh:
		return value
	}
	return value
}

// Inconsistency returns a warning when the unit label disagrees with the
// declared semantics, or "" when they agree.
func Inconsistency(unit Unit, semantics Semantics) string {
	switch {
	case unit.IsPower() && semantics == EnergyPerInterval:
		return fmt.Sprintf("Unit is '%s' (power) but semantics is '%s'. This seems inconsistent.", unit, semantics)
	case unit.IsEnergy() && semantics == Power:
		return fmt.Sprintf("Unit is '%s' (energy) but semantics is '%s'. This seems inconsistent.", unit, semantics)
	}
	return ""
}
