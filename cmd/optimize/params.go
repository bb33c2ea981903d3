// Package main tunes load throttle parameters so each unit type settles
// near a target population.
package main

import (
	"fmt"

	"github.com/pthm-cable/replicants/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// throttleParams is the number of tuned values per unit type.
const throttleParams = 5

// ParamVector holds the set of all optimizable parameters: five throttle
// values for every unit type, in unit type order.
type ParamVector struct {
	Specs []ParamSpec
	types []string
}

// NewParamVector creates the throttle parameters for every unit type in cfg,
// defaulting to the values cfg already holds.
func NewParamVector(cfg *config.Config) *ParamVector {
	pv := &ParamVector{}
	for _, u := range cfg.Units {
		t := u.Throttle
		prefix := "units." + u.Name + ".throttle."
		span := float64(t.UpperLoadLimit - t.LowerLoadLimit)
		pv.types = append(pv.types, u.Name)
		pv.Specs = append(pv.Specs,
			ParamSpec{Name: u.Name + "_lower", Path: prefix + "lower_load_limit", Min: 0, Max: 500, Default: float64(t.LowerLoadLimit)},
			// Upper limit is tuned as a span above the lower one so the pair never inverts.
			ParamSpec{Name: u.Name + "_span", Path: prefix + "upper_load_limit", Min: 1, Max: 1000, Default: max(span, 1)},
			ParamSpec{Name: u.Name + "_min_cd", Path: prefix + "min_spawn_cooldown", Min: 0.05, Max: 10, Default: t.MinSpawnCooldown},
			ParamSpec{Name: u.Name + "_max_cd", Path: prefix + "max_spawn_cooldown", Min: 0.5, Max: 60, Default: t.MaxSpawnCooldown},
			ParamSpec{Name: u.Name + "_max_disabled", Path: prefix + "max_percent_disabled", Min: 0, Max: 1, Default: t.MaxPercentDisabled},
		)
	}
	// Defaults outside the search box would start the optimizer off the map.
	for i := range pv.Specs {
		s := &pv.Specs[i]
		s.Default = min(max(s.Default, s.Min), s.Max)
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into the throttle configs of cfg.
// cfg must have the unit types the vector was built from.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	for i, name := range pv.types {
		u, ok := cfg.UnitType(name)
		if !ok {
			return fmt.Errorf("unit type %q missing from config", name)
		}
		v := clamped[i*throttleParams : (i+1)*throttleParams]
		lower := int(v[0])
		u.Throttle.LowerLoadLimit = lower
		u.Throttle.UpperLoadLimit = lower + int(v[1])
		u.Throttle.MinSpawnCooldown = v[2]
		u.Throttle.MaxSpawnCooldown = max(v[3], v[2])
		u.Throttle.MaxPercentDisabled = max(v[4], u.Throttle.MinPercentDisabled)
	}
	return nil
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) ([]float64, error) {
	out := make([]float64, 0, len(pv.Specs))
	for _, name := range pv.types {
		u, ok := cfg.UnitType(name)
		if !ok {
			return nil, fmt.Errorf("unit type %q missing from config", name)
		}
		t := u.Throttle
		out = append(out,
			float64(t.LowerLoadLimit),
			float64(t.UpperLoadLimit-t.LowerLoadLimit),
			t.MinSpawnCooldown,
			t.MaxSpawnCooldown,
			t.MaxPercentDisabled,
		)
	}
	return out, nil
}
