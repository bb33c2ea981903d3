// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Behavior names accepted in unit type configs.
const (
	BehaviorImmediate = "immediate"
	BehaviorDelayed   = "delayed"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Arena     ArenaConfig      `yaml:"arena"`
	Sim       SimConfig        `yaml:"sim"`
	Units     []UnitTypeConfig `yaml:"units"`
	Spawners  []SpawnerConfig  `yaml:"spawners"`
	Overlay   OverlayConfig    `yaml:"overlay"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ArenaConfig is the placed volume the arena bounds are taken from.
// Only the horizontal X/Z extents matter.
type ArenaConfig struct {
	MinX float64 `yaml:"min_x"`
	MinZ float64 `yaml:"min_z"`
	MaxX float64 `yaml:"max_x"`
	MaxZ float64 `yaml:"max_z"`
}

// SimConfig holds stepping parameters.
type SimConfig struct {
	DT             float64 `yaml:"dt"`              // Fixed step (cooldowns, throttle, contacts)
	FrameDT        float64 `yaml:"frame_dt"`        // Movement step used by headless runs
	ArrivalEpsilon float64 `yaml:"arrival_epsilon"` // Distance under which a destination counts as reached
	GridCellSize   float64 `yaml:"grid_cell_size"`  // Broad-phase cell size for the contact feed
}

// UnitTypeConfig defines one unit kind.
type UnitTypeConfig struct {
	Name       string         `yaml:"name"`
	PoolSize   int            `yaml:"pool_size"`   // Instances created up front
	Speed      float64        `yaml:"speed"`       // Movement speed (units/sec)
	HalfHeight float64        `yaml:"half_height"` // Resting height above the arena floor
	Radius     float64        `yaml:"radius"`      // Contact radius
	Behavior   string         `yaml:"behavior"`    // "immediate" or "delayed"
	Throttle   ThrottleConfig `yaml:"throttle"`
}

// ThrottleConfig holds the load throttle operating points for a unit type.
type ThrottleConfig struct {
	LowerLoadLimit     int     `yaml:"lower_load_limit"`
	UpperLoadLimit     int     `yaml:"upper_load_limit"`
	MinSpawnCooldown   float64 `yaml:"min_spawn_cooldown"`
	MaxSpawnCooldown   float64 `yaml:"max_spawn_cooldown"`
	MinPercentDisabled float64 `yaml:"min_percent_disabled"` // 0-1
	MaxPercentDisabled float64 `yaml:"max_percent_disabled"` // 0-1
}

// SpawnerConfig places one spawner per unit type.
type SpawnerConfig struct {
	Type    string  `yaml:"type"`
	X       float64 `yaml:"x"`
	Z       float64 `yaml:"z"`
	Initial int     `yaml:"initial"` // Units spawned at startup
}

// OverlayConfig holds population overlay settings.
type OverlayConfig struct {
	Enabled     bool    `yaml:"enabled"`
	LogDuration float64 `yaml:"log_duration"` // Seconds an idle entry stays visible
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32          float32          // Sim.DT as float32
	FrameDT32     float32          // Sim.FrameDT as float32
	UnitTypeIndex map[string]uint8 // name -> unit type index
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Sim.FrameDT == 0 {
		c.Sim.FrameDT = c.Sim.DT
	}
	c.Derived.DT32 = float32(c.Sim.DT)
	c.Derived.FrameDT32 = float32(c.Sim.FrameDT)

	for i := range c.Units {
		u := &c.Units[i]
		if u.Behavior == "" {
			u.Behavior = BehaviorImmediate
		}
		if u.Radius == 0 {
			u.Radius = 0.5
		}
		if u.HalfHeight == 0 {
			u.HalfHeight = u.Radius
		}
	}

	c.Derived.UnitTypeIndex = make(map[string]uint8, len(c.Units))
	for i, u := range c.Units {
		c.Derived.UnitTypeIndex[u.Name] = uint8(i)
	}
}

// Validate reports every configuration mistake found. An unregistered unit
// type is a setup error, so it is caught here rather than during a tick.
func (c *Config) Validate() error {
	var errs []error

	if c.Arena.MinX >= c.Arena.MaxX || c.Arena.MinZ >= c.Arena.MaxZ {
		errs = append(errs, fmt.Errorf("arena: min must be below max on both axes (got %+v)", c.Arena))
	}
	if c.Sim.DT <= 0 {
		errs = append(errs, fmt.Errorf("sim.dt must be positive"))
	}
	if c.Sim.FrameDT < 0 {
		errs = append(errs, fmt.Errorf("sim.frame_dt must not be negative (0 = sim.dt)"))
	}
	if c.Sim.ArrivalEpsilon < 0 {
		errs = append(errs, fmt.Errorf("sim.arrival_epsilon must not be negative"))
	}
	if c.Sim.GridCellSize <= 0 {
		errs = append(errs, fmt.Errorf("sim.grid_cell_size must be positive"))
	}
	if len(c.Units) == 0 {
		errs = append(errs, errors.New("units: at least one unit type is required"))
	}
	if len(c.Units) > 255 {
		errs = append(errs, errors.New("units: at most 255 unit types are supported"))
	}

	seen := make(map[string]bool, len(c.Units))
	for _, u := range c.Units {
		if u.Name == "" {
			errs = append(errs, errors.New("units: unit type without a name"))
			continue
		}
		if seen[u.Name] {
			errs = append(errs, fmt.Errorf("units: duplicate unit type %q", u.Name))
		}
		seen[u.Name] = true

		if u.PoolSize < 0 {
			errs = append(errs, fmt.Errorf("units.%s: pool_size must not be negative", u.Name))
		}
		if u.Speed <= 0 {
			errs = append(errs, fmt.Errorf("units.%s: speed must be positive", u.Name))
		}
		if u.Behavior != BehaviorImmediate && u.Behavior != BehaviorDelayed {
			errs = append(errs, fmt.Errorf("units.%s: unknown behavior %q", u.Name, u.Behavior))
		}
		if err := u.Throttle.validate(); err != nil {
			errs = append(errs, fmt.Errorf("units.%s: %w", u.Name, err))
		}
	}

	spawnerFor := make(map[string]bool, len(c.Spawners))
	for _, s := range c.Spawners {
		if !seen[s.Type] {
			errs = append(errs, fmt.Errorf("spawners: unregistered unit type %q", s.Type))
		}
		if spawnerFor[s.Type] {
			errs = append(errs, fmt.Errorf("spawners: more than one spawner for %q", s.Type))
		}
		spawnerFor[s.Type] = true
		if s.X < c.Arena.MinX || s.X > c.Arena.MaxX || s.Z < c.Arena.MinZ || s.Z > c.Arena.MaxZ {
			errs = append(errs, fmt.Errorf("spawners.%s: position (%g, %g) is outside the arena", s.Type, s.X, s.Z))
		}
		if s.Initial < 0 {
			errs = append(errs, fmt.Errorf("spawners.%s: initial must not be negative", s.Type))
		}
	}
	for _, u := range c.Units {
		if u.Name != "" && !spawnerFor[u.Name] {
			errs = append(errs, fmt.Errorf("spawners: no spawner for unit type %q", u.Name))
		}
	}

	return errors.Join(errs...)
}

func (t ThrottleConfig) validate() error {
	if t.LowerLoadLimit < 0 || t.UpperLoadLimit < t.LowerLoadLimit {
		return fmt.Errorf("throttle: need 0 <= lower_load_limit <= upper_load_limit (got %d, %d)",
			t.LowerLoadLimit, t.UpperLoadLimit)
	}
	if t.MinSpawnCooldown < 0 || t.MaxSpawnCooldown < 0 {
		return errors.New("throttle: spawn cooldowns must not be negative")
	}
	if !inUnit(t.MinPercentDisabled) || !inUnit(t.MaxPercentDisabled) {
		return errors.New("throttle: percent disabled values must be within [0, 1]")
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// UnitType returns the config for the named unit type.
func (c *Config) UnitType(name string) (*UnitTypeConfig, bool) {
	idx, ok := c.Derived.UnitTypeIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Units[idx], true
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Units = append([]UnitTypeConfig(nil), c.Units...)
	cp.Spawners = append([]SpawnerConfig(nil), c.Spawners...)
	cp.computeDerived()
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
