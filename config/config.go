// Package config provides configuration loading and access for the simulation.
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

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Simulation modes.
const (
	ModeDefault = "default"
	ModeLysis   = "lysis"
	ModePGG     = "pgg"
)

// Sample timings for per-update data nodes.
const (
	SamplePre  = "pre"
	SamplePost = "post"
)

// RandomTrait asks constructors to draw a trait uniformly instead of using a fixed value.
const RandomTrait = -2.0

// Config holds all simulation configuration parameters.
// It is read by the engine and never written during a run.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Simulation   SimulationConfig   `yaml:"simulation"`
	Host         HostConfig         `yaml:"host"`
	Symbiont     SymbiontConfig     `yaml:"symbiont"`
	Lysis        LysisConfig        `yaml:"lysis"`
	PGG          PGGConfig          `yaml:"pgg"`
	Resources    ResourceConfig     `yaml:"resources"`
	Transmission TransmissionConfig `yaml:"transmission"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions. A height of 1 gives a 1-D world.
type WorldConfig struct {
	GridX int `yaml:"grid_x"`
	GridY int `yaml:"grid_y"`
}

// SimulationConfig holds run-level settings used by the batch runner.
type SimulationConfig struct {
	Seed         int64   `yaml:"seed"`    // 0 = time-based
	Updates      int     `yaml:"updates"` // 0 = unlimited
	Mode         string  `yaml:"mode"`    // default, lysis or pgg
	InitialHosts int     `yaml:"initial_hosts"`
	InitialSyms  int     `yaml:"initial_syms"`
	HostIntVal   float64 `yaml:"host_int_val"` // -2 = uniform in [-1, 1]
	SymIntVal    float64 `yaml:"sym_int_val"`  // -2 = uniform in [-1, 1]
}

// HostConfig holds host life-history parameters.
type HostConfig struct {
	ReproRes float64 `yaml:"host_repro_res"` // points needed to reproduce
	AgeMax   int     `yaml:"host_age_max"`   // -1 = immortal
}

// SymbiontConfig holds symbiont life-history parameters.
type SymbiontConfig struct {
	Limit         int     `yaml:"sym_limit"`           // max residents per host
	HorizTransRes float64 `yaml:"sym_horiz_trans_res"` // points for one horizontal offspring
	VertTransRes  float64 `yaml:"sym_vert_trans_res"`  // points paid per vertical transmission
	AgeMax        int     `yaml:"sym_age_max"`         // -1 = immortal
	Synergy       float64 `yaml:"synergy"`             // multiplier on resources a mutualist returns
}

// LysisConfig holds phage parameters.
type LysisConfig struct {
	Enabled   bool    `yaml:"lysis"`
	Chance    float64 `yaml:"lysis_chance"`  // -1 = each phage draws its own
	BurstTime int     `yaml:"burst_time"`    // updates of incubation before bursting
	Res       float64 `yaml:"sym_lysis_res"` // points per offspring during incubation
}

// PGGConfig holds public-goods game parameters.
type PGGConfig struct {
	Synergy  float64 `yaml:"pgg_synergy"`
	Donation float64 `yaml:"pgg_donation"` // -1 = uniform in [0, 1]
}

// ResourceConfig holds resource supply parameters.
type ResourceConfig struct {
	Distribute        float64 `yaml:"res_distribute"`          // per host per update
	FreeSymDistribute float64 `yaml:"free_sym_res_distribute"` // per free-living symbiont per update
	LimitedTotal      float64 `yaml:"limited_res_total"`       // -1 = unlimited pool
	LimitedInflow     float64 `yaml:"limited_res_inflow"`      // added to the pool each update
	Heterogeneity     float64 `yaml:"heterogeneity"`           // 0 = uniform field, 1 = +-100%
	NoiseScale        float64 `yaml:"noise_scale"`             // spatial frequency of the field
}

// TransmissionConfig holds transmission switches.
type TransmissionConfig struct {
	Vertical        float64 `yaml:"vertical_transmission"` // probability a symbiont transmits at host birth
	FreeLiving      bool    `yaml:"free_living_syms"`
	MoveFreeSyms    bool    `yaml:"move_free_syms"`
	InfectionChance float64 `yaml:"free_sym_infection_chance"`
	FreeSymLimit    int     `yaml:"free_sym_limit"` // max free-living symbionts a birth or move may add to a cell
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate     float64 `yaml:"rate"`
	Size     float64 `yaml:"size"`
	HostRate float64 `yaml:"host_rate"` // -1 = same as rate
	HostSize float64 `yaml:"host_size"` // -1 = same as size
}

// TelemetryConfig holds data collection parameters.
type TelemetryConfig struct {
	DataInterval     int     `yaml:"data_interval"` // updates per stats window
	SampleTiming     string  `yaml:"sample_timing"` // pre or post
	HistBins         int     `yaml:"hist_bins"`
	HistMin          float64 `yaml:"hist_min"`
	HistMax          float64 `yaml:"hist_max"`
	EventHistorySize int     `yaml:"event_history_size"`
	PerfWindow       int     `yaml:"perf_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GridSize         int
	HostMutationRate float64
	HostMutationSize float64
	SamplePre        bool
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
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults. Panics if they do not parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// ComputeDerived recalculates derived values. Call it after editing fields by hand.
func (c *Config) ComputeDerived() {
	c.Derived.GridSize = c.World.GridX * c.World.GridY

	c.Derived.HostMutationRate = c.Mutation.HostRate
	if c.Derived.HostMutationRate < 0 {
		c.Derived.HostMutationRate = c.Mutation.Rate
	}
	c.Derived.HostMutationSize = c.Mutation.HostSize
	if c.Derived.HostMutationSize < 0 {
		c.Derived.HostMutationSize = c.Mutation.Size
	}

	c.Derived.SamplePre = c.Telemetry.SampleTiming != SamplePost
}

// Validate reports every out-of-range parameter.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.World.GridX >= 1 && c.World.GridY >= 1, "grid must be at least 1x1, got %dx%d", c.World.GridX, c.World.GridY)
	check(c.Symbiont.Limit >= 0, "sym_limit must be non-negative, got %d", c.Symbiont.Limit)
	check(c.Lysis.Chance == -1 || (c.Lysis.Chance >= 0 && c.Lysis.Chance <= 1), "lysis_chance must be in [0,1] or -1, got %v", c.Lysis.Chance)
	check(c.Lysis.BurstTime >= 0, "burst_time must be non-negative, got %d", c.Lysis.BurstTime)
	check(c.Lysis.Res >= 0, "sym_lysis_res must be non-negative, got %v", c.Lysis.Res)
	check(c.PGG.Donation == -1 || (c.PGG.Donation >= 0 && c.PGG.Donation <= 1), "pgg_donation must be in [0,1] or -1, got %v", c.PGG.Donation)
	check(c.Transmission.Vertical >= 0 && c.Transmission.Vertical <= 1, "vertical_transmission must be in [0,1], got %v", c.Transmission.Vertical)
	check(c.Transmission.FreeSymLimit >= 0, "free_sym_limit must be non-negative, got %d", c.Transmission.FreeSymLimit)
	check(c.Transmission.InfectionChance >= 0 && c.Transmission.InfectionChance <= 1, "free_sym_infection_chance must be in [0,1], got %v", c.Transmission.InfectionChance)
	check(c.Resources.Heterogeneity >= 0 && c.Resources.Heterogeneity <= 1, "heterogeneity must be in [0,1], got %v", c.Resources.Heterogeneity)
	check(c.Telemetry.SampleTiming == SamplePre || c.Telemetry.SampleTiming == SamplePost, "sample_timing must be %q or %q, got %q", SamplePre, SamplePost, c.Telemetry.SampleTiming)
	check(c.Telemetry.HistBins > 0, "hist_bins must be positive, got %d", c.Telemetry.HistBins)
	check(c.Telemetry.HistMax > c.Telemetry.HistMin, "hist_max must exceed hist_min")
	check(c.Telemetry.DataInterval > 0, "data_interval must be positive, got %d", c.Telemetry.DataInterval)

	switch c.Simulation.Mode {
	case ModeDefault, ModeLysis, ModePGG:
	default:
		check(false, "unknown mode %q", c.Simulation.Mode)
	}

	return errors.Join(errs...)
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
