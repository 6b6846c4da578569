package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/QirangMilco/TSAuto/internal/constants"
	"github.com/QirangMilco/TSAuto/internal/model"
)

// EnvPrefix prefixes every environment override (TSAUTO_BATTLE_SEED, ...).
const EnvPrefix = "TSAUTO_"

// Battle holds per-battle engine settings.
type Battle struct {
	Seed int64 `yaml:"seed" env:"SEED"`
	// MaxTurns stops the loop with an error once exceeded. 0 disables the limit.
	MaxTurns int `yaml:"max_turns" env:"MAX_TURNS"`
	// AutoPlayers drives player units by their gambits instead of waiting
	// for input.
	AutoPlayers bool `yaml:"auto_players" env:"AUTO_PLAYERS"`
}

// Speed is the effective speed clamp of the CTB scheduler.
type Speed struct {
	Min float64 `yaml:"min" env:"MIN"`
	Max float64 `yaml:"max" env:"MAX"`
}

// Elements configures the five-elements equipment bonus.
type Elements struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Ratio converts element power into stat points.
	Ratio                float64 `yaml:"ratio" env:"RATIO"`
	SuppressionThreshold float64 `yaml:"suppression_threshold" env:"SUPPRESSION_THRESHOLD"`
	StarvationThreshold  float64 `yaml:"starvation_threshold" env:"STARVATION_THRESHOLD"`
	SuppressedEfficiency float64 `yaml:"suppressed_efficiency" env:"SUPPRESSED_EFFICIENCY"`
	GenerateMultiplier   float64 `yaml:"generate_multiplier" env:"GENERATE_MULTIPLIER"`

	MainStatWeight float64 `yaml:"main_stat_weight" env:"MAIN_STAT_WEIGHT"`
	SubStatWeight  float64 `yaml:"sub_stat_weight" env:"SUB_STAT_WEIGHT"`
	LevelWeight    float64 `yaml:"level_weight" env:"LEVEL_WEIGHT"`
	GradeWeight    float64 `yaml:"grade_weight" env:"GRADE_WEIGHT"`
}

// DefaultElements returns the standard five-elements parameters, disabled.
func DefaultElements() Elements {
	return Elements{
		Enabled:              false,
		Ratio:                0.02,
		SuppressionThreshold: 1.5,
		StarvationThreshold:  100,
		SuppressedEfficiency: 0.5,
		GenerateMultiplier:   0.2,
		MainStatWeight:       1.0,
		SubStatWeight:        0.5,
		LevelWeight:          0.1,
		GradeWeight:          0.2,
	}
}

// Simulation configures the battlesim batch runner.
type Simulation struct {
	Runs        int    `yaml:"runs" env:"RUNS"`
	Concurrency int    `yaml:"concurrency" env:"CONCURRENCY"`
	Encounter   string `yaml:"encounter" env:"ENCOUNTER"`
	// ContentDir overrides the embedded definition pack when set.
	ContentDir string `yaml:"content_dir" env:"CONTENT_DIR"`
}

// Simulator holds all configuration for cmd/battlesim.
type Simulator struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	Battle     Battle              `yaml:"battle" envPrefix:"BATTLE_"`
	Speed      Speed               `yaml:"speed" envPrefix:"SPEED_"`
	Resource   model.ResourceRules `yaml:"resource" envPrefix:"RESOURCE_"`
	Elements   Elements            `yaml:"elements" envPrefix:"ELEMENTS_"`
	Simulation Simulation          `yaml:"simulation" envPrefix:"SIM_"`
	Database   DatabaseConfig      `yaml:"database" envPrefix:"DB_"`
}

// DefaultSimulator returns Simulator config with sensible defaults.
func DefaultSimulator() Simulator {
	return Simulator{
		LogLevel: "info",
		Battle: Battle{
			Seed:        1,
			MaxTurns:    constants.DefaultMaxTurns,
			AutoPlayers: true,
		},
		Speed: Speed{
			Min: constants.MinEffectiveSpeed,
			Max: constants.MaxEffectiveSpeed,
		},
		Resource: model.DefaultResourceRules(),
		Elements: DefaultElements(),
		Simulation: Simulation{
			Runs:        1,
			Concurrency: 4,
			Encounter:   "ENC_TRAINING",
		},
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "tsauto",
			Password: "tsauto",
			DBName:   "tsauto",
			SSLMode:  "disable",
		},
	}
}

// LoadSimulator loads config from a YAML file, then applies TSAUTO_*
// environment overrides. If the file doesn't exist, defaults are used.
func LoadSimulator(path string) (Simulator, error) {
	cfg := DefaultSimulator()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Simulator) Validate() error {
	if c.Speed.Min <= 0 || c.Speed.Max < c.Speed.Min {
		return fmt.Errorf("invalid speed clamp [%v, %v]", c.Speed.Min, c.Speed.Max)
	}
	if c.Resource.Max < 0 || c.Resource.Start < 0 {
		return fmt.Errorf("invalid resource rules %+v", c.Resource)
	}
	if c.Battle.MaxTurns < 0 {
		return fmt.Errorf("max_turns must not be negative, got %d", c.Battle.MaxTurns)
	}
	if c.Simulation.Runs < 1 {
		return fmt.Errorf("simulation runs must be positive, got %d", c.Simulation.Runs)
	}
	return nil
}

// SlogLevel maps LogLevel onto slog.Level, defaulting to Info.
func (c Simulator) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
