// Package config loads simulation settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/flip7/internal/strategy"
)

// Defaults for the simulation block
const (
	DefaultGames     = 1000
	DefaultMaxRounds = 500
	DefaultLogLevel  = "info"
)

// Config represents a complete simulation configuration
type Config struct {
	Simulation Simulation
	Strategies []StrategyConfig
}

// file is the on-disk shape; every block is optional
type file struct {
	Simulation *Simulation      `hcl:"simulation,block"`
	Strategies []StrategyConfig `hcl:"strategy,block"`
}

// Simulation contains the run-level settings
type Simulation struct {
	Games int `hcl:"games,optional"`
	// Seed 0 asks the caller to pick one
	Seed      int64  `hcl:"seed,optional"`
	Workers   int    `hcl:"workers,optional"`
	Players   int    `hcl:"players,optional"`
	MaxRounds int    `hcl:"max_rounds,optional"`
	SaveDir   string `hcl:"save_dir,optional"`
	LogLevel  string `hcl:"log_level,optional"`
}

// StrategyConfig defines one strategy that can be seated
type StrategyConfig struct {
	Name           string  `hcl:"name,label"`
	Kind           string  `hcl:"kind"`
	Target         int     `hcl:"target,optional"`
	HitProbability float64 `hcl:"hit_probability,optional"`
	MaxRisk        float64 `hcl:"max_risk,optional"`
}

// Default returns the configuration used when no file is present: one
// strategy of each kind.
func Default() *Config {
	return &Config{
		Simulation: Simulation{
			Games:     DefaultGames,
			MaxRounds: DefaultMaxRounds,
			LogLevel:  DefaultLogLevel,
		},
		Strategies: []StrategyConfig{
			{Name: "random", Kind: string(strategy.KindRandom), HitProbability: strategy.DefaultHitProbability},
			{Name: "threshold", Kind: string(strategy.KindThreshold), Target: strategy.DefaultTarget},
			{Name: "odds", Kind: string(strategy.KindOdds), MaxRisk: strategy.DefaultMaxRisk},
		},
	}
}

// Load reads the configuration at filename. A missing file yields Default.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	hf, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(hf.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := Config{Strategies: raw.Strategies}
	if raw.Simulation != nil {
		config.Simulation = *raw.Simulation
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Simulation.Games == 0 {
		c.Simulation.Games = DefaultGames
	}
	if c.Simulation.MaxRounds == 0 {
		c.Simulation.MaxRounds = DefaultMaxRounds
	}
	if c.Simulation.LogLevel == "" {
		c.Simulation.LogLevel = DefaultLogLevel
	}
	if len(c.Strategies) == 0 {
		c.Strategies = Default().Strategies
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Simulation.Games <= 0 {
		return fmt.Errorf("games must be positive, got %d", c.Simulation.Games)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Simulation.Workers)
	}
	if c.Simulation.MaxRounds < 0 {
		return fmt.Errorf("max_rounds must not be negative, got %d", c.Simulation.MaxRounds)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	if len(c.Strategies) < 2 {
		return fmt.Errorf("at least two strategies must be configured")
	}
	players := c.Simulation.Players
	if players != 0 && (players < 2 || players > len(c.Strategies)) {
		return fmt.Errorf("players must be between 2 and %d, got %d", len(c.Strategies), players)
	}

	seen := make(map[string]bool, len(c.Strategies))
	for _, s := range c.Specs() {
		if seen[s.Name] {
			return fmt.Errorf("strategy %s: defined more than once", s.Name)
		}
		seen[s.Name] = true
		if err := s.WithDefaults().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Level parses the configured log level
func (c *Config) Level() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Simulation.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.Simulation.LogLevel, err)
	}
	return lvl, nil
}

// Specs converts the strategy blocks for the simulator
func (c *Config) Specs() []strategy.Spec {
	specs := make([]strategy.Spec, len(c.Strategies))
	for i, s := range c.Strategies {
		specs[i] = strategy.Spec{
			Name:           s.Name,
			Kind:           strategy.Kind(s.Kind),
			Target:         s.Target,
			HitProbability: s.HitProbability,
			MaxRisk:        s.MaxRisk,
		}
	}
	return specs
}

// Strategy returns a strategy block by name
func (c *Config) Strategy(name string) *StrategyConfig {
	for i := range c.Strategies {
		if c.Strategies[i].Name == name {
			return &c.Strategies[i]
		}
	}
	return nil
}
