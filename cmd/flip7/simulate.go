package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lox/flip7/internal/config"
	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/fileutil"
	"github.com/lox/flip7/internal/simulator"
	"github.com/lox/flip7/internal/store"
)

type SimulateCmd struct {
	Config   string   `short:"c" default:"flip7.hcl" help:"HCL configuration file (defaults apply when missing)" type:"path"`
	Games    int      `short:"n" help:"Number of games (overrides config)"`
	Seed     int64    `help:"Base seed (overrides config, 0 for random)"`
	Workers  int      `help:"Parallel workers (overrides config)"`
	Players  int      `help:"Players seated per game (overrides config)"`
	Strategy []string `short:"s" help:"Only seat these configured strategies (repeatable)"`
	Save     bool     `help:"Save every game to the games directory"`

	MetricsFile string `help:"Write Prometheus metrics to this file when done" type:"path"`
	ResultsFile string `help:"Write per-game results as JSON to this file" type:"path"`
	EventsFile  string `help:"Append every event as JSON lines to this file" type:"path"`
	Quiet       bool   `short:"q" help:"Hide the progress bar"`
}

// load reads the config file and applies the command line overrides
func (c *SimulateCmd) load(g *Globals) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}

	sim := &cfg.Simulation
	if c.Games > 0 {
		sim.Games = c.Games
	}
	if c.Seed != 0 {
		sim.Seed = c.Seed
	}
	if c.Workers > 0 {
		sim.Workers = c.Workers
	}
	if c.Players > 0 {
		sim.Players = c.Players
	}
	if c.Save && sim.SaveDir == "" {
		sim.SaveDir = g.Dir
	}
	if g.Debug {
		sim.LogLevel = "debug"
	}

	if len(c.Strategy) > 0 {
		var picked []config.StrategyConfig
		for _, name := range c.Strategy {
			s := cfg.Strategy(name)
			if s == nil {
				return nil, fmt.Errorf("strategy %q is not configured", name)
			}
			picked = append(picked, *s)
		}
		cfg.Strategies = picked
		if sim.Players > len(picked) {
			sim.Players = 0
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *SimulateCmd) Run(logger *log.Logger, g *Globals) error {
	cfg, err := c.load(g)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = seedFromClock()
	}

	reg := prometheus.NewRegistry()
	simCfg := simulator.Config{
		Games:      cfg.Simulation.Games,
		Seed:       seed,
		Workers:    cfg.Simulation.Workers,
		Players:    cfg.Simulation.Players,
		Strategies: cfg.Specs(),
		MaxRounds:  cfg.Simulation.MaxRounds,
		Logger:     logger,
		Metrics:    simulator.NewMetrics(reg),
	}

	if dir := cfg.Simulation.SaveDir; dir != "" {
		repo, err := store.NewRepository(dir, logger)
		if err != nil {
			return err
		}
		simCfg.Repository = repo
	}

	if c.EventsFile != "" {
		sink, err := store.OpenJSONLSink(c.EventsFile)
		if err != nil {
			return err
		}
		defer sink.Close()
		simCfg.Sinks = []events.Sink{sink}
	}

	var bar *progressBar
	if !c.Quiet && level > log.DebugLevel {
		bar = newProgressBar(os.Stderr, simCfg.Games)
		simCfg.Progress = bar.Update
	}

	sim, err := simulator.New(simCfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	bar.Done(res.Elapsed)

	printSimulation(os.Stdout, res, seed)

	if c.ResultsFile != "" {
		if err := fileutil.WriteJSON(c.ResultsFile, res.Games); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		logger.Info("Wrote results", "file", c.ResultsFile, "games", len(res.Games))
	}
	if c.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(c.MetricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Info("Wrote metrics", "file", c.MetricsFile)
	}
	if simCfg.Repository != nil {
		logger.Info("Saved games", "dir", simCfg.Repository.Dir(), "games", len(res.Games))
	}
	return nil
}

func seedFromClock() int64 {
	return time.Now().UnixNano()
}
