package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/simulator"
	"github.com/lox/flip7/internal/store"
)

// PlayCmd plays a single game and narrates it
type PlayCmd struct {
	Config     string   `short:"c" default:"flip7.hcl" help:"HCL configuration file (defaults apply when missing)" type:"path"`
	Seed       int64    `help:"Seed (0 for random)"`
	Players    int      `help:"Players seated (overrides config)"`
	Strategy   []string `short:"s" help:"Only seat these configured strategies (repeatable)"`
	Save       bool     `help:"Save the game to the games directory"`
	EventsFile string   `help:"Append every event as JSON lines to this file" type:"path"`
	Timestamps bool     `help:"Prefix events with their time"`
}

// narrator prints each event as it happens
type narrator struct {
	w     io.Writer
	names map[string]string
	f     *events.Formatter
}

func newNarrator(w io.Writer, timestamps bool) *narrator {
	n := &narrator{w: w, names: make(map[string]string)}
	n.f = events.NewFormatter(events.FormattingOptions{ShowTimestamps: timestamps, Names: n.names})
	return n
}

func (n *narrator) Write(e events.Event) error {
	switch e := e.(type) {
	case *events.GameStarted:
		for i, id := range e.PlayerIDs {
			if i < len(e.PlayerNames) {
				n.names[id] = e.PlayerNames[i]
			}
		}
	case *events.RoundStarted:
		fmt.Fprintln(n.w)
		fmt.Fprintln(n.w, headerStyle.Render(n.f.Format(e)))
		return nil
	case *events.PlayerBusted:
		fmt.Fprintln(n.w, bustStyle.Render(n.f.Format(e)))
		return nil
	case *events.GameEnded:
		fmt.Fprintln(n.w)
		fmt.Fprintln(n.w, winStyle.Render(n.f.Format(e)))
		return nil
	}
	_, err := fmt.Fprintln(n.w, n.f.Format(e))
	return err
}

func (c *PlayCmd) Run(logger *log.Logger, g *Globals) error {
	sc := SimulateCmd{Config: c.Config, Games: 1, Seed: c.Seed, Players: c.Players, Strategy: c.Strategy, Save: c.Save}
	cfg, err := sc.load(g)
	if err != nil {
		return err
	}
	if !g.Debug {
		logger.SetLevel(log.WarnLevel)
	}

	simCfg := simulator.Config{
		Games:      1,
		Seed:       cfg.Simulation.Seed,
		Workers:    1,
		Players:    cfg.Simulation.Players,
		Strategies: cfg.Specs(),
		MaxRounds:  cfg.Simulation.MaxRounds,
		Logger:     logger,
		Sinks:      []events.Sink{newNarrator(os.Stdout, c.Timestamps)},
	}
	if simCfg.Seed == 0 {
		simCfg.Seed = seedFromClock()
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
		simCfg.Sinks = append(simCfg.Sinks, sink)
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

	game := res.Games[0]
	fmt.Fprintf(os.Stdout, "%s %s (seed %d)\n", labelStyle.Render("Game:"), game.GameID, simCfg.Seed)
	if simCfg.Repository != nil {
		fmt.Fprintf(os.Stdout, "%s flip7 show %s\n", dimStyle.Render("Replay with:"), game.GameID)
	}
	return nil
}
