package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Debug   bool             `help:"Enable debug logging"`
	Dir     string           `short:"d" default:"flip7_games" help:"Directory holding saved games" type:"path"`

	Simulate    SimulateCmd    `cmd:"" help:"Simulate many games between strategies"`
	Play        PlayCmd        `cmd:"" help:"Play one game between strategies and print every event"`
	Games       GamesCmd       `cmd:"" help:"List saved games"`
	Show        ShowCmd        `cmd:"" help:"Show the event log and statistics of a saved game"`
	Leaderboard LeaderboardCmd `cmd:"" help:"Rank players across saved games"`
	Deck        DeckCmd        `cmd:"" help:"Show the composition of the standard deck"`
}

// Globals are the flags shared by every command
type Globals struct {
	Debug bool
	Dir   string
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("flip7"),
		kong.Description("Flip 7 game engine, strategy simulator and game archive"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	logger := newLogger(cli.Debug)
	err := ctx.Run(logger, &Globals{Debug: cli.Debug, Dir: cli.Dir})
	ctx.FatalIfErrorf(err)
}
