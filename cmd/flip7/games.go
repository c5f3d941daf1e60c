package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/statistics"
	"github.com/lox/flip7/internal/store"
)

func openRepository(g *Globals, logger *log.Logger) (*store.Repository, error) {
	if _, err := os.Stat(g.Dir); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no saved games in %s", g.Dir)
	}
	return store.NewRepository(g.Dir, logger)
}

// GamesCmd lists saved games, newest first
type GamesCmd struct {
	Limit  int    `short:"n" help:"Show at most this many games (0 = all)"`
	Delete string `help:"Delete the game with this id instead of listing"`
}

func (c *GamesCmd) Run(logger *log.Logger, g *Globals) error {
	repo, err := openRepository(g, logger)
	if err != nil {
		return err
	}

	if c.Delete != "" {
		if err := repo.Delete(c.Delete); err != nil {
			return err
		}
		logger.Info("Deleted game", "game", c.Delete)
		return nil
	}

	games, err := repo.List()
	if err != nil {
		return err
	}
	if c.Limit > 0 && len(games) > c.Limit {
		games = games[:c.Limit]
	}
	printGames(os.Stdout, games)
	return nil
}

// ShowCmd renders a saved game
type ShowCmd struct {
	ID         string `arg:"" name:"game-id" help:"Game id, as listed by the games command"`
	Round      int    `short:"r" help:"Only show events from this round"`
	Timestamps bool   `help:"Prefix events with their time"`
	IDs        bool   `name:"ids" help:"Prefix events with their id"`
	Summary    bool   `short:"s" help:"Only show the statistics"`
}

func (c *ShowCmd) Run(logger *log.Logger, g *Globals) error {
	repo, err := openRepository(g, logger)
	if err != nil {
		return err
	}
	game, evs, err := repo.Load(c.ID)
	if err != nil {
		return err
	}

	if !c.Summary {
		shown := evs
		if c.Round > 0 {
			shown = events.NewLog(game.ID, events.WithHistory(evs)).ForRound(c.Round)
		}
		f := events.NewFormatter(events.FormattingOptions{
			ShowTimestamps: c.Timestamps,
			ShowIDs:        c.IDs,
			Names:          playerNames(game),
		})
		fmt.Fprint(os.Stdout, f.FormatAll(shown))
		fmt.Fprintln(os.Stdout)
	}

	st, err := statistics.Game(game)
	if errors.Is(err, statistics.ErrIncomplete) {
		fmt.Fprintln(os.Stdout, dimStyle.Render(fmt.Sprintf("Game %s is still in progress after %d rounds", game.ID, game.RoundsPlayed())))
		return nil
	} else if err != nil {
		return err
	}
	printGameStats(os.Stdout, st, statistics.Analyze(evs))
	return nil
}

func playerNames(g *model.GameState) map[string]string {
	names := make(map[string]string, len(g.Players))
	for _, p := range g.Players {
		names[p.ID] = p.Name
	}
	return names
}

// LeaderboardCmd ranks player names across every finished saved game
type LeaderboardCmd struct {
	Player string `short:"p" help:"Only show this player"`
}

func (c *LeaderboardCmd) Run(logger *log.Logger, g *Globals) error {
	repo, err := openRepository(g, logger)
	if err != nil {
		return err
	}
	games, err := loadAll(repo, logger)
	if err != nil {
		return err
	}

	board := statistics.Leaderboard(games)
	if c.Player != "" {
		p := statistics.Player(c.Player, games)
		if p.Games == 0 {
			return fmt.Errorf("no finished games for player %q", c.Player)
		}
		board = []statistics.PlayerStats{p}
	}
	printLeaderboard(os.Stdout, board, statistics.Historical(games))
	return nil
}

// loadAll reads every saved game, skipping ones that fail to load
func loadAll(repo *store.Repository, logger *log.Logger) ([]*model.GameState, error) {
	summaries, err := repo.List()
	if err != nil {
		return nil, err
	}
	games := make([]*model.GameState, 0, len(summaries))
	for _, s := range summaries {
		g, _, err := repo.Load(s.ID)
		if err != nil {
			logger.Warn("Skipping unreadable game", "game", s.ID, "error", err)
			continue
		}
		games = append(games, g)
	}
	return games, nil
}
