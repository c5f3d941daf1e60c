// Package simulator plays many automated games of Flip 7 in parallel. Each
// game runs on its own engine with its own seed, so results are
// reproducible and independent of the number of workers.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/game"
	"github.com/lox/flip7/internal/gameid"
	"github.com/lox/flip7/internal/randutil"
	"github.com/lox/flip7/internal/statistics"
	"github.com/lox/flip7/internal/store"
	"github.com/lox/flip7/internal/strategy"
)

// DefaultMaxRounds stops a game that never reaches the winning score
const DefaultMaxRounds = 500

// ErrRoundLimit is returned when a game runs past MaxRounds
var ErrRoundLimit = errors.New("round limit reached")

// Config holds configuration for running simulations
type Config struct {
	Games int
	Seed  int64
	// Workers defaults to the number of CPUs
	Workers int
	// Players is the number of seats per game; 0 seats every strategy
	Players    int
	Strategies []strategy.Spec
	MaxRounds  int

	Logger *log.Logger
	Clock  quartz.Clock
	// Repository, when set, receives every finished game
	Repository *store.Repository
	Metrics    *Metrics
	// Sinks receive every event of every game. They must be safe for
	// concurrent use when Workers > 1.
	Sinks []events.Sink
	// Progress is called after each game, never concurrently
	Progress func(done, total int)
}

// Results holds every game in game order plus their aggregate
type Results struct {
	Games   []statistics.GameResult
	Stats   *statistics.Statistics
	Elapsed time.Duration
}

// Simulator runs Flip 7 game simulations
type Simulator struct {
	config Config
	logger *log.Logger
	clock  quartz.Clock

	mu   sync.Mutex
	done int
}

// New validates config and creates a simulator
func New(config Config) (*Simulator, error) {
	if config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", config.Games)
	}
	if len(config.Strategies) < 2 {
		return nil, fmt.Errorf("need at least 2 strategies, got %d", len(config.Strategies))
	}
	if config.Players == 0 {
		config.Players = len(config.Strategies)
	}
	if config.Players < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", config.Players)
	}
	if config.Players > len(config.Strategies) {
		return nil, fmt.Errorf("not enough strategies (%d) for %d players", len(config.Strategies), config.Players)
	}
	config.Strategies = slices.Clone(config.Strategies)
	for i, spec := range config.Strategies {
		spec = spec.WithDefaults()
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		config.Strategies[i] = spec
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.MaxRounds <= 0 {
		config.MaxRounds = DefaultMaxRounds
	}

	s := &Simulator{config: config, logger: config.Logger, clock: config.Clock}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	return s, nil
}

// Run plays every game and returns the results. The first failing game
// cancels the rest.
func (s *Simulator) Run(ctx context.Context) (*Results, error) {
	start := s.clock.Now()
	results := make([]statistics.GameResult, s.config.Games)

	s.logger.Info("Starting simulation", "games", s.config.Games, "players", s.config.Players,
		"strategies", len(s.config.Strategies), "workers", s.config.Workers, "seed", s.config.Seed)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range s.config.Games {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.playGame(ctx, i)
			if err != nil {
				return err
			}
			results[i] = res
			s.tick()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := statistics.Summarize(results)
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	elapsed := s.clock.Since(start)
	s.logger.Info("Simulation complete", "games", s.config.Games, "elapsed", elapsed)
	return &Results{Games: results, Stats: stats, Elapsed: elapsed}, nil
}

func (s *Simulator) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
	if s.config.Progress != nil {
		s.config.Progress(s.done, s.config.Games)
	}
}

type seat struct {
	name     string
	strategy strategy.Strategy
}

// seatPlayers draws the strategies for a game in a random seating order
func (s *Simulator) seatPlayers(seed int64) ([]seat, error) {
	rng := randutil.New(randutil.Derive(seed, -1))
	order := rng.Perm(len(s.config.Strategies))[:s.config.Players]

	seats := make([]seat, len(order))
	for i, idx := range order {
		strat, err := strategy.New(s.config.Strategies[idx], randutil.New(randutil.Derive(seed, i)))
		if err != nil {
			return nil, err
		}
		seats[i] = seat{name: fmt.Sprintf("P%d %s", i+1, strat.Name()), strategy: strat}
	}
	return seats, nil
}

// playGame simulates one full game
func (s *Simulator) playGame(ctx context.Context, index int) (statistics.GameResult, error) {
	seed := randutil.Derive(s.config.Seed, index)

	seats, err := s.seatPlayers(seed)
	if err != nil {
		return statistics.GameResult{}, err
	}
	names := make([]string, len(seats))
	meta := map[string]string{statistics.MetaSeed: strconv.FormatInt(seed, 10)}
	for i, st := range seats {
		names[i] = st.name
		meta[statistics.MetaStrategyPrefix+st.name] = st.strategy.Name()
	}

	engineLog := log.New(io.Discard)
	if s.logger.GetLevel() <= log.DebugLevel {
		engineLog = s.logger.With("sim", index)
	}
	eng := game.NewEngine(game.Config{
		Logger:   engineLog,
		Clock:    s.clock,
		Rand:     randutil.New(seed),
		IDs:      gameid.Seeded(randutil.NewReader(seed)),
		Sinks:    s.config.Sinks,
		Metadata: meta,
	})

	g, err := eng.StartNewGame(names)
	if err != nil {
		return statistics.GameResult{}, fmt.Errorf("game %d: %w", index, err)
	}
	players := make(map[string]strategy.Strategy, len(seats))
	for i, info := range g.Players {
		players[info.ID] = seats[i].strategy
	}

	start := s.clock.Now()
	for !g.Complete {
		if err := ctx.Err(); err != nil {
			return statistics.GameResult{}, err
		}
		if len(g.History) >= s.config.MaxRounds {
			return statistics.GameResult{}, fmt.Errorf("game %d (seed %d): %w after %d rounds", index, seed, ErrRoundLimit, len(g.History))
		}
		if _, err := eng.StartNewRound(); err != nil {
			return statistics.GameResult{}, fmt.Errorf("game %d (seed %d): %w", index, seed, err)
		}
		if err := playRound(eng, players, engineLog); err != nil {
			return statistics.GameResult{}, fmt.Errorf("game %d (seed %d) round %d: %w", index, seed, len(g.History)+1, err)
		}
	}

	res := statistics.Collect(g)
	s.config.Metrics.observe(res, s.clock.Since(start))

	if s.config.Repository != nil {
		if err := s.config.Repository.Save(g, eng.EventLog()); err != nil {
			return statistics.GameResult{}, fmt.Errorf("game %d: %w", index, err)
		}
	}

	s.logger.Debug("Game finished", "sim", index, "game", g.ID, "rounds", res.Rounds, "winner", res.WinnerStrategy)
	return res, nil
}
