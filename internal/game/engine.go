package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/deck"
	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/gameid"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/rules"
)

// Protocol errors: the caller used the engine out of sequence.
var (
	ErrNoGame        = errors.New("no game in progress")
	ErrGameExists    = errors.New("engine already holds a game")
	ErrNoActiveRound = errors.New("no active round")
	ErrUnknownPlayer = errors.New("unknown player")
)

// IDSource names games, players, cards and events
type IDSource interface {
	New(prefix string) string
}

// Config holds the collaborators of an Engine. Every field is optional.
type Config struct {
	Logger *log.Logger
	Clock  quartz.Clock
	// Rand shuffles the deck; nil uses the process-wide source
	Rand *rand.Rand
	IDs  IDSource
	// Sinks receive every event as it is appended
	Sinks    []events.Sink
	Metadata map[string]string
}

// Engine is the Flip 7 state machine for a single game.
type Engine struct {
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand
	ids    IDSource
	sinks  []events.Sink
	meta   map[string]string

	state *model.GameState
	log   *events.Log
}

// NewEngine creates an engine with no game
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		logger: cfg.Logger,
		clock:  cfg.Clock,
		rng:    cfg.Rand,
		ids:    cfg.IDs,
		sinks:  cfg.Sinks,
		meta:   cfg.Metadata,
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if e.clock == nil {
		e.clock = quartz.NewReal()
	}
	if e.ids == nil {
		e.ids = gameid.NewGenerator()
	}
	return e
}

// Resume creates an engine around a previously saved game and its events.
// New events are appended after history.
func Resume(cfg Config, state *model.GameState, history []events.Event) (*Engine, error) {
	if state == nil {
		return nil, ErrNoGame
	}
	if len(state.Players) < 2 {
		return nil, fmt.Errorf("resume %s: %w", state.ID, rules.Deny(rules.ReasonNotEnoughPlayers, ""))
	}
	e := NewEngine(cfg)
	e.state = state
	e.log = e.newLog(state.ID, events.WithHistory(history))

	e.logger.Debug("Resumed game", "game", state.ID, "rounds", len(state.History), "events", len(history))
	return e, nil
}

func (e *Engine) newLog(gameID string, extra ...events.LogOption) *events.Log {
	opts := []events.LogOption{events.WithClock(e.clock), events.WithIDs(e.ids)}
	for _, s := range e.sinks {
		opts = append(opts, events.WithSink(s))
	}
	return events.NewLog(gameID, append(opts, extra...)...)
}

// StartNewGame seats the players, shuffles the deck and records GameStarted.
// At least two unique names are required.
func (e *Engine) StartNewGame(names []string) (*model.GameState, error) {
	if e.state != nil {
		return nil, ErrGameExists
	}
	if err := rules.ValidatePlayers(names).Err(); err != nil {
		return nil, err
	}

	id := e.ids.New(gameid.Game)
	players := make([]model.PlayerInfo, len(names))
	ids := make([]string, len(names))
	for i, name := range names {
		players[i] = model.PlayerInfo{ID: e.ids.New(gameid.Player), Name: name}
		ids[i] = players[i].ID
	}

	meta := make(map[string]string, len(e.meta))
	for k, v := range e.meta {
		meta[k] = v
	}

	e.state = &model.GameState{
		ID:        id,
		CreatedAt: e.clock.Now(),
		Players:   players,
		Deck:      deck.New(e.ids, e.rng),
		Metadata:  meta,
	}
	e.log = e.newLog(id)

	e.logger.Info("Starting game", "game", id, "players", len(players))
	if err := e.emit(&events.GameStarted{PlayerIDs: ids, PlayerNames: append([]string(nil), names...)}); err != nil {
		return nil, err
	}
	return e.state, nil
}

// StartNewRound deals a fresh round. The dealer rotates by round number and
// every player's total carries forward.
func (e *Engine) StartNewRound() (*model.RoundState, error) {
	if e.state == nil {
		return nil, ErrNoGame
	}
	if e.state.Complete {
		return nil, rules.Deny(rules.ReasonGameComplete, "")
	}
	if e.state.CurrentRound != nil {
		return nil, rules.Deny(rules.ReasonRoundInProgress, "round %d", e.state.CurrentRound.Number)
	}

	n := len(e.state.History) + 1
	dealer := e.state.Players[(n-1)%len(e.state.Players)]
	totals := e.state.Totals()

	states := make([]*model.PlayerState, len(e.state.Players))
	for i, p := range e.state.Players {
		states[i] = model.NewPlayerState(p, totals[p.ID])
	}
	r := model.NewRoundState(n, dealer.ID, states, len(e.state.Deck))
	e.state.CurrentRound = r

	e.logger.Debug("Starting round", "round", n, "dealer", dealer.Name, "deck", len(e.state.Deck))
	if err := e.emit(&events.RoundStarted{Round: n, DealerID: dealer.ID, DealerName: dealer.Name}); err != nil {
		return nil, err
	}
	return r, nil
}

// GameState returns the live game state, or nil before StartNewGame
func (e *Engine) GameState() *model.GameState {
	return e.state
}

// EventLog returns the recorded events in order
func (e *Engine) EventLog() []events.Event {
	if e.log == nil {
		return nil
	}
	return e.log.Events()
}

// Log returns the event log for queries, or nil before StartNewGame
func (e *Engine) Log() *events.Log {
	return e.log
}

// CurrentRound returns the active round or ErrNoActiveRound
func (e *Engine) CurrentRound() (*model.RoundState, error) {
	if e.state == nil {
		return nil, ErrNoGame
	}
	if e.state.CurrentRound == nil {
		return nil, ErrNoActiveRound
	}
	return e.state.CurrentRound, nil
}

// PeekCard returns the card on top of the deck without dealing it
func (e *Engine) PeekCard() (card.Card, error) {
	if e.state == nil {
		return nil, ErrNoGame
	}
	if len(e.state.Deck) == 0 {
		return nil, rules.Deny(rules.ReasonDeckEmpty, "")
	}
	return e.state.Deck[0], nil
}

// DeckSize returns the number of cards left in the deck
func (e *Engine) DeckSize() int {
	if e.state == nil {
		return 0
	}
	return len(e.state.Deck)
}

func (e *Engine) emit(ev events.Event) error {
	if err := e.log.Append(ev); err != nil {
		e.logger.Error("Failed to record event", "type", ev.EventType(), "error", err)
		return err
	}
	return nil
}

// activePlayer returns the current round and the named player's state
func (e *Engine) activePlayer(playerID string) (*model.RoundState, *model.PlayerState, error) {
	r, err := e.CurrentRound()
	if err != nil {
		return nil, nil, err
	}
	p := r.Player(playerID)
	if p == nil {
		e.logger.Warn("Unknown player", "player", playerID)
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	return r, p, nil
}

// checkGameEnd ends the game once a total reaches the winning score
func (e *Engine) checkGameEnd(r *model.RoundState) error {
	totals := make(map[string]int, len(r.Players))
	for id, p := range r.Players {
		totals[id] = p.TotalScore
	}

	winner, ok := rules.GameWinner(e.state.Players, totals)
	if !ok {
		return nil
	}

	e.state.Complete = true
	e.state.WinnerID = winner
	name := e.state.PlayerName(winner)

	e.logger.Info("Game over", "game", e.state.ID, "winner", name, "score", totals[winner], "rounds", len(e.state.History))
	return e.emit(&events.GameEnded{
		WinnerID:    winner,
		WinnerName:  name,
		FinalScores: totals,
		TotalRounds: len(e.state.History),
	})
}
