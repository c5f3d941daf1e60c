package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/gameid"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/randutil"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, seed int64) Config {
	t.Helper()
	return Config{
		Logger: log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
		Clock:  quartz.NewMock(t),
		Rand:   randutil.New(seed),
		IDs:    gameid.Seeded(randutil.NewReader(seed)),
	}
}

// newTestEngine starts a game and its first round
func newTestEngine(t *testing.T, names ...string) (*Engine, *model.RoundState) {
	t.Helper()
	if len(names) == 0 {
		names = []string{"Alice", "Bob"}
	}
	e := NewEngine(testConfig(t, 42))
	_, err := e.StartNewGame(names)
	require.NoError(t, err)
	r, err := e.StartNewRound()
	require.NoError(t, err)
	return e, r
}

// stackDeck replaces the deck with the given faces, top first
func stackDeck(e *Engine, faces ...string) {
	e.state.Deck = card.MustParseHand(faces...)
	if e.state.CurrentRound != nil {
		e.state.CurrentRound.CardsRemaining = len(e.state.Deck)
	}
}

// deal gives each face to the player in turn
func deal(t *testing.T, e *Engine, playerID string, faces ...string) {
	t.Helper()
	for _, c := range card.MustParseHand(faces...) {
		require.NoError(t, e.DealCardToPlayer(playerID, c))
	}
}

// cardsInPlay counts every card the game holds outside completed rounds
func cardsInPlay(e *Engine) int {
	n := len(e.state.Deck) + len(e.state.Discard)
	if r := e.state.CurrentRound; r != nil {
		for _, p := range r.Players {
			n += len(p.Hand)
		}
	}
	return n
}

func eventTypes(e *Engine) []events.EventType {
	var out []events.EventType
	for _, ev := range e.EventLog() {
		out = append(out, ev.EventType())
	}
	return out
}

func lastOfType[T events.Event](e *Engine) T {
	var zero T
	evs := e.EventLog()
	for i := len(evs) - 1; i >= 0; i-- {
		if ev, ok := evs[i].(T); ok {
			return ev
		}
	}
	return zero
}
