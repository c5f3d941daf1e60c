// Package game implements the Flip 7 game and round state machine.
//
// The main type is Engine, which owns one GameState and its event log. The
// engine never makes decisions: a driver (a person at the table, or a
// strategy during simulation) tells it which card went to which player and
// the engine validates, applies and records the result.
//
// # Basic Usage
//
//	e := game.NewEngine(game.Config{Logger: logger})
//	if _, err := e.StartNewGame([]string{"Alice", "Bob"}); err != nil {
//	    return err
//	}
//	round, _ := e.StartNewRound()
//	next, _ := e.PeekCard()
//	err := e.DealCardToPlayer(round.Order[0], next)
//
// # Errors
//
// Calling an operation out of sequence, such as dealing with no active
// round, returns one of the sentinel errors (ErrNoGame, ErrNoActiveRound,
// ErrUnknownPlayer). Breaking a rule returns a *rules.DenialError carrying
// the reason; use rules.IsDenied to inspect it.
//
// # Deterministic Testing
//
// Pass a seeded *rand.Rand and a seeded id generator in Config for
// reproducible decks and ids:
//
//	e := game.NewEngine(game.Config{
//	    Rand: randutil.New(42),
//	    IDs:  gameid.Seeded(randutil.NewReader(42)),
//	})
//
// An Engine is not safe for concurrent use. Run one engine per goroutine.
package game
