// Package model holds the mutable game, round and player state owned by the
// engine. Players are referenced by id; a RoundState is owned by exactly one
// GameState, either as CurrentRound or as an entry in History.
package model

import (
	"time"

	"github.com/lox/flip7/internal/card"
)

// EndReason records why a round finished
type EndReason string

const (
	EndNone          EndReason = ""
	EndAllResolved   EndReason = "all-resolved"
	EndPlayerBusted  EndReason = "player-busted"
	EndDeckExhausted EndReason = "deck-exhausted"
	EndEndedByCaller EndReason = "ended-by-caller"
)

// String returns the reason as written to the event log
func (r EndReason) String() string {
	return string(r)
}

// PlayerInfo is the fixed identity of a seat
type PlayerInfo struct {
	ID   string
	Name string
}

// PlayerState is one player's view of the current round. Everything except
// TotalScore is reset when a new round starts.
type PlayerState struct {
	ID              string
	Name            string
	Hand            []card.Card
	RoundScore      int
	TotalScore      int
	Stayed          bool
	Busted          bool
	HasSecondChance bool
	FlipThreeActive bool
	FlipThreeCount  int
}

// NewPlayerState creates a fresh round view for p carrying total forward
func NewPlayerState(p PlayerInfo, total int) *PlayerState {
	return &PlayerState{
		ID:         p.ID,
		Name:       p.Name,
		TotalScore: total,
	}
}

// Resolved reports whether the player is out of the round
func (p *PlayerState) Resolved() bool {
	return p.Stayed || p.Busted
}

// Active reports whether the player can still receive cards
func (p *PlayerState) Active() bool {
	return !p.Resolved()
}

// RoundState is a single round of play.
type RoundState struct {
	Number         int
	DealerID       string
	Players        map[string]*PlayerState
	Order          []string // seat order, used for every iteration
	CardsRemaining int
	Complete       bool
	EndReason      EndReason
	WinnerIDs      []string
}

// NewRoundState builds round n for players in seat order
func NewRoundState(n int, dealerID string, players []*PlayerState, cardsRemaining int) *RoundState {
	r := &RoundState{
		Number:         n,
		DealerID:       dealerID,
		Players:        make(map[string]*PlayerState, len(players)),
		Order:          make([]string, 0, len(players)),
		CardsRemaining: cardsRemaining,
	}
	for _, p := range players {
		r.Players[p.ID] = p
		r.Order = append(r.Order, p.ID)
	}
	return r
}

// Player returns the state for id, or nil
func (r *RoundState) Player(id string) *PlayerState {
	return r.Players[id]
}

// Each returns the player states in seat order
func (r *RoundState) Each() []*PlayerState {
	out := make([]*PlayerState, 0, len(r.Order))
	for _, id := range r.Order {
		if p, ok := r.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Active returns players who have neither stayed nor busted, in seat order
func (r *RoundState) Active() []*PlayerState {
	var out []*PlayerState
	for _, p := range r.Each() {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

// AllResolved reports whether every player has stayed or busted
func (r *RoundState) AllResolved() bool {
	for _, p := range r.Players {
		if p.Active() {
			return false
		}
	}
	return true
}

// AnyBusted reports whether a player busted this round
func (r *RoundState) AnyBusted() bool {
	for _, p := range r.Players {
		if p.Busted {
			return true
		}
	}
	return false
}

// GameState is the full state of one game.
type GameState struct {
	ID           string
	CreatedAt    time.Time
	Players      []PlayerInfo
	Deck         []card.Card
	Discard      []card.Card
	CurrentRound *RoundState
	History      []*RoundState
	Complete     bool
	WinnerID     string
	Metadata     map[string]string
}

// Player returns the seat for id
func (g *GameState) Player(id string) (PlayerInfo, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerInfo{}, false
}

// PlayerName returns the display name for id, or id itself when unknown
func (g *GameState) PlayerName(id string) string {
	if p, ok := g.Player(id); ok {
		return p.Name
	}
	return id
}

// LastRound returns the most recent round, current or completed
func (g *GameState) LastRound() *RoundState {
	if g.CurrentRound != nil {
		return g.CurrentRound
	}
	if len(g.History) == 0 {
		return nil
	}
	return g.History[len(g.History)-1]
}

// RoundsPlayed counts completed rounds
func (g *GameState) RoundsPlayed() int {
	return len(g.History)
}

// Totals returns each player's running total, keyed by id. Scores come from
// the current round if one is active, else from the last completed round.
func (g *GameState) Totals() map[string]int {
	totals := make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		totals[p.ID] = 0
	}
	if r := g.LastRound(); r != nil {
		for id, ps := range r.Players {
			totals[id] = ps.TotalScore
		}
	}
	return totals
}
