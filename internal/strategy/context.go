// Package strategy holds the automated players used by the simulator. A
// strategy only sees what a seated player could see: its own hand, the
// public state of the other seats and the discard pile. The order of the
// deck is never exposed.
package strategy

import (
	"fmt"
	"slices"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/deck"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/rules"
)

// Opponent is the public view of another seat
type Opponent struct {
	ID         string
	Name       string
	TotalScore int
	RoundScore int
	Stayed     bool
	Busted     bool
	Cards      int
}

// Active reports whether the opponent is still drawing
func (o Opponent) Active() bool {
	return !o.Stayed && !o.Busted
}

// DeckStats describes the cards a player cannot see.
type DeckStats struct {
	Remaining int
	Discarded int
	// Visible holds the discard pile and every other player's hand
	Visible []card.Card
}

// Context is everything a strategy knows when it makes a decision.
type Context struct {
	PlayerID        string
	Hand            []card.Card
	RoundScore      int
	TotalScore      int
	HasSecondChance bool
	FlipThreeActive bool
	FlipThreeCount  int
	Round           int
	Opponents       []Opponent
	Deck            DeckStats
}

// NewContext builds the view of playerID from the current round of g
func NewContext(g *model.GameState, playerID string) (*Context, error) {
	r := g.CurrentRound
	if r == nil {
		return nil, fmt.Errorf("no active round in game %s", g.ID)
	}
	me := r.Player(playerID)
	if me == nil {
		return nil, fmt.Errorf("player %s is not in round %d", playerID, r.Number)
	}

	c := &Context{
		PlayerID:        me.ID,
		Hand:            slices.Clone(me.Hand),
		RoundScore:      me.RoundScore,
		TotalScore:      me.TotalScore,
		HasSecondChance: me.HasSecondChance,
		FlipThreeActive: me.FlipThreeActive,
		FlipThreeCount:  me.FlipThreeCount,
		Round:           r.Number,
		Deck: DeckStats{
			Remaining: len(g.Deck),
			Discarded: len(g.Discard),
			Visible:   slices.Clone(g.Discard),
		},
	}
	for _, p := range r.Each() {
		if p.ID == me.ID {
			continue
		}
		c.Opponents = append(c.Opponents, Opponent{
			ID:         p.ID,
			Name:       p.Name,
			TotalScore: p.TotalScore,
			RoundScore: p.RoundScore,
			Stayed:     p.Stayed,
			Busted:     p.Busted,
			Cards:      len(p.Hand),
		})
		c.Deck.Visible = append(c.Deck.Visible, p.Hand...)
	}
	return c, nil
}

// MustHit reports whether a Flip Three effect forces the next draw
func (c *Context) MustHit() bool {
	return c.FlipThreeActive && c.FlipThreeCount > 0
}

// NumberCards returns how many number cards are in the hand
func (c *Context) NumberCards() int {
	return len(card.Numbers(c.Hand))
}

// HasMultiplier reports whether the hand holds the x2 card
func (c *Context) HasMultiplier() bool {
	for _, h := range c.Hand {
		if m, ok := h.(card.Modifier); ok && m.Modifier == card.Multiply {
			return true
		}
	}
	return false
}

// LeadingOpponent returns the opponent with the highest total score. The
// first seat wins a tie.
func (c *Context) LeadingOpponent() (Opponent, bool) {
	if len(c.Opponents) == 0 {
		return Opponent{}, false
	}
	best := c.Opponents[0]
	for _, o := range c.Opponents[1:] {
		if o.TotalScore > best.TotalScore {
			best = o
		}
	}
	return best, true
}

// DuplicateOdds estimates, for each number value in the hand, the chance
// that the next card repeats it. Unseen copies are assumed to be spread
// evenly through the remaining deck.
func (c *Context) DuplicateOdds() map[int]float64 {
	odds := make(map[int]float64)
	if c.Deck.Remaining == 0 {
		return odds
	}
	for _, n := range card.Numbers(c.Hand) {
		if _, done := odds[n.Value]; done {
			continue
		}
		seen := rules.CountValue(c.Hand, n.Value) + rules.CountValue(c.Deck.Visible, n.Value)
		unseen := max(0, deck.CopiesOf(n.Value)-seen)
		odds[n.Value] = float64(unseen) / float64(c.Deck.Remaining)
	}
	return odds
}

// BustRisk is the chance that the next card busts the hand, ignoring any
// Second Chance held.
func (c *Context) BustRisk() float64 {
	odds := c.DuplicateOdds()
	total := 0.0
	for _, n := range card.Numbers(c.Hand) {
		if p, ok := odds[n.Value]; ok {
			total += p
			delete(odds, n.Value)
		}
	}
	return min(total, 1)
}

// opponentTargets returns the ids in targets that are not the player
func (c *Context) opponentTargets(targets []string) []Opponent {
	var out []Opponent
	for _, o := range c.Opponents {
		if slices.Contains(targets, o.ID) {
			out = append(out, o)
		}
	}
	return out
}

// leaderAmong picks the target opponent with the highest total score, or
// the player themselves when no opponent is eligible.
func (c *Context) leaderAmong(targets []string) string {
	opps := c.opponentTargets(targets)
	if len(opps) == 0 {
		return c.PlayerID
	}
	best := opps[0]
	for _, o := range opps[1:] {
		if o.TotalScore > best.TotalScore {
			best = o
		}
	}
	return best.ID
}
