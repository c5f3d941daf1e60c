package simulator

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/game"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/rules"
	"github.com/lox/flip7/internal/strategy"
)

// maxPasses bounds the turns taken around the table in one round
const maxPasses = 1000

// playRound drives the active round to completion. Players take turns in
// seat order until every one of them has stayed or busted.
func playRound(eng *game.Engine, players map[string]strategy.Strategy, logger *log.Logger) error {
	r, err := eng.CurrentRound()
	if err != nil {
		return err
	}

	for pass := 0; !r.Complete; pass++ {
		if pass >= maxPasses {
			logger.Warn("Round did not finish, ending it", "round", r.Number, "passes", pass)
			_, err := eng.EndRound()
			return err
		}
		for _, id := range r.Order {
			if r.Complete {
				break
			}
			if r.Player(id).Resolved() {
				continue
			}
			if err := takeTurn(eng, r, r.Player(id), players[id], logger); err != nil {
				return err
			}
		}
	}
	return nil
}

// takeTurn lets p stay or draw one card and resolves what the card does
func takeTurn(eng *game.Engine, r *model.RoundState, p *model.PlayerState, strat strategy.Strategy, logger *log.Logger) error {
	g := eng.GameState()

	if !(p.FlipThreeActive && p.FlipThreeCount > 0) {
		ctx, err := strategy.NewContext(g, p.ID)
		if err != nil {
			return err
		}
		if !strat.HitOrStay(ctx) {
			return eng.PlayerStay(p.ID)
		}
	}

	if eng.DeckSize() == 0 {
		_, err := eng.EndRound()
		return err
	}
	if err := eng.PlayerHit(p.ID); err != nil {
		return err
	}
	c, err := eng.PeekCard()
	if err != nil {
		return err
	}
	if err := eng.DealCardToPlayer(p.ID, c); err != nil {
		return err
	}
	if r.Complete || p.Resolved() {
		return nil
	}

	if a, ok := c.(card.Action); ok {
		if err := resolveAction(eng, r, p, a, strat, logger); err != nil {
			return err
		}
		if r.Complete || p.Resolved() {
			return nil
		}
	}

	if p.HasSecondChance && rules.HasDuplicate(p.Hand) {
		ctx, err := strategy.NewContext(g, p.ID)
		if err != nil {
			return err
		}
		return eng.UseSecondChance(p.ID, strat.SecondChanceDiscard(ctx, duplicates(p.Hand)))
	}
	return nil
}

// resolveAction aims the action card a that p just drew
func resolveAction(eng *game.Engine, r *model.RoundState, p *model.PlayerState, a card.Action, strat strategy.Strategy, logger *log.Logger) error {
	targets := activeIDs(r)

	var target string
	switch a.Action {
	case card.SecondChance:
		target = secondChanceTarget(r, p)
		if target == "" {
			return eng.DiscardActionCard(p.ID, a)
		}

	case card.FlipThree, card.Freeze:
		ctx, err := strategy.NewContext(eng.GameState(), p.ID)
		if err != nil {
			return err
		}
		if a.Action == card.Freeze {
			target = strat.FreezeTarget(ctx, targets)
		} else {
			target = strat.FlipThreeTarget(ctx, targets)
		}
		if !slices.Contains(targets, target) {
			logger.Warn("Strategy chose an ineligible target, using self", "strategy", strat.Name(), "action", a.Action, "target", target)
			target = p.ID
		}
	}
	return eng.ApplyActionCardEffect(a, target, p.ID)
}

// secondChanceTarget keeps the card when p has none, else passes it to
// the first active player without one. Empty means nobody can take it.
func secondChanceTarget(r *model.RoundState, p *model.PlayerState) string {
	if !p.HasSecondChance {
		return p.ID
	}
	for _, o := range r.Active() {
		if o.ID != p.ID && !o.HasSecondChance {
			return o.ID
		}
	}
	return ""
}

func activeIDs(r *model.RoundState) []string {
	var ids []string
	for _, p := range r.Active() {
		ids = append(ids, p.ID)
	}
	return ids
}

// duplicates returns the number cards sharing the first repeated value,
// in the order they were drawn
func duplicates(hand []card.Card) []card.Number {
	vals := rules.Duplicates(hand)
	if len(vals) == 0 {
		return nil
	}
	var out []card.Number
	for _, n := range card.Numbers(hand) {
		if n.Value == vals[0] {
			out = append(out, n)
		}
	}
	return out
}
