package strategy

import (
	"fmt"

	"github.com/lox/flip7/internal/rules"
)

// Odds hits while the estimated chance of busting on the next card stays at
// or below MaxRisk. A held Second Chance makes the next card safe. A
// positive target also makes it stay once the round score reaches it.
type Odds struct {
	*Threshold
	maxRisk float64
}

// NewOdds creates an Odds strategy. A target of zero disables the score
// cap.
func NewOdds(name string, maxRisk float64, target int) *Odds {
	if name == "" {
		name = fmt.Sprintf("Odds(%.0f%%)", maxRisk*100)
	}
	return &Odds{Threshold: NewThreshold(name, target), maxRisk: maxRisk}
}

func (o *Odds) HitOrStay(ctx *Context) bool {
	if ctx.MustHit() {
		return true
	}
	// one more number card is worth the bonus
	if ctx.NumberCards() == rules.Flip7Cards-1 && ctx.HasSecondChance {
		return true
	}
	if o.target > 0 && ctx.RoundScore >= o.target {
		return false
	}
	if ctx.HasSecondChance {
		return true
	}
	return ctx.BustRisk() <= o.maxRisk
}

// FreezeTarget banks its own hand when the next card looks too risky,
// otherwise it stops the leading opponent.
func (o *Odds) FreezeTarget(ctx *Context, targets []string) string {
	if ctx.RoundScore > 0 && ctx.BustRisk() > o.maxRisk {
		return ctx.PlayerID
	}
	return ctx.leaderAmong(targets)
}
