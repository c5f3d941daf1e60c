package strategy

import (
	"fmt"

	"github.com/lox/flip7/internal/card"
)

// Threshold hits until its round score reaches a target, then stays.
// Flip Three goes to the opponent with the highest total. Freeze banks its
// own hand once the target is reached, otherwise it stops the leader.
type Threshold struct {
	name   string
	target int
}

// NewThreshold creates a Threshold strategy
func NewThreshold(name string, target int) *Threshold {
	if name == "" {
		name = fmt.Sprintf("Threshold(%d)", target)
	}
	return &Threshold{name: name, target: target}
}

func (t *Threshold) Name() string { return t.name }

func (t *Threshold) HitOrStay(ctx *Context) bool {
	if ctx.MustHit() {
		return true
	}
	return ctx.RoundScore < t.target
}

func (t *Threshold) SecondChanceDiscard(_ *Context, dups []card.Number) card.Number {
	return lastOf(dups)
}

func (t *Threshold) FlipThreeTarget(ctx *Context, targets []string) string {
	return ctx.leaderAmong(targets)
}

func (t *Threshold) FreezeTarget(ctx *Context, targets []string) string {
	if ctx.RoundScore >= t.target {
		return ctx.PlayerID
	}
	return ctx.leaderAmong(targets)
}
