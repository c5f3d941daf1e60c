package strategy

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/flip7/internal/card"
)

// Random hits with a fixed probability and picks targets uniformly.
type Random struct {
	name           string
	hitProbability float64
	rng            *rand.Rand
}

// NewRandom creates a Random strategy. An empty name is derived from the
// probability; a nil rng uses the process-wide source.
func NewRandom(name string, hitProbability float64, rng *rand.Rand) *Random {
	if name == "" {
		name = fmt.Sprintf("Random(%.0f%%)", hitProbability*100)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Random{name: name, hitProbability: hitProbability, rng: rng}
}

func (r *Random) Name() string { return r.name }

func (r *Random) HitOrStay(ctx *Context) bool {
	if ctx.MustHit() {
		return true
	}
	return r.rng.Float64() < r.hitProbability
}

func (r *Random) SecondChanceDiscard(_ *Context, dups []card.Number) card.Number {
	return dups[r.rng.IntN(len(dups))]
}

func (r *Random) FlipThreeTarget(_ *Context, targets []string) string {
	return targets[r.rng.IntN(len(targets))]
}

func (r *Random) FreezeTarget(_ *Context, targets []string) string {
	return targets[r.rng.IntN(len(targets))]
}
