package strategy

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/flip7/internal/card"
)

// Strategy decides for one seat. Implementations may keep state, so every
// simulated game gets its own instance.
type Strategy interface {
	Name() string
	// HitOrStay returns true to draw another card
	HitOrStay(ctx *Context) bool
	// SecondChanceDiscard picks which of the duplicated cards to give up
	SecondChanceDiscard(ctx *Context, dups []card.Number) card.Number
	// FlipThreeTarget and FreezeTarget pick from the active players,
	// which always include the player themselves
	FlipThreeTarget(ctx *Context, targets []string) string
	FreezeTarget(ctx *Context, targets []string) string
}

// Kind names a built-in strategy
type Kind string

const (
	KindRandom    Kind = "random"
	KindThreshold Kind = "threshold"
	KindOdds      Kind = "odds"
)

// Kinds lists the built-in strategies
var Kinds = []Kind{KindRandom, KindThreshold, KindOdds}

// Defaults
const (
	DefaultHitProbability = 0.5
	DefaultTarget         = 100
	DefaultMaxRisk        = 0.25
)

// Spec describes a strategy to build. Zero fields take their defaults.
type Spec struct {
	Name           string
	Kind           Kind
	Target         int
	HitProbability float64
	MaxRisk        float64
}

// WithDefaults fills in unset fields
func (s Spec) WithDefaults() Spec {
	if s.HitProbability == 0 {
		s.HitProbability = DefaultHitProbability
	}
	if s.Target == 0 && s.Kind == KindThreshold {
		s.Target = DefaultTarget
	}
	if s.MaxRisk == 0 {
		s.MaxRisk = DefaultMaxRisk
	}
	return s
}

// Validate checks s once defaults have been applied
func (s Spec) Validate() error {
	switch s.Kind {
	case KindRandom:
		if s.HitProbability < 0 || s.HitProbability > 1 {
			return fmt.Errorf("strategy %s: hit probability %.2f must be between 0 and 1", s.label(), s.HitProbability)
		}
	case KindThreshold:
		if s.Target <= 0 {
			return fmt.Errorf("strategy %s: target must be positive", s.label())
		}
	case KindOdds:
		if s.MaxRisk <= 0 || s.MaxRisk > 1 {
			return fmt.Errorf("strategy %s: max risk %.2f must be in (0, 1]", s.label(), s.MaxRisk)
		}
		if s.Target < 0 {
			return fmt.Errorf("strategy %s: target must not be negative", s.label())
		}
	default:
		return fmt.Errorf("strategy %s: unknown kind %q", s.label(), s.Kind)
	}
	return nil
}

func (s Spec) label() string {
	if s.Name != "" {
		return s.Name
	}
	return string(s.Kind)
}

// New builds the strategy described by s. rng is only used by strategies
// that make random choices.
func New(s Spec, rng *rand.Rand) (Strategy, error) {
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Kind {
	case KindRandom:
		return NewRandom(s.Name, s.HitProbability, rng), nil
	case KindThreshold:
		return NewThreshold(s.Name, s.Target), nil
	default:
		return NewOdds(s.Name, s.MaxRisk, s.Target), nil
	}
}

// lastOf returns the most recently drawn duplicate
func lastOf(dups []card.Number) card.Number {
	return dups[len(dups)-1]
}
