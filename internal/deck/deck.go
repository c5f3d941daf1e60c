// Package deck builds and shuffles the standard Flip 7 deck.
package deck

import (
	rand "math/rand/v2"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/randutil"
)

// Standard deck composition
const (
	ActionCopies = 3
	Size         = 94
)

// PlusBonuses lists the additive modifier cards, one of each
var PlusBonuses = []int{2, 4, 6, 8, 10}

// IDSource names physical cards. *gameid.Generator satisfies it.
type IDSource interface {
	New(prefix string) string
}

// CopiesOf returns how many number cards with value v a full deck holds:
// v copies of v, and a single 0.
func CopiesOf(v int) int {
	if v < 0 || v > card.MaxNumber {
		return 0
	}
	if v == 0 {
		return 1
	}
	return v
}

// Standard returns an unshuffled deck: 79 number cards, 9 action cards and
// 6 modifier cards.
func Standard(ids IDSource) []card.Card {
	cards := make([]card.Card, 0, Size)

	for v := card.MaxNumber; v >= 0; v-- {
		for i := 0; i < CopiesOf(v); i++ {
			cards = append(cards, card.NewNumber(ids.New("card"), v))
		}
	}

	for _, a := range []card.ActionKind{card.FlipThree, card.Freeze, card.SecondChance} {
		for i := 0; i < ActionCopies; i++ {
			cards = append(cards, card.NewAction(ids.New("card"), a))
		}
	}

	for _, n := range PlusBonuses {
		cards = append(cards, card.NewPlus(ids.New("card"), n))
	}
	cards = append(cards, card.NewMultiply(ids.New("card")))

	return cards
}

// Shuffle returns a shuffled copy of cards. A nil rng shuffles with the
// process-wide source; pass randutil.New(seed) for a reproducible order.
func Shuffle(cards []card.Card, rng *rand.Rand) []card.Card {
	out := make([]card.Card, len(cards))
	copy(out, cards)
	randutil.Shuffle(rng, out)
	return out
}

// New returns a standard deck shuffled with rng
func New(ids IDSource, rng *rand.Rand) []card.Card {
	return Shuffle(Standard(ids), rng)
}

// Stats describes the composition of a set of cards
type Stats struct {
	Total          int
	Numbers        int
	Actions        int
	Modifiers      int
	AverageNumber  float64
	NumberCounts   map[int]int
	ActionCounts   map[card.ActionKind]int
	ModifierCounts map[string]int // keyed by face, e.g. "+4", "x2"
}

// Composition counts the cards by variant and face
func Composition(cards []card.Card) Stats {
	s := Stats{
		Total:          len(cards),
		NumberCounts:   make(map[int]int),
		ActionCounts:   make(map[card.ActionKind]int),
		ModifierCounts: make(map[string]int),
	}

	sum := 0
	for _, c := range cards {
		switch c := c.(type) {
		case card.Number:
			s.Numbers++
			s.NumberCounts[c.Value]++
			sum += c.Value
		case card.Action:
			s.Actions++
			s.ActionCounts[c.Action]++
		case card.Modifier:
			s.Modifiers++
			s.ModifierCounts[c.String()]++
		}
	}

	if s.Numbers > 0 {
		s.AverageNumber = float64(sum) / float64(s.Numbers)
	}
	return s
}
