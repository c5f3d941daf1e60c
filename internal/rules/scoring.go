// Package rules implements Flip 7 scoring and the validator. Every function
// here is pure: it reads state and never changes it.
package rules

import "github.com/lox/flip7/internal/card"

// Game constants
const (
	WinningScore = 200
	Flip7Bonus   = 15
	Flip7Cards   = 7
)

// Breakdown is the score of a hand split into its parts.
type Breakdown struct {
	Base        int
	Bonus       int
	Multiplier  int
	FlipBonus   int
	Final       int
	NumberCards int
}

// HasFlip7 reports whether the hand earned the seven-card bonus
func (b Breakdown) HasFlip7() bool {
	return b.FlipBonus > 0
}

// Score computes (base + bonus) * multiplier + flip bonus. The multiplier
// applies to the sum; the flip bonus is added afterwards and never doubled.
// Action cards are ignored.
func Score(hand []card.Card) Breakdown {
	b := Breakdown{Multiplier: 1}

	for _, c := range hand {
		switch c := c.(type) {
		case card.Number:
			b.Base += c.Value
			b.NumberCards++
		case card.Modifier:
			switch c.Modifier {
			case card.PlusBonus:
				b.Bonus += c.Amount
			case card.Multiply:
				b.Multiplier = c.Amount
			}
		case card.Action:
			// actions never score
		}
	}

	if b.NumberCards == Flip7Cards {
		b.FlipBonus = Flip7Bonus
	}
	b.Final = (b.Base+b.Bonus)*b.Multiplier + b.FlipBonus
	return b
}

// Duplicates returns the number values that appear more than once in hand,
// in order of first repeat.
func Duplicates(hand []card.Card) []int {
	seen := make(map[int]int)
	var dups []int
	for _, n := range card.Numbers(hand) {
		seen[n.Value]++
		if seen[n.Value] == 2 {
			dups = append(dups, n.Value)
		}
	}
	return dups
}

// HasDuplicate reports whether two number cards share a value
func HasDuplicate(hand []card.Card) bool {
	return len(Duplicates(hand)) > 0
}

// Busts reports whether a hand is bust: a duplicated number value with no
// unresolved Second Chance to save it. Score never causes a bust.
func Busts(hand []card.Card, hasSecondChance bool) bool {
	return !hasSecondChance && HasDuplicate(hand)
}

// CountValue returns how many number cards in hand have value v
func CountValue(hand []card.Card, v int) int {
	n := 0
	for _, c := range card.Numbers(hand) {
		if c.Value == v {
			n++
		}
	}
	return n
}
