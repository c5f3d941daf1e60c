// Package card defines the closed set of Flip 7 cards.
//
// A Card is one of three variants: Number, Action or Modifier. Consumers
// switch on the concrete type:
//
//	switch c := c.(type) {
//	case card.Number:
//	case card.Action:
//	case card.Modifier:
//	}
//
// Every card carries an identity so that two physical cards with the same
// face can be told apart. Cards are values and never change once created.
package card

import (
	"fmt"
	"strconv"
)

// MaxNumber is the highest face value of a number card.
const MaxNumber = 12

// Kind identifies the variant of a card.
type Kind int

const (
	KindNumber Kind = iota
	KindAction
	KindModifier
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindAction:
		return "action"
	case KindModifier:
		return "modifier"
	default:
		return "unknown"
	}
}

// ParseKind converts a wire name back into a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "number":
		return KindNumber, nil
	case "action":
		return KindAction, nil
	case "modifier":
		return KindModifier, nil
	}
	return 0, fmt.Errorf("unknown card kind %q", s)
}

// ActionKind identifies the effect of an action card.
type ActionKind int

const (
	Freeze ActionKind = iota
	FlipThree
	SecondChance
)

// String returns the wire name of the action
func (a ActionKind) String() string {
	switch a {
	case Freeze:
		return "freeze"
	case FlipThree:
		return "flip_three"
	case SecondChance:
		return "second_chance"
	default:
		return "unknown"
	}
}

// Title returns the printed name of the action
func (a ActionKind) Title() string {
	switch a {
	case Freeze:
		return "Freeze"
	case FlipThree:
		return "Flip Three"
	case SecondChance:
		return "Second Chance"
	default:
		return "?"
	}
}

// ParseActionKind converts a wire name back into an ActionKind
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "freeze":
		return Freeze, nil
	case "flip_three":
		return FlipThree, nil
	case "second_chance":
		return SecondChance, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// MarshalText encodes the action by its wire name
func (a ActionKind) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a wire name
func (a *ActionKind) UnmarshalText(b []byte) error {
	k, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*a = k
	return nil
}

// ModifierKind identifies how a modifier card changes a score.
type ModifierKind int

const (
	PlusBonus ModifierKind = iota
	Multiply
)

// String returns the wire name of the modifier
func (m ModifierKind) String() string {
	switch m {
	case PlusBonus:
		return "plus"
	case Multiply:
		return "multiply"
	default:
		return "unknown"
	}
}

// ParseModifierKind converts a wire name back into a ModifierKind
func ParseModifierKind(s string) (ModifierKind, error) {
	switch s {
	case "plus":
		return PlusBonus, nil
	case "multiply":
		return Multiply, nil
	}
	return 0, fmt.Errorf("unknown modifier %q", s)
}

// Card is implemented only by Number, Action and Modifier.
type Card interface {
	ID() string
	Kind() Kind
	String() string
	sealed()
}

// Number is a scoring card with a face value between 0 and 12.
type Number struct {
	id    string
	Value int
}

// NewNumber creates a number card
func NewNumber(id string, value int) Number {
	return Number{id: id, Value: value}
}

func (n Number) ID() string     { return n.id }
func (n Number) Kind() Kind     { return KindNumber }
func (n Number) String() string { return strconv.Itoa(n.Value) }
func (Number) sealed()          {}

// Action is a card whose effect is aimed at a player when resolved.
type Action struct {
	id     string
	Action ActionKind
}

// NewAction creates an action card
func NewAction(id string, kind ActionKind) Action {
	return Action{id: id, Action: kind}
}

func (a Action) ID() string     { return a.id }
func (a Action) Kind() Kind     { return KindAction }
func (a Action) String() string { return a.Action.Title() }
func (Action) sealed()          {}

// Modifier changes a score without ever causing a bust.
type Modifier struct {
	id       string
	Modifier ModifierKind
	Amount   int
}

// NewPlus creates a +n modifier card
func NewPlus(id string, n int) Modifier {
	return Modifier{id: id, Modifier: PlusBonus, Amount: n}
}

// NewMultiply creates the x2 modifier card
func NewMultiply(id string) Modifier {
	return Modifier{id: id, Modifier: Multiply, Amount: 2}
}

func (m Modifier) ID() string { return m.id }
func (m Modifier) Kind() Kind { return KindModifier }
func (Modifier) sealed()      {}

func (m Modifier) String() string {
	if m.Modifier == Multiply {
		return "x" + strconv.Itoa(m.Amount)
	}
	return "+" + strconv.Itoa(m.Amount)
}

// Validate reports whether the card carries a legal payload
func Validate(c Card) error {
	switch c := c.(type) {
	case Number:
		if c.Value < 0 || c.Value > MaxNumber {
			return fmt.Errorf("number card value %d out of range 0..%d", c.Value, MaxNumber)
		}
	case Action:
		if c.Action < Freeze || c.Action > SecondChance {
			return fmt.Errorf("unknown action %d", c.Action)
		}
	case Modifier:
		switch c.Modifier {
		case PlusBonus:
			if c.Amount <= 0 {
				return fmt.Errorf("bonus modifier must be positive, got %d", c.Amount)
			}
		case Multiply:
			if c.Amount != 2 {
				return fmt.Errorf("multiply modifier must be x2, got x%d", c.Amount)
			}
		default:
			return fmt.Errorf("unknown modifier %d", c.Modifier)
		}
	case nil:
		return fmt.Errorf("nil card")
	}
	return nil
}

// Same reports whether a and b are the same physical card.
// Cards without an identity are never the same as anything.
func Same(a, b Card) bool {
	if a == nil || b == nil || a.ID() == "" {
		return false
	}
	return a.ID() == b.ID()
}

// SameFace reports whether a and b are the same variant with the same
// value or kind, ignoring identity.
func SameFace(a, b Card) bool {
	switch a := a.(type) {
	case Number:
		bn, ok := b.(Number)
		return ok && a.Value == bn.Value
	case Action:
		ba, ok := b.(Action)
		return ok && a.Action == ba.Action
	case Modifier:
		bm, ok := b.(Modifier)
		return ok && a.Modifier == bm.Modifier && a.Amount == bm.Amount
	}
	return false
}

// IsAction reports whether c is an action card, optionally of one of the given kinds
func IsAction(c Card, kinds ...ActionKind) bool {
	a, ok := c.(Action)
	if !ok {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if a.Action == k {
			return true
		}
	}
	return false
}

// IndexOf returns the position of c in cards. Identity is tried first and
// face value second; -1 means not found.
func IndexOf(cards []Card, c Card) int {
	for i, other := range cards {
		if Same(other, c) {
			return i
		}
	}
	for i, other := range cards {
		if SameFace(other, c) {
			return i
		}
	}
	return -1
}

// Remove returns cards without the element at index i. The input slice is
// not modified.
func Remove(cards []Card, i int) []Card {
	out := make([]Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}

// Numbers returns the number cards in cards, in order
func Numbers(cards []Card) []Number {
	var out []Number
	for _, c := range cards {
		if n, ok := c.(Number); ok {
			out = append(out, n)
		}
	}
	return out
}
