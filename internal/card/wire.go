package card

import "fmt"

// Wire is the flat, serialisable form of a Card
type Wire struct {
	ID       string `json:"card_id"`
	Type     string `json:"card_type"`
	Value    int    `json:"value,omitempty"`
	Action   string `json:"action_type,omitempty"`
	Modifier string `json:"modifier_type,omitempty"`
}

// ToWire flattens a card
func ToWire(c Card) Wire {
	w := Wire{ID: c.ID(), Type: c.Kind().String()}
	switch c := c.(type) {
	case Number:
		w.Value = c.Value
	case Action:
		w.Action = c.Action.String()
	case Modifier:
		w.Modifier = c.Modifier.String()
		w.Value = c.Amount
	}
	return w
}

// FromWire rebuilds a card and validates its payload
func FromWire(w Wire) (Card, error) {
	kind, err := ParseKind(w.Type)
	if err != nil {
		return nil, err
	}

	var c Card
	switch kind {
	case KindNumber:
		c = NewNumber(w.ID, w.Value)
	case KindAction:
		a, err := ParseActionKind(w.Action)
		if err != nil {
			return nil, err
		}
		c = NewAction(w.ID, a)
	case KindModifier:
		m, err := ParseModifierKind(w.Modifier)
		if err != nil {
			return nil, err
		}
		c = Modifier{id: w.ID, Modifier: m, Amount: w.Value}
	}

	if err := Validate(c); err != nil {
		return nil, fmt.Errorf("card %s: %w", w.ID, err)
	}
	return c, nil
}

// ToWires flattens a slice of cards
func ToWires(cards []Card) []Wire {
	out := make([]Wire, len(cards))
	for i, c := range cards {
		out[i] = ToWire(c)
	}
	return out
}

// FromWires rebuilds a slice of cards, failing on the first invalid one.
// An empty input yields a nil slice.
func FromWires(ws []Wire) ([]Card, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	out := make([]Card, 0, len(ws))
	for _, w := range ws {
		c, err := FromWire(w)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
