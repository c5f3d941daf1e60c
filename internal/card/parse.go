package card

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads the short notation used by the CLI and tests:
//
//	"0".."12"   number card
//	"+2".."+10" bonus modifier
//	"x2"        multiplier
//	"F"         Freeze
//	"F3"        Flip Three
//	"SC"        Second Chance
//
// Parsed cards carry no identity; engines match them by face.
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "F", "FREEZE":
		return NewAction("", Freeze), nil
	case "F3", "FLIP3", "FLIPTHREE":
		return NewAction("", FlipThree), nil
	case "SC", "SECONDCHANCE":
		return NewAction("", SecondChance), nil
	case "X2":
		return NewMultiply(""), nil
	}

	if rest, ok := strings.CutPrefix(s, "+"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid modifier %q", s)
		}
		c := NewPlus("", n)
		return c, Validate(c)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid card %q", s)
	}
	c := NewNumber("", n)
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseHand parses each element of faces
func ParseHand(faces []string) ([]Card, error) {
	out := make([]Card, 0, len(faces))
	for _, f := range faces {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MustParseHand is ParseHand for tests and fixtures; it panics on bad input.
func MustParseHand(faces ...string) []Card {
	cards, err := ParseHand(faces)
	if err != nil {
		panic(err)
	}
	return cards
}
