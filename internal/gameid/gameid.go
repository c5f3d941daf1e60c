// Package gameid generates TypeID-style identifiers ("card_01j9...") for
// games, players, cards and events.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Prefixes for the entities the engine names.
const (
	Game   = "game"
	Player = "player"
	Card   = "card"
	Event  = "evt"
)

// Generator hands out ids. The zero value is not usable; use NewGenerator
// or Seeded. A Generator is not safe for concurrent use.
type Generator struct {
	entropy io.Reader
}

// NewGenerator returns a generator backed by crypto randomness, producing
// time-sortable UUIDv7 ids.
func NewGenerator() *Generator {
	return &Generator{}
}

// Seeded returns a generator that draws every id from entropy, so the same
// reader contents always yield the same ids.
func Seeded(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// New returns a fresh id with the given prefix
func (g *Generator) New(prefix string) string {
	var (
		u   uuid.UUID
		err error
	)
	if g.entropy != nil {
		u, err = uuid.NewRandomFromReader(g.entropy)
	} else {
		u, err = uuid.NewV7()
	}
	if err != nil {
		panic("gameid: failed to generate id: " + err.Error())
	}
	return prefix + "_" + encodeBase32(u)
}

// Generate returns a new game id from crypto randomness
func Generate() string {
	return NewGenerator().New(Game)
}

// encodeBase32 encodes a 128-bit UUID as a 26-character base32 string
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)

	// 130 bits of output for 128 bits of input; the two leading pad bits are
	// zero, which is why the first character never exceeds '7'.
	for i := 0; i < 26; i++ {
		bitOffset := i*5 - 2
		var value uint16
		for b := 0; b < 5; b++ {
			bit := bitOffset + b
			value <<= 1
			if bit < 0 {
				continue
			}
			if data[bit/8]&(0x80>>(bit%8)) != 0 {
				value |= 1
			}
		}
		result[i] = alphabet[value]
	}

	return string(result)
}

// Split separates an id into its prefix and suffix
func Split(id string) (prefix, suffix string, err error) {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 {
		return "", "", fmt.Errorf("id %q has no prefix", id)
	}
	return id[:i], id[i+1:], nil
}

// Validate checks that id is a prefixed, 26-character base32 id
func Validate(id string) error {
	_, suffix, err := Split(id)
	if err != nil {
		return err
	}

	if len(suffix) != 26 {
		return fmt.Errorf("id suffix must be exactly 26 characters, got %d", len(suffix))
	}

	if suffix[0] > '7' {
		return fmt.Errorf("id suffix first character must be 0-7, got %c", suffix[0])
	}

	for i, char := range suffix {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
