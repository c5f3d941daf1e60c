package main

import (
	"os"

	"github.com/lox/flip7/internal/deck"
	"github.com/lox/flip7/internal/gameid"
)

// DeckCmd prints the standard deck composition
type DeckCmd struct{}

func (c *DeckCmd) Run() error {
	printDeck(os.Stdout, deck.Composition(deck.Standard(gameid.NewGenerator())))
	return nil
}
