package statistics

import (
	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/events"
)

// EventReport summarises an event log
type EventReport struct {
	Counts        map[events.EventType]int
	Actions       map[card.ActionKind]int // resolved actions, discards excluded
	Discarded     int
	Reshuffles    int
	SecondChances int
	Flip7s        int
	Rounds        int
	BustsByPlayer map[string]int // keyed by player name
}

// Analyze walks evs once and counts what happened
func Analyze(evs []events.Event) EventReport {
	rep := EventReport{
		Counts:        make(map[events.EventType]int),
		Actions:       make(map[card.ActionKind]int),
		BustsByPlayer: make(map[string]int),
	}

	for _, e := range evs {
		rep.Counts[e.EventType()]++

		switch e := e.(type) {
		case *events.ActionApplied:
			if e.Effect == "discarded" {
				rep.Discarded++
			} else {
				rep.Actions[e.Action]++
			}
		case *events.DeckReshuffled:
			rep.Reshuffles++
		case *events.SecondChanceUsed:
			rep.SecondChances++
		case *events.PlayerStayed:
			if e.HasFlip7 {
				rep.Flip7s++
			}
		case *events.PlayerBusted:
			rep.BustsByPlayer[e.PlayerName]++
		case *events.RoundEnded:
			rep.Rounds++
		}
	}
	return rep
}
