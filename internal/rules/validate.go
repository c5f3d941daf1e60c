package rules

import (
	"errors"
	"fmt"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/model"
)

// Reason tags a denied action. The zero value means the action is allowed.
type Reason string

const (
	Allowed Reason = ""

	ReasonAlreadyStayed     Reason = "already-stayed"
	ReasonBusted            Reason = "busted"
	ReasonFlipThreeActive   Reason = "flip-three-active"
	ReasonDeckEmpty         Reason = "deck-empty"
	ReasonNoSecondChance    Reason = "no-second-chance"
	ReasonCardNotInHand     Reason = "card-not-in-hand"
	ReasonNoDuplicate       Reason = "no-duplicate"
	ReasonNotEnoughPlayers  Reason = "not-enough-players"
	ReasonDuplicateName     Reason = "duplicate-name"
	ReasonGameComplete      Reason = "game-complete"
	ReasonRoundInProgress   Reason = "round-in-progress"
	ReasonNotActionCard     Reason = "not-action-card"
	ReasonTargetStayed      Reason = "target-stayed"
	ReasonTargetBusted      Reason = "target-busted"
	ReasonSecondChanceHeld  Reason = "second-chance-held"
	ReasonTargetHoldsSecond Reason = "target-holds-second-chance"
	ReasonInvalidCard       Reason = "invalid-card"
)

var reasonMessages = map[Reason]string{
	ReasonAlreadyStayed:     "player has already stayed",
	ReasonBusted:            "player has busted",
	ReasonFlipThreeActive:   "player must complete Flip Three",
	ReasonDeckEmpty:         "deck is empty",
	ReasonNoSecondChance:    "player has no Second Chance card",
	ReasonCardNotInHand:     "card not in player's hand",
	ReasonNoDuplicate:       "card is not a duplicate",
	ReasonNotEnoughPlayers:  "at least 2 players required",
	ReasonDuplicateName:     "player names must be unique",
	ReasonGameComplete:      "game is already complete",
	ReasonRoundInProgress:   "a round is already in progress",
	ReasonNotActionCard:     "card is not an action card",
	ReasonTargetStayed:      "target player has already stayed",
	ReasonTargetBusted:      "target player has busted",
	ReasonSecondChanceHeld:  "player already holds a Second Chance and must give this one to another player",
	ReasonTargetHoldsSecond: "target player already holds a Second Chance",
	ReasonInvalidCard:       "invalid card",
}

// Message returns a human readable description of the reason
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// DenialError is returned by mutating operations when a rule forbids the
// action. It is an expected outcome, not a fault.
type DenialError struct {
	Reason Reason
	Detail string
}

func (e *DenialError) Error() string {
	if e.Detail == "" {
		return e.Reason.Message()
	}
	return fmt.Sprintf("%s: %s", e.Reason.Message(), e.Detail)
}

// Deny builds a DenialError
func Deny(r Reason, format string, args ...any) *DenialError {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &DenialError{Reason: r, Detail: detail}
}

// IsDenied reports whether err is, or wraps, a DenialError and returns its reason
func IsDenied(err error) (Reason, bool) {
	var de *DenialError
	if errors.As(err, &de) {
		return de.Reason, true
	}
	return Allowed, false
}

// Verdict is the result of a validator check
type Verdict struct {
	Reason Reason
	Detail string
}

// Allow is the permitted verdict
var Allow = Verdict{}

// Allowed reports whether the action is permitted
func (v Verdict) Allowed() bool {
	return v.Reason == Allowed
}

// Err returns nil when allowed, otherwise a *DenialError
func (v Verdict) Err() error {
	if v.Allowed() {
		return nil
	}
	return &DenialError{Reason: v.Reason, Detail: v.Detail}
}

func (v Verdict) String() string {
	if v.Allowed() {
		return "allowed"
	}
	return "denied: " + v.Reason.Message()
}

func denied(r Reason) Verdict {
	return Verdict{Reason: r}
}

// CanStay checks whether p may bank their score. A full hand never blocks
// a stay.
func CanStay(p *model.PlayerState) Verdict {
	switch {
	case p.Stayed:
		return denied(ReasonAlreadyStayed)
	case p.Busted:
		return denied(ReasonBusted)
	case p.FlipThreeActive && p.FlipThreeCount > 0:
		return denied(ReasonFlipThreeActive)
	}
	return Allow
}

// CanHit checks whether p may receive another card from a deck holding
// deckRemaining cards.
func CanHit(p *model.PlayerState, deckRemaining int) Verdict {
	switch {
	case p.Stayed:
		return denied(ReasonAlreadyStayed)
	case p.Busted:
		return denied(ReasonBusted)
	case deckRemaining <= 0:
		return denied(ReasonDeckEmpty)
	}
	return Allow
}

// CanUseSecondChance checks whether p may discard c to cancel a bust
func CanUseSecondChance(p *model.PlayerState, c card.Card) Verdict {
	if !p.HasSecondChance {
		return denied(ReasonNoSecondChance)
	}
	if card.IndexOf(p.Hand, c) < 0 {
		return Verdict{Reason: ReasonCardNotInHand, Detail: c.String()}
	}
	n, ok := c.(card.Number)
	if !ok || CountValue(p.Hand, n.Value) < 2 {
		return Verdict{Reason: ReasonNoDuplicate, Detail: c.String()}
	}
	return Allow
}

// CanTarget checks whether an action card of kind may be aimed at target
func CanTarget(kind card.ActionKind, target *model.PlayerState) Verdict {
	if target.Busted {
		return denied(ReasonTargetBusted)
	}
	if target.Stayed && kind != card.SecondChance {
		return denied(ReasonTargetStayed)
	}
	return Allow
}

// ValidatePlayers checks the names for a new game
func ValidatePlayers(names []string) Verdict {
	if len(names) < 2 {
		return Verdict{Reason: ReasonNotEnoughPlayers, Detail: fmt.Sprintf("got %d", len(names))}
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return Verdict{Reason: ReasonDuplicateName, Detail: n}
		}
		seen[n] = true
	}
	return Allow
}

// RoundWinners returns the ids of non-busted players with the highest round
// score, in seat order. Ties produce several winners; a round where every
// player busted has none.
func RoundWinners(r *model.RoundState) []string {
	best := -1
	var winners []string
	for _, p := range r.Each() {
		if p.Busted {
			continue
		}
		switch {
		case p.RoundScore > best:
			best = p.RoundScore
			winners = []string{p.ID}
		case p.RoundScore == best:
			winners = append(winners, p.ID)
		}
	}
	return winners
}

// GameWinner returns the game winner once any total reaches WinningScore.
// The highest total wins; on an exact tie the first player in seat order wins.
func GameWinner(players []model.PlayerInfo, totals map[string]int) (string, bool) {
	winner := ""
	best := -1
	for _, p := range players {
		t := totals[p.ID]
		if t >= WinningScore && t > best {
			winner, best = p.ID, t
		}
	}
	return winner, winner != ""
}
