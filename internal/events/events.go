// Package events defines the facts recorded while a game is played and the
// append-only log that holds them.
package events

import (
	"time"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/model"
)

// EventType identifies an event variant
type EventType string

const (
	EventTypeGameStarted      EventType = "game_started"
	EventTypeRoundStarted     EventType = "round_started"
	EventTypeCardDealt        EventType = "card_dealt"
	EventTypePlayerHit        EventType = "player_hit"
	EventTypePlayerStayed     EventType = "player_stayed"
	EventTypePlayerBusted     EventType = "player_busted"
	EventTypeActionApplied    EventType = "action_applied"
	EventTypeSecondChanceUsed EventType = "second_chance_used"
	EventTypeDeckReshuffled   EventType = "deck_reshuffled"
	EventTypeRoundEnded       EventType = "round_ended"
	EventTypeGameEnded        EventType = "game_ended"
)

// AllTypes lists every event type in lifecycle order
var AllTypes = []EventType{
	EventTypeGameStarted,
	EventTypeRoundStarted,
	EventTypeCardDealt,
	EventTypePlayerHit,
	EventTypePlayerStayed,
	EventTypePlayerBusted,
	EventTypeActionApplied,
	EventTypeSecondChanceUsed,
	EventTypeDeckReshuffled,
	EventTypeRoundEnded,
	EventTypeGameEnded,
}

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is implemented only by the types in this package.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	EventID() string
	GameID() string
	setHeader(Header)
}

// Header is stamped onto every event when it is appended to a Log
type Header struct {
	ID   string    `json:"-"`
	Game string    `json:"-"`
	Time time.Time `json:"-"`
}

func (h *Header) EventID() string      { return h.ID }
func (h *Header) GameID() string       { return h.Game }
func (h *Header) Timestamp() time.Time { return h.Time }
func (h *Header) setHeader(x Header)   { *h = x }

// GameStarted is recorded once when the players sit down
type GameStarted struct {
	Header
	PlayerIDs   []string `json:"player_ids"`
	PlayerNames []string `json:"player_names"`
}

// RoundStarted is recorded when a new round is dealt
type RoundStarted struct {
	Header
	Round      int    `json:"round"`
	DealerID   string `json:"dealer_id"`
	DealerName string `json:"dealer_name"`
}

// CardDealt is recorded whenever a card lands in a hand
type CardDealt struct {
	Header
	Round      int       `json:"round"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Card       card.Card `json:"-"`
	HandSize   int       `json:"hand_size"`
}

// PlayerHit records that a player asked for a card
type PlayerHit struct {
	Header
	Round      int    `json:"round"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// PlayerStayed records a player banking their score, by choice or by Freeze
type PlayerStayed struct {
	Header
	Round      int    `json:"round"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	RoundScore int    `json:"round_score"`
	TotalScore int    `json:"total_score"`
	HasFlip7   bool   `json:"has_flip_7"`
}

// PlayerBusted records a duplicate number ending a player's round
type PlayerBusted struct {
	Header
	Round      int       `json:"round"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Card       card.Card `json:"-"`
}

// ActionApplied records an action card being resolved. PlayerID is the
// player who drew the card; TargetID is who it affected.
type ActionApplied struct {
	Header
	Round      int             `json:"round"`
	Action     card.ActionKind `json:"action"`
	PlayerID   string          `json:"player_id"`
	PlayerName string          `json:"player_name"`
	TargetID   string          `json:"target_id"`
	TargetName string          `json:"target_name"`
	Effect     string          `json:"effect"`
}

// SecondChanceUsed records a duplicate being discarded to avoid a bust
type SecondChanceUsed struct {
	Header
	Round          int    `json:"round"`
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	DiscardedValue int    `json:"discarded_value"`
}

// DeckReshuffled records the discard pile becoming the deck
type DeckReshuffled struct {
	Header
	Round           int `json:"round"`
	CardsReshuffled int `json:"cards_reshuffled"`
}

// RoundEnded records the outcome of a round
type RoundEnded struct {
	Header
	Round       int             `json:"round"`
	Reason      model.EndReason `json:"reason"`
	RoundScores map[string]int  `json:"round_scores"`
	TotalScores map[string]int  `json:"total_scores"`
	WinnerIDs   []string        `json:"winner_ids"`
}

// GameEnded is recorded once when a player crosses the winning score
type GameEnded struct {
	Header
	WinnerID    string         `json:"winner_id"`
	WinnerName  string         `json:"winner_name"`
	FinalScores map[string]int `json:"final_scores"`
	TotalRounds int            `json:"total_rounds"`
}

func (*GameStarted) EventType() EventType      { return EventTypeGameStarted }
func (*RoundStarted) EventType() EventType     { return EventTypeRoundStarted }
func (*CardDealt) EventType() EventType        { return EventTypeCardDealt }
func (*PlayerHit) EventType() EventType        { return EventTypePlayerHit }
func (*PlayerStayed) EventType() EventType     { return EventTypePlayerStayed }
func (*PlayerBusted) EventType() EventType     { return EventTypePlayerBusted }
func (*ActionApplied) EventType() EventType    { return EventTypeActionApplied }
func (*SecondChanceUsed) EventType() EventType { return EventTypeSecondChanceUsed }
func (*DeckReshuffled) EventType() EventType   { return EventTypeDeckReshuffled }
func (*RoundEnded) EventType() EventType       { return EventTypeRoundEnded }
func (*GameEnded) EventType() EventType        { return EventTypeGameEnded }

// New returns an empty event of type t, for decoding
func New(t EventType) (Event, bool) {
	switch t {
	case EventTypeGameStarted:
		return &GameStarted{}, true
	case EventTypeRoundStarted:
		return &RoundStarted{}, true
	case EventTypeCardDealt:
		return &CardDealt{}, true
	case EventTypePlayerHit:
		return &PlayerHit{}, true
	case EventTypePlayerStayed:
		return &PlayerStayed{}, true
	case EventTypePlayerBusted:
		return &PlayerBusted{}, true
	case EventTypeActionApplied:
		return &ActionApplied{}, true
	case EventTypeSecondChanceUsed:
		return &SecondChanceUsed{}, true
	case EventTypeDeckReshuffled:
		return &DeckReshuffled{}, true
	case EventTypeRoundEnded:
		return &RoundEnded{}, true
	case EventTypeGameEnded:
		return &GameEnded{}, true
	}
	return nil, false
}

// Restamp sets the header of e. It exists for decoders restoring a saved
// log; live events are stamped by Log.Append.
func Restamp(e Event, h Header) {
	e.setHeader(h)
}

// RoundOf returns the round an event belongs to. Game level events report
// false.
func RoundOf(e Event) (int, bool) {
	switch e := e.(type) {
	case *RoundStarted:
		return e.Round, true
	case *CardDealt:
		return e.Round, true
	case *PlayerHit:
		return e.Round, true
	case *PlayerStayed:
		return e.Round, true
	case *PlayerBusted:
		return e.Round, true
	case *ActionApplied:
		return e.Round, true
	case *SecondChanceUsed:
		return e.Round, true
	case *DeckReshuffled:
		return e.Round, true
	case *RoundEnded:
		return e.Round, true
	}
	return 0, false
}

// Involves reports whether playerID is a subject of e
func Involves(e Event, playerID string) bool {
	switch e := e.(type) {
	case *GameStarted:
		for _, id := range e.PlayerIDs {
			if id == playerID {
				return true
			}
		}
	case *RoundStarted:
		return e.DealerID == playerID
	case *CardDealt:
		return e.PlayerID == playerID
	case *PlayerHit:
		return e.PlayerID == playerID
	case *PlayerStayed:
		return e.PlayerID == playerID
	case *PlayerBusted:
		return e.PlayerID == playerID
	case *ActionApplied:
		return e.PlayerID == playerID || e.TargetID == playerID
	case *SecondChanceUsed:
		return e.PlayerID == playerID
	case *RoundEnded:
		_, ok := e.TotalScores[playerID]
		return ok
	case *GameEnded:
		_, ok := e.FinalScores[playerID]
		return ok
	}
	return false
}
