// Package store saves games to disk as JSON and loads them back.
package store

import (
	"fmt"
	"time"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/model"
)

// SchemaVersion is written into every snapshot
const SchemaVersion = 1

// GameSnapshot is the on-disk form of a model.GameState
type GameSnapshot struct {
	Version      int               `json:"version"`
	ID           string            `json:"game_id"`
	CreatedAt    time.Time         `json:"created_at"`
	Players      []PlayerSnapshot  `json:"players"`
	Deck         []card.Wire       `json:"deck"`
	Discard      []card.Wire       `json:"discard_pile"`
	CurrentRound *RoundSnapshot    `json:"current_round,omitempty"`
	History      []RoundSnapshot   `json:"round_history"`
	Complete     bool              `json:"is_complete"`
	WinnerID     string            `json:"winner_id,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// PlayerSnapshot is a seat
type PlayerSnapshot struct {
	ID   string `json:"player_id"`
	Name string `json:"name"`
}

// RoundSnapshot is the on-disk form of a model.RoundState. Players are
// stored in seat order.
type RoundSnapshot struct {
	Number         int                   `json:"round_number"`
	DealerID       string                `json:"dealer_id"`
	Players        []PlayerStateSnapshot `json:"player_states"`
	CardsRemaining int                   `json:"cards_remaining_in_deck"`
	Complete       bool                  `json:"is_complete"`
	EndReason      model.EndReason       `json:"end_reason,omitempty"`
	WinnerIDs      []string              `json:"winner_ids,omitempty"`
}

// PlayerStateSnapshot is the on-disk form of a model.PlayerState
type PlayerStateSnapshot struct {
	ID              string      `json:"player_id"`
	Name            string      `json:"name"`
	Hand            []card.Wire `json:"hand"`
	RoundScore      int         `json:"round_score"`
	TotalScore      int         `json:"total_score"`
	Stayed          bool        `json:"has_stayed"`
	Busted          bool        `json:"is_busted"`
	HasSecondChance bool        `json:"has_second_chance"`
	FlipThreeActive bool        `json:"flip_three_active"`
	FlipThreeCount  int         `json:"flip_three_count"`
}

// Snapshot converts a game to its on-disk form
func Snapshot(g *model.GameState) GameSnapshot {
	s := GameSnapshot{
		Version:   SchemaVersion,
		ID:        g.ID,
		CreatedAt: g.CreatedAt,
		Deck:      card.ToWires(g.Deck),
		Discard:   card.ToWires(g.Discard),
		History:   make([]RoundSnapshot, 0, len(g.History)),
		Complete:  g.Complete,
		WinnerID:  g.WinnerID,
		Metadata:  g.Metadata,
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, PlayerSnapshot{ID: p.ID, Name: p.Name})
	}
	if g.CurrentRound != nil {
		r := snapshotRound(g.CurrentRound)
		s.CurrentRound = &r
	}
	for _, r := range g.History {
		s.History = append(s.History, snapshotRound(r))
	}
	return s
}

func snapshotRound(r *model.RoundState) RoundSnapshot {
	s := RoundSnapshot{
		Number:         r.Number,
		DealerID:       r.DealerID,
		CardsRemaining: r.CardsRemaining,
		Complete:       r.Complete,
		EndReason:      r.EndReason,
		WinnerIDs:      r.WinnerIDs,
	}
	for _, p := range r.Each() {
		s.Players = append(s.Players, PlayerStateSnapshot{
			ID:              p.ID,
			Name:            p.Name,
			Hand:            card.ToWires(p.Hand),
			RoundScore:      p.RoundScore,
			TotalScore:      p.TotalScore,
			Stayed:          p.Stayed,
			Busted:          p.Busted,
			HasSecondChance: p.HasSecondChance,
			FlipThreeActive: p.FlipThreeActive,
			FlipThreeCount:  p.FlipThreeCount,
		})
	}
	return s
}

// Restore rebuilds a game from its on-disk form
func Restore(s GameSnapshot) (*model.GameState, error) {
	if s.Version > SchemaVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", s.Version, SchemaVersion)
	}

	deck, err := card.FromWires(s.Deck)
	if err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}
	discard, err := card.FromWires(s.Discard)
	if err != nil {
		return nil, fmt.Errorf("discard pile: %w", err)
	}

	g := &model.GameState{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Deck:      deck,
		Discard:   discard,
		Complete:  s.Complete,
		WinnerID:  s.WinnerID,
		Metadata:  s.Metadata,
	}
	for _, p := range s.Players {
		g.Players = append(g.Players, model.PlayerInfo{ID: p.ID, Name: p.Name})
	}

	if s.CurrentRound != nil {
		r, err := restoreRound(*s.CurrentRound)
		if err != nil {
			return nil, err
		}
		g.CurrentRound = r
	}
	for _, rs := range s.History {
		r, err := restoreRound(rs)
		if err != nil {
			return nil, err
		}
		g.History = append(g.History, r)
	}
	return g, nil
}

func restoreRound(s RoundSnapshot) (*model.RoundState, error) {
	players := make([]*model.PlayerState, 0, len(s.Players))
	for _, ps := range s.Players {
		hand, err := card.FromWires(ps.Hand)
		if err != nil {
			return nil, fmt.Errorf("round %d, player %s: %w", s.Number, ps.ID, err)
		}
		players = append(players, &model.PlayerState{
			ID:              ps.ID,
			Name:            ps.Name,
			Hand:            hand,
			RoundScore:      ps.RoundScore,
			TotalScore:      ps.TotalScore,
			Stayed:          ps.Stayed,
			Busted:          ps.Busted,
			HasSecondChance: ps.HasSecondChance,
			FlipThreeActive: ps.FlipThreeActive,
			FlipThreeCount:  ps.FlipThreeCount,
		})
	}

	r := model.NewRoundState(s.Number, s.DealerID, players, s.CardsRemaining)
	r.Complete = s.Complete
	r.EndReason = s.EndReason
	r.WinnerIDs = s.WinnerIDs
	return r, nil
}
