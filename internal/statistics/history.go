package statistics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/rules"
)

// ErrIncomplete is returned for statistics that need a finished game
var ErrIncomplete = errors.New("game is not complete")

// GameStats describes a single finished game
type GameStats struct {
	GameID            string
	Rounds            int
	CardsDealt        int
	Flip7s            int
	Busts             int
	WinnerName        string
	WinnerScore       int
	AverageRoundScore float64
	CardFrequency     map[string]int
}

// PlayerStats is one player name across many games
type PlayerStats struct {
	Name         string
	Games        int
	Wins         int
	Rounds       int
	Flip7s       int
	Busts        int
	HighestRound int
	HighestGame  int
	RoundScores  Sample
	GameScores   Sample
}

// WinRate returns wins per game
func (p *PlayerStats) WinRate() float64 {
	if p.Games == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Games)
}

// BustRate returns busts per round
func (p *PlayerStats) BustRate() float64 {
	if p.Rounds == 0 {
		return 0
	}
	return float64(p.Busts) / float64(p.Rounds)
}

// Flip7Rate returns Flip 7 hands per round
func (p *PlayerStats) Flip7Rate() float64 {
	if p.Rounds == 0 {
		return 0
	}
	return float64(p.Flip7s) / float64(p.Rounds)
}

// HistoricalStats aggregates every finished game
type HistoricalStats struct {
	Games            int
	Rounds           int
	PlayerRounds     int
	CardsDealt       int
	Flip7s           int
	Busts            int
	HighestScore     int
	MostCommonWinner string
	CardFrequency    map[string]int
}

// AverageRounds returns rounds per game
func (h HistoricalStats) AverageRounds() float64 {
	if h.Games == 0 {
		return 0
	}
	return float64(h.Rounds) / float64(h.Games)
}

// BustRate returns busts per player round
func (h HistoricalStats) BustRate() float64 {
	if h.PlayerRounds == 0 {
		return 0
	}
	return float64(h.Busts) / float64(h.PlayerRounds)
}

// Flip7Rate returns Flip 7 hands per player round
func (h HistoricalStats) Flip7Rate() float64 {
	if h.PlayerRounds == 0 {
		return 0
	}
	return float64(h.Flip7s) / float64(h.PlayerRounds)
}

// frequencyKey groups cards the way reports show them
func frequencyKey(c card.Card) string {
	switch c := c.(type) {
	case card.Number:
		return fmt.Sprintf("Number %d", c.Value)
	case card.Action:
		return "Action: " + c.Action.String()
	case card.Modifier:
		return "Modifier: " + c.String()
	}
	return "unknown"
}

func flip7(p *model.PlayerState) bool {
	return !p.Busted && rules.Score(p.Hand).HasFlip7()
}

// Game computes the statistics of a finished game
func Game(g *model.GameState) (GameStats, error) {
	if !g.Complete {
		return GameStats{}, fmt.Errorf("%s: %w", g.ID, ErrIncomplete)
	}

	st := GameStats{
		GameID:        g.ID,
		Rounds:        len(g.History),
		CardFrequency: make(map[string]int),
	}
	var scores Sample
	for _, r := range g.History {
		for _, p := range r.Each() {
			scores.Add(float64(p.RoundScore))
			st.CardsDealt += len(p.Hand)
			for _, c := range p.Hand {
				st.CardFrequency[frequencyKey(c)]++
			}
			if flip7(p) {
				st.Flip7s++
			}
			if p.Busted {
				st.Busts++
			}
		}
	}
	st.AverageRoundScore = scores.Mean()

	if g.WinnerID != "" {
		st.WinnerName = g.PlayerName(g.WinnerID)
		st.WinnerScore = g.Totals()[g.WinnerID]
	}
	return st, nil
}

// Player computes the statistics of the player called name over the
// finished games in games
func Player(name string, games []*model.GameState) PlayerStats {
	st := PlayerStats{Name: name}
	for _, g := range games {
		if !g.Complete {
			continue
		}
		var seat model.PlayerInfo
		found := false
		for _, p := range g.Players {
			if p.Name == name {
				seat, found = p, true
				break
			}
		}
		if !found {
			continue
		}

		st.Games++
		if g.WinnerID == seat.ID {
			st.Wins++
		}
		for _, r := range g.History {
			p := r.Player(seat.ID)
			if p == nil {
				continue
			}
			st.Rounds++
			st.RoundScores.Add(float64(p.RoundScore))
			st.HighestRound = max(st.HighestRound, p.RoundScore)
			if flip7(p) {
				st.Flip7s++
			}
			if p.Busted {
				st.Busts++
			}
		}
		final := g.Totals()[seat.ID]
		st.GameScores.Add(float64(final))
		st.HighestGame = max(st.HighestGame, final)
	}
	return st
}

// Leaderboard ranks every player name seen in games by win rate, then
// wins, then name
func Leaderboard(games []*model.GameState) []PlayerStats {
	names := make(map[string]bool)
	for _, g := range games {
		for _, p := range g.Players {
			names[p.Name] = true
		}
	}

	board := make([]PlayerStats, 0, len(names))
	for name := range names {
		board = append(board, Player(name, games))
	}
	sort.Slice(board, func(i, j int) bool {
		a, b := board[i], board[j]
		if a.WinRate() != b.WinRate() {
			return a.WinRate() > b.WinRate()
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Name < b.Name
	})
	return board
}

// Historical aggregates the finished games in games
func Historical(games []*model.GameState) HistoricalStats {
	st := HistoricalStats{CardFrequency: make(map[string]int)}
	winners := make(map[string]int)

	for _, g := range games {
		if !g.Complete {
			continue
		}
		st.Games++
		st.Rounds += len(g.History)
		if g.WinnerID != "" {
			winners[g.PlayerName(g.WinnerID)]++
		}

		for _, r := range g.History {
			for _, p := range r.Each() {
				st.PlayerRounds++
				st.CardsDealt += len(p.Hand)
				st.HighestScore = max(st.HighestScore, p.TotalScore)
				for _, c := range p.Hand {
					st.CardFrequency[frequencyKey(c)]++
				}
				if flip7(p) {
					st.Flip7s++
				}
				if p.Busted {
					st.Busts++
				}
			}
		}
	}

	best := 0
	for name, n := range winners {
		if n > best || (n == best && name < st.MostCommonWinner) {
			st.MostCommonWinner, best = name, n
		}
	}
	return st
}
