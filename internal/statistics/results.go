package statistics

import (
	"strconv"

	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/rules"
)

// Metadata keys written by the simulator
const (
	MetaSeed           = "seed"
	MetaStrategyPrefix = "strategy/"
)

// PlayerResult is one seat's record over a game
type PlayerResult struct {
	PlayerID          string  `json:"player_id"`
	Name              string  `json:"player_name"`
	Strategy          string  `json:"strategy"`
	Won               bool    `json:"won_game"`
	FinalScore        int     `json:"final_score"`
	Rounds            int     `json:"rounds_played"`
	RoundsWon         int     `json:"rounds_won"`
	Flip7s            int     `json:"flip_7_count"`
	Busts             int     `json:"bust_count"`
	CardsDrawn        int     `json:"cards_drawn"`
	AverageRoundScore float64 `json:"avg_round_score"`
}

// GameResult summarises a finished game. Players are in seat order.
type GameResult struct {
	GameID         string         `json:"game_id"`
	Seed           int64          `json:"seed"`
	Complete       bool           `json:"is_complete"`
	WinnerID       string         `json:"winner_id,omitempty"`
	WinnerStrategy string         `json:"winner_strategy,omitempty"`
	Rounds         int            `json:"total_rounds"`
	Players        []PlayerResult `json:"players"`
}

// Winner returns the winning seat
func (r GameResult) Winner() (PlayerResult, bool) {
	for _, p := range r.Players {
		if p.Won {
			return p, true
		}
	}
	return PlayerResult{}, false
}

// FinalScores maps player id to final total
func (r GameResult) FinalScores() map[string]int {
	out := make(map[string]int, len(r.Players))
	for _, p := range r.Players {
		out[p.PlayerID] = p.FinalScore
	}
	return out
}

// StrategyOf returns the strategy recorded for a player in the game
// metadata, or the player's name for games played by hand.
func StrategyOf(g *model.GameState, playerName string) string {
	if s, ok := g.Metadata[MetaStrategyPrefix+playerName]; ok {
		return s
	}
	return playerName
}

// Collect builds the result of g from its round history
func Collect(g *model.GameState) GameResult {
	res := GameResult{
		GameID:   g.ID,
		Complete: g.Complete,
		WinnerID: g.WinnerID,
		Rounds:   len(g.History),
	}
	if seed, err := strconv.ParseInt(g.Metadata[MetaSeed], 10, 64); err == nil {
		res.Seed = seed
	}

	totals := g.Totals()
	for _, info := range g.Players {
		pr := PlayerResult{
			PlayerID:   info.ID,
			Name:       info.Name,
			Strategy:   StrategyOf(g, info.Name),
			Won:        info.ID == g.WinnerID,
			FinalScore: totals[info.ID],
			Rounds:     len(g.History),
		}

		sum := 0
		for _, r := range g.History {
			p := r.Player(info.ID)
			if p == nil {
				continue
			}
			pr.CardsDrawn += len(p.Hand)
			sum += p.RoundScore
			if p.Busted {
				pr.Busts++
			} else if rules.Score(p.Hand).HasFlip7() {
				pr.Flip7s++
			}
			for _, id := range r.WinnerIDs {
				if id == info.ID {
					pr.RoundsWon++
				}
			}
		}
		if pr.Rounds > 0 {
			pr.AverageRoundScore = float64(sum) / float64(pr.Rounds)
		}
		if pr.Won {
			res.WinnerStrategy = pr.Strategy
		}
		res.Players = append(res.Players, pr)
	}
	return res
}
