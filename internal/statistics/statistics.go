// Package statistics aggregates finished games into per-strategy results.
package statistics

import (
	"fmt"
	"sort"
)

// StrategyStats tracks one strategy across every seat it played
type StrategyStats struct {
	Strategy string
	Games    int
	Wins     int
	Busts    int
	Flip7s   int
	Cards    int

	Scores      Sample // final score per game
	Rounds      Sample // rounds per game
	RoundScores Sample // average round score per game
}

// WinRate returns wins per game played
func (s *StrategyStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// BustsPerRound returns the share of rounds that ended in a bust
func (s *StrategyStats) BustsPerRound() float64 {
	if s.Rounds.Sum == 0 {
		return 0
	}
	return float64(s.Busts) / s.Rounds.Sum
}

func (s *StrategyStats) add(p PlayerResult) {
	s.Games++
	if p.Won {
		s.Wins++
	}
	s.Busts += p.Busts
	s.Flip7s += p.Flip7s
	s.Cards += p.CardsDrawn
	s.Scores.Add(float64(p.FinalScore))
	s.Rounds.Add(float64(p.Rounds))
	s.RoundScores.Add(p.AverageRoundScore)
}

// Statistics aggregates many games
type Statistics struct {
	Games      int
	Complete   int
	Rounds     Sample
	Strategies map[string]*StrategyStats
}

// New returns empty statistics
func New() *Statistics {
	return &Statistics{Strategies: make(map[string]*StrategyStats)}
}

// Summarize aggregates results
func Summarize(results []GameResult) *Statistics {
	s := New()
	for _, r := range results {
		s.Add(r)
	}
	return s
}

// Add incorporates one game
func (s *Statistics) Add(r GameResult) {
	s.Games++
	if r.Complete {
		s.Complete++
	}
	s.Rounds.Add(float64(r.Rounds))

	for _, p := range r.Players {
		st, ok := s.Strategies[p.Strategy]
		if !ok {
			st = &StrategyStats{Strategy: p.Strategy}
			s.Strategies[p.Strategy] = st
		}
		st.add(p)
	}
}

// Ranked returns the strategies ordered by win rate, then mean final score,
// then name
func (s *Statistics) Ranked() []*StrategyStats {
	out := make([]*StrategyStats, 0, len(s.Strategies))
	for _, st := range s.Strategies {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.WinRate() != b.WinRate() {
			return a.WinRate() > b.WinRate()
		}
		if a.Scores.Mean() != b.Scores.Mean() {
			return a.Scores.Mean() > b.Scores.Mean()
		}
		return a.Strategy < b.Strategy
	})
	return out
}

// Validate checks that the totals are consistent: one winner per complete
// game and every seat counted once.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if s.Rounds.N != s.Games {
		return fmt.Errorf("rounds recorded for %d games, expected %d", s.Rounds.N, s.Games)
	}

	wins := 0
	for _, st := range s.Strategies {
		if st.Wins > st.Games {
			return fmt.Errorf("strategy %s: wins (%d) exceed games (%d)", st.Strategy, st.Wins, st.Games)
		}
		if st.Scores.N != st.Games {
			return fmt.Errorf("strategy %s: %d scores for %d games", st.Strategy, st.Scores.N, st.Games)
		}
		wins += st.Wins
	}
	if wins != s.Complete {
		return fmt.Errorf("total wins (%d) do not match complete games (%d)", wins, s.Complete)
	}
	return nil
}
