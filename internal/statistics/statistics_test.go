package statistics

import (
	"testing"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seat(id, name string, score, total int, busted bool, faces ...string) *model.PlayerState {
	return &model.PlayerState{
		ID:         id,
		Name:       name,
		Hand:       card.MustParseHand(faces...),
		RoundScore: score,
		TotalScore: total,
		Stayed:     !busted,
		Busted:     busted,
	}
}

func finished(n int, winners []string, players ...*model.PlayerState) *model.RoundState {
	r := model.NewRoundState(n, players[0].ID, players, 0)
	r.Complete = true
	r.WinnerIDs = winners
	return r
}

// sampleGame is three rounds between Alice (Threshold) and Bob (Random).
// Alice wins every round, twice with a Flip 7; Bob busts twice.
func sampleGame(winner string) *model.GameState {
	return &model.GameState{
		ID:      "game_sample",
		Players: []model.PlayerInfo{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"}},
		History: []*model.RoundState{
			finished(1, []string{"p1"},
				seat("p1", "Alice", 78, 78, false, "9", "9", "9", "9", "9", "9", "9"),
				seat("p2", "Bob", 0, 0, true, "5", "5")),
			finished(2, []string{"p1"},
				seat("p1", "Alice", 78, 156, false, "12", "11", "10", "9", "8", "7", "6"),
				seat("p2", "Bob", 4, 4, false, "4", "F")),
			finished(3, []string{"p1"},
				seat("p1", "Alice", 120, 276, false, "12", "11", "10", "9", "8", "+10", "x2"),
				seat("p2", "Bob", 0, 4, true, "3", "3")),
		},
		Complete: true,
		WinnerID: winner,
		Metadata: map[string]string{
			MetaSeed:                     "42",
			MetaStrategyPrefix + "Alice": "Threshold(100)",
			MetaStrategyPrefix + "Bob":   "Random(50%)",
		},
	}
}

func TestCollect(t *testing.T) {
	res := Collect(sampleGame("p1"))

	assert.Equal(t, "game_sample", res.GameID)
	assert.Equal(t, int64(42), res.Seed)
	assert.True(t, res.Complete)
	assert.Equal(t, 3, res.Rounds)
	assert.Equal(t, "Threshold(100)", res.WinnerStrategy)
	assert.Equal(t, map[string]int{"p1": 276, "p2": 4}, res.FinalScores())

	require.Len(t, res.Players, 2)
	alice, bob := res.Players[0], res.Players[1]

	assert.True(t, alice.Won)
	assert.Equal(t, 276, alice.FinalScore)
	assert.Equal(t, 3, alice.RoundsWon)
	assert.Equal(t, 2, alice.Flip7s)
	assert.Equal(t, 0, alice.Busts)
	assert.Equal(t, 21, alice.CardsDrawn)
	assert.InDelta(t, 92.0, alice.AverageRoundScore, 1e-9)

	assert.False(t, bob.Won)
	assert.Equal(t, "Random(50%)", bob.Strategy)
	assert.Equal(t, 2, bob.Busts)
	assert.Equal(t, 0, bob.Flip7s)
	assert.Equal(t, 6, bob.CardsDrawn)

	w, ok := res.Winner()
	require.True(t, ok)
	assert.Equal(t, "Alice", w.Name)
}

func TestStrategyOfFallsBackToName(t *testing.T) {
	g := sampleGame("p1")
	g.Metadata = nil
	assert.Equal(t, "Alice", StrategyOf(g, "Alice"))
}

func TestSummarize(t *testing.T) {
	results := []GameResult{
		Collect(sampleGame("p1")),
		Collect(sampleGame("p1")),
		Collect(sampleGame("p2")),
	}

	s := Summarize(results)
	require.NoError(t, s.Validate())
	assert.Equal(t, 3, s.Games)
	assert.Equal(t, 3, s.Complete)
	assert.InDelta(t, 3.0, s.Rounds.Mean(), 1e-9)

	ranked := s.Ranked()
	require.Len(t, ranked, 2)
	assert.Equal(t, "Threshold(100)", ranked[0].Strategy)
	assert.Equal(t, 2, ranked[0].Wins)
	assert.InDelta(t, 2.0/3, ranked[0].WinRate(), 1e-9)
	assert.Equal(t, 6, ranked[0].Flip7s)
	assert.InDelta(t, 276.0, ranked[0].Scores.Mean(), 1e-9)

	bob := s.Strategies["Random(50%)"]
	assert.Equal(t, 6, bob.Busts)
	assert.InDelta(t, 6.0/9, bob.BustsPerRound(), 1e-9)
}

func TestValidateDetectsMismatch(t *testing.T) {
	assert.Error(t, New().Validate(), "no games")

	s := Summarize([]GameResult{Collect(sampleGame("p1"))})
	s.Strategies["Random(50%)"].Wins = 1
	assert.Error(t, s.Validate())
}

func TestGame(t *testing.T) {
	st, err := Game(sampleGame("p1"))
	require.NoError(t, err)

	assert.Equal(t, 3, st.Rounds)
	assert.Equal(t, 27, st.CardsDealt)
	assert.Equal(t, 2, st.Flip7s)
	assert.Equal(t, 2, st.Busts)
	assert.Equal(t, "Alice", st.WinnerName)
	assert.Equal(t, 276, st.WinnerScore)
	assert.InDelta(t, 280.0/6, st.AverageRoundScore, 1e-9)
	assert.Equal(t, 9, st.CardFrequency["Number 9"])
	assert.Equal(t, 1, st.CardFrequency["Action: freeze"])

	g := sampleGame("")
	g.Complete = false
	_, err = Game(g)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestLeaderboardAndHistory(t *testing.T) {
	unfinished := sampleGame("")
	unfinished.Complete = false
	games := []*model.GameState{sampleGame("p1"), sampleGame("p2"), sampleGame("p1"), unfinished}

	board := Leaderboard(games)
	require.Len(t, board, 2)
	assert.Equal(t, "Alice", board[0].Name)
	assert.Equal(t, 3, board[0].Games, "unfinished games are ignored")
	assert.Equal(t, 2, board[0].Wins)
	assert.Equal(t, 120, board[0].HighestRound)
	assert.Equal(t, 276, board[0].HighestGame)
	assert.InDelta(t, 6.0/9, board[0].Flip7Rate(), 1e-9)
	assert.Equal(t, "Bob", board[1].Name)
	assert.InDelta(t, 6.0/9, board[1].BustRate(), 1e-9)

	h := Historical(games)
	assert.Equal(t, 3, h.Games)
	assert.Equal(t, 9, h.Rounds)
	assert.Equal(t, 18, h.PlayerRounds)
	assert.Equal(t, 6, h.Busts)
	assert.Equal(t, 6, h.Flip7s)
	assert.Equal(t, 276, h.HighestScore)
	assert.Equal(t, "Alice", h.MostCommonWinner)
	assert.InDelta(t, 3.0, h.AverageRounds(), 1e-9)
}

func TestAnalyze(t *testing.T) {
	rep := Analyze([]events.Event{
		&events.RoundStarted{Round: 1},
		&events.ActionApplied{Action: card.Freeze, Effect: "Bob frozen with 4 points"},
		&events.ActionApplied{Action: card.SecondChance, Effect: "discarded"},
		&events.DeckReshuffled{CardsReshuffled: 40},
		&events.SecondChanceUsed{DiscardedValue: 7},
		&events.PlayerStayed{PlayerName: "Alice", HasFlip7: true},
		&events.PlayerBusted{PlayerName: "Bob"},
		&events.PlayerBusted{PlayerName: "Bob"},
		&events.RoundEnded{Round: 1},
	})

	assert.Equal(t, 2, rep.Counts[events.EventTypePlayerBusted])
	assert.Equal(t, 2, rep.Counts[events.EventTypeActionApplied])
	assert.Equal(t, 1, rep.Actions[card.Freeze])
	assert.Zero(t, rep.Actions[card.SecondChance])
	assert.Equal(t, 1, rep.Discarded)
	assert.Equal(t, 1, rep.Reshuffles)
	assert.Equal(t, 1, rep.SecondChances)
	assert.Equal(t, 1, rep.Flip7s)
	assert.Equal(t, 1, rep.Rounds)
	assert.Equal(t, map[string]int{"Bob": 2}, rep.BustsByPlayer)
}

func TestSample(t *testing.T) {
	var empty Sample
	assert.Zero(t, empty.Mean())
	assert.Zero(t, empty.StdDev())
	assert.Zero(t, empty.StdError())
	assert.Zero(t, empty.Median())
	assert.Zero(t, empty.Percentile(0.5))

	var s Sample
	for _, v := range []float64{1, -2, 3, 0, -1} {
		s.Add(v)
	}
	assert.InDelta(t, 0.2, s.Mean(), 1e-9)
	assert.InDelta(t, 3.7, s.Variance(), 1e-9)
	assert.InDelta(t, 0.0, s.Median(), 1e-9)
	assert.InDelta(t, -1.0, s.Percentile(0.25), 1e-9)
	assert.InDelta(t, 3.0, s.Percentile(1), 1e-9)
	assert.InDelta(t, 3.0, s.Max(), 1e-9)

	low, high := s.ConfidenceInterval95()
	assert.Less(t, low, s.Mean())
	assert.Greater(t, high, s.Mean())

	var constant Sample
	for range 4 {
		constant.Add(0.1)
	}
	assert.InDelta(t, 0.0, constant.Variance(), 1e-12)

	s.Merge(constant)
	assert.Equal(t, 9, s.N)
	assert.Len(t, s.Values, 9)
}
