package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/deck"
	"github.com/lox/flip7/internal/simulator"
	"github.com/lox/flip7/internal/statistics"
	"github.com/lox/flip7/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	bustStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func printSimulation(w io.Writer, res *simulator.Results, seed int64) {
	s := res.Stats
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Flip 7 simulation: %d games", s.Games)))
	fmt.Fprintf(w, "%s %d   %s %.1f (median %.0f, max %.0f)   %s %s\n\n",
		labelStyle.Render("Seed:"), seed,
		labelStyle.Render("Rounds/game:"), s.Rounds.Mean(), s.Rounds.Median(), s.Rounds.Max(),
		labelStyle.Render("Elapsed:"), res.Elapsed.Round(time.Millisecond))

	tw := newTable(w)
	fmt.Fprintln(tw, "Strategy\tGames\tWins\tWin rate\tAvg score\t95% CI\tAvg round\tBusts/round\tFlip 7s")
	for i, st := range s.Ranked() {
		low, high := st.Scores.ConfidenceInterval95()
		name := st.Strategy
		if i == 0 {
			name = winStyle.Render(name)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.1f\t[%.1f, %.1f]\t%.1f\t%s\t%d\n",
			name, st.Games, st.Wins, percent(st.WinRate()),
			st.Scores.Mean(), low, high, st.RoundScores.Mean(),
			bustStyle.Render(percent(st.BustsPerRound())), st.Flip7s)
	}
	tw.Flush()
}

func printGames(w io.Writer, games []store.Summary) {
	if len(games) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No saved games"))
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "Game\tCreated\tPlayers\tRounds\tWinner\tEvents")
	for _, g := range games {
		winner := g.WinnerName
		if !g.Complete {
			winner = dimStyle.Render("in progress")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\n",
			g.ID, g.CreatedAt.Format("2006-01-02 15:04"), strings.Join(g.Players, ", "),
			g.Rounds, winner, g.Events)
	}
	tw.Flush()
}

func printGameStats(w io.Writer, st statistics.GameStats, rep statistics.EventReport) {
	fmt.Fprintln(w, headerStyle.Render("Game "+st.GameID))
	fmt.Fprintf(w, "%s %s with %d\n", labelStyle.Render("Winner:"), winStyle.Render(st.WinnerName), st.WinnerScore)
	fmt.Fprintf(w, "%s %d   %s %d   %s %d   %s %d\n",
		labelStyle.Render("Rounds:"), st.Rounds,
		labelStyle.Render("Cards dealt:"), st.CardsDealt,
		labelStyle.Render("Flip 7s:"), st.Flip7s,
		labelStyle.Render("Busts:"), st.Busts)
	fmt.Fprintf(w, "%s %.1f   %s %d   %s %d\n",
		labelStyle.Render("Avg round score:"), st.AverageRoundScore,
		labelStyle.Render("Second Chances used:"), rep.SecondChances,
		labelStyle.Render("Reshuffles:"), rep.Reshuffles)

	if len(rep.Actions) > 0 {
		parts := make([]string, 0, len(rep.Actions))
		for _, a := range []card.ActionKind{card.Freeze, card.FlipThree, card.SecondChance} {
			if n := rep.Actions[a]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", a.Title(), n))
			}
		}
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Actions:"), strings.Join(parts, ", "))
	}

	if len(rep.BustsByPlayer) > 0 {
		tw := newTable(w)
		fmt.Fprintln(tw, "\nPlayer\tBusts")
		for _, name := range slices.Sorted(maps.Keys(rep.BustsByPlayer)) {
			fmt.Fprintf(tw, "%s\t%d\n", name, rep.BustsByPlayer[name])
		}
		tw.Flush()
	}
}

func printLeaderboard(w io.Writer, board []statistics.PlayerStats, h statistics.HistoricalStats) {
	if h.Games == 0 {
		fmt.Fprintln(w, dimStyle.Render("No finished games"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Leaderboard: %d games, %d rounds", h.Games, h.Rounds)))
	fmt.Fprintf(w, "%s %.1f   %s %s   %s %s   %s %d   %s %s\n\n",
		labelStyle.Render("Rounds/game:"), h.AverageRounds(),
		labelStyle.Render("Bust rate:"), percent(h.BustRate()),
		labelStyle.Render("Flip 7 rate:"), percent(h.Flip7Rate()),
		labelStyle.Render("Highest score:"), h.HighestScore,
		labelStyle.Render("Most wins:"), h.MostCommonWinner)

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tPlayer\tGames\tWins\tWin rate\tAvg score\tBest round\tBust rate\tFlip 7 rate")
	for i, p := range board {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%.1f\t%d\t%s\t%s\n",
			i+1, p.Name, p.Games, p.Wins, percent(p.WinRate()),
			p.GameScores.Mean(), p.HighestRound, percent(p.BustRate()), percent(p.Flip7Rate()))
	}
	tw.Flush()
}

func printDeck(w io.Writer, s deck.Stats) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Standard deck: %d cards", s.Total)))
	fmt.Fprintf(w, "%s %d (average %.2f)   %s %d   %s %d\n\n",
		labelStyle.Render("Numbers:"), s.Numbers, s.AverageNumber,
		labelStyle.Render("Actions:"), s.Actions,
		labelStyle.Render("Modifiers:"), s.Modifiers)

	tw := newTable(w)
	fmt.Fprintln(tw, "Card\tCopies\tShare")
	for v := card.MaxNumber; v >= 0; v-- {
		n := s.NumberCounts[v]
		fmt.Fprintf(tw, "%d\t%d\t%s\n", v, n, percent(float64(n)/float64(s.Total)))
	}
	for _, a := range []card.ActionKind{card.FlipThree, card.Freeze, card.SecondChance} {
		n := s.ActionCounts[a]
		fmt.Fprintf(tw, "%s\t%d\t%s\n", a.Title(), n, percent(float64(n)/float64(s.Total)))
	}
	for _, face := range slices.Sorted(maps.Keys(s.ModifierCounts)) {
		n := s.ModifierCounts[face]
		fmt.Fprintf(tw, "%s\t%d\t%s\n", face, n, percent(float64(n)/float64(s.Total)))
	}
	tw.Flush()
}
