package events

import (
	"fmt"
	"slices"
	"strings"
)

// FormattingOptions controls how events are rendered
type FormattingOptions struct {
	ShowTimestamps bool
	ShowIDs        bool
	// Names maps player ids to display names for events that only carry ids
	Names map[string]string
}

// Formatter renders events as single human readable lines
type Formatter struct {
	opts FormattingOptions
}

// NewFormatter creates a formatter with the given options
func NewFormatter(opts FormattingOptions) *Formatter {
	return &Formatter{opts: opts}
}

func (f *Formatter) name(id string) string {
	if n, ok := f.opts.Names[id]; ok {
		return n
	}
	return id
}

// Format renders one event
func (f *Formatter) Format(e Event) string {
	var text string

	switch e := e.(type) {
	case *GameStarted:
		text = fmt.Sprintf("Game started with %s", strings.Join(e.PlayerNames, ", "))
	case *RoundStarted:
		text = fmt.Sprintf("Round %d started, %s deals", e.Round, e.DealerName)
	case *CardDealt:
		text = fmt.Sprintf("%s drew %s (%d cards)", e.PlayerName, e.Card, e.HandSize)
	case *PlayerHit:
		text = fmt.Sprintf("%s hits", e.PlayerName)
	case *PlayerStayed:
		text = fmt.Sprintf("%s stays with %d (total %d)", e.PlayerName, e.RoundScore, e.TotalScore)
		if e.HasFlip7 {
			text += " FLIP 7!"
		}
	case *PlayerBusted:
		text = fmt.Sprintf("%s busts on %s", e.PlayerName, e.Card)
	case *ActionApplied:
		if e.TargetID == e.PlayerID {
			text = fmt.Sprintf("%s plays %s: %s", e.PlayerName, e.Action.Title(), e.Effect)
		} else {
			text = fmt.Sprintf("%s plays %s on %s: %s", e.PlayerName, e.Action.Title(), e.TargetName, e.Effect)
		}
	case *SecondChanceUsed:
		text = fmt.Sprintf("%s uses Second Chance, discarding %d", e.PlayerName, e.DiscardedValue)
	case *DeckReshuffled:
		text = fmt.Sprintf("Discard pile reshuffled into deck (%d cards)", e.CardsReshuffled)
	case *RoundEnded:
		winners := make([]string, 0, len(e.WinnerIDs))
		for _, id := range e.WinnerIDs {
			winners = append(winners, f.name(id))
		}
		if len(winners) == 0 {
			winners = append(winners, "nobody")
		}
		text = fmt.Sprintf("Round %d ended (%s), won by %s; scores %s",
			e.Round, e.Reason, strings.Join(winners, " and "), f.scores(e.RoundScores))
	case *GameEnded:
		text = fmt.Sprintf("Game over after %d rounds, %s wins; final %s",
			e.TotalRounds, e.WinnerName, f.scores(e.FinalScores))
	default:
		text = string(e.EventType())
	}

	var prefix []string
	if f.opts.ShowTimestamps {
		prefix = append(prefix, e.Timestamp().Format("15:04:05.000"))
	}
	if f.opts.ShowIDs {
		prefix = append(prefix, e.EventID())
	}
	if len(prefix) > 0 {
		return "[" + strings.Join(prefix, " ") + "] " + text
	}
	return text
}

// scores renders a score map sorted by name so output is stable
func (f *Formatter) scores(m map[string]int) string {
	type entry struct {
		name  string
		score int
	}
	entries := make([]entry, 0, len(m))
	for id, s := range m {
		entries = append(entries, entry{f.name(id), s})
	}
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.name, b.name) })

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s=%d", e.name, e.score)
	}
	return strings.Join(parts, " ")
}

// FormatAll renders every event on its own line
func (f *Formatter) FormatAll(evs []Event) string {
	var b strings.Builder
	for _, e := range evs {
		b.WriteString(f.Format(e))
		b.WriteByte('\n')
	}
	return b.String()
}
