package events

import (
	"fmt"

	"github.com/coder/quartz"
	"github.com/lox/flip7/internal/gameid"
)

// Sink receives every event after it is appended. A sink error makes the
// append fail.
type Sink interface {
	Write(Event) error
}

// IDSource names events. *gameid.Generator satisfies it.
type IDSource interface {
	New(prefix string) string
}

// Log is the append-only record of one game. Events are never changed or
// reordered once appended. A Log is not safe for concurrent use.
type Log struct {
	gameID string
	clock  quartz.Clock
	ids    IDSource
	sinks  []Sink
	events []Event
}

// LogOption configures a Log during creation.
type LogOption func(*Log)

// WithClock sets the clock used for timestamps
func WithClock(c quartz.Clock) LogOption {
	return func(l *Log) { l.clock = c }
}

// WithIDs sets the event id source
func WithIDs(ids IDSource) LogOption {
	return func(l *Log) { l.ids = ids }
}

// WithSink adds a sink
func WithSink(s Sink) LogOption {
	return func(l *Log) { l.sinks = append(l.sinks, s) }
}

// WithHistory seeds the log with previously recorded events, for resuming
func WithHistory(evs []Event) LogOption {
	return func(l *Log) { l.events = append(l.events, evs...) }
}

// NewLog creates an empty log for gameID
func NewLog(gameID string, opts ...LogOption) *Log {
	l := &Log{
		gameID: gameID,
		clock:  quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.ids == nil {
		l.ids = gameid.NewGenerator()
	}
	return l
}

// GameID returns the game this log belongs to
func (l *Log) GameID() string {
	return l.gameID
}

// Append stamps e with an id, the game id and the current time, then
// records it and forwards it to the sinks.
func (l *Log) Append(e Event) error {
	e.setHeader(Header{
		ID:   l.ids.New(gameid.Event),
		Game: l.gameID,
		Time: l.clock.Now(),
	})
	l.events = append(l.events, e)

	for _, s := range l.sinks {
		if err := s.Write(e); err != nil {
			return fmt.Errorf("event sink: %w", err)
		}
	}
	return nil
}

// Events returns a copy of the recorded events in append order
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events
func (l *Log) Len() int {
	return len(l.events)
}

// Last returns the most recent event, or nil
func (l *Log) Last() Event {
	if len(l.events) == 0 {
		return nil
	}
	return l.events[len(l.events)-1]
}

// Filter narrows a query. Zero fields match everything.
type Filter struct {
	Types    []EventType
	PlayerID string
	Round    int
}

func (f Filter) match(e Event) bool {
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if e.EventType() == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.PlayerID != "" && !Involves(e, f.PlayerID) {
		return false
	}
	if f.Round > 0 {
		r, ok := RoundOf(e)
		if !ok || r != f.Round {
			return false
		}
	}
	return true
}

// Query returns the events matching f in append order
func (l *Log) Query(f Filter) []Event {
	var out []Event
	for _, e := range l.events {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// OfType returns the events of type t
func (l *Log) OfType(t EventType) []Event {
	return l.Query(Filter{Types: []EventType{t}})
}

// ForPlayer returns the events involving playerID
func (l *Log) ForPlayer(playerID string) []Event {
	return l.Query(Filter{PlayerID: playerID})
}

// ForRound returns the events recorded during round n
func (l *Log) ForRound(n int) []Event {
	return l.Query(Filter{Round: n})
}

// Counts returns the number of events per type
func (l *Log) Counts() map[EventType]int {
	counts := make(map[EventType]int)
	for _, e := range l.events {
		counts[e.EventType()]++
	}
	return counts
}
