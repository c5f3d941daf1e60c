package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/flip7/internal/card"
)

// Envelope is the serialised form of an event: the header fields plus the
// type-specific payload.
type Envelope struct {
	ID        string          `json:"event_id"`
	GameID    string          `json:"game_id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      EventType       `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// Wrap converts an event to its envelope
func Wrap(e Event) (Envelope, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", e.EventType(), err)
	}
	return Envelope{
		ID:        e.EventID(),
		GameID:    e.GameID(),
		Timestamp: e.Timestamp(),
		Type:      e.EventType(),
		Data:      data,
	}, nil
}

// Unwrap rebuilds the event held in env
func Unwrap(env Envelope) (Event, error) {
	e, ok := New(env.Type)
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	if err := json.Unmarshal(env.Data, e); err != nil {
		return nil, fmt.Errorf("unmarshal %s %s: %w", env.Type, env.ID, err)
	}
	e.setHeader(Header{ID: env.ID, Game: env.GameID, Time: env.Timestamp})
	return e, nil
}

// WrapAll converts a slice of events
func WrapAll(evs []Event) ([]Envelope, error) {
	out := make([]Envelope, 0, len(evs))
	for _, e := range evs {
		env, err := Wrap(e)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

// UnwrapAll rebuilds a slice of events, failing on the first bad one
func UnwrapAll(envs []Envelope) ([]Event, error) {
	out := make([]Event, 0, len(envs))
	for _, env := range envs {
		e, err := Unwrap(env)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func wireOf(c card.Card) *card.Wire {
	if c == nil {
		return nil
	}
	w := card.ToWire(c)
	return &w
}

func cardOf(w *card.Wire) (card.Card, error) {
	if w == nil {
		return nil, nil
	}
	return card.FromWire(*w)
}

func (e *CardDealt) MarshalJSON() ([]byte, error) {
	type plain CardDealt
	return json.Marshal(struct {
		*plain
		Card *card.Wire `json:"card"`
	}{(*plain)(e), wireOf(e.Card)})
}

func (e *CardDealt) UnmarshalJSON(b []byte) error {
	type plain CardDealt
	aux := struct {
		*plain
		Card *card.Wire `json:"card"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c, err := cardOf(aux.Card)
	e.Card = c
	return err
}

func (e *PlayerBusted) MarshalJSON() ([]byte, error) {
	type plain PlayerBusted
	return json.Marshal(struct {
		*plain
		Card *card.Wire `json:"card"`
	}{(*plain)(e), wireOf(e.Card)})
}

func (e *PlayerBusted) UnmarshalJSON(b []byte) error {
	type plain PlayerBusted
	aux := struct {
		*plain
		Card *card.Wire `json:"card"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c, err := cardOf(aux.Card)
	e.Card = c
	return err
}
