package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/lox/flip7/internal/events"
)

// JSONLSink writes each event as one JSON line. It satisfies events.Sink
// and is safe for concurrent use.
type JSONLSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	enc    *json.Encoder
}

// NewJSONLSink writes events to w
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: w, enc: json.NewEncoder(w)}
}

// OpenJSONLSink appends events to the file at path
func OpenJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	s := NewJSONLSink(f)
	s.closer = f
	return s, nil
}

// Write encodes e as a line
func (s *JSONLSink) Write(e events.Event) error {
	env, err := events.Wrap(e)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(env)
}

// Close closes the underlying file, if the sink opened one
func (s *JSONLSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ReadJSONL decodes a stream written by JSONLSink
func ReadJSONL(r io.Reader) ([]events.Event, error) {
	dec := json.NewDecoder(r)
	var out []events.Event
	for {
		var env events.Envelope
		if err := dec.Decode(&env); err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, fmt.Errorf("decode event %d: %w", len(out)+1, err)
		}
		e, err := events.Unwrap(env)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}
