package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/fileutil"
	"github.com/lox/flip7/internal/gameid"
	"github.com/lox/flip7/internal/model"
)

// ErrNotFound is returned when no saved game has the requested id
var ErrNotFound = errors.New("game not found")

const (
	stateFile   = "state.json"
	eventsFile  = "events.json"
	summaryFile = "summary.json"
)

// Summary describes a saved game without loading it
type Summary struct {
	ID         string            `json:"game_id"`
	CreatedAt  time.Time         `json:"created_at"`
	SavedAt    time.Time         `json:"saved_at"`
	Players    []string          `json:"players"`
	Rounds     int               `json:"rounds"`
	Complete   bool              `json:"is_complete"`
	WinnerID   string            `json:"winner_id,omitempty"`
	WinnerName string            `json:"winner_name,omitempty"`
	Events     int               `json:"events"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Repository keeps one directory per game under a root directory
type Repository struct {
	dir    string
	logger *log.Logger
	now    func() time.Time
}

// NewRepository opens (and creates) the directory at dir
func NewRepository(dir string, logger *log.Logger) (*Repository, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	return &Repository{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the root directory
func (r *Repository) Dir() string {
	return r.dir
}

func (r *Repository) gameDir(id string) (string, error) {
	if err := gameid.Validate(id); err != nil {
		return "", fmt.Errorf("invalid game id %q: %w", id, err)
	}
	return filepath.Join(r.dir, id), nil
}

// Save writes the game state, its events and a summary
func (r *Repository) Save(g *model.GameState, evs []events.Event) error {
	dir, err := r.gameDir(g.ID)
	if err != nil {
		return err
	}

	envs, err := events.WrapAll(evs)
	if err != nil {
		return err
	}

	if err := fileutil.WriteJSON(filepath.Join(dir, stateFile), Snapshot(g)); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := fileutil.WriteJSON(filepath.Join(dir, eventsFile), envs); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := fileutil.WriteJSON(filepath.Join(dir, summaryFile), r.summarize(g, len(evs))); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}

	r.logger.Debug("Saved game", "game", g.ID, "rounds", len(g.History), "events", len(evs))
	return nil
}

func (r *Repository) summarize(g *model.GameState, n int) Summary {
	s := Summary{
		ID:        g.ID,
		CreatedAt: g.CreatedAt,
		SavedAt:   r.now(),
		Rounds:    len(g.History),
		Complete:  g.Complete,
		WinnerID:  g.WinnerID,
		Events:    n,
		Metadata:  g.Metadata,
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, p.Name)
	}
	if g.WinnerID != "" {
		s.WinnerName = g.PlayerName(g.WinnerID)
	}
	return s
}

// Load reads a saved game and its events
func (r *Repository) Load(id string) (*model.GameState, []events.Event, error) {
	dir, err := r.gameDir(id)
	if err != nil {
		return nil, nil, err
	}

	var snap GameSnapshot
	if err := fileutil.ReadJSON(filepath.Join(dir, stateFile), &snap); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, nil, err
	}
	g, err := Restore(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("restore %s: %w", id, err)
	}

	var envs []events.Envelope
	if err := fileutil.ReadJSON(filepath.Join(dir, eventsFile), &envs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, err
	}
	evs, err := events.UnwrapAll(envs)
	if err != nil {
		return nil, nil, fmt.Errorf("restore events for %s: %w", id, err)
	}
	return g, evs, nil
}

// List returns the summaries of all saved games, oldest first. Directories
// that are not readable games are skipped with a warning.
func (r *Repository) List() ([]Summary, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read save directory: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), gameid.Game+"_") {
			continue
		}
		var s Summary
		if err := fileutil.ReadJSON(filepath.Join(r.dir, entry.Name(), summaryFile), &s); err != nil {
			r.logger.Warn("Skipping unreadable game", "dir", entry.Name(), "error", err)
			continue
		}
		out = append(out, s)
	}

	slices.SortFunc(out, func(a, b Summary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Delete removes a saved game
func (r *Repository) Delete(id string) error {
	dir, err := r.gameDir(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	r.logger.Debug("Deleted game", "game", id)
	return nil
}
