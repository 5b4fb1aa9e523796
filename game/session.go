package game

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/google/uuid"
)

// Session-related errors.
var (
	ErrInvalidPlayerName = errors.New("player name must be 1 to 32 characters")
	ErrNilGenerator      = errors.New("maze generator is required")
)

const maxPlayerNameLength = 32

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// WithID fixes the session ID instead of generating one.
func WithID(id uuid.UUID) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// Session is a single-player maze game.
// It owns its grid exclusively and replaces it wholesale on restart.
type Session struct {
	id           uuid.UUID        // Session identifier.
	playerName   string           // Display name recorded with results.
	generator    Generator        // Source of fresh mazes.
	grid         *maze.Grid       // Current maze; never mutated once generated.
	player       maze.Position    // Current player block.
	optimal      int              // Shortest route length, in steps, for the current grid.
	won          bool             // Whether the player reached the exit.
	moves        int              // Accepted moves.
	attempts     int              // All move requests, including rejected ones.
	version      int64            // Bumped on every state change.
	startedAt    time.Time        // When the current grid was dealt.
	finishedAt   time.Time        // When the exit was reached.
	lastActivity time.Time        // Last request touching the session.
	now          func() time.Time // Clock.
	sync.RWMutex                  // Guards all fields above.
}

// MoveResult is the outcome of a single move request.
type MoveResult struct {
	Moved   bool          `json:"moved"`   // Whether the player changed block.
	Won     bool          `json:"won"`     // Whether the game is won after this move.
	Player  maze.Position `json:"player"`  // Player block after the move.
	Moves   int           `json:"moves"`   // Accepted moves so far.
	Version int64         `json:"version"` // State version after the move.
}

// NewSession deals a fresh maze for playerName.
func NewSession(playerName string, gen Generator, opts ...SessionOption) (*Session, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" || len(playerName) > maxPlayerNameLength {
		return nil, ErrInvalidPlayerName
	}
	if gen == nil {
		return nil, ErrNilGenerator
	}

	s := &Session{
		id:         uuid.New(),
		playerName: playerName,
		generator:  gen,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.deal()
	return s, nil
}

// deal replaces the grid and resets progress. Callers hold the write lock or own s exclusively.
func (s *Session) deal() {
	s.grid = s.generator.Generate()
	s.player = s.grid.Start()
	s.optimal = 0
	if route, ok := s.grid.ShortestPath(s.grid.Start(), s.grid.Exit()); ok {
		s.optimal = len(route) - 1
	}
	s.won = false
	s.moves = 0
	s.attempts = 0
	s.version++
	s.startedAt = s.now()
	s.finishedAt = time.Time{}
	s.lastActivity = s.startedAt
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// PlayerName returns the display name of the player.
func (s *Session) PlayerName() string {
	return s.playerName
}

// Move steps the player one block in dir. Moves into walls or outside the maze, and any
// move after the game is won, leave the state unchanged and report Moved == false.
func (s *Session) Move(dir Direction) MoveResult {
	s.Lock()
	defer s.Unlock()

	s.lastActivity = s.now()
	if s.won || !dir.Valid() {
		return s.resultLocked(false)
	}

	s.attempts++
	dx, dy := dir.Delta()
	to, won := s.grid.Move(s.player, dx, dy)
	if to == s.player {
		return s.resultLocked(false)
	}

	s.player = to
	s.moves++
	s.version++
	if won {
		s.won = true
		s.finishedAt = s.lastActivity
	}
	return s.resultLocked(true)
}

func (s *Session) resultLocked(moved bool) MoveResult {
	return MoveResult{
		Moved:   moved,
		Won:     s.won,
		Player:  s.player,
		Moves:   s.moves,
		Version: s.version,
	}
}

// Restart deals a new maze and resets the player to the start.
func (s *Session) Restart() {
	s.Lock()
	defer s.Unlock()
	s.deal()
}

// Won reports whether the player reached the exit.
func (s *Session) Won() bool {
	s.RLock()
	defer s.RUnlock()
	return s.won
}

// LastActivity returns the time of the last request touching the session.
func (s *Session) LastActivity() time.Time {
	s.RLock()
	defer s.RUnlock()
	return s.lastActivity
}

// State is a point-in-time view of a session.
type State struct {
	ID         uuid.UUID     `json:"id"`
	PlayerName string        `json:"player_name"`
	Maze       *maze.Grid    `json:"maze"`
	Player     maze.Position `json:"player"`
	Won        bool          `json:"won"`
	Moves      int           `json:"moves"`
	Attempts   int           `json:"attempts"`
	Optimal    int           `json:"optimal_moves"`
	Version    int64         `json:"version"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// Snapshot returns the current state. The grid is shared, not copied, because it is
// never mutated after generation.
func (s *Session) Snapshot() State {
	s.RLock()
	defer s.RUnlock()

	state := State{
		ID:         s.id,
		PlayerName: s.playerName,
		Maze:       s.grid,
		Player:     s.player,
		Won:        s.won,
		Moves:      s.moves,
		Attempts:   s.attempts,
		Optimal:    s.optimal,
		Version:    s.version,
		StartedAt:  s.startedAt,
	}
	if s.won {
		finishedAt := s.finishedAt
		state.FinishedAt = &finishedAt
	}
	return state
}

// Result summarizes a won session. ok is false while the game is still running.
func (s *Session) Result() (result *Result, ok bool) {
	s.RLock()
	defer s.RUnlock()

	if !s.won {
		return nil, false
	}

	cfg := s.generator.Config()
	return &Result{
		ID:           uuid.New(),
		SessionID:    s.id,
		PlayerName:   s.playerName,
		Width:        s.grid.Width(),
		Height:       s.grid.Height(),
		Algorithm:    string(cfg.Algorithm),
		Moves:        s.moves,
		OptimalMoves: s.optimal,
		Score:        Score(s.optimal, s.moves),
		DurationMs:   s.finishedAt.Sub(s.startedAt).Milliseconds(),
		FinishedAt:   s.finishedAt.UTC(),
	}, true
}
