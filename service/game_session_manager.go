package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 10_000
	recordTimeout      = 2 * time.Second
)

var (
	ErrSessionNotFound  = errors.New("no session")
	ErrTooManySessions  = errors.New("too many running sessions")
	ErrMissingHistory   = errors.New("history repository is required")
	ErrMissingLogger    = errors.New("logger is required")
	ErrInvalidDirection = game.ErrInvalidDirection
)

var _ i.GameSessionManager = &GameSessionManager{}

// GameSessionManager hosts running maze sessions, records finished runs to the history
// repository and submits their scores to the leaderboard.
type GameSessionManager struct {
	sessions    map[uuid.UUID]*game.Session
	generators  map[maze.Config]game.Generator // one generator per maze configuration
	defaultMaze maze.Config
	mazeOptions []maze.Option
	history     i.HistoryRepo
	leaderboard i.Leaderboard
	logger      i.Logger
	sessionTTL  time.Duration
	maxSessions int
	now         func() time.Time
	sync.RWMutex
}

// Config holds the dependencies and limits of a GameSessionManager.
type Config struct {
	DefaultMaze maze.Config      // Maze dealt when a request names no configuration.
	MazeOptions []maze.Option    // Options applied to every generator, e.g. a fixed seed.
	History     i.HistoryRepo    // Finished runs are saved here.
	Leaderboard i.Leaderboard    // Optional; best scores are submitted here.
	Logger      i.Logger         // Component logger.
	SessionTTL  time.Duration    // Idle time after which Sweep drops a session.
	MaxSessions int              // Upper bound on concurrently running sessions.
	Clock       func() time.Time // Optional clock, defaults to time.Now.
}

// NewGameSessionManager validates c and returns a ready manager.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.History == nil {
		return nil, ErrMissingHistory
	}
	if c.Logger == nil {
		return nil, ErrMissingLogger
	}
	if err := c.DefaultMaze.Validate(); err != nil {
		return nil, err
	}

	gsm := &GameSessionManager{
		sessions:    make(map[uuid.UUID]*game.Session),
		generators:  make(map[maze.Config]game.Generator),
		defaultMaze: c.DefaultMaze,
		mazeOptions: c.MazeOptions,
		history:     c.History,
		leaderboard: c.Leaderboard,
		logger:      c.Logger,
		sessionTTL:  c.SessionTTL,
		maxSessions: c.MaxSessions,
		now:         c.Clock,
	}

	if gsm.sessionTTL <= 0 {
		gsm.sessionTTL = defaultSessionTTL
	}
	if gsm.maxSessions <= 0 {
		gsm.maxSessions = defaultMaxSessions
	}
	if gsm.now == nil {
		gsm.now = time.Now
	}
	if gsm.defaultMaze.Algorithm == "" {
		gsm.defaultMaze.Algorithm = maze.AlgorithmDFS
	}

	return gsm, nil
}

// NewSession deals a maze for player and registers the session. Zero fields of cfg
// are taken from the default maze configuration.
func (g *GameSessionManager) NewSession(player string, cfg *maze.Config) (*game.Session, error) {
	mazeCfg := g.defaultMaze
	if cfg != nil {
		if cfg.Width != 0 {
			mazeCfg.Width = cfg.Width
		}
		if cfg.Height != 0 {
			mazeCfg.Height = cfg.Height
		}
		if cfg.Algorithm != "" {
			mazeCfg.Algorithm = cfg.Algorithm
		}
	}

	g.Lock()
	defer g.Unlock()

	if len(g.sessions) >= g.maxSessions {
		g.logger.Warning(fmt.Sprintf("rejected new session for %q: %d sessions running", player, len(g.sessions)))
		return nil, ErrTooManySessions
	}

	gen, err := g.generatorLocked(mazeCfg)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}

	session, err := game.NewSession(player, gen, game.WithID(sessionID), game.WithClock(g.now))
	if err != nil {
		return nil, err
	}

	g.sessions[sessionID] = session
	g.logger.Info(fmt.Sprintf("started %dx%d %s maze %s for player %q",
		mazeCfg.Width, mazeCfg.Height, mazeCfg.Algorithm, sessionID, session.PlayerName()))
	return session, nil
}

// generatorLocked returns the cached generator for cfg, creating it on first use.
func (g *GameSessionManager) generatorLocked(cfg maze.Config) (game.Generator, error) {
	if gen, ok := g.generators[cfg]; ok {
		return gen, nil
	}

	gen, err := maze.New(cfg, g.mazeOptions...)
	if err != nil {
		return nil, err
	}

	logged := &loggingGenerator{Generator: gen, logger: g.logger}
	g.generators[cfg] = logged
	return logged, nil
}

// Session returns the running session with the given ID.
func (g *GameSessionManager) Session(id uuid.UUID) (*game.Session, error) {
	g.RLock()
	defer g.RUnlock()

	session, ok := g.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Move applies dir to the session. The run is recorded on the move that reaches the exit.
// Recording failures are logged; they do not undo the win.
func (g *GameSessionManager) Move(ctx context.Context, id uuid.UUID, dir game.Direction) (game.MoveResult, error) {
	if !dir.Valid() {
		return game.MoveResult{}, ErrInvalidDirection
	}

	session, err := g.Session(id)
	if err != nil {
		return game.MoveResult{}, err
	}

	res := session.Move(dir)
	if res.Moved && res.Won {
		g.record(ctx, session)
	}
	return res, nil
}

// record saves the result of a won session and submits its score.
func (g *GameSessionManager) record(ctx context.Context, session *game.Session) {
	result, ok := session.Result()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	if err := g.history.Save(ctx, result); err != nil {
		g.logger.Error(fmt.Sprintf("saving result of session %s: %s", session.ID(), err))
	} else {
		g.logger.Info(fmt.Sprintf("player %q finished session %s in %d moves, score %d",
			result.PlayerName, session.ID(), result.Moves, result.Score))
	}

	if g.leaderboard == nil {
		return
	}
	improved, err := g.leaderboard.Submit(ctx, result.PlayerName, result.Score)
	if err != nil {
		g.logger.Error(fmt.Sprintf("submitting score of session %s: %s", session.ID(), err))
		return
	}
	if improved {
		g.logger.Info(fmt.Sprintf("new best score %d for player %q", result.Score, result.PlayerName))
	}
}

// Restart deals a new maze for the session and returns its fresh state.
func (g *GameSessionManager) Restart(id uuid.UUID) (game.State, error) {
	session, err := g.Session(id)
	if err != nil {
		return game.State{}, err
	}

	session.Restart()
	g.logger.Info(fmt.Sprintf("restarted session %s", id))
	return session.Snapshot(), nil
}

// Abandon removes the session.
func (g *GameSessionManager) Abandon(id uuid.UUID) error {
	g.Lock()
	defer g.Unlock()

	if _, ok := g.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(g.sessions, id)
	g.logger.Info(fmt.Sprintf("abandoned session %s", id))
	return nil
}

// Count returns the number of running sessions.
func (g *GameSessionManager) Count() int {
	g.RLock()
	defer g.RUnlock()
	return len(g.sessions)
}

// Sweep drops sessions idle for longer than the session TTL and returns how many it dropped.
func (g *GameSessionManager) Sweep() int {
	cutoff := g.now().Add(-g.sessionTTL)

	g.Lock()
	defer g.Unlock()

	dropped := 0
	for id, session := range g.sessions {
		if session.LastActivity().Before(cutoff) {
			delete(g.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		g.logger.Info(fmt.Sprintf("swept %d idle sessions", dropped))
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (g *GameSessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}

// StopAll drops every running session.
func (g *GameSessionManager) StopAll() {
	g.Lock()
	defer g.Unlock()

	clear(g.sessions)
}

// loggingGenerator reports repairs and fallbacks of the wrapped generator.
type loggingGenerator struct {
	*maze.Generator
	logger i.Logger
}

// Generate implements game.Generator.
func (l *loggingGenerator) Generate() *maze.Grid {
	grid, stats := l.GenerateWithStats()
	switch {
	case stats.Fallback:
		l.logger.Warning(fmt.Sprintf("maze %dx%d needed the fallback corridor after %d attempts",
			grid.Width(), grid.Height(), stats.Attempts))
	case stats.Repaired:
		l.logger.Debug(fmt.Sprintf("maze %dx%d repaired, %d attempts", grid.Width(), grid.Height(), stats.Attempts))
	}
	return grid
}
