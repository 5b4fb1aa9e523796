package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryHistory struct {
	results []*game.Result
	err     error
	sync.Mutex
}

func (m *memoryHistory) Save(_ context.Context, r *game.Result) error {
	m.Lock()
	defer m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, r)
	return nil
}

func (m *memoryHistory) ByID(_ context.Context, id uuid.UUID) (*game.Result, error) {
	m.Lock()
	defer m.Unlock()
	for _, r := range m.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, i.ErrResultNotFound
}

func (m *memoryHistory) Recent(_ context.Context, limit int) ([]*game.Result, error) {
	m.Lock()
	defer m.Unlock()
	return m.results[:min(limit, len(m.results))], nil
}

type memoryLeaderboard struct {
	best map[string]int
}

func (m *memoryLeaderboard) Submit(_ context.Context, player string, score int) (bool, error) {
	if score <= m.best[player] {
		return false, nil
	}
	m.best[player] = score
	return true, nil
}

func (m *memoryLeaderboard) Top(context.Context, int64) ([]i.Ranking, error) {
	return nil, nil
}

type recordingLogger struct {
	lines []string
	sync.Mutex
}

func (l *recordingLogger) add(level, msg string) {
	l.Lock()
	defer l.Unlock()
	l.lines = append(l.lines, level+" "+msg)
}

func (l *recordingLogger) Debug(msg string)   { l.add("DEBUG", msg) }
func (l *recordingLogger) Info(msg string)    { l.add("INFO", msg) }
func (l *recordingLogger) Warning(msg string) { l.add("WARN", msg) }
func (l *recordingLogger) Error(msg string)   { l.add("ERROR", msg) }

func newTestManager(t *testing.T, mutate func(*Config)) (*GameSessionManager, *memoryHistory, *memoryLeaderboard) {
	t.Helper()
	history := &memoryHistory{}
	board := &memoryLeaderboard{best: map[string]int{}}
	cfg := &Config{
		DefaultMaze: maze.DefaultConfig(),
		MazeOptions: []maze.Option{maze.WithSeed(11)},
		History:     history,
		Leaderboard: board,
		Logger:      &recordingLogger{},
	}
	if mutate != nil {
		mutate(cfg)
	}
	gsm, err := NewGameSessionManager(cfg)
	require.NoError(t, err)
	return gsm, history, board
}

// solve walks the session along its shortest route and returns the last move result.
func solve(t *testing.T, gsm *GameSessionManager, id uuid.UUID) game.MoveResult {
	t.Helper()
	session, err := gsm.Session(id)
	require.NoError(t, err)

	state := session.Snapshot()
	route, ok := state.Maze.ShortestPath(state.Player, state.Maze.Exit())
	require.True(t, ok)

	var res game.MoveResult
	for k := 1; k < len(route); k++ {
		dir := stepDirection(route[k-1], route[k])
		res, err = gsm.Move(context.Background(), id, dir)
		require.NoError(t, err)
		require.True(t, res.Moved)
	}
	return res
}

func stepDirection(a, b maze.Position) game.Direction {
	switch {
	case b.X > a.X:
		return game.Right
	case b.X < a.X:
		return game.Left
	case b.Y > a.Y:
		return game.Down
	default:
		return game.Up
	}
}

func TestNewGameSessionManager(t *testing.T) {
	t.Run("missing history", func(t *testing.T) {
		_, err := NewGameSessionManager(&Config{DefaultMaze: maze.DefaultConfig(), Logger: &recordingLogger{}})
		assert.ErrorIs(t, err, ErrMissingHistory)
	})

	t.Run("missing logger", func(t *testing.T) {
		_, err := NewGameSessionManager(&Config{DefaultMaze: maze.DefaultConfig(), History: &memoryHistory{}})
		assert.ErrorIs(t, err, ErrMissingLogger)
	})

	t.Run("invalid default maze", func(t *testing.T) {
		_, err := NewGameSessionManager(&Config{
			DefaultMaze: maze.Config{Width: 3, Height: 3},
			History:     &memoryHistory{},
			Logger:      &recordingLogger{},
		})
		assert.ErrorIs(t, err, maze.ErrInvalidDimensions)
	})
}

func TestSessionLifecycle(t *testing.T) {
	gsm, history, board := newTestManager(t, nil)

	session, err := gsm.NewSession("alice", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, gsm.Count())
	assert.Equal(t, maze.DefaultWidth, session.Snapshot().Maze.Width())

	res := solve(t, gsm, session.ID())
	assert.True(t, res.Won)

	require.Len(t, history.results, 1)
	result := history.results[0]
	assert.Equal(t, "alice", result.PlayerName)
	assert.Equal(t, session.ID(), result.SessionID)
	assert.Equal(t, 1000, result.Score)
	assert.Equal(t, 1000, board.best["alice"])

	// Further moves neither move nor record again.
	res, err = gsm.Move(context.Background(), session.ID(), game.Up)
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Len(t, history.results, 1)

	state, err := gsm.Restart(session.ID())
	require.NoError(t, err)
	assert.False(t, state.Won)
	assert.Zero(t, state.Moves)

	require.NoError(t, gsm.Abandon(session.ID()))
	assert.ErrorIs(t, gsm.Abandon(session.ID()), ErrSessionNotFound)
	_, err = gsm.Move(context.Background(), session.ID(), game.Up)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNewSessionWithConfig(t *testing.T) {
	gsm, _, _ := newTestManager(t, nil)

	session, err := gsm.NewSession("bob", &maze.Config{Width: 30, Height: 20, Algorithm: maze.AlgorithmWilson})
	require.NoError(t, err)
	state := session.Snapshot()
	assert.Equal(t, 30, state.Maze.Width())
	assert.Equal(t, 20, state.Maze.Height())

	session, err = gsm.NewSession("bob", &maze.Config{Height: 9})
	require.NoError(t, err)
	state = session.Snapshot()
	assert.Equal(t, maze.DefaultWidth, state.Maze.Width(), "zero width falls back to the default")
	assert.Equal(t, 9, state.Maze.Height())

	_, err = gsm.NewSession("bob", &maze.Config{Width: 2, Height: 20})
	assert.ErrorIs(t, err, maze.ErrInvalidDimensions)

	_, err = gsm.NewSession("bob", &maze.Config{Algorithm: "prim"})
	assert.ErrorIs(t, err, maze.ErrUnknownAlgorithm)

	_, err = gsm.NewSession("", nil)
	assert.ErrorIs(t, err, game.ErrInvalidPlayerName)
}

func TestMoveRejectsInvalidDirection(t *testing.T) {
	gsm, _, _ := newTestManager(t, nil)
	session, err := gsm.NewSession("carol", nil)
	require.NoError(t, err)

	_, err = gsm.Move(context.Background(), session.ID(), game.Direction(9))
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestRecordFailureIsLogged(t *testing.T) {
	logger := &recordingLogger{}
	gsm, history, board := newTestManager(t, func(c *Config) { c.Logger = logger })
	history.err = errors.New("disk full")

	session, err := gsm.NewSession("dave", nil)
	require.NoError(t, err)

	res := solve(t, gsm, session.ID())
	assert.True(t, res.Won, "a failed save must not undo the win")
	assert.Equal(t, 1000, board.best["dave"])
	assert.Contains(t, logger.lines, "ERROR saving result of session "+session.ID().String()+": disk full")
}

func TestMaxSessions(t *testing.T) {
	gsm, _, _ := newTestManager(t, func(c *Config) { c.MaxSessions = 2 })

	for _, name := range []string{"a", "b"} {
		_, err := gsm.NewSession(name, nil)
		require.NoError(t, err)
	}
	_, err := gsm.NewSession("c", nil)
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestSweep(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	gsm, _, _ := newTestManager(t, func(c *Config) {
		c.Clock = clock
		c.SessionTTL = 10 * time.Minute
	})

	idle, err := gsm.NewSession("idle", nil)
	require.NoError(t, err)

	now = now.Add(8 * time.Minute)
	active, err := gsm.NewSession("active", nil)
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, gsm.Sweep())

	_, err = gsm.Session(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = gsm.Session(active.ID())
	assert.NoError(t, err)
}

func TestLoggingGeneratorReportsRepairs(t *testing.T) {
	logger := &recordingLogger{}
	gen, err := maze.New(maze.Config{Width: 16, Height: 16}, maze.WithSeed(5))
	require.NoError(t, err)

	grid := (&loggingGenerator{Generator: gen, logger: logger}).Generate()
	assert.True(t, grid.Reachable(grid.Start(), grid.Exit()))
	require.NotEmpty(t, logger.lines, "even-sized mazes always need a repair")
	assert.Contains(t, logger.lines[0], "repaired")
}
