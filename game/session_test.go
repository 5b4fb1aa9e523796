package game

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step every time it is read.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func newTestGenerator(t *testing.T, seed uint64) *maze.Generator {
	t.Helper()
	gen, err := maze.New(maze.DefaultConfig(), maze.WithSeed(seed))
	require.NoError(t, err)
	return gen
}

// directionBetween returns the direction of a single step from a to b.
func directionBetween(t *testing.T, a, b maze.Position) Direction {
	t.Helper()
	for _, d := range []Direction{Up, Down, Left, Right} {
		dx, dy := d.Delta()
		if a.Add(dx, dy) == b {
			return d
		}
	}
	t.Fatalf("%v and %v are not adjacent", a, b)
	return 0
}

func TestNewSession(t *testing.T) {
	gen := newTestGenerator(t, 1)

	t.Run("valid", func(t *testing.T) {
		s, err := NewSession("  alice ", gen)
		require.NoError(t, err)

		state := s.Snapshot()
		assert.Equal(t, "alice", state.PlayerName)
		assert.Equal(t, maze.Position{X: 1, Y: 1}, state.Player)
		assert.False(t, state.Won)
		assert.Nil(t, state.FinishedAt)
		assert.Positive(t, state.Optimal)
		assert.Equal(t, maze.DefaultWidth, state.Maze.Width())
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"", "   ", "a-name-that-is-way-too-long-for-the-board"} {
			_, err := NewSession(name, gen)
			assert.ErrorIs(t, err, ErrInvalidPlayerName)
		}
	})

	t.Run("nil generator", func(t *testing.T) {
		_, err := NewSession("bob", nil)
		assert.ErrorIs(t, err, ErrNilGenerator)
	})
}

func TestSessionMove(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Second}
	s, err := NewSession("alice", newTestGenerator(t, 3), WithClock(clock.Now))
	require.NoError(t, err)

	t.Run("into the border is ignored", func(t *testing.T) {
		before := s.Snapshot()
		res := s.Move(Left)
		assert.False(t, res.Moved)
		assert.Equal(t, maze.Position{X: 1, Y: 1}, res.Player)
		assert.Equal(t, 0, res.Moves)
		assert.Equal(t, before.Version, res.Version)
		assert.Equal(t, 1, s.Snapshot().Attempts)
	})

	t.Run("invalid direction is ignored", func(t *testing.T) {
		res := s.Move(Direction(0))
		assert.False(t, res.Moved)
		assert.Equal(t, 1, s.Snapshot().Attempts)
	})

	t.Run("shortest route wins with full score", func(t *testing.T) {
		state := s.Snapshot()
		route, ok := state.Maze.ShortestPath(state.Player, state.Maze.Exit())
		require.True(t, ok)

		var res MoveResult
		for i := 1; i < len(route); i++ {
			res = s.Move(directionBetween(t, route[i-1], route[i]))
			require.True(t, res.Moved, "step %d", i)
		}

		assert.True(t, res.Won)
		assert.Equal(t, state.Maze.Exit(), res.Player)
		assert.Equal(t, len(route)-1, res.Moves)

		result, ok := s.Result()
		require.True(t, ok)
		assert.Equal(t, 1000, result.Score)
		assert.Equal(t, "alice", result.PlayerName)
		assert.Equal(t, s.ID(), result.SessionID)
		assert.Equal(t, string(maze.AlgorithmDFS), result.Algorithm)
		assert.Positive(t, result.DurationMs)
		assert.NotNil(t, s.Snapshot().FinishedAt)
	})

	t.Run("moves after winning are ignored", func(t *testing.T) {
		before := s.Snapshot()
		for _, d := range []Direction{Up, Down, Left, Right} {
			res := s.Move(d)
			assert.False(t, res.Moved)
			assert.True(t, res.Won)
		}
		assert.Equal(t, before.Player, s.Snapshot().Player)
		assert.Equal(t, before.Version, s.Snapshot().Version)
	})

	t.Run("restart deals a new maze", func(t *testing.T) {
		before := s.Snapshot()
		s.Restart()
		after := s.Snapshot()

		assert.False(t, after.Won)
		assert.Equal(t, maze.Position{X: 1, Y: 1}, after.Player)
		assert.Zero(t, after.Moves)
		assert.Greater(t, after.Version, before.Version)
		assert.NotSame(t, before.Maze, after.Maze)

		_, ok := s.Result()
		assert.False(t, ok)
	})
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"up", Up}, {"W", Up}, {"ArrowUp", Up}, {"north", Up},
		{"down", Down}, {"s", Down}, {"ArrowDown", Down},
		{"LEFT", Left}, {"a", Left}, {"ArrowLeft", Left},
		{" right ", Right}, {"D", Right}, {"ArrowRight", Right}, {"east", Right},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDirection("diagonal")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("ArrowLeft")))
	assert.Equal(t, Left, d)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "left", string(text))
}

func TestDirectionFromSwipe(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
		want   Direction
		ok     bool
	}{
		{"too short", 10, -25, 0, false},
		{"exactly threshold", 30, 30, 0, false},
		{"right", 45, 10, Right, true},
		{"left", -80, 40, Left, true},
		{"down", 5, 31, Down, true},
		{"up", -20, -60, Up, true},
		{"tie prefers vertical", 50, -50, Up, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DirectionFromSwipe(tt.dx, tt.dy)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore(t *testing.T) {
	assert.Equal(t, 1000, Score(20, 20))
	assert.Equal(t, 500, Score(20, 40))
	assert.Equal(t, 1000, Score(20, 10), "fewer moves than optimal is capped")
	assert.Equal(t, 0, Score(0, 10))
	assert.Equal(t, 0, Score(10, 0))
}
