/*
Package maze generates rectangular block mazes for the vinom maze game.

A maze is a Grid of wall, path and exit blocks. Corridors are carved on a step-2 lattice
starting at the entry block (1,1) so that walls remain between parallel corridors. The
exit block sits at (width-2, height-2).

Every grid handed out by a Generator is validated with a breadth-first search. When the
randomized carve leaves the exit unreachable, a repair pass carves a corridor back to the
entry; if that still fails the whole generation is retried. Callers never observe a
disconnected maze.
*/
package maze

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
)

const (
	minDimension = 5
	maxDimension = 101

	DefaultWidth  = 15
	DefaultHeight = 20

	defaultMaxAttempts = 8

	exitBiasWeight = 0.3 // weight of the exit bias in a candidate score
	randomWeight   = 0.7 // weight of the random term in a candidate score
	scoreOffset    = 0.5

	braidProb  = 0.2 // chance to also carve the second ranked candidate
	branchProb = 0.3 // chance to carve a side branch during repair
)

// Algorithm names a carving strategy.
type Algorithm string

const (
	AlgorithmDFS    Algorithm = "dfs"    // Randomized depth-first carve biased toward the exit.
	AlgorithmWilson Algorithm = "wilson" // Loop-erased random walks (Wilson's algorithm).
)

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")
	ErrUnknownAlgorithm  = errors.New("unknown maze algorithm")
)

// RandSource yields uniformly distributed floats in [0, 1).
// *math/rand/v2.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// Config describes the mazes a Generator produces.
type Config struct {
	Width     int       // Number of columns, including the border ring.
	Height    int       // Number of rows, including the border ring.
	Algorithm Algorithm // Carving strategy; empty means AlgorithmDFS.
}

// DefaultConfig returns the 15x20 depth-first configuration.
func DefaultConfig() Config {
	return Config{Width: DefaultWidth, Height: DefaultHeight, Algorithm: AlgorithmDFS}
}

// Validate checks dimensions and algorithm.
func (c Config) Validate() error {
	if min(c.Width, c.Height) < minDimension || max(c.Width, c.Height) > maxDimension {
		return fmt.Errorf("%w: %dx%d, each side must be within [%d, %d]",
			ErrInvalidDimensions, c.Width, c.Height, minDimension, maxDimension)
	}
	switch c.Algorithm {
	case "", AlgorithmDFS, AlgorithmWilson:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAlgorithm, c.Algorithm)
}

// Stats reports how a grid was produced.
type Stats struct {
	Attempts int  // Number of carve attempts, starting at 1.
	Repaired bool // Whether the repair pass ran at least once.
	Fallback bool // Whether the deterministic corridor had to be carved.
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand makes the generator draw from r.
func WithRand(r RandSource) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

// WithSeed makes the generator reproducible for a given seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithMaxAttempts bounds how many full carve attempts run before the deterministic fallback.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// Generator produces validated mazes. It is safe for concurrent use.
type Generator struct {
	cfg         Config
	rng         RandSource
	maxAttempts int
	carveFn     func(*Grid) // carving strategy picked from cfg.Algorithm
	mu          sync.Mutex  // guards rng
}

// New returns a Generator for the given configuration.
func New(cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmDFS
	}

	g := &Generator{
		cfg:         cfg,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	switch cfg.Algorithm {
	case AlgorithmWilson:
		g.carveFn = g.carveWilson
	default:
		g.carveFn = g.carveDFS
	}
	return g, nil
}

// Generate is a convenience wrapper that builds a one-off Generator and returns a maze.
func Generate(width, height int) (*Grid, error) {
	g, err := New(Config{Width: width, Height: height})
	if err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate returns a fresh maze whose exit is reachable from the start.
func (g *Generator) Generate() *Grid {
	grid, _ := g.GenerateWithStats()
	return grid
}

// GenerateWithStats is Generate that also reports attempts and repairs.
func (g *Generator) GenerateWithStats() (*Grid, Stats) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var stats Stats
	for stats.Attempts < g.maxAttempts {
		stats.Attempts++

		grid := g.carveAttempt()
		if grid.Reachable(grid.Start(), grid.Exit()) {
			return grid, stats
		}

		stats.Repaired = true
		g.repair(grid)
		if grid.Reachable(grid.Start(), grid.Exit()) {
			return grid, stats
		}
	}

	stats.Fallback = true
	grid := g.carveAttempt()
	carveCorridor(grid)
	return grid, stats
}

// carveAttempt runs the carving strategy on a fresh all-wall grid and places the exit.
func (g *Generator) carveAttempt() *Grid {
	grid := newGrid(g.cfg.Width, g.cfg.Height)
	g.carveFn(grid)
	exit := grid.Exit()
	grid.cells[exit.Y][exit.X] = Exit
	return grid
}

// candidate is a lattice block two steps away from the current block.
type candidate struct {
	pos     Position // block to carve and push
	between Position // bridge block between current and pos
	score   float64
}

// candidates lists the interior wall blocks two steps away from current.
func candidates(grid *Grid, current Position) []candidate {
	result := make([]candidate, 0, len(steps))
	for _, step := range steps {
		pos := current.Add(2*step.X, 2*step.Y)
		if !grid.isInterior(pos) || grid.At(pos) != Wall {
			continue
		}
		result = append(result, candidate{pos: pos, between: current.Add(step.X, step.Y)})
	}
	return result
}

// rank scores every candidate and sorts them best first.
func (g *Generator) rank(cs []candidate, current, exit Position, span int) {
	exitBias := 1 - float64(manhattan(current, exit))/float64(span)
	for i := range cs {
		cs[i].score = exitBias*exitBiasWeight + g.rng.Float64()*randomWeight - scoreOffset
	}
	slices.SortStableFunc(cs, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})
}

// carveDFS carves corridors with an explicit frontier stack.
func (g *Generator) carveDFS(grid *Grid) {
	start, exit := grid.Start(), grid.Exit()
	span := grid.width + grid.height

	grid.carve(start)
	frontier := []Position{start}

	for len(frontier) > 0 {
		current := frontier[len(frontier)-1]

		cs := candidates(grid, current)
		if len(cs) == 0 {
			frontier = frontier[:len(frontier)-1]
			continue
		}

		g.rank(cs, current, exit, span)

		if len(cs) > 1 && g.rng.Float64() < braidProb {
			grid.carve(cs[1].pos)
			grid.carve(cs[1].between)
		}

		next := cs[0]
		grid.carve(next.pos)
		grid.carve(next.between)
		frontier = append(frontier, next.pos)
	}
}

// repair walks from the block left of the exit back to the start, one axis per step,
// carving as it goes. It then opens the blocks around the start and the exit.
func (g *Generator) repair(grid *Grid) {
	start, exit := grid.Start(), grid.Exit()
	current := Position{X: exit.X - 1, Y: exit.Y}
	limit := grid.width + grid.height

	for step := 0; (current.X > start.X || current.Y > start.Y) && step < limit; step++ {
		grid.carve(current)

		moveX := g.rng.Float64() < 0.5
		if current.Y <= start.Y {
			moveX = true
		} else if current.X <= start.X {
			moveX = false
		}

		if moveX {
			current.X--
			if g.rng.Float64() < branchProb && current.Y > start.Y+1 {
				grid.carve(Position{X: current.X, Y: current.Y - 1})
			}
		} else {
			current.Y--
			if g.rng.Float64() < branchProb && current.X > start.X+1 {
				grid.carve(Position{X: current.X - 1, Y: current.Y})
			}
		}
	}

	grid.carve(start)
	grid.carve(start.Add(1, 0))
	grid.carve(start.Add(0, 1))
	grid.carve(exit.Add(0, -1))
	grid.carve(exit.Add(-1, 0))
}

// carveCorridor opens an L-shaped corridor along the start row and the exit column.
// It uses no randomness and always connects start and exit.
func carveCorridor(grid *Grid) {
	start, exit := grid.Start(), grid.Exit()
	for x := start.X; x <= exit.X; x++ {
		grid.carve(Position{X: x, Y: start.Y})
	}
	for y := start.Y; y <= exit.Y; y++ {
		grid.carve(Position{X: exit.X, Y: y})
	}
}
