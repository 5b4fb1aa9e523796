package game

import "github.com/beka-birhanu/vinom-maze/maze"

// Generator produces fresh, validated mazes.
type Generator interface {
	// Generate returns a new maze whose exit is reachable from its start.
	Generate() *maze.Grid

	// Config returns the dimensions and algorithm of the generated mazes.
	Config() maze.Config
}

var _ Generator = &maze.Generator{}
