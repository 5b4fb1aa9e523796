package maze

// walkStepsPerCell bounds a single random walk relative to the lattice size.
const walkStepsPerCell = 64

// latticeCells returns every interior block reachable from the start in steps of two.
func latticeCells(grid *Grid) []Position {
	start := grid.Start()
	var cells []Position
	for y := start.Y; y < grid.height-1; y += 2 {
		for x := start.X; x < grid.width-1; x += 2 {
			cells = append(cells, Position{X: x, Y: y})
		}
	}
	return cells
}

// latticeNeighbors returns the interior lattice blocks two steps away from pos.
func latticeNeighbors(grid *Grid, pos Position) []Position {
	result := make([]Position, 0, len(steps))
	for _, step := range steps {
		next := pos.Add(2*step.X, 2*step.Y)
		if grid.isInterior(next) {
			result = append(result, next)
		}
	}
	return result
}

// intn maps a float draw onto [0, n).
func (g *Generator) intn(n int) int {
	i := int(g.rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// carveWilson carves a uniform spanning tree of the lattice with loop-erased random walks.
// Each walk starts at a block outside the maze and wanders until it hits the maze; only the
// last exit taken from every visited block is kept, which erases loops. The kept route is
// then carved into the maze.
func (g *Generator) carveWilson(grid *Grid) {
	cells := latticeCells(grid)
	start := grid.Start()
	maxWalk := walkStepsPerCell * len(cells)

	inMaze := map[Position]struct{}{start: {}}
	grid.carve(start)

	for _, cell := range cells {
		if _, ok := inMaze[cell]; ok {
			continue
		}

		exits, ok := g.randomWalk(grid, cell, inMaze, maxWalk)
		if !ok {
			// Leave the block to the validation pass.
			continue
		}

		for current := cell; ; {
			if _, ok := inMaze[current]; ok {
				break
			}
			next := exits[current]
			grid.carve(current)
			grid.carve(Position{X: (current.X + next.X) / 2, Y: (current.Y + next.Y) / 2})
			inMaze[current] = struct{}{}
			current = next
		}
	}
}

// randomWalk wanders from `from` until it reaches a block in the maze and returns the last
// exit taken from every block it visited. ok is false when the walk exceeds maxSteps.
func (g *Generator) randomWalk(grid *Grid, from Position, inMaze map[Position]struct{}, maxSteps int) (map[Position]Position, bool) {
	exits := make(map[Position]Position)
	current := from
	for step := 0; step < maxSteps; step++ {
		neighbors := latticeNeighbors(grid, current)
		if len(neighbors) == 0 {
			return nil, false
		}
		next := neighbors[g.intn(len(neighbors))]
		exits[current] = next
		if _, ok := inMaze[next]; ok {
			return exits, true
		}
		current = next
	}
	return nil, false
}
