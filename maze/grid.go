package maze

import (
	"encoding/json"
	"strings"
)

// Grid is a rectangular block maze indexed [row][col].
// The start block is always (1,1) and the exit block (width-2, height-2).
type Grid struct {
	width  int          // Number of columns.
	height int          // Number of rows.
	cells  [][]CellKind // Block kinds, indexed [row][col].
}

// newGrid returns a width x height grid made entirely of walls.
func newGrid(width, height int) *Grid {
	cells := make([][]CellKind, height)
	for row := range cells {
		cells[row] = make([]CellKind, width) // Wall is the zero value.
	}
	return &Grid{width: width, height: height, cells: cells}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Start returns the fixed entry block (1,1).
func (g *Grid) Start() Position { return Position{X: 1, Y: 1} }

// Exit returns the fixed exit block (width-2, height-2).
func (g *Grid) Exit() Position { return Position{X: g.width - 2, Y: g.height - 2} }

// InBound reports whether pos lies inside the grid.
func (g *Grid) InBound(pos Position) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

// At returns the kind of the block at pos. Out of bound positions read as Wall.
func (g *Grid) At(pos Position) CellKind {
	if !g.InBound(pos) {
		return Wall
	}
	return g.cells[pos.Y][pos.X]
}

// IsWall reports whether pos is a wall or outside the grid.
func (g *Grid) IsWall(pos Position) bool {
	return g.At(pos) == Wall
}

// isInterior reports whether pos lies strictly inside the border ring.
func (g *Grid) isInterior(pos Position) bool {
	return pos.X > 0 && pos.X < g.width-1 && pos.Y > 0 && pos.Y < g.height-1
}

// carve turns the block at pos into a path unless it is the exit.
func (g *Grid) carve(pos Position) {
	if g.cells[pos.Y][pos.X] != Exit {
		g.cells[pos.Y][pos.X] = Path
	}
}

// Rows returns a copy of the block kinds, indexed [row][col].
func (g *Grid) Rows() [][]CellKind {
	rows := make([][]CellKind, g.height)
	for row := range g.cells {
		rows[row] = append([]CellKind(nil), g.cells[row]...)
	}
	return rows
}

// Count returns how many blocks have the given kind.
func (g *Grid) Count(kind CellKind) int {
	n := 0
	for _, row := range g.cells {
		for _, cell := range row {
			if cell == kind {
				n++
			}
		}
	}
	return n
}

// Move computes the position reached by stepping dx columns and dy rows from `from`.
// Moves that leave the grid or land on a wall are ignored and return `from` unchanged
// with won == false. won is true when the reached position is the exit.
func (g *Grid) Move(from Position, dx, dy int) (to Position, won bool) {
	to = from.Add(dx, dy)
	if !g.InBound(to) || g.IsWall(to) {
		return from, false
	}
	return to, to == g.Exit()
}

// MarshalJSON encodes the grid as its dimensions, fixed points and rows of cell kinds.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Width  int          `json:"width"`
		Height int          `json:"height"`
		Start  Position     `json:"start"`
		Exit   Position     `json:"exit"`
		Cells  [][]CellKind `json:"cells"`
	}{
		Width:  g.width,
		Height: g.height,
		Start:  g.Start(),
		Exit:   g.Exit(),
		Cells:  g.cells,
	})
}

// String renders the grid as text: '#' for walls, ' ' for paths, 'E' for the exit
// and 'S' for the start.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow((g.width + 1) * g.height)
	start := g.Start()
	for row := range g.cells {
		for col, cell := range g.cells[row] {
			switch {
			case cell == Exit:
				sb.WriteByte('E')
			case row == start.Y && col == start.X:
				sb.WriteByte('S')
			case cell == Wall:
				sb.WriteByte('#')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
