package maze

import "fmt"

// CellKind classifies a single block of the maze grid.
type CellKind uint8

const (
	Wall CellKind = iota // Wall blocks movement.
	Path                 // Path is a carved, walkable block.
	Exit                 // Exit is the single goal block.
)

// String returns the lowercase name of the cell kind.
func (k CellKind) String() string {
	switch k {
	case Wall:
		return "wall"
	case Path:
		return "path"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("CellKind(%d)", uint8(k))
	}
}

// MarshalText encodes the cell kind as "wall", "path" or "exit".
func (k CellKind) MarshalText() ([]byte, error) {
	switch k {
	case Wall, Path, Exit:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown cell kind %d", uint8(k))
}

// UnmarshalText decodes "wall", "path" or "exit".
func (k *CellKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "wall":
		*k = Wall
	case "path":
		*k = Path
	case "exit":
		*k = Exit
	default:
		return fmt.Errorf("unknown cell kind %q", b)
	}
	return nil
}

// Position is a block coordinate: X is the column and Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position shifted by dx columns and dy rows.
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// manhattan returns the Manhattan distance between two positions.
func manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
