package game

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Direction is one of the four moves a player can make.
type Direction uint8

const (
	Up Direction = iota + 1
	Down
	Left
	Right
)

// minSwipeDistance is the smallest swipe, in screen units, that counts as a move.
const minSwipeDistance = 30

var ErrInvalidDirection = errors.New("invalid direction")

var (
	// directionNames maps every accepted spelling to a direction. Keys are lowercase.
	directionNames = map[string]Direction{
		"up": Up, "north": Up, "w": Up, "arrowup": Up,
		"down": Down, "south": Down, "s": Down, "arrowdown": Down,
		"left": Left, "west": Left, "a": Left, "arrowleft": Left,
		"right": Right, "east": Right, "d": Right, "arrowright": Right,
	}

	deltas = map[Direction][2]int{
		Up:    {0, -1},
		Down:  {0, 1},
		Left:  {-1, 0},
		Right: {1, 0},
	}
)

// ParseDirection accepts direction names, compass names, WASD keys and arrow key names,
// in any case.
func ParseDirection(s string) (Direction, error) {
	if d, ok := directionNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// DirectionFromSwipe turns a swipe delta into a direction along its dominant axis.
// Swipes shorter than the minimum distance on both axes are ignored.
func DirectionFromSwipe(dx, dy float64) (Direction, bool) {
	if math.Abs(dx) <= minSwipeDistance && math.Abs(dy) <= minSwipeDistance {
		return 0, false
	}
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return Right, true
		}
		return Left, true
	}
	if dy > 0 {
		return Down, true
	}
	return Up, true
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	_, ok := deltas[d]
	return ok
}

// Delta returns the column and row offsets of a single step.
func (d Direction) Delta() (dx, dy int) {
	delta := deltas[d]
	return delta[0], delta[1]
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, ErrInvalidDirection
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
