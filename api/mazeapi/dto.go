package mazeapi

import (
	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
)

// CreateGameRequest starts a new game. Zero dimensions and an empty algorithm select
// the server defaults.
type CreateGameRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Algorithm  string `json:"algorithm"`
}

func (r *CreateGameRequest) mazeConfig() *maze.Config {
	return &maze.Config{
		Width:     r.Width,
		Height:    r.Height,
		Algorithm: maze.Algorithm(r.Algorithm),
	}
}

// CreateGameResponse carries the new game and the token controlling it.
type CreateGameResponse struct {
	Game  game.State `json:"game"`
	Token string     `json:"token"`
}

// MoveRequest moves the player one block. Direction accepts the names understood by
// game.ParseDirection.
type MoveRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// MoveResponse is the outcome of a move. Game holds the final state on the winning move.
type MoveResponse struct {
	game.MoveResult
	Game *game.State `json:"game,omitempty"`
}

// Swipe is a touch gesture, in pixels.
type Swipe struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ClientMessage is a WebSocket frame sent by the player. Exactly one field is expected.
type ClientMessage struct {
	Direction string `json:"direction,omitempty"`
	Swipe     *Swipe `json:"swipe,omitempty"`
	Restart   bool   `json:"restart,omitempty"`
}

// Server message types.
const (
	MessageState = "state"
	MessageMove  = "move"
	MessageError = "error"
)

// ServerMessage is a WebSocket frame sent to the player.
type ServerMessage struct {
	Type  string        `json:"type"`
	Game  *game.State   `json:"game,omitempty"`
	Move  *MoveResponse `json:"move,omitempty"`
	Error string        `json:"error,omitempty"`
}
