package i

import (
	"context"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/google/uuid"
)

// GameSessionManager hosts maze sessions.
type GameSessionManager interface {
	// NewSession deals a maze for player. A nil cfg, or any zero field of it, selects
	// the default maze configuration.
	NewSession(player string, cfg *maze.Config) (*game.Session, error)

	// Session returns a running session.
	Session(id uuid.UUID) (*game.Session, error)

	// Move applies a move and records the result once the exit is reached.
	Move(ctx context.Context, id uuid.UUID, dir game.Direction) (game.MoveResult, error)

	// Restart deals a new maze for a running session.
	Restart(id uuid.UUID) (game.State, error)

	// Abandon removes a session.
	Abandon(id uuid.UUID) error
}
