package i

import (
	"context"
	"errors"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/google/uuid"
)

// ErrResultNotFound is returned by HistoryRepo lookups that match nothing.
var ErrResultNotFound = errors.New("result not found")

// HistoryRepo defines persistence of finished maze runs.
type HistoryRepo interface {
	// Save inserts or replaces a result, keyed by its ID.
	Save(ctx context.Context, result *game.Result) error

	// ByID retrieves a result by its unique ID.
	// Returns ErrResultNotFound when no such result exists.
	ByID(ctx context.Context, id uuid.UUID) (*game.Result, error)

	// Recent returns up to limit results, most recently finished first.
	Recent(ctx context.Context, limit int) ([]*game.Result, error)
}
