package i

import (
	"time"

	"github.com/google/uuid"
)

// Tokenizer issues and checks tokens that grant control of a single maze session.
type Tokenizer interface {
	// Issue creates a token bound to sessionID that expires after ttl.
	Issue(sessionID uuid.UUID, ttl time.Duration) (string, error)

	// SessionID validates a token and returns the session it grants access to.
	SessionID(token string) (uuid.UUID, error)
}
