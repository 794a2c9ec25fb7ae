package session

import (
	"github.com/veritas-health/medresearch/models"
)

// Store interface for session history management
type Store interface {
	// Ensure returns the session with the given id, creating it (with a
	// fresh id when the given one is empty or unknown).
	Ensure(id string) (Session, error)
	// Get returns the session or nil when it does not exist.
	Get(id string) (Session, error)
}

// Session interface for per-session operations
type Session interface {
	ID() string
	Append(exchange models.Exchange) error
	History() ([]models.Exchange, error)
}
