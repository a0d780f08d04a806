// Package session stores per-user conversation state.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/bibliobot/bibliobot-server/internal/domain"
)

// ErrNotFound is returned by Get when the user has no session.
var ErrNotFound = errors.New("session not found")

// Store persists conversation sessions keyed by user ID.
type Store interface {
	// Get returns the session of userID or ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.Session, error)
	// Set creates or replaces the session.
	Set(ctx context.Context, s *domain.Session) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID string) error
	// Sweep removes sessions last updated before idleBefore and returns how
	// many were removed.
	Sweep(ctx context.Context, idleBefore time.Time) (int, error)
}
