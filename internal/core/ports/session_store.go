package ports

import (
	"context"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// SessionStore is the persisted copy of session state, the gateway analog
// of the browser's local storage. Implementations must treat Save as a
// whole-value replace; partial updates are not part of the contract.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	// Find returns domain.ErrSessionNotFound when no session exists for id.
	Find(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// InflightLocker serialises point-affecting actions per session: at most one
// instance of a given action may run at a time for a given session.
type InflightLocker interface {
	// Acquire returns false when the same (sessionID, action) pair is
	// already held.
	Acquire(ctx context.Context, sessionID, action string) (bool, error)
	Release(ctx context.Context, sessionID, action string) error
}
