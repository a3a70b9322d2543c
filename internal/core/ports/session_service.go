package ports

import (
	"context"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// BootstrapResult is the outcome of session bootstrap. Ready is always true
// on return; bootstrap terminates ready whatever happened. User is nil when
// no session could be activated. Degraded marks the case where the upstream
// could not be reached, so the persisted session was neither confirmed nor
// destroyed.
type BootstrapResult struct {
	Ready    bool
	User     *domain.UserSnapshot
	Ticket   string
	Degraded bool
}

// LoginOutcome is what the login operation hands back to the HTTP layer: a
// gateway session ticket plus the activated snapshot.
type LoginOutcome struct {
	Ticket string
	User   domain.UserSnapshot
}

// SessionService owns the session lifecycle: the single source of truth for
// "is a user logged in and with what role".
type SessionService interface {
	Bootstrap(ctx context.Context, ticket string) (*BootstrapResult, error)
	Login(ctx context.Context, email, password string) (*LoginOutcome, error)
	Register(ctx context.Context, data RegisterData) (string, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, sessionID string) (*domain.UserSnapshot, error)
	// Resolve maps a ticket to its in-memory session, falling back to the
	// persisted copy. Used by middleware on every authenticated request.
	Resolve(ctx context.Context, ticket string) (*domain.Session, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	ChangePassword(ctx context.Context, sessionID, currentPassword, newPassword string) (string, error)
}
