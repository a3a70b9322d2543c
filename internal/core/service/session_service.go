package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

const registeredMessage = "Account created. Check your email to verify your account before logging in."

// SessionService establishes, validates, and tears down authenticated
// sessions. It keeps two copies of every session: an in-memory map and the
// persisted store. It writes both on every mutation, whole-value, so a
// reader never observes one copy ahead of the other.
type SessionService struct {
	backend   ports.Backend
	store     ports.SessionStore
	jwtSecret string
	ticketTTL time.Duration
	logger    zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewSessionService(backend ports.Backend, store ports.SessionStore, jwtSecret string, ticketTTL time.Duration, logger zerolog.Logger) *SessionService {
	if ticketTTL <= 0 {
		ticketTTL = 24 * time.Hour
	}
	return &SessionService{
		backend:   backend,
		store:     store,
		jwtSecret: jwtSecret,
		ticketTTL: ticketTTL,
		logger:    logger,
		sessions:  make(map[string]*domain.Session),
	}
}

// Bootstrap restores a session from a persisted ticket and validates its
// credential against the backend. It always terminates ready, whatever the
// outcome:
//   - no ticket, unparseable ticket, or no stored session → ready, empty.
//   - credential rejected upstream → both session copies destroyed, ready, empty.
//   - backend unreachable → persisted copy left intact, ready, empty, degraded.
//   - validated → snapshot replaced from the profile response, ready, active.
func (s *SessionService) Bootstrap(ctx context.Context, ticket string) (*ports.BootstrapResult, error) {
	empty := &ports.BootstrapResult{Ready: true}

	if ticket == "" {
		return empty, nil
	}

	sid, err := s.parseTicket(ticket)
	if err != nil {
		return empty, nil
	}

	sess, err := s.find(ctx, sid)
	if err != nil {
		return empty, nil
	}

	profile, err := s.backend.GetProfile(ctx, sess.Credential)
	switch {
	case err == nil:
		sess.User = *profile
		sess.RefreshedAt = time.Now().UTC()
		if err := s.put(ctx, sess); err != nil {
			return nil, err
		}
		user := sess.User
		return &ports.BootstrapResult{Ready: true, User: &user, Ticket: ticket}, nil

	case errors.Is(err, domain.ErrUpstreamUnavailable):
		// Not proof the credential is bad: keep the persisted copy so a
		// later bootstrap can retry, but do not activate the session.
		s.logger.Warn().Err(err).Str("session_id", sid).Msg("bootstrap validation degraded")
		return &ports.BootstrapResult{Ready: true, Degraded: true}, nil

	default:
		// Rejected token, or any other validation failure: stale session.
		s.logger.Info().Err(err).Str("session_id", sid).Msg("clearing stale session")
		s.drop(ctx, sid)
		return empty, nil
	}
}

// Login authenticates against the backend and, when the account's email is
// verified, activates a session. Unverified accounts get ErrEmailNotVerified
// and nothing is persisted.
func (s *SessionService) Login(ctx context.Context, email, password string) (*ports.LoginOutcome, error) {
	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if !result.User.IsEmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		ID:          uuid.NewString(),
		Credential:  result.Token,
		User:        result.User,
		CreatedAt:   now,
		RefreshedAt: now,
	}
	if err := s.put(ctx, sess); err != nil {
		return nil, err
	}

	ticket, err := s.mintTicket(sess)
	if err != nil {
		s.drop(ctx, sess.ID)
		return nil, err
	}

	s.logger.Info().Str("session_id", sess.ID).Str("user_id", sess.User.ID).Str("role", sess.User.Role).Msg("session established")
	return &ports.LoginOutcome{Ticket: ticket, User: sess.User}, nil
}

// Register relays registration and never authenticates: a separate email
// verification step is always required before login is possible.
func (s *SessionService) Register(ctx context.Context, data ports.RegisterData) (string, error) {
	if _, err := s.backend.Register(ctx, data); err != nil {
		return "", err
	}
	return registeredMessage, nil
}

// Logout destroys both session copies synchronously. No backend call.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	s.drop(ctx, sessionID)
	s.logger.Info().Str("session_id", sessionID).Msg("session destroyed")
	return nil
}

// Refresh re-fetches the authoritative user snapshot and overwrites both
// copies. A rejected credential tears the session down.
func (s *SessionService) Refresh(ctx context.Context, sessionID string) (*domain.UserSnapshot, error) {
	sess, err := s.find(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	profile, err := s.backend.GetProfile(ctx, sess.Credential)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialRejected) {
			s.drop(ctx, sessionID)
		}
		return nil, err
	}

	sess.User = *profile
	sess.RefreshedAt = time.Now().UTC()
	if err := s.put(ctx, sess); err != nil {
		return nil, err
	}

	user := sess.User
	return &user, nil
}

// Resolve maps a ticket to its session, preferring the in-memory copy and
// falling back to the store (process restarts keep sessions alive).
func (s *SessionService) Resolve(ctx context.Context, ticket string) (*domain.Session, error) {
	sid, err := s.parseTicket(ticket)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}
	sess, err := s.find(ctx, sid)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}
	return sess, nil
}

func (s *SessionService) VerifyEmail(ctx context.Context, token string) (string, error) {
	return s.backend.VerifyEmail(ctx, token)
}

// ChangePassword relays the change and, for auto-created accounts, refreshes
// the snapshot immediately so the forced password gate lifts without waiting
// for the next navigation.
func (s *SessionService) ChangePassword(ctx context.Context, sessionID, currentPassword, newPassword string) (string, error) {
	sess, err := s.find(ctx, sessionID)
	if err != nil {
		return "", err
	}

	msg, err := s.backend.ChangePassword(ctx, sess.Credential, currentPassword, newPassword)
	if err != nil {
		return "", err
	}

	if sess.User.IsAutoCreated {
		if _, err := s.Refresh(ctx, sessionID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("post password-change refresh failed")
		}
	}
	return msg, nil
}

// ── internal ──

func (s *SessionService) find(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		clone := *sess
		return &clone, nil
	}

	stored, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[id] = stored
	s.mu.Unlock()

	clone := *stored
	return &clone, nil
}

// put writes both copies; the store first, so an in-memory session never
// outlives a failed persist.
func (s *SessionService) put(ctx context.Context, sess *domain.Session) error {
	if err := s.store.Save(ctx, sess); err != nil {
		return err
	}
	clone := *sess
	s.mu.Lock()
	s.sessions[sess.ID] = &clone
	s.mu.Unlock()
	return nil
}

func (s *SessionService) drop(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to delete persisted session")
	}
}

func (s *SessionService) mintTicket(sess *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":  sess.ID,
		"role": sess.User.Role,
		"exp":  time.Now().Add(s.ticketTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *SessionService) parseTicket(ticket string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(ticket, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrNotAuthenticated
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", domain.ErrNotAuthenticated
	}
	return sid, nil
}
