package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pointplay/rewards-gateway/internal/api/metrics"
	"github.com/pointplay/rewards-gateway/internal/api/middleware"
	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
	"github.com/pointplay/rewards-gateway/internal/core/service"
)

// SessionHandler exposes the session lifecycle and the route guard to the
// SPA shell.
type SessionHandler struct {
	sessions ports.SessionService
	guard    *service.Guard
}

func NewSessionHandler(sessions ports.SessionService, guard *service.Guard) *SessionHandler {
	return &SessionHandler{sessions: sessions, guard: guard}
}

type bootstrapResponse struct {
	Ready    bool                 `json:"ready"`
	User     *domain.UserSnapshot `json:"user,omitempty"`
	Ticket   string               `json:"ticket,omitempty"`
	Degraded bool                 `json:"degraded,omitempty"`
}

// Bootstrap validates a persisted ticket and reports the resulting session
// state. Always answers ready; an unusable ticket yields an empty state, not
// an error.
//
// @Summary      Bootstrap session state
// @Tags         session
// @Produce      json
// @Success      200 {object} bootstrapResponse
// @Router       /session/bootstrap [post]
func (h *SessionHandler) Bootstrap(c echo.Context) error {
	result, err := h.sessions.Bootstrap(c.Request().Context(), bearerToken(c))
	if err != nil {
		return err
	}

	switch {
	case result.User != nil:
		metrics.SessionBootstrapsTotal.WithLabelValues("active").Inc()
	case result.Degraded:
		metrics.SessionBootstrapsTotal.WithLabelValues("degraded").Inc()
	default:
		metrics.SessionBootstrapsTotal.WithLabelValues("empty").Inc()
	}

	return c.JSON(http.StatusOK, bootstrapResponse{
		Ready:    result.Ready,
		User:     result.User,
		Ticket:   result.Ticket,
		Degraded: result.Degraded,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Ticket string              `json:"ticket"`
	User   domain.UserSnapshot `json:"user"`
}

// Login authenticates against the rewards backend and establishes a session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body body loginRequest true "Credentials"
// @Success      200 {object} loginResponse
// @Failure      401 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	outcome, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Ticket: outcome.Ticket, User: outcome.User})
}

type registerRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	ReferralCode string `json:"referralCode,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account. No session is established: email
// verification must happen first.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body body registerRequest true "Registration details"
// @Success      201 {object} messageResponse
// @Router       /session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.sessions.Register(c.Request().Context(), ports.RegisterData{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: msg})
}

// Logout destroys the session. Both the in-memory and persisted copies are
// gone when this returns.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		// Logging out without a session is a no-op, not an error.
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.sessions.Logout(c.Request().Context(), sess.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Refresh re-fetches the authoritative user snapshot.
//
// @Summary      Refresh user snapshot
// @Tags         session
// @Produce      json
// @Success      200 {object} domain.UserSnapshot
// @Router       /session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	user, err := h.sessions.Refresh(c.Request().Context(), sess.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

type guardRequest struct {
	Route domain.RouteMeta `json:"route"`
}

// GuardDecide evaluates whether the shell may render a route. The session
// state is derived from the request's ticket: an absent or unusable ticket
// is an active decision input (ready, no user), not an auth failure.
//
// @Summary      Evaluate route guard
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body body guardRequest true "Route metadata"
// @Success      200 {object} domain.GuardDecision
// @Router       /session/guard [post]
func (h *SessionHandler) GuardDecide(c echo.Context) error {
	var req guardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	state := domain.SessionState{Ready: true}
	if sess := middleware.SessionFrom(c); sess != nil {
		user := sess.User
		state.User = &user
	}

	decision := h.guard.Decide(state, req.Route)
	metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Action)).Inc()
	return c.JSON(http.StatusOK, decision)
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyEmail relays an email verification token to the backend.
//
// @Summary      Verify email
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body body verifyEmailRequest true "Verification token"
// @Success      200 {object} messageResponse
// @Router       /session/verify-email [post]
func (h *SessionHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.sessions.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword relays a password change. Auto-created accounts may omit
// the current password; the backend decides whether that is acceptable.
//
// @Summary      Change password
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body body changePasswordRequest true "Passwords"
// @Success      200 {object} messageResponse
// @Router       /session/password [post]
func (h *SessionHandler) ChangePassword(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.sessions.ChangePassword(c.Request().Context(), sess.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "unverified_email"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
