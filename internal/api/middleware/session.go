package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// sessionKey is the echo context key the resolved session is stored under.
const sessionKey = "session"

// Resolver maps a gateway ticket to its session.
type Resolver interface {
	Resolve(ctx context.Context, ticket string) (*domain.Session, error)
}

// Session resolves the bearer ticket into a session and stashes it in the
// request context. It never fails the request by itself; routes that can be
// used anonymously (public shop pages, guest carts) share it with protected
// ones. Enforcement is done by RequireSession and RequireRoles.
func Session(resolver Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ticket := bearerToken(c)
			if ticket != "" {
				if sess, err := resolver.Resolve(c.Request().Context(), ticket); err == nil {
					c.Set(sessionKey, sess)
				}
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests without an active session, and enforces
// the auto-created account gate: an auto-provisioned user may do nothing but
// change their password until they have set a real one. The gate runs before
// any role check on purpose.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if sess == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if sess.User.IsAutoCreated && c.Path() != "/session/password" {
				return echo.NewHTTPError(http.StatusForbidden, "password change required")
			}
			return next(c)
		}
	}
}

// RequireRoles enforces role-based access on top of RequireSession.
func RequireRoles(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if sess == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if _, ok := allowed[sess.User.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session resolved for this request, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionKey).(*domain.Session)
	return sess
}

// SetSession is exported for handler tests.
func SetSession(c echo.Context, sess *domain.Session) {
	c.Set(sessionKey, sess)
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
