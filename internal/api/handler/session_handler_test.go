package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pointplay/rewards-gateway/internal/api/middleware"
	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
	"github.com/pointplay/rewards-gateway/internal/core/service"
)

type stubSessionService struct {
	bootstrapFn func(ctx context.Context, ticket string) (*ports.BootstrapResult, error)
	loginFn     func(ctx context.Context, email, password string) (*ports.LoginOutcome, error)
	refreshFn   func(ctx context.Context, sessionID string) (*domain.UserSnapshot, error)
	logoutCalls int
}

func (s *stubSessionService) Bootstrap(ctx context.Context, ticket string) (*ports.BootstrapResult, error) {
	if s.bootstrapFn != nil {
		return s.bootstrapFn(ctx, ticket)
	}
	return &ports.BootstrapResult{Ready: true}, nil
}

func (s *stubSessionService) Login(ctx context.Context, email, password string) (*ports.LoginOutcome, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSessionService) Register(_ context.Context, _ ports.RegisterData) (string, error) {
	return "Account created.", nil
}

func (s *stubSessionService) Logout(_ context.Context, _ string) error {
	s.logoutCalls++
	return nil
}

func (s *stubSessionService) Refresh(ctx context.Context, sessionID string) (*domain.UserSnapshot, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, sessionID)
	}
	return &domain.UserSnapshot{}, nil
}

func (s *stubSessionService) Resolve(_ context.Context, _ string) (*domain.Session, error) {
	return nil, domain.ErrNotAuthenticated
}

func (s *stubSessionService) VerifyEmail(_ context.Context, _ string) (string, error) {
	return "verified", nil
}

func (s *stubSessionService) ChangePassword(_ context.Context, _, _, _ string) (string, error) {
	return "password updated", nil
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSessionHandler_Login_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubSessionService{
		loginFn: func(_ context.Context, email, password string) (*ports.LoginOutcome, error) {
			if email != "ana@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginOutcome{
				Ticket: "tkt1",
				User:   domain.UserSnapshot{ID: "u1", Role: domain.RoleUser, Points: 50},
			}, nil
		},
	}
	handler := NewSessionHandler(stub, service.NewGuard())

	c, rec := newJSONContext(e, http.MethodPost, "/session/login", `{"email":"ana@example.com","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["ticket"] != "tkt1" {
		t.Errorf("ticket missing from response: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u1" {
		t.Errorf("user missing from response: %+v", resp)
	}
}

func TestSessionHandler_Login_InvalidPayload(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubSessionService{
		loginFn: func(_ context.Context, _, _ string) (*ports.LoginOutcome, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewSessionHandler(stub, service.NewGuard())

	c, _ := newJSONContext(e, http.MethodPost, "/session/login", `{"email":"not-an-email","password":""}`)
	err := handler.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestSessionHandler_Login_UnverifiedEmail_Propagates(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubSessionService{
		loginFn: func(_ context.Context, _, _ string) (*ports.LoginOutcome, error) {
			return nil, domain.ErrEmailNotVerified
		},
	}
	handler := NewSessionHandler(stub, service.NewGuard())

	c, _ := newJSONContext(e, http.MethodPost, "/session/login", `{"email":"ana@example.com","password":"secret"}`)
	err := handler.Login(c)
	if err != domain.ErrEmailNotVerified {
		t.Fatalf("expected the domain error passed to the error handler, got %v", err)
	}
}

func TestSessionHandler_Bootstrap_EmptyState(t *testing.T) {
	e := echo.New()
	stub := &stubSessionService{}
	handler := NewSessionHandler(stub, service.NewGuard())

	c, rec := newJSONContext(e, http.MethodPost, "/session/bootstrap", "")
	if err := handler.Bootstrap(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["ready"] != true {
		t.Errorf("bootstrap must report ready: %+v", resp)
	}
	if _, hasUser := resp["user"]; hasUser {
		t.Errorf("empty bootstrap must omit the user: %+v", resp)
	}
}

func TestSessionHandler_Bootstrap_ForwardsTicket(t *testing.T) {
	e := echo.New()
	stub := &stubSessionService{
		bootstrapFn: func(_ context.Context, ticket string) (*ports.BootstrapResult, error) {
			if ticket != "tkt1" {
				t.Fatalf("bearer ticket not forwarded, got %q", ticket)
			}
			user := domain.UserSnapshot{ID: "u1"}
			return &ports.BootstrapResult{Ready: true, User: &user, Ticket: ticket}, nil
		},
	}
	handler := NewSessionHandler(stub, service.NewGuard())

	c, rec := newJSONContext(e, http.MethodPost, "/session/bootstrap", "")
	c.Request().Header.Set("Authorization", "Bearer tkt1")
	if err := handler.Bootstrap(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionHandler_Logout_WithoutSession_NoOp(t *testing.T) {
	e := echo.New()
	stub := &stubSessionService{}
	handler := NewSessionHandler(stub, service.NewGuard())

	c, rec := newJSONContext(e, http.MethodPost, "/session/logout", "")
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if stub.logoutCalls != 0 {
		t.Error("logout without a session must not reach the service")
	}
}

func TestSessionHandler_Logout_DestroysSession(t *testing.T) {
	e := echo.New()
	stub := &stubSessionService{}
	handler := NewSessionHandler(stub, service.NewGuard())

	c, rec := newJSONContext(e, http.MethodPost, "/session/logout", "")
	middleware.SetSession(c, &domain.Session{ID: "s1"})
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if stub.logoutCalls != 1 {
		t.Errorf("expected 1 logout call, got %d", stub.logoutCalls)
	}
}

func TestSessionHandler_GuardDecide_AnonymousOnProtectedRoute(t *testing.T) {
	e := echo.New()
	handler := NewSessionHandler(&stubSessionService{}, service.NewGuard())

	c, rec := newJSONContext(e, http.MethodPost, "/session/guard", `{"route":{"path":"/predictions","requiresAuth":true}}`)
	if err := handler.GuardDecide(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var decision domain.GuardDecision
	_ = json.Unmarshal(rec.Body.Bytes(), &decision)
	if decision.Action != domain.GuardRedirect || decision.Target != domain.LoginRoute {
		t.Errorf("expected redirect to login, got %+v", decision)
	}
}

func TestSessionHandler_GuardDecide_ActiveSessionRenders(t *testing.T) {
	e := echo.New()
	handler := NewSessionHandler(&stubSessionService{}, service.NewGuard())

	c, rec := newJSONContext(e, http.MethodPost, "/session/guard", `{"route":{"path":"/predictions","requiresAuth":true}}`)
	middleware.SetSession(c, &domain.Session{ID: "s1", User: domain.UserSnapshot{ID: "u1", Role: domain.RoleUser}})
	if err := handler.GuardDecide(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var decision domain.GuardDecision
	_ = json.Unmarshal(rec.Body.Bytes(), &decision)
	if decision.Action != domain.GuardRender {
		t.Errorf("expected render, got %+v", decision)
	}
}
