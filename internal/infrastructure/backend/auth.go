package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

type loginPayload struct {
	Token string              `json:"token"`
	User  domain.UserSnapshot `json:"user"`
}

// Login exchanges credentials for the opaque platform token and the user
// snapshot. A 401 here means bad credentials, not a dead session, so the
// generic mapping is narrowed before returning.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	var payload loginPayload
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &payload)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialRejected) {
			return nil, &domain.UpstreamError{
				Sentinel: domain.ErrInvalidCredentials,
				Message:  domain.UpstreamMessage(err, ""),
			}
		}
		return nil, err
	}
	return &ports.LoginResult{Token: payload.Token, User: payload.User}, nil
}

type registerPayload struct {
	User domain.UserSnapshot `json:"user"`
}

// Register creates an account. The platform never returns a usable token
// here; email verification comes first.
func (c *Client) Register(ctx context.Context, data ports.RegisterData) (*domain.UserSnapshot, error) {
	body := map[string]string{
		"name":     data.Name,
		"email":    data.Email,
		"password": data.Password,
	}
	if data.ReferralCode != "" {
		body["referralCode"] = data.ReferralCode
	}

	var payload registerPayload
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: body}, &payload); err != nil {
		return nil, err
	}
	return &payload.User, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (string, error) {
	q := url.Values{}
	q.Set("token", token)
	return c.doMessage(ctx, request{method: http.MethodGet, path: "/auth/verify", query: q})
}
