package backend

import (
	"context"
	"net/http"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// GetProfile fetches the authoritative user snapshot. This is also the
// session validation call: any rejection means the credential is no longer
// good.
func (c *Client) GetProfile(ctx context.Context, credential string) (*domain.UserSnapshot, error) {
	var user domain.UserSnapshot
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/users/profile",
		credential: credential,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ChangePassword(ctx context.Context, credential, currentPassword, newPassword string) (string, error) {
	return c.doMessage(ctx, request{
		method:     http.MethodPut,
		path:       "/users/profile/password",
		credential: credential,
		body: map[string]string{
			"currentPassword": currentPassword,
			"newPassword":     newPassword,
		},
	})
}

func (c *Client) GetTransactions(ctx context.Context, credential string) ([]domain.PointTransaction, error) {
	var txs []domain.PointTransaction
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/users/transactions",
		credential: credential,
	}, &txs)
	if err != nil {
		return nil, err
	}
	return txs, nil
}
