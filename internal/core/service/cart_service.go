package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

// CartService applies the guest-identity rules to cart operations:
//
//   - With an active session, cart calls carry the credential and never a
//     guest identifier, even if the client still sends one.
//   - Without a session, the caller-provided guest identifier is reused; when
//     absent, a fresh one is minted and returned so the client can persist it
//     and resend it on every later call.
type CartService struct {
	backend ports.Backend
	logger  zerolog.Logger
}

func NewCartService(backend ports.Backend, logger zerolog.Logger) *CartService {
	return &CartService{backend: backend, logger: logger}
}

// Identify resolves the cart reference for a request. guestID is the
// client-persisted identifier, empty on a first anonymous visit. The second
// return value is the identifier the client should persist ("" for
// authenticated users).
func (s *CartService) Identify(sess *domain.Session, guestID string) (ports.CartRef, string) {
	if sess != nil {
		return ports.CartRef{Credential: sess.Credential}, ""
	}
	if guestID == "" {
		guestID = domain.GuestIDPrefix + uuid.NewString()
		s.logger.Debug().Str("guest_id", guestID).Msg("minted guest identifier")
	}
	return ports.CartRef{GuestID: guestID}, guestID
}

func (s *CartService) Get(ctx context.Context, ref ports.CartRef) (*domain.Cart, error) {
	return s.backend.GetCart(ctx, ref)
}

func (s *CartService) Add(ctx context.Context, ref ports.CartRef, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}
	return s.backend.AddToCart(ctx, ref, productID, quantity)
}

func (s *CartService) UpdateItem(ctx context.Context, ref ports.CartRef, itemID string, quantity int) (*domain.Cart, error) {
	return s.backend.UpdateCartItem(ctx, ref, itemID, quantity)
}

func (s *CartService) RemoveItem(ctx context.Context, ref ports.CartRef, itemID string) (*domain.Cart, error) {
	return s.backend.RemoveCartItem(ctx, ref, itemID)
}

func (s *CartService) Clear(ctx context.Context, ref ports.CartRef) error {
	return s.backend.ClearCart(ctx, ref)
}
