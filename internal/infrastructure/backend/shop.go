package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

// cartQuery builds the identity for a cart call. An authenticated reference
// carries the bearer credential only; an anonymous one carries the guest
// identifier only, never both.
func cartQuery(ref ports.CartRef) url.Values {
	q := url.Values{}
	if ref.Credential == "" && ref.GuestID != "" {
		q.Set("guestId", ref.GuestID)
	}
	return q
}

type productListPayload struct {
	Products   []domain.Product  `json:"products"`
	Pagination domain.Pagination `json:"pagination"`
}

func (c *Client) ListProducts(ctx context.Context, page ports.ListPage) ([]domain.Product, *domain.Pagination, error) {
	var payload productListPayload
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/shop/products",
		query:  listQuery(page.Page, page.Limit, page.Search),
	}, &payload)
	if err != nil {
		return nil, nil, err
	}
	return payload.Products, &payload.Pagination, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, request{method: http.MethodGet, path: "/shop/products/" + id}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ValidateCoupon(ctx context.Context, code string, orderAmount int) (*domain.CouponValidation, error) {
	var result domain.CouponValidation
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/shop/coupons/validate",
		body:   map[string]any{"code": code, "orderAmount": orderAmount},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ── Cart ──

func (c *Client) GetCart(ctx context.Context, ref ports.CartRef) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/cart",
		credential: ref.Credential,
		query:      cartQuery(ref),
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddToCart(ctx context.Context, ref ports.CartRef, productID string, quantity int) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/cart/add",
		credential: ref.Credential,
		query:      cartQuery(ref),
		body:       map[string]any{"productId": productID, "quantity": quantity},
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, ref ports.CartRef, itemID string, quantity int) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, request{
		method:     http.MethodPut,
		path:       "/cart/items/" + itemID,
		credential: ref.Credential,
		query:      cartQuery(ref),
		body:       map[string]int{"quantity": quantity},
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, ref ports.CartRef, itemID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, request{
		method:     http.MethodDelete,
		path:       "/cart/items/" + itemID,
		credential: ref.Credential,
		query:      cartQuery(ref),
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) ClearCart(ctx context.Context, ref ports.CartRef) error {
	return c.do(ctx, request{
		method:     http.MethodDelete,
		path:       "/cart/clear",
		credential: ref.Credential,
		query:      cartQuery(ref),
	}, nil)
}

// ── Orders ──

func (c *Client) CreateOrder(ctx context.Context, credential string, req domain.OrderRequest) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/orders",
		credential: credential,
		body:       req,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, credential string) ([]domain.Order, error) {
	var orders []domain.Order
	err := c.do(ctx, request{method: http.MethodGet, path: "/orders", credential: credential}, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, credential, id string) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, request{method: http.MethodGet, path: "/orders/" + id, credential: credential}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ── Staff / admin ──

func (c *Client) StaffDashboardStats(ctx context.Context, credential string) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := c.do(ctx, request{method: http.MethodGet, path: "/staff/dashboard-stats", credential: credential}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) AdminDashboardStats(ctx context.Context, credential string) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/dashboard-stats", credential: credential}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) GrantPoints(ctx context.Context, credential string, grant domain.GrantPoints) (string, error) {
	return c.doMessage(ctx, request{
		method:     http.MethodPost,
		path:       "/admin/grant-points",
		credential: credential,
		body: map[string]any{
			"userId": grant.UserID,
			"amount": grant.Amount,
			"notes":  grant.Notes,
		},
	})
}

// ── Chat ──

func (c *Client) ChatMessagesSince(ctx context.Context, credential, conversationID, sinceID string) ([]domain.ChatMessage, error) {
	q := url.Values{}
	if sinceID != "" {
		q.Set("since", sinceID)
	}
	q.Set("limit", strconv.Itoa(100))

	var msgs []domain.ChatMessage
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/chat/conversations/" + conversationID + "/messages",
		credential: credential,
		query:      q,
	}, &msgs)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) SendChatMessage(ctx context.Context, credential, conversationID, body string) (*domain.ChatMessage, error) {
	var msg domain.ChatMessage
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/chat/conversations/" + conversationID + "/messages",
		credential: credential,
		body:       map[string]string{"body": body},
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
