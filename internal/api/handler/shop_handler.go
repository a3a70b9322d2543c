package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pointplay/rewards-gateway/internal/api/middleware"
	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
	"github.com/pointplay/rewards-gateway/internal/core/service"
)

// guestIDHeader carries the client-persisted anonymous shopper identifier.
const guestIDHeader = "X-Guest-ID"

// ShopHandler fronts the point shop: product browsing (public), cart
// operations (session or guest identity), and orders (session only, placed
// through the action orchestrator).
type ShopHandler struct {
	backend ports.Backend
	carts   *service.CartService
	actions *service.ActionService
}

func NewShopHandler(backend ports.Backend, carts *service.CartService, actions *service.ActionService) *ShopHandler {
	return &ShopHandler{backend: backend, carts: carts, actions: actions}
}

// ── Products (public) ──

func (h *ShopHandler) ListProducts(c echo.Context) error {
	products, pagination, err := h.backend.ListProducts(c.Request().Context(), pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products, "pagination": pagination})
}

func (h *ShopHandler) GetProduct(c echo.Context) error {
	product, err := h.backend.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

type couponRequest struct {
	Code        string `json:"code" validate:"required"`
	OrderAmount int    `json:"orderAmount" validate:"gt=0"`
}

func (h *ShopHandler) ValidateCoupon(c echo.Context) error {
	var req couponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.backend.ValidateCoupon(c.Request().Context(), req.Code, req.OrderAmount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// ── Cart ──

// cartResponse always echoes the guest identifier the client should persist.
// It is empty once a session exists, so the client stops sending one.
type cartResponse struct {
	Cart    *domain.Cart `json:"cart"`
	GuestID string       `json:"guestId,omitempty"`
}

// identify derives the cart identity for this request from the session (if
// any) and the X-Guest-ID header.
func (h *ShopHandler) identify(c echo.Context) (ports.CartRef, string) {
	return h.carts.Identify(middleware.SessionFrom(c), c.Request().Header.Get(guestIDHeader))
}

// GetCart returns the cart snapshot for the caller's identity.
//
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Param        X-Guest-ID header string false "Guest identifier (anonymous only)"
// @Success      200 {object} cartResponse
// @Router       /cart [get]
func (h *ShopHandler) GetCart(c echo.Context) error {
	ref, guestID := h.identify(c)
	cart, err := h.carts.Get(c.Request().Context(), ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartResponse{Cart: cart, GuestID: guestID})
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *ShopHandler) AddToCart(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ref, guestID := h.identify(c)
	cart, err := h.carts.Add(c.Request().Context(), ref, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartResponse{Cart: cart, GuestID: guestID})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

func (h *ShopHandler) UpdateCartItem(c echo.Context) error {
	var req updateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ref, guestID := h.identify(c)
	cart, err := h.carts.UpdateItem(c.Request().Context(), ref, c.Param("itemId"), req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartResponse{Cart: cart, GuestID: guestID})
}

func (h *ShopHandler) RemoveCartItem(c echo.Context) error {
	ref, guestID := h.identify(c)
	cart, err := h.carts.RemoveItem(c.Request().Context(), ref, c.Param("itemId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartResponse{Cart: cart, GuestID: guestID})
}

func (h *ShopHandler) ClearCart(c echo.Context) error {
	ref, _ := h.identify(c)
	if err := h.carts.Clear(c.Request().Context(), ref); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ── Orders ──

type createOrderRequest struct {
	Shipping      domain.ShippingInfo `json:"shipping" validate:"required"`
	PaymentMethod string              `json:"paymentMethod" validate:"required"`
	CouponCode    string              `json:"couponCode,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

// CreateOrder confirms checkout. Point deduction happens upstream; the
// refreshed snapshot rides back with the created order.
//
// @Summary      Create order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body body createOrderRequest true "Order details"
// @Success      201 {object} actionResponse
// @Failure      409 {object} map[string]string
// @Router       /orders [post]
func (h *ShopHandler) CreateOrder(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, outcome, err := h.actions.PlaceOrder(c.Request().Context(), sess, domain.OrderRequest{
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
		Notes:         req.Notes,
	})
	countAction(service.ActionPlaceOrder, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, actionResponse{Result: order, User: outcomeUser(outcome)})
}

func (h *ShopHandler) ListOrders(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	orders, err := h.backend.ListOrders(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order; a missing id surfaces as 404, rendered inline
// by the client rather than as a notification.
func (h *ShopHandler) GetOrder(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	order, err := h.backend.GetOrder(c.Request().Context(), sess.Credential, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
