package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

// AdminHandler fronts the staff and admin dashboards. Role enforcement is
// done by the RequireRoles middleware on the route groups; the upstream
// checks again with the real credential.
type AdminHandler struct {
	backend ports.Backend
}

func NewAdminHandler(backend ports.Backend) *AdminHandler {
	return &AdminHandler{backend: backend}
}

// StaffDashboard returns the staff overview stats.
func (h *AdminHandler) StaffDashboard(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	stats, err := h.backend.StaffDashboardStats(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// AdminDashboard returns the admin overview stats.
func (h *AdminHandler) AdminDashboard(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	stats, err := h.backend.AdminDashboardStats(c.Request().Context(), sess.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

type grantPointsRequest struct {
	UserID string `json:"userId" validate:"required"`
	Amount int    `json:"amount" validate:"required,gt=0"`
	Notes  string `json:"notes,omitempty"`
}

// GrantPoints credits a user with points, admin only.
//
// @Summary      Grant points
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body body grantPointsRequest true "Grant details"
// @Success      200 {object} messageResponse
// @Router       /admin/grant-points [post]
func (h *AdminHandler) GrantPoints(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}

	var req grantPointsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.backend.GrantPoints(c.Request().Context(), sess.Credential, domain.GrantPoints{
		UserID: req.UserID,
		Amount: req.Amount,
		Notes:  req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}
