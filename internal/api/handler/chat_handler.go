package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pointplay/rewards-gateway/internal/api/metrics"
	"github.com/pointplay/rewards-gateway/internal/core/service"
)

// ChatHandler manages conversation watching. Opening a conversation starts
// (or joins) its poller; clients then read messages from the gateway cache
// and must close the conversation when the panel closes.
type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Open registers the caller as a watcher of a conversation.
//
// @Summary      Open a conversation
// @Tags         chat
// @Param        id path string true "Conversation id"
// @Success      204
// @Router       /chat/conversations/{id}/open [post]
func (h *ChatHandler) Open(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	h.chat.Open(c.Param("id"), sess.Credential)
	metrics.ChatConversationsOpen.Inc()
	return c.NoContent(http.StatusNoContent)
}

// Close removes the caller's watch; the poller stops with the last watcher.
func (h *ChatHandler) Close(c echo.Context) error {
	if _, err := requireSession(c); err != nil {
		return err
	}
	h.chat.Close(c.Param("id"))
	metrics.ChatConversationsOpen.Dec()
	return c.NoContent(http.StatusNoContent)
}

// Messages serves the cached conversation history.
func (h *ChatHandler) Messages(c echo.Context) error {
	if _, err := requireSession(c); err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	msgs, err := h.chat.Messages(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// Send relays a message upstream and caches it immediately.
func (h *ChatHandler) Send(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.chat.Send(c.Request().Context(), sess.Credential, c.Param("id"), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}
