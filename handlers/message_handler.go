package handlers

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/oguzkose/sms-notes-service/pkg/cache"
	"github.com/oguzkose/sms-notes-service/pkg/response"
)

// MessageHandler serves the short-lived cache of recently processed messages.
type MessageHandler struct {
	cache *cache.Client
}

func NewMessageHandler(cacheClient *cache.Client) *MessageHandler {
	return &MessageHandler{cache: cacheClient}
}

// GetRecentMessages godoc
// @Summary Get recently processed messages
// @Description Returns the cached summaries of recently processed deliveries
// @Tags messages
// @Produce json
// @Param x-api-key header string true "API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/messages/recent [get]
func (h *MessageHandler) GetRecentMessages(c echo.Context) error {
	if h.cache == nil {
		return response.InternalServerError(c, fmt.Errorf("cache not configured"))
	}

	messages, err := h.cache.GetRecentMessages(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, messages)
}
