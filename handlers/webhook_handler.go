package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oguzkose/sms-notes-service/internal/service"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
)

const (
	// SignatureHeader carries the provider's request signature.
	SignatureHeader = "X-Twilio-Signature"

	// twimlResponse is the empty acknowledgment the provider expects; no
	// reply message is sent.
	twimlResponse = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
)

type WebhookHandler struct {
	service *service.WebhookService
}

func NewWebhookHandler(svc *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: svc}
}

// Receive godoc
// @Summary Provider SMS callback
// @Description Authenticates, logs and dispatches one inbound SMS/MMS message
// @Tags webhook
// @Accept x-www-form-urlencoded
// @Produce xml
// @Param X-Twilio-Signature header string true "Provider request signature"
// @Success 200 {string} string "Empty TwiML response"
// @Failure 400 {string} string "Missing From number"
// @Failure 403 {string} string "Invalid signature or unauthorized sender"
// @Failure 500 {string} string "Error processing message"
// @Router /webhook/sms [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Errorf("Error reading request body: %v", err)
		return c.String(http.StatusInternalServerError, "Error processing message")
	}

	req := service.WebhookRequest{
		Body:      string(body),
		IsBase64:  strings.EqualFold(c.Request().Header.Get("Content-Transfer-Encoding"), "base64"),
		Signature: c.Request().Header.Get(SignatureHeader),
	}

	_, err = h.service.Process(c.Request().Context(), req)

	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		return c.String(http.StatusForbidden, "Invalid signature")
	case errors.Is(err, service.ErrMissingSender):
		return c.String(http.StatusBadRequest, "Missing From number")
	case errors.Is(err, service.ErrSenderNotAllowed):
		return c.String(http.StatusForbidden, "Unauthorized")
	case err != nil:
		logger.Errorf("Error processing message: %v", err)
		return c.String(http.StatusInternalServerError, "Error processing message")
	}

	return c.Blob(http.StatusOK, "application/xml", []byte(twimlResponse))
}
