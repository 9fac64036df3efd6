package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oguzkose/sms-notes-service/internal/logstore"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
	"github.com/oguzkose/sms-notes-service/pkg/response"
)

// LogHandler serves the stored message logs for inspection.
type LogHandler struct {
	logs *logstore.Adapter
}

func NewLogHandler(logs *logstore.Adapter) *LogHandler {
	return &LogHandler{logs: logs}
}

// ListLogs godoc
// @Summary List sender logs
// @Description Lists every stored per-sender message log
// @Tags logs
// @Produce json
// @Param x-api-key header string true "API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/logs [get]
func (h *LogHandler) ListLogs(c echo.Context) error {
	logs, err := h.logs.List(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, logs)
}

// GetLog godoc
// @Summary Get one sender's log
// @Description Returns the parsed log entries for one sender number
// @Tags logs
// @Produce json
// @Param x-api-key header string true "API key"
// @Param number path string true "Sender phone number"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/logs/{number} [get]
func (h *LogHandler) GetLog(c echo.Context) error {
	number := c.Param("number")

	content, err := h.logs.Read(c.Request().Context(), number)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	if content == "" {
		return response.NotFound(c, "no log found for this number")
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	entries := make([]logstore.Entry, 0, len(lines))

	for _, line := range lines {
		entry, err := logstore.ParseLine(line)
		if err != nil {
			// A corrupt line is skipped rather than failing the whole log.
			logger.Warnf("Skipping malformed log line for %s: %v", logstore.SanitizeNumber(number), err)
			continue
		}
		entries = append(entries, entry)
	}

	return response.Ok(c, map[string]any{
		"number":  logstore.SanitizeNumber(number),
		"entries": entries,
	})
}
