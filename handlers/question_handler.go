package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oguzkose/sms-notes-service/internal/action"
	"github.com/oguzkose/sms-notes-service/pkg/response"
	"github.com/oguzkose/sms-notes-service/pkg/storage"
	"github.com/oguzkose/sms-notes-service/pkg/validator"
)

// Small interfaces so the handler can be tested without SMTP or a model
// endpoint.
type logReader interface {
	Read(ctx context.Context, number string) (string, error)
}

type questionAnswerer interface {
	Handle(ctx context.Context, actx *action.Context) (string, error)
}

// QuestionHandler exposes the question-answering plugin over the JSON API, so
// the note history can be queried without sending an SMS.
type QuestionHandler struct {
	logs     logReader
	answerer questionAnswerer
	store    storage.Store
}

func NewQuestionHandler(logs logReader, answerer questionAnswerer, store storage.Store) *QuestionHandler {
	return &QuestionHandler{logs: logs, answerer: answerer, store: store}
}

type AskQuestionRequest struct {
	From     string `json:"from" validate:"required"`
	Question string `json:"question" validate:"required,max=1000"`
}

// Ask godoc
// @Summary Ask a question about a sender's note history
// @Description Runs the question-answering handler against the stored log
// @Tags questions
// @Accept json
// @Produce json
// @Param x-api-key header string true "API key"
// @Param question body AskQuestionRequest true "Question to ask"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/questions [post]
func (h *QuestionHandler) Ask(c echo.Context) error {
	var req AskQuestionRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	ctx := c.Request().Context()

	logContent, err := h.logs.Read(ctx, req.From)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	actx := &action.Context{
		MessageText: req.Question,
		LogContent:  logContent,
		From:        req.From,
		MessageSID:  "api-" + uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Store:       h.store,
	}

	answer, err := h.answerer.Handle(ctx, actx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, response.ErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	return response.Ok(c, map[string]any{
		"messageSid": actx.MessageSID,
		"answer":     answer,
	})
}
