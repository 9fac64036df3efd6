package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/oguzkose/sms-notes-service/environments"
	"github.com/oguzkose/sms-notes-service/handlers"
	"github.com/oguzkose/sms-notes-service/internal/middlewares"
)

// RegisterRoutes registers all routes with middleware.
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	logHandler *handlers.LogHandler,
	messageHandler *handlers.MessageHandler,
	questionHandler *handlers.QuestionHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// The provider callback authenticates via the request signature, not an
	// API key.
	e.POST("/webhook/sms", webhookHandler.Receive)

	// Read/query API with its own key
	v1 := e.Group("/api/v1", middlewares.APIKeyAuth(cfg.Auth.APIKey))

	v1.GET("/logs", logHandler.ListLogs)
	v1.GET("/logs/:number", logHandler.GetLog)
	v1.GET("/messages/recent", messageHandler.GetRecentMessages)
	v1.POST("/questions", questionHandler.Ask)
}
