package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/oguzkose/sms-notes-service/environments"
	"github.com/oguzkose/sms-notes-service/handlers"
	"github.com/oguzkose/sms-notes-service/internal/action"
	"github.com/oguzkose/sms-notes-service/internal/logstore"
	"github.com/oguzkose/sms-notes-service/internal/media"
	"github.com/oguzkose/sms-notes-service/internal/service"
	"github.com/oguzkose/sms-notes-service/pkg/cache"
	"github.com/oguzkose/sms-notes-service/pkg/llm"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
	"github.com/oguzkose/sms-notes-service/pkg/mailer"
	"github.com/oguzkose/sms-notes-service/pkg/storage"
	"github.com/oguzkose/sms-notes-service/pkg/validator"
	"github.com/oguzkose/sms-notes-service/routes"
)

// @title SMS Notes Service API
// @version 1.0
// @description Webhook-driven ingestion pipeline for SMS/MMS notes with
// @description per-sender append-only logs and a question-answering command.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	logger.Init()

	// Load .env if present, then config from the environment
	_ = godotenv.Load()
	cfg := environments.Load()

	// Hard-fail if required settings are missing
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	logger.Infof("Starting SMS Notes Service...")

	// Init object store
	var store storage.Store
	var storePinger handlers.Pinger

	switch cfg.Store.Driver {
	case "mysql":
		mysqlStore, err := storage.NewMySQLStore(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to object store: %v", err)
		}
		defer func() {
			logger.Infof("Closing database connection...")
			if err := mysqlStore.Close(); err != nil {
				logger.Errorf("Error closing database: %v", err)
			}
		}()
		store = mysqlStore
		storePinger = mysqlStore
	default:
		fsStore, err := storage.NewFSStore(cfg.Store.DataDir)
		if err != nil {
			logger.Fatalf("Failed to init filesystem store: %v", err)
		}
		store = fsStore
		logger.Infof("Using filesystem store at %s", cfg.Store.DataDir)
	}

	// Init cache (optional)
	cacheClient, err := cache.NewClient(cfg.Valkey)
	if err != nil {
		logger.Warnf("Valkey not available, recent-message cache disabled: %v", err)
		cacheClient = nil
	}

	// Wire the pipeline
	logs := logstore.New(store)
	ingestor := media.NewIngestor(store, cfg.Provider.AccountSID, cfg.Provider.AuthToken, cfg.Provider.MediaTimeout)
	notifier := mailer.New(cfg.Notify)
	llmClient := llm.NewClient(cfg.LLM)

	questionHandler := action.NewQuestionHandler(llmClient, notifier)

	// The registry is built once here and read-only afterwards.
	registry := action.NewRegistry()
	registry.Register(action.CommandQuestion, questionHandler.Handle)

	// Pass an untyped nil when the cache is absent so the service's nil
	// check works; a typed nil pointer inside the interface would not.
	var webhookService *service.WebhookService
	if cacheClient != nil {
		webhookService = service.NewWebhookService(logs, ingestor, registry, notifier, cacheClient, store, cfg)
	} else {
		webhookService = service.NewWebhookService(logs, ingestor, registry, notifier, nil, store, cfg)
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.Store.Driver, storePinger, cacheClient)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	logHandler := handlers.NewLogHandler(logs)
	messageHandler := handlers.NewMessageHandler(cacheClient)
	askHandler := handlers.NewQuestionHandler(logs, questionHandler, store)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, webhookHandler, logHandler, messageHandler, askHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	if cacheClient != nil {
		logger.Infof("Closing Valkey connection...")
		if err := cacheClient.Close(); err != nil {
			logger.Errorf("Error closing Valkey: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
