package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oguzkose/sms-notes-service/pkg/cache"
)

// Pinger is implemented by stores with a live backend connection (MySQL);
// the filesystem store has nothing to ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health checks.
type HealthHandler struct {
	storeDriver  string
	storePinger  Pinger
	cache        *cache.Client
	checkTimeout time.Duration
}

func NewHealthHandler(storeDriver string, storePinger Pinger, cacheClient *cache.Client) *HealthHandler {
	return &HealthHandler{
		storeDriver:  storeDriver,
		storePinger:  storePinger,
		cache:        cacheClient,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and basic component statuses (store and cache).
// @Summary Health check
// @Description Returns overall status with object store and cache connectivity results
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	storeStatus := "up"
	if h.storePinger != nil {
		if err := h.storePinger.Ping(ctx); err != nil {
			storeStatus = "down"
			overallStatus = "down"
		}
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "down"
			overallStatus = "degraded"
		} else {
			cacheStatus = "up"
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"store": map[string]any{
				"driver": h.storeDriver,
				"status": storeStatus,
			},
			"cache": map[string]any{
				"status": cacheStatus,
			},
		},
	})
}
