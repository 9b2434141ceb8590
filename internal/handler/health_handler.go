package handler

import (
	"context"
	"net/http"

	"shop/internal/logging"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 依存先の疎通確認
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health/live", h.live)
	e.GET("/health/ready", h.ready)
}

func (h *HealthHandler) live(c echo.Context) error {
	return c.JSON(http.StatusOK, success("alive"))
}

func (h *HealthHandler) ready(c echo.Context) error {
	ctx := c.Request().Context()
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logging.FromContext(ctx).Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, errorResponse(name+" unavailable"))
		}
	}
	return c.JSON(http.StatusOK, success("ready"))
}
