package handlers

import (
	"github.com/Brownie44l1/catdog-api/internal/middleware"

	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BodyLimit caps request bodies on the prediction routes.
const BodyLimit = "10M"

// RegisterRoutes wires /health and /metrics and sends every other path to the
// pipeline.
func RegisterRoutes(e *echo.Echo, h *Handler, log *zap.SugaredLogger) {
	e.HTTPErrorHandler = middleware.NewErrorHandler(log)
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	base := e.Group("")
	base.Use(emw.CORS())
	base.Use(emw.BodyLimit(BodyLimit))
	base.Use(middleware.NewRecoverMiddleware(log))
	base.Use(middleware.NewTrackMiddleware(log))
	base.Any("/*", h.Predict)
}
