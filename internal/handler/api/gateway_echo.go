package api

import (
	models "Midas/internal/domain/models"
	"Midas/internal/usecase"
	"Midas/pkg/config"
	xhttp "Midas/pkg/http"
	xlogger "Midas/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GatewayEchoHandler exposes the composite run endpoint.
type GatewayEchoHandler struct {
	logger *xlogger.Logger
	cfg    *config.Config
	orch   *usecase.GatewayOrchestrator
}

func NewGatewayEchoHandler(logger *xlogger.Logger, cfg *config.Config, orch *usecase.GatewayOrchestrator) *GatewayEchoHandler {
	return &GatewayEchoHandler{logger: logger, cfg: cfg, orch: orch}
}

func (h *GatewayEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/api/run", h.Run)
}

func (h *GatewayEchoHandler) Healthz(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"status":        "ok",
		"service":       "gateway",
		"version":       "v1",
		"context_url":   h.cfg.Gateway.ContextURL,
		"recommend_url": h.cfg.Gateway.RecommendURL,
	})
}

func (h *GatewayEchoHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.orch.Run(c.Request().Context(), req.Ticker)
	if err != nil {
		h.logger.Error("gateway run failed", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
