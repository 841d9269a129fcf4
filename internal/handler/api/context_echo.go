package api

import (
	"time"

	models "Midas/internal/domain/models"
	"Midas/internal/usecase"
	xhttp "Midas/pkg/http"
	xlogger "Midas/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ContextEchoHandler exposes the feature pipeline and the one-liner composer.
type ContextEchoHandler struct {
	logger   *xlogger.Logger
	agg      *usecase.FeatureAggregator
	composer *usecase.OneLinerComposer
}

func NewContextEchoHandler(logger *xlogger.Logger, agg *usecase.FeatureAggregator, composer *usecase.OneLinerComposer) *ContextEchoHandler {
	return &ContextEchoHandler{logger: logger, agg: agg, composer: composer}
}

func (h *ContextEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	g := e.Group("/api")
	g.GET("/features", h.FeaturesStub)
	g.GET("/features/v2", h.Features)
	g.POST("/one_liner", h.OneLiner)
}

func (h *ContextEchoHandler) Healthz(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"status":  "ok",
		"service": "context",
		"version": "v1",
	})
}

// FeaturesStub serves the deterministic demo feature set regardless of live
// mode. Kept alongside the v2 endpoint for dashboards that only need shape.
func (h *ContextEchoHandler) FeaturesStub(c echo.Context) error {
	req := &models.FeatureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"ticker":   req.Ticker,
		"features": h.agg.BuildStub(),
		"ts":       time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	})
}

func (h *ContextEchoHandler) Features(c echo.Context) error {
	req := &models.FeatureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	payload := h.agg.BuildFeatures(c.Request().Context(), req.Ticker)
	if payload.Error != "" {
		h.logger.Warn("feature aggregation degraded",
			xlogger.String("ticker", req.Ticker), xlogger.String("detail", payload.Error))
	}
	return xhttp.SuccessResponse(c, payload)
}

func (h *ContextEchoHandler) OneLiner(c echo.Context) error {
	req := &models.OneLinerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.composer.Compose(req))
}
