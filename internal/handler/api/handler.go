package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"MarketRadar/internal/domain/models"
	"MarketRadar/internal/usecase"
	pkghttp "MarketRadar/pkg/http"
	"MarketRadar/pkg/logger"
)

// Refitter triggers an anomaly-model refit against stored history.
type Refitter interface {
	Refit(ctx context.Context) error
}

// Handler exposes the read API and the administrative refit trigger.
type Handler struct {
	queries  *usecase.Queries
	refitter Refitter
	logger   *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(queries *usecase.Queries, refitter Refitter, log *logger.Logger) *Handler {
	return &Handler{queries: queries, refitter: refitter, logger: log}
}

// RegisterRoutes implements pkg/http.Handler.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.GET("/signals", h.listSignals)
	v1.GET("/alerts", h.listAlerts)
	v1.POST("/admin/refit", h.refit)

	e.GET("/healthz", h.health)
}

func (h *Handler) listSignals(c echo.Context) error {
	req := new(models.ListSignalsRequest)
	if errs := pkghttp.ReadAndValidateRequest(c, req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	signals, err := h.queries.ListSignals(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("list signals failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}
	if signals == nil {
		signals = []*models.Signal{}
	}
	return pkghttp.ListResponse(c, signals, int64(len(signals)))
}

func (h *Handler) listAlerts(c echo.Context) error {
	req := new(models.ListAlertsRequest)
	if errs := pkghttp.ReadAndValidateRequest(c, req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	alerts, err := h.queries.ListAlerts(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("list alerts failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	return pkghttp.ListResponse(c, alerts, int64(len(alerts)))
}

func (h *Handler) refit(c echo.Context) error {
	if err := h.refitter.Refit(c.Request().Context()); err != nil {
		h.logger.Error("refit failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}
	return pkghttp.SuccessResponse(c, map[string]string{"status": "refitted"})
}

func (h *Handler) health(c echo.Context) error {
	if err := h.queries.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", logger.Error(err))
		return pkghttp.AppErrorResponse(c, pkghttp.NewUnavailableError("storage unavailable"))
	}
	return pkghttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
