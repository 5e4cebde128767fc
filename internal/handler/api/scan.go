package api

import (
	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScanSource exposes the most recent completed scan. Satisfied by
// usecase.Scanner.
type ScanSource interface {
	Last() *models.ScanResult
}

// ScanHandler serves the last scan's regime and signals over HTTP. It never
// triggers a scan itself; the server loop owns scheduling.
type ScanHandler struct {
	logger    *xlogger.Logger
	scanner   ScanSource
	regimeLog drepo.RegimeLog
}

func NewScanHandler(logger *xlogger.Logger, scanner ScanSource, regimeLog drepo.RegimeLog) *ScanHandler {
	return &ScanHandler{logger: logger, scanner: scanner, regimeLog: regimeLog}
}

func (h *ScanHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/regime", h.Regime)
	g.GET("/regime/history", h.RegimeHistory)
	g.GET("/signals", h.Signals)
}

func (h *ScanHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Regime returns the regime snapshot from the most recent completed scan.
func (h *ScanHandler) Regime(c echo.Context) error {
	last := h.scanner.Last()
	if last == nil {
		return xhttp.NotFoundResponse(c, "no completed scan yet")
	}
	return xhttp.SuccessResponse(c, last.Regime)
}

// RegimeHistoryRequest bounds the history query.
type RegimeHistoryRequest struct {
	Limit int `query:"limit" default:"30" validate:"gte=1,lte=365"`
}

// RegimeHistory returns recent regime-log rows, newest first.
func (h *ScanHandler) RegimeHistory(c echo.Context) error {
	req := &RegimeHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.regimeLog.Recent(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("regime history query failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Signals returns the full result of the most recent completed scan.
func (h *ScanHandler) Signals(c echo.Context) error {
	last := h.scanner.Last()
	if last == nil {
		return xhttp.NotFoundResponse(c, "no completed scan yet")
	}
	return xhttp.SuccessResponse(c, last)
}
