package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	models "VolPulse/internal/domain/models"
	"VolPulse/internal/service/ratelimit"
	"VolPulse/internal/services/vol"
	"VolPulse/internal/usecase"
	"VolPulse/pkg/cache"
	xhttp "VolPulse/pkg/http"
	xlogger "VolPulse/pkg/logger"
	"VolPulse/pkg/queue"
	"VolPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// VolEchoHandler exposes the volatility engine over HTTP.
type VolEchoHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.VolAnalyzer
	scanner  *usecase.PremiumScanUseCase
	candles  *usecase.CandlesUseCase
	queue    queue.QueueService
	cache    cache.Service
	rl       *ratelimit.Limiter
}

func NewVolEchoHandler(
	logger *xlogger.Logger,
	analyzer *usecase.VolAnalyzer,
	scanner *usecase.PremiumScanUseCase,
	candles *usecase.CandlesUseCase,
	q queue.QueueService,
	c cache.Service,
) *VolEchoHandler {
	return &VolEchoHandler{
		logger:   logger,
		analyzer: analyzer,
		scanner:  scanner,
		candles:  candles,
		queue:    q,
		cache:    c,
		rl:       ratelimit.New(),
	}
}

func (h *VolEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.GET("/realized", h.Realized)
	g.GET("/iv", h.IV)
	g.GET("/corr", h.Corr)
	g.GET("/scan", h.Scan)
	g.POST("/scan/jobs", h.EnqueueScan)
	g.GET("/scan/jobs/result", h.ScanResult)
	g.GET("/candles", h.Candles)
}

// engineError maps engine failures onto HTTP status codes. Bad input is the
// caller's fault; a series too short or a fit that diverges is a 422.
func engineError(err error) *xhttp.AppError {
	switch {
	case vol.IsInvalidInput(err):
		return xhttp.BadRequestError(err.Error())
	case vol.IsInsufficientData(err):
		return xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", err.Error(), http.StatusUnprocessableEntity)
	case vol.IsFitFailure(err):
		return xhttp.NewAppError("ERR_FIT_FAILED", "", err.Error(), http.StatusUnprocessableEntity)
	default:
		return nil
	}
}

func (h *VolEchoHandler) respondEngine(c echo.Context, op string, err error) error {
	if appErr := engineError(err); appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

func (h *VolEchoHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Forecast(c.Request().Context(), req.Symbol, req.Horizon, req.N)
	if err != nil {
		return h.respondEngine(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *VolEchoHandler) Realized(c echo.Context) error {
	req := &models.RealizedRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		res models.RealizedResult
		err error
	)
	if req.Estimator == "parkinson" {
		res, err = h.analyzer.Parkinson(c.Request().Context(), req.Symbol, req.Window)
	} else {
		res, err = h.analyzer.Realized(c.Request().Context(), req.Symbol, req.Window, !req.Raw)
	}
	if err != nil {
		return h.respondEngine(c, "realized", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *VolEchoHandler) IV(c echo.Context) error {
	req := &models.IVRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.IVSnapshot(c.Request().Context(), req.Symbol, req.Lookback)
	if err != nil {
		return h.respondEngine(c, "iv", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *VolEchoHandler) Corr(c echo.Context) error {
	req := &models.CorrRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Correlation(c.Request().Context(), splitSymbols(req.Symbols), req.Window, req.Threshold)
	if err != nil {
		return h.respondEngine(c, "corr", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *VolEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":scan", 3, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests))
	}

	res, err := h.scanner.Scan(c.Request().Context(), splitSymbols(req.Symbols), req.Lookback)
	if err != nil {
		return h.respondEngine(c, "scan", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *VolEchoHandler) EnqueueScan(c echo.Context) error {
	if h.queue == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNAVAILABLE", "", "job queue not configured", http.StatusServiceUnavailable))
	}
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":scanjob", 2, 0.5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests))
	}

	ctx := c.Request().Context()
	id := fmt.Sprintf("%x", time.Now().UnixNano())
	payload := usecase.ScanJobPayload{
		ID:       id,
		Symbols:  splitSymbols(req.Symbols),
		Lookback: req.Lookback,
	}
	pending := models.ScanJobResult{ID: id, Status: models.ScanJobQueued}
	if err := h.cache.Set(ctx, usecase.ScanJobKey(id), pending, time.Hour); err != nil {
		h.logger.Warn("scan job status cache failed", xlogger.Error(err))
	}
	if err := h.queue.PublishMessage(ctx, usecase.ScanJobType, payload); err != nil {
		h.logger.Error("scan job enqueue failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue failed"))
	}
	return xhttp.CreatedResponse(c, pending)
}

func (h *VolEchoHandler) ScanResult(c echo.Context) error {
	req := &models.ScanJobResultRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var res models.ScanJobResult
	err := h.cache.Get(c.Request().Context(), usecase.ScanJobKey(req.ID), &res)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("job %s not found", req.ID))
		}
		h.logger.Error("scan result lookup failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *VolEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	params := usecase.GetCandlesParams{
		Symbol: req.Symbol,
		Limit:  req.N,
	}
	if req.From != "" || req.To != "" {
		from := util.ParseTimeDefault(req.From, time.Time{})
		to := util.ParseTimeDefault(req.To, time.Now().UTC())
		params.From, params.To = util.AlignToDay(from, to)
	}
	res, err := h.candles.GetCandles(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
