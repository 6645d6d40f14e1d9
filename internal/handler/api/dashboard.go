package api

import (
	"errors"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/usecase"
	xhttp "FinPulse/pkg/http"
	xlogger "FinPulse/pkg/logger"
	"FinPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the dashboard read API.
type DashboardHandler struct {
	logger *xlogger.Logger
	dash   *usecase.Dashboard
}

func NewDashboardHandler(logger *xlogger.Logger, dash *usecase.Dashboard) *DashboardHandler {
	return &DashboardHandler{logger: logger, dash: dash}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/assets", h.Assets)
	g.GET("/forecast", h.Forecast)
	g.GET("/overview", h.Overview)
	g.GET("/history", h.History)
	g.GET("/opportunities", h.Opportunities)
	g.GET("/news", h.News)
}

func (h *DashboardHandler) Assets(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.AssetsResponse{Assets: h.dash.Assets()})
}

func (h *DashboardHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.dash.Forecast(c.Request().Context(), req.Ticker)
	if err != nil {
		h.logger.Error("forecast usecase error", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Overview(c echo.Context) error {
	req := &models.OverviewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.dash.Overview(c.Request().Context(), req.Ticker)
	if err != nil {
		h.logger.Error("overview usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p := usecase.GetHistoryParams{Ticker: req.Ticker, Limit: req.Limit}
	if req.From != "" {
		t, ok := util.ParseTime(req.From)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("from: unrecognised time %q", req.From))
		}
		p.From = t
	}
	if req.To != "" {
		t, ok := util.ParseTime(req.To)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("to: unrecognised time %q", req.To))
		}
		p.To = t
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.From.After(p.To) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("from must be <= to"))
	}

	res, err := h.dash.History(c.Request().Context(), p)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Opportunities(c echo.Context) error {
	req := &models.OpportunitiesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.dash.Opportunities(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("opportunities usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DashboardHandler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var scored *bool
	if req.Scored != "" {
		v := req.Scored == "true"
		scored = &v
	}

	rows, err := h.dash.News(c.Request().Context(), req.Limit, scored)
	if err != nil {
		h.logger.Error("news usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, models.ErrStoreUnavailable):
		return xhttp.ServiceUnavailableError("store unavailable, retry later").WithError(err)
	case errors.Is(err, usecase.ErrRecomputeLimited):
		return xhttp.TooManyRequestsError("forecast recompute limit reached, retry later")
	default:
		return xhttp.InternalError("something went wrong").WithError(err)
	}
}
