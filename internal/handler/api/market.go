package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"Sully/internal/domain/models"
	"Sully/internal/usecase"
	xhttp "Sully/pkg/http"
	xlogger "Sully/pkg/logger"
)

type stocksResponse struct {
	Stocks    map[string]models.Quote `json:"stocks"`
	Count     int                     `json:"count"`
	Timestamp time.Time               `json:"timestamp"`
}

type insightsResponse struct {
	Insights  []models.Insight `json:"insights"`
	Alerts    []models.Alert   `json:"alerts"`
	Timestamp time.Time        `json:"timestamp"`
}

// Stocks performs a fresh fetch, bypassing the snapshot cache. An
// optional comma-separated symbols parameter overrides the tracked list.
func (h *Handler) Stocks(c echo.Context) error {
	symbols := h.cache.Symbols()
	if raw := c.QueryParam("symbols"); raw != "" {
		symbols = symbols[:0]
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	if len(symbols) == 0 {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_REQUIRED",
			Field:   "symbols",
			Message: "symbols cannot be empty",
		}})
	}

	snap, err := h.agg.FetchQuotes(c.Request().Context(), symbols)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("quote fetch aborted").WithError(err))
	}

	return c.JSON(http.StatusOK, stocksResponse{
		Stocks:    snap.Stocks,
		Count:     len(snap.Stocks),
		Timestamp: snap.FetchedAt,
	})
}

// Insights derives observations and alerts from the cached snapshot.
// Alerts fan out to the broker and the analytical log, best-effort.
func (h *Handler) Insights(c echo.Context) error {
	ctx := c.Request().Context()
	snap, err := h.cache.Snapshot(ctx)
	if err != nil {
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_UPSTREAM_UNAVAILABLE", "", "no quote data available", http.StatusServiceUnavailable).WithError(err))
	}

	now := time.Now()
	insights := usecase.ExtractInsights(snap)
	alerts := usecase.ExtractAlerts(snap, now)
	h.fanOutAlerts(ctx, alerts)

	return c.JSON(http.StatusOK, insightsResponse{
		Insights:  insights,
		Alerts:    alerts,
		Timestamp: now,
	})
}

func (h *Handler) fanOutAlerts(ctx context.Context, alerts []models.Alert) {
	if len(alerts) == 0 {
		return
	}
	if h.events != nil {
		if err := h.events.PublishAlerts(ctx, alerts); err != nil {
			h.logger.Warn("alert publish failed", xlogger.Error(err))
		}
	}
	if h.log != nil {
		if err := h.log.LogAlerts(ctx, alerts); err != nil {
			h.logger.Warn("alert log write failed", xlogger.Error(err))
		}
	}
}

// Briefing generates the time-of-day rundown. It burns a completion call,
// so it draws from the same per-minute budget as chat.
func (h *Handler) Briefing(c echo.Context) error {
	req := new(models.BriefingRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	if h.chatPerMinute > 0 && !h.limiter.Allow("chat:"+h.user(c), float64(h.chatPerMinute), float64(h.chatPerMinute)/60) {
		return c.JSON(http.StatusTooManyRequests, chatResponse{
			Response: "One rundown at a time, boss. Let the last one settle.",
			Error:    true,
		})
	}

	result, err := h.briefing.Generate(c.Request().Context(), req.Time, h.user(c))
	if err != nil {
		if errors.Is(err, usecase.ErrNotConfigured) {
			return c.JSON(http.StatusOK, chatResponse{
				Response: "Can't give ya the rundown without my brain plugged in, boss. Set GROQ_API_KEY.",
				Error:    true,
			})
		}
		h.logger.Error("briefing failed", xlogger.Error(err))
		return c.JSON(http.StatusOK, chatResponse{Response: degradedReply, Error: true})
	}
	return c.JSON(http.StatusOK, result)
}
