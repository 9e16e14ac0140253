package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"Sully/internal/domain/models"
	"Sully/internal/repository"
	xhttp "Sully/pkg/http"
	xlogger "Sully/pkg/logger"
)

// storeError maps record layer failures. Write failures carry their own
// code so the UI can distinguish "saved nothing" from "cannot read".
func (h *Handler) storeError(c echo.Context, err error) error {
	h.logger.Error("record store failure", xlogger.Error(err))
	if errors.Is(err, repository.ErrPersistenceWrite) {
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_PERSISTENCE_WRITE", "", "record write failed", http.StatusInternalServerError).WithError(err))
	}
	return xhttp.AppErrorResponse(c, xhttp.InternalError("record read failed").WithError(err))
}

func (h *Handler) GetPreferences(c echo.Context) error {
	prefs, err := h.store.Preferences(c.Request().Context(), h.user(c))
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *Handler) SetPreferences(c echo.Context) error {
	req := new(models.PreferencesRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	ctx := c.Request().Context()
	prefs, err := h.store.Preferences(ctx, h.user(c))
	if err != nil {
		return h.storeError(c, err)
	}
	if req.VoiceEnabled != nil {
		prefs.VoiceEnabled = *req.VoiceEnabled
	}
	if req.VoiceID != "" {
		prefs.VoiceID = req.VoiceID
	}
	if req.AccentIntensity != 0 {
		prefs.AccentIntensity = req.AccentIntensity
	}
	if err := h.store.SavePreferences(ctx, prefs); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *Handler) GetWatchlist(c echo.Context) error {
	entries, err := h.store.Watchlist(c.Request().Context(), h.user(c))
	if err != nil {
		return h.storeError(c, err)
	}
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"watchlist": entries,
		"count":     len(entries),
	})
}

func (h *Handler) AddWatchlist(c echo.Context) error {
	req := new(models.WatchlistAddRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	entry := models.WatchlistEntry{
		Symbol:  strings.ToUpper(req.Symbol),
		Notes:   req.Notes,
		AddedAt: time.Now(),
	}
	if err := h.store.AddWatchlist(c.Request().Context(), h.user(c), entry); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) RemoveWatchlist(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_REQUIRED",
			Field:   "symbol",
			Message: "symbol is required",
		}})
	}
	if err := h.store.RemoveWatchlist(c.Request().Context(), h.user(c), symbol); err != nil {
		return h.storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetHistory(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 50)
	exchanges, err := h.store.History(c.Request().Context(), h.user(c), limit)
	if err != nil {
		return h.storeError(c, err)
	}
	if exchanges == nil {
		exchanges = []models.Exchange{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"history": exchanges,
		"count":   len(exchanges),
	})
}

func (h *Handler) AppendHistory(c echo.Context) error {
	req := new(models.HistoryAppendRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	ex := models.Exchange{
		ID:        uuid.NewString(),
		Message:   req.Message,
		Response:  req.Response,
		CreatedAt: time.Now(),
	}
	if err := h.store.AppendHistory(c.Request().Context(), h.user(c), ex); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusCreated, ex)
}

func (h *Handler) GetPortfolio(c echo.Context) error {
	ctx := c.Request().Context()
	holdings, err := h.store.Holdings(ctx, h.user(c))
	if err != nil {
		return h.storeError(c, err)
	}

	// Valuation is advisory: with no snapshot yet, shares still come back.
	var totalValue float64
	values := make(map[string]float64, len(holdings))
	if snap := h.cache.Current(); snap != nil {
		for symbol, shares := range holdings {
			if q, ok := snap.Stocks[symbol]; ok && !q.Errored() {
				v := q.Price * shares
				values[symbol] = v
				totalValue += v
			}
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"holdings":    holdings,
		"values":      values,
		"total_value": totalValue,
	})
}

func (h *Handler) SetPortfolio(c echo.Context) error {
	req := new(models.PortfolioSetRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	if err := h.store.SetHolding(c.Request().Context(), h.user(c), strings.ToUpper(req.Symbol), req.Shares); err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"symbol": strings.ToUpper(req.Symbol),
		"shares": req.Shares,
	})
}
