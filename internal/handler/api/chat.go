package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"Sully/internal/domain/models"
	"Sully/internal/usecase"
	xhttp "Sully/pkg/http"
	xlogger "Sully/pkg/logger"
)

// degradedReply is returned whenever a reply cannot be produced. The chat
// surface always answers 200 with a spoken-style message; error true tells
// the UI not to persist it as a real exchange.
const degradedReply = "Ah jeez, boss, my brain's on the fritz right heah. Give me a minute and try again, yeah?"

type chatResponse struct {
	Response string `json:"response"`
	Error    bool   `json:"error,omitempty"`
}

// Chat handles one conversational message.
func (h *Handler) Chat(c echo.Context) error {
	req := new(models.ChatRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	if h.chatPerMinute > 0 && !h.limiter.Allow("chat:"+h.user(c), float64(h.chatPerMinute), float64(h.chatPerMinute)/60) {
		return c.JSON(http.StatusTooManyRequests, chatResponse{
			Response: "Easy there, boss, you're talkin' faster than a Southie auctioneer. Give it a breather.",
			Error:    true,
		})
	}

	ctx := c.Request().Context()
	reply, err := h.router.Route(ctx, req.Message)
	if err != nil {
		if errors.Is(err, usecase.ErrNotConfigured) {
			return c.JSON(http.StatusOK, chatResponse{
				Response: "No API key, no smahts. Set GROQ_API_KEY and I'll start earnin' my keep, boss.",
				Error:    true,
			})
		}
		h.logger.Error("chat reply failed", xlogger.Error(err))
		return c.JSON(http.StatusOK, chatResponse{Response: degradedReply, Error: true})
	}

	h.recordExchange(ctx, h.user(c), req.Message, reply)
	return c.JSON(http.StatusOK, chatResponse{Response: reply})
}

// recordExchange persists the round trip. Best-effort on every sink: a
// storage or log failure never fails the chat response.
func (h *Handler) recordExchange(ctx context.Context, user, message, reply string) {
	ex := models.Exchange{
		ID:        uuid.NewString(),
		Message:   message,
		Response:  reply,
		CreatedAt: time.Now(),
	}
	if err := h.store.AppendHistory(ctx, user, ex); err != nil {
		h.logger.Warn("history append failed", xlogger.Error(err))
	}
	if h.log != nil {
		if err := h.log.LogExchange(ctx, user, ex); err != nil {
			h.logger.Warn("exchange log write failed", xlogger.Error(err))
		}
	}
}

// TTS streams synthesized speech for the given text.
func (h *Handler) TTS(c echo.Context) error {
	if h.speech == nil || !h.speech.Configured() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "speech synthesis is not configured",
		})
	}

	text := c.QueryParam("text")
	if text == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "text query parameter is required",
		})
	}

	voiceID := c.QueryParam("voice_id")
	if voiceID == "" {
		if prefs, err := h.store.Preferences(c.Request().Context(), h.user(c)); err == nil && prefs.VoiceID != "" {
			voiceID = prefs.VoiceID
		}
	}
	if voiceID == "" {
		voiceID = h.defaultVoiceID
	}

	audio, contentType, err := h.speech.Synthesize(c.Request().Context(), text, voiceID)
	if err != nil {
		h.logger.Error("speech synthesis failed", xlogger.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "speech synthesis failed",
		})
	}
	defer audio.Close()

	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), audio)
	return err
}
