package api

import (
	"github.com/labstack/echo/v4"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
	"Sully/internal/handler/web"
	"Sully/internal/service/ratelimit"
	"Sully/internal/usecase"
	xlogger "Sully/pkg/logger"
)

// Handler wires every HTTP route of the assistant.
type Handler struct {
	router   *usecase.Router
	cache    *usecase.SnapshotCache
	agg      *usecase.Aggregator
	briefing *usecase.Briefing
	store    repository.Store
	speech   repository.SpeechSynthesizer
	log      repository.ExchangeLog
	events   repository.EventPublisher
	limiter  *ratelimit.Limiter
	logger   *xlogger.Logger

	chatPerMinute  int
	defaultVoiceID string
}

// HandlerOption configures optional collaborators.
type HandlerOption func(*Handler)

// WithExchangeLog attaches the durable analytical log.
func WithExchangeLog(log repository.ExchangeLog) HandlerOption {
	return func(h *Handler) { h.log = log }
}

// WithEventPublisher attaches the alert broker publisher.
func WithEventPublisher(events repository.EventPublisher) HandlerOption {
	return func(h *Handler) { h.events = events }
}

// WithChatRateLimit sets the per-minute chat budget. Zero disables the
// limiter.
func WithChatRateLimit(perMinute int) HandlerOption {
	return func(h *Handler) { h.chatPerMinute = perMinute }
}

// WithDefaultVoice sets the synthesis voice used when the user has no
// preference stored.
func WithDefaultVoice(voiceID string) HandlerOption {
	return func(h *Handler) { h.defaultVoiceID = voiceID }
}

// NewHandler creates the route handler.
func NewHandler(
	router *usecase.Router,
	cache *usecase.SnapshotCache,
	agg *usecase.Aggregator,
	briefing *usecase.Briefing,
	store repository.Store,
	speech repository.SpeechSynthesizer,
	logger *xlogger.Logger,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{
		router:   router,
		cache:    cache,
		agg:      agg,
		briefing: briefing,
		store:    store,
		speech:   speech,
		limiter:  ratelimit.New(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", web.Index)
	e.POST("/chat", h.Chat)
	e.GET("/tts", h.TTS)
	e.GET("/ws/quotes", h.QuotesSocket)

	g := e.Group("/api")
	g.GET("/stocks", h.Stocks)
	g.GET("/insights", h.Insights)
	g.POST("/briefing", h.Briefing)
	g.GET("/preferences", h.GetPreferences)
	g.POST("/preferences", h.SetPreferences)
	g.GET("/watchlist", h.GetWatchlist)
	g.POST("/watchlist", h.AddWatchlist)
	g.DELETE("/watchlist/:symbol", h.RemoveWatchlist)
	g.GET("/history", h.GetHistory)
	g.POST("/history", h.AppendHistory)
	g.GET("/portfolio", h.GetPortfolio)
	g.POST("/portfolio", h.SetPortfolio)
}

// user resolves the acting identity. Single-operator today, but routed
// through one place so auth can slot in later.
func (h *Handler) user(echo.Context) string {
	return models.DefaultUser
}
