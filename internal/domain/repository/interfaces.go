package repository

import (
	"context"
	"io"

	"Sully/internal/domain/models"
)

// RawQuote is the unnormalized provider payload for one symbol. The
// aggregator derives change, percent change and trailing history from it.
type RawQuote struct {
	Price         float64
	PreviousClose float64
	Volume        int64
	History       []float64
}

// QuoteProvider looks up a single symbol's quote upstream.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (RawQuote, error)
}

// Headline is one news article reference.
type Headline struct {
	Title  string
	Source string
}

// NewsSource searches recent articles by keyword.
type NewsSource interface {
	Search(ctx context.Context, query string) ([]Headline, error)
	Configured() bool
}

// SportsSource resolves a team's current record, used as the fallback when
// the news provider is unavailable.
type SportsSource interface {
	TeamRecord(ctx context.Context, team string) (string, error)
}

// Completer produces an assistant reply from an ordered message list.
type Completer interface {
	Complete(ctx context.Context, turns []models.Turn) (string, error)
}

// SpeechSynthesizer streams synthesized audio for text.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, string, error)
	Configured() bool
}

// Store is the key/value CRUD layer holding per-user records. All methods
// are whole-record reads and writes; there are no cross-record
// transactions.
type Store interface {
	Preferences(ctx context.Context, user string) (models.Preferences, error)
	SavePreferences(ctx context.Context, prefs models.Preferences) error
	Watchlist(ctx context.Context, user string) ([]models.WatchlistEntry, error)
	AddWatchlist(ctx context.Context, user string, entry models.WatchlistEntry) error
	RemoveWatchlist(ctx context.Context, user, symbol string) error
	History(ctx context.Context, user string, limit int) ([]models.Exchange, error)
	AppendHistory(ctx context.Context, user string, ex models.Exchange) error
	Holdings(ctx context.Context, user string) (models.Holdings, error)
	SetHolding(ctx context.Context, user, symbol string, shares float64) error
}

// ExchangeLog is the optional durable analytical log for chat exchanges
// and alerts. Writes are best-effort; callers log and swallow errors so a
// failed write never fails the user-facing response.
type ExchangeLog interface {
	LogExchange(ctx context.Context, user string, ex models.Exchange) error
	LogAlerts(ctx context.Context, alerts []models.Alert) error
	Close() error
}

// EventPublisher pushes derived alert events to an external broker.
type EventPublisher interface {
	PublishAlerts(ctx context.Context, alerts []models.Alert) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordUpstreamCall(provider string, ok bool)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordRouteMatch(branch string)
	RecordCacheRefresh(outcome string)
}
