package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
	xlogger "Sully/pkg/logger"
)

// Canonical search queries for the two tracked teams.
const (
	patriotsQuery = "New England Patriots"
	celticsQuery  = "Boston Celtics"
)

// Aggregator fetches and normalizes upstream market and news data. It
// holds no state beyond its provider handles.
type Aggregator struct {
	quotes  repository.QuoteProvider
	news    repository.NewsSource
	sports  repository.SportsSource
	metrics repository.Metrics
	logger  *xlogger.Logger
}

// NewAggregator creates a data aggregator.
func NewAggregator(
	quotes repository.QuoteProvider,
	news repository.NewsSource,
	sports repository.SportsSource,
	metrics repository.Metrics,
	logger *xlogger.Logger,
) *Aggregator {
	return &Aggregator{quotes: quotes, news: news, sports: sports, metrics: metrics, logger: logger}
}

// FetchQuotes looks up every symbol and returns a snapshot with exactly
// one entry per symbol. A failed lookup becomes an error-tagged entry; it
// never aborts the batch. The only hard failure is a canceled context.
func (a *Aggregator) FetchQuotes(ctx context.Context, symbols []string) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Stocks:    make(map[string]models.Quote, len(symbols)),
		Symbols:   append([]string(nil), symbols...),
		FetchedAt: time.Now(),
	}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		raw, err := a.quotes.Quote(ctx, symbol)
		if a.metrics != nil {
			a.metrics.RecordUpstreamCall("quotes", err == nil)
			a.metrics.RecordLatency("quote_fetch", time.Since(start).Seconds())
		}
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("quote fetch failed", xlogger.String("symbol", symbol), xlogger.Error(err))
			}
			snap.Stocks[symbol] = models.Quote{Symbol: symbol, Err: err.Error()}
			continue
		}

		change := raw.Price - raw.PreviousClose
		changePct := 0.0
		if raw.PreviousClose != 0 {
			changePct = change / raw.PreviousClose * 100
		}

		history := raw.History
		if len(history) > models.HistoryWindow {
			history = history[len(history)-models.HistoryWindow:]
		}

		snap.Stocks[symbol] = models.Quote{
			Symbol:        symbol,
			Price:         raw.Price,
			Change:        change,
			ChangePercent: changePct,
			PreviousClose: raw.PreviousClose,
			Volume:        raw.Volume,
			History:       history,
		}
		if a.metrics != nil {
			a.metrics.RecordLastPrice(symbol, raw.Price)
		}
	}

	return snap, nil
}

// TopicNews resolves a short news block for a query. It tries the news
// provider first, falls back to the sports record source for recognized
// teams, and always returns a non-empty string. Advisory context only:
// its absence must never block a chat reply, so this never errors.
func (a *Aggregator) TopicNews(ctx context.Context, query string) string {
	if a.news != nil && a.news.Configured() {
		headlines, err := a.news.Search(ctx, query)
		if a.metrics != nil {
			a.metrics.RecordUpstreamCall("news", err == nil)
		}
		if err == nil && len(headlines) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "LATEST NEWS FOR '%s':\n", strings.ToUpper(query))
			for i, h := range headlines {
				source := h.Source
				if source == "" {
					source = "Unknown"
				}
				fmt.Fprintf(&b, "%d. %s - %s\n", i+1, h.Title, source)
			}
			return b.String()
		}
		if err != nil && a.logger != nil {
			a.logger.Warn("news search failed", xlogger.String("query", query), xlogger.Error(err))
		}
	}

	if a.sports != nil {
		lower := strings.ToLower(query)
		var team, site string
		switch {
		case strings.Contains(lower, "patriots") || strings.Contains(lower, "pats"):
			team, site = patriotsQuery, "patriots.com/news"
		case strings.Contains(lower, "celtics"):
			team, site = celticsQuery, "celtics.com"
		}
		if team != "" {
			record, err := a.sports.TeamRecord(ctx, team)
			if a.metrics != nil {
				a.metrics.RecordUpstreamCall("sports", err == nil)
			}
			if err == nil {
				return fmt.Sprintf("%s\nNote: for today's latest news, check %s", record, site)
			}
			if a.logger != nil {
				a.logger.Warn("team record failed", xlogger.String("team", team), xlogger.Error(err))
			}
		}
	}

	return fmt.Sprintf("For the latest on %s, check ESPN.com or the team websites.", query)
}

// EntityNews resolves a news block for a tracked entity and appends its
// associated ticker quotes and business affiliations. Same resilience
// contract as TopicNews.
func (a *Aggregator) EntityNews(ctx context.Context, profile models.EntityProfile) string {
	var b strings.Builder
	b.WriteString(a.TopicNews(ctx, profile.Name))

	for _, symbol := range profile.Tickers {
		raw, err := a.quotes.Quote(ctx, symbol)
		if a.metrics != nil {
			a.metrics.RecordUpstreamCall("quotes", err == nil)
		}
		if err != nil {
			continue
		}
		change := raw.Price - raw.PreviousClose
		changePct := 0.0
		if raw.PreviousClose != 0 {
			changePct = change / raw.PreviousClose * 100
		}
		fmt.Fprintf(&b, "\n%s: $%.2f (%+.2f%%)", symbol, raw.Price, changePct)
	}

	if len(profile.Businesses) > 0 {
		fmt.Fprintf(&b, "\nAssociated with: %s", strings.Join(profile.Businesses, ", "))
	}
	return b.String()
}
