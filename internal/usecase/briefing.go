package usecase

import (
	"context"
	"fmt"
	"time"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
	xlogger "Sully/pkg/logger"
)

// BriefingResult is the composed briefing payload.
type BriefingResult struct {
	Briefing    string           `json:"briefing"`
	Insights    []models.Insight `json:"insights"`
	Alerts      []models.Alert   `json:"alerts"`
	Time        string           `json:"time"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Briefing composes the portfolio narrative, team news and VIP context
// into a single completion call.
type Briefing struct {
	cache  *SnapshotCache
	agg    *Aggregator
	engine *Conversation
	store  repository.Store
	logger *xlogger.Logger
}

// NewBriefing creates a briefing composer.
func NewBriefing(cache *SnapshotCache, agg *Aggregator, engine *Conversation, store repository.Store, logger *xlogger.Logger) *Briefing {
	return &Briefing{cache: cache, agg: agg, engine: engine, store: store, logger: logger}
}

// Generate builds one briefing for the given time of day. Holdings and
// news lookups are best-effort; only the completion call can fail.
func (b *Briefing) Generate(ctx context.Context, timeOfDay, user string) (BriefingResult, error) {
	snap, err := b.cache.Snapshot(ctx)
	if err != nil {
		snap = nil
	}

	holdings, err := b.store.Holdings(ctx, user)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("holdings read failed", xlogger.Error(err))
		}
		holdings = models.Holdings{}
	}

	now := time.Now()
	insights := ExtractInsights(snap)
	alerts := ExtractAlerts(snap, now)

	prompt := fmt.Sprintf(`Give the boss his %s briefing. Work this material into a tight, natural rundown:

%s

%s

%s

Lead with the portfolio, then the teams. Keep it brief.`,
		timeOfDay,
		PortfolioNarrative(snap, holdings),
		b.agg.TopicNews(ctx, patriotsQuery),
		b.agg.TopicNews(ctx, celticsQuery),
	)

	text, err := b.engine.Ask(ctx, prompt, snap)
	if err != nil {
		return BriefingResult{}, err
	}

	return BriefingResult{
		Briefing:    text,
		Insights:    insights,
		Alerts:      alerts,
		Time:        timeOfDay,
		GeneratedAt: now,
	}, nil
}
