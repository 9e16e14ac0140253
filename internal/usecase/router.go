package usecase

import (
	"context"
	"fmt"
	"strings"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
)

// Sports/news trigger words for the topic-news branch.
var newsKeywords = []string{"patriots", "pats", "celtics", "news", "latest"}

// branch is one (predicate, compose) pair. Branches are evaluated in
// order against the lowercased message; the first match wins.
type branch struct {
	name    string
	match   func(lower string) bool
	compose func(ctx context.Context, userText, lower string, snap *models.Snapshot) string
}

// Router inspects each inbound message and decides which context block to
// attach before delegating to the conversation engine. Every branch also
// attaches the latest snapshot as structured market context; branch
// precedence only controls the extra instruction text.
type Router struct {
	agg      *Aggregator
	cache    *SnapshotCache
	engine   *Conversation
	metrics  repository.Metrics
	branches []branch
}

// NewRouter creates a message router over the given engine and data
// sources.
func NewRouter(agg *Aggregator, cache *SnapshotCache, engine *Conversation, metrics repository.Metrics) *Router {
	r := &Router{agg: agg, cache: cache, engine: engine, metrics: metrics}
	r.branches = []branch{
		{
			name:    "stocks",
			match:   func(lower string) bool { return strings.Contains(lower, "stock") },
			compose: r.composeStocks,
		},
		{
			name:    "entity",
			match:   r.matchEntity,
			compose: r.composeEntity,
		},
		{
			name:    "news",
			match:   matchNews,
			compose: r.composeNews,
		},
		{
			name:    "chat",
			match:   func(string) bool { return true },
			compose: func(_ context.Context, userText, _ string, _ *models.Snapshot) string { return userText },
		},
	}
	return r
}

// Route dispatches one user message and returns the assistant reply. The
// fallback branch is unconditional, so routing itself never fails; only
// the completion call can error.
func (r *Router) Route(ctx context.Context, message string) (string, error) {
	lower := strings.ToLower(message)

	// Snapshot is advisory context: a cache miss with no prior snapshot
	// must not block the reply.
	snap, err := r.cache.Snapshot(ctx)
	if err != nil {
		snap = nil
	}

	for _, b := range r.branches {
		if !b.match(lower) {
			continue
		}
		if r.metrics != nil {
			r.metrics.RecordRouteMatch(b.name)
		}
		return r.engine.Reply(ctx, b.compose(ctx, message, lower, snap), snap)
	}

	// Unreachable: the chat branch matches everything.
	return r.engine.Reply(ctx, message, snap)
}

func (r *Router) composeStocks(_ context.Context, _ string, _ string, snap *models.Snapshot) string {
	if snap == nil {
		return "Give me a quick take on the market. Quote data is unavailable right now, say so plainly."
	}

	var b strings.Builder
	b.WriteString("HERE'S YOUR PORTFOLIO, BOSS:\n\n")
	for _, q := range snap.Ordered() {
		if q.Errored() {
			continue
		}
		fmt.Fprintf(&b, "%s: $%.2f %s %+.2f (%+.2f%%)\n", q.Symbol, q.Price, q.Trend(), q.Change, q.ChangePercent)
	}
	return "Give me a quick take on these stocks: " + b.String()
}

func (r *Router) matchEntity(lower string) bool {
	for _, p := range models.TrackedEntities() {
		if p.Matches(lower) {
			return true
		}
	}
	return false
}

func (r *Router) composeEntity(ctx context.Context, userText, lower string, _ *models.Snapshot) string {
	for _, p := range models.TrackedEntities() {
		if p.Matches(lower) {
			return userText + "\n\n" + r.agg.EntityNews(ctx, p)
		}
	}
	return userText
}

func matchNews(lower string) bool {
	for _, kw := range newsKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (r *Router) composeNews(ctx context.Context, userText, lower string, _ *models.Snapshot) string {
	query := userText
	switch {
	case strings.Contains(lower, "patriots") || strings.Contains(lower, "pats"):
		query = patriotsQuery
	case strings.Contains(lower, "celtics"):
		query = celticsQuery
	}
	return userText + "\n\n" + r.agg.TopicNews(ctx, query)
}
