package usecase

import (
	"context"
	"strings"
	"testing"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
)

type recordingMetrics struct {
	branches []string
}

func (m *recordingMetrics) RecordUpstreamCall(string, bool) {}
func (m *recordingMetrics) RecordLastPrice(string, float64) {}
func (m *recordingMetrics) RecordLatency(string, float64)   {}
func (m *recordingMetrics) RecordRouteMatch(branch string)  { m.branches = append(m.branches, branch) }
func (m *recordingMetrics) RecordCacheRefresh(string)       {}

func newTestRouter(t *testing.T, quotes *fakeQuotes, news *fakeNews, completer *fakeCompleter) (*Router, *recordingMetrics) {
	t.Helper()
	metrics := &recordingMetrics{}
	agg := NewAggregator(quotes, news, &fakeSports{record: "New England Patriots record: 11-6"}, nil, nil)
	cache := NewSnapshotCache(agg, []string{"TSLA", "AAPL"}, 0, nil, nil)
	engine := NewConversation(completer, models.Personality{Intensity: 7})
	return NewRouter(agg, cache, engine, metrics), metrics
}

func marketQuotes() *fakeQuotes {
	return &fakeQuotes{quotes: map[string]repository.RawQuote{
		"TSLA": {Price: 250, PreviousClose: 240},
		"AAPL": {Price: 180, PreviousClose: 185},
	}}
}

func lastPrompt(completer *fakeCompleter) string {
	turns := completer.seen[len(completer.seen)-1]
	return turns[len(turns)-1].Text
}

func TestRouteStocksBranch(t *testing.T) {
	completer := &fakeCompleter{reply: "lookin' good"}
	router, metrics := newTestRouter(t, marketQuotes(), &fakeNews{}, completer)

	if _, err := router.Route(context.Background(), "How are my stocks looking?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(metrics.branches) != 1 || metrics.branches[0] != "stocks" {
		t.Fatalf("branches = %v, want [stocks]", metrics.branches)
	}

	prompt := lastPrompt(completer)
	for _, want := range []string{"TSLA", "$250.00", "AAPL", "$180.00", "UP", "DOWN"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("stocks prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestRouteEntityBeforeNews(t *testing.T) {
	completer := &fakeCompleter{reply: "that guy again"}
	router, metrics := newTestRouter(t, marketQuotes(), &fakeNews{}, completer)

	// "latest" is a news keyword, but the entity branch is checked first.
	if _, err := router.Route(context.Background(), "What's the latest with Elon?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.branches[0] != "entity" {
		t.Fatalf("branch = %v, want entity", metrics.branches[0])
	}
	if prompt := lastPrompt(completer); !strings.Contains(prompt, "TSLA") {
		t.Errorf("entity prompt missing ticker context:\n%s", prompt)
	}
}

func TestRouteNewsCanonicalQuery(t *testing.T) {
	news := &fakeNews{
		configured: true,
		headlines:  []repository.Headline{{Title: "Pats win again", Source: "ESPN"}},
	}
	completer := &fakeCompleter{reply: "dynasty"}
	router, metrics := newTestRouter(t, marketQuotes(), news, completer)

	if _, err := router.Route(context.Background(), "any pats news today?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.branches[0] != "news" {
		t.Fatalf("branch = %v, want news", metrics.branches[0])
	}
	// The search runs against the canonical team name, not the raw message.
	if len(news.queries) != 1 || news.queries[0] != "New England Patriots" {
		t.Fatalf("search queries = %v, want [New England Patriots]", news.queries)
	}
	if prompt := lastPrompt(completer); !strings.Contains(prompt, "Pats win again") {
		t.Errorf("news prompt missing headline:\n%s", prompt)
	}
}

func TestRouteFallbackChat(t *testing.T) {
	completer := &fakeCompleter{reply: "just chattin'"}
	router, metrics := newTestRouter(t, marketQuotes(), &fakeNews{}, completer)

	if _, err := router.Route(context.Background(), "tell me a joke"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.branches[0] != "chat" {
		t.Fatalf("branch = %v, want chat", metrics.branches[0])
	}
	if prompt := lastPrompt(completer); prompt != "tell me a joke" {
		t.Errorf("fallback must pass the message through, got %q", prompt)
	}
}

func TestRouteSnapshotMissDoesNotBlockReply(t *testing.T) {
	completer := &fakeCompleter{reply: "no data, still heah"}
	metrics := &recordingMetrics{}
	agg := NewAggregator(&fakeQuotes{}, &fakeNews{}, nil, nil, nil)
	cache := NewSnapshotCache(agg, nil, 0, nil, nil)
	engine := NewConversation(completer, models.Personality{Intensity: 7})
	router := NewRouter(agg, cache, engine, metrics)

	reply, err := router.Route(context.Background(), "hey sully")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "no data, still heah" {
		t.Errorf("reply = %q", reply)
	}
}
