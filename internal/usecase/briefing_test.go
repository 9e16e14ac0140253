package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
)

type stubStore struct {
	holdings models.Holdings
	err      error
}

func (s *stubStore) Preferences(context.Context, string) (models.Preferences, error) {
	return models.Preferences{}, nil
}
func (s *stubStore) SavePreferences(context.Context, models.Preferences) error { return nil }
func (s *stubStore) Watchlist(context.Context, string) ([]models.WatchlistEntry, error) {
	return nil, nil
}
func (s *stubStore) AddWatchlist(context.Context, string, models.WatchlistEntry) error { return nil }
func (s *stubStore) RemoveWatchlist(context.Context, string, string) error             { return nil }
func (s *stubStore) History(context.Context, string, int) ([]models.Exchange, error) {
	return nil, nil
}
func (s *stubStore) AppendHistory(context.Context, string, models.Exchange) error { return nil }
func (s *stubStore) Holdings(context.Context, string) (models.Holdings, error) {
	return s.holdings, s.err
}
func (s *stubStore) SetHolding(context.Context, string, string, float64) error { return nil }

func newTestBriefing(completer *fakeCompleter, store repository.Store) *Briefing {
	quotes := &fakeQuotes{quotes: map[string]repository.RawQuote{
		"TSLA": {Price: 250, PreviousClose: 200},
	}}
	agg := NewAggregator(quotes, &fakeNews{}, nil, nil, nil)
	cache := NewSnapshotCache(agg, []string{"TSLA"}, 0, nil, nil)
	engine := NewConversation(completer, models.Personality{Intensity: 7})
	return NewBriefing(cache, agg, engine, store, nil)
}

func TestBriefingGenerate(t *testing.T) {
	completer := &fakeCompleter{reply: "mornin' boss, TSLA's rippin'"}
	b := newTestBriefing(completer, &stubStore{holdings: models.Holdings{"TSLA": 10}})

	result, err := b.Generate(context.Background(), "morning", "boss")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Briefing != "mornin' boss, TSLA's rippin'" {
		t.Errorf("briefing = %q", result.Briefing)
	}
	if result.Time != "morning" {
		t.Errorf("time = %q", result.Time)
	}
	if result.GeneratedAt.IsZero() {
		t.Errorf("GeneratedAt not stamped")
	}

	// TSLA +25% yields both an insight and an urgent alert.
	if len(result.Insights) == 0 {
		t.Errorf("expected insights for a 25%% move")
	}
	if len(result.Alerts) != 1 || result.Alerts[0].Severity != models.SeverityUrgent {
		t.Errorf("alerts = %+v", result.Alerts)
	}

	// The prompt carries holdings context.
	prompt := completer.seen[0][len(completer.seen[0])-1].Text
	if !strings.Contains(prompt, "morning briefing") {
		t.Errorf("prompt missing time of day:\n%s", prompt)
	}
	if !strings.Contains(prompt, "PORTFOLIO VALUE: $2500.00") {
		t.Errorf("prompt missing portfolio value:\n%s", prompt)
	}
}

func TestBriefingHoldingsFailureTolerated(t *testing.T) {
	completer := &fakeCompleter{reply: "still got ya back, boss"}
	b := newTestBriefing(completer, &stubStore{err: fmt.Errorf("store down")})

	if _, err := b.Generate(context.Background(), "evening", "boss"); err != nil {
		t.Fatalf("holdings failure must not fail the briefing: %v", err)
	}
}

func TestBriefingNotConfigured(t *testing.T) {
	b := newTestBriefing(&fakeCompleter{}, &stubStore{})
	b.engine = NewConversation(nil, models.Personality{Intensity: 7})

	if _, err := b.Generate(context.Background(), "morning", "boss"); err != ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
