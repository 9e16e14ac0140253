package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"Sully/internal/domain/models"
	"Sully/pkg/cache"
)

func newTestStore(t *testing.T) *KVStore {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return NewKVStore(mc, 0)
}

func TestPreferencesDefaults(t *testing.T) {
	store := newTestStore(t)

	prefs, err := store.Preferences(context.Background(), "boss")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefs.User != "boss" {
		t.Errorf("user = %q", prefs.User)
	}
	if prefs.AccentIntensity != 8 {
		t.Errorf("default intensity = %d, want 8", prefs.AccentIntensity)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := models.Preferences{User: "boss", VoiceEnabled: true, VoiceID: "v1", AccentIntensity: 9}
	if err := store.SavePreferences(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := store.Preferences(ctx, "boss")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !out.VoiceEnabled || out.VoiceID != "v1" || out.AccentIntensity != 9 {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt not stamped")
	}
}

func TestWatchlistUpsertKeepsPosition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, sym := range []string{"tsla", "AAPL", "NVDA"} {
		if err := store.AddWatchlist(ctx, "boss", models.WatchlistEntry{Symbol: sym}); err != nil {
			t.Fatalf("add %s: %v", sym, err)
		}
	}
	// Re-add with notes; position and AddedAt must hold.
	if err := store.AddWatchlist(ctx, "boss", models.WatchlistEntry{Symbol: "TSLA", Notes: "earnings soon"}); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	entries, err := store.Watchlist(ctx, "boss")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("count = %d, want 3", len(entries))
	}
	if entries[0].Symbol != "TSLA" || entries[0].Notes != "earnings soon" {
		t.Errorf("upsert result: %+v", entries[0])
	}
}

func TestWatchlistRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.AddWatchlist(ctx, "boss", models.WatchlistEntry{Symbol: "TSLA"})
	_ = store.AddWatchlist(ctx, "boss", models.WatchlistEntry{Symbol: "AAPL"})
	if err := store.RemoveWatchlist(ctx, "boss", "tsla"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	entries, _ := store.Watchlist(ctx, "boss")
	if len(entries) != 1 || entries[0].Symbol != "AAPL" {
		t.Errorf("entries after remove: %+v", entries)
	}
}

func TestHistoryLimitAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ex := models.Exchange{
			ID:        fmt.Sprintf("ex-%d", i),
			Message:   fmt.Sprintf("q%d", i),
			Response:  fmt.Sprintf("a%d", i),
			CreatedAt: time.Now(),
		}
		if err := store.AppendHistory(ctx, "boss", ex); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.History(ctx, "boss", 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit ignored, got %d", len(got))
	}
	if got[0].ID != "ex-3" || got[1].ID != "ex-4" {
		t.Errorf("expected the two newest, got %v %v", got[0].ID, got[1].ID)
	}
}

func TestHistoryTruncation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < maxStoredExchanges+10; i++ {
		ex := models.Exchange{ID: fmt.Sprintf("ex-%d", i)}
		if err := store.AppendHistory(ctx, "boss", ex); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, _ := store.History(ctx, "boss", 0)
	if len(got) != maxStoredExchanges {
		t.Fatalf("stored = %d, want %d", len(got), maxStoredExchanges)
	}
	if got[0].ID != "ex-10" {
		t.Errorf("oldest surviving = %v, want ex-10", got[0].ID)
	}
}

func TestHoldingsSetAndRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetHolding(ctx, "boss", "tsla", 10); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetHolding(ctx, "boss", "AAPL", 5); err != nil {
		t.Fatalf("set: %v", err)
	}

	holdings, err := store.Holdings(ctx, "boss")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if holdings["TSLA"] != 10 || holdings["AAPL"] != 5 {
		t.Errorf("holdings = %v", holdings)
	}

	// Zero shares removes the position.
	if err := store.SetHolding(ctx, "boss", "TSLA", 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	holdings, _ = store.Holdings(ctx, "boss")
	if _, ok := holdings["TSLA"]; ok {
		t.Errorf("TSLA should be removed: %v", holdings)
	}
}

func TestUsersIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.SetHolding(ctx, "boss", "TSLA", 10)
	other, err := store.Holdings(ctx, "intern")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("records leaked across users: %v", other)
	}
}
