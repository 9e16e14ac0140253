package usecase

import (
	"strings"
	"testing"
	"time"

	"Sully/internal/domain/models"
)

func snapshotOf(pcts map[string]float64) *models.Snapshot {
	snap := &models.Snapshot{
		Stocks:    make(map[string]models.Quote, len(pcts)),
		FetchedAt: time.Now(),
	}
	// Deterministic insertion order.
	for _, sym := range []string{"TSLA", "AAPL", "NVDA", "MSFT", "GOOGL", "AMZN", "META"} {
		pct, ok := pcts[sym]
		if !ok {
			continue
		}
		snap.Symbols = append(snap.Symbols, sym)
		snap.Stocks[sym] = models.Quote{
			Symbol:        sym,
			Price:         100 + pct,
			Change:        pct,
			ChangePercent: pct,
			PreviousClose: 100,
		}
	}
	return snap
}

func TestExtractInsightsThresholds(t *testing.T) {
	snap := snapshotOf(map[string]float64{
		"TSLA": 6.5,  // strong gain
		"AAPL": -7.2, // sharp decline
		"NVDA": 4.0,  // notable move
		"MSFT": -3.5, // notable move
		"GOOGL": 1.0, // quiet
	})

	insights := ExtractInsights(snap)
	types := map[string]int{}
	for _, in := range insights {
		types[in.Type]++
	}
	if types[models.InsightStrongGain] != 1 {
		t.Errorf("strong_gain count = %d, want 1", types[models.InsightStrongGain])
	}
	if types[models.InsightSharpDecline] != 1 {
		t.Errorf("sharp_decline count = %d, want 1", types[models.InsightSharpDecline])
	}
	if types[models.InsightNotableMove] != 2 {
		t.Errorf("notable_move count = %d, want 2", types[models.InsightNotableMove])
	}
}

func TestExtractInsightsBroadRally(t *testing.T) {
	snap := snapshotOf(map[string]float64{
		"TSLA": 1, "AAPL": 1, "NVDA": 1, "MSFT": 1, "GOOGL": -1,
	})

	insights := ExtractInsights(snap)
	var rally bool
	for _, in := range insights {
		if in.Type == models.InsightBroadRally {
			rally = true
			if !strings.Contains(in.Message, "4 of 5") {
				t.Errorf("rally message = %q", in.Message)
			}
		}
	}
	if !rally {
		t.Fatalf("expected broad rally insight for 4/5 positive")
	}
}

func TestExtractInsightsNoRallyAtExactRatio(t *testing.T) {
	// 3 of 4 = 0.75 is not strictly above the threshold.
	snap := snapshotOf(map[string]float64{
		"TSLA": 1, "AAPL": 1, "NVDA": 1, "MSFT": -1,
	})
	for _, in := range ExtractInsights(snap) {
		if in.Type == models.InsightBroadRally {
			t.Fatalf("rally at exactly 75%% must not fire")
		}
	}
}

func TestExtractInsightsCap(t *testing.T) {
	snap := snapshotOf(map[string]float64{
		"TSLA": 8, "AAPL": 8, "NVDA": 8, "MSFT": 8, "GOOGL": 8, "AMZN": 8, "META": 8,
	})
	if got := len(ExtractInsights(snap)); got != maxInsights {
		t.Errorf("insight count = %d, want %d", got, maxInsights)
	}
}

func TestExtractInsightsIdempotent(t *testing.T) {
	snap := snapshotOf(map[string]float64{"TSLA": 6, "AAPL": -6, "NVDA": 4})
	first := ExtractInsights(snap)
	second := ExtractInsights(snap)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("insight %d differs between runs", i)
		}
	}
}

func TestExtractInsightsNilSnapshot(t *testing.T) {
	if got := ExtractInsights(nil); got != nil {
		t.Errorf("nil snapshot must yield nil insights")
	}
}

func TestExtractAlertsSeverity(t *testing.T) {
	now := time.Now()
	snap := snapshotOf(map[string]float64{
		"TSLA": 12,  // urgent
		"AAPL": -8,  // warning
		"NVDA": 4.9, // below alert threshold
	})

	alerts := ExtractAlerts(snap, now)
	if len(alerts) != 2 {
		t.Fatalf("alert count = %d, want 2", len(alerts))
	}
	bySymbol := map[string]models.Alert{}
	for _, a := range alerts {
		bySymbol[a.Symbol] = a
		if !a.Timestamp.Equal(now) {
			t.Errorf("alert timestamp not fresh")
		}
	}
	if bySymbol["TSLA"].Severity != models.SeverityUrgent {
		t.Errorf("TSLA severity = %q, want urgent", bySymbol["TSLA"].Severity)
	}
	if bySymbol["AAPL"].Severity != models.SeverityWarning {
		t.Errorf("AAPL severity = %q, want warning", bySymbol["AAPL"].Severity)
	}
}

func TestExtractAlertsRecomputedEachCall(t *testing.T) {
	snap := snapshotOf(map[string]float64{"TSLA": 12})
	t1 := time.Now()
	t2 := t1.Add(time.Minute)

	first := ExtractAlerts(snap, t1)
	second := ExtractAlerts(snap, t2)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("persistent mover must alert every call")
	}
	if !second[0].Timestamp.After(first[0].Timestamp) {
		t.Errorf("second alert must carry the newer timestamp")
	}
}

func TestPortfolioNarrativeOwnedOnly(t *testing.T) {
	snap := snapshotOf(map[string]float64{"TSLA": 6, "AAPL": -6, "NVDA": 2})
	holdings := models.Holdings{"TSLA": 10, "AAPL": 5}

	got := PortfolioNarrative(snap, holdings)
	if !strings.Contains(got, "TSLA") || !strings.Contains(got, "AAPL") {
		t.Errorf("narrative missing owned positions:\n%s", got)
	}
	if strings.Contains(got, "NVDA") {
		t.Errorf("unowned symbol must not appear:\n%s", got)
	}
	// 10 * 106 + 5 * 94 = 1530
	if !strings.Contains(got, "$1530.00") {
		t.Errorf("total value wrong:\n%s", got)
	}
}

func TestPortfolioNarrativeEmptyHoldings(t *testing.T) {
	snap := snapshotOf(map[string]float64{"TSLA": 1})
	got := PortfolioNarrative(snap, models.Holdings{})
	if !strings.Contains(got, "No tracked holdings") {
		t.Errorf("unexpected narrative: %q", got)
	}
}
