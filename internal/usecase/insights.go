package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"Sully/internal/domain/models"
)

// Movement thresholds in percent.
const (
	strongMoveThreshold  = 5
	notableMoveThreshold = 3
	urgentAlertThreshold = 10
	broadRallyRatio      = 0.75
	maxInsights          = 5
)

// ExtractInsights derives threshold-based observations from a snapshot.
// Pure function: same snapshot in, same insights out. Per-symbol entries
// follow snapshot insertion order, not magnitude; output is capped at
// five.
func ExtractInsights(snap *models.Snapshot) []models.Insight {
	if snap == nil {
		return nil
	}

	var insights []models.Insight
	var total, positive int

	for _, q := range snap.Ordered() {
		if q.Errored() {
			continue
		}
		total++
		if q.Change > 0 {
			positive++
		}

		pct := q.ChangePercent
		switch {
		case pct > strongMoveThreshold:
			insights = append(insights, models.Insight{
				Symbol:  q.Symbol,
				Type:    models.InsightStrongGain,
				Message: fmt.Sprintf("%s is UP %.2f%% today, a strong gain", q.Symbol, pct),
				Action:  "review the position while it's hot",
			})
		case pct < -strongMoveThreshold:
			insights = append(insights, models.Insight{
				Symbol:  q.Symbol,
				Type:    models.InsightSharpDecline,
				Message: fmt.Sprintf("%s is DOWN %.2f%% today, a sharp decline", q.Symbol, math.Abs(pct)),
				Action:  "check the news before reacting",
			})
		case math.Abs(pct) > notableMoveThreshold:
			insights = append(insights, models.Insight{
				Symbol:  q.Symbol,
				Type:    models.InsightNotableMove,
				Message: fmt.Sprintf("%s moved %+.2f%% today, worth a look", q.Symbol, pct),
				Action:  "keep an eye on it",
			})
		}
	}

	if total > 0 && float64(positive)/float64(total) > broadRallyRatio {
		insights = append(insights, models.Insight{
			Type:    models.InsightBroadRally,
			Message: fmt.Sprintf("Broad rally: %d of %d tracked symbols are UP", positive, total),
		})
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// ExtractAlerts derives severity-tagged alerts for extreme moves. Each
// call recomputes from scratch with a fresh timestamp; a persistent mover
// reappears as a new alert instance every time.
func ExtractAlerts(snap *models.Snapshot, now time.Time) []models.Alert {
	if snap == nil {
		return nil
	}

	var alerts []models.Alert
	for _, q := range snap.Ordered() {
		if q.Errored() {
			continue
		}
		abs := math.Abs(q.ChangePercent)
		var severity string
		switch {
		case abs > urgentAlertThreshold:
			severity = models.SeverityUrgent
		case abs > strongMoveThreshold:
			severity = models.SeverityWarning
		default:
			continue
		}
		alerts = append(alerts, models.Alert{
			Symbol:    q.Symbol,
			Severity:  severity,
			Message:   fmt.Sprintf("%s moved %+.2f%% today", q.Symbol, q.ChangePercent),
			Timestamp: now,
		})
	}
	return alerts
}

// PortfolioNarrative renders a holdings-aware summary block used in the
// briefing prompt. Only owned symbols (shares > 0) appear in the
// gainer/loser lists; gainers are sorted descending and losers ascending
// by percent change.
func PortfolioNarrative(snap *models.Snapshot, holdings models.Holdings) string {
	if snap == nil {
		return "Quote data is unavailable right now."
	}

	type position struct {
		quote  models.Quote
		shares float64
		value  float64
	}

	var positions []position
	var totalValue float64
	for _, q := range snap.Ordered() {
		if q.Errored() {
			continue
		}
		shares := holdings[q.Symbol]
		if shares <= 0 {
			continue
		}
		value := q.Price * shares
		totalValue += value
		positions = append(positions, position{quote: q, shares: shares, value: value})
	}

	if len(positions) == 0 {
		return "No tracked holdings yet. Add positions to the portfolio to get a valuation summary."
	}

	gainers := make([]position, 0, len(positions))
	losers := make([]position, 0, len(positions))
	for _, p := range positions {
		if p.quote.ChangePercent > 0 {
			gainers = append(gainers, p)
		} else if p.quote.ChangePercent < 0 {
			losers = append(losers, p)
		}
	}
	sort.Slice(gainers, func(i, j int) bool {
		return gainers[i].quote.ChangePercent > gainers[j].quote.ChangePercent
	})
	sort.Slice(losers, func(i, j int) bool {
		return losers[i].quote.ChangePercent < losers[j].quote.ChangePercent
	})

	var b strings.Builder
	fmt.Fprintf(&b, "PORTFOLIO VALUE: $%.2f across %d positions\n", totalValue, len(positions))
	if len(gainers) > 0 {
		b.WriteString("Top gainers:\n")
		for _, p := range gainers {
			fmt.Fprintf(&b, "  %s: $%.2f (%+.2f%%), %.0f shares worth $%.2f\n",
				p.quote.Symbol, p.quote.Price, p.quote.ChangePercent, p.shares, p.value)
		}
	}
	if len(losers) > 0 {
		b.WriteString("Top losers:\n")
		for _, p := range losers {
			fmt.Fprintf(&b, "  %s: $%.2f (%+.2f%%), %.0f shares worth $%.2f\n",
				p.quote.Symbol, p.quote.Price, p.quote.ChangePercent, p.shares, p.value)
		}
	}
	return b.String()
}
