package models

import "time"

// HistoryWindow is the fixed trailing window kept per symbol.
const HistoryWindow = 30

// Quote is one symbol's entry inside a Snapshot. A failed per-symbol
// lookup still produces a Quote, with Err set and the numeric fields zero.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	PreviousClose float64   `json:"previous_close"`
	Volume        int64     `json:"volume"`
	History       []float64 `json:"history,omitempty"`
	Err           string    `json:"error,omitempty"`
}

// Errored reports whether the quote lookup for this symbol failed.
func (q Quote) Errored() bool { return q.Err != "" }

// Trend returns a plain-text trend label (UP/DOWN/FLAT) suitable for
// prompts that may be read aloud.
func (q Quote) Trend() string {
	switch {
	case q.Change > 0:
		return "UP"
	case q.Change < 0:
		return "DOWN"
	default:
		return "FLAT"
	}
}

// Snapshot is one atomically replaced bundle of per-symbol quotes sharing
// a single fetch timestamp. Symbols preserves the fetch order since the
// Stocks map does not.
type Snapshot struct {
	Stocks    map[string]Quote `json:"stocks"`
	Symbols   []string         `json:"-"`
	FetchedAt time.Time        `json:"timestamp"`
}

// Age returns the snapshot age relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Stale reports whether the snapshot is older than maxAge.
func (s *Snapshot) Stale(now time.Time, maxAge time.Duration) bool {
	return s.Age(now) > maxAge
}

// Ordered returns quotes in fetch order.
func (s *Snapshot) Ordered() []Quote {
	out := make([]Quote, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		if q, ok := s.Stocks[sym]; ok {
			out = append(out, q)
		}
	}
	return out
}
