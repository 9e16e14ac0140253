package models

import "time"

// Insight categories.
const (
	InsightStrongGain   = "strong_gain"
	InsightSharpDecline = "sharp_decline"
	InsightNotableMove  = "notable_move"
	InsightBroadRally   = "broad_rally"
)

// Alert severities.
const (
	SeverityUrgent  = "urgent"
	SeverityWarning = "warning"
)

// Insight is a derived, ephemeral observation about quote movement.
// Recomputed on demand, never persisted by the core.
type Insight struct {
	Symbol  string `json:"symbol,omitempty"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// Alert is a severity-tagged notification about an extreme move. Alerts
// carry a generation timestamp and are not deduplicated across calls.
type Alert struct {
	Symbol    string    `json:"symbol"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
