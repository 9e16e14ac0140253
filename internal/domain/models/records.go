package models

import "time"

// DefaultUser is the implicit single-operator identity. Handlers take the
// user from the request context so a real identity layer can slot in
// later; today everything resolves to this.
const DefaultUser = "boss"

// Preferences is the per-user settings record.
type Preferences struct {
	User            string    `json:"user"`
	VoiceEnabled    bool      `json:"voice_enabled"`
	VoiceID         string    `json:"voice_id,omitempty"`
	AccentIntensity int       `json:"accent_intensity"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WatchlistEntry is one tracked symbol with optional notes.
type WatchlistEntry struct {
	Symbol  string    `json:"symbol"`
	Notes   string    `json:"notes,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// Holdings maps ticker symbol to held share count.
type Holdings map[string]float64
