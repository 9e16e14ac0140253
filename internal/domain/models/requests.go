package models

// ChatRequest is the inbound /chat body.
type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// BriefingRequest selects the briefing flavor.
type BriefingRequest struct {
	Time string `json:"time" default:"morning" validate:"oneof=morning afternoon evening"`
}

// PreferencesRequest updates the per-user settings record.
type PreferencesRequest struct {
	VoiceEnabled    *bool  `json:"voice_enabled,omitempty"`
	VoiceID         string `json:"voice_id,omitempty"`
	AccentIntensity int    `json:"accent_intensity,omitempty" validate:"omitempty,min=1,max=10"`
}

// WatchlistAddRequest adds a symbol to the watchlist.
type WatchlistAddRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=10"`
	Notes  string `json:"notes,omitempty" validate:"max=500"`
}

// HistoryAppendRequest persists one chat exchange.
type HistoryAppendRequest struct {
	Message  string `json:"message" validate:"required"`
	Response string `json:"response" validate:"required"`
}

// PortfolioSetRequest sets held shares for a symbol. Zero shares deletes
// the position.
type PortfolioSetRequest struct {
	Symbol string  `json:"symbol" validate:"required,min=1,max=10"`
	Shares float64 `json:"shares" validate:"gte=0"`
}
