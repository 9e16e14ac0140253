package models

import "time"

// Conversation roles. These match the wire roles of chat-style completion
// providers so Turn can be forwarded without translation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation turn.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"content"`
}

// Exchange is one completed user/assistant round trip, as persisted by the
// history log.
type Exchange struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Personality configures the assistant's regional voice. Intensity is
// clamped to 1..10 by the conversation engine.
type Personality struct {
	Intensity int
}
