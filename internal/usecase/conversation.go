package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
)

// HistoryWindow is the number of prior turns (3 user/assistant pairs)
// included as completion context. Older turns stay in the live history
// slice but are no longer sent.
const HistoryWindow = 6

// ErrNotConfigured is returned when no completion credential is set.
var ErrNotConfigured = errors.New("completion provider not configured")

// Conversation is the conversation engine: a rolling turn history plus a
// personality-derived system prompt, forwarded to the completion
// provider. History is guarded by a mutex; the provider call itself runs
// outside the lock.
type Conversation struct {
	completer   repository.Completer
	personality models.Personality

	mu      sync.Mutex
	history []models.Turn
}

// NewConversation creates a conversation engine. completer may be nil
// when no credential is configured; Reply then returns ErrNotConfigured.
func NewConversation(completer repository.Completer, personality models.Personality) *Conversation {
	if personality.Intensity < 1 {
		personality.Intensity = 1
	}
	if personality.Intensity > 10 {
		personality.Intensity = 10
	}
	return &Conversation{completer: completer, personality: personality}
}

// Reply sends userText with the optional market snapshot attached and
// returns the assistant's reply verbatim. On success both turns are
// appended to history; on failure history is untouched and the error
// propagates without retry.
func (c *Conversation) Reply(ctx context.Context, userText string, snapshot *models.Snapshot) (string, error) {
	if c.completer == nil {
		return "", ErrNotConfigured
	}

	c.mu.Lock()
	window := c.window()
	c.mu.Unlock()

	turns := c.assemble(userText, snapshot, window)

	reply, err := c.completer.Complete(ctx, turns)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.history = append(c.history,
		models.Turn{Role: models.RoleUser, Text: userText},
		models.Turn{Role: models.RoleAssistant, Text: reply},
	)
	c.mu.Unlock()

	return reply, nil
}

// Ask performs a one-shot completion with the same personality but
// without reading or writing history. Used for briefings.
func (c *Conversation) Ask(ctx context.Context, prompt string, snapshot *models.Snapshot) (string, error) {
	if c.completer == nil {
		return "", ErrNotConfigured
	}
	return c.completer.Complete(ctx, c.assemble(prompt, snapshot, nil))
}

// window returns the most recent HistoryWindow turns. Caller holds mu.
func (c *Conversation) window() []models.Turn {
	if len(c.history) <= HistoryWindow {
		return append([]models.Turn(nil), c.history...)
	}
	return append([]models.Turn(nil), c.history[len(c.history)-HistoryWindow:]...)
}

func (c *Conversation) assemble(userText string, snapshot *models.Snapshot, window []models.Turn) []models.Turn {
	turns := make([]models.Turn, 0, len(window)+3)
	turns = append(turns, models.Turn{Role: models.RoleSystem, Text: systemPrompt(c.personality)})

	if snapshot != nil {
		if data, err := json.MarshalIndent(snapshot.Stocks, "", "  "); err == nil {
			turns = append(turns, models.Turn{
				Role: models.RoleSystem,
				Text: "CURRENT MARKET DATA:\n" + string(data),
			})
		}
	}

	turns = append(turns, window...)
	turns = append(turns, models.Turn{Role: models.RoleUser, Text: userText})
	return turns
}

// systemPrompt renders the fixed personality template. The formatting
// rules matter for voice output: replies may be read aloud, so the model
// is told to use plain trend words instead of decorative symbols.
func systemPrompt(p models.Personality) string {
	return fmt.Sprintf(`You are Sully, a wicked smaht AI assistant from Boston. You work for Roof ER (The Roof Docs), a storm restoration roofing company covering Virginia to Pennsylvania. You help the boss man stay on top of his stocks, the Patriots, the Celtics, and fantasy football.

PERSONALITY:
- Boston accent level %d/10. Use it naturally, not forced: drop R's (cah, heah, pahk), use "wicked" as an intensifier, throw in "kid", "guy", "boss".
- You're genuinely sharp about markets and sports, not just accent jokes.
- Patriots and Celtics are your life. Dunkin' over Starbucks, always.
- You respect the DMV territory (DC/Maryland/Virginia) where the company works. Storm season is business season: "if it's rainin', we're gainin'".
- Funny but respectful. Boss man is the boss.

FORMATTING:
- Short paragraphs. No long run-on sentences.
- Replies may be read aloud by a voice engine: describe market moves with plain words like UP, DOWN or FLAT instead of arrows or decorative symbols.`, p.Intensity)
}
