package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"Sully/internal/domain/models"
)

type fakeCompleter struct {
	reply string
	err   error
	seen  [][]models.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, turns []models.Turn) (string, error) {
	copied := append([]models.Turn(nil), turns...)
	f.seen = append(f.seen, copied)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestReplyNotConfigured(t *testing.T) {
	engine := NewConversation(nil, models.Personality{Intensity: 7})
	if _, err := engine.Reply(context.Background(), "hello", nil); err != ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestReplyAppendsBothTurns(t *testing.T) {
	completer := &fakeCompleter{reply: "wicked good, boss"}
	engine := NewConversation(completer, models.Personality{Intensity: 7})

	if _, err := engine.Reply(context.Background(), "how we doin?", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.history) != 2 {
		t.Fatalf("history length = %d, want 2", len(engine.history))
	}
	if engine.history[0].Role != models.RoleUser || engine.history[1].Role != models.RoleAssistant {
		t.Errorf("unexpected roles: %v %v", engine.history[0].Role, engine.history[1].Role)
	}
}

func TestReplyFailureLeavesHistoryUntouched(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	engine := NewConversation(completer, models.Personality{Intensity: 7})

	if _, err := engine.Reply(context.Background(), "first", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	completer.err = fmt.Errorf("provider down")
	if _, err := engine.Reply(context.Background(), "second", nil); err == nil {
		t.Fatalf("expected error")
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.history) != 2 {
		t.Fatalf("failed reply must not mutate history, length = %d", len(engine.history))
	}
}

func TestReplyWindowsHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "yep"}
	engine := NewConversation(completer, models.Personality{Intensity: 7})

	for i := 0; i < 8; i++ {
		if _, err := engine.Reply(context.Background(), fmt.Sprintf("msg %d", i), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	last := completer.seen[len(completer.seen)-1]
	var prior int
	for _, turn := range last {
		if turn.Role != models.RoleSystem {
			prior++
		}
	}
	// HistoryWindow prior turns plus the new user turn.
	if prior != HistoryWindow+1 {
		t.Errorf("non-system turns sent = %d, want %d", prior, HistoryWindow+1)
	}

	// The oldest exchanges must have aged out of the window.
	for _, turn := range last {
		if turn.Role == models.RoleUser && turn.Text == "msg 0" {
			t.Errorf("oldest turn still in window")
		}
	}
}

func TestReplyAttachesSnapshot(t *testing.T) {
	completer := &fakeCompleter{reply: "got it"}
	engine := NewConversation(completer, models.Personality{Intensity: 7})

	snap := &models.Snapshot{
		Stocks:    map[string]models.Quote{"TSLA": {Symbol: "TSLA", Price: 250}},
		Symbols:   []string{"TSLA"},
		FetchedAt: time.Now(),
	}
	if _, err := engine.Reply(context.Background(), "stocks?", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := completer.seen[0]
	var found bool
	for _, turn := range sent {
		if turn.Role == models.RoleSystem && strings.Contains(turn.Text, "CURRENT MARKET DATA") {
			found = true
			if !strings.Contains(turn.Text, "TSLA") {
				t.Errorf("market data turn missing symbol")
			}
		}
	}
	if !found {
		t.Errorf("expected a market data system turn")
	}
}

func TestIntensityClamped(t *testing.T) {
	engine := NewConversation(&fakeCompleter{reply: "x"}, models.Personality{Intensity: 99})
	if engine.personality.Intensity != 10 {
		t.Errorf("intensity = %d, want 10", engine.personality.Intensity)
	}
	engine = NewConversation(&fakeCompleter{reply: "x"}, models.Personality{Intensity: -3})
	if engine.personality.Intensity != 1 {
		t.Errorf("intensity = %d, want 1", engine.personality.Intensity)
	}
}

func TestAskDoesNotTouchHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "briefing text"}
	engine := NewConversation(completer, models.Personality{Intensity: 7})

	if _, err := engine.Ask(context.Background(), "give me the rundown", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.history) != 0 {
		t.Errorf("one-shot ask must not write history")
	}
}
