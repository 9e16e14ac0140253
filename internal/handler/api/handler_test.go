package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
	internalrepo "Sully/internal/repository"
	"Sully/internal/usecase"
	"Sully/pkg/cache"
	applogger "Sully/pkg/logger"
)

type stubQuotes struct {
	quotes map[string]repository.RawQuote
}

func (s *stubQuotes) Quote(_ context.Context, symbol string) (repository.RawQuote, error) {
	q, ok := s.quotes[symbol]
	if !ok {
		return repository.RawQuote{}, fmt.Errorf("unknown symbol %s", symbol)
	}
	return q, nil
}

type stubNews struct{}

func (stubNews) Search(context.Context, string) ([]repository.Headline, error) { return nil, nil }
func (stubNews) Configured() bool                                              { return false }

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, []models.Turn) (string, error) {
	return s.reply, s.err
}

type stubSpeech struct{ configured bool }

func (s stubSpeech) Synthesize(context.Context, string, string) (io.ReadCloser, string, error) {
	return io.NopCloser(strings.NewReader("audio")), "audio/mpeg", nil
}
func (s stubSpeech) Configured() bool { return s.configured }

func newTestHandler(t *testing.T, completer repository.Completer, opts ...HandlerOption) (*Handler, *echo.Echo, repository.Store) {
	t.Helper()

	logger, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	quotes := &stubQuotes{quotes: map[string]repository.RawQuote{
		"TSLA": {Price: 250, PreviousClose: 200},
		"AAPL": {Price: 180, PreviousClose: 185},
	}}
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	store := internalrepo.NewKVStore(mc, 0)

	agg := usecase.NewAggregator(quotes, stubNews{}, nil, nil, logger)
	snapCache := usecase.NewSnapshotCache(agg, []string{"TSLA", "AAPL"}, 0, nil, logger)
	engine := usecase.NewConversation(completer, models.Personality{Intensity: 7})
	router := usecase.NewRouter(agg, snapCache, engine, nil)
	briefing := usecase.NewBriefing(snapCache, agg, engine, store, logger)

	h := NewHandler(router, snapCache, agg, briefing, store, stubSpeech{}, logger, opts...)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e, store
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatSuccess(t *testing.T) {
	_, e, store := newTestHandler(t, &stubCompleter{reply: "wicked good, boss"})

	rec := doJSON(t, e, http.MethodPost, "/chat", `{"message":"how are my stocks?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "wicked good, boss" || resp.Error {
		t.Errorf("response = %+v", resp)
	}

	// Successful exchanges land in history.
	history, err := store.History(context.Background(), models.DefaultUser, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Message != "how are my stocks?" {
		t.Errorf("history = %+v", history)
	}
	if history[0].ID == "" {
		t.Errorf("exchange must carry an id")
	}
}

func TestChatValidation(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	// The response envelope carries the 400 in its body status field.
	rec := doJSON(t, e, http.MethodPost, "/chat", `{"message":""}`)
	if !strings.Contains(rec.Body.String(), "ERR_") {
		t.Errorf("expected validation error payload, got %s", rec.Body.String())
	}
}

func TestChatNotConfigured(t *testing.T) {
	_, e, store := newTestHandler(t, nil)

	rec := doJSON(t, e, http.MethodPost, "/chat", `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded chat must answer 200, got %d", rec.Code)
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Error || resp.Response == "" {
		t.Errorf("expected error-flagged fixed message, got %+v", resp)
	}

	// Failed replies never land in history.
	history, _ := store.History(context.Background(), models.DefaultUser, 0)
	if len(history) != 0 {
		t.Errorf("degraded exchange persisted: %+v", history)
	}
}

func TestChatCompleterFailure(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{err: fmt.Errorf("provider down")})

	rec := doJSON(t, e, http.MethodPost, "/chat", `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp chatResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Error {
		t.Errorf("expected error flag, got %+v", resp)
	}
}

func TestCompletionBudgetSharedAcrossChatAndBriefing(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"}, WithChatRateLimit(1))

	// The single token goes to the chat call.
	rec := doJSON(t, e, http.MethodPost, "/chat", `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first call status = %d", rec.Code)
	}

	// A briefing right after draws from the same budget and is refused.
	rec = doJSON(t, e, http.MethodPost, "/api/briefing", `{"time":"morning"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("briefing over budget status = %d, want 429", rec.Code)
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Error || resp.Response == "" {
		t.Errorf("expected error-flagged refusal, got %+v", resp)
	}
}

func TestStocksEndpoint(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodGet, "/api/stocks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp stocksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
	if q := resp.Stocks["TSLA"]; q.Price != 250 || q.ChangePercent != 25 {
		t.Errorf("TSLA = %+v", q)
	}
}

func TestStocksSymbolsOverride(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodGet, "/api/stocks?symbols=tsla", "")
	var resp stocksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
	if _, ok := resp.Stocks["TSLA"]; !ok {
		t.Errorf("symbols override must uppercase, got %v", resp.Stocks)
	}
}

func TestInsightsEndpoint(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodGet, "/api/insights", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp insightsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// TSLA +25% is both a strong gain and an urgent alert.
	var urgent bool
	for _, a := range resp.Alerts {
		if a.Symbol == "TSLA" && a.Severity == models.SeverityUrgent {
			urgent = true
		}
	}
	if !urgent {
		t.Errorf("expected urgent TSLA alert, got %+v", resp.Alerts)
	}
}

func TestWatchlistFlow(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodPost, "/api/watchlist", `{"symbol":"nvda","notes":"ai play"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/api/watchlist", "")
	if !strings.Contains(rec.Body.String(), "NVDA") {
		t.Errorf("watchlist read missing NVDA: %s", rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodDelete, "/api/watchlist/NVDA", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/watchlist", "")
	if strings.Contains(rec.Body.String(), "NVDA") {
		t.Errorf("NVDA survived delete: %s", rec.Body.String())
	}
}

func TestPortfolioFlow(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodPost, "/api/portfolio", `{"symbol":"tsla","shares":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/api/portfolio", "")
	var resp struct {
		Holdings models.Holdings `json:"holdings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Holdings["TSLA"] != 10 {
		t.Errorf("holdings = %v", resp.Holdings)
	}
}

func TestPreferencesFlow(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodPost, "/api/preferences", `{"voice_enabled":true,"accent_intensity":9}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/api/preferences", "")
	var prefs models.Preferences
	if err := json.Unmarshal(rec.Body.Bytes(), &prefs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !prefs.VoiceEnabled || prefs.AccentIntensity != 9 {
		t.Errorf("prefs = %+v", prefs)
	}
}

func TestTTSNotConfigured(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodGet, "/tts?text=hello", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBriefingEndpoint(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "heah's ya rundown"})

	rec := doJSON(t, e, http.MethodPost, "/api/briefing", `{"time":"morning"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp usecase.BriefingResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Briefing != "heah's ya rundown" || resp.Time != "morning" {
		t.Errorf("briefing = %+v", resp)
	}
}

func TestBriefingInvalidTime(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodPost, "/api/briefing", `{"time":"midnight"}`)
	if !strings.Contains(rec.Body.String(), "ERR_ONEOF") {
		t.Errorf("expected oneof validation error, got %s", rec.Body.String())
	}
}

func TestHistoryAppendEndpoint(t *testing.T) {
	_, e, _ := newTestHandler(t, &stubCompleter{reply: "x"})

	rec := doJSON(t, e, http.MethodPost, "/api/history", `{"message":"q","response":"a"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("append status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/api/history?limit=10", "")
	var resp struct {
		History []models.Exchange `json:"history"`
		Count   int               `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.History[0].Message != "q" {
		t.Errorf("history = %+v", resp)
	}
}
