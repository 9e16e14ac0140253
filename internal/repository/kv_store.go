package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"Sully/internal/domain/models"
	"Sully/pkg/cache"
)

// maxStoredExchanges bounds the persisted chat history per user. Older
// exchanges are dropped on append.
const maxStoredExchanges = 200

// ErrPersistenceWrite tags failed record writes so handlers can map them
// to a persistence failure response instead of a generic 500.
var ErrPersistenceWrite = errors.New("persistence write failed")

// KVStore keeps per-user records as JSON blobs in the cache service. The
// same code runs over Redis or the in-process fallback; values are always
// stored as strings so both backends round-trip identically.
type KVStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewKVStore creates a record store. ttl <= 0 means records do not expire
// (backends treat it as their long default).
func NewKVStore(c cache.Service, ttl time.Duration) *KVStore {
	return &KVStore{cache: c, ttl: ttl}
}

func prefsKey(user string) string     { return cache.GenerateKey("records:prefs", user) }
func watchlistKey(user string) string { return cache.GenerateKey("records:watchlist", user) }
func historyKey(user string) string   { return cache.GenerateKey("records:history", user) }
func holdingsKey(user string) string  { return cache.GenerateKey("records:holdings", user) }

func (s *KVStore) read(ctx context.Context, key string, dest interface{}) (bool, error) {
	var raw string
	err := s.cache.Get(ctx, key, &raw)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *KVStore) write(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistenceWrite, key, err)
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistenceWrite, key, err)
	}
	return nil
}

// Preferences returns the user's settings, or defaults when none are
// stored yet.
func (s *KVStore) Preferences(ctx context.Context, user string) (models.Preferences, error) {
	prefs := models.Preferences{User: user, AccentIntensity: 8}
	if _, err := s.read(ctx, prefsKey(user), &prefs); err != nil {
		return models.Preferences{}, err
	}
	prefs.User = user
	return prefs, nil
}

func (s *KVStore) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	if prefs.User == "" {
		prefs.User = models.DefaultUser
	}
	prefs.UpdatedAt = time.Now()
	return s.write(ctx, prefsKey(prefs.User), prefs)
}

func (s *KVStore) Watchlist(ctx context.Context, user string) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	if _, err := s.read(ctx, watchlistKey(user), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddWatchlist upserts one symbol. Re-adding an existing symbol replaces
// its notes and keeps the original position.
func (s *KVStore) AddWatchlist(ctx context.Context, user string, entry models.WatchlistEntry) error {
	entry.Symbol = strings.ToUpper(entry.Symbol)
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}

	entries, err := s.Watchlist(ctx, user)
	if err != nil {
		return err
	}
	replaced := false
	for i, e := range entries {
		if e.Symbol == entry.Symbol {
			entry.AddedAt = e.AddedAt
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	return s.write(ctx, watchlistKey(user), entries)
}

func (s *KVStore) RemoveWatchlist(ctx context.Context, user, symbol string) error {
	symbol = strings.ToUpper(symbol)
	entries, err := s.Watchlist(ctx, user)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Symbol != symbol {
			kept = append(kept, e)
		}
	}
	return s.write(ctx, watchlistKey(user), kept)
}

// History returns the most recent exchanges, newest last. limit <= 0
// returns everything stored.
func (s *KVStore) History(ctx context.Context, user string, limit int) ([]models.Exchange, error) {
	var exchanges []models.Exchange
	if _, err := s.read(ctx, historyKey(user), &exchanges); err != nil {
		return nil, err
	}
	if limit > 0 && len(exchanges) > limit {
		exchanges = exchanges[len(exchanges)-limit:]
	}
	return exchanges, nil
}

func (s *KVStore) AppendHistory(ctx context.Context, user string, ex models.Exchange) error {
	exchanges, err := s.History(ctx, user, 0)
	if err != nil {
		return err
	}
	exchanges = append(exchanges, ex)
	if len(exchanges) > maxStoredExchanges {
		exchanges = exchanges[len(exchanges)-maxStoredExchanges:]
	}
	return s.write(ctx, historyKey(user), exchanges)
}

func (s *KVStore) Holdings(ctx context.Context, user string) (models.Holdings, error) {
	holdings := models.Holdings{}
	if _, err := s.read(ctx, holdingsKey(user), &holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

// SetHolding sets the share count for one symbol. Zero or negative shares
// removes the position.
func (s *KVStore) SetHolding(ctx context.Context, user, symbol string, shares float64) error {
	symbol = strings.ToUpper(symbol)
	holdings, err := s.Holdings(ctx, user)
	if err != nil {
		return err
	}
	if shares > 0 {
		holdings[symbol] = shares
	} else {
		delete(holdings, symbol)
	}
	return s.write(ctx, holdingsKey(user), holdings)
}
