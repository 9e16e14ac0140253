package models

import "strings"

// EntityProfile is static reference data describing a tracked public
// figure, used to enrich chat context.
type EntityProfile struct {
	Key        string
	Name       string
	Keywords   []string
	Tickers    []string
	Businesses []string
}

// Matches reports whether the lowercased text contains any of the
// profile's keywords.
func (p EntityProfile) Matches(lower string) bool {
	for _, kw := range p.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// TrackedEntities returns the built-in profiles in match-precedence order.
// First matching profile wins during routing.
func TrackedEntities() []EntityProfile {
	return []EntityProfile{
		{
			Key:      "brady",
			Name:     "Tom Brady",
			Keywords: []string{"brady", "tom brady", "tb12"},
		},
		{
			Key:        "elon",
			Name:       "Elon Musk",
			Keywords:   []string{"elon", "musk"},
			Tickers:    []string{"TSLA"},
			Businesses: []string{"Tesla", "SpaceX", "X"},
		},
		{
			Key:        "bezos",
			Name:       "Jeff Bezos",
			Keywords:   []string{"bezos"},
			Tickers:    []string{"AMZN"},
			Businesses: []string{"Amazon", "Blue Origin"},
		},
	}
}

// FindEntity resolves an entity by key.
func FindEntity(key string) (EntityProfile, bool) {
	for _, p := range TrackedEntities() {
		if p.Key == key {
			return p, true
		}
	}
	return EntityProfile{}, false
}
