package app

import (
	"context"
	"strings"

	"staybook/internal/domain"
)

// MaxHistoryEntries bounds the persisted search history.
const MaxHistoryEntries = 10

// Search owns the in-memory hotel list and its filtered view for the
// lifetime of a search screen, plus the bounded search history. Not safe for
// concurrent use: all operations run on one caller-owned goroutine.
type Search struct {
	store domain.HistoryStore

	all     []domain.Hotel
	visible []domain.Hotel
	query   string
	history []string
}

func NewSearch(store domain.HistoryStore) *Search {
	return &Search{store: store}
}

// LoadHistory reads the persisted history. Call once before first use.
func (s *Search) LoadHistory(ctx context.Context) error {
	h, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.history = h
	return nil
}

// SetSource replaces the full list. The active filter, if any, is re-applied
// against the new list.
func (s *Search) SetSource(hotels []domain.Hotel) {
	s.all = hotels
	s.apply()
}

// Filter derives the visible list from the current source. A blank query
// clears the filter. Matching is a case-insensitive substring test on the
// hotel name; source order is preserved. Idempotent and stateless with
// respect to prior filters.
func (s *Search) Filter(query string) []domain.Hotel {
	if strings.TrimSpace(query) == "" {
		s.query = ""
	} else {
		s.query = query
	}
	s.apply()
	return s.visible
}

func (s *Search) apply() {
	if s.query == "" {
		s.visible = s.all
		return
	}
	q := strings.ToLower(s.query)
	out := make([]domain.Hotel, 0, len(s.all))
	for _, h := range s.all {
		if strings.Contains(strings.ToLower(h.Name), q) {
			out = append(out, h)
		}
	}
	s.visible = out
}

// Visible returns the current filtered view. An empty result after filtering
// is a valid state; the caller renders the empty-state message with the
// literal query text.
func (s *Search) Visible() []domain.Hotel { return s.visible }

// Query returns the active query, empty when the filter is cleared.
func (s *Search) Query() string { return s.query }

// RecordQuery inserts a submitted query at the front of the history,
// deduplicating by exact match and truncating to MaxHistoryEntries. Blank
// queries are ignored. Persists synchronously.
func (s *Search) RecordQuery(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	s.history = remove(s.history, query)
	s.history = append([]string{query}, s.history...)
	if len(s.history) > MaxHistoryEntries {
		s.history = s.history[:MaxHistoryEntries]
	}
	return s.store.Save(ctx, s.history)
}

// RemoveFromHistory deletes the exact entry if present and persists.
func (s *Search) RemoveFromHistory(ctx context.Context, query string) error {
	n := len(s.history)
	s.history = remove(s.history, query)
	if len(s.history) == n {
		return nil
	}
	return s.store.Save(ctx, s.history)
}

// ClearHistory drops every entry and persists the empty history.
func (s *Search) ClearHistory(ctx context.Context) error {
	if len(s.history) == 0 {
		return nil
	}
	s.history = nil
	return s.store.Save(ctx, nil)
}

// History returns the entries most-recent-first.
func (s *Search) History() []string { return s.history }

// remove allocates a new slice so that history snapshots handed out earlier
// are never rewritten behind the caller's back.
func remove(entries []string, q string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e != q {
			out = append(out, e)
		}
	}
	return out
}
