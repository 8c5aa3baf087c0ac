// Package history keeps a bounded record of recent searches in the
// shared list store.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stacklens/stacklens/internal/db"
	"github.com/stacklens/stacklens/internal/domain"
)

const key = "search:history"

// Entry is one recorded search.
type Entry struct {
	ID      string    `json:"id"`
	Text    string    `json:"text,omitempty"`
	Summary string    `json:"summary"`
	Results int       `json:"results"`
	At      time.Time `json:"at"`
}

// Repo stores search history entries. A nil store disables history:
// Record becomes a no-op and Recent returns nothing.
type Repo struct {
	store db.ListStore
	limit int64
	now   func() time.Time
}

func New(store db.ListStore, limit int) *Repo {
	if limit <= 0 {
		limit = 50
	}
	return &Repo{store: store, limit: int64(limit), now: time.Now}
}

// Record prepends an entry and trims the list to the configured limit.
func (r *Repo) Record(ctx context.Context, text, summary string, results int) (Entry, error) {
	entry := Entry{
		ID:      uuid.NewString(),
		Text:    text,
		Summary: summary,
		Results: results,
		At:      r.now().UTC(),
	}
	if r.store == nil {
		return entry, nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("record history: %w: %w", domain.ErrHistoryUnavailable, err)
	}
	if err := r.store.LPush(ctx, key, string(raw)); err != nil {
		return Entry{}, fmt.Errorf("record history: %w: %w", domain.ErrHistoryUnavailable, err)
	}
	if err := r.store.LTrim(ctx, key, 0, r.limit-1); err != nil {
		return Entry{}, fmt.Errorf("trim history: %w: %w", domain.ErrHistoryUnavailable, err)
	}
	return entry, nil
}

// Recent returns up to n entries, newest first. Corrupt entries are
// skipped rather than failing the whole read.
func (r *Repo) Recent(ctx context.Context, n int) ([]Entry, error) {
	if r.store == nil {
		return []Entry{}, nil
	}
	if n <= 0 || int64(n) > r.limit {
		n = int(r.limit)
	}

	raw, err := r.store.LRange(ctx, key, 0, int64(n)-1)
	if err != nil {
		return nil, fmt.Errorf("read history: %w: %w", domain.ErrHistoryUnavailable, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
