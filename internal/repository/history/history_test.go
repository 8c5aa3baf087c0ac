package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stacklens/stacklens/internal/domain"
)

// memList is an in-process ListStore double.
type memList struct {
	items   []string
	pushErr error
	readErr error
}

func (m *memList) LPush(_ context.Context, _ string, values ...string) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	for _, v := range values {
		m.items = append([]string{v}, m.items...)
	}
	return nil
}

func (m *memList) LRange(_ context.Context, _ string, start, stop int64) ([]string, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if start >= int64(len(m.items)) {
		return []string{}, nil
	}
	if stop >= int64(len(m.items)) {
		stop = int64(len(m.items)) - 1
	}
	return m.items[start : stop+1], nil
}

func (m *memList) LTrim(_ context.Context, _ string, start, stop int64) error {
	if stop >= int64(len(m.items)) {
		stop = int64(len(m.items)) - 1
	}
	if start >= int64(len(m.items)) {
		m.items = nil
		return nil
	}
	m.items = m.items[start : stop+1]
	return nil
}

func TestRecordAndRecent(t *testing.T) {
	store := &memList{}
	repo := New(store, 10)
	repo.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	first, err := repo.Record(context.Background(), "fintech react", "2 filters", 17)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("Record() must assign an ID")
	}
	if _, err := repo.Record(context.Background(), "", "tech: AWS", 3); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Summary != "tech: AWS" || entries[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[1].Results != 17 || !entries[1].At.Equal(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("entry lost fields: %+v", entries[1])
	}
}

func TestRecordTrimsToLimit(t *testing.T) {
	store := &memList{}
	repo := New(store, 3)

	for i := 0; i < 5; i++ {
		if _, err := repo.Record(context.Background(), "", "search", i); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if len(store.items) != 3 {
		t.Fatalf("store holds %d entries, want trimmed to 3", len(store.items))
	}

	var newest Entry
	if err := json.Unmarshal([]byte(store.items[0]), &newest); err != nil {
		t.Fatalf("stored entry not JSON: %v", err)
	}
	if newest.Results != 4 {
		t.Fatalf("newest entry results = %d, want 4", newest.Results)
	}
}

func TestRecentSkipsCorruptEntries(t *testing.T) {
	store := &memList{items: []string{`{"id":"a","summary":"ok","results":1}`, `{broken`, `{"id":"b","summary":"ok","results":2}`}}
	repo := New(store, 10)

	entries, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 with the corrupt one skipped", len(entries))
	}
}

func TestDisabledHistory(t *testing.T) {
	repo := New(nil, 10)

	entry, err := repo.Record(context.Background(), "text", "summary", 1)
	if err != nil {
		t.Fatalf("Record() on disabled history error = %v", err)
	}
	if entry.ID == "" {
		t.Fatal("disabled history still describes the entry")
	}

	entries, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() on disabled history error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %v, want empty", entries)
	}
}

func TestErrorsWrapHistoryUnavailable(t *testing.T) {
	store := &memList{pushErr: errors.New("conn refused"), readErr: errors.New("conn refused")}
	repo := New(store, 10)

	if _, err := repo.Record(context.Background(), "", "s", 0); !errors.Is(err, domain.ErrHistoryUnavailable) {
		t.Fatalf("Record() error = %v, want ErrHistoryUnavailable", err)
	}
	if _, err := repo.Recent(context.Background(), 5); !errors.Is(err, domain.ErrHistoryUnavailable) {
		t.Fatalf("Recent() error = %v, want ErrHistoryUnavailable", err)
	}
}
