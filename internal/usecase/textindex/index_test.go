package textindex

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/stacklens/stacklens/internal/domain"
)

type stubSource struct {
	docs  []domain.SearchDocument
	err   error
	calls atomic.Int64
}

func (s *stubSource) SearchDocuments(context.Context) ([]domain.SearchDocument, error) {
	s.calls.Add(1)
	return s.docs, s.err
}

func fixtureDocs() []domain.SearchDocument {
	return []domain.SearchDocument{
		{Domain: "acme.com", Name: "Acme Corp", Category: "Fintech", Country: "US", City: "New York", Technologies: "React,AWS,Go"},
		{Domain: "globex.io", Name: "Globex", Category: "E-commerce", Country: "UK", City: "London", Technologies: "React,PHP"},
		{Domain: "umbrella.org", Name: "Umbrella", Category: "Biotech", Country: "DE", City: "Berlin", Technologies: ""},
	}
}

func TestEnsureReadyBuildsOnce(t *testing.T) {
	src := &stubSource{docs: fixtureDocs()}
	idx := New(src, zap.NewNop())

	for i := 0; i < 3; i++ {
		if err := idx.EnsureReady(context.Background()); err != nil {
			t.Fatalf("EnsureReady() error = %v", err)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("source read %d times, want 1", got)
	}
	if got := idx.builds.Load(); got != 1 {
		t.Fatalf("index built %d times, want 1", got)
	}
}

func TestEnsureReadyConcurrent(t *testing.T) {
	src := &stubSource{docs: fixtureDocs()}
	idx := New(src, zap.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = idx.EnsureReady(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: EnsureReady() error = %v", i, err)
		}
	}
	if got := idx.builds.Load(); got != 1 {
		t.Fatalf("index built %d times, want exactly 1", got)
	}
}

func TestEnsureReadyPropagatesSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("store down")}
	idx := New(src, zap.NewNop())

	err := idx.EnsureReady(context.Background())
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("EnsureReady() error = %v, want ErrIndexUnavailable", err)
	}

	// A failed build leaves the index retryable.
	src.err = nil
	src.docs = fixtureDocs()
	if err := idx.EnsureReady(context.Background()); err != nil {
		t.Fatalf("retry after failed build: %v", err)
	}
}

func TestSearchUnbuiltReturnsEmpty(t *testing.T) {
	idx := New(&stubSource{}, zap.NewNop())
	if got := idx.Search(context.Background(), "acme", 10); len(got) != 0 {
		t.Fatalf("unbuilt index returned %v, want empty", got)
	}
}

func TestSearchMatchesAcrossFields(t *testing.T) {
	idx := New(&stubSource{docs: fixtureDocs()}, zap.NewNop())
	if err := idx.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"company name", "Acme", "acme.com"},
		{"category", "biotech", "umbrella.org"},
		{"technology tag", "PHP", "globex.io"},
		{"city", "berlin", "umbrella.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := idx.Search(context.Background(), tt.query, 10)
			if len(ids) == 0 {
				t.Fatalf("Search(%q) returned no results", tt.query)
			}
			if ids[0] != tt.want {
				t.Fatalf("Search(%q) top hit = %q, want %q", tt.query, ids[0], tt.want)
			}
		})
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	idx := New(&stubSource{docs: fixtureDocs()}, zap.NewNop())
	if err := idx.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}

	// "React" tags acme.com and globex.io.
	ids := idx.Search(context.Background(), "React", 1)
	if len(ids) != 1 {
		t.Fatalf("Search with limit 1 returned %d results", len(ids))
	}
}

func TestSearchBlankQueryReturnsEmpty(t *testing.T) {
	idx := New(&stubSource{docs: fixtureDocs()}, zap.NewNop())
	if err := idx.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if got := idx.Search(context.Background(), "   ", 10); len(got) != 0 {
		t.Fatalf("blank query returned %v, want empty", got)
	}
}
