// Package textindex provides the lazily built in-memory full-text index
// over company records. The index is constructed on first use and shared
// by all subsequent searches.
package textindex

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/metrics"
)

// DocumentSource supplies the flattened company documents to index.
type DocumentSource interface {
	SearchDocuments(ctx context.Context) ([]domain.SearchDocument, error)
}

// fieldBoosts weight per-field relevance: names matter most, then the
// domain itself, then category and technology tags.
var fieldBoosts = []struct {
	field string
	boost float64
}{
	{"name", 3},
	{"domain", 2},
	{"category", 1.5},
	{"technologies", 1.5},
	{"country", 1},
	{"city", 1},
}

// Index is a lazy singleton over a bleve in-memory index.
type Index struct {
	source DocumentSource
	logger *zap.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	idx    bleve.Index
	builds atomic.Int64
}

// New creates an unbuilt index over source. The first EnsureReady call
// builds it.
func New(source DocumentSource, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{source: source, logger: logger}
}

// EnsureReady builds the index if it has not been built yet. Concurrent
// callers share a single build; all of them observe its outcome. A failed
// build leaves the index unbuilt so a later call can retry.
func (i *Index) EnsureReady(ctx context.Context) error {
	i.mu.RLock()
	ready := i.idx != nil
	i.mu.RUnlock()
	if ready {
		return nil
	}

	_, err, _ := i.group.Do("build", func() (any, error) {
		i.mu.RLock()
		ready := i.idx != nil
		i.mu.RUnlock()
		if ready {
			return nil, nil
		}
		return nil, i.build(ctx)
	})
	if err != nil {
		return fmt.Errorf("text index build: %w: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

func (i *Index) build(ctx context.Context) error {
	docs, err := i.source.SearchDocuments(ctx)
	if err != nil {
		return err
	}

	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.Domain, doc); err != nil {
			return err
		}
	}
	if err := idx.Batch(batch); err != nil {
		return err
	}

	i.mu.Lock()
	i.idx = idx
	i.mu.Unlock()

	i.builds.Add(1)
	metrics.TextIndexBuildsTotal.Inc()
	metrics.TextIndexDocuments.Set(float64(len(docs)))
	i.logger.Info("text index built", zap.Int("documents", len(docs)))
	return nil
}

// Search returns matching company IDs ranked by relevance. It never
// fails: an unbuilt index or a query error yields an empty list.
func (i *Index) Search(ctx context.Context, text string, limit int) []string {
	i.mu.RLock()
	idx := i.idx
	i.mu.RUnlock()

	text = strings.TrimSpace(text)
	if idx == nil || text == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = 100
	}

	req := bleve.NewSearchRequestOptions(buildQuery(text), limit, 0, false)
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		i.logger.Warn("text search failed", zap.String("query", text), zap.Error(err))
		return []string{}
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids
}

// buildQuery matches the query against every field as a fuzzy match and
// as a prefix, weighted by fieldBoosts.
func buildQuery(text string) query.Query {
	parts := make([]query.Query, 0, len(fieldBoosts)*2)
	for _, fb := range fieldBoosts {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(fb.field)
		mq.SetBoost(fb.boost)
		mq.Fuzziness = 1
		parts = append(parts, mq)

		pq := bleve.NewPrefixQuery(strings.ToLower(text))
		pq.SetField(fb.field)
		pq.SetBoost(fb.boost)
		parts = append(parts, pq)
	}
	return bleve.NewDisjunctionQuery(parts...)
}

func buildMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()
	textField.Store = false
	textField.Index = true
	textField.Analyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()
	for _, fb := range fieldBoosts {
		docMapping.AddFieldMappingsAt(fb.field, textField)
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("company", docMapping)
	indexMapping.DefaultType = "company"
	return indexMapping
}
