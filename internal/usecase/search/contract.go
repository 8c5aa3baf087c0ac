package search

import (
	"context"

	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/domain/search/filter"
	"github.com/stacklens/stacklens/internal/domain/search/result"
)

// Repository defines the read-only record store contract the filter
// engine resolves against.
type Repository interface {
	// Simple facets (scalar company columns).
	CompanyIDsByField(ctx context.Context, field domain.Field, allowed, excluded []string) ([]string, error)
	CompanyIDsFieldEquals(ctx context.Context, field domain.Field, value string) ([]string, error)
	CompanyIDsFieldNotEquals(ctx context.Context, field domain.Field, value string) ([]string, error)

	// Tag facet (company_tech relation).
	CompanyIDsByTechTogether(ctx context.Context, and, or, none []string, th filter.Thresholds) ([]string, error)
	CompanyIDsWithTech(ctx context.Context, tech string) ([]string, error)
	CompanyIDsWithoutTech(ctx context.Context, tech string) ([]string, error)
	CompanyIDsByThresholds(ctx context.Context, th filter.Thresholds) ([]string, error)

	// Final assembly.
	CompanyRows(ctx context.Context, ids []string, th filter.Thresholds) ([]result.Row, error)
}

// TextSearcher is the lazily built free-text index. Search never fails:
// an unready or empty index yields an empty list.
type TextSearcher interface {
	EnsureReady(ctx context.Context) error
	Search(ctx context.Context, query string, limit int) []string
}
