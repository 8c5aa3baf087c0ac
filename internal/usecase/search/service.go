// Package search is the faceted filter-composition engine: it turns a
// declarative search request into per-facet ID sets, intersects them,
// and assembles the final rows, optionally merged with free-text results.
package search

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/domain/search/filter"
	"github.com/stacklens/stacklens/internal/domain/search/request"
	"github.com/stacklens/stacklens/internal/domain/search/result"
	"github.com/stacklens/stacklens/internal/metrics"
)

const defaultTextLimit = 100

// Service executes structured, text, and combined searches.
type Service struct {
	repo      Repository
	index     TextSearcher
	textLimit int
	logger    *zap.Logger
}

// New creates a search service. textLimit bounds text-search results;
// zero means the default of 100.
func New(repo Repository, index TextSearcher, textLimit int, logger *zap.Logger) *Service {
	if textLimit <= 0 {
		textLimit = defaultTextLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, index: index, textLimit: textLimit, logger: logger}
}

// Search runs the structured search: facet resolvers fan out concurrently,
// their ID sets intersect, and the final restricted query assembles rows
// with aggregate technology counts and post-aggregation thresholds.
func (s *Service) Search(ctx context.Context, req request.Request) ([]result.Row, error) {
	if !req.HasFilters() {
		// No filters: project every company with its tag count directly.
		metrics.SearchesTotal.WithLabelValues("unfiltered").Inc()
		return s.repo.CompanyRows(ctx, nil, filter.Thresholds{})
	}
	metrics.SearchesTotal.WithLabelValues("structured").Inc()
	timer := prometheus.NewTimer(metrics.SearchDuration.WithLabelValues("structured"))
	defer timer.ObserveDuration()

	facets := []struct {
		field domain.Field
		spec  filter.Spec
	}{
		{domain.FieldCountry, req.Country},
		{domain.FieldCategory, req.Category},
		{domain.FieldName, req.Name},
		{domain.FieldDomain, req.Domain},
	}

	// Resolvers are independent read-only queries: fan out, fail fast,
	// and only intersect once every facet has reported.
	results := make([]candidates, len(facets)+1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.resolveTech(gctx, req.Technology, req.Thresholds)
		if err != nil {
			return err
		}
		results[0] = c
		return nil
	})
	for i, f := range facets {
		i, f := i, f
		g.Go(func() error {
			c, err := s.resolveField(gctx, f.field, f.spec)
			if err != nil {
				return err
			}
			results[i+1] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	final := intersect(results)
	if final.restricted && len(final.ids) == 0 {
		return []result.Row{}, nil
	}

	var ids []string
	if final.restricted {
		ids = final.ids
	}
	return s.repo.CompanyRows(ctx, ids, req.Thresholds)
}

// Combined merges free-text and structured results into matching IDs.
// Text search degrades to an empty set when the index cannot be built;
// structured search never touches the index.
func (s *Service) Combined(ctx context.Context, text string, req request.Request) ([]string, error) {
	text = strings.TrimSpace(text)
	hasText := text != ""
	hasFilters := req.HasFilters()

	switch {
	case !hasText && !hasFilters:
		return []string{}, nil

	case hasText && !hasFilters:
		metrics.SearchesTotal.WithLabelValues("text").Inc()
		return s.textIDs(ctx, text), nil

	case !hasText:
		rows, err := s.Search(ctx, req)
		if err != nil {
			return nil, err
		}
		return result.IDs(rows), nil

	default:
		metrics.SearchesTotal.WithLabelValues("combined").Inc()
		rows, err := s.Search(ctx, req)
		if err != nil {
			return nil, err
		}
		sets := []candidates{
			restricted(result.IDs(rows)),
			restricted(s.textIDs(ctx, text)),
		}
		return intersect(sets).ids, nil
	}
}

func (s *Service) textIDs(ctx context.Context, text string) []string {
	if err := s.index.EnsureReady(ctx); err != nil {
		s.logger.Warn("text index unavailable, degrading to empty text results", zap.Error(err))
		return []string{}
	}
	return s.index.Search(ctx, text, s.textLimit)
}

// resolveField resolves one simple facet against a scalar company column.
func (s *Service) resolveField(
	ctx context.Context, field domain.Field, spec filter.Spec,
) (candidates, error) {
	if spec.IsEmpty() {
		return unrestricted(), nil
	}

	if spec.Strategy() == filter.Together {
		ids, err := s.repo.CompanyIDsByField(ctx, field, spec.Allowed(), spec.None())
		if err != nil {
			return candidates{}, err
		}
		return restricted(ids), nil
	}

	var subsets [][]string
	for _, v := range spec.Positive() {
		ids, err := s.repo.CompanyIDsFieldEquals(ctx, field, v)
		if err != nil {
			return candidates{}, err
		}
		subsets = append(subsets, ids)
	}
	for _, v := range spec.None() {
		ids, err := s.repo.CompanyIDsFieldNotEquals(ctx, field, v)
		if err != nil {
			return candidates{}, err
		}
		subsets = append(subsets, ids)
	}
	return restricted(mergeSubsets(subsets, spec.Dedupe())), nil
}

// resolveTech resolves the tag facet, which is additionally aware of the
// numeric thresholds. Unrestricted only when the spec is fully empty and
// both thresholds are zero.
func (s *Service) resolveTech(
	ctx context.Context, spec filter.Spec, th filter.Thresholds,
) (candidates, error) {
	if spec.IsEmpty() && th.IsZero() {
		return unrestricted(), nil
	}

	if spec.Strategy() == filter.Together {
		ids, err := s.repo.CompanyIDsByTechTogether(ctx, spec.And(), spec.Or(), spec.None(), th)
		if err != nil {
			return candidates{}, err
		}
		return restricted(ids), nil
	}

	var subsets [][]string
	for _, v := range spec.Positive() {
		ids, err := s.repo.CompanyIDsWithTech(ctx, v)
		if err != nil {
			return candidates{}, err
		}
		subsets = append(subsets, ids)
	}
	for _, v := range spec.None() {
		ids, err := s.repo.CompanyIDsWithoutTech(ctx, v)
		if err != nil {
			return candidates{}, err
		}
		subsets = append(subsets, ids)
	}
	// Thresholds contribute a subset only when no per-value subsets exist.
	if len(subsets) == 0 && !th.IsZero() {
		ids, err := s.repo.CompanyIDsByThresholds(ctx, th)
		if err != nil {
			return candidates{}, err
		}
		subsets = append(subsets, ids)
	}
	return restricted(mergeSubsets(subsets, spec.Dedupe())), nil
}
