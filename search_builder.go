package stacklens

import (
	"context"

	"github.com/stacklens/stacklens/internal/domain/search/filter"
	"github.com/stacklens/stacklens/internal/domain/search/request"
	"github.com/stacklens/stacklens/internal/domain/search/result"
)

// facetState accumulates one facet's values before the terminal call.
type facetState struct {
	and, or, none []string
	individual    bool
	dedupe        bool
}

func (f *facetState) spec() filter.Spec {
	strategy := filter.Together
	if f.individual {
		strategy = filter.Individual
	}
	return filter.New(f.and, f.or, f.none, strategy, f.dedupe)
}

// SearchBuilder is a fluent builder for faceted searches.
type SearchBuilder struct {
	client *Client

	tech     facetState
	country  facetState
	category facetState
	name     facetState
	domain   facetState

	minTotal       uint
	minPerCategory uint
	text           string
}

// RequireTech requires every listed technology (AND).
func (b *SearchBuilder) RequireTech(techs ...string) *SearchBuilder {
	b.tech.and = append(b.tech.and, techs...)
	return b
}

// AnyTech requires at least one of the listed technologies (OR).
func (b *SearchBuilder) AnyTech(techs ...string) *SearchBuilder {
	b.tech.or = append(b.tech.or, techs...)
	return b
}

// ExcludeTech excludes companies tagged with any listed technology.
func (b *SearchBuilder) ExcludeTech(techs ...string) *SearchBuilder {
	b.tech.none = append(b.tech.none, techs...)
	return b
}

// TechIndividually switches the technology facet to per-value subset
// queries merged as a union.
func (b *SearchBuilder) TechIndividually() *SearchBuilder {
	b.tech.individual = true
	return b
}

// DedupeTech drops duplicate IDs when merging individual tech subsets.
func (b *SearchBuilder) DedupeTech() *SearchBuilder {
	b.tech.dedupe = true
	return b
}

// Countries restricts to the listed country codes.
func (b *SearchBuilder) Countries(codes ...string) *SearchBuilder {
	b.country.and = append(b.country.and, codes...)
	return b
}

// ExcludeCountries excludes the listed country codes.
func (b *SearchBuilder) ExcludeCountries(codes ...string) *SearchBuilder {
	b.country.none = append(b.country.none, codes...)
	return b
}

// Categories restricts to the listed categories.
func (b *SearchBuilder) Categories(categories ...string) *SearchBuilder {
	b.category.and = append(b.category.and, categories...)
	return b
}

// Names restricts to the listed company names.
func (b *SearchBuilder) Names(names ...string) *SearchBuilder {
	b.name.and = append(b.name.and, names...)
	return b
}

// InDomains restricts to the listed company domains.
func (b *SearchBuilder) InDomains(domains ...string) *SearchBuilder {
	b.domain.and = append(b.domain.and, domains...)
	return b
}

// MinTechnologies requires at least n technology tags in total.
func (b *SearchBuilder) MinTechnologies(n uint) *SearchBuilder {
	b.minTotal = n
	return b
}

// MinTechnologiesPerCategory requires some tag category to hold at
// least n technologies.
func (b *SearchBuilder) MinTechnologiesPerCategory(n uint) *SearchBuilder {
	b.minPerCategory = n
	return b
}

// Text adds a free-text query. Only IDs honors it; Run is purely
// structured.
func (b *SearchBuilder) Text(query string) *SearchBuilder {
	b.text = query
	return b
}

func (b *SearchBuilder) request() request.Request {
	return request.Request{
		Technology: b.tech.spec(),
		Country:    b.country.spec(),
		Category:   b.category.spec(),
		Name:       b.name.spec(),
		Domain:     b.domain.spec(),
		Thresholds: filter.NewThresholds(b.minTotal, b.minPerCategory),
		Text:       b.text,
	}
}

// Run executes the structured search and returns full rows.
func (b *SearchBuilder) Run(ctx context.Context) ([]Company, error) {
	rows, err := b.client.searchSvc.Search(ctx, b.request())
	if err != nil {
		return nil, err
	}
	return toCompanies(rows), nil
}

// IDs executes the search and returns matching domains only. When a
// text query is set, text and structured results are intersected.
func (b *SearchBuilder) IDs(ctx context.Context) ([]string, error) {
	return b.client.searchSvc.Combined(ctx, b.text, b.request())
}

func toCompanies(rows []result.Row) []Company {
	out := make([]Company, len(rows))
	for i, row := range rows {
		out[i] = toCompany(row)
	}
	return out
}
