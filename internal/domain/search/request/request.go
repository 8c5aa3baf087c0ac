// Package request defines the structured search request: one facet spec
// per filterable dimension, the numeric thresholds, and an optional
// free-text query.
package request

import (
	"strings"

	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/domain/search/filter"
)

// Request is a structured search. The zero value matches everything.
// Transport performs shape validation; the core only interprets semantics.
type Request struct {
	Technology filter.Spec
	Country    filter.Spec
	Category   filter.Spec
	Name       filter.Spec
	Domain     filter.Spec
	Thresholds filter.Thresholds
	Text       string
}

// Fields returns the simple-facet specs keyed by company column.
// Technology is absent: it resolves through the tag relation.
func (r Request) Fields() map[domain.Field]filter.Spec {
	return map[domain.Field]filter.Spec{
		domain.FieldCountry:  r.Country,
		domain.FieldCategory: r.Category,
		domain.FieldName:     r.Name,
		domain.FieldDomain:   r.Domain,
	}
}

// HasFilters reports whether any facet or threshold is active.
func (r Request) HasFilters() bool {
	if !r.Technology.IsEmpty() || !r.Thresholds.IsZero() {
		return true
	}
	for _, spec := range r.Fields() {
		if !spec.IsEmpty() {
			return true
		}
	}
	return false
}

// TextQuery returns the trimmed free-text query, empty if none.
func (r Request) TextQuery() string {
	return strings.TrimSpace(r.Text)
}
