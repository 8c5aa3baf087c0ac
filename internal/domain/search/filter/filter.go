// Package filter defines the declarative shape of one facet's constraint:
// AND/OR/NONE value groups, a combination strategy, and the numeric
// thresholds applied to the technology relation.
package filter

import "strings"

// Strategy selects how a facet's values combine.
type Strategy string

const (
	// Together evaluates one compound condition per record across all
	// supplied values.
	Together Strategy = "together"
	// Individual runs one subset query per value and merges (unions) the
	// results.
	Individual Strategy = "individual"
)

// ParseStrategy maps a wire string to a Strategy. Unknown or empty input
// normalizes to Together rather than failing.
func ParseStrategy(s string) Strategy {
	if s == string(Individual) {
		return Individual
	}
	return Together
}

// Spec is one facet's constraint. The zero value is the fully empty
// (unrestricting) spec; a missing facet on the wire normalizes to it.
//
// Values in none and values in and/or are mutually exclusive by caller
// convention only. The engine does not enforce it: overlapping values
// simply produce contradictory conjunctive conditions.
type Spec struct {
	and      []string
	or       []string
	none     []string
	strategy Strategy
	dedupe   bool
}

// New creates a facet Spec. Values are trimmed and blank values dropped,
// so a list of blanks reads as no constraint.
func New(and, or, none []string, strategy Strategy, dedupe bool) Spec {
	return Spec{
		and:      cleanValues(and),
		or:       cleanValues(or),
		none:     cleanValues(none),
		strategy: strategy,
		dedupe:   dedupe,
	}
}

func cleanValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// And returns the values that must all hold.
func (s Spec) And() []string { return s.and }

// Or returns the values of which at least one must hold.
func (s Spec) Or() []string { return s.or }

// None returns the excluded values.
func (s Spec) None() []string { return s.none }

// Strategy returns the combination strategy. The zero value reads as Together.
func (s Spec) Strategy() Strategy {
	if s.strategy == Individual {
		return Individual
	}
	return Together
}

// Dedupe reports whether Individual-strategy subset merges drop duplicate IDs.
func (s Spec) Dedupe() bool { return s.dedupe }

// IsEmpty reports whether the spec imposes no constraint.
func (s Spec) IsEmpty() bool {
	return len(s.and) == 0 && len(s.or) == 0 && len(s.none) == 0
}

// Positive returns and followed by or, duplicates kept. Individual-strategy
// resolvers issue one subset query per element in this exact order.
func (s Spec) Positive() []string {
	out := make([]string, 0, len(s.and)+len(s.or))
	out = append(out, s.and...)
	out = append(out, s.or...)
	return out
}

// Allowed returns the union of and and or as a set, first occurrence
// order preserved. Together-strategy simple facets restrict to it.
func (s Spec) Allowed() []string {
	seen := make(map[string]struct{}, len(s.and)+len(s.or))
	out := make([]string, 0, len(s.and)+len(s.or))
	for _, v := range s.Positive() {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Thresholds holds the two numeric minimums evaluated over a company's
// technology rows. Zero means no constraint.
type Thresholds struct {
	totalTechnologies       uint
	technologiesPerCategory uint
}

// NewThresholds creates a Thresholds pair.
func NewThresholds(total, perCategory uint) Thresholds {
	return Thresholds{totalTechnologies: total, technologiesPerCategory: perCategory}
}

// TotalTechnologies returns the minimum count of joined technology rows.
func (t Thresholds) TotalTechnologies() uint { return t.totalTechnologies }

// TechnologiesPerCategory returns the minimum technology count that at
// least one tag category must reach.
func (t Thresholds) TechnologiesPerCategory() uint { return t.technologiesPerCategory }

// IsZero reports whether both thresholds are inactive.
func (t Thresholds) IsZero() bool {
	return t.totalTechnologies == 0 && t.technologiesPerCategory == 0
}
