// Package records queries the relational record store: per-facet ID sets,
// the final assembled rows, distinct lookup menus, and the denormalized
// bulk load the text index builds from.
package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/stacklens/stacklens/internal/db/sqlite"
	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/domain/search/filter"
	"github.com/stacklens/stacklens/internal/domain/search/result"
)

// Repo issues read-only queries against the sqlite record store.
type Repo struct {
	db *sqlite.DB
}

// New creates a records repository.
func New(db *sqlite.DB) *Repo {
	return &Repo{db: db}
}

var fieldColumns = map[domain.Field]string{
	domain.FieldCountry:  "country",
	domain.FieldCategory: "category",
	domain.FieldName:     "name",
	domain.FieldDomain:   "domain",
}

var lookupColumns = map[domain.Lookup]struct{ table, column string }{
	domain.LookupTechnologies: {"technologies", "name"},
	domain.LookupCategories:   {"companies", "category"},
	domain.LookupCountries:    {"companies", "country"},
	domain.LookupDomains:      {"companies", "domain"},
	domain.LookupNames:        {"companies", "name"},
}

// CompanyRows assembles the final result rows: every company (left join,
// zero-tag companies retained) with its aggregate technology-row count,
// optionally restricted to ids and filtered by thresholds post-aggregation.
// A nil ids slice means unrestricted; an empty non-nil slice yields no rows.
func (r *Repo) CompanyRows(
	ctx context.Context, ids []string, th filter.Thresholds,
) ([]result.Row, error) {
	if ids != nil && len(ids) == 0 {
		return []result.Row{}, nil
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT companies.domain, companies.name, companies.category,
		       companies.country, companies.city,
		       COUNT(company_tech.tech_name)
		FROM companies
		LEFT JOIN company_tech ON companies.domain = company_tech.domain`)

	var where []string
	var args []any
	if ids != nil {
		where = append(where, "companies.domain IN ("+placeholders(len(ids))+")")
		args = append(args, toAny(ids)...)
	}
	if th.TechnologiesPerCategory() > 0 {
		where = append(where, perCategoryExists)
		args = append(args, th.TechnologiesPerCategory())
	}
	if len(where) > 0 {
		sb.WriteString("\nWHERE " + strings.Join(where, " AND "))
	}

	sb.WriteString(`
		GROUP BY companies.domain, companies.name, companies.category,
		         companies.country, companies.city`)

	if th.TotalTechnologies() > 0 {
		sb.WriteString("\nHAVING COUNT(company_tech.tech_name) >= ?")
		args = append(args, th.TotalTechnologies())
	}

	rows, err := r.db.Conn().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, storeErr("assemble company rows", err)
	}
	defer rows.Close()

	out := []result.Row{}
	for rows.Next() {
		var row result.Row
		var count uint
		if err := rows.Scan(&row.Domain, &row.Name, &row.Category, &row.Country, &row.City, &count); err != nil {
			return nil, storeErr("scan company row", err)
		}
		row.Technologies = count
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate company rows", err)
	}
	return out, nil
}

// SearchDocuments bulk-loads every company with its concatenated tag names
// for text-index construction.
func (r *Repo) SearchDocuments(ctx context.Context) ([]domain.SearchDocument, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT companies.domain,
		       COALESCE(companies.name, ''),
		       COALESCE(companies.category, ''),
		       COALESCE(companies.country, ''),
		       COALESCE(companies.city, ''),
		       COALESCE(GROUP_CONCAT(company_tech.tech_name), '')
		FROM companies
		LEFT JOIN company_tech ON companies.domain = company_tech.domain
		GROUP BY companies.domain, companies.name, companies.category,
		         companies.country, companies.city`)
	if err != nil {
		return nil, storeErr("load search documents", err)
	}
	defer rows.Close()

	var docs []domain.SearchDocument
	for rows.Next() {
		var d domain.SearchDocument
		if err := rows.Scan(&d.Domain, &d.Name, &d.Category, &d.Country, &d.City, &d.Technologies); err != nil {
			return nil, storeErr("scan search document", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate search documents", err)
	}
	return docs, nil
}

// DistinctValues returns the distinct non-null values behind a lookup menu.
func (r *Repo) DistinctValues(ctx context.Context, lookup domain.Lookup) ([]string, error) {
	src, ok := lookupColumns[lookup]
	if !ok {
		return nil, fmt.Errorf("unknown lookup %q", lookup)
	}
	q := fmt.Sprintf(
		`SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s`,
		src.column, src.table, src.column, src.column,
	)
	rows, err := r.db.Conn().QueryContext(ctx, q)
	if err != nil {
		return nil, storeErr("distinct "+string(lookup), err)
	}
	defer rows.Close()
	return collectIDs(rows, "distinct "+string(lookup))
}

func columnFor(field domain.Field) (string, error) {
	col, ok := fieldColumns[field]
	if !ok {
		return "", fmt.Errorf("unknown facet field %q", field)
	}
	return col, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAny(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func collectIDs(rows *sql.Rows, op string) ([]string, error) {
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}
