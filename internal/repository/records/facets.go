package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/domain/search/filter"
)

// perCategoryExists enforces the tags-per-category minimum: at least one
// tag category in which the company holds >= ? technologies. The tag facet
// and the final assembly must agree on this condition exactly, so both use
// this fragment.
const perCategoryExists = `EXISTS (
	SELECT 1 FROM company_tech ct
	JOIN technologies t ON ct.tech_name = t.name
	WHERE ct.domain = companies.domain
	GROUP BY t.category
	HAVING COUNT(t.name) >= ?
)`

// CompanyIDsByField resolves a Together-strategy simple facet: companies
// whose column value is in allowed (if any) and not in excluded (if any).
// Both conditions apply conjunctively.
func (r *Repo) CompanyIDsByField(
	ctx context.Context, field domain.Field, allowed, excluded []string,
) ([]string, error) {
	col, err := columnFor(field)
	if err != nil {
		return nil, err
	}

	q := "SELECT domain FROM companies"
	var where []string
	var args []any
	if len(allowed) > 0 {
		where = append(where, col+" IN ("+placeholders(len(allowed))+")")
		args = append(args, toAny(allowed)...)
	}
	if len(excluded) > 0 {
		where = append(where, col+" NOT IN ("+placeholders(len(excluded))+")")
		args = append(args, toAny(excluded)...)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := r.db.Conn().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("ids by %s", field), err)
	}
	defer rows.Close()
	return collectIDs(rows, fmt.Sprintf("ids by %s", field))
}

// CompanyIDsFieldEquals returns companies whose column equals value.
// One Individual-strategy subset.
func (r *Repo) CompanyIDsFieldEquals(
	ctx context.Context, field domain.Field, value string,
) ([]string, error) {
	return r.fieldCompare(ctx, field, "=", value)
}

// CompanyIDsFieldNotEquals returns companies whose column differs from
// value. NULL columns are excluded by SQL comparison semantics, matching
// the stored behavior.
func (r *Repo) CompanyIDsFieldNotEquals(
	ctx context.Context, field domain.Field, value string,
) ([]string, error) {
	return r.fieldCompare(ctx, field, "!=", value)
}

func (r *Repo) fieldCompare(
	ctx context.Context, field domain.Field, op, value string,
) ([]string, error) {
	col, err := columnFor(field)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Conn().QueryContext(ctx,
		fmt.Sprintf("SELECT domain FROM companies WHERE %s %s ?", col, op), value)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("ids where %s %s value", field, op), err)
	}
	defer rows.Close()
	return collectIDs(rows, fmt.Sprintf("ids where %s %s value", field, op))
}

// CompanyIDsByTechTogether resolves the Together-strategy tag facet as one
// compound grouped query. All active conditions combine with AND:
//   - and: every listed tag present (distinct-name count >= len(and))
//   - or: at least one listed tag present
//   - none: no listed tag present (existence check)
//   - thresholds: total joined-row count and per-category minimum
func (r *Repo) CompanyIDsByTechTogether(
	ctx context.Context, and, or, none []string, th filter.Thresholds,
) ([]string, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT companies.domain
		FROM companies
		JOIN company_tech ON companies.domain = company_tech.domain
		JOIN technologies ON company_tech.tech_name = technologies.name`)

	var where, having []string
	var whereArgs, havingArgs []any

	if len(none) > 0 {
		where = append(where, `NOT EXISTS (
			SELECT 1 FROM company_tech ct
			WHERE ct.domain = companies.domain
			AND ct.tech_name IN (`+placeholders(len(none))+`)
		)`)
		whereArgs = append(whereArgs, toAny(none)...)
	}
	if th.TechnologiesPerCategory() > 0 {
		where = append(where, perCategoryExists)
		whereArgs = append(whereArgs, th.TechnologiesPerCategory())
	}
	if len(and) > 0 {
		having = append(having,
			`COUNT(DISTINCT CASE WHEN technologies.name IN (`+placeholders(len(and))+`)
				THEN technologies.name END) >= ?`)
		havingArgs = append(havingArgs, toAny(and)...)
		havingArgs = append(havingArgs, len(and))
	}
	if len(or) > 0 {
		having = append(having,
			`COUNT(DISTINCT CASE WHEN technologies.name IN (`+placeholders(len(or))+`)
				THEN technologies.name END) >= 1`)
		havingArgs = append(havingArgs, toAny(or)...)
	}
	if th.TotalTechnologies() > 0 {
		having = append(having, "COUNT(technologies.name) >= ?")
		havingArgs = append(havingArgs, th.TotalTechnologies())
	}

	if len(where) > 0 {
		sb.WriteString("\nWHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString("\nGROUP BY companies.domain")
	if len(having) > 0 {
		sb.WriteString("\nHAVING " + strings.Join(having, " AND "))
	}

	args := append(whereArgs, havingArgs...)
	rows, err := r.db.Conn().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, storeErr("ids by tech together", err)
	}
	defer rows.Close()
	return collectIDs(rows, "ids by tech together")
}

// CompanyIDsWithTech returns companies linked to the exact tag value.
// Direct lookup on the join table; no technologies join needed.
func (r *Repo) CompanyIDsWithTech(ctx context.Context, tech string) ([]string, error) {
	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT domain FROM company_tech WHERE tech_name = ? GROUP BY domain`, tech)
	if err != nil {
		return nil, storeErr("ids with tech", err)
	}
	defer rows.Close()
	return collectIDs(rows, "ids with tech")
}

// CompanyIDsWithoutTech returns companies with no join row for the tag
// value (anti-join).
func (r *Repo) CompanyIDsWithoutTech(ctx context.Context, tech string) ([]string, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT domain FROM companies
		WHERE NOT EXISTS (
			SELECT 1 FROM company_tech ct
			WHERE ct.domain = companies.domain AND ct.tech_name = ?
		)`, tech)
	if err != nil {
		return nil, storeErr("ids without tech", err)
	}
	defer rows.Close()
	return collectIDs(rows, "ids without tech")
}

// CompanyIDsByThresholds resolves the thresholds alone, joined over tags.
// Used by the Individual strategy when no per-value subsets exist.
func (r *Repo) CompanyIDsByThresholds(
	ctx context.Context, th filter.Thresholds,
) ([]string, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT companies.domain
		FROM companies
		JOIN company_tech ON companies.domain = company_tech.domain
		JOIN technologies ON company_tech.tech_name = technologies.name`)

	var args []any
	if th.TechnologiesPerCategory() > 0 {
		sb.WriteString("\nWHERE " + perCategoryExists)
		args = append(args, th.TechnologiesPerCategory())
	}
	sb.WriteString("\nGROUP BY companies.domain")
	if th.TotalTechnologies() > 0 {
		sb.WriteString("\nHAVING COUNT(technologies.name) >= ?")
		args = append(args, th.TotalTechnologies())
	}

	rows, err := r.db.Conn().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, storeErr("ids by thresholds", err)
	}
	defer rows.Close()
	return collectIDs(rows, "ids by thresholds")
}
