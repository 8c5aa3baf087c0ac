// Package result defines the rows a search returns.
package result

// Row is a company projection plus its aggregate technology count.
// Technologies counts joined company_tech rows, not distinct tag names:
// duplicate join rows inflate the count, matching the stored data.
type Row struct {
	Domain       string
	Name         *string
	Category     *string
	Country      *string
	City         *string
	Technologies uint
}

// IDs projects rows onto their company identifiers, order preserved.
func IDs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Domain
	}
	return out
}
