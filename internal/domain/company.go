package domain

import "time"

// Company is an organization record. The domain name is the identity.
// All other attributes are optional; ingestion owns writes, this core
// only reads.
type Company struct {
	Domain   string
	Name     *string
	Category *string
	Country  *string
	City     *string
}

// Technology is a tag attached to companies, unique by name.
type Technology struct {
	Name     string
	Category *string
}

// CompanyTech joins one company and one technology. The observation
// timestamps are carried through ingestion but unused by filtering.
type CompanyTech struct {
	Domain    string
	TechName  string
	FirstSeen *time.Time
	LastSeen  *time.Time
}

// Field names a scalar company column usable as a simple facet.
type Field string

// Simple facet columns. Technology is not a Field: it resolves through
// the company_tech relation.
const (
	FieldCountry  Field = "country"
	FieldCategory Field = "category"
	FieldName     Field = "name"
	FieldDomain   Field = "domain"
)

// Lookup names a distinct-values menu served to filter builders.
type Lookup string

const (
	LookupTechnologies Lookup = "technologies"
	LookupCategories   Lookup = "categories"
	LookupCountries    Lookup = "countries"
	LookupDomains      Lookup = "domains"
	LookupNames        Lookup = "names"
)
