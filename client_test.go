package stacklens

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/stacklens/stacklens/internal/domain"
)

func TestNew_NoPath(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no dataset path provided")
	}
}

func strptr(s string) *string { return &s }

// newTestClient opens an in-memory dataset and seeds it with a small
// fixture: three companies across two countries and four technologies.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := New(WithSQLite(":memory:"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	companies := []domain.Company{
		{Domain: "acme.com", Name: strptr("Acme Corp"), Category: strptr("Fintech"), Country: strptr("US"), City: strptr("New York")},
		{Domain: "globex.io", Name: strptr("Globex"), Category: strptr("E-commerce"), Country: strptr("UK"), City: strptr("London")},
		{Domain: "hooli.xyz", Name: strptr("Hooli"), Category: strptr("E-commerce"), Country: strptr("US")},
	}
	techs := []domain.Technology{
		{Name: "React", Category: strptr("Frontend")},
		{Name: "AWS", Category: strptr("Cloud")},
		{Name: "Kubernetes", Category: strptr("Cloud")},
		{Name: "PHP", Category: strptr("Language")},
	}
	links := map[string][]string{
		"acme.com":  {"React", "AWS"},
		"globex.io": {"React", "PHP"},
		"hooli.xyz": {"React", "AWS", "Kubernetes"},
	}

	for _, company := range companies {
		if err := c.store.InsertCompany(ctx, company); err != nil {
			t.Fatalf("seed company: %v", err)
		}
	}
	for _, tech := range techs {
		if err := c.store.InsertTechnology(ctx, tech); err != nil {
			t.Fatalf("seed technology: %v", err)
		}
	}
	for companyDomain, names := range links {
		for _, name := range names {
			if err := c.store.LinkTech(ctx, companyDomain, name); err != nil {
				t.Fatalf("seed link: %v", err)
			}
		}
	}
	return c
}

func domains(companies []Company) []string {
	out := make([]string, len(companies))
	for i, c := range companies {
		out[i] = c.Domain
	}
	sort.Strings(out)
	return out
}

func TestSearch_Unfiltered(t *testing.T) {
	c := newTestClient(t)

	companies, err := c.Search().Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(companies) != 3 {
		t.Fatalf("got %d companies, want 3", len(companies))
	}
}

func TestSearch_TechAndCountry(t *testing.T) {
	c := newTestClient(t)

	companies, err := c.Search().
		RequireTech("React", "AWS").
		Countries("US").
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"acme.com", "hooli.xyz"}
	if got := domains(companies); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSearch_ContradictoryCountryFilter(t *testing.T) {
	c := newTestClient(t)

	// A country both allowed and excluded can match nothing.
	companies, err := c.Search().
		Countries("US").
		ExcludeCountries("US").
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(companies) != 0 {
		t.Fatalf("got %v, want no companies", domains(companies))
	}
}

func TestSearch_ExcludeTech(t *testing.T) {
	c := newTestClient(t)

	companies, err := c.Search().
		RequireTech("React").
		ExcludeTech("PHP").
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"acme.com", "hooli.xyz"}
	if got := domains(companies); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSearch_MinTechnologies(t *testing.T) {
	c := newTestClient(t)

	companies, err := c.Search().
		MinTechnologies(3).
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := domains(companies); !reflect.DeepEqual(got, []string{"hooli.xyz"}) {
		t.Fatalf("got %v, want [hooli.xyz]", got)
	}
	if companies[0].Technologies != 3 {
		t.Fatalf("technology count = %d, want 3", companies[0].Technologies)
	}
}

func TestSearch_MinTechnologiesPerCategory(t *testing.T) {
	c := newTestClient(t)

	// Only hooli holds two technologies in one category (Cloud).
	companies, err := c.Search().
		MinTechnologiesPerCategory(2).
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := domains(companies); !reflect.DeepEqual(got, []string{"hooli.xyz"}) {
		t.Fatalf("got %v, want [hooli.xyz]", got)
	}
}

func TestSearch_IndividualUnion(t *testing.T) {
	c := newTestClient(t)

	// Individual strategy unions per-value subsets instead of intersecting.
	ids, err := c.Search().
		RequireTech("AWS", "PHP").
		TechIndividually().
		DedupeTech().
		IDs(context.Background())
	if err != nil {
		t.Fatalf("IDs() error = %v", err)
	}
	sort.Strings(ids)
	want := []string{"acme.com", "globex.io", "hooli.xyz"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
}

func TestSearch_TextIntersectsStructured(t *testing.T) {
	c := newTestClient(t)

	ids, err := c.Search().
		Countries("US").
		Text("Acme").
		IDs(context.Background())
	if err != nil {
		t.Fatalf("IDs() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"acme.com"}) {
		t.Fatalf("got %v, want [acme.com]", ids)
	}
}

func TestFind(t *testing.T) {
	c := newTestClient(t)

	company, err := c.Find(context.Background(), "globex.io")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if company.Name != "Globex" || company.Country != "UK" || company.Technologies != 2 {
		t.Fatalf("got %+v", company)
	}

	// Missing city collapses to the empty string.
	company, err = c.Find(context.Background(), "hooli.xyz")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if company.City != "" {
		t.Fatalf("city = %q, want empty", company.City)
	}

	if _, err := c.Find(context.Background(), "missing.example"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find() error = %v, want ErrNotFound", err)
	}
}

func TestValues(t *testing.T) {
	c := newTestClient(t)

	countries, err := c.Values(context.Background(), Countries)
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	want := []LookupValue{{Value: "UK", Label: "UK"}, {Value: "US", Label: "US"}}
	if !reflect.DeepEqual(countries, want) {
		t.Fatalf("got %v, want %v", countries, want)
	}

	techs, err := c.Values(context.Background(), Technologies)
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	if len(techs) != 4 {
		t.Fatalf("got %d technologies, want 4", len(techs))
	}
}
