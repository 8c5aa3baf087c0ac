package records

import (
	"context"
	"sort"
	"testing"

	"github.com/stacklens/stacklens/internal/db/sqlite"
	"github.com/stacklens/stacklens/internal/domain"
)

// newTestRepo opens an in-memory store seeded with a small fixed dataset:
//
//	acme.com     Acme Corp  Fintech     US  New York   React, AWS, Go
//	globex.io    Globex     E-commerce  UK  London     React, PHP
//	initech.dev  Initech    Fintech     US  Austin     AWS
//	umbrella.org Umbrella   Biotech     DE  Berlin     (no technologies)
//	hooli.xyz    Hooli      E-commerce  US  (null)     React, AWS, Kubernetes, Go
//
// Tag categories: React=Frontend, AWS=Cloud, Kubernetes=Cloud,
// Go=Language, PHP=Language.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	techs := map[string]string{
		"React":      "Frontend",
		"AWS":        "Cloud",
		"Kubernetes": "Cloud",
		"Go":         "Language",
		"PHP":        "Language",
	}
	for name, cat := range techs {
		c := cat
		if err := store.InsertTechnology(ctx, domain.Technology{Name: name, Category: &c}); err != nil {
			t.Fatalf("insert technology %s: %v", name, err)
		}
	}

	companies := []struct {
		domain, name, category, country string
		city                            *string
		techs                           []string
	}{
		{"acme.com", "Acme Corp", "Fintech", "US", strptr("New York"), []string{"React", "AWS", "Go"}},
		{"globex.io", "Globex", "E-commerce", "UK", strptr("London"), []string{"React", "PHP"}},
		{"initech.dev", "Initech", "Fintech", "US", strptr("Austin"), []string{"AWS"}},
		{"umbrella.org", "Umbrella", "Biotech", "DE", strptr("Berlin"), nil},
		{"hooli.xyz", "Hooli", "E-commerce", "US", nil, []string{"React", "AWS", "Kubernetes", "Go"}},
	}
	for _, c := range companies {
		company := domain.Company{
			Domain:   c.domain,
			Name:     strptr(c.name),
			Category: strptr(c.category),
			Country:  strptr(c.country),
			City:     c.city,
		}
		if err := store.InsertCompany(ctx, company); err != nil {
			t.Fatalf("insert company %s: %v", c.domain, err)
		}
		for _, tech := range c.techs {
			if err := store.LinkTech(ctx, c.domain, tech); err != nil {
				t.Fatalf("link %s -> %s: %v", c.domain, tech, err)
			}
		}
	}

	return New(store)
}

func strptr(s string) *string { return &s }

// sortedCopy returns ids sorted for order-insensitive comparison.
func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func assertIDs(t *testing.T, got, want []string) {
	t.Helper()
	g, w := sortedCopy(got), sortedCopy(want)
	if len(g) != len(w) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}
