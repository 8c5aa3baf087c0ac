// Package stacklens is the embedded SDK: the same faceted search engine
// the API server runs, wired directly over a local SQLite dataset.
package stacklens

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stacklens/stacklens/internal/db/sqlite"
	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/domain/search/filter"
	"github.com/stacklens/stacklens/internal/domain/search/request"
	"github.com/stacklens/stacklens/internal/domain/search/result"
	"github.com/stacklens/stacklens/internal/repository/records"
	lookupuc "github.com/stacklens/stacklens/internal/usecase/lookup"
	searchuc "github.com/stacklens/stacklens/internal/usecase/search"
	"github.com/stacklens/stacklens/internal/usecase/textindex"
)

// ErrNotFound is returned by Find when no company matches.
var ErrNotFound = domain.ErrNotFound

// Lookup names a distinct-values menu.
type Lookup = domain.Lookup

// Lookup kinds accepted by Client.Values.
const (
	Technologies = domain.LookupTechnologies
	Categories   = domain.LookupCategories
	Countries    = domain.LookupCountries
	Domains      = domain.LookupDomains
	Names        = domain.LookupNames
)

// Company is one search result row. Nullable columns collapse to "".
type Company struct {
	Domain       string
	Name         string
	Category     string
	Country      string
	City         string
	Technologies uint
}

// LookupValue is one distinct-values menu entry.
type LookupValue struct {
	Value string
	Label string
}

type clientConfig struct {
	path      string
	textLimit int
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

// WithSQLite sets the dataset path. Required.
func WithSQLite(path string) Option {
	return func(c *clientConfig) { c.path = path }
}

// WithTextLimit bounds free-text search results (default 100).
func WithTextLimit(n int) Option {
	return func(c *clientConfig) { c.textLimit = n }
}

// WithLogger attaches a logger. Default is no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// Client is the stacklens SDK entry point.
type Client struct {
	store     *sqlite.DB
	searchSvc *searchuc.Service
	lookupSvc *lookupuc.Service
}

// New creates a Client over a local dataset.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{logger: zap.NewNop()}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.path == "" {
		return nil, errors.New("stacklens: dataset path required (use WithSQLite)")
	}

	store, err := sqlite.Open(cfg.path)
	if err != nil {
		return nil, fmt.Errorf("stacklens: open dataset: %w", err)
	}

	repo := records.New(store)
	index := textindex.New(repo, cfg.logger)

	return &Client{
		store:     store,
		searchSvc: searchuc.New(repo, index, cfg.textLimit, cfg.logger),
		lookupSvc: lookupuc.New(repo, nil, 0, cfg.logger),
	}, nil
}

// Close releases the underlying dataset.
func (c *Client) Close() error {
	return c.store.Close()
}

// Search starts a fluent search over the dataset.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{client: c}
}

// Find returns the single company with the given domain.
func (c *Client) Find(ctx context.Context, companyDomain string) (Company, error) {
	req := request.Request{
		Domain: filter.New([]string{companyDomain}, nil, nil, filter.Together, false),
	}
	rows, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return Company{}, err
	}
	if len(rows) == 0 {
		return Company{}, fmt.Errorf("company %q: %w", companyDomain, ErrNotFound)
	}
	return toCompany(rows[0]), nil
}

// Values returns the distinct-values menu for one lookup kind.
func (c *Client) Values(ctx context.Context, kind Lookup) ([]LookupValue, error) {
	opts, err := c.lookupSvc.Values(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]LookupValue, len(opts))
	for i, o := range opts {
		out[i] = LookupValue{Value: o.Value, Label: o.Label}
	}
	return out, nil
}

func toCompany(row result.Row) Company {
	return Company{
		Domain:       row.Domain,
		Name:         deref(row.Name),
		Category:     deref(row.Category),
		Country:      deref(row.Country),
		City:         deref(row.City),
		Technologies: row.Technologies,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
