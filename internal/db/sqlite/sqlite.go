// Package sqlite owns the relational record store connection. The filter
// engine only reads from it; writes exist for ingestion and test seeding.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stacklens/stacklens/internal/domain"
)

//go:embed schema.sql
var schema string

// DB wraps the sqlite connection pool.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an in-process throwaway store.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if strings.Contains(path, ":memory:") {
		// Each pooled connection would otherwise get its own empty database.
		conn.SetMaxOpenConns(1)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Conn exposes the underlying pool to repositories.
func (db *DB) Conn() *sql.DB { return db.conn }

// Close closes the connection pool.
func (db *DB) Close() error { return db.conn.Close() }

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// HasData reports whether at least one company row exists.
func (db *DB) HasData(ctx context.Context) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies LIMIT 1`).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count companies: %w", err)
	}
	return count > 0, nil
}

// InsertCompany upserts a company row.
func (db *DB) InsertCompany(ctx context.Context, c domain.Company) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO companies (domain, name, category, country, city)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (domain) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			country = excluded.country,
			city = excluded.city
	`, c.Domain, c.Name, c.Category, c.Country, c.City)
	if err != nil {
		return fmt.Errorf("insert company %s: %w", c.Domain, err)
	}
	return nil
}

// InsertTechnology upserts a technology row.
func (db *DB) InsertTechnology(ctx context.Context, t domain.Technology) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO technologies (name, category)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET category = excluded.category
	`, t.Name, t.Category)
	if err != nil {
		return fmt.Errorf("insert technology %s: %w", t.Name, err)
	}
	return nil
}

// LinkTech records a company-technology observation. Repeated links keep
// the first_seen timestamp and advance last_seen.
func (db *DB) LinkTech(ctx context.Context, companyDomain, techName string) error {
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO company_tech (domain, tech_name, first_seen, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (domain, tech_name) DO UPDATE SET last_seen = excluded.last_seen
	`, companyDomain, techName, now, now)
	if err != nil {
		return fmt.Errorf("link %s to %s: %w", companyDomain, techName, err)
	}
	return nil
}
