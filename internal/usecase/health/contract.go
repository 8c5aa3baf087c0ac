package health

import "context"

// DBPinger checks record store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// DataChecker reports whether the record store holds any companies.
type DataChecker interface {
	HasData(ctx context.Context) (bool, error)
}

// CachePinger checks cache/history store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
