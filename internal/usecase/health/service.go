package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// DBStatus describes the record store from a client's perspective.
type DBStatus struct {
	Connected bool `json:"connected"`
	HasData   bool `json:"hasData"`
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	data  DataChecker
	cache CachePinger
}

// New creates a Service. cache can be nil when no cache is configured.
func New(db DBPinger, data DataChecker, cache CachePinger) *Service {
	return &Service{db: db, data: data, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

// Database reports connectivity and whether any records are loaded.
// A failed ping yields a disconnected status rather than an error.
func (s *Service) Database(ctx context.Context) DBStatus {
	if err := s.db.Ping(ctx); err != nil {
		return DBStatus{}
	}
	hasData, err := s.data.HasData(ctx)
	if err != nil {
		return DBStatus{Connected: true}
	}
	return DBStatus{Connected: true, HasData: hasData}
}
