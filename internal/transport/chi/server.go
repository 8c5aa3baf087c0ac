// Package chi is the HTTP transport: request decoding, response
// envelopes, and domain-error to status-code mapping.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/domain/search/request"
	"github.com/stacklens/stacklens/internal/domain/search/result"
	"github.com/stacklens/stacklens/internal/repository/history"
	openaiParser "github.com/stacklens/stacklens/internal/transport/openai"
	healthuc "github.com/stacklens/stacklens/internal/usecase/health"
	lookupuc "github.com/stacklens/stacklens/internal/usecase/lookup"
)

// SearchService runs structured and combined searches.
type SearchService interface {
	Search(ctx context.Context, req request.Request) ([]result.Row, error)
	Combined(ctx context.Context, text string, req request.Request) ([]string, error)
}

// LookupService serves distinct-value menus.
type LookupService interface {
	Values(ctx context.Context, lookup domain.Lookup) ([]lookupuc.Option, error)
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
	Database(ctx context.Context) healthuc.DBStatus
}

// QueryParser converts free text into structured filters.
type QueryParser interface {
	Enabled() bool
	Parse(ctx context.Context, query string) (openaiParser.ParsedQuery, error)
}

// HistoryStore records and lists recent searches.
type HistoryStore interface {
	Record(ctx context.Context, text, summary string, results int) (history.Entry, error)
	Recent(ctx context.Context, n int) ([]history.Entry, error)
}

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server hosts the stacklens HTTP API.
type Server struct {
	search        SearchService
	lookup        LookupService
	health        HealthService
	parser        QueryParser
	history       HistoryStore
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. parser and history may be nil
// when those subsystems are not configured.
func NewServer(
	search SearchService,
	lookup LookupService,
	health HealthService,
	parser QueryParser,
	hist HistoryStore,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:  search,
		lookup:  lookup,
		health:  health,
		parser:  parser,
		history: hist,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, "index_unavailable"),
		sentinelHandler(domain.ErrHistoryUnavailable, http.StatusServiceUnavailable, "history_unavailable"),
		sentinelHandler(domain.ErrParserUnavailable, http.StatusBadGateway, "parser_unavailable"),
	}
	return s
}

// Routes mounts all API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/search", s.handleSearch)
	r.Post("/api/combined-search", s.handleCombinedSearch)
	r.Post("/api/llm-parse", s.handleLLMParse)

	r.Get("/api/technologies", s.lookupHandler(domain.LookupTechnologies))
	r.Get("/api/categories", s.lookupHandler(domain.LookupCategories))
	r.Get("/api/countries", s.lookupHandler(domain.LookupCountries))
	r.Get("/api/domains", s.lookupHandler(domain.LookupDomains))
	r.Get("/api/names", s.lookupHandler(domain.LookupNames))

	r.Get("/api/search-history", s.handleSearchHistory)
	r.Get("/api/db-status", s.handleDBStatus)
	r.Get("/healthz", s.handleHealthz)
}

// handleSearch handles POST /api/search: the structured search returning
// full rows. A textQuery in the body is ignored here; combined-search is
// the endpoint that merges text results.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	dto := body.normalized()
	req := requestFromDTO(dto)

	start := time.Now()
	rows, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	elapsed := time.Since(start)

	s.recordHistory(r.Context(), "", summarize(dto), len(rows))

	writeJSON(w, http.StatusOK, searchResponse{
		Success:         true,
		Data:            rowsToDTO(rows),
		TotalResults:    len(rows),
		ExecutionTimeMS: elapsed.Milliseconds(),
	})
}

// handleCombinedSearch handles POST /api/combined-search: text and
// structured filters merged into matching domains.
func (s *Server) handleCombinedSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	dto := body.normalized()
	req := requestFromDTO(dto)

	start := time.Now()
	ids, err := s.search.Combined(r.Context(), body.TextQuery, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	elapsed := time.Since(start)

	s.recordHistory(r.Context(), body.TextQuery, summarize(dto), len(ids))

	writeJSON(w, http.StatusOK, combinedSearchResponse{
		Success:         true,
		Domains:         ids,
		TotalResults:    len(ids),
		ExecutionTimeMS: elapsed.Milliseconds(),
	})
}

// handleLLMParse handles POST /api/llm-parse: free text in, structured
// filters out.
func (s *Server) handleLLMParse(w http.ResponseWriter, r *http.Request) {
	if s.parser == nil || !s.parser.Enabled() {
		writeError(w, http.StatusNotImplemented, "parser_disabled", "query parser is not configured")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "text is required")
		return
	}

	parsed, err := s.parser.Parse(r.Context(), body.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func (s *Server) lookupHandler(kind domain.Lookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.lookup.Values(r.Context(), kind)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		if opts == nil {
			opts = []lookupuc.Option{}
		}
		writeJSON(w, http.StatusOK, opts)
	}
}

// handleSearchHistory handles GET /api/search-history.
func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []history.Entry{})
		return
	}
	entries, err := s.history.Recent(r.Context(), 0)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleDBStatus handles GET /api/db-status.
func (s *Server) handleDBStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Database(r.Context()))
}

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// recordHistory records a search outcome. History is best-effort: a
// failed write is logged, never surfaced to the caller.
func (s *Server) recordHistory(ctx context.Context, text, summary string, results int) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(ctx, text, summary, results); err != nil {
		s.logger.Warn("failed to record search history", zap.Error(err))
	}
}

// summarize names the active facets of a search for the history list.
func summarize(dto searchObjectDTO) string {
	facets := []struct {
		name string
		f    facetFilterDTO
	}{
		{"technology", dto.TechnologyFilter},
		{"country", dto.CountryFilter},
		{"category", dto.CategoryFilter},
		{"name", dto.NameFilter},
		{"domain", dto.DomainFilter},
	}

	var active []string
	for _, facet := range facets {
		if len(facet.f.And)+len(facet.f.Or)+len(facet.f.None) > 0 {
			active = append(active, facet.name)
		}
	}
	if dto.NumberFilter.TotalTechnologies > 0 || dto.NumberFilter.TechnologiesPerCategory > 0 {
		active = append(active, "thresholds")
	}
	if len(active) == 0 {
		return "no filters"
	}
	return "filters: " + strings.Join(active, ", ")
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// safeDomainMessage returns the sentinel's message for known domain
// errors and hides everything else.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrStoreUnavailable,
		domain.ErrIndexUnavailable,
		domain.ErrHistoryUnavailable,
		domain.ErrParserUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
