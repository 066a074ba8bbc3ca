package chi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/patent"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/filter"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/query"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/result"
	healthuc "github.com/stevnnyee/thinkStruct-search-engine/internal/usecase/health"
	searchuc "github.com/stevnnyee/thinkStruct-search-engine/internal/usecase/search"
)

// Error codes returned in the body of error responses.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "patent_not_found"
	codeNotReady         = "index_not_ready"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Options tune request defaults that are not part of the payload.
type Options struct {
	DefaultTopK     int
	DefaultPageSize int
	MaxPageSize     int
}

// Server exposes the patent search services over HTTP.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	opts          Options
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger, opts Options) *Server {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = query.DefaultTopK
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 20
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
		opts:   opts,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownDocument, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidTopK, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotReady, http.StatusServiceUnavailable, codeNotReady),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Get("/readyz", s.ReadyCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.SearchPatents)
		r.Post("/search/hybrid", s.HybridSearchPatents)
		r.Get("/patents", s.ListPatents)
		r.Get("/patents/{id}", s.GetPatent)
		r.Get("/patents/{id}/similar", s.FindSimilarPatents)
		r.Post("/admin/reload", s.ReloadCorpus)
	})
}

// --- Wire types ---

type searchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

type hybridSearchRequest struct {
	Query          string `json:"query"`
	TopK           *int   `json:"top_k,omitempty"`
	Classification string `json:"classification,omitempty"`
	TitleKeywords  string `json:"title_keywords,omitempty"`
	SpecificTitle  string `json:"specific_title,omitempty"`
}

type resultItem struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Classification string  `json:"classification,omitempty"`
	Score          float64 `json:"score"`
	Risk           string  `json:"risk"`
}

type searchResponse struct {
	QueryID string       `json:"query_id"`
	TookMs  int64        `json:"took_ms"`
	Results []resultItem `json:"results"`
}

type patentResponse struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Abstract       string            `json:"abstract"`
	Claims         string            `json:"claims"`
	Classification string            `json:"classification,omitempty"`
	Meta           map[string]string `json:"meta,omitempty"`
}

type patentCursorListResponse struct {
	Items      []patentResponse `json:"items"`
	HasMore    bool             `json:"has_more"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type reloadResponse struct {
	Status          string `json:"status"`
	Documents       int    `json:"documents"`
	VocabularyTerms int    `json:"vocabulary_terms"`
	TookMs          int64  `json:"took_ms"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Handlers ---

// SearchPatents handles POST /api/v1/search.
func (s *Server) SearchPatents(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := query.NewText(req.Query, s.topK(req.TopK))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	started := time.Now()
	hits, err := s.search.SearchText(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(hits, started))
}

// HybridSearchPatents handles POST /api/v1/search/hybrid.
func (s *Server) HybridSearchPatents(w http.ResponseWriter, r *http.Request) {
	var req hybridSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters := filter.NewExpression(req.Classification, req.TitleKeywords, req.SpecificTitle)
	q, err := query.NewHybrid(req.Query, s.topK(req.TopK), filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	started := time.Now()
	hits, err := s.search.HybridSearch(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(hits, started))
}

// FindSimilarPatents handles GET /api/v1/patents/{id}/similar.
func (s *Server) FindSimilarPatents(w http.ResponseWriter, r *http.Request) {
	topK := s.opts.DefaultTopK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must be an integer")
			return
		}
		topK = v
	}

	q, err := query.NewSimilar(chi.URLParam(r, "id"), topK)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	started := time.Now()
	hits, err := s.search.FindSimilar(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(hits, started))
}

// GetPatent handles GET /api/v1/patents/{id}.
func (s *Server) GetPatent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.search.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, patentToWire(&rec))
}

// ListPatents handles GET /api/v1/patents.
func (s *Server) ListPatents(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	limit := s.opts.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = v
	}
	if limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}

	records, nextCursor, err := s.search.List(r.Context(), cursor, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]patentResponse, len(records))
	for i := range records {
		items[i] = patentToWire(&records[i])
	}

	writeJSON(w, http.StatusOK, patentCursorListResponse{
		Items:      items,
		HasMore:    nextCursor != "",
		NextCursor: nextCursor,
	})
}

// ReloadCorpus handles POST /api/v1/admin/reload.
func (s *Server) ReloadCorpus(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if err := s.search.Reload(r.Context()); err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "reload failed")
		return
	}

	stats, err := s.search.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reloadResponse{
		Status:          "ok",
		Documents:       stats.Documents,
		VocabularyTerms: stats.VocabularyTerms,
		TookMs:          time.Since(started).Milliseconds(),
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// ReadyCheck handles GET /readyz.
func (s *Server) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if !s.search.Ready() {
		writeError(w, http.StatusServiceUnavailable, codeNotReady, domain.ErrNotReady.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

// topK resolves the effective top_k: absent means the configured default,
// an explicit value is passed through for domain validation.
func (s *Server) topK(p *int) int {
	if p == nil {
		return s.opts.DefaultTopK
	}
	return *p
}

func searchResponseFrom(hits []result.ScoredResult, started time.Time) searchResponse {
	items := make([]resultItem, len(hits))
	for i := range hits {
		items[i] = resultItem{
			ID:             hits[i].ID(),
			Title:          hits[i].Title(),
			Classification: hits[i].Classification(),
			Score:          roundScore(hits[i].Score()),
			Risk:           hits[i].Risk().String(),
		}
	}
	return searchResponse{
		QueryID: uuid.NewString(),
		TookMs:  time.Since(started).Milliseconds(),
		Results: items,
	}
}

// roundScore truncates cosine scores to four decimal places for the wire.
func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func patentToWire(rec *patent.Record) patentResponse {
	return patentResponse{
		ID:             rec.ID(),
		Title:          rec.Title(),
		Abstract:       rec.Abstract(),
		Claims:         rec.Claims(),
		Classification: rec.Classification(),
		Meta:           rec.Meta(),
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

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownDocument,
		domain.ErrInvalidTopK,
		domain.ErrNotReady,
		domain.ErrEmptyCorpus,
		domain.ErrEmptyVocabulary,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
