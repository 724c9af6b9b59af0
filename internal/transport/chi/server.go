package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/domain"
	logpkg "github.com/kailas-cloud/umlsdex/internal/logger"
	healthuc "github.com/kailas-cloud/umlsdex/internal/usecase/health"
	lookupuc "github.com/kailas-cloud/umlsdex/internal/usecase/lookup"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the read API over a loaded dataset.
type Server struct {
	lookup        *lookupuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(lookup *lookupuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		lookup: lookup,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrConceptNotFound, http.StatusNotFound, ErrorCodeConceptNotFound),
		sentinelHandler(domain.ErrStringNotFound, http.StatusNotFound, ErrorCodeStringNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(db.ErrIndexNotFound, http.StatusServiceUnavailable, ErrorCodeNotLoaded),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/stats", s.Stats)

	r.Route("/concepts", func(r chirouter.Router) {
		r.Get("/", s.ListConcepts)
		r.Get("/{id}", s.GetConcept)
		r.Get("/{id}/relations", s.GetRelations)
	})
	r.Get("/definitions", s.ListDefinitions)

	r.Route("/strings", func(r chirouter.Router) {
		r.Get("/", s.ListStrings)
		r.Get("/{value}", s.GetString)
		r.Get("/{value}/concepts", s.GetStringConcepts)
		r.Get("/{value}/definitions", s.GetStringDefinitions)
	})
	r.Get("/search/strings", s.SearchStrings)
	r.Get("/semantic-types/{name}/concepts", s.ListSemanticType)
}

// GetConcept handles GET /concepts/{id}.
func (s *Server) GetConcept(w http.ResponseWriter, r *http.Request) {
	doc, err := s.lookup.Concept(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conceptToResponse(doc))
}

// ListConcepts handles GET /concepts?ids=C1,C2.
func (s *Server) ListConcepts(w http.ResponseWriter, r *http.Request) {
	docs, err := s.lookup.Concepts(r.Context(), splitList(r.URL.Query().Get("ids")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conceptsToResponse(docs, len(docs)))
}

// GetRelations handles GET /concepts/{id}/relations?label=child.
func (s *Server) GetRelations(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	label := r.URL.Query().Get("label")

	related, err := s.lookup.Related(r.Context(), id, label)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RelatedResponse{ID: id, Label: label, Related: related})
}

// ListDefinitions handles GET /definitions?ids=C1,C2.
func (s *Server) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := s.lookup.Definitions(r.Context(), splitList(r.URL.Query().Get("ids")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, definitionsToResponse(defs))
}

// GetString handles GET /strings/{value}.
func (s *Server) GetString(w http.ResponseWriter, r *http.Request) {
	e, err := s.lookup.String(r.Context(), pathParam(r, "value"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stringToResponse(e))
}

// ListStrings handles GET /strings?ids=1,2.
func (s *Server) ListStrings(w http.ResponseWriter, r *http.Request) {
	raw := splitList(r.URL.Query().Get("ids"))
	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "ids must be integers")
			return
		}
		ids = append(ids, id)
	}

	entries, err := s.lookup.StringsByID(r.Context(), ids)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]StringResponse, len(entries))
	for i, e := range entries {
		items[i] = stringToResponse(e)
	}
	writeJSON(w, http.StatusOK, StringListResponse{Items: items})
}

// GetStringConcepts handles GET /strings/{value}/concepts.
func (s *Server) GetStringConcepts(w http.ResponseWriter, r *http.Request) {
	docs, err := s.lookup.ConceptsForString(r.Context(), pathParam(r, "value"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conceptsToResponse(docs, len(docs)))
}

// GetStringDefinitions handles GET /strings/{value}/definitions.
func (s *Server) GetStringDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := s.lookup.DefinitionsForString(r.Context(), pathParam(r, "value"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, definitionsToResponse(defs))
}

// SearchStrings handles GET /search/strings?q=X&mode=substring|lexical&limit=N.
func (s *Server) SearchStrings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := lookupuc.ParseSearchMode(q.Get("mode"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	limit, ok := intParam(w, q, "limit")
	if !ok {
		return
	}

	matches, err := s.lookup.SearchStrings(r.Context(), q.Get("q"), mode, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]MatchResponse, len(matches))
	for i, m := range matches {
		items[i] = MatchResponse{Value: m.Value, Concepts: m.Concepts}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q.Get("q"), Mode: string(mode), Items: items})
}

// ListSemanticType handles GET /semantic-types/{name}/concepts?offset=&limit=.
func (s *Server) ListSemanticType(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, ok := intParam(w, q, "offset")
	if !ok {
		return
	}
	limit, ok := intParam(w, q, "limit")
	if !ok {
		return
	}

	page, err := s.lookup.BySemanticType(r.Context(), pathParam(r, "name"), offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conceptsToResponse(page.Concepts, page.Total))
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.lookup.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Concepts: st.Concepts,
		Strings:  st.Strings,
		LastRun:  runToResponse(st.LastRun),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// pathParam returns a URL parameter with percent-encoding removed.
// chi matches against RawPath when it is set, leaving the parameter escaped.
func pathParam(r *http.Request, key string) string {
	v := chirouter.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// intParam parses an optional non-negative integer query parameter, writing 400 on failure.
func intParam(w http.ResponseWriter, q url.Values, key string) (int, bool) {
	raw := q.Get(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, key+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors keep their detail;
// everything else is reduced to its sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrConceptNotFound,
		domain.ErrStringNotFound,
		db.ErrIndexNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	logger.Warn("domain error", zap.String("path", r.URL.Path), zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
