package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"SeqSearch/internal/analysis"
	"SeqSearch/internal/automaton"
	"SeqSearch/internal/corpus"
)

// Config holds the HTTP layer settings.
type Config struct {
	// MaxSubjectBytes caps the text a single request may submit.
	MaxSubjectBytes int64
	Version         string
}

// DefaultConfig returns a Config with a 1 MiB subject limit.
func DefaultConfig() Config {
	return Config{MaxSubjectBytes: 1 << 20, Version: "dev"}
}

// Handler holds the HTTP handlers for the SeqSearch API.
type Handler struct {
	corpus *corpus.Corpus
	config Config
	logger *slog.Logger
}

// NewHandler creates a Handler serving c.
func NewHandler(c *corpus.Corpus, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxSubjectBytes <= 0 {
		cfg.MaxSubjectBytes = DefaultConfig().MaxSubjectBytes
	}
	return &Handler{corpus: c, config: cfg, logger: logger.With("component", "server")}
}

// Routes returns the API router wrapped in request logging.
func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	// Stateless matching.
	router.POST("/match", h.handleMatch)
	router.POST("/match/stream", h.handleMatchStream)

	// Corpus documents.
	router.GET("/documents", h.handleListDocuments)
	router.POST("/documents", h.handleAddDocument)
	router.GET("/documents/:id", h.handleGetDocument)
	router.DELETE("/documents/:id", h.handleDeleteDocument)

	// Corpus queries.
	router.POST("/search", h.handleSearch)
	router.GET("/terms", h.handleTerms)
	router.GET("/analyzers", h.handleAnalyzers)

	router.GET("/health", h.handleHealth)
	router.GET("/ready", h.handleReady)
	router.GET("/", h.handleRoot)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	return h.logRequests(router)
}

// --- Documents ---

type addDocumentRequest struct {
	Name     string `json:"name"`
	Text     string `json:"text"`
	Analyzer string `json:"analyzer"`
}

type documentResponse struct {
	*corpus.Document
	Text string `json:"text"`
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	docs := h.corpus.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}

func (h *Handler) handleAddDocument(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req addDocumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if int64(len(req.Text)) > h.config.MaxSubjectBytes {
		h.tooLarge(w)
		return
	}

	doc, err := h.corpus.Add(req.Name, req.Text, req.Analyzer)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doc, err := h.corpus.Get(ps.ByName("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Document: doc, Text: doc.Text()})
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if err := h.corpus.Delete(id); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     id,
	})
}

// --- Search ---

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var q corpus.Query
	if !h.decode(w, r, &q) {
		return
	}

	res, err := h.corpus.Search(r.Context(), q)
	if err != nil {
		h.fail(w, err)
		return
	}
	hits := res.Hits
	if hits == nil {
		hits = []corpus.Hit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "success",
		"took_ms":           res.Took.Milliseconds(),
		"documents_scanned": res.DocumentsScanned,
		"total_occurrences": res.TotalOccurrences,
		"hits":              hits,
	})
}

func (h *Handler) handleTerms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	terms, err := h.corpus.ExpandTerms(r.URL.Query().Get("contains"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if terms == nil {
		terms = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"terms": terms})
}

func (h *Handler) handleAnalyzers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{
		"analyzers": h.corpus.Registry().Names(),
		"default":   analysis.DefaultAnalyzer,
	})
}

// --- Service info ---

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.config.Version,
	})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"documents": h.corpus.Len(),
	})
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "SeqSearch",
		"version": h.config.Version,
	})
}

// --- Helpers ---

// decode reads a JSON body of at most MaxSubjectBytes plus some room for
// the other fields. It writes the error response itself and reports
// whether decoding succeeded.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxSubjectBytes+bodySlack))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(w)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "read request body: "+err.Error())
		return false
	}
	if err := jsonAPI.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return false
	}
	return true
}

const bodySlack = 64 << 10

func (h *Handler) tooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge, "subject_too_large",
		"subject exceeds the configured limit")
}

// fail maps err to a status code and error code.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeError(w, status, code, err.Error())
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, automaton.ErrEmptyPattern):
		return http.StatusBadRequest, "empty_pattern"
	case errors.Is(err, automaton.ErrInvalidStartIndex):
		return http.StatusBadRequest, "invalid_start_index"
	case errors.Is(err, automaton.ErrRangeOverflow):
		return http.StatusBadRequest, "range_overflow"
	case errors.Is(err, corpus.ErrInvalidMode):
		return http.StatusBadRequest, "invalid_mode"
	case errors.Is(err, corpus.ErrMissingName):
		return http.StatusBadRequest, "missing_name"
	case errors.Is(err, analysis.ErrUnknownAnalyzer):
		return http.StatusBadRequest, "unknown_analyzer"
	case errors.Is(err, corpus.ErrDocumentNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return 499, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// logRequests logs every request at debug level.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
