package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/observability"
)

const (
	headerCache           = "X-Ideaforge-Cache"
	headerCacheSimilarity = "X-Ideaforge-Cache-Similarity"
	maxRequestBodyBytes   = 64 << 10
	maxHistoryLimit       = 500
)

// AnalyzeRequest is the body of POST /v1/ideas/analyze.
type AnalyzeRequest struct {
	Idea     string `json:"idea"`
	Analyzer string `json:"analyzer,omitempty"`
}

// CacheStatsResponse is the body of GET /v1/cache/stats.
type CacheStatsResponse struct {
	Stats         domain.CacheStats           `json:"stats"`
	Effectiveness domain.EffectivenessMetrics `json:"effectiveness"`
}

// Handler handles HTTP requests.
type Handler struct {
	service  *domain.AnalysisService
	registry domain.AnalyzerRegistry
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(service *domain.AnalysisService, registry domain.AnalyzerRegistry) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
	}
}

// HandleAnalyze scores an idea, serving from cache when possible.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("analysis request received",
		observability.String("analyzer", req.Analyzer),
		observability.Int("idea_length", len(req.Idea)),
	)

	analysis, err := h.service.Analyze(ctx, req.Idea, req.Analyzer)
	if err != nil {
		logger.Error("analysis failed", observability.Error(err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	setCacheHeaders(w, analysis)
	writeJSON(w, r, http.StatusOK, analysis)
}

// HandleHistory lists recently analyzed ideas.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		observability.FromContext(r.Context()).Error("history failed", observability.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, records)
}

// HandleAnalyzers lists registered analyzers.
func (h *Handler) HandleAnalyzers(w http.ResponseWriter, r *http.Request) {
	names, err := h.registry.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string][]string{"analyzers": names})
}

// HandleCacheStats reports cache counters and derived rates.
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	cache := h.service.Cache()
	if cache == nil {
		http.Error(w, domain.ErrCacheUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}

	stats, err := cache.Stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, CacheStatsResponse{
		Stats:         stats,
		Effectiveness: stats.Effectiveness(),
	})
}

// HandleCacheCleanup removes expired semantic entries.
func (h *Handler) HandleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	cache := h.service.Cache()
	if cache == nil {
		http.Error(w, domain.ErrCacheUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}

	removed, err := cache.CleanupExpired(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]int{"removed": removed})
}

// HandleCacheClear empties the cache and resets its counters.
func (h *Handler) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	cache := h.service.Cache()
	if cache == nil {
		http.Error(w, domain.ErrCacheUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}

	if err := cache.Clear(r.Context()); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

// setCacheHeaders reports whether the analysis came from cache.
func setCacheHeaders(w http.ResponseWriter, analysis *domain.Analysis) {
	if !analysis.Cached {
		w.Header().Set(headerCache, "MISS")
		return
	}

	w.Header().Set(headerCache, "HIT")
	w.Header().Set(headerCacheSimilarity, strconv.FormatFloat(analysis.Similarity, 'f', 4, 64))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyIdea):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAnalyzerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.FromContext(r.Context()).Error("failed to encode response", observability.Error(err))
	}
}
