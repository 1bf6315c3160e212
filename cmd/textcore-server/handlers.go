package main

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/textcore/aicore/internal/cache"
	"github.com/textcore/aicore/internal/config"
	"github.com/textcore/aicore/internal/health"
	"github.com/textcore/aicore/internal/textproc"
	"github.com/textcore/aicore/pkg/logger"
)

// requestPayload mirrors spec.md §6's inbound JSON shape.
type requestPayload struct {
	Text      string                 `json:"text"`
	Operation string                 `json:"operation"`
	Options   map[string]interface{} `json:"options"`
	Question  string                 `json:"question"`
}

func (p requestPayload) toRequest() textproc.Request {
	opts := textproc.Options{}
	if v, ok := p.Options["max_length"].(float64); ok {
		opts.MaxLength = int(v)
	}
	if v, ok := p.Options["max_points"].(float64); ok {
		opts.MaxPoints = int(v)
	}
	if v, ok := p.Options["num_questions"].(float64); ok {
		opts.NumQuestions = int(v)
	}
	if v, ok := p.Options["style"].(string); ok {
		opts.Style = v
	}
	return textproc.Request{
		Text:      p.Text,
		Operation: config.Operation(p.Operation),
		Options:   opts,
		Question:  p.Question,
	}
}

func newServer(cfg config.RuntimeConfig, processor *textproc.Processor, resolver *config.Resolver, aggregator *health.Aggregator, tieredCache *cache.TieredCache, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/process", processHandler(processor, log))
	mux.HandleFunc("/v1/health", healthHandler(aggregator))
	mux.HandleFunc("/v1/cache/stats", cacheStatsHandler(tieredCache))
	mux.HandleFunc("/v1/admin/config/validate/resilience", validateResilienceHandler(resolver))
	mux.HandleFunc("/v1/admin/config/validate/cache", validateCacheHandler(resolver))

	return corsMiddleware(cfg.Security.AllowedOrigins)(requestIDMiddleware(mux))
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func processHandler(p *textproc.Processor, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload requestPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		resp, err := p.Process(r.Context(), payload.toRequest())
		if err != nil {
			writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func healthHandler(a *health.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("component")
		if name != "" {
			writeJSON(w, http.StatusOK, a.Check(r.Context(), name))
			return
		}
		result := a.CheckAll(r.Context())
		status := http.StatusOK
		if result.Overall == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	}
}

func cacheStatsHandler(c *cache.TieredCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Stats(r.Context()))
	}
}

type validateRequest struct {
	CustomJSON string `json:"custom_json"`
}

func validateResilienceHandler(resolver *config.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		writeJSON(w, http.StatusOK, resolver.ValidateResilienceOverride(req.CustomJSON))
	}
}

func validateCacheHandler(resolver *config.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		writeJSON(w, http.StatusOK, resolver.ValidateCacheOverride(req.CustomJSON))
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
