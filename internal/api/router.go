package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/clipforge/clipforge/internal/taskpool"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PayloadDecoder converts a raw JSON payload into the in-process value the
// handler for taskType expects.
type PayloadDecoder func(taskType string, raw json.RawMessage) (any, error)

// RouterConfig holds the collaborators for the diagnostics router.
type RouterConfig struct {
	Pool    *taskpool.Pool
	Decode  PayloadDecoder
	Metrics http.Handler // optional; GET /metrics is omitted when nil
	Logger  *slog.Logger
}

// NewRouter builds the chi router for the diagnostics surface.
func NewRouter(cfg RouterConfig) chi.Router {
	h := &handlers{
		pool:   cfg.Pool,
		decode: cfg.Decode,
		logger: cfg.Logger.With("component", "api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Get("/stats", h.stats)
	r.Post("/tasks", h.submitTask)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	return r
}
