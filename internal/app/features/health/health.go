// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// StateSource is satisfied by *content.Store.
type StateSource interface {
	Snapshot() content.State
}

// Handler provides health check endpoints.
type Handler struct {
	db      Pinger
	content StateSource
	logger  *zap.Logger
}

// NewHandler creates a new health check Handler.
func NewHandler(db Pinger, cs StateSource, logger *zap.Logger) *Handler {
	return &Handler{
		db:      db,
		content: cs,
		logger:  logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// ReadyResponse is the body of the readiness probe.
type ReadyResponse struct {
	Status         string `json:"status"`
	ConfigLoaded   bool   `json:"configLoaded"`
	ProjectsLoaded bool   `json:"projectsLoaded"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds /ready and /livez endpoints directly on the root router.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

func (h *Handler) ping(ctx context.Context) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), h.logger, "health ping")
	defer cancel()
	return h.db.Ping(ctx, readpref.Primary())
}

// Check reports database connectivity and whether content has loaded.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Services: make(map[string]string),
	}

	if err := h.ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Services["mongodb"] = "unavailable"
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
	} else {
		resp.Services["mongodb"] = "ok"
	}

	st := h.content.Snapshot()
	if st.ConfigLoaded && st.ProjectsLoaded {
		resp.Services["content"] = "loaded"
	} else {
		resp.Status = "degraded"
		resp.Services["content"] = "loading"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, status, resp)
}

// Ready answers 200 once the database is reachable and the site
// configuration and projects have been delivered at least once.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	st := h.content.Snapshot()
	resp := ReadyResponse{
		Status:         "ready",
		ConfigLoaded:   st.ConfigLoaded,
		ProjectsLoaded: st.ProjectsLoaded,
	}

	if err := h.ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		resp.Status = "not ready"
	} else if !st.ConfigLoaded || !st.ProjectsLoaded {
		resp.Status = "not ready"
	}

	if resp.Status != "ready" {
		jsonutil.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	jsonutil.OK(w, resp)
}

// Live checks if the service is alive.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"alive"}`))
}
