// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// Editor is the write side of *content.Store used by the admin API.
type Editor interface {
	Snapshot() content.State

	AddProject(ctx context.Context, p models.Project) error
	UpdateProject(ctx context.Context, id string, fields docstore.Fields) error
	DeleteProject(ctx context.Context, id string) error
	AddSkill(ctx context.Context, sk models.Skill) error
	UpdateSkill(ctx context.Context, id string, fields docstore.Fields) error
	DeleteSkill(ctx context.Context, id string) error
	AddExperience(ctx context.Context, e models.Experience) error
	UpdateExperience(ctx context.Context, id string, fields docstore.Fields) error
	DeleteExperience(ctx context.Context, id string) error
	AddCertificate(ctx context.Context, c models.Certificate) error
	UpdateCertificate(ctx context.Context, id string, fields docstore.Fields) error
	DeleteCertificate(ctx context.Context, id string) error

	UpdateSiteConfig(ctx context.Context, fields docstore.Fields) error
	ReorderProjects(ctx context.Context, entries []content.OrderEntry) error
	ReorderCertificates(ctx context.Context, entries []content.OrderEntry) error
	ResetToDefaults(ctx context.Context) error
}

// Handler serves the admin API. Every route expects an admin session; the
// caller mounts Routes behind auth.RequireAdmin and CSRF protection.
type Handler struct {
	store  Editor
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a new admin Handler.
func NewHandler(store Editor, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger, now: time.Now}
}

// Routes returns a chi.Router with the admin routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/dashboard", h.handleDashboard)
	r.Get("/csrf", h.handleCSRF)
	r.Post("/reset", h.handleReset)

	r.Get("/config", h.handleGetConfig)
	r.Put("/config", h.handleUpdateConfig)

	mountResource(r, h, "/projects", h.projects())
	mountResource(r, h, "/skills", h.skills())
	mountResource(r, h, "/experiences", h.experiences())
	mountResource(r, h, "/certificates", h.certificates())

	r.Post("/projects/reorder", h.handleReorder(models.CollectionProjects))
	r.Post("/certificates/reorder", h.handleReorder(models.CollectionCertificates))
	return r
}

// handleCSRF hands the admin panel a token for its next mutating request.
// The token travels in the X-CSRF-Token header.
func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]string{"token": csrf.Token(r)})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.logger, "reset to defaults")
	defer cancel()
	if err := h.store.ResetToDefaults(ctx); err != nil {
		jsonutil.InternalError(w, "reset failed")
		return
	}
	h.logger.Info("admin reset content to defaults")
	jsonutil.NoContent(w)
}

// DashboardResponse summarises the content for the admin landing page.
type DashboardResponse struct {
	Counts         map[string]int   `json:"counts"`
	RecentProjects []models.Project `json:"recentProjects"`
	ConfigLoaded   bool             `json:"configLoaded"`
	ProjectsLoaded bool             `json:"projectsLoaded"`
}

// recentLimit is how many projects the dashboard lists.
const recentLimit = 4

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	recent := models.SortProjects(st.Projects)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	if recent == nil {
		recent = []models.Project{}
	}
	jsonutil.OK(w, DashboardResponse{
		Counts: map[string]int{
			models.CollectionProjects:     len(st.Projects),
			models.CollectionSkills:       len(st.Skills),
			models.CollectionExperiences:  len(st.Experiences),
			models.CollectionCertificates: len(st.Certificates),
		},
		RecentProjects: recent,
		ConfigLoaded:   st.ConfigLoaded,
		ProjectsLoaded: st.ProjectsLoaded,
	})
}
