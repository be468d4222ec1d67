// internal/app/features/portfolio/portfolio.go
package portfolio

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Source is the read side of *content.Store.
type Source interface {
	Snapshot() content.State
	Project(id string) (models.Project, bool)
	Watch(fn func(content.State)) (stop func())
}

// Handler serves the public, read-only API.
type Handler struct {
	src    Source
	logger *zap.Logger

	// heartbeat is how often an idle event stream sends a keep-alive comment.
	heartbeat time.Duration
}

// NewHandler creates a new portfolio Handler.
func NewHandler(src Source, logger *zap.Logger) *Handler {
	return &Handler{
		src:       src,
		logger:    logger,
		heartbeat: 25 * time.Second,
	}
}

// View is the public shape of the content state. Collections that carry an
// order are sorted by it.
type View struct {
	SiteConfig     models.SiteConfig    `json:"siteConfig"`
	Projects       []models.Project     `json:"projects"`
	Skills         []models.Skill       `json:"skills"`
	Experiences    []models.Experience  `json:"experiences"`
	Certificates   []models.Certificate `json:"certificates"`
	Categories     []string             `json:"categories"`
	ConfigLoaded   bool                 `json:"configLoaded"`
	ProjectsLoaded bool                 `json:"projectsLoaded"`
}

// NewView builds the public view of st.
func NewView(st content.State) View {
	return View{
		SiteConfig:     st.SiteConfig,
		Projects:       nonNil(models.SortProjects(st.Projects)),
		Skills:         nonNil(st.Skills),
		Experiences:    nonNil(st.Experiences),
		Certificates:   nonNil(models.SortCertificates(st.Certificates)),
		Categories:     st.SiteConfig.Categories(),
		ConfigLoaded:   st.ConfigLoaded,
		ProjectsLoaded: st.ProjectsLoaded,
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// Routes returns a chi.Router with the public API mounted under /api.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/portfolio", h.handlePortfolio)
	r.Get("/projects", h.handleProjects)
	r.Get("/projects/{id}", h.handleProject)
	r.Get("/events", h.handleEvents)
	return r
}

func (h *Handler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, NewView(h.src.Snapshot()))
}

// handleProjects lists projects in display order, optionally filtered by
// ?category= (case-insensitive; "all" or empty means no filter).
func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects := models.SortProjects(h.src.Snapshot().Projects)

	cat := strings.TrimSpace(r.URL.Query().Get("category"))
	if cat != "" && !strings.EqualFold(cat, "all") {
		filtered := projects[:0]
		for _, p := range projects {
			if strings.EqualFold(p.Category, cat) {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}
	if projects == nil {
		projects = []models.Project{}
	}
	jsonutil.OK(w, projects)
}

func (h *Handler) handleProject(w http.ResponseWriter, r *http.Request) {
	p, ok := h.src.Project(chi.URLParam(r, "id"))
	if !ok {
		jsonutil.NotFound(w, "project not found")
		return
	}
	jsonutil.OK(w, p)
}
