// internal/app/features/logout/logout.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Signer is the logout side of *content.Store.
type Signer interface {
	LogoutAdmin(ctx context.Context) error
}

// Handler provides logout handlers.
type Handler struct {
	store      Signer
	sessionMgr *auth.SessionManager
	logger     *zap.Logger
}

// NewHandler creates a new logout Handler.
func NewHandler(store Signer, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		store:      store,
		sessionMgr: sessionMgr,
		logger:     logger,
	}
}

// Routes returns a chi.Router with logout routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdmin)
	r.Post("/", h.handleLogout)
	return r
}

// handleLogout ends the cookie session and signs the admin out of the
// content store. The cookie is cleared even if the provider sign-out fails.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if a, ok := auth.CurrentAdmin(r); ok {
		h.logger.Info("admin logged out", zap.String("email", a.Email))
	}

	if err := h.store.LogoutAdmin(r.Context()); err != nil {
		h.logger.Warn("provider sign-out failed", zap.Error(err))
	}
	h.sessionMgr.DestroySession(w, r)

	jsonutil.NoContent(w)
}
