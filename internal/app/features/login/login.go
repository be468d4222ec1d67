// internal/app/features/login/login.go
package login

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/store/loginlimit"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/identity"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/network"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Authenticator signs the admin in through the content store, which keeps
// IsAdminLoggedIn in step with the identity provider.
type Authenticator interface {
	LoginAdmin(ctx context.Context, email, password string) bool
}

// CurrentAdmin is satisfied by *identity.Mongo.
type CurrentAdmin interface {
	Current() *identity.Admin
}

// Limiter reports lockout status. *loginlimit.Store implements it.
type Limiter interface {
	Check(ctx context.Context, email string) (loginlimit.Status, error)
}

// Handler provides the JSON login endpoint and the session probe.
type Handler struct {
	auth       Authenticator
	idp        CurrentAdmin
	limiter    Limiter // nil if lockout is disabled
	sessionMgr *auth.SessionManager
	logger     *zap.Logger
}

// NewHandler creates a new login Handler. limiter may be nil.
func NewHandler(a Authenticator, idp CurrentAdmin, limiter Limiter, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		auth:       a,
		idp:        idp,
		limiter:    limiter,
		sessionMgr: sessionMgr,
		logger:     logger,
	}
}

// Routes returns a chi.Router with the login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.handleLogin)
	return r
}

// SessionRoutes serves GET /api/session, which tells the admin panel
// whether its cookie is still signed in.
func SessionRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.handleSession)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by login and the session probe.
type SessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	Admin         *auth.SessionAdmin `json:"admin,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		jsonutil.ValidationError(w, missing(req))
		return
	}

	if until, locked := h.lockedUntil(r.Context(), req.Email); locked {
		h.tooMany(w, r, req.Email, until)
		return
	}

	if !h.auth.LoginAdmin(r.Context(), req.Email, req.Password) {
		// The failure may have been the one that triggered the lockout.
		if until, locked := h.lockedUntil(r.Context(), req.Email); locked {
			h.tooMany(w, r, req.Email, until)
			return
		}
		h.logger.Info("admin login failed",
			zap.String("email", req.Email),
			zap.String("ip", network.ClientIP(r)))
		jsonutil.Unauthorized(w, "invalid email or password")
		return
	}

	a := h.idp.Current()
	if a == nil {
		h.logger.Error("login succeeded but no admin is current", zap.String("email", req.Email))
		jsonutil.InternalError(w, "sign-in did not complete")
		return
	}
	sa := auth.SessionAdmin{ID: a.ID, Email: a.Email, Name: a.Name}
	if err := h.sessionMgr.CreateSession(w, r, sa); err != nil {
		h.logger.Error("failed to save session", zap.Error(err))
		jsonutil.InternalError(w, "could not start session")
		return
	}

	h.logger.Info("admin logged in",
		zap.String("email", a.Email),
		zap.String("ip", network.ClientIP(r)))
	jsonutil.OK(w, SessionResponse{Authenticated: true, Admin: &sa})
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	a, ok := auth.CurrentAdmin(r)
	if !ok {
		jsonutil.OK(w, SessionResponse{})
		return
	}
	jsonutil.OK(w, SessionResponse{Authenticated: true, Admin: a})
}

func (h *Handler) lockedUntil(ctx context.Context, email string) (*time.Time, bool) {
	if h.limiter == nil {
		return nil, false
	}
	st, err := h.limiter.Check(ctx, email)
	if err != nil {
		h.logger.Warn("login limiter check failed", zap.Error(err))
		return nil, false
	}
	return st.LockedUntil, !st.Allowed
}

func (h *Handler) tooMany(w http.ResponseWriter, r *http.Request, email string, until *time.Time) {
	h.logger.Warn("admin login rate limited",
		zap.String("email", email),
		zap.String("ip", network.ClientIP(r)))

	msg := "Too many failed login attempts. Please try again later."
	if until != nil {
		remaining := time.Until(*until)
		secs := int(remaining.Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		if remaining > time.Minute {
			msg = fmt.Sprintf("Too many failed login attempts. Please try again in %d minute(s).", int(remaining.Minutes())+1)
		} else {
			msg = fmt.Sprintf("Too many failed login attempts. Please try again in %d second(s).", secs)
		}
	}
	jsonutil.Error(w, http.StatusTooManyRequests, msg)
}

func missing(req loginRequest) map[string]string {
	out := map[string]string{}
	if req.Email == "" {
		out["email"] = "Email is required."
	}
	if req.Password == "" {
		out["password"] = "Password is required."
	}
	return out
}
