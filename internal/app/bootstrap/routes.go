// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"net/url"

	adminfeature "github.com/dalemusser/folio/internal/app/features/admin"
	contactfeature "github.com/dalemusser/folio/internal/app/features/contact"
	healthfeature "github.com/dalemusser/folio/internal/app/features/health"
	loginfeature "github.com/dalemusser/folio/internal/app/features/login"
	logoutfeature "github.com/dalemusser/folio/internal/app/features/logout"
	portfoliofeature "github.com/dalemusser/folio/internal/app/features/portfolio"
	uploadsfeature "github.com/dalemusser/folio/internal/app/features/uploads"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for folio.
//
// Route layout:
//   - /api/portfolio, /api/projects, /api/events: public content (portfolio)
//   - /api/contact: public contact form
//   - /api/login, /api/session: admin sign-in and session probe
//   - /api/logout: admin sign-out (session + CSRF)
//   - /api/admin/*: content editing and uploads (session + CSRF)
//   - /health, /ready, /readyz, /livez: probes
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-read the admin on each request so a deleted account loses its
	// session immediately.
	sessionMgr.SetAdminFetcher(auth.AdminFetcherFunc(func(ctx context.Context, id string) *auth.SessionAdmin {
		a, err := deps.Identity.Lookup(ctx, id)
		if err != nil {
			logger.Warn("admin lookup failed", zap.String("admin_id", id), zap.Error(err))
			return nil
		}
		if a == nil {
			return nil
		}
		return &auth.SessionAdmin{ID: a.ID, Email: a.Email, Name: a.Name}
	}))

	r := chi.NewRouter()

	// Every request except the event stream gets a hard deadline; uploads
	// and reset get theirs from the configured operation timeouts.
	r.Use(requestDeadlines(defaultRequestTimeout, routeBudgets(timeouts.Upload(), timeouts.Batch())))

	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))
	r.Use(sessionMgr.LoadSession)

	csrfProtect := newCSRF(appCfg, secure, logger)

	// Public content
	portfolioHandler := portfoliofeature.NewHandler(deps.Content, logger)
	r.Mount("/api", portfoliofeature.Routes(portfolioHandler))

	contactHandler := contactfeature.NewHandler(deps.Content, deps.Mailer, deps.ContactLimit, logger)
	r.Mount("/api/contact", contactfeature.Routes(contactHandler))

	// Admin sign-in. A nil store must not become a non-nil interface.
	var limiter loginfeature.Limiter
	if deps.LoginLimit != nil {
		limiter = deps.LoginLimit
	}
	loginHandler := loginfeature.NewHandler(deps.Content, deps.Identity, limiter, sessionMgr, logger)
	r.Mount("/api/login", loginfeature.Routes(loginHandler))
	r.Mount("/api/session", loginfeature.SessionRoutes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(deps.Content, sessionMgr, logger)
	r.With(csrfProtect).Mount("/api/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Admin API
	adminHandler := adminfeature.NewHandler(deps.Content, logger)
	uploadsHandler := uploadsfeature.NewHandler(deps.Media, logger)
	r.Route("/api/admin", func(sr chi.Router) {
		sr.Use(sessionMgr.RequireAdmin)
		sr.Use(csrfProtect)
		sr.Mount("/uploads", uploadsfeature.Routes(uploadsHandler))
		sr.Mount("/", adminfeature.Routes(adminHandler))
	})

	// Probes
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Content, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Locally stored media
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	return r, nil
}

// newCSRF builds the CSRF middleware for admin mutations. The admin panel
// reads a token from GET /api/admin/csrf and sends it in X-CSRF-Token.
func newCSRF(appCfg AppConfig, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("folio_csrf"),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}` + "\n"))
		})),
	}

	var trustedOrigins []string
	if !secure {
		trustedOrigins = append(trustedOrigins,
			"localhost:8080",
			"localhost:3000",
			"localhost:5173",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		)
	}
	if u, err := url.Parse(appCfg.BaseURL); err == nil && u.Host != "" {
		trustedOrigins = append(trustedOrigins, u.Host)
	}
	csrfOpts = append(csrfOpts, csrf.TrustedOrigins(trustedOrigins))

	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	return csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
}
