// Package auth manages the admin's cookie session and the middleware that
// gates the admin API.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session error classification for logging.
type sessionErrorType int

const (
	sessionErrUnknown   sessionErrorType = iota
	sessionErrExpired                    // timestamp expired, normal
	sessionErrTampered                   // MAC invalid, possible attack
	sessionErrCorrupted                  // decode failed, corruption or key rotation
	sessionErrBackend                    // store failure
)

const (
	isAuthKey  = "is_authenticated"
	adminIDKey = "admin_id"
	emailKey   = "admin_email"
	nameKey    = "admin_name"
)

// DefaultSessionName is the cookie name used when none is configured.
const DefaultSessionName = "folio-session"

// SessionConfigError is returned when session configuration is invalid.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string { return e.Message }

// SessionAdmin is the signed-in admin attached to a request.
type SessionAdmin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AdminFetcher re-reads the admin on each request so a removed account
// loses access immediately. It returns nil when the admin no longer exists.
type AdminFetcher interface {
	FetchAdmin(ctx context.Context, id string) *SessionAdmin
}

// AdminFetcherFunc adapts a function to AdminFetcher.
type AdminFetcherFunc func(ctx context.Context, id string) *SessionAdmin

// FetchAdmin implements AdminFetcher.
func (f AdminFetcherFunc) FetchAdmin(ctx context.Context, id string) *SessionAdmin { return f(ctx, id) }

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	logger  *zap.Logger
	name    string
	fetcher AdminFetcher
}

// NewSessionManager creates a SessionManager.
//
// In secure (production) mode a weak or placeholder key is rejected; in
// development it is only logged. Secure cookies are HttpOnly, Secure and
// SameSite=Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, &SessionConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}

	weak := len(sessionKey) < 32 || isDefaultKey(sessionKey)
	if weak && secure {
		return nil, &SessionConfigError{
			Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)",
		}
	}
	if weak {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(sessionKey)),
			zap.Bool("is_default", isDefaultKey(sessionKey)))
	}

	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("name", name),
		zap.String("domain", domain))

	return &SessionManager{store: store, logger: logger, name: name}, nil
}

// SessionName returns the cookie name.
func (sm *SessionManager) SessionName() string { return sm.name }

// SetAdminFetcher installs the per-request admin lookup.
func (sm *SessionManager) SetAdminFetcher(f AdminFetcher) { sm.fetcher = f }

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the admin attached to the request, if any.
func CurrentAdmin(r *http.Request) (*SessionAdmin, bool) {
	a, ok := r.Context().Value(currentAdminKey).(*SessionAdmin)
	return a, ok && a != nil
}

// WithAdmin attaches a to the request context.
func WithAdmin(r *http.Request, a *SessionAdmin) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentAdminKey, a))
}

// LoadSession is middleware that attaches the session's admin, if any.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.logSessionError(r, err)
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			id := getString(sess, adminIDKey)
			switch {
			case id == "":
			case sm.fetcher != nil:
				if a := sm.fetcher.FetchAdmin(r.Context(), id); a != nil {
					r = WithAdmin(r, a)
				} else {
					sm.logger.Info("session invalidated: admin not found",
						zap.String("admin_id", id),
						zap.String("path", r.URL.Path))
					clearAuth(sess)
					_ = sess.Save(r, w)
				}
			default:
				r = WithAdmin(r, &SessionAdmin{
					ID:    id,
					Email: getString(sess, emailKey),
					Name:  getString(sess, nameKey),
				})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is middleware that answers 401 unless an admin is attached.
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentAdmin(r); !ok {
			jsonutil.Unauthorized(w, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSession marks the session as signed in as a.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, a SessionAdmin) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sess, _ = sm.store.New(r, sm.name)
	}
	sess.Values[isAuthKey] = true
	sess.Values[adminIDKey] = a.ID
	sess.Values[emailKey] = a.Email
	sess.Values[nameKey] = a.Name
	return sess.Save(r, w)
}

// DestroySession signs the session out and expires the cookie.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sess, _ = sm.store.New(r, sm.name)
	}
	clearAuth(sess)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

func clearAuth(sess *sessions.Session) {
	sess.Values[isAuthKey] = false
	delete(sess.Values, adminIDKey)
	delete(sess.Values, emailKey)
	delete(sess.Values, nameKey)
}

func (sm *SessionManager) logSessionError(r *http.Request, err error) {
	kind, category := classifySessionError(err)
	fields := []zap.Field{zap.String("category", category), zap.String("path", r.URL.Path)}
	switch kind {
	case sessionErrExpired:
		sm.logger.Debug("session expired, starting fresh session", fields...)
	case sessionErrTampered:
		sm.logger.Warn("session MAC validation failed (possible tampering)",
			append(fields, zap.String("remote_addr", r.RemoteAddr), zap.String("user_agent", r.UserAgent()))...)
	case sessionErrCorrupted:
		sm.logger.Info("session decode failed, starting fresh session", fields...)
	case sessionErrBackend:
		sm.logger.Error("session store error, starting fresh session", append(fields, zap.Error(err))...)
	default:
		sm.logger.Warn("session error, starting fresh session", append(fields, zap.Error(err))...)
	}
}

func getString(s *sessions.Session, key string) string {
	v, _ := s.Values[key].(string)
	return v
}

// isDefaultKey reports whether key looks like a placeholder.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range []string{"dev-only", "change-me", "placeholder", "default", "example", "insecure", "test-key", "secret123", "password"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifySessionError sorts a cookie decode error for logging.
func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	var scErr securecookie.Error
	if !errors.As(err, &scErr) {
		return sessionErrBackend, "unknown"
	}
	if !scErr.IsDecode() {
		return sessionErrBackend, "backend"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "expired timestamp"):
		return sessionErrExpired, "expired"
	case strings.Contains(msg, "mac") || strings.Contains(msg, "hash"):
		return sessionErrTampered, "mac_invalid"
	case strings.Contains(msg, "decrypt"):
		return sessionErrCorrupted, "decrypt_failed"
	case strings.Contains(msg, "base64") || strings.Contains(msg, "decode"):
		return sessionErrCorrupted, "decode_failed"
	}
	return sessionErrCorrupted, "decode_other"
}
