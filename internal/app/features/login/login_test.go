package login

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/store/loginlimit"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/identity"
	"github.com/dalemusser/folio/internal/app/system/seeding"
	"github.com/dalemusser/folio/internal/testutil"
	"github.com/dalemusser/folio/internal/testutil/fakes"
	"go.uber.org/zap"
)

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "correct-horse"
	sessionKey    = "xK8nP2mQ9rT5vW7yB3cF6hJ0lN4sU1wZ"
)

type stubLimiter struct{ st loginlimit.Status }

func (l stubLimiter) Check(context.Context, string) (loginlimit.Status, error) { return l.st, nil }

// newContentStore returns an initialized store over fake remotes using idp.
func newContentStore(t *testing.T, idp identity.Provider) *content.Store {
	t.Helper()
	cs := content.New(fakes.NewDocStore(), idp, seeding.Builtin(), zap.NewNop())
	if err := cs.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = cs.Close(ctx)
	})
	return cs
}

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(sessionKey, "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return sm
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		limiter    Limiter
		wantStatus int
		wantCookie bool
	}{
		{"valid", loginRequest{ownerEmail, ownerPassword}, nil, http.StatusOK, true},
		{"wrong password", loginRequest{ownerEmail, "nope"}, nil, http.StatusUnauthorized, false},
		{"unknown email", loginRequest{"x@example.com", ownerPassword}, nil, http.StatusUnauthorized, false},
		{"missing password", loginRequest{Email: ownerEmail}, nil, http.StatusBadRequest, false},
		{"malformed", `{"email":`, nil, http.StatusBadRequest, false},
		{"unknown field", `{"email":"a","password":"b","admin":true}`, nil, http.StatusBadRequest, false},
		{
			"locked out",
			loginRequest{ownerEmail, ownerPassword},
			stubLimiter{loginlimit.Status{Allowed: false}},
			http.StatusTooManyRequests,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idp := fakes.NewIdentity(map[string]string{ownerEmail: ownerPassword})
			cs := newContentStore(t, idp)
			h := NewHandler(cs, idp, tt.limiter, newSessionManager(t), zap.NewNop())

			rec := testutil.NewRecorder()
			Routes(h).ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/", tt.body))
			rec.AssertStatus(t, tt.wantStatus)

			if got := len(rec.Result().Cookies()) > 0; got != tt.wantCookie {
				t.Errorf("session cookie set = %v, want %v", got, tt.wantCookie)
			}
			if tt.wantStatus == http.StatusOK {
				var resp SessionResponse
				rec.DecodeJSON(t, &resp)
				if !resp.Authenticated || resp.Admin == nil || resp.Admin.Email != ownerEmail {
					t.Errorf("response = %+v", resp)
				}
				if !cs.Snapshot().IsAdminLoggedIn {
					t.Error("content store does not show the admin as logged in")
				}
			}
		})
	}
}

func TestLogin_RetryAfter(t *testing.T) {
	idp := fakes.NewIdentity(nil)
	until := time.Now().Add(10 * time.Minute)
	h := NewHandler(newContentStore(t, idp), idp,
		stubLimiter{loginlimit.Status{Allowed: false, LockedUntil: &until}},
		newSessionManager(t), zap.NewNop())

	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/", loginRequest{ownerEmail, "x"}))
	rec.AssertStatus(t, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After not set")
	}
	rec.AssertContains(t, "minute")
	if idp.SignIns() != 0 {
		t.Error("SignIn called while locked out")
	}
}

func TestSession(t *testing.T) {
	idp := fakes.NewIdentity(nil)
	h := NewHandler(newContentStore(t, idp), idp, nil, newSessionManager(t), zap.NewNop())

	rec := testutil.NewRecorder()
	SessionRoutes(h).ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	var anon SessionResponse
	rec.DecodeJSON(t, &anon)
	if anon.Authenticated {
		t.Error("anonymous request reported as authenticated")
	}

	rec = testutil.NewRecorder()
	admin := testutil.AdminUser()
	SessionRoutes(h).ServeHTTP(rec, testutil.WithAdmin(testutil.NewRequest(http.MethodGet, "/"), admin))
	var signed SessionResponse
	rec.DecodeJSON(t, &signed)
	if !signed.Authenticated || signed.Admin == nil || signed.Admin.ID != admin.ID {
		t.Errorf("response = %+v", signed)
	}
}

func TestLogin_MongoLockout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	limiter := loginlimit.New(db, loginlimit.Policy{MaxAttempts: 2, Window: time.Hour, Lockout: time.Hour})
	idp := identity.NewMongo(db, limiter, zap.NewNop())
	if _, err := idp.EnsureAdmin(ctx, ownerEmail, "Owner", ownerPassword); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	h := NewHandler(newContentStore(t, idp), idp, limiter, newSessionManager(t), zap.NewNop())

	post := func(password string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		Routes(h).ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/", loginRequest{ownerEmail, password}))
		return rec
	}

	post("wrong-1").AssertStatus(t, http.StatusUnauthorized)
	post("wrong-2").AssertStatus(t, http.StatusTooManyRequests)
	// Locked even with the right password.
	post(ownerPassword).AssertStatus(t, http.StatusTooManyRequests)
}
