package logout

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/testutil"
	"go.uber.org/zap"
)

type stubSigner struct {
	calls int
	err   error
}

func (s *stubSigner) LogoutAdmin(context.Context) error {
	s.calls++
	return s.err
}

func newTestHandler(t *testing.T, err error) (http.Handler, *stubSigner) {
	t.Helper()
	sessionMgr, e := auth.NewSessionManager("xK8nP2mQ9rT5vW7yB3cF6hJ0lN4sU1wZ", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if e != nil {
		t.Fatalf("NewSessionManager() error = %v", e)
	}
	s := &stubSigner{err: err}
	return Routes(NewHandler(s, sessionMgr, zap.NewNop()), sessionMgr), s
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"signs out", nil},
		{"provider error still clears cookie", errors.New("provider unavailable")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, signer := newTestHandler(t, tt.err)

			rec := testutil.NewRecorder()
			h.ServeHTTP(rec, testutil.NewAdminRequest(t, http.MethodPost, "/", nil))
			rec.AssertStatus(t, http.StatusNoContent)

			if signer.calls != 1 {
				t.Errorf("LogoutAdmin calls = %d, want 1", signer.calls)
			}
			cookies := rec.Result().Cookies()
			if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
				t.Errorf("session cookie not expired: %+v", cookies)
			}
		})
	}
}

func TestLogout_RequiresAdmin(t *testing.T) {
	h, signer := newTestHandler(t, nil)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest(http.MethodPost, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
	if signer.calls != 0 {
		t.Error("LogoutAdmin called for an anonymous request")
	}
}

func TestLogout_GetNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewAdminRequest(t, http.MethodGet, "/", nil))
	rec.AssertStatus(t, http.StatusMethodNotAllowed)
}
