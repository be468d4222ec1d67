package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

type fixedState content.State

func (s fixedState) Snapshot() content.State { return content.State(s) }

var loaded = fixedState{ConfigLoaded: true, ProjectsLoaded: true}

func TestHandler_Check(t *testing.T) {
	db := testutil.SetupTestDB(t)

	h := NewHandler(db.Client(), loaded, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("response status = %q, want %q", resp.Status, "ok")
	}
	if resp.Services["mongodb"] != "ok" || resp.Services["content"] != "loaded" {
		t.Errorf("services = %v", resp.Services)
	}
}

func TestHandler_Check_Degraded(t *testing.T) {
	tests := []struct {
		name    string
		ping    error
		state   fixedState
		service string
		want    string
	}{
		{"mongo down", errors.New("no reachable servers"), loaded, "mongodb", "unavailable"},
		{"content loading", nil, fixedState{ConfigLoaded: true}, "content", "loading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(fakePinger{tt.ping}, tt.state, zap.NewNop())
			rec := httptest.NewRecorder()
			h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("status = %d, want 503", rec.Code)
			}
			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != "degraded" || resp.Services[tt.service] != tt.want {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		ping       error
		state      fixedState
		wantStatus int
		wantBody   ReadyResponse
	}{
		{"ready", nil, loaded, http.StatusOK, ReadyResponse{"ready", true, true}},
		{"config pending", nil, fixedState{ProjectsLoaded: true}, http.StatusServiceUnavailable, ReadyResponse{"not ready", false, true}},
		{"nothing loaded", nil, fixedState{}, http.StatusServiceUnavailable, ReadyResponse{"not ready", false, false}},
		{"db down", errors.New("timeout"), loaded, http.StatusServiceUnavailable, ReadyResponse{"not ready", true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(fakePinger{tt.ping}, tt.state, zap.NewNop())
			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("Ready() status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got ReadyResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got != tt.wantBody {
				t.Errorf("Ready() body = %+v, want %+v", got, tt.wantBody)
			}
		})
	}
}

func TestHandler_Live(t *testing.T) {
	// Live needs neither the database nor content.
	h := NewHandler(nil, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Live() status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); body != `{"status":"alive"}` {
		t.Errorf("Live() body = %q, want %q", body, `{"status":"alive"}`)
	}
}

func TestRoutes(t *testing.T) {
	h := NewHandler(fakePinger{}, loaded, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/health", Routes(h))
	MountRootEndpoints(r, h)

	for _, path := range []string{"/health", "/health/ready", "/health/live", "/ready", "/readyz", "/livez"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}
