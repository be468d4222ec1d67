package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestDeadlines(t *testing.T) {
	const def = 30 * time.Second
	upload, batch := 2*time.Minute, time.Minute
	mw := requestDeadlines(def, routeBudgets(upload, batch))

	tests := []struct {
		path    string
		want    time.Duration
		bounded bool
	}{
		{"/api/portfolio", def, true},
		{"/api/admin/projects", def, true},
		{uploadsPath, upload + deadlineSlack, true},
		{uploadsPath + "/", upload + deadlineSlack, true},
		{resetPath, batch + deadlineSlack, true},
		{eventsPath, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var (
				deadline time.Time
				ok       bool
			)
			h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				deadline, ok = r.Context().Deadline()
			}))
			start := time.Now()
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, tt.path, nil))

			if ok != tt.bounded {
				t.Fatalf("has deadline = %v, want %v", ok, tt.bounded)
			}
			if !tt.bounded {
				return
			}
			got := deadline.Sub(start)
			if got < tt.want-time.Second || got > tt.want+time.Second {
				t.Errorf("deadline in %v, want about %v", got, tt.want)
			}
		})
	}
}

func TestRequestDeadlines_ShortBudgetKeepsDefault(t *testing.T) {
	const def = 30 * time.Second
	mw := requestDeadlines(def, map[string]time.Duration{resetPath: time.Second})

	var deadline time.Time
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}))
	start := time.Now()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, resetPath, nil))

	if got := deadline.Sub(start); got < def-time.Second {
		t.Errorf("deadline in %v, want at least %v", got, def-time.Second)
	}
}
