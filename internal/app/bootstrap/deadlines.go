// internal/app/bootstrap/deadlines.go
package bootstrap

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	eventsPath  = "/api/events"
	uploadsPath = "/api/admin/uploads"
	resetPath   = "/api/admin/reset"

	// defaultRequestTimeout bounds every route without its own budget.
	defaultRequestTimeout = 30 * time.Second
	// deadlineSlack lets a handler's own operation timeout fire, and answer,
	// before the router gives up on the request.
	deadlineSlack = 5 * time.Second
)

// requestDeadlines bounds each request with chi's Timeout. Paths listed in
// budgets get that deadline instead of def; a zero budget leaves the path
// unbounded (the event stream).
func requestDeadlines(def time.Duration, budgets map[string]time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		byPath := make(map[string]http.Handler, len(budgets))
		for path, d := range budgets {
			if d <= 0 {
				byPath[path] = next
				continue
			}
			byPath[path] = chimw.Timeout(max(d, def))(next)
		}
		limited := chimw.Timeout(def)(next)

		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if h, ok := byPath[req.URL.Path]; ok {
				h.ServeHTTP(w, req)
				return
			}
			limited.ServeHTTP(w, req)
		})
	}
}

// routeBudgets gives the long-running admin routes room for the configured
// upload and batch timeouts.
func routeBudgets(upload, batch time.Duration) map[string]time.Duration {
	return map[string]time.Duration{
		eventsPath:        0,
		uploadsPath:       upload + deadlineSlack,
		uploadsPath + "/": upload + deadlineSlack,
		resetPath:         batch + deadlineSlack,
	}
}
