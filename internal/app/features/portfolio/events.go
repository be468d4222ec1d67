package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/folio/internal/app/content"
	"go.uber.org/zap"
)

// handleEvents streams the public view as Server-Sent Events. The current
// view is sent on connect and again after every change. Updates that arrive
// faster than the client reads are coalesced; only the latest is sent.
//
// The stream outlives the server's write timeout, so the per-connection
// write deadline is cleared before anything is written.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("clear event stream write deadline", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	updates := make(chan content.State, 1)
	stop := h.src.Watch(func(st content.State) {
		// Drop a pending state in favour of the newer one.
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- st:
		default:
		}
	})
	defer stop()

	if err := writeEvent(w, NewView(h.src.Snapshot())); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case st := <-updates:
			if err := writeEvent(w, NewView(st)); err != nil {
				h.logger.Debug("event stream closed", zap.Error(err))
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, v View) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", raw)
	return err
}
