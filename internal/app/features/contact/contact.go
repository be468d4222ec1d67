// internal/app/features/contact/contact.go
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/store/loginlimit"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/mailer"
	"github.com/dalemusser/folio/internal/app/system/network"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StateSource is satisfied by *content.Store.
type StateSource interface {
	Snapshot() content.State
}

// Throttle counts submissions per client. *loginlimit.Store implements it;
// each sent message is recorded as one attempt under a "contact:" key.
type Throttle interface {
	Check(ctx context.Context, key string) (loginlimit.Status, error)
	Fail(ctx context.Context, key string) (loginlimit.Status, error)
}

// Handler delivers contact-form messages to the site owner.
type Handler struct {
	src      StateSource
	mail     mailer.Sender
	throttle Throttle // nil disables throttling
	logger   *zap.Logger
}

// NewHandler creates a new contact Handler. throttle may be nil.
func NewHandler(src StateSource, mail mailer.Sender, throttle Throttle, logger *zap.Logger) *Handler {
	return &Handler{src: src, mail: mail, throttle: throttle, logger: logger}
}

// Routes returns a chi.Router with the contact route mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.handleContact)
	return r
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	var in inputval.ContactInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	// Bots fill every field. Answer as if the message was sent.
	if in.Website != "" {
		h.logger.Info("contact honeypot triggered", zap.String("ip", network.ClientIP(r)))
		jsonutil.JSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
		return
	}

	in.Name = htmlsanitize.Text(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = htmlsanitize.Text(in.Subject)
	in.Message = htmlsanitize.Text(in.Message)
	if res := inputval.Contact(in); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}

	key := "contact:" + network.ClientIP(r)
	if h.throttle != nil {
		st, err := h.throttle.Check(r.Context(), key)
		if err != nil {
			h.logger.Warn("contact throttle check failed", zap.Error(err))
		} else if !st.Allowed {
			jsonutil.Error(w, http.StatusTooManyRequests, "Too many messages. Please try again later.")
			return
		}
	}

	cfg := h.src.Snapshot().SiteConfig
	if cfg.Email == "" {
		jsonutil.Error(w, http.StatusServiceUnavailable, "contact form is not available")
		return
	}

	err := h.mail.Send(mailer.Email{
		To:       cfg.Email,
		ReplyTo:  in.Email,
		Subject:  subject(cfg.Name, in),
		TextBody: body(in),
	})
	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		jsonutil.Error(w, http.StatusServiceUnavailable, "contact form is not available")
		return
	case err != nil:
		h.logger.Error("contact message not sent", zap.Error(err))
		jsonutil.InternalError(w, "could not send message")
		return
	}

	if h.throttle != nil {
		if _, err := h.throttle.Fail(r.Context(), key); err != nil {
			h.logger.Warn("contact throttle update failed", zap.Error(err))
		}
	}
	jsonutil.JSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func subject(site string, in inputval.ContactInput) string {
	s := in.Subject
	if s == "" {
		s = "New message from " + in.Name
	}
	if site != "" {
		return fmt.Sprintf("[%s] %s", site, s)
	}
	return s
}

func body(in inputval.ContactInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\n", in.Name, in.Email)
	if in.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", in.Subject)
	}
	b.WriteString("\n")
	b.WriteString(in.Message)
	b.WriteString("\n")
	return b.String()
}
