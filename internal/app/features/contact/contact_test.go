package contact

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/store/loginlimit"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/app/system/mailer"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
	"go.uber.org/zap"
)

type fixedState content.State

func (s fixedState) Snapshot() content.State { return content.State(s) }

type captureSender struct {
	sent []mailer.Email
	err  error
}

func (c *captureSender) Send(e mailer.Email) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, e)
	return nil
}

// countThrottle allows max submissions per key.
type countThrottle struct {
	max  int
	seen map[string]int
}

func (c *countThrottle) Check(_ context.Context, key string) (loginlimit.Status, error) {
	return loginlimit.Status{Allowed: c.seen[key] < c.max}, nil
}

func (c *countThrottle) Fail(_ context.Context, key string) (loginlimit.Status, error) {
	c.seen[key]++
	return loginlimit.Status{Allowed: c.seen[key] < c.max}, nil
}

var owner = fixedState{SiteConfig: models.SiteConfig{Name: "Owner", Email: "owner@example.com"}}

var valid = inputval.ContactInput{Name: "Visitor", Email: "v@example.com", Subject: "Hi", Message: "Hello there"}

func post(t *testing.T, h *Handler, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/", body))
	return rec
}

func TestContact_Sends(t *testing.T) {
	mail := &captureSender{}
	h := NewHandler(owner, mail, nil, zap.NewNop())

	post(t, h, valid).AssertStatus(t, http.StatusAccepted)

	if len(mail.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(mail.sent))
	}
	e := mail.sent[0]
	if e.To != "owner@example.com" || e.ReplyTo != "v@example.com" {
		t.Errorf("addresses = %q / %q", e.To, e.ReplyTo)
	}
	if e.Subject != "[Owner] Hi" {
		t.Errorf("subject = %q", e.Subject)
	}
	if !strings.Contains(e.TextBody, "Hello there") || !strings.Contains(e.TextBody, "Visitor <v@example.com>") {
		t.Errorf("body = %q", e.TextBody)
	}
}

func TestContact_StripsMarkup(t *testing.T) {
	mail := &captureSender{}
	h := NewHandler(owner, mail, nil, zap.NewNop())

	in := valid
	in.Subject = ""
	in.Message = "<script>x()</script><b>Hello</b>"
	post(t, h, in).AssertStatus(t, http.StatusAccepted)

	if len(mail.sent) != 1 {
		t.Fatal("message not sent")
	}
	body := mail.sent[0].TextBody
	for _, bad := range []string{"<script>", "x()", "<b>", "</b>"} {
		if strings.Contains(body, bad) {
			t.Errorf("body contains %q: %q", bad, body)
		}
	}
	if !strings.Contains(body, "Hello") {
		t.Errorf("message text lost: %q", body)
	}
	if mail.sent[0].Subject != "[Owner] New message from Visitor" {
		t.Errorf("subject = %q", mail.sent[0].Subject)
	}
}

func TestContact_Rejects(t *testing.T) {
	badEmail := valid
	badEmail.Email = "nope"
	noMessage := valid
	noMessage.Message = "  "

	tests := []struct {
		name       string
		src        fixedState
		mailErr    error
		body       any
		wantStatus int
	}{
		{"bad email", owner, nil, badEmail, http.StatusBadRequest},
		{"empty message", owner, nil, noMessage, http.StatusBadRequest},
		{"malformed", owner, nil, `{"name":`, http.StatusBadRequest},
		{"no owner email", fixedState{}, nil, valid, http.StatusServiceUnavailable},
		{"mail not configured", owner, mailer.ErrNotConfigured, valid, http.StatusServiceUnavailable},
		{"smtp failure", owner, errors.New("421 try later"), valid, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mail := &captureSender{err: tt.mailErr}
			post(t, NewHandler(tt.src, mail, nil, zap.NewNop()), tt.body).AssertStatus(t, tt.wantStatus)
			if len(mail.sent) != 0 {
				t.Error("message sent")
			}
		})
	}
}

func TestContact_Honeypot(t *testing.T) {
	mail := &captureSender{}
	in := valid
	in.Website = "http://spam.example.com"
	post(t, NewHandler(owner, mail, nil, zap.NewNop()), in).AssertStatus(t, http.StatusAccepted)
	if len(mail.sent) != 0 {
		t.Error("honeypot submission was mailed")
	}
}

func TestContact_Throttle(t *testing.T) {
	mail := &captureSender{}
	h := NewHandler(owner, mail, &countThrottle{max: 2, seen: map[string]int{}}, zap.NewNop())

	post(t, h, valid).AssertStatus(t, http.StatusAccepted)
	post(t, h, valid).AssertStatus(t, http.StatusAccepted)
	post(t, h, valid).AssertStatus(t, http.StatusTooManyRequests)

	if len(mail.sent) != 2 {
		t.Errorf("sent = %d, want 2", len(mail.sent))
	}
}
