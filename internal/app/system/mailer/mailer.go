// Package mailer delivers contact-form messages to the site owner over SMTP.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned by Send when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: smtp host not configured")

// Sender delivers one message. Handlers depend on Sender so tests can
// capture what would have gone out.
type Sender interface {
	Send(email Email) error
}

// Config is the SMTP relay and envelope sender.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Email is a message to one recipient. When HTMLBody is set the message is
// multipart/alternative with TextBody as the plain part.
type Email struct {
	To       string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends Email through an SMTP relay.
type Mailer struct {
	cfg  Config
	log  *zap.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New returns a Mailer for cfg. A nil logger discards output.
func New(cfg Config, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

// Configured reports whether an SMTP host was provided.
func (m *Mailer) Configured() bool { return m.cfg.Host != "" }

// FromName returns the sender display name.
func (m *Mailer) FromName() string { return m.cfg.FromName }

// Send delivers email. It returns ErrNotConfigured without a relay.
func (m *Mailer) Send(email Email) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	msg, err := m.build(email, "")
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" && m.cfg.Pass != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{oneLine(email.To)}, msg); err != nil {
		m.log.Error("send email", zap.String("subject", email.Subject), zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}
	m.log.Info("email sent", zap.String("subject", email.Subject))
	return nil
}

// build renders the message. Every header value is reduced to one line and
// non-ASCII text is RFC 2047 encoded, so form input cannot add headers.
// An empty boundary lets multipart pick a random one.
func (m *Mailer) build(email Email, boundary string) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	from := (&mail.Address{Name: oneLine(m.cfg.FromName), Address: m.cfg.From}).String()
	header("From", from)
	header("To", oneLine(email.To))
	if email.ReplyTo != "" {
		header("Reply-To", oneLine(email.ReplyTo))
	}
	header("Subject", mime.QEncoding.Encode("utf-8", oneLine(email.Subject)))
	header("MIME-Version", "1.0")

	if email.HTMLBody == "" {
		header("Content-Type", "text/plain; charset=UTF-8")
		buf.WriteString("\r\n")
		buf.WriteString(email.TextBody)
		return buf.Bytes(), nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if boundary != "" {
		if err := mw.SetBoundary(boundary); err != nil {
			return nil, err
		}
	}
	header("Content-Type", mime.FormatMediaType("multipart/alternative", map[string]string{"boundary": mw.Boundary()}))
	buf.WriteString("\r\n")

	for _, part := range []struct{ ctype, text string }{
		{"text/plain; charset=UTF-8", email.TextBody},
		{"text/html; charset=UTF-8", email.HTMLBody},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.ctype}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.text)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

func oneLine(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, s)
}
