package mailer

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestMailer(t *testing.T) (*Mailer, *[]byte) {
	t.Helper()
	m := New(Config{Host: "smtp.example.com", Port: 587, From: "site@example.com", FromName: "Folio"}, zap.NewNop())
	var sent []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if addr != "smtp.example.com:587" {
			t.Errorf("addr = %q", addr)
		}
		if from != "site@example.com" {
			t.Errorf("envelope from = %q", from)
		}
		sent = msg
		return nil
	}
	return m, &sent
}

func TestSend_PlainText(t *testing.T) {
	m, sent := newTestMailer(t)
	err := m.Send(Email{To: "owner@example.com", ReplyTo: "visitor@example.com", Subject: "Hello", TextBody: "body"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	msg, err := mail.ReadMessage(strings.NewReader(string(*sent)))
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	checks := map[string]string{
		"From":         `"Folio" <site@example.com>`,
		"To":           "owner@example.com",
		"Reply-To":     "visitor@example.com",
		"Subject":      "Hello",
		"Content-Type": "text/plain; charset=UTF-8",
	}
	for k, want := range checks {
		if got := msg.Header.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	body, _ := io.ReadAll(msg.Body)
	if string(body) != "body" {
		t.Errorf("body = %q", body)
	}
}

func TestBuild_Alternative(t *testing.T) {
	m, _ := newTestMailer(t)
	raw, err := m.build(Email{To: "a@example.com", Subject: "s", TextBody: "text", HTMLBody: "<p>html</p>"}, "BOUND")
	if err != nil {
		t.Fatal(err)
	}
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatal(err)
	}
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/alternative" || params["boundary"] != "BOUND" {
		t.Fatalf("Content-Type = %q", msg.Header.Get("Content-Type"))
	}

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var got []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(p)
		got = append(got, p.Header.Get("Content-Type")+"|"+string(b))
	}
	want := []string{"text/plain; charset=UTF-8|text", "text/html; charset=UTF-8|<p>html</p>"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("parts = %q, want %q", got, want)
	}
}

func TestBuild_EncodesNonASCIISubject(t *testing.T) {
	m, _ := newTestMailer(t)
	raw, err := m.build(Email{To: "a@example.com", Subject: "Portfolio message from José", TextBody: "x"}, "")
	if err != nil {
		t.Fatal(err)
	}
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	if err != nil || decoded != "Portfolio message from José" {
		t.Errorf("Subject decodes to %q (%v)", decoded, err)
	}
}

func TestBuild_StripsHeaderInjection(t *testing.T) {
	m, _ := newTestMailer(t)
	raw, err := m.build(Email{
		To:      "owner@example.com",
		ReplyTo: "x@example.com\r\nBcc: victim@example.com",
		Subject: "hi\nBcc: other@example.com",
	}, "B")
	if err != nil {
		t.Fatal(err)
	}
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if bcc := msg.Header.Get("Bcc"); bcc != "" {
		t.Errorf("injected Bcc header = %q", bcc)
	}
}

func TestSend_NotConfigured(t *testing.T) {
	m := New(Config{}, nil)
	if err := m.Send(Email{To: "a@example.com"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Send() error = %v, want ErrNotConfigured", err)
	}
}

func TestSend_TransportError(t *testing.T) {
	m, _ := newTestMailer(t)
	boom := errors.New("connection refused")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }
	if err := m.Send(Email{To: "a@example.com"}); !errors.Is(err, boom) {
		t.Errorf("Send() error = %v, want wrapped transport error", err)
	}
}
