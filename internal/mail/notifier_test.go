package mail

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-sasl"

	"github.com/campus-union/voicebox/internal/config"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	body string
}

func newCapturingNotifier(cfg *config.SMTPConfig) (*Notifier, chan capturedMail) {
	captured := make(chan capturedMail, 1)
	n := NewNotifier(cfg)
	n.send = func(addr string, auth sasl.Client, from string, to []string, msg *strings.Reader) error {
		raw, _ := io.ReadAll(msg)
		captured <- capturedMail{addr: addr, from: from, to: to, body: string(raw)}
		return nil
	}
	return n, captured
}

func TestNotifierDisabledWithoutConfig(t *testing.T) {
	n := NewNotifier(&config.SMTPConfig{})
	if n.Enabled() {
		t.Fatalf("notifier should be disabled without smtp settings")
	}
	n.NotifyNewMessage(1, "hello")
}

func TestNotifyNewMessageSendsPreview(t *testing.T) {
	n, captured := newCapturingNotifier(&config.SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "user",
		Password:  "pass",
		FromEmail: "noreply@example.com",
		NotifyTo:  "admin@example.com",
	})
	if !n.Enabled() {
		t.Fatalf("notifier should be enabled")
	}

	n.NotifyNewMessage(42, "a short message")

	select {
	case got := <-captured:
		if got.addr != "smtp.example.com:587" {
			t.Fatalf("unexpected addr %q", got.addr)
		}
		if got.from != "noreply@example.com" {
			t.Fatalf("unexpected from %q", got.from)
		}
		if len(got.to) != 1 || got.to[0] != "admin@example.com" {
			t.Fatalf("unexpected recipients %v", got.to)
		}
		if !strings.Contains(got.body, "message #42") {
			t.Fatalf("body should mention the message id: %q", got.body)
		}
		if !strings.Contains(got.body, "a short message") {
			t.Fatalf("body should carry the preview: %q", got.body)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the notification")
	}
}

func TestNotifyNewMessageTruncatesPreview(t *testing.T) {
	n, captured := newCapturingNotifier(&config.SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		FromEmail: "noreply@example.com",
		NotifyTo:  "admin@example.com",
	})

	n.NotifyNewMessage(1, strings.Repeat("x", 500))

	select {
	case got := <-captured:
		if strings.Contains(got.body, strings.Repeat("x", 201)) {
			t.Fatalf("preview should be capped at 200 characters")
		}
		if !strings.Contains(got.body, strings.Repeat("x", 200)) {
			t.Fatalf("preview should keep the first 200 characters")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the notification")
	}
}
