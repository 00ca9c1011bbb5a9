// Package mail sends admin notification emails over SMTP.
package mail

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	log "github.com/sirupsen/logrus"

	"github.com/campus-union/voicebox/internal/config"
)

const previewLength = 200

// Notifier sends new-message notifications to the configured admin address.
// A zero-configuration notifier silently drops every notification.
type Notifier struct {
	cfg *config.SMTPConfig

	send func(addr string, auth sasl.Client, from string, to []string, msg *strings.Reader) error
}

// NewNotifier creates a notifier from the SMTP configuration. cfg may be
// incomplete, in which case notifications are skipped.
func NewNotifier(cfg *config.SMTPConfig) *Notifier {
	return &Notifier{
		cfg: cfg,
		send: func(addr string, auth sasl.Client, from string, to []string, msg *strings.Reader) error {
			return smtp.SendMail(addr, auth, from, to, msg)
		},
	}
}

// Enabled reports whether the notifier has enough configuration to send.
func (n *Notifier) Enabled() bool {
	return n != nil && n.cfg != nil &&
		strings.TrimSpace(n.cfg.Host) != "" &&
		strings.TrimSpace(n.cfg.FromEmail) != "" &&
		strings.TrimSpace(n.cfg.NotifyTo) != ""
}

// NotifyNewMessage sends a notification about a freshly submitted message.
// The body carries a preview of at most 200 characters. Sending happens in a
// background goroutine so the submit path never waits on SMTP.
func (n *Notifier) NotifyNewMessage(messageID uint64, content string) {
	if !n.Enabled() {
		return
	}
	preview := []rune(content)
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	go func() {
		if errSend := n.deliver(messageID, string(preview)); errSend != nil {
			log.WithError(errSend).Warn("failed to send new message notification")
		}
	}()
}

func (n *Notifier) deliver(messageID uint64, preview string) error {
	subject := fmt.Sprintf("New anonymous message #%d", messageID)
	body := fmt.Sprintf("A new anonymous message was submitted.\n\nPreview:\n%s\n", preview)

	message := "From: " + n.cfg.FromEmail + "\r\n" +
		"To: " + n.cfg.NotifyTo + "\r\n" +
		"Subject: " + subject + "\r\n\r\n" +
		body

	auth := sasl.NewLoginClient(n.cfg.Username, n.cfg.Password)
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	return n.send(addr, auth, n.cfg.FromEmail, []string{n.cfg.NotifyTo}, strings.NewReader(message))
}
