package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"airbnb-monitor/config"
	"airbnb-monitor/utils"
)

// Mailer hands digests to the external SMTP delivery sink. Delivery failure
// is reported to the caller and logged; it never rolls back the seen-set
// update, so a failure costs at most one missed digest.
type Mailer struct {
	cfg    *config.Config
	logger *utils.Logger
}

// NewMailer creates a Mailer with the given configuration.
func NewMailer(cfg *config.Config, logger *utils.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send delivers the digest over SMTP with STARTTLS.
func (m *Mailer) Send(d *Digest) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
		return fmt.Errorf("mailer: starttls: %w", err)
	}

	auth := smtp.PlainAuth("", m.cfg.SenderEmail, m.cfg.SenderPassword, m.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mailer: auth: %w", err)
	}

	if err := client.Mail(m.cfg.SenderEmail); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	if err := client.Rcpt(m.cfg.RecipientEmail); err != nil {
		return fmt.Errorf("mailer: rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := w.Write([]byte(m.buildMessage(d))); err != nil {
		_ = w.Close()
		return fmt.Errorf("mailer: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: close body: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("mailer: quit: %w", err)
	}

	m.logger.Info("[mailer] Digest sent to %s: %s", m.cfg.RecipientEmail, d.Subject)
	return nil
}

func (m *Mailer) buildMessage(d *Digest) string {
	var b strings.Builder
	b.WriteString("From: " + m.cfg.SenderEmail + "\r\n")
	b.WriteString("To: " + m.cfg.RecipientEmail + "\r\n")
	b.WriteString("Subject: " + d.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(d.HTMLBody)
	b.WriteString("\r\n")
	return b.String()
}
