// Package mailer sends transactional email over SMTP. It is only invoked
// from the queue consumer, never directly from a request handler, so a
// slow relay can delay a notification but not a response.
package mailer

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/avisions/backoffice/internal/config"
)

// Mailer holds a validated SMTP configuration.
type Mailer struct {
	host     string
	port     int
	user     string
	pass     string
	from     string
	fromName string
	replyTo  string
}

// FromConfig returns a Mailer, or nil when the SMTP settings are
// incomplete. A nil Mailer means outbound mail is disabled; callers treat
// that as "nothing to send", not an error.
func FromConfig(cfg config.Config) *Mailer {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" || cfg.MailFrom == "" {
		return nil
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		pass:     cfg.SMTPPass,
		from:     cfg.MailFrom,
		fromName: cfg.MailName,
		replyTo:  cfg.ReplyTo,
	}
}

// Send delivers one HTML message. An empty replyTo falls back to the
// configured Reply-To. Port 465 speaks TLS from the first byte; anything
// else (587 in practice) upgrades with STARTTLS before authenticating.
func (m *Mailer) Send(to, subject, htmlBody, replyTo string) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)

	var (
		client *smtp.Client
		err    error
	)
	if m.port == 465 {
		conn, dialErr := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12})
		if dialErr != nil {
			return fmt.Errorf("smtps dial: %w", dialErr)
		}
		client, err = smtp.NewClient(conn, m.host)
	} else {
		client, err = smtp.Dial(addr)
		if err == nil {
			err = client.StartTLS(&tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12})
		}
	}
	if err != nil {
		return fmt.Errorf("smtp connect: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(m.message(to, subject, htmlBody, replyTo)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

func (m *Mailer) message(to, subject, htmlBody, replyTo string) []byte {
	from := m.from
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.fromName), m.from)
	}
	if replyTo == "" {
		replyTo = m.replyTo
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
