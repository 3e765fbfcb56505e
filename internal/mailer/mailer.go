// Package mailer sends outbound email over SMTP.  It is the delivery
// end of the email queue: the HTTP layer never talks to SMTP directly,
// it only enqueues messages.
package mailer

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/mail"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// Mailer holds SMTP connection settings loaded once at startup.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

// New builds a Mailer from environment variables.  SMTP_HOST, SMTP_PORT,
// SMTP_USER, SMTP_PASS and SMTP_FROM are supported; when credentials are
// missing the mailer still constructs but Send logs and reports failure,
// so local development works without a mail account.
func New() *Mailer {
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}
	return &Mailer{
		host:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		port:     port,
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASS"),
		from:     getEnvOrDefault("SMTP_FROM", "Paper Portal <no-reply@example.com>"),
		timeout:  10 * time.Second,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// IsConfigured checks if SMTP is properly configured.
func (m *Mailer) IsConfigured() bool {
	return m.username != "" && m.password != ""
}

// Send delivers a single message.  Either html or text may be empty; the
// non-empty body is used.  Returns an error when SMTP is unconfigured or
// the server rejects the message.  The whole SMTP session is bounded by
// the mailer's timeout so an unresponsive server cannot stall the queue
// consumer; that bound is why Send never uses smtp.SendMail, which dials
// without a deadline.
func (m *Mailer) Send(to, subject, html, text string) error {
	if !m.IsConfigured() {
		log.Printf("mailer: SMTP not configured, dropping message to %s (%q)", to, subject)
		return fmt.Errorf("smtp not configured")
	}

	body := html
	contentType := "text/html; charset=UTF-8"
	if body == "" {
		body = text
		contentType = "text/plain; charset=UTF-8"
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: " + contentType + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	// The envelope sender must be a bare address even when the From
	// header carries a display name.
	envFrom := m.from
	if a, err := mail.ParseAddress(m.from); err == nil {
		envFrom = a.Address
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	conn, err := net.DialTimeout("tcp", addr, m.timeout)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(m.timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("set smtp deadline: %w", err)
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(envFrom); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return c.Quit()
}

// OtpSubject and OtpBody build the verification message for a code.
func OtpSubject() string { return "Your Paper Portal verification code" }

func OtpBody(code string, ttl time.Duration) (html, text string) {
	mins := int(ttl.Minutes())
	text = fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, mins)
	html = fmt.Sprintf(`<html><body>
<p>Your verification code is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p>
<p>It expires in %d minutes. If you did not request this code, ignore this email.</p>
</body></html>`, code, mins)
	return html, text
}
