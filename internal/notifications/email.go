package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const (
	defaultSMTPPort    = 465
	defaultSMTPTimeout = 30 * time.Second
	base64LineLength   = 76
)

// EmailSettings holds SMTP-over-TLS connection details.
type EmailSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Receiver string
}

// Email sends plain-text messages over an implicit TLS SMTP connection.
type Email struct {
	settings EmailSettings
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)
	now      func() time.Time
}

// NewEmail constructs an Email channel.
func NewEmail(settings EmailSettings) *Email {
	if settings.Port <= 0 {
		settings.Port = defaultSMTPPort
	}
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: defaultSMTPTimeout},
		Config:    &tls.Config{ServerName: settings.Host, MinVersion: tls.VersionTLS12},
	}
	return &Email{settings: settings, dial: dialer.DialContext, now: time.Now}
}

// Name implements Channel.
func (e *Email) Name() string { return "email" }

// Send implements Channel.
func (e *Email) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(e.settings.Host, strconv.Itoa(e.settings.Port))
	conn, err := e.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSMTPTimeout)
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, e.settings.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", e.settings.User, e.settings.Password, e.settings.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(e.settings.User); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(e.settings.Receiver); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write(e.buildMessage(msg)); err != nil {
		writer.Close()
		return fmt.Errorf("write smtp body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish smtp body: %w", err)
	}
	return client.Quit()
}

func (e *Email) buildMessage(msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", e.settings.User)
	fmt.Fprintf(&b, "To: %s\r\n", e.settings.Receiver)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.BEncoding.Encode("utf-8", msg.Title))
	fmt.Fprintf(&b, "Date: %s\r\n", e.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(msg.PlainText))
	for len(encoded) > base64LineLength {
		b.WriteString(encoded[:base64LineLength])
		b.WriteString("\r\n")
		encoded = encoded[base64LineLength:]
	}
	if encoded != "" {
		b.WriteString(encoded)
		b.WriteString("\r\n")
	}
	return b.Bytes()
}
