package notifier

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPProvider delivers mail through a plain SMTP relay.
type SMTPProvider struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPProvider(host string, port int, username, password, from string) (*SMTPProvider, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if port <= 0 {
		port = 587
	}
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	return &SMTPProvider{
		host:     host,
		port:     port,
		username: strings.TrimSpace(username),
		password: password,
		from:     from,
	}, nil
}

func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if p.username != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}

	body := strings.Join([]string{
		"From: " + p.from,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		msg.Body,
	}, "\r\n")

	addr := net.JoinHostPort(p.host, fmt.Sprintf("%d", p.port))
	return smtp.SendMail(addr, auth, p.from, []string{msg.To}, []byte(body))
}

// Ping opens and closes a connection to the relay.
func (p *SMTPProvider) Ping(ctx context.Context) error {
	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(p.host, fmt.Sprintf("%d", p.port)))
	if err != nil {
		return err
	}
	return conn.Close()
}
