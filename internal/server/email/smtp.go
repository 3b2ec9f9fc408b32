package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/silvercar/backend/internal/common"
)

// SMTPSender sends mail through a single SMTP relay using STARTTLS and
// PLAIN auth (the Gmail app-password setup of the original deployment).
type SMTPSender struct {
	host     string
	port     int
	from     string
	password string
	timeout  time.Duration
}

func NewSMTPSender(host string, port int, from, password string, timeout time.Duration) *SMTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPSender{host: host, port: port, from: from, password: password, timeout: timeout}
}

// Send connects, authenticates and submits one message. The dial carries a
// timeout so a dead relay fails the call instead of hanging the request.
// All failures come back wrapped in common.ErrEmailDelivery.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dialing %s: %v", common.ErrEmailDelivery, addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: handshake: %v", common.ErrEmailDelivery, err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
		return fmt.Errorf("%w: starttls: %v", common.ErrEmailDelivery, err)
	}

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("%w: auth: %v", common.ErrEmailDelivery, err)
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("%w: mail from: %v", common.ErrEmailDelivery, err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("%w: rcpt to: %v", common.ErrEmailDelivery, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: data: %v", common.ErrEmailDelivery, err)
	}
	if _, err := w.Write(buildMessage(s.from, to, subject, body)); err != nil {
		return fmt.Errorf("%w: writing body: %v", common.ErrEmailDelivery, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: closing body: %v", common.ErrEmailDelivery, err)
	}

	return client.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
