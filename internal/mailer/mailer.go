package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/alumnet/apiserver/config"
	"go.uber.org/zap"
)

// Mail is a single plain-text message to one recipient.
type Mail struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender delivers mail.
type Sender interface {
	Send(ctx context.Context, m Mail) error
}

// SMTPSender sends mail through an SMTP relay. Without credentials it logs
// the message instead of delivering it.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(cfg config.SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send delivers m. The context bounds the dial.
func (s *SMTPSender) Send(ctx context.Context, m Mail) error {
	if s.cfg.Username == "" || s.cfg.Password == "" || s.cfg.Host == "" {
		s.logger.Warn("smtp not configured, mail not sent",
			zap.String("to", m.To),
			zap.String("subject", m.Subject),
		)
		return nil
	}

	msg := s.compose(m)
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if !s.cfg.UseTLS {
		if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{m.To}, msg); err != nil {
			return fmt.Errorf("send mail to %s: %w", m.To, err)
		}
		return nil
	}

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.cfg.Host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to smtp server %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.cfg.FromEmail); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(m.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	return w.Close()
}

func (s *SMTPSender) compose(m Mail) []byte {
	to := m.To
	if m.ToName != "" {
		to = fmt.Sprintf("%s <%s>", m.ToName, m.To)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(m.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
