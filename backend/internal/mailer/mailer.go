// Package mailer envia a cópia por e-mail das denúncias entregues.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
)

const defaultTimeout = 20 * time.Second

// Mailer entrega mensagens em texto simples por um transporte SMTP
// configurado explicitamente.
type Mailer struct {
	cfg     config.SMTPConfig
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	m := &Mailer{cfg: cfg, timeout: defaultTimeout, logger: logger.Named("mailer"), now: time.Now}
	if !cfg.TLSVerify {
		m.logger.Warn("Verificação do certificado TLS do SMTP desativada",
			zap.String("host", cfg.Host))
	}
	return m
}

func (m *Mailer) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         m.cfg.Host,
		InsecureSkipVerify: !m.cfg.TLSVerify, //nolint:gosec // operator configured
		MinVersion:         tls.VersionTLS12,
	}
}

// Send entrega subject e body a todos os destinatários configurados. Com
// Secure a conexão já começa em TLS; senão usa STARTTLS quando o servidor
// oferece.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	if len(m.cfg.To) == 0 {
		return errors.New("smtp: no recipients")
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	conn, err := m.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if !m.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(m.tlsConfig()); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}
	if m.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	from := m.from()
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range m.cfg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(from, m.cfg.To, subject, body, m.now())); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

func (m *Mailer) dial(ctx context.Context, addr string) (net.Conn, error) {
	nd := &net.Dialer{}
	if m.cfg.Secure {
		td := &tls.Dialer{NetDialer: nd, Config: m.tlsConfig()}
		return td.DialContext(ctx, "tcp", addr)
	}
	return nd.DialContext(ctx, "tcp", addr)
}

func (m *Mailer) from() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.Username
}

func buildMessage(from string, to []string, subject, body string, date time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", from)
	header("To", strings.Join(to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	b.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&b)
	_, _ = qp.Write([]byte(strings.ReplaceAll(body, "\n", "\r\n")))
	_ = qp.Close()
	return b.Bytes()
}
