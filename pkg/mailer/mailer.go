// Package mailer delivers request notifications over SMTP with a bounded
// retry contract: transient transport failures are retried up to the
// configured limit with a fixed delay, permanent failures are not.
package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/jaapa/jaapa-api/pkg/config"
)

// Message is one outbound notification.
type Message struct {
	To            string
	Nombre        string
	Numero        string
	TipoSolicitud string
	PDF           []byte
}

type sender interface {
	send(msg Message) error
}

// Mailer sends notification emails.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
	sender sender
}

// New constructs a Mailer from SMTP configuration.
func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	m := &Mailer{cfg: cfg, logger: logger}
	m.sender = &smtpSender{cfg: cfg}
	return m
}

// Send delivers the notification, retrying transient failures up to
// MaxRetries with a fixed delay. Permanent failures return immediately.
func (m *Mailer) Send(msg Message) error {
	var lastErr error
	for attempt := 1; attempt <= m.cfg.MaxRetries; attempt++ {
		lastErr = m.sender.send(msg)
		if lastErr == nil {
			return nil
		}

		m.logger.Warn("email delivery failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", m.cfg.MaxRetries),
			zap.String("numero", msg.Numero),
			zap.Error(lastErr))

		if !IsRetryable(lastErr) {
			return fmt.Errorf("permanent email failure: %w", lastErr)
		}
		if attempt < m.cfg.MaxRetries {
			time.Sleep(m.cfg.RetryDelay)
		}
	}
	return fmt.Errorf("email failed after %d attempts: %w", m.cfg.MaxRetries, lastErr)
}

// IsRetryable classifies transport errors: DNS, connect, timeout and TLS
// peer resets are transient; authentication and addressing problems are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{"connection reset", "connection refused", "broken pipe", "i/o timeout"} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

type smtpSender struct {
	cfg config.SMTPConfig
}

func (s *smtpSender) send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", fmt.Sprintf("JAAPA - Solicitud %s registrada", msg.Numero))
	m.SetBody("text/plain", fmt.Sprintf(
		"Estimado/a %s,\n\nSu solicitud de servicio %s ha sido registrada con el número %s.\nAdjuntamos el comprobante en formato PDF.\n\nJAAPA",
		msg.Nombre, msg.TipoSolicitud, msg.Numero))

	if len(msg.PDF) > 0 {
		m.Attach(
			fmt.Sprintf("solicitud_%s.pdf", msg.Numero),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(msg.PDF)
				return err
			}),
		)
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	return d.DialAndSend(m)
}
