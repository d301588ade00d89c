package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPConfig describes the outbound mail transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends messages over SMTP with STARTTLS and PLAIN auth.
type SMTPSender struct {
	cfg SMTPConfig
	log *zap.Logger
}

// NewSMTPSender creates an SMTPSender. From defaults to Username.
func NewSMTPSender(cfg SMTPConfig, log *zap.Logger) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, log: log}
}

// Enabled reports whether credentials are configured.
func (s *SMTPSender) Enabled() bool {
	return s.cfg.Username != "" && s.cfg.Password != ""
}

// Send delivers msg. Without credentials it logs and returns nil.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		s.log.Warn("email credentials not set, skipping email", zap.String("to", msg.To))
		return nil
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	if msg.Text != "" {
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	} else {
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
