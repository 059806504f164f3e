package notify

import (
	"context"

	"bladeshop-be/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const (
	defaultSMTPHost = "smtp.gmail.com"
	defaultSMTPPort = 465
	senderName      = "JRZ Pro Black DLC"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// SMTPMailer delivers messages over SMTP. Port 465 uses implicit TLS.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer returns a no-op mailer when credentials are missing so that
// order flows keep working without SMTP.
func NewMailer(cfg SMTPConfig) Mailer {
	if cfg.User == "" || cfg.Password == "" {
		logger.L().Warn("SMTP credentials not configured, email sending disabled")
		return noopMailer{}
	}
	if cfg.Host == "" {
		cfg.Host = defaultSMTPHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultSMTPPort
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.User,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.from, senderName)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	// gomail has no context support; abandon the wait when ctx ends.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, msg Message) error {
	logger.FromCtx(ctx).Debug("email skipped, mailer disabled",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
