package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/davidjirca/dreamhome/internal/config"
	"github.com/davidjirca/dreamhome/internal/entity"
	"github.com/davidjirca/dreamhome/internal/port/notifier"
)

// Directory resolves user ids to email addresses.
type Directory interface {
	EmailFor(ctx context.Context, userID string) (string, error)
}

// TaskSubmitter hands delivery work to a background pool.
type TaskSubmitter interface {
	Submit(task func()) bool
}

// Dispatcher renders alert payloads into emails and sends them off the
// caller's goroutine. Enqueue fails only when the payload cannot be rendered
// or the recipient cannot be resolved; delivery failures are logged.
type Dispatcher struct {
	cfg       config.SMTPConfig
	dialer    *gomail.Dialer
	directory Directory
	pool      TaskSubmitter
	logger    *zap.Logger
}

func NewDispatcher(cfg config.SMTPConfig, directory Directory, pool TaskSubmitter, logger *zap.Logger) (*Dispatcher, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	switch strings.ToLower(cfg.Encryption) {
	case "ssl":
		dialer.SSL = true
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	case "tls", "starttls":
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}

	return &Dispatcher{
		cfg:       cfg,
		dialer:    dialer,
		directory: directory,
		pool:      pool,
		logger:    logger,
	}, nil
}

func (d *Dispatcher) Enqueue(ctx context.Context, kind notifier.AlertKind, userID string, payload interface{}) error {
	to, err := d.directory.EmailFor(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolving recipient for user %s: %w", userID, err)
	}

	subject, body, err := render(kind, payload)
	if err != nil {
		return err
	}

	if !d.pool.Submit(func() { d.send(to, subject, body) }) {
		d.logger.Warn("alert delivery queue full, dropping alert",
			zap.String("kind", string(kind)), zap.String("user_id", userID))
	}
	return nil
}

func (d *Dispatcher) send(to, subject, body string) {
	m := gomail.NewMessage()
	m.SetHeader("From", d.cfg.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := d.dialer.DialAndSend(m); err != nil {
		d.logger.Error("Failed to send alert email",
			zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return
	}
	d.logger.Info("Alert email sent", zap.String("to", to), zap.String("subject", subject))
}

func render(kind notifier.AlertKind, payload interface{}) (subject, body string, err error) {
	switch p := payload.(type) {
	case notifier.NewListingPayload:
		subject = fmt.Sprintf("New listing matches your search %q", p.SearchName)
		body = fmt.Sprintf("%s\n%s\n\n%s", p.Property.Title, propertyLine(p.Property), propertyLink(p.Property))
		return subject, body, nil
	case notifier.PriceDropPayload:
		subject = fmt.Sprintf("Price drop: %s", p.Property.Title)
		body = fmt.Sprintf("The price dropped %.1f%%, from %d to %d.\n\n%s",
			-p.PriceDropPercent, p.OldPrice, p.NewPrice, propertyLink(p.Property))
		return subject, body, nil
	case notifier.DigestPayload:
		return renderDigest(p)
	default:
		return "", "", fmt.Errorf("unknown alert payload type %T for kind %s", payload, kind)
	}
}

func renderDigest(p notifier.DigestPayload) (string, string, error) {
	period := "daily"
	if p.Frequency == entity.FrequencyWeekly {
		period = "weekly"
	}
	subject := fmt.Sprintf("Your %s property digest", period)

	var b strings.Builder
	for _, section := range p.Sections {
		fmt.Fprintf(&b, "%s: %d new listings\n", section.SearchName, section.NewCount)
		for _, prop := range section.Properties {
			fmt.Fprintf(&b, "  - %s (%s)\n", prop.Title, propertyLine(prop))
		}
		b.WriteString("\n")
	}
	if len(p.PriceDrops) > 0 {
		b.WriteString("Price drops on your favorites:\n")
		for _, drop := range p.PriceDrops {
			fmt.Fprintf(&b, "  - %s: %d -> %d (%.1f%%)\n",
				drop.Property.Title, drop.OldPrice, drop.NewPrice, drop.PriceDropPercent)
		}
	}
	return subject, b.String(), nil
}

func propertyLine(p *entity.Property) string {
	parts := []string{fmt.Sprintf("%d", p.Price)}
	if p.City != "" {
		parts = append(parts, p.City)
	}
	if p.TotalArea > 0 {
		parts = append(parts, fmt.Sprintf("%d sqm", p.TotalArea))
	}
	return strings.Join(parts, ", ")
}

func propertyLink(p *entity.Property) string {
	if p.Slug != "" {
		return "/properties/" + p.Slug
	}
	return "/properties/" + p.ID
}
