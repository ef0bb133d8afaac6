package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/config"
	"github.com/davidjirca/dreamhome/internal/entity"
)

// One subject per event kind, "property." + kind.
const subjectPrefix = "property."

type Publisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

func Connect(cfg *config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			logger.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return nc, nil
}

func NewPublisher(nc *nats.Conn, logger *zap.Logger) *Publisher {
	return &Publisher{nc: nc, logger: logger}
}

func (p *Publisher) PublishPropertyEvent(ctx context.Context, ev *entity.PropertyEvent) error {
	subject := subjectPrefix + string(ev.Kind)

	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("Failed to marshal property event for NATS publishing",
			zap.String("subject", subject),
			zap.String("property_id", ev.PropertyID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to marshal property event for %s: %w", subject, err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish NATS message",
			zap.String("subject", subject),
			zap.String("property_id", ev.PropertyID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}

	p.logger.Debug("Published NATS message",
		zap.String("subject", subject),
		zap.String("property_id", ev.PropertyID),
	)
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			p.logger.Error("Error draining NATS connection", zap.Error(err))
		}
		p.nc.Close()
		p.logger.Info("NATS publisher connection closed")
	}
}
