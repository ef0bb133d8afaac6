package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/entity"
)

// EventHandler receives every decoded property event.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev *entity.PropertyEvent)
}

// Subscriber feeds property events from NATS into the alert pipeline. It runs
// on the NATS delivery goroutine; handlers are expected to be quick or to
// offload their own work.
type Subscriber struct {
	nc      *nats.Conn
	handler EventHandler
	logger  *zap.Logger
	sub     *nats.Subscription
}

func NewSubscriber(nc *nats.Conn, handler EventHandler, logger *zap.Logger) *Subscriber {
	return &Subscriber{nc: nc, handler: handler, logger: logger}
}

// Start subscribes to every property event subject with a queue group so
// multiple instances share the work instead of duplicating alerts.
func (s *Subscriber) Start(ctx context.Context) error {
	sub, err := s.nc.QueueSubscribe(subjectPrefix+">", "dreamhome-alerts", func(msg *nats.Msg) {
		var ev entity.PropertyEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			s.logger.Error("Failed to decode property event from NATS",
				zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		s.handler.HandleEvent(ctx, &ev)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to property events: %w", err)
	}

	s.sub = sub
	s.logger.Info("Subscribed to property events", zap.String("subject", subjectPrefix+">"))
	return nil
}

func (s *Subscriber) Stop() {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			s.logger.Error("Error unsubscribing from property events", zap.Error(err))
		}
	}
}
