package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-dashboard/pkg/event"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
	"github.com/jwalitptl/clinic-dashboard/pkg/messaging"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

// EventHandler handles one decoded dashboard event.
type EventHandler func(ctx context.Context, evt event.Event) error

type EventConsumer struct {
	broker  messaging.Broker
	channel string
	handle  EventHandler
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewEventConsumer(
	broker messaging.Broker,
	channel string,
	handle EventHandler,
	log *logger.Logger,
	m *metrics.Metrics,
) *EventConsumer {
	if channel == "" {
		panic("channel must not be empty")
	}
	if handle == nil {
		panic("handler must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &EventConsumer{
		broker:  broker,
		channel: channel,
		handle:  handle,
		logger:  log.WithFields(map[string]interface{}{"component": "event_consumer", "channel": channel}),
		metrics: m,
		now:     time.Now,
	}
}

// Start consumes until ctx is done or the subscription ends. Malformed
// messages and handler failures are logged and skipped.
func (c *EventConsumer) Start(ctx context.Context) error {
	messages, err := c.broker.Subscribe(ctx, c.channel)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.channel, err)
	}

	c.logger.Info("Starting event consumer", "channel", c.channel)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Shutting down event consumer")
			return nil
		case raw, ok := <-messages:
			if !ok {
				c.logger.Warn("Subscription closed", "channel", c.channel)
				return nil
			}
			c.process(ctx, raw)
		}
	}
}

func (c *EventConsumer) process(ctx context.Context, raw []byte) {
	var evt event.Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		c.metrics.EventsConsumed.WithLabelValues("unknown", "malformed").Inc()
		c.logger.Error(err, "Failed to decode event")
		return
	}

	if err := c.handle(ctx, evt); err != nil {
		c.metrics.EventsConsumed.WithLabelValues(string(evt.Type), "failed").Inc()
		c.logger.Error(err, "Failed to handle event", "event_id", evt.ID.String(), "event_type", string(evt.Type))
		return
	}

	c.metrics.EventsConsumed.WithLabelValues(string(evt.Type), "ok").Inc()
	if !evt.OccurredAt.IsZero() {
		c.metrics.EventLatency.WithLabelValues(string(evt.Type)).Observe(c.now().Sub(evt.OccurredAt).Seconds())
	}
}
