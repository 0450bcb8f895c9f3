package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/pkg/messaging"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

type Publisher struct {
	broker  messaging.Broker
	channel string
	metrics *metrics.Metrics
	logger  *zerolog.Logger
	now     func() time.Time
}

func NewPublisher(broker messaging.Broker, channel string, m *metrics.Metrics, logger *zerolog.Logger) *Publisher {
	if broker == nil {
		broker = messaging.NopBroker{}
	}
	if m == nil {
		m = metrics.Nop()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Publisher{
		broker:  broker,
		channel: channel,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Emit stamps the event and publishes it on the configured channel.
func (p *Publisher) Emit(ctx context.Context, evt *Event) error {
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = p.now().UTC()
	}

	if err := p.broker.Publish(ctx, p.channel, evt); err != nil {
		p.metrics.EventsPublished.WithLabelValues(string(evt.Type), "error").Inc()
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	p.metrics.EventsPublished.WithLabelValues(string(evt.Type), "success").Inc()
	p.logger.Debug().Str("event_id", evt.ID.String()).Str("event_type", string(evt.Type)).Msg("event published")
	return nil
}
