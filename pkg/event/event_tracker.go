package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKey = "eventCtx"

type EventTrackerMiddleware struct {
	publisher *Publisher
}

func NewEventTrackerMiddleware(publisher *Publisher) *EventTrackerMiddleware {
	return &EventTrackerMiddleware{publisher: publisher}
}

// TrackEvent publishes "<resource>.<action>" once the handler has filled in
// the event context. Publishing failures are logged, never surfaced.
func (m *EventTrackerMiddleware) TrackEvent(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventCtx := &EventContext{
			Resource:  resource,
			Operation: action,
		}
		c.Set(contextKey, eventCtx)

		c.Next()

		if eventCtx.Data == nil {
			return
		}

		evt := &Event{
			Type:       EventType(fmt.Sprintf("%s.%s", strings.ToLower(resource), strings.ToLower(action))),
			Resource:   resource,
			Payload:    eventCtx.Data,
			Additional: eventCtx.Additional,
			RequestID:  c.GetString("request_id"),
		}
		// The response is already written; do not tie publishing to the client.
		ctx := context.WithoutCancel(c.Request.Context())
		if err := m.publisher.Emit(ctx, evt); err != nil {
			m.publisher.logger.Error().Err(err).Str("event_type", string(evt.Type)).Msg("failed to emit event")
		}
	}
}

// FromContext returns the event context set by TrackEvent, if any.
func FromContext(c *gin.Context) (*EventContext, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	eventCtx, ok := v.(*EventContext)
	return eventCtx, ok
}
