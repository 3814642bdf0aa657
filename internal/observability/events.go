package observability

import (
	"context"

	"github.com/spec-kit/compensation-agent/internal/events"
)

// RegisterEventMetrics feeds bus events into the counters.
func RegisterEventMetrics(dispatcher events.Dispatcher, metrics *Metrics) {
	if dispatcher == nil || metrics == nil {
		return
	}
	dispatcher.Subscribe(events.EventMessageReceived, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.MessageReceivedPayload); ok {
			metrics.RecordIntent(payload.Intent, string(payload.Language))
		}
		return nil
	})
}
