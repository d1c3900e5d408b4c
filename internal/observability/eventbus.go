package observability

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// EventBus implements the domain EventPublisher by logging each event.
type EventBus struct {
	logger *zap.Logger
}

// NewEventBus creates a new event bus.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if e == nil || e.logger == nil {
		return
	}

	// Stable field order keeps log lines diffable.
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(data)+len(contextFields(ctx))+1)
	fields = append(fields, zap.String("event", eventType))
	fields = append(fields, contextFields(ctx)...)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, data[k]))
	}

	e.logger.Info("event published", fields...)
}
