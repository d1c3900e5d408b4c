package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/ideaforge/internal/observability"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should log event with data and context fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		bus := observability.NewEventBus(zap.New(core))

		ctx := observability.WithRequestID(context.Background(), "req-1")
		bus.Publish(ctx, "cache.evicted", map[string]interface{}{
			"cache_key": "technical/short/heuristic/v1",
			"hit_count": 3,
		})

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		fields := entry.ContextMap()
		require.Equal(t, "event published", entry.Message)
		require.Equal(t, "cache.evicted", fields["event"])
		require.Equal(t, "req-1", fields["request_id"])
		require.Equal(t, "technical/short/heuristic/v1", fields["cache_key"])
	})

	t.Run("should be a no-op without a logger", func(t *testing.T) {
		var bus *observability.EventBus
		require.NotPanics(t, func() {
			bus.Publish(context.Background(), "cache.cleared", nil)
		})
	})
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	observability.SetLogger(zap.New(core))
	t.Cleanup(func() { observability.SetLogger(zap.NewNop()) })

	ctx := context.Background()
	ctx = observability.WithTraceID(ctx, "trace-1")
	ctx = observability.WithProvider(ctx, "heuristic")
	ctx = observability.WithIdeaType(ctx, "technical")

	observability.FromContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "trace-1", fields["trace_id"])
	require.Equal(t, "heuristic", fields["provider"])
	require.Equal(t, "technical", fields["idea_type"])
	require.NotContains(t, fields, "request_id")
}

func TestGenerateIDs(t *testing.T) {
	require.Len(t, observability.GenerateTraceID(), 32)
	require.Len(t, observability.GenerateSpanID(), 16)
	require.NotEqual(t, observability.GenerateIdeaID(), observability.GenerateIdeaID())
}
