package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EventSink = (*RedisSink)(nil)

// Channel is the pub/sub channel sync events are published on.
const Channel = "catalog:events"

// Envelope is the published wire form of one event.
type Envelope struct {
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// RedisSink publishes sync events to a Redis pub/sub channel so other
// processes (dashboards, notifiers) can follow runs live. Delivery is
// best-effort: publish failures are logged and dropped, never allowed
// to abort a sync.
type RedisSink struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisSink creates a Redis-backed event sink.
func NewRedisSink(client *redis.Client, logger *slog.Logger) *RedisSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSink{client: client, logger: logger}
}

func (s *RedisSink) Emit(ctx context.Context, event string, payload map[string]interface{}) {
	data, err := json.Marshal(Envelope{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to marshal event", "event", event, "error", err)
		return
	}
	if err := s.client.Publish(ctx, Channel, data).Err(); err != nil {
		s.logger.Warn("failed to publish event", "event", event, "error", err)
	}
}

// Fanout emits every event to each of the given sinks, in order.
type Fanout []driven.EventSink

// Verify interface compliance
var _ driven.EventSink = (Fanout)(nil)

func (f Fanout) Emit(ctx context.Context, event string, payload map[string]interface{}) {
	for _, sink := range f {
		sink.Emit(ctx, event, payload)
	}
}
