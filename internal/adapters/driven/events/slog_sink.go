package events

import (
	"context"
	"log/slog"

	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EventSink = (*SlogSink)(nil)

// SlogSink writes sync events to the structured log. This is the
// default sink when no push transport is configured.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates an event sink backed by the given logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Emit(ctx context.Context, event string, payload map[string]interface{}) {
	attrs := make([]any, 0, len(payload)*2+2)
	attrs = append(attrs, "event", event)
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	switch event {
	case driven.EventError:
		s.logger.WarnContext(ctx, "sync event", attrs...)
	case driven.EventCriticalError:
		s.logger.ErrorContext(ctx, "sync event", attrs...)
	default:
		s.logger.InfoContext(ctx, "sync event", attrs...)
	}
}
