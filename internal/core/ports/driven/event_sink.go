package driven

import "context"

// Event names emitted by the sync core.
const (
	EventAttemptStarted   = "attempt-started"
	EventAttemptSucceeded = "attempt-succeeded"
	EventError            = "error"
	EventCriticalError    = "critical-error"
	EventStatusChanged    = "status-changed"
)

// EventSink receives progress and telemetry events. Implementations may
// forward to logs, pub/sub channels, or push transports; delivery is
// best-effort and failures never abort a sync.
type EventSink interface {
	Emit(ctx context.Context, event string, payload map[string]interface{})
}
