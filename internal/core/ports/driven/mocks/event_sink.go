package mocks

import (
	"context"
	"sync"
)

// RecordedEvent is one event captured by MockEventSink.
type RecordedEvent struct {
	Name    string
	Payload map[string]interface{}
}

// MockEventSink records emitted events for assertions.
type MockEventSink struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func NewMockEventSink() *MockEventSink {
	return &MockEventSink{}
}

func (m *MockEventSink) Emit(ctx context.Context, event string, payload map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, RecordedEvent{Name: event, Payload: payload})
}

// Events returns all recorded events in emission order.
func (m *MockEventSink) Events() []RecordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// CountByName returns how many events with the given name were emitted.
func (m *MockEventSink) CountByName(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.Name == name {
			n++
		}
	}
	return n
}
