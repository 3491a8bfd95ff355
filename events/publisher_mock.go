package events

import (
	"context"
	"sync"
)

// MockPublisher records published events for tests
type MockPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
	closed bool
}

// NewMockPublisher creates a new mock publisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// FailWith makes every subsequent Publish return err
func (m *MockPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockPublisher) Publish(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Events returns a copy of everything published so far
func (m *MockPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the published event types in order
func (m *MockPublisher) Types() []string {
	var types []string
	for _, e := range m.Events() {
		types = append(types, e.Type)
	}
	return types
}

// OfType returns the published events with the given type
func (m *MockPublisher) OfType(eventType string) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears recorded events and any configured failure
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.err = nil
}
