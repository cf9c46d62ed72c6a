package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// MockAuditPublisher records audit events instead of sending them to a
// broker.
type MockAuditPublisher struct {
	mu sync.RWMutex

	PublishedEvents []ports.AuditEvent

	// Error injection for testing error scenarios
	PublishError error

	PublishCallCount int
}

var _ ports.AuditPublisher = (*MockAuditPublisher)(nil)

func NewMockAuditPublisher() *MockAuditPublisher {
	return &MockAuditPublisher{}
}

func (m *MockAuditPublisher) PublishAudit(ctx context.Context, evt ports.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// Events returns a copy of every recorded event.
func (m *MockAuditPublisher) Events() []ports.AuditEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.AuditEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}
