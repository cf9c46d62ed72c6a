package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// MockConfirmer answers every prompt with Answer and records the prompts.
type MockConfirmer struct {
	mu      sync.Mutex
	Answer  bool
	Prompts []string
}

var _ ports.Confirmer = (*MockConfirmer)(nil)

func (m *MockConfirmer) Confirm(ctx context.Context, prompt string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	return m.Answer
}

// MockNotifier records notices.
type MockNotifier struct {
	mu       sync.Mutex
	Messages []string
}

var _ ports.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, message)
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}
