package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// MockSessionStore is an in-memory ports.SessionStore with call tracking
// and error injection.
type MockSessionStore struct {
	mu      sync.Mutex
	session domain.Session

	GetCalls   int
	SetCalls   []domain.Session
	ClearCalls int

	GetError   error
	SetError   error
	ClearError error
}

var _ ports.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

// Seed installs a session without recording a Set call.
func (m *MockSessionStore) Seed(session domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
}

func (m *MockSessionStore) Set(ctx context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, session)
	if m.SetError != nil {
		return m.SetError
	}
	if err := session.Validate(); err != nil {
		return err
	}
	m.session = session
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.GetError != nil {
		return domain.Session{}, m.GetError
	}
	return m.session, nil
}

func (m *MockSessionStore) Clear(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ClearCalls++
	if m.ClearError != nil {
		return false, m.ClearError
	}
	had := m.session.Authenticated()
	m.session = domain.Session{}
	return had, nil
}

// Current returns the stored session (for test assertions).
func (m *MockSessionStore) Current() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}
