package session

import (
	"context"
	"sync"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// MemoryStore keeps the session for the lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	session domain.Session
}

var _ ports.SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(ctx context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = copySession(session)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.session), nil
}

func (s *MemoryStore) Clear(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.session.Authenticated()
	s.session = domain.Session{}
	return had, nil
}

func copySession(session domain.Session) domain.Session {
	if session.DepartmentID != nil {
		id := *session.DepartmentID
		session.DepartmentID = &id
	}
	return session
}
