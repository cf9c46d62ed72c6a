package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// FileStore keeps the session in an owner-only file, by default under the
// user's runtime directory so it does not outlive the login session.
// Clear removes the file.
type FileStore struct {
	path string
}

var _ ports.SessionStore = (*FileStore)(nil)

// fileSession uses the canonical session keys.
type fileSession struct {
	Token        string `json:"token"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id"`
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath()
	}
	return &FileStore{path: path}
}

// DefaultFilePath returns $XDG_RUNTIME_DIR/evalctl/session.json, falling
// back to a per-user directory under the system temp dir.
func DefaultFilePath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join(os.TempDir(), "evalctl-"+strconv.Itoa(os.Getuid()))
		return filepath.Join(runtimeDir, "session.json")
	}
	return filepath.Join(runtimeDir, "evalctl", "session.json")
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Set(ctx context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(fileSession{
		Token:        session.Token,
		Role:         string(session.Role),
		DepartmentID: session.DepartmentID,
	})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context) (domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("reading session file %s: %w", s.path, err)
	}

	var stored fileSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt file is no session at all.
		_ = os.Remove(s.path)
		return domain.Session{}, nil
	}
	session := domain.Session{
		Token:        stored.Token,
		Role:         domain.ParseRole(stored.Role),
		DepartmentID: stored.DepartmentID,
	}
	if session.Validate() != nil {
		_ = os.Remove(s.path)
		return domain.Session{}, nil
	}
	return session, nil
}

func (s *FileStore) Clear(ctx context.Context) (bool, error) {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing session file %s: %w", s.path, err)
	}
	return true, nil
}
