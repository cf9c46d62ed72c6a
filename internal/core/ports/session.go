package ports

import (
	"context"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
)

// SessionStore owns the client's session. Get returns an empty session
// when nobody is logged in. Clear wipes every session key and reports
// whether a session was present.
type SessionStore interface {
	Set(ctx context.Context, session domain.Session) error
	Get(ctx context.Context) (domain.Session, error)
	Clear(ctx context.Context) (bool, error)
}
