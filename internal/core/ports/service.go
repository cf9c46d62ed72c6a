package ports

import (
	"context"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	Logout(ctx context.Context) error
}

// RegistrationService creates accounts without a session. The returned
// message is meant for display.
type RegistrationService interface {
	Register(ctx context.Context, username, password string) (string, error)
}

// Confirmer asks the operator to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Notifier surfaces one-off notices to the user.
type Notifier interface {
	Notify(message string)
}
