package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgCannotConnect      = "Cannot connect to server"
)

// LoginError is a failed login with the message to show the user.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Err }

type AuthService struct {
	transport ports.Transport
	store     ports.SessionStore
	logger    *zap.Logger

	inFlight atomic.Bool
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(transport ports.Transport, store ports.SessionStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{transport: transport, store: store, logger: logger}
}

// Login exchanges credentials for a session and stores it. A second call
// while one is outstanding fails with domain.ErrInFlight and sends nothing.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Session{}, &domain.ValidationError{Field: "credentials", Message: "Username and password are required."}
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return domain.Session{}, domain.ErrInFlight
	}
	defer s.inFlight.Store(false)

	var res domain.LoginResponse
	err := s.transport.DoPublic(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   domain.Credentials{Username: username, Password: password},
	}, &res)
	if err != nil {
		s.logger.Info("login failed", zap.String("username", username), zap.Error(err))
		if domain.IsUnreachable(err) {
			return domain.Session{}, &LoginError{Message: MsgCannotConnect, Err: err}
		}
		return domain.Session{}, &LoginError{Message: MsgInvalidCredentials, Err: err}
	}

	session := domain.Session{
		Token:        res.AccessToken,
		Role:         domain.ParseRole(res.Role),
		DepartmentID: res.DepartmentID,
	}
	if !session.Authenticated() {
		return domain.Session{}, &LoginError{
			Message: MsgInvalidCredentials,
			Err:     &domain.ParseError{What: "login response", Err: fmt.Errorf("unusable role %q", res.Role)},
		}
	}
	if err := s.store.Set(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("storing session: %w", err)
	}

	s.logger.Info("logged in", zap.String("username", username), zap.Stringer("role", session.Role))
	return session, nil
}

// Logout wipes every session key. It is safe to call without a session.
func (s *AuthService) Logout(ctx context.Context) error {
	if _, err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Current returns the stored session without checking it.
func (s *AuthService) Current(ctx context.Context) (domain.Session, error) {
	return s.store.Get(ctx)
}

// IsLoginError reports whether err is a login failure and returns its
// display message.
func IsLoginError(err error) (string, bool) {
	var loginErr *LoginError
	if errors.As(err, &loginErr) {
		return loginErr.Message, true
	}
	return "", false
}
