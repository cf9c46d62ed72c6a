package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

type RegistrationService struct {
	transport ports.Transport
}

var _ ports.RegistrationService = (*RegistrationService)(nil)

func NewRegistrationService(
	transport ports.Transport,
) *RegistrationService {
	return &RegistrationService{
		transport: transport,
	}
}

// Register creates a user account through the public endpoint. Local
// checks run first and send nothing when they fail.
func (s *RegistrationService) Register(
	ctx context.Context,
	username, password string,
) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return "All fields are required.", &domain.ValidationError{Field: "credentials", Message: "All fields are required."}
	}
	if err := domain.CheckPassword(password); err != nil {
		return err.(*domain.ValidationError).Message, err
	}

	err := s.transport.DoPublic(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   "/register",
		Body:   domain.Credentials{Username: username, Password: password},
	}, nil)
	if err != nil {
		if domain.IsUnreachable(err) {
			return "Server not reachable.", err
		}
		return "Registration failed. Username may already exist.", err
	}

	return "Account created successfully. You may now login.", nil
}
