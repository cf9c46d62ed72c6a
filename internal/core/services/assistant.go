package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// AssistantService relays questions to the public assistant endpoint.
type AssistantService struct {
	transport ports.Transport
}

func NewAssistantService(transport ports.Transport) *AssistantService {
	return &AssistantService{transport: transport}
}

func (s *AssistantService) Ask(ctx context.Context, message string) (string, error) {
	if err := required("message", message, "Please enter a message."); err != nil {
		return "", err
	}

	var reply chatReply
	if err := s.transport.DoPublic(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   "/public/chat",
		Body:   chatRequest{Message: message},
	}, &reply); err != nil {
		return "", fmt.Errorf("asking assistant: %w", err)
	}
	return reply.Reply, nil
}
