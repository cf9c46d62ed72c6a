package ports

import (
	"context"
	"time"
)

// AuditEvent describes an operator mutation accepted by the server.
type AuditEvent struct {
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID int64     `json:"resource_id,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	ActorRole  string    `json:"actor_role"`
	RequestID  string    `json:"request_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AuditPublisher interface {
	PublishAudit(ctx context.Context, evt AuditEvent) error
}
