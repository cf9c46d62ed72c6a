package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/clock"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const auditPublishTimeout = 2 * time.Second

// Auditor publishes an event for every mutation the server accepted.
// Publishing is best effort: failures are logged and never reach the
// operator's command. A nil *Auditor records nothing.
type Auditor struct {
	publisher ports.AuditPublisher
	store     ports.SessionStore
	clock     clock.Clock
	logger    *zap.Logger
}

func NewAuditor(publisher ports.AuditPublisher, store ports.SessionStore, clk clock.Clock, logger *zap.Logger) *Auditor {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{publisher: publisher, store: store, clock: clk, logger: logger}
}

func (a *Auditor) Record(ctx context.Context, action, resource string, resourceID int64, subject string) {
	if a == nil || a.publisher == nil {
		return
	}

	evt := ports.AuditEvent{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Subject:    subject,
		RequestID:  uuid.NewString(),
		OccurredAt: a.clock.Now().UTC(),
	}
	if session, err := a.store.Get(ctx); err == nil {
		evt.ActorRole = session.Role.String()
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditPublishTimeout)
	defer cancel()
	if err := a.publisher.PublishAudit(publishCtx, evt); err != nil {
		a.logger.Warn("failed to publish audit event",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Int64("resource_id", resourceID),
			zap.Error(err))
	}
}
