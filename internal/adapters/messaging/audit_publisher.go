package messaging

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

var _ ports.AuditPublisher = (*RabbitMQBroker)(nil)

func (rmq *RabbitMQBroker) PublishAudit(ctx context.Context, evt ports.AuditEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	// Respect context deadline
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.RequestID,
				Timestamp:    evt.OccurredAt,
				Type:         evt.Resource + "." + evt.Action,
				Body:         body,
			},
		)
		return nil, err
	})
	return err
}

// Discard drops every event. It is the publisher when no broker is
// configured.
type Discard struct{}

var _ ports.AuditPublisher = Discard{}

func (Discard) PublishAudit(context.Context, ports.AuditEvent) error { return nil }
