package config

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// The name parameter uniquely identifies the circuit breaker instance.
// isSuccessful decides which errors count against the breaker; nil counts
// every error.
func NewCircuitBreaker(name string, logger *zap.Logger, isSuccessful func(error) bool) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	switch name {
	case "Evaluation-API":
		timeout = 10 * time.Second
	default:
		timeout = 30 * time.Second // RabbitMQ and other operations
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  3,
		Interval:     10 * time.Second,
		Timeout:      timeout,
		IsSuccessful: isSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Open circuit after 3 consecutive failures
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			}
		},
	})
}
