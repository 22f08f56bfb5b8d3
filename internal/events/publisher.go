package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quangdm/risk-assessment-be/shared/rabbitmq"
)

// JobEvent is published when a questionnaire job reaches a terminal state
type JobEvent struct {
	QuestionnaireID string    `json:"questionnaire_id"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Publisher emits lifecycle events. Publishing is best-effort: a failed
// publish never affects job state.
type Publisher interface {
	PublishJobEvent(ctx context.Context, event JobEvent) error
}

// AMQPPublisher publishes job events to a RabbitMQ exchange
type AMQPPublisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewAMQPPublisher creates a RabbitMQ-backed publisher
func NewAMQPPublisher(client *rabbitmq.Client, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{client: client, logger: logger}
}

func (p *AMQPPublisher) PublishJobEvent(ctx context.Context, event JobEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal job event: %w", err)
	}

	if err := p.client.Publish(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job event: %w", err)
	}

	p.logger.Debug("Job event published",
		slog.String("questionnaire_id", event.QuestionnaireID),
		slog.String("status", event.Status),
	)

	return nil
}

// NopPublisher discards events; used when event publishing is disabled
type NopPublisher struct{}

func (NopPublisher) PublishJobEvent(ctx context.Context, event JobEvent) error {
	return nil
}
