package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cabezayunke/sagas-playground/internal/infrastructure/kafka"
)

// KafkaQueue publishes quarantined messages to a dead-letter topic.
// Kafka offers no per-message introspection or deletion, so with this
// backend quarantine is one-way: GetEvents and DeleteEvent report
// ErrNotSupported and the periodic sweep skips the backend entirely.
type KafkaQueue struct {
	producer *kafka.Producer
}

func NewKafkaQueue(producer *kafka.Producer) *KafkaQueue {
	return &KafkaQueue{producer: producer}
}

func (q *KafkaQueue) Send(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		slog.Error("DLQ message rejected", "error", err)
		return err
	}

	value, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal dlq message: %w", err)
	}

	if err := q.producer.SendMessage(ctx, []byte(m.ID), value); err != nil {
		return fmt.Errorf("publish dlq message: %w", err)
	}

	slog.Warn("event sent to DLQ topic", "event", m.EventName, "id", m.ID, "topic", q.producer.Topic())
	return nil
}

func (q *KafkaQueue) GetEvents(ctx context.Context) ([]Message, error) {
	slog.Warn("GetEvents is not supported by the kafka DLQ backend")
	return nil, ErrNotSupported
}

func (q *KafkaQueue) DeleteEvent(ctx context.Context, id string) error {
	slog.Warn("DeleteEvent is not supported by the kafka DLQ backend")
	return ErrNotSupported
}
