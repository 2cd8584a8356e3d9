package dlq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
)

var (
	// ErrInvalidMessage rejects malformed messages before storage.
	ErrInvalidMessage = errors.New("invalid DLQ message")
	// ErrNotSupported marks backends where quarantine is one-way and
	// introspection or deletion is not available.
	ErrNotSupported = errors.New("operation not supported by this backend")
	// ErrUnknownEvent marks records whose event name cannot be mapped
	// back to a domain event.
	ErrUnknownEvent = errors.New("unknown event name")
)

// Message is the stored shape of a quarantined event.
type Message struct {
	ID         string          `json:"id"`
	EventName  string          `json:"eventName"`
	Payload    json.RawMessage `json:"payload"`
	RetryCount int             `json:"retryCount"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (m Message) Validate() error {
	switch {
	case m.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	case m.EventName == "":
		return fmt.Errorf("%w: missing event name", ErrInvalidMessage)
	case len(m.Payload) == 0:
		return fmt.Errorf("%w: missing payload", ErrInvalidMessage)
	}
	return nil
}

// FromEvent builds the DLQ record for a failed event, carrying the
// event's id, retry count and serialized payload.
func FromEvent(e event.Event) (Message, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Message{
		ID:         e.ID,
		EventName:  e.Name,
		Payload:    payload,
		RetryCount: e.RetryCount,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// Queue is the quarantine contract every backend satisfies.
type Queue interface {
	// Send validates and durably stores a message. A storage failure is
	// returned to the caller; silently dropping a poison message is not
	// an option.
	Send(ctx context.Context, m Message) error
	// GetEvents returns a snapshot of all quarantined messages,
	// FIFO by arrival.
	GetEvents(ctx context.Context) ([]Message, error)
	// DeleteEvent removes a message by id; absent ids are a no-op.
	DeleteEvent(ctx context.Context, id string) error
}

// Rebuild reconstructs the domain event recorded in a message, with the
// retry count incremented. Unknown event names return ErrUnknownEvent.
func Rebuild(m Message) (event.Event, error) {
	retries := m.RetryCount + 1

	switch m.EventName {
	case event.OrderCreated:
		var p event.OrderCreatedPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return event.Event{}, fmt.Errorf("%w: %s payload: %w", ErrInvalidMessage, m.EventName, err)
		}
		return event.New(m.EventName, p, retries), nil
	case event.OrderConfirmed:
		var p event.OrderConfirmedPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return event.Event{}, fmt.Errorf("%w: %s payload: %w", ErrInvalidMessage, m.EventName, err)
		}
		return event.New(m.EventName, p, retries), nil
	case event.OrderCancelled:
		var p event.OrderCancelledPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return event.Event{}, fmt.Errorf("%w: %s payload: %w", ErrInvalidMessage, m.EventName, err)
		}
		return event.New(m.EventName, p, retries), nil
	case event.InventoryReserved:
		var p event.InventoryReservedPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return event.Event{}, fmt.Errorf("%w: %s payload: %w", ErrInvalidMessage, m.EventName, err)
		}
		return event.New(m.EventName, p, retries), nil
	case event.InventoryReservationFailed:
		var p event.InventoryReservationFailedPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return event.Event{}, fmt.Errorf("%w: %s payload: %w", ErrInvalidMessage, m.EventName, err)
		}
		return event.New(m.EventName, p, retries), nil
	default:
		return event.Event{}, fmt.Errorf("%w: %s", ErrUnknownEvent, m.EventName)
	}
}
