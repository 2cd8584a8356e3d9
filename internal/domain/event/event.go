package event

import (
	"github.com/google/uuid"

	"github.com/cabezayunke/sagas-playground/internal/domain/order"
)

// Event names as they appear on the bus and in DLQ records.
const (
	OrderCreated               = "OrderCreated"
	OrderConfirmed             = "OrderConfirmed"
	OrderCancelled             = "OrderCancelled"
	InventoryReserved          = "InventoryReserved"
	InventoryReservationFailed = "InventoryReservationFailed"
)

// Event is the envelope published on the bus. Events are immutable once
// constructed; a reprocessed event is a new envelope with a fresh ID and
// an incremented RetryCount, never a mutation of the stored one.
type Event struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Payload    any    `json:"payload"`
	RetryCount int    `json:"retryCount"`
}

type OrderCreatedPayload struct {
	OrderID string       `json:"orderId"`
	Items   []order.Item `json:"items"`
}

type OrderConfirmedPayload struct {
	OrderID string `json:"orderId"`
}

type OrderCancelledPayload struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason,omitempty"`
}

type InventoryReservedPayload struct {
	OrderID string `json:"orderId"`
}

type InventoryReservationFailedPayload struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

func New(name string, payload any, retryCount int) Event {
	return Event{
		ID:         uuid.New().String(),
		Name:       name,
		Payload:    payload,
		RetryCount: retryCount,
	}
}

func NewOrderCreated(orderID string, items []order.Item) Event {
	return New(OrderCreated, OrderCreatedPayload{OrderID: orderID, Items: items}, 0)
}

func NewOrderConfirmed(orderID string) Event {
	return New(OrderConfirmed, OrderConfirmedPayload{OrderID: orderID}, 0)
}

func NewOrderCancelled(orderID, reason string) Event {
	return New(OrderCancelled, OrderCancelledPayload{OrderID: orderID, Reason: reason}, 0)
}

func NewInventoryReserved(orderID string) Event {
	return New(InventoryReserved, InventoryReservedPayload{OrderID: orderID}, 0)
}

func NewInventoryReservationFailed(orderID, reason string) Event {
	return New(InventoryReservationFailed, InventoryReservationFailedPayload{OrderID: orderID, Reason: reason}, 0)
}
