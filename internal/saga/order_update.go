package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cabezayunke/sagas-playground/internal/dlq"
	"github.com/cabezayunke/sagas-playground/internal/domain/event"
	domain "github.com/cabezayunke/sagas-playground/internal/domain/order"
	"github.com/cabezayunke/sagas-playground/internal/resilience"
)

var eventsQuarantined = promauto.NewCounter(prometheus.CounterOpts{
	Name: "saga_events_quarantined_total",
	Help: "The total number of events sent to the DLQ after exhausted retries",
})

// StatusUpdater drives an order to a terminal status through the
// resilient wrapper.
type StatusUpdater interface {
	Update(ctx context.Context, orderID string, status domain.Status, reason string) error
}

// OrderUpdateHandler advances the order on reservation outcomes. When
// the resilient update runs out of retries, the triggering event is
// quarantined instead of being dropped, and the failure stops here.
type OrderUpdateHandler struct {
	updater StatusUpdater
	queue   dlq.Queue
}

func NewOrderUpdateHandler(updater StatusUpdater, queue dlq.Queue) *OrderUpdateHandler {
	return &OrderUpdateHandler{updater: updater, queue: queue}
}

func (h *OrderUpdateHandler) OnInventoryReserved(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.InventoryReservedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", e.Payload, e.Name)
	}

	err := h.updater.Update(ctx, payload.OrderID, domain.StatusConfirmed, "")
	return h.handleResult(ctx, e, payload.OrderID, domain.StatusConfirmed, err)
}

func (h *OrderUpdateHandler) OnInventoryReservationFailed(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.InventoryReservationFailedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", e.Payload, e.Name)
	}

	reason := payload.Reason
	if reason == "" {
		reason = event.InventoryReservationFailed
	}

	err := h.updater.Update(ctx, payload.OrderID, domain.StatusCancelled, reason)
	return h.handleResult(ctx, e, payload.OrderID, domain.StatusCancelled, err)
}

func (h *OrderUpdateHandler) handleResult(ctx context.Context, e event.Event, orderID string, status domain.Status, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, resilience.ErrRetriesExhausted):
		slog.Error("order update exhausted retries, quarantining event",
			"order_id", orderID, "status", status, "event", e.Name, "error", err)

		m, convErr := dlq.FromEvent(e)
		if convErr != nil {
			return fmt.Errorf("quarantine %s: %w", e.Name, convErr)
		}
		if sendErr := h.queue.Send(ctx, m); sendErr != nil {
			// Losing a poison message silently is unacceptable.
			return fmt.Errorf("quarantine %s: %w", e.Name, sendErr)
		}
		eventsQuarantined.Inc()
		return nil
	default:
		// Permanent domain failures (unknown or already finalized
		// order) are logged and absorbed; retrying or quarantining
		// cannot change them.
		slog.Warn("order update rejected", "order_id", orderID, "status", status, "error", err)
		return nil
	}
}
