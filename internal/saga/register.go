package saga

import (
	"context"
	"log/slog"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
	"github.com/cabezayunke/sagas-playground/internal/eventbus"
)

// Register wires every saga handler to the bus. Subscriptions are
// explicit and happen once at startup; the order of registration is the
// order handlers run in for a given event.
func Register(bus eventbus.Bus, reservation *ReservationHandler, update *OrderUpdateHandler, finished *FinishedHandler) {
	bus.Subscribe(event.OrderCreated, reservation.OnOrderCreated)
	bus.Subscribe(event.InventoryReserved, update.OnInventoryReserved)
	bus.Subscribe(event.InventoryReservationFailed, update.OnInventoryReservationFailed)
	bus.Subscribe(event.OrderConfirmed, finished.OnOrderConfirmed)
	bus.Subscribe(event.OrderCancelled, finished.OnOrderCancelled)

	// Audit trail of everything crossing the bus.
	bus.SubscribeAll(func(ctx context.Context, e event.Event) error {
		slog.Debug("event published", "event", e.Name, "event_id", e.ID, "retry_count", e.RetryCount)
		return nil
	})
}
