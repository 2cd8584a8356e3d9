package saga

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
	"github.com/cabezayunke/sagas-playground/internal/eventbus"
	"github.com/cabezayunke/sagas-playground/internal/inventory"
)

// ReservationHandler reacts to OrderCreated by attempting the stock
// reservation and reporting the outcome as an event. It never talks to
// the order service directly; the next saga step picks the outcome up
// from the bus.
type ReservationHandler struct {
	inventory *inventory.Service
	bus       eventbus.Bus
}

func NewReservationHandler(inv *inventory.Service, bus eventbus.Bus) *ReservationHandler {
	return &ReservationHandler{inventory: inv, bus: bus}
}

func (h *ReservationHandler) OnOrderCreated(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.OrderCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", e.Payload, e.Name)
	}

	if h.inventory.Reserve(payload.Items) {
		slog.Info("inventory reserved", "order_id", payload.OrderID)
		return h.bus.Publish(ctx, event.NewInventoryReserved(payload.OrderID))
	}

	slog.Warn("inventory reservation failed", "order_id", payload.OrderID)
	return h.bus.Publish(ctx, event.NewInventoryReservationFailed(payload.OrderID, "Insufficient stock"))
}
