package saga

import (
	"context"
	"fmt"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
	"github.com/cabezayunke/sagas-playground/internal/notify"
)

// FinishedHandler runs the terminal side effects once an order reaches
// CONFIRMED or CANCELLED.
type FinishedHandler struct {
	notifier notify.Notifier
}

func NewFinishedHandler(notifier notify.Notifier) *FinishedHandler {
	return &FinishedHandler{notifier: notifier}
}

func (h *FinishedHandler) OnOrderConfirmed(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.OrderConfirmedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", e.Payload, e.Name)
	}

	h.notifier.Send(ctx, fmt.Sprintf("Order %s confirmed", payload.OrderID))
	return nil
}

func (h *FinishedHandler) OnOrderCancelled(ctx context.Context, e event.Event) error {
	payload, ok := e.Payload.(event.OrderCancelledPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", e.Payload, e.Name)
	}

	reason := payload.Reason
	if reason == "" {
		reason = "Not specified"
	}

	h.notifier.Send(ctx, fmt.Sprintf("Order %s cancelled. Reason: %s", payload.OrderID, reason))
	return nil
}
