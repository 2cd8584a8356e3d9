package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
	domain "github.com/cabezayunke/sagas-playground/internal/domain/order"
)

type recordingBus struct {
	events []event.Event
}

func (b *recordingBus) Publish(ctx context.Context, e event.Event) error {
	b.events = append(b.events, e)
	return nil
}

type alwaysFail struct{}

func (alwaysFail) ShouldFail() bool { return true }

func TestCreatePublishesOrderCreated(t *testing.T) {
	bus := &recordingBus{}
	svc := NewService(bus, nil)

	items := []domain.Item{{SKU: "p1", Quantity: 2}}
	o, err := svc.Create(context.Background(), "o1", items)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, o.Status)
	require.Len(t, bus.events, 1)
	assert.Equal(t, event.OrderCreated, bus.events[0].Name)
	payload := bus.events[0].Payload.(event.OrderCreatedPayload)
	assert.Equal(t, "o1", payload.OrderID)
	assert.Equal(t, items, payload.Items)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	bus := &recordingBus{}
	svc := NewService(bus, nil)

	_, err := svc.Create(context.Background(), "o1", nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "o1", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, bus.events, 1, "failed create must not publish")
}

func TestConfirmTransitionsAndPublishes(t *testing.T) {
	bus := &recordingBus{}
	svc := NewService(bus, nil)
	_, err := svc.Create(context.Background(), "o1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(context.Background(), "o1"))

	o, err := svc.Get("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	require.Len(t, bus.events, 2)
	assert.Equal(t, event.OrderConfirmed, bus.events[1].Name)
}

func TestCancelCarriesReason(t *testing.T) {
	bus := &recordingBus{}
	svc := NewService(bus, nil)
	_, err := svc.Create(context.Background(), "o1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), "o1", "Insufficient stock"))

	o, err := svc.Get("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, o.Status)
	payload := bus.events[1].Payload.(event.OrderCancelledPayload)
	assert.Equal(t, "Insufficient stock", payload.Reason)
}

func TestTerminalOrderRejectsFurtherTransitions(t *testing.T) {
	bus := &recordingBus{}
	svc := NewService(bus, nil)
	_, err := svc.Create(context.Background(), "o1", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(context.Background(), "o1"))

	assert.ErrorIs(t, svc.Confirm(context.Background(), "o1"), domain.ErrFinalized)
	assert.ErrorIs(t, svc.Cancel(context.Background(), "o1", "late"), domain.ErrFinalized)

	o, err := svc.Get("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, o.Status, "terminal status must not change")
	assert.Len(t, bus.events, 2, "rejected transitions must not publish")
}

func TestConfirmUnknownOrder(t *testing.T) {
	svc := NewService(&recordingBus{}, nil)

	assert.ErrorIs(t, svc.Confirm(context.Background(), "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Cancel(context.Background(), "missing", ""), domain.ErrNotFound)
}

func TestInjectedFailureLeavesStateUntouched(t *testing.T) {
	bus := &recordingBus{}
	svc := NewService(bus, alwaysFail{})
	// Create does not consult the injector; only status updates do.
	_, err := svc.Create(context.Background(), "o1", nil)
	require.NoError(t, err)

	err = svc.Confirm(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrInjectedFailure)

	o, getErr := svc.Get("o1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Len(t, bus.events, 1)
}
