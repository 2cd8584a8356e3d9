package dlq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
)

func testMessage(id, name string) Message {
	return Message{
		ID:         id,
		EventName:  name,
		Payload:    json.RawMessage(`{"orderId":"o1"}`),
		RetryCount: 0,
		Timestamp:  time.Now().UTC(),
	}
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	m := testMessage("m1", event.InventoryReserved)
	require.NoError(t, q.Send(ctx, m))

	got, err := q.GetEvents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, m.ID, got[0].ID)
	assert.Equal(t, m.EventName, got[0].EventName)
}

func TestMemoryQueueDeleteExactMessage(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, testMessage("m1", event.InventoryReserved)))
	require.NoError(t, q.Send(ctx, testMessage("m2", event.InventoryReservationFailed)))

	require.NoError(t, q.DeleteEvent(ctx, "m1"))

	got, err := q.GetEvents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].ID)
}

func TestMemoryQueueDeleteAbsentIsNoop(t *testing.T) {
	q := NewMemoryQueue()

	assert.NoError(t, q.DeleteEvent(context.Background(), "missing"))
}

func TestMemoryQueueFIFOByArrival(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, q.Send(ctx, testMessage(id, event.InventoryReserved)))
	}

	got, err := q.GetEvents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m3", got[2].ID)
}

func TestSendRejectsMalformedMessage(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	tests := []struct {
		name string
		msg  Message
	}{
		{"missing id", Message{EventName: "X", Payload: json.RawMessage(`{}`)}},
		{"missing event name", Message{ID: "m1", Payload: json.RawMessage(`{}`)}},
		{"missing payload", Message{ID: "m1", EventName: "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := q.Send(ctx, tt.msg)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}

	got, err := q.GetEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "rejected messages must not be stored")
}

func TestFromEventCarriesRetryCount(t *testing.T) {
	ev := event.New(event.InventoryReserved, event.InventoryReservedPayload{OrderID: "o1"}, 2)

	m, err := FromEvent(ev)
	require.NoError(t, err)

	assert.Equal(t, ev.ID, m.ID)
	assert.Equal(t, event.InventoryReserved, m.EventName)
	assert.Equal(t, 2, m.RetryCount)
	assert.JSONEq(t, `{"orderId":"o1"}`, string(m.Payload))
}

func TestRebuildIncrementsRetryCount(t *testing.T) {
	m := Message{
		ID:         "m1",
		EventName:  event.InventoryReservationFailed,
		Payload:    json.RawMessage(`{"orderId":"o1","reason":"Insufficient stock"}`),
		RetryCount: 1,
	}

	ev, err := Rebuild(m)
	require.NoError(t, err)

	assert.Equal(t, event.InventoryReservationFailed, ev.Name)
	assert.Equal(t, 2, ev.RetryCount, "replay always carries prior retryCount + 1")
	assert.NotEqual(t, m.ID, ev.ID, "replay produces a new event, not a mutation")

	payload := ev.Payload.(event.InventoryReservationFailedPayload)
	assert.Equal(t, "o1", payload.OrderID)
	assert.Equal(t, "Insufficient stock", payload.Reason)
}

func TestRebuildUnknownEventName(t *testing.T) {
	m := testMessage("m1", "SomethingElse")

	_, err := Rebuild(m)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
