package dlq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
	"github.com/cabezayunke/sagas-playground/internal/eventbus"
)

type recordingNotifier struct {
	texts []string
}

func (n *recordingNotifier) Send(ctx context.Context, text string) {
	n.texts = append(n.texts, text)
}

// fixedQueue serves a preset snapshot so malformed messages can reach
// the sweep (Send would reject them on a real backend).
type fixedQueue struct {
	MemoryQueue
	preset []Message
}

func (q *fixedQueue) GetEvents(ctx context.Context) ([]Message, error) {
	if q.preset != nil {
		return q.preset, nil
	}
	return q.MemoryQueue.GetEvents(ctx)
}

func TestSweepReplaysAndDeletes(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryQueue()
	bus := eventbus.NewInMemoryBus()
	notifier := &recordingNotifier{}

	var replayed []event.Event
	bus.Subscribe(event.InventoryReserved, func(ctx context.Context, e event.Event) error {
		replayed = append(replayed, e)
		return nil
	})

	require.NoError(t, queue.Send(ctx, Message{
		ID:         "m1",
		EventName:  event.InventoryReserved,
		Payload:    json.RawMessage(`{"orderId":"o1"}`),
		RetryCount: 0,
		Timestamp:  time.Now().UTC(),
	}))

	p := NewReprocessor(queue, bus, notifier, time.Minute)
	require.NoError(t, p.Sweep(ctx))

	require.Len(t, replayed, 1, "exactly one event is republished")
	assert.Equal(t, 1, replayed[0].RetryCount)

	left, err := queue.GetEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, left, "successful replay deletes the record")
	assert.Empty(t, notifier.texts)
}

func TestSweepKeepsMessageAndNotifiesOnFailedDispatch(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryQueue()
	bus := eventbus.NewInMemoryBus()
	notifier := &recordingNotifier{}

	bus.Subscribe(event.InventoryReserved, func(ctx context.Context, e event.Event) error {
		return errors.New("still failing")
	})

	require.NoError(t, queue.Send(ctx, Message{
		ID:        "m1",
		EventName: event.InventoryReserved,
		Payload:   json.RawMessage(`{"orderId":"o1"}`),
		Timestamp: time.Now().UTC(),
	}))

	p := NewReprocessor(queue, bus, notifier, time.Minute)
	require.NoError(t, p.Sweep(ctx))

	left, err := queue.GetEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 1, "failed replay stays queued for the next sweep")

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], event.InventoryReserved)
	assert.Contains(t, notifier.texts[0], "o1")
}

func TestSweepDeletesUnknownEventNames(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryQueue()
	bus := eventbus.NewInMemoryBus()

	require.NoError(t, queue.Send(ctx, Message{
		ID:        "m1",
		EventName: "NoSuchEvent",
		Payload:   json.RawMessage(`{"orderId":"o1"}`),
		Timestamp: time.Now().UTC(),
	}))

	p := NewReprocessor(queue, bus, &recordingNotifier{}, time.Minute)
	require.NoError(t, p.Sweep(ctx))

	left, err := queue.GetEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, left, "unreplayable records are dropped")
}

func TestSweepSkipsInvalidMessages(t *testing.T) {
	ctx := context.Background()
	queue := &fixedQueue{preset: []Message{
		{ID: "", EventName: event.InventoryReserved, Payload: json.RawMessage(`{}`)},
	}}
	bus := eventbus.NewInMemoryBus()

	var replayed int
	bus.SubscribeAll(func(ctx context.Context, e event.Event) error {
		replayed++
		return nil
	})

	p := NewReprocessor(queue, bus, &recordingNotifier{}, time.Minute)
	require.NoError(t, p.Sweep(ctx))

	assert.Zero(t, replayed, "invalid records are never republished")
}

func TestSweepOneWayBackend(t *testing.T) {
	producerless := &oneWayQueue{}
	p := NewReprocessor(producerless, eventbus.NewInMemoryBus(), &recordingNotifier{}, time.Minute)

	assert.NoError(t, p.Sweep(context.Background()))
}

type oneWayQueue struct{}

func (oneWayQueue) Send(ctx context.Context, m Message) error { return nil }

func (oneWayQueue) GetEvents(ctx context.Context) ([]Message, error) {
	return nil, ErrNotSupported
}

func (oneWayQueue) DeleteEvent(ctx context.Context, id string) error {
	return ErrNotSupported
}
