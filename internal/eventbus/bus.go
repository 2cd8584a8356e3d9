package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
)

var eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "eventbus_events_published_total",
	Help: "The total number of events published on the in-process bus",
}, []string{"event"})

type Handler func(ctx context.Context, e event.Event) error

// Bus routes domain events to in-process subscribers.
type Bus interface {
	Publish(ctx context.Context, e event.Event) error
	Subscribe(eventName string, h Handler)
	SubscribeAll(h Handler)
}

// InMemoryBus dispatches sequentially: named handlers in registration
// order first, wildcard handlers after. A handler error or panic never
// stops the fan-out; Publish reports them joined once every handler ran.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	global   []Handler
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
	}
}

func (b *InMemoryBus) Subscribe(eventName string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], h)
}

func (b *InMemoryBus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, h)
}

func (b *InMemoryBus) Publish(ctx context.Context, e event.Event) error {
	b.mu.RLock()
	named := make([]Handler, len(b.handlers[e.Name]))
	copy(named, b.handlers[e.Name])
	global := make([]Handler, len(b.global))
	copy(global, b.global)
	b.mu.RUnlock()

	eventsPublished.WithLabelValues(e.Name).Inc()

	var errs []error
	for _, h := range named {
		if err := b.dispatch(ctx, h, e); err != nil {
			errs = append(errs, err)
		}
	}
	for _, h := range global {
		if err := b.dispatch(ctx, h, e); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (b *InMemoryBus) dispatch(ctx context.Context, h Handler, e event.Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic on %s: %v", e.Name, p)
			slog.Error("event handler panicked", "event", e.Name, "event_id", e.ID, "panic", p)
		}
	}()

	return h(ctx, e)
}
