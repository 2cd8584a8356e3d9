package dlq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cabezayunke/sagas-playground/internal/eventbus"
	"github.com/cabezayunke/sagas-playground/internal/notify"
)

var (
	eventsReprocessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dlq_events_reprocessed_total",
		Help: "The total number of DLQ events replayed onto the bus",
	})
	reprocessFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dlq_reprocess_failures_total",
		Help: "The total number of DLQ replays that failed and stayed queued",
	})
)

// Reprocessor periodically drains the DLQ back onto the event bus.
// Every sweep is at-least-once: a message leaves the queue only after a
// clean re-dispatch, otherwise it stays for the next sweep.
type Reprocessor struct {
	queue    Queue
	bus      eventbus.Bus
	notifier notify.Notifier
	interval time.Duration
}

func NewReprocessor(queue Queue, bus eventbus.Bus, notifier notify.Notifier, interval time.Duration) *Reprocessor {
	return &Reprocessor{
		queue:    queue,
		bus:      bus,
		notifier: notifier,
		interval: interval,
	}
}

func (p *Reprocessor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("DLQ reprocessor started", "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.Sweep(ctx); err != nil {
				slog.Error("DLQ sweep failed", "error", err)
			}
		}
	}
}

// Sweep replays every quarantined message once.
func (p *Reprocessor) Sweep(ctx context.Context) error {
	messages, err := p.queue.GetEvents(ctx)
	if err != nil {
		if errors.Is(err, ErrNotSupported) {
			// One-way backend, nothing to sweep.
			return nil
		}
		return fmt.Errorf("fetch dlq events: %w", err)
	}

	if len(messages) == 0 {
		return nil
	}

	slog.Info("reprocessing DLQ events", "count", len(messages))

	for _, m := range messages {
		p.process(ctx, m)
	}

	return nil
}

func (p *Reprocessor) process(ctx context.Context, m Message) {
	if err := m.Validate(); err != nil {
		// Malformed records stay queued for manual inspection.
		slog.Error("invalid DLQ message skipped", "id", m.ID, "error", err)
		return
	}

	ev, err := Rebuild(m)
	if err != nil {
		if errors.Is(err, ErrUnknownEvent) {
			// Cannot be replayed meaningfully, drop it.
			slog.Error("unknown event name in DLQ, deleting", "id", m.ID, "event", m.EventName)
			if delErr := p.queue.DeleteEvent(ctx, m.ID); delErr != nil {
				slog.Error("delete dlq event", "id", m.ID, "error", delErr)
			}
			return
		}
		slog.Error("DLQ message rebuild failed, skipped", "id", m.ID, "error", err)
		return
	}

	slog.Info("replaying DLQ event", "event", m.EventName, "order_id", orderIDOf(m), "retry_count", ev.RetryCount)

	if err := p.bus.Publish(ctx, ev); err != nil {
		reprocessFailures.Inc()
		slog.Error("DLQ replay failed", "event", m.EventName, "id", m.ID, "error", err)
		p.notifier.Send(ctx, fmt.Sprintf(
			"DLQ reprocess failure: %s for order %s still failing", m.EventName, orderIDOf(m)))
		return
	}

	if err := p.queue.DeleteEvent(ctx, m.ID); err != nil {
		slog.Error("delete dlq event after replay", "id", m.ID, "error", err)
		return
	}

	eventsReprocessed.Inc()
}

func orderIDOf(m Message) string {
	var p struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return "unknown"
	}
	return p.OrderID
}
