package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"

	"github.com/cabezayunke/sagas-playground/internal/config"
	domain "github.com/cabezayunke/sagas-playground/internal/domain/order"
)

var breakerOpened = promauto.NewCounter(prometheus.CounterOpts{
	Name: "order_update_breaker_opened_total",
	Help: "The total number of times the order update circuit breaker opened",
})

// OrderTransitions is the slice of the order service guarded by the
// circuit breaker.
type OrderTransitions interface {
	Confirm(ctx context.Context, orderID string) error
	Cancel(ctx context.Context, orderID, reason string) error
}

// StatusUpdater wraps order status updates with a circuit breaker and a
// bounded retry. A breaker rejection counts as a failed attempt like any
// other; callers only ever see success or ErrRetriesExhausted (plus
// validation errors for unknown statuses).
type StatusUpdater struct {
	orders      OrderTransitions
	cb          *gobreaker.CircuitBreaker
	callTimeout time.Duration
	retry       config.Retry
}

func NewStatusUpdater(orders OrderTransitions, breakerCfg config.Breaker, retryCfg config.Retry) *StatusUpdater {
	threshold := float64(breakerCfg.ErrorThresholdPc) / 100

	settings := gobreaker.Settings{
		Name:        "order-status-update",
		MaxRequests: 1,
		Interval:    breakerCfg.Window,
		Timeout:     breakerCfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				breakerOpened.Inc()
			}
		},
	}

	return &StatusUpdater{
		orders:      orders,
		cb:          gobreaker.NewCircuitBreaker(settings),
		callTimeout: breakerCfg.CallTimeout,
		retry:       retryCfg,
	}
}

// Update drives the order to the given terminal status.
func (u *StatusUpdater) Update(ctx context.Context, orderID string, status domain.Status, reason string) error {
	if status != domain.StatusConfirmed && status != domain.StatusCancelled {
		return fmt.Errorf("invalid order status: %s", status)
	}

	return Retry(ctx, u.retry.Attempts, u.retry.BaseDelay, u.retry.JitterMax, func() error {
		_, err := u.cb.Execute(func() (any, error) {
			callCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
			defer cancel()
			return nil, u.updateStatus(callCtx, orderID, status, reason)
		})
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrFinalized) {
			// Permanent conditions, retrying cannot change the outcome.
			return Permanent(err)
		}
		return err
	})
}

func (u *StatusUpdater) updateStatus(ctx context.Context, orderID string, status domain.Status, reason string) error {
	switch status {
	case domain.StatusConfirmed:
		return u.orders.Confirm(ctx, orderID)
	case domain.StatusCancelled:
		return u.orders.Cancel(ctx, orderID, reason)
	default:
		return fmt.Errorf("invalid order status: %s", status)
	}
}
