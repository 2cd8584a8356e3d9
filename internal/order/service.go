package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cabezayunke/sagas-playground/internal/domain/event"
	domain "github.com/cabezayunke/sagas-playground/internal/domain/order"
)

// ErrInjectedFailure marks a transient failure produced by the chaos
// injector rather than real business logic.
var ErrInjectedFailure = errors.New("injected failure")

type publisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// Service is the order state machine and the only writer of order status.
// Every successful transition publishes exactly one event; failed calls
// publish nothing and leave the order untouched.
type Service struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	bus      publisher
	injector Injector
}

func NewService(bus publisher, injector Injector) *Service {
	if injector == nil {
		injector = NopInjector()
	}
	return &Service{
		orders:   make(map[string]*domain.Order),
		bus:      bus,
		injector: injector,
	}
}

func (s *Service) Create(ctx context.Context, orderID string, items []domain.Item) (*domain.Order, error) {
	s.mu.Lock()
	if _, ok := s.orders[orderID]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrDuplicate)
	}

	o := &domain.Order{
		OrderID: orderID,
		Items:   items,
		Status:  domain.StatusPending,
	}
	s.orders[orderID] = o
	snapshot := *o
	s.mu.Unlock()

	slog.Info("order created", "order_id", orderID, "status", domain.StatusPending)
	if err := s.bus.Publish(ctx, event.NewOrderCreated(orderID, items)); err != nil {
		slog.Error("publish OrderCreated", "order_id", orderID, "error", err)
	}

	return &snapshot, nil
}

func (s *Service) Confirm(ctx context.Context, orderID string) error {
	if err := s.transition(orderID, domain.StatusConfirmed); err != nil {
		return err
	}

	slog.Info("order confirmed", "order_id", orderID)
	if err := s.bus.Publish(ctx, event.NewOrderConfirmed(orderID)); err != nil {
		slog.Error("publish OrderConfirmed", "order_id", orderID, "error", err)
	}
	return nil
}

func (s *Service) Cancel(ctx context.Context, orderID, reason string) error {
	if err := s.transition(orderID, domain.StatusCancelled); err != nil {
		return err
	}

	slog.Info("order cancelled", "order_id", orderID, "reason", reason)
	if err := s.bus.Publish(ctx, event.NewOrderCancelled(orderID, reason)); err != nil {
		slog.Error("publish OrderCancelled", "order_id", orderID, "error", err)
	}
	return nil
}

func (s *Service) Get(orderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	snapshot := *o
	return &snapshot, nil
}

func (s *Service) transition(orderID string, to domain.Status) error {
	if s.injector.ShouldFail() {
		return fmt.Errorf("update order %s: %w", orderID, ErrInjectedFailure)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	if o.Status.Terminal() {
		return fmt.Errorf("order %s is %s: %w", orderID, o.Status, domain.ErrFinalized)
	}

	o.Status = to
	return nil
}
