package inventory

import (
	"log/slog"
	"sync"

	"github.com/cabezayunke/sagas-playground/internal/domain/order"
)

// Service owns the stock ledger. Reservations are all-or-nothing: the
// check phase runs over every requested item before any stock is touched.
type Service struct {
	mu    sync.Mutex
	stock map[string]int
}

func NewService(seed map[string]int) *Service {
	stock := make(map[string]int, len(seed))
	for sku, qty := range seed {
		stock[sku] = qty
	}
	return &Service{stock: stock}
}

// Reserve decrements stock for every item, or nothing at all.
// An unknown SKU counts as zero available.
func (s *Service) Reserve(items []order.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if s.stock[item.SKU] < item.Quantity {
			slog.Info("insufficient stock", "sku", item.SKU, "requested", item.Quantity, "available", s.stock[item.SKU])
			return false
		}
	}

	for _, item := range items {
		s.stock[item.SKU] -= item.Quantity
	}

	return true
}

// Available reports the current quantity for a SKU.
func (s *Service) Available(sku string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[sku]
}
