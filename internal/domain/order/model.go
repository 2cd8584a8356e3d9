package order

import "errors"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrDuplicate = errors.New("order already exists")
	// ErrFinalized is returned when a confirm or cancel hits an order
	// that already reached a terminal status.
	ErrFinalized = errors.New("order already finalized")
)

type Item struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	OrderID string `json:"orderId"`
	Items   []Item `json:"items"`
	Status  Status `json:"status"`
}

func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}
