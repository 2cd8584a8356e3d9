package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	domain "github.com/cabezayunke/sagas-playground/internal/domain/order"
	"github.com/cabezayunke/sagas-playground/internal/order"
)

type Handlers struct {
	orders      *order.Service
	redisClient *redis.Client
}

func NewHandlers(orders *order.Service, redisClient *redis.Client) *Handlers {
	return &Handlers{
		orders:      orders,
		redisClient: redisClient,
	}
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string        `json:"orderId"`
		Items   []domain.Item `json:"items"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.OrderID == "" {
		http.Error(w, "orderId is required", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "items must be a non-empty array", http.StatusBadRequest)
		return
	}
	for _, item := range req.Items {
		if item.SKU == "" {
			http.Error(w, "items[].sku is required", http.StatusBadRequest)
			return
		}
		if item.Quantity <= 0 {
			http.Error(w, "items[].quantity must be positive", http.StatusBadRequest)
			return
		}
	}

	created, err := h.orders.Create(r.Context(), req.OrderID, req.Items)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing order id", http.StatusBadRequest)
		return
	}

	cacheKey := fmt.Sprintf("order:%s", id)
	if h.redisClient != nil {
		if val, err := h.redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(val))
			return
		}
	}

	o, err := h.orders.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.redisClient != nil {
		if data, err := json.Marshal(o); err == nil {
			// Short TTL so status changes show up quickly.
			h.redisClient.Set(r.Context(), cacheKey, data, 1*time.Second)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o)
}
