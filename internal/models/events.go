package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published after an order commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	StoreID     int64           `json:"store_id"`
	CustomerID  int64           `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaymentMode string          `json:"payment_mode"`
	Items       []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published after a status update
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID     int64      `json:"order_id"`
	StoreID     int64      `json:"store_id"`
	Status      string     `json:"status"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	PriceTotal decimal.Decimal `json:"price_total"`
}
