package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Seller plans
const (
	PlanFree     = "FREE"
	PlanStandard = "STANDARD"
	PlanPremium  = "PREMIUM"
)

// Seller is a tenant owning one or more stores.
type Seller struct {
	ID            int64      `db:"id" json:"id"`
	Name          *string    `db:"name" json:"name"`
	Email         *string    `db:"email" json:"email"`
	Phone         string     `db:"phone" json:"phone"`
	Status        int        `db:"status" json:"status"`
	Plan          string     `db:"plan" json:"plan"`
	PlanExpiresAt *time.Time `db:"plan_expires_at" json:"planExpiresAt"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// HasActivePlan reports whether the seller's plan is usable at now.
// FREE never expires; paid plans need an expiry in the future.
func (s *Seller) HasActivePlan(now time.Time) bool {
	if s.Plan == PlanFree {
		return true
	}
	if s.PlanExpiresAt == nil {
		return false
	}
	return now.Before(*s.PlanExpiresAt)
}

// Store is a seller's storefront, addressed publicly by Slug.
type Store struct {
	ID             int64     `db:"id" json:"id"`
	SellerID       int64     `db:"seller_id" json:"sellerId"`
	Name           string    `db:"name" json:"name"`
	Slug           string    `db:"slug" json:"slug"`
	LogoURL        *string   `db:"logo_url" json:"logoUrl"`
	WhatsappNumber string    `db:"whatsapp_number" json:"whatsappNumber"`
	UpiID          *string   `db:"upi_id" json:"upiId"`
	Status         int       `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Product statuses
const (
	ProductInactive = 0
	ProductActive   = 1
)

// Store statuses
const (
	StoreInactive = 0
	StoreActive   = 1
)

// Product is a sellable item scoped to a store.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	StoreID     int64           `db:"store_id" json:"storeId"`
	Name        string          `db:"name" json:"name"`
	Slug        string          `db:"slug" json:"slug"`
	Description *string         `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	ImageURL    *string         `db:"image_url" json:"imageUrl"`
	Status      int             `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// Customer is a buyer of one store, keyed by phone within that store.
type Customer struct {
	ID        int64     `db:"id" json:"id"`
	StoreID   int64     `db:"store_id" json:"storeId"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	Email     *string   `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusDelivered = "DELIVERED"
)

// Payment modes
const (
	PaymentModeUPI = "UPI"
	PaymentModeCOD = "COD"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled, OrderStatusDelivered:
		return true
	}
	return false
}

// ValidPaymentMode reports whether m is UPI or COD.
func ValidPaymentMode(m string) bool {
	return m == PaymentModeUPI || m == PaymentModeCOD
}

// Order is a snapshot purchase with its line items.
type Order struct {
	ID               int64           `db:"id" json:"id"`
	StoreID          int64           `db:"store_id" json:"storeId"`
	CustomerID       int64           `db:"customer_id" json:"customerId"`
	OrderNumber      string          `db:"order_number" json:"orderNumber"`
	TotalAmount      decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Status           string          `db:"status" json:"status"`
	PaymentMode      string          `db:"payment_mode" json:"paymentMode"`
	PaymentReference *string         `db:"payment_reference" json:"paymentReference"`
	PlacedAt         time.Time       `db:"placed_at" json:"placedAt"`
	DeliveredAt      *time.Time      `db:"delivered_at" json:"deliveredAt"`
	DeliveryNote     *string         `db:"delivery_note" json:"deliveryNote"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`

	Items    []OrderItem `db:"-" json:"items,omitempty"`
	Customer *Customer   `db:"-" json:"customer,omitempty"`
}

// OrderItem is one line of an order. PriceTotal is frozen at placement.
type OrderItem struct {
	ID         int64           `db:"id" json:"id"`
	OrderID    int64           `db:"order_id" json:"orderId"`
	ProductID  int64           `db:"product_id" json:"productId"`
	Quantity   int             `db:"quantity" json:"quantity"`
	PriceTotal decimal.Decimal `db:"price_total" json:"priceTotal"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`

	Product *Product `db:"-" json:"product,omitempty"`
}

// OrderEvent is one entry of an order's audit trail. Payload is the event
// as published and is rendered as a JSON object, not a string.
type OrderEvent struct {
	EventID    string         `db:"event_id" json:"eventId"`
	OrderID    int64          `db:"order_id" json:"orderId"`
	EventType  string         `db:"event_type" json:"eventType"`
	Payload    types.JSONText `db:"payload" json:"payload"`
	RecordedAt time.Time      `db:"recorded_at" json:"recordedAt"`
}
