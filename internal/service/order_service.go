package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles order placement and the order lifecycle
type OrderService struct {
	store  *store.Store
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, events EventPublisher) *OrderService {
	return &OrderService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrderRequest is a checkout as submitted by the storefront. Item
// prices are unit prices.
type PlaceOrderRequest struct {
	CustomerID       int64              `json:"customerId"`
	StoreID          int64              `json:"storeId"`
	Items            []OrderItemRequest `json:"items"`
	TotalAmount      decimal.Decimal    `json:"totalAmount"`
	PaymentMode      string             `json:"paymentMode"`
	PaymentReference *string            `json:"paymentReference"`
	Status           string             `json:"status"`
	DeliveryNote     *string            `json:"deliveryNote"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (r *PlaceOrderRequest) validate() error {
	if r.CustomerID == 0 || r.StoreID == 0 || len(r.Items) == 0 || r.TotalAmount.IsZero() || r.PaymentMode == "" {
		return apperr.BadRequest("Missing required fields")
	}
	if r.TotalAmount.IsNegative() {
		return apperr.BadRequest("Invalid total amount")
	}
	if !models.ValidPaymentMode(r.PaymentMode) {
		return apperr.BadRequest("Invalid payment mode")
	}
	if r.Status != "" && !models.ValidOrderStatus(r.Status) {
		return apperr.BadRequest("Invalid order status")
	}
	for _, item := range r.Items {
		if item.ProductID == 0 || item.Quantity < 1 || item.Price.IsNegative() {
			return apperr.BadRequest("Invalid order item")
		}
	}
	return nil
}

// distinctProductIDs returns the requested product ids without repeats, in
// first-seen order.
func (r *PlaceOrderRequest) distinctProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(r.Items))
	ids := make([]int64, 0, len(r.Items))
	for _, item := range r.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// PlaceOrder writes the order and all of its items in one transaction.
// Either the whole order is stored or nothing is.
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if err := req.validate(); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	status := models.OrderStatusPending
	if req.Status != "" {
		status = req.Status
	}

	order := &models.Order{
		StoreID:          req.StoreID,
		CustomerID:       req.CustomerID,
		OrderNumber:      newOrderNumber(s.now()),
		TotalAmount:      req.TotalAmount,
		Status:           status,
		PaymentMode:      req.PaymentMode,
		PaymentReference: strOrNil(req.PaymentReference),
		DeliveryNote:     strOrNil(req.DeliveryNote),
	}

	items := make([]models.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = models.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceTotal: item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
	}

	start := time.Now()
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		ids := req.distinctProductIDs()
		matched, err := tx.CountStoreProducts(ctx, order.StoreID, ids)
		if err != nil {
			return fmt.Errorf("failed to validate products: %w", err)
		}
		if matched != len(ids) {
			return apperr.BadRequest("Invalid product(s) in order")
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		return nil
	})
	util.OrderPlacementLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Warn("Order placement rolled back",
			zap.Int64("store_id", req.StoreID),
			zap.Int64("customer_id", req.CustomerID),
			zap.Error(err))
		return nil, s.placementErr(err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(items)))

	placed, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.publishPlaced(ctx, placed)
	return placed, nil
}

func (s *OrderService) placementErr(err error) error {
	if ae := apperr.From(err); ae != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return ae
	}

	switch {
	case errors.Is(err, store.ErrDuplicate):
		util.OrdersFailedTotal.WithLabelValues("duplicate").Inc()
		return apperr.Wrap(http.StatusConflict, "Order number already exists", err)
	case errors.Is(err, store.ErrForeignKey), errors.Is(err, store.ErrCheck):
		util.OrdersFailedTotal.WithLabelValues("invalid_reference").Inc()
		return apperr.Wrap(http.StatusBadRequest, "Invalid store or customer", err)
	}

	util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
	return apperr.Internal(err)
}

func (s *OrderService) publishPlaced(ctx context.Context, order *models.Order) {
	data := make([]models.OrderItemData, len(order.Items))
	for i, item := range order.Items {
		data[i] = models.OrderItemData{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceTotal: item.PriceTotal,
		}
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: s.now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		StoreID:     order.StoreID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		PaymentMode: order.PaymentMode,
		Items:       data,
	}

	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		util.OrderEventsPublishFailed.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish OrderPlaced event",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, lookupErr(err, "Order not found")
	}

	orders := []models.Order{*order}
	if err := s.expand(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// OrderQuery selects the orders of one store, optionally narrowed by
// status or customer.
type OrderQuery struct {
	StoreID    int64
	Status     string
	CustomerID int64
}

// ListOrders returns a page of a store's orders, newest first, each with
// its items, their products and the customer.
func (s *OrderService) ListOrders(ctx context.Context, q OrderQuery, page util.PageRequest) (*Page[models.Order], error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	if q.StoreID == 0 {
		return nil, apperr.BadRequest("storeId is required")
	}
	if q.Status != "" && !models.ValidOrderStatus(q.Status) {
		return nil, apperr.BadRequest("Invalid order status")
	}

	orders, total, err := s.store.ListOrders(ctx, store.OrderFilter{
		StoreID:    q.StoreID,
		Status:     q.Status,
		CustomerID: q.CustomerID,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list orders: %w", err))
	}

	if err := s.expand(ctx, orders); err != nil {
		return nil, err
	}

	return &Page[models.Order]{Data: orders, Pagination: page.Paginate(total)}, nil
}

// expand attaches items, item products and customers to orders in place.
func (s *OrderService) expand(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]int64, len(orders))
	customerIDs := make([]int64, 0, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
		customerIDs = append(customerIDs, o.CustomerID)
	}

	items, err := s.store.GetOrderItemsByOrderIDs(ctx, orderIDs)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to load order items: %w", err))
	}

	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to load products: %w", err))
	}
	productMap := make(map[int64]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	customers, err := s.store.GetCustomersByIDs(ctx, customerIDs)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to load customers: %w", err))
	}
	customerMap := make(map[int64]*models.Customer, len(customers))
	for i := range customers {
		customerMap[customers[i].ID] = &customers[i]
	}

	itemsByOrder := make(map[int64][]models.OrderItem, len(orders))
	for _, item := range items {
		item.Product = productMap[item.ProductID]
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
		orders[i].Customer = customerMap[orders[i].CustomerID]
	}
	return nil
}

// UpdateOrderStatus moves an order to status. DELIVERED also stamps the
// delivery time.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if !models.ValidOrderStatus(status) {
		return nil, apperr.BadRequest("Invalid order status")
	}

	var deliveredAt *time.Time
	if status == models.OrderStatusDelivered {
		now := s.now()
		deliveredAt = &now
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, status, deliveredAt); err != nil {
		return nil, lookupErr(err, "Order not found")
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", status))

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: s.now(),
		},
		OrderID:     order.ID,
		StoreID:     order.StoreID,
		Status:      order.Status,
		DeliveredAt: order.DeliveredAt,
	}
	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		util.OrderEventsPublishFailed.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish OrderStatusChanged event",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	return order, nil
}

// ListOrderEvents returns the recorded audit trail of an order
func (s *OrderService) ListOrderEvents(ctx context.Context, orderID int64) ([]models.OrderEvent, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrderEvents")
	defer span.End()

	if _, err := s.store.GetOrderByID(ctx, orderID); err != nil {
		return nil, lookupErr(err, "Order not found")
	}

	events, err := s.store.GetOrderEvents(ctx, orderID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to load order events: %w", err))
	}
	return events, nil
}

// newOrderNumber builds ORD-<unix millis>-<6 hex chars>.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
