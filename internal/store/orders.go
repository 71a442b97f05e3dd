package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, store_id, customer_id, order_number, total_amount, status, payment_mode,
	payment_reference, placed_at, delivered_at, delivery_note, created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, quantity, price_total, created_at, updated_at`

// CreateOrder inserts the order row
func (t *Tx) CreateOrder(ctx context.Context, order *models.Order) error {
	query := t.tx.Rebind(`
		INSERT INTO orders (store_id, customer_id, order_number, total_amount, status, payment_mode,
			payment_reference, placed_at, delivery_note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	if err := t.tx.GetContext(ctx, &order.ID, query,
		order.StoreID, order.CustomerID, order.OrderNumber, order.TotalAmount, order.Status, order.PaymentMode,
		order.PaymentReference, t.now, order.DeliveryNote, t.now, t.now); err != nil {
		return classify(err)
	}
	order.PlacedAt, order.CreatedAt, order.UpdatedAt = t.now, t.now, t.now
	return nil
}

// CountStoreProducts counts how many of ids are products of storeID.
func (t *Tx) CountStoreProducts(ctx context.Context, storeID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In("SELECT COUNT(*) FROM products WHERE store_id = ? AND id IN (?)", storeID, ids)
	if err != nil {
		return 0, err
	}

	var n int
	err = t.tx.GetContext(ctx, &n, t.tx.Rebind(query), args...)
	return n, err
}

// CreateOrderItems batch-inserts the order's line items
func (t *Tx) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CreatedAt, items[i].UpdatedAt = t.now, t.now
	}

	_, err := t.tx.NamedExecContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price_total, created_at, updated_at)
		VALUES (:order_id, :product_id, :quantity, :price_total, :created_at, :updated_at)`, items)
	return classify(err)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := getOne(ctx, s.db, &order, s.db.Rebind("SELECT "+orderColumns+" FROM orders WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItemsByOrderIDs retrieves the items of several orders
func (s *Store) GetOrderItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []models.OrderItem{}, nil
	}

	query, args, err := sqlx.In("SELECT "+orderItemColumns+" FROM order_items WHERE order_id IN (?) ORDER BY id", orderIDs)
	if err != nil {
		return nil, err
	}

	var items []models.OrderItem
	err = s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...)
	return items, err
}

// OrderFilter narrows a paged order listing. Zero values mean "any".
type OrderFilter struct {
	StoreID    int64
	Status     string
	CustomerID int64
	Limit      int
	Offset     int
}

// ListOrders returns one page of orders, newest placed first, and the
// unpaged total.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	where := []string{"store_id = ?"}
	args := []interface{}{f.StoreID}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.CustomerID != 0 {
		where = append(where, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.db.GetContext(ctx, &total, s.db.Rebind("SELECT COUNT(*) FROM orders WHERE "+cond), args...); err != nil {
		return nil, 0, err
	}

	orders := []models.Order{}
	query := s.db.Rebind("SELECT " + orderColumns + " FROM orders WHERE " + cond +
		" ORDER BY placed_at DESC, id DESC LIMIT ? OFFSET ?")
	if err := s.db.SelectContext(ctx, &orders, query, append(args, f.Limit, f.Offset)...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateOrderStatus sets the status. A non-nil deliveredAt is stamped too;
// a nil one leaves delivered_at untouched.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string, deliveredAt *time.Time) error {
	now := s.now()
	var (
		res sql.Result
		err error
	)

	if deliveredAt != nil {
		res, err = s.db.ExecContext(ctx,
			s.db.Rebind("UPDATE orders SET status = ?, delivered_at = ?, updated_at = ? WHERE id = ?"),
			status, *deliveredAt, now, orderID)
	} else {
		res, err = s.db.ExecContext(ctx,
			s.db.Rebind("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?"),
			status, now, orderID)
	}
	if err != nil {
		return classify(err)
	}
	return expectAffected(res)
}

// RecordOrderEvent appends an event to the order's audit trail. Replays of
// an already recorded event id are ignored; inserted reports which case.
func (s *Store) RecordOrderEvent(ctx context.Context, ev *models.OrderEvent) (inserted bool, err error) {
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO order_events (event_id, order_id, event_type, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`),
		ev.EventID, ev.OrderID, ev.EventType, ev.Payload, ev.RecordedAt)
	if err != nil {
		return false, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetOrderEvents lists an order's audit trail, oldest first
func (s *Store) GetOrderEvents(ctx context.Context, orderID int64) ([]models.OrderEvent, error) {
	events := []models.OrderEvent{}
	err := s.db.SelectContext(ctx, &events, s.db.Rebind(`
		SELECT event_id, order_id, event_type, payload, recorded_at
		FROM order_events WHERE order_id = ? ORDER BY recorded_at, event_id`), orderID)
	return events, err
}
