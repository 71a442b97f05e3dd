package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store/storetest"
	"storefront-service/internal/util"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (sh *shop) orderRequest(items ...OrderItemRequest) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		CustomerID:  sh.customer.ID,
		StoreID:     sh.st.ID,
		Items:       items,
		TotalAmount: decimal.RequireFromString("21.00"),
		PaymentMode: models.PaymentModeCOD,
	}
}

func item(productID int64, qty int, price string) OrderItemRequest {
	return OrderItemRequest{ProductID: productID, Quantity: qty, Price: decimal.RequireFromString(price)}
}

func TestPlaceOrderWritesOrderAndItems(t *testing.T) {
	sh := newShop(t)
	pub := &recordingPublisher{}
	svc := NewOrderService(sh.store, pub)

	order, err := svc.PlaceOrder(context.Background(), sh.orderRequest(
		item(sh.tea.ID, 2, "4.50"),
		item(sh.coffee.ID, 1, "12.00"),
	))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-[0-9A-F]{6}$`), order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.True(t, decimal.RequireFromString("9.00").Equal(order.Items[0].PriceTotal))
	assert.True(t, decimal.RequireFromString("12.00").Equal(order.Items[1].PriceTotal))
	require.NotNil(t, order.Customer)
	assert.Equal(t, sh.customer.ID, order.Customer.ID)

	assert.Equal(t, 1, storetest.Count(t, sh.store, "orders"))
	assert.Equal(t, 2, storetest.Count(t, sh.store, "order_items"))

	require.Len(t, pub.placed, 1)
	assert.Equal(t, order.ID, pub.placed[0].OrderID)
	assert.Equal(t, models.EventTypeOrderPlaced, pub.placed[0].EventType)
	assert.Len(t, pub.placed[0].Items, 2)
}

func TestPlaceOrderRollsBackOnForeignProduct(t *testing.T) {
	sh := newShop(t)
	other := storetest.Store(t, sh.store, sh.seller.ID, "other-shop")
	foreign := storetest.Product(t, sh.store, other.ID, "foreign", "1.00")
	pub := &recordingPublisher{}
	svc := NewOrderService(sh.store, pub)

	tests := []struct {
		name  string
		items []OrderItemRequest
	}{
		{"other store", []OrderItemRequest{item(sh.tea.ID, 1, "4.50"), item(foreign.ID, 1, "1.00")}},
		{"nonexistent", []OrderItemRequest{item(sh.tea.ID, 1, "4.50"), item(99999, 1, "1.00")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), sh.orderRequest(tt.items...))
			assertStatus(t, err, http.StatusBadRequest, "Invalid product(s) in order")

			assert.Equal(t, 0, storetest.Count(t, sh.store, "orders"))
			assert.Equal(t, 0, storetest.Count(t, sh.store, "order_items"))
		})
	}
	assert.Empty(t, pub.placed)
}

func TestPlaceOrderRepeatedProductAcrossLines(t *testing.T) {
	sh := newShop(t)
	svc := NewOrderService(sh.store, &recordingPublisher{})

	order, err := svc.PlaceOrder(context.Background(), sh.orderRequest(
		item(sh.tea.ID, 1, "4.50"),
		item(sh.tea.ID, 3, "4.50"),
	))
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
}

func TestPlaceOrderValidation(t *testing.T) {
	sh := newShop(t)
	svc := NewOrderService(sh.store, &recordingPublisher{})

	tests := []struct {
		name   string
		mutate func(*PlaceOrderRequest)
		msg    string
	}{
		{"no items", func(r *PlaceOrderRequest) { r.Items = nil }, "Missing required fields"},
		{"no store", func(r *PlaceOrderRequest) { r.StoreID = 0 }, "Missing required fields"},
		{"no customer", func(r *PlaceOrderRequest) { r.CustomerID = 0 }, "Missing required fields"},
		{"zero total", func(r *PlaceOrderRequest) { r.TotalAmount = decimal.Zero }, "Missing required fields"},
		{"no payment mode", func(r *PlaceOrderRequest) { r.PaymentMode = "" }, "Missing required fields"},
		{"bad payment mode", func(r *PlaceOrderRequest) { r.PaymentMode = "CARD" }, "Invalid payment mode"},
		{"bad status", func(r *PlaceOrderRequest) { r.Status = "LOST" }, "Invalid order status"},
		{"zero quantity", func(r *PlaceOrderRequest) { r.Items[0].Quantity = 0 }, "Invalid order item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sh.orderRequest(item(sh.tea.ID, 1, "4.50"))
			tt.mutate(req)

			_, err := svc.PlaceOrder(context.Background(), req)
			assertStatus(t, err, http.StatusBadRequest, tt.msg)
		})
	}
	assert.Equal(t, 0, storetest.Count(t, sh.store, "orders"))
}

func TestPlaceOrderStatusOverride(t *testing.T) {
	sh := newShop(t)
	svc := NewOrderService(sh.store, &recordingPublisher{})

	req := sh.orderRequest(item(sh.tea.ID, 1, "4.50"))
	req.Status = models.OrderStatusPaid
	ref := "UPI-REF-1"
	req.PaymentReference = &ref

	order, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaymentReference)
	assert.Equal(t, ref, *order.PaymentReference)
}

func TestPlaceOrderUnknownCustomer(t *testing.T) {
	sh := newShop(t)
	svc := NewOrderService(sh.store, &recordingPublisher{})

	req := sh.orderRequest(item(sh.tea.ID, 1, "4.50"))
	req.CustomerID = 424242

	_, err := svc.PlaceOrder(context.Background(), req)
	assertStatus(t, err, http.StatusBadRequest, "")
	assert.Equal(t, 0, storetest.Count(t, sh.store, "orders"))
}

func TestPlaceOrderPublishFailureIsNotFatal(t *testing.T) {
	sh := newShop(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewOrderService(sh.store, pub)

	order, err := svc.PlaceOrder(context.Background(), sh.orderRequest(item(sh.tea.ID, 1, "4.50")))
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Len(t, pub.placed, 1)
}

func TestPriceTotalIsSnapshot(t *testing.T) {
	sh := newShop(t)
	svc := NewOrderService(sh.store, &recordingPublisher{})
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, sh.orderRequest(item(sh.coffee.ID, 2, "12.00")))
	require.NoError(t, err)

	products := NewProductService(sh.store)
	price := decimal.RequireFromString("99.99")
	_, err = products.Update(ctx, sh.seller.ID, sh.coffee.ID, &UpdateProductRequest{Price: &price})
	require.NoError(t, err)

	again, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.True(t, decimal.RequireFromString("24.00").Equal(again.Items[0].PriceTotal))
	require.NotNil(t, again.Items[0].Product)
	assert.True(t, price.Equal(again.Items[0].Product.Price))
}

func TestListOrdersPagination(t *testing.T) {
	sh := newShop(t)
	svc := NewOrderService(sh.store, &recordingPublisher{})
	ctx := context.Background()

	second := storetest.Customer(t, sh.store, sh.st.ID, "9100000002")

	var placed []int64
	for i := 0; i < 11; i++ {
		req := sh.orderRequest(item(sh.tea.ID, 1, "4.50"))
		if i%2 == 1 {
			req.CustomerID = second.ID
			req.Status = models.OrderStatusShipped
		}
		order, err := svc.PlaceOrder(ctx, req)
		require.NoError(t, err)
		placed = append(placed, order.ID)
	}

	page, err := svc.ListOrders(ctx, OrderQuery{StoreID: sh.st.ID}, util.NewPageRequest(1, 9))
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Data, 9)
	assert.Equal(t, placed[10], page.Data[0].ID)
	for i := 1; i < len(page.Data); i++ {
		assert.False(t, page.Data[i].PlacedAt.After(page.Data[i-1].PlacedAt))
	}
	assert.NotNil(t, page.Data[0].Customer)
	require.Len(t, page.Data[0].Items, 1)
	assert.NotNil(t, page.Data[0].Items[0].Product)

	page, err = svc.ListOrders(ctx, OrderQuery{StoreID: sh.st.ID}, util.NewPageRequest(2, 9))
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, placed[0], page.Data[1].ID)

	page, err = svc.ListOrders(ctx, OrderQuery{StoreID: sh.st.ID, Status: models.OrderStatusShipped}, util.NewPageRequest(1, 9))
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Pagination.Total)

	page, err = svc.ListOrders(ctx, OrderQuery{StoreID: sh.st.ID, CustomerID: sh.customer.ID}, util.NewPageRequest(1, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	for _, o := range page.Data {
		assert.Equal(t, sh.customer.ID, o.CustomerID)
	}

	_, err = svc.ListOrders(ctx, OrderQuery{StoreID: sh.st.ID, Status: "LOST"}, util.NewPageRequest(1, 9))
	assertStatus(t, err, http.StatusBadRequest, "Invalid order status")
}

func TestUpdateOrderStatus(t *testing.T) {
	sh := newShop(t)
	pub := &recordingPublisher{}
	svc := NewOrderService(sh.store, pub)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, sh.orderRequest(item(sh.tea.ID, 1, "4.50")))
	require.NoError(t, err)

	shipped, err := svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, shipped.Status)
	assert.Nil(t, shipped.DeliveredAt)

	delivered, err := svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	require.Len(t, pub.changed, 2)
	assert.Equal(t, models.OrderStatusDelivered, pub.changed[1].Status)
	assert.NotNil(t, pub.changed[1].DeliveredAt)

	_, err = svc.UpdateOrderStatus(ctx, order.ID, "LOST")
	assertStatus(t, err, http.StatusBadRequest, "Invalid order status")

	_, err = svc.UpdateOrderStatus(ctx, 777, models.OrderStatusPaid)
	assertStatus(t, err, http.StatusNotFound, "Order not found")
}

func TestGetOrderAndEvents(t *testing.T) {
	sh := newShop(t)
	svc := NewOrderService(sh.store, &recordingPublisher{})
	ctx := context.Background()

	_, err := svc.GetOrder(ctx, 1)
	assertStatus(t, err, http.StatusNotFound, "Order not found")
	_, err = svc.ListOrderEvents(ctx, 1)
	assertStatus(t, err, http.StatusNotFound, "Order not found")

	order, err := svc.PlaceOrder(ctx, sh.orderRequest(item(sh.tea.ID, 1, "4.50")))
	require.NoError(t, err)

	_, err = sh.store.RecordOrderEvent(ctx, &models.OrderEvent{
		EventID:   "evt-1",
		OrderID:   order.ID,
		EventType: models.EventTypeOrderPlaced,
		Payload:   types.JSONText(`{"orderId":1}`),
	})
	require.NoError(t, err)

	events, err := svc.ListOrderEvents(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt-1", events[0].EventID)

	body, err := json.Marshal(events[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"payload":{"orderId":1}`)
}
