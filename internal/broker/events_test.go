package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte("order-1"), Value: b}
}

func TestHandleMessageRoutesByType(t *testing.T) {
	eh := NewEventHandler()

	var placed *models.OrderPlacedEvent
	var changed *models.OrderStatusChangedEvent
	var raw []byte
	eh.OnOrderPlaced(func(_ context.Context, e *models.OrderPlacedEvent, body []byte) error {
		placed, raw = e, body
		return nil
	})
	eh.OnOrderStatusChanged(func(_ context.Context, e *models.OrderStatusChangedEvent, _ []byte) error {
		changed = e
		return nil
	})

	msg := message(t, &models.OrderPlacedEvent{
		BaseEvent:   models.BaseEvent{EventID: "e1", EventType: models.EventTypeOrderPlaced, Timestamp: time.Now()},
		OrderID:     1,
		TotalAmount: decimal.RequireFromString("10.50"),
		Items:       []models.OrderItemData{{ProductID: 3, Quantity: 1, PriceTotal: decimal.RequireFromString("10.50")}},
	})
	require.NoError(t, eh.HandleMessage(context.Background(), msg))
	require.NotNil(t, placed)
	assert.Equal(t, "e1", placed.EventID)
	assert.Equal(t, int64(1), placed.OrderID)
	assert.Len(t, placed.Items, 1)
	assert.Equal(t, msg.Value, raw)
	assert.Nil(t, changed)

	msg = message(t, &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypeOrderStatusChanged},
		OrderID:   1,
		Status:    models.OrderStatusShipped,
	})
	require.NoError(t, eh.HandleMessage(context.Background(), msg))
	require.NotNil(t, changed)
	assert.Equal(t, models.OrderStatusShipped, changed.Status)
}

func TestHandleMessageIgnoresUnknownAndRejectsGarbage(t *testing.T) {
	eh := NewEventHandler()

	msg := message(t, &models.BaseEvent{EventID: "x", EventType: "SOMETHING_ELSE"})
	assert.NoError(t, eh.HandleMessage(context.Background(), msg))

	// no handler registered
	msg = message(t, &models.OrderPlacedEvent{BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderPlaced}})
	assert.NoError(t, eh.HandleMessage(context.Background(), msg))

	err := eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}

func TestLogPublisherNeverFails(t *testing.T) {
	lp := NewLogPublisher()
	assert.NoError(t, lp.PublishOrderPlaced(context.Background(), &models.OrderPlacedEvent{OrderID: 1}))
	assert.NoError(t, lp.PublishOrderStatusChanged(context.Background(), &models.OrderStatusChangedEvent{OrderID: 1}))
	assert.Equal(t, "order-42", orderKey(42))
}
