package worker

import (
	"context"
	"fmt"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
)

// EventRecorder appends to an order's audit trail, ignoring replays.
type EventRecorder interface {
	RecordOrderEvent(ctx context.Context, ev *models.OrderEvent) (bool, error)
}

// OrderAuditWorker consumes order events and writes each one to the
// order_events audit table exactly once.
type OrderAuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	recorder     EventRecorder
	logger       *zap.Logger
}

// NewOrderAuditWorker creates a new audit worker. consumer may be nil when
// messages are fed through Handler directly.
func NewOrderAuditWorker(consumer *broker.Consumer, recorder EventRecorder) *OrderAuditWorker {
	w := &OrderAuditWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		recorder:     recorder,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnOrderPlaced(func(ctx context.Context, e *models.OrderPlacedEvent, raw []byte) error {
		return w.record(ctx, e.BaseEvent, e.OrderID, raw)
	})
	w.eventHandler.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent, raw []byte) error {
		return w.record(ctx, e.BaseEvent, e.OrderID, raw)
	})

	return w
}

// Handler exposes the message routing used by Start.
func (w *OrderAuditWorker) Handler() broker.MessageHandler {
	return w.eventHandler.HandleMessage
}

func (w *OrderAuditWorker) record(ctx context.Context, base models.BaseEvent, orderID int64, raw []byte) error {
	ctx, span := util.StartSpan(ctx, "OrderAuditWorker.record")
	defer span.End()

	if base.EventID == "" || orderID == 0 {
		w.logger.Warn("Dropping malformed order event",
			zap.String("event_type", base.EventType),
			zap.Int64("order_id", orderID))
		return nil
	}

	ev := &models.OrderEvent{
		EventID:   base.EventID,
		OrderID:   orderID,
		EventType: base.EventType,
		Payload:   types.JSONText(raw),
	}
	if !base.Timestamp.IsZero() {
		ev.RecordedAt = base.Timestamp.UTC()
	}

	inserted, err := w.recorder.RecordOrderEvent(ctx, ev)
	if err != nil {
		return fmt.Errorf("failed to record event %s: %w", base.EventID, err)
	}
	if !inserted {
		w.logger.Info("Event already recorded", zap.String("event_id", base.EventID))
		return nil
	}

	util.OrderEventsRecordedTotal.WithLabelValues(base.EventType).Inc()
	w.logger.Info("Order event recorded",
		zap.String("event_id", base.EventID),
		zap.String("event_type", base.EventType),
		zap.Int64("order_id", orderID))
	return nil
}

// Start consumes until ctx is cancelled
func (w *OrderAuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting order audit worker")
	return w.consumer.StartConsuming(ctx, w.Handler())
}

// Stop stops the worker
func (w *OrderAuditWorker) Stop() error {
	w.logger.Info("Stopping order audit worker")
	return w.consumer.Close()
}
