package worker

import (
	"context"
	"encoding/json"
	"log"

	"cart-service/internal/broker"
	"cart-service/internal/models"
	"cart-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NotificationWorker consumes notification events and renders them. It
// stands in for the storefront toast layer: messages are delivered to the
// structured log.
type NotificationWorker struct {
	consumer *broker.Consumer
	logger   *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer) *NotificationWorker {
	return &NotificationWorker{
		consumer: consumer,
		logger:   util.ComponentLogger("notifications"),
	}
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")

	return w.consumer.StartConsuming(ctx, func(ctx context.Context, msg kafka.Message) error {
		var event models.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("Failed to unmarshal notification: %v", err)
			return err
		}

		w.logger.Info("Notification",
			zap.String("session_id", event.SessionID),
			zap.String("title", event.Title),
			zap.String("description", event.Description),
			zap.String("style", event.StyleHint))
		return nil
	})
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

// OrderAuditWorker consumes checkout outcome events and keeps the order
// audit trail in the log. There is no server-side order storage; the event
// stream is the record.
type OrderAuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewOrderAuditWorker creates a new order audit worker
func NewOrderAuditWorker(consumer *broker.Consumer) *OrderAuditWorker {
	w := &OrderAuditWorker{
		consumer: consumer,
		logger:   util.ComponentLogger("audit"),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnCheckoutSucceeded(w.handleCheckoutSucceeded)
	eventHandler.OnCheckoutFailed(w.handleCheckoutFailed)
	w.eventHandler = eventHandler

	return w
}

func (w *OrderAuditWorker) handleCheckoutSucceeded(ctx context.Context, event *models.CheckoutSucceededEvent) error {
	w.logger.Info("Order audit: checkout succeeded",
		zap.String("order_reference", event.OrderReference),
		zap.String("payment_ref", event.PaymentRef),
		zap.Int64("amount_paise", event.AmountPaise),
		zap.String("currency", event.Currency))
	return nil
}

func (w *OrderAuditWorker) handleCheckoutFailed(ctx context.Context, event *models.CheckoutFailedEvent) error {
	w.logger.Warn("Order audit: checkout failed",
		zap.String("order_reference", event.OrderReference),
		zap.String("reason", event.Reason))
	return nil
}

// Start starts the worker
func (w *OrderAuditWorker) Start(ctx context.Context) error {
	log.Println("Starting order audit worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *OrderAuditWorker) Stop() error {
	log.Println("Stopping order audit worker...")
	return w.consumer.Close()
}
