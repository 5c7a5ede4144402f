package notify

import (
	"context"
	"time"

	"cart-service/internal/broker"
	"cart-service/internal/models"
	"cart-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification is a human-readable status message for the external sink.
type Notification struct {
	Title        string
	Description  string
	DurationHint int
	StyleHint    string
}

// Notifier delivers notifications to the external sink. Delivery is
// fire-and-forget: it must never block or fail the operation it accompanies.
type Notifier interface {
	Push(ctx context.Context, sessionID string, n Notification)
}

// KafkaNotifier publishes notifications to the notification topic.
type KafkaNotifier struct {
	producer *broker.Producer
	logger   *zap.Logger
}

// NewKafkaNotifier creates a Kafka-backed notifier
func NewKafkaNotifier(producer *broker.Producer) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		logger:   util.ComponentLogger("notify"),
	}
}

// Push publishes the notification. Publish errors are logged and swallowed.
func (kn *KafkaNotifier) Push(ctx context.Context, sessionID string, n Notification) {
	event := &models.NotificationEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeNotification,
			Timestamp: time.Now(),
		},
		SessionID:    sessionID,
		Title:        n.Title,
		Description:  n.Description,
		DurationHint: n.DurationHint,
		StyleHint:    n.StyleHint,
	}

	if err := kn.producer.PublishEvent(ctx, sessionID, event); err != nil {
		kn.logger.Warn("Failed to publish notification",
			zap.String("session_id", sessionID),
			zap.String("title", n.Title),
			zap.Error(err))
		return
	}

	util.NotificationsPublishedTotal.Inc()
}
