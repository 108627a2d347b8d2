package notifyadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"communitypulse/contexts/community-events/event-service/ports"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueKey is the Redis list an external delivery service drains.
const DefaultQueueKey = "communitypulse:notifications"

// LogSender records notifications in the process log. It stands in for a
// delivery service when no queue is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, notification ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification ready",
		"event", "events_notification_logged",
		"module", "community-events/event-service",
		"layer", "adapter",
		"kind", notification.Kind,
		"channel", string(notification.Channel),
		"event_id", notification.EventID,
		"rsvp_id", notification.RSVPID,
	)
	return nil
}

type queuedNotification struct {
	Kind      string `json:"kind"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	EventID   string `json:"event_id"`
	RSVPID    string `json:"rsvp_id,omitempty"`
}

// RedisQueueSender appends notifications as JSON to a Redis list.
type RedisQueueSender struct {
	client redis.Cmdable
	key    string
}

func NewRedisQueueSender(client redis.Cmdable, key string) *RedisQueueSender {
	if key == "" {
		key = DefaultQueueKey
	}
	return &RedisQueueSender{client: client, key: key}
}

func (s *RedisQueueSender) Send(ctx context.Context, notification ports.Notification) error {
	payload, err := json.Marshal(queuedNotification{
		Kind:      notification.Kind,
		Channel:   string(notification.Channel),
		Recipient: notification.Recipient,
		Subject:   notification.Subject,
		Body:      notification.Body,
		EventID:   notification.EventID,
		RSVPID:    notification.RSVPID,
	})
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.key, string(payload)).Err(); err != nil {
		return fmt.Errorf("queue %s notification: %w", notification.Channel, err)
	}
	return nil
}

var (
	_ ports.NotificationSender = LogSender{}
	_ ports.NotificationSender = (*RedisQueueSender)(nil)
)
