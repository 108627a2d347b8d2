package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	contractsv1 "communitypulse/contracts/gen/events/v1"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses url and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = 3
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisPublisher relays envelopes to Redis pub/sub, one channel per topic.
type RedisPublisher struct {
	client redis.Cmdable
	logger *slog.Logger
}

func NewRedisPublisher(client redis.Cmdable, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{client: client, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode envelope %s: %w", event.EventID, err)
	}
	receivers, err := p.client.Publish(ctx, topic, string(payload)).Result()
	if err != nil {
		p.logger.Error("redis publish failed",
			"event", "redis_publish_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	p.logger.Info("event published",
		"event", "redis_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"receivers", receivers,
	)
	return nil
}

// RedisSubscriber consumes envelopes from Redis pub/sub. Pub/sub fans out to
// every subscriber, so the consumer group only labels logs; run one
// subscribing process per group.
type RedisSubscriber struct {
	client *redis.Client
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewRedisSubscriber(client *redis.Client, logger *slog.Logger) *RedisSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSubscriber{client: client, logger: logger}
}

// Subscribe returns once Redis confirms the subscription; messages are then
// handled on a background goroutine until ctx is cancelled.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error {
	if handler == nil {
		return errors.New("subscribe: handler is required")
	}
	pubsub := s.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				s.handle(ctx, consumerGroup, msg, handler)
			}
		}
	}()
	return nil
}

// Wait blocks until every subscription has stopped.
func (s *RedisSubscriber) Wait() {
	s.wg.Wait()
}

func (s *RedisSubscriber) handle(ctx context.Context, consumerGroup string, msg *redis.Message, handler Handler) {
	event, err := decodeEnvelope(msg.Payload)
	if err != nil {
		s.logger.Error("redis message decode failed",
			"event", "redis_consume_decode_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", msg.Channel,
			"consumer_group", consumerGroup,
			"error", err.Error(),
		)
		return
	}
	if err := handler(ctx, event); err != nil {
		s.logger.Error("consumer handler failed",
			"event", "redis_consume_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", msg.Channel,
			"consumer_group", consumerGroup,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
	}
}

func decodeEnvelope(payload string) (contractsv1.Envelope, error) {
	var event contractsv1.Envelope
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return contractsv1.Envelope{}, err
	}
	if strings.TrimSpace(event.EventType) == "" {
		return contractsv1.Envelope{}, errors.New("envelope has no event_type")
	}
	return event, nil
}

var _ Subscriber = (*RedisSubscriber)(nil)
