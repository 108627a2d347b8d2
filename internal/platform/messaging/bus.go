package messaging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	contractsv1 "communitypulse/contracts/gen/events/v1"
)

type Handler func(context.Context, contractsv1.Envelope) error

// Subscriber attaches a handler to a topic until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error
}

const memberBuffer = 128

type member struct {
	inbox chan contractsv1.Envelope
}

// group delivers each envelope to one member, rotating between them.
type group struct {
	members []*member
	next    int
}

// Bus is the in-process broker used when no Redis URL is configured. Every
// consumer group on a topic sees each envelope once; within a group delivery
// rotates between members. A group whose members are all backed up drops the
// envelope instead of blocking the publisher.
type Bus struct {
	mu     sync.Mutex
	topics map[string]map[string]*group
	wg     sync.WaitGroup
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		topics: make(map[string]map[string]*group),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	delivered, dropped := 0, 0
	for name, g := range b.topics[topic] {
		if g.offer(event) {
			delivered++
			continue
		}
		dropped++
		b.logger.Warn("consumer group backed up; envelope dropped",
			"event", "bus_publish_drop",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", name,
			"event_id", event.EventID,
		)
	}
	b.mu.Unlock()

	b.logger.Debug("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"groups_delivered", delivered,
		"groups_dropped", dropped,
	)
	return nil
}

// offer must be called with the bus lock held.
func (g *group) offer(event contractsv1.Envelope) bool {
	for range g.members {
		candidate := g.members[g.next%len(g.members)]
		g.next = (g.next + 1) % len(g.members)
		select {
		case candidate.inbox <- event:
			return true
		default:
		}
	}
	return false
}

// Subscribe joins consumerGroup on topic and runs handler for each delivered
// envelope until ctx is cancelled. Handler errors are logged, not retried.
func (b *Bus) Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("subscribe: topic is required")
	}
	if handler == nil {
		return errors.New("subscribe: handler is required")
	}
	if consumerGroup = strings.TrimSpace(consumerGroup); consumerGroup == "" {
		consumerGroup = "default"
	}

	m := &member{inbox: make(chan contractsv1.Envelope, memberBuffer)}
	b.join(topic, consumerGroup, m)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.leave(topic, consumerGroup, m)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-m.inbox:
				b.consume(ctx, topic, consumerGroup, handler, event)
			}
		}
	}()
	return nil
}

// Wait blocks until every subscription has stopped.
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) consume(ctx context.Context, topic, consumerGroup string, handler Handler, event contractsv1.Envelope) {
	if err := handler(ctx, event); err != nil {
		b.logger.Error("consumer handler failed",
			"event", "bus_consume_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", consumerGroup,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
	}
}

func (b *Bus) join(topic, consumerGroup string, m *member) {
	b.mu.Lock()
	defer b.mu.Unlock()
	groups, ok := b.topics[topic]
	if !ok {
		groups = make(map[string]*group)
		b.topics[topic] = groups
	}
	g, ok := groups[consumerGroup]
	if !ok {
		g = &group{}
		groups[consumerGroup] = g
	}
	g.members = append(g.members, m)
}

func (b *Bus) leave(topic, consumerGroup string, m *member) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.topics[topic][consumerGroup]
	if g == nil {
		return
	}
	kept := g.members[:0]
	for _, item := range g.members {
		if item != m {
			kept = append(kept, item)
		}
	}
	g.members = kept
	if len(g.members) == 0 {
		delete(b.topics[topic], consumerGroup)
		if len(b.topics[topic]) == 0 {
			delete(b.topics, topic)
		}
		return
	}
	g.next %= len(g.members)
}

var _ Subscriber = (*Bus)(nil)
