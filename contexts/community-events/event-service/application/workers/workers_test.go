package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"communitypulse/contexts/community-events/event-service/adapters/memory"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	"communitypulse/contexts/community-events/event-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []ports.EventEnvelope
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func approved(eventID string, offset time.Duration) entities.Event {
	return entities.Event{
		EventID:      eventID,
		OrganizerID:  "organizer-1",
		Title:        "Event " + eventID,
		Category:     entities.CategoryArt,
		Location:     "Gallery",
		Date:         testNow.Add(offset),
		MaxAttendees: 10,
		Status:       entities.EventStatusApproved,
	}
}

func TestReminderSchedulerQueuesEachEventOnce(t *testing.T) {
	pending := approved("pending", 2*time.Hour)
	pending.Status = entities.EventStatusPending
	store := memory.NewStore([]entities.Event{
		approved("soon", 2*time.Hour),
		approved("far", 72*time.Hour),
		approved("past", -2*time.Hour),
		pending,
	})
	scheduler := ReminderScheduler{
		Reminders: store,
		Clock:     fixedClock{now: testNow},
		IDGen:     store,
		Window:    24 * time.Hour,
	}
	ctx := context.Background()

	require.NoError(t, scheduler.RunOnce(ctx))
	require.NoError(t, scheduler.RunOnce(ctx))

	outbox, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, outbox, 1)
	assert.Equal(t, EventTypeReminderDue, outbox[0].EventType)
	assert.Equal(t, "soon", outbox[0].PartitionKey)

	view, err := store.GetEventView(ctx, "soon")
	require.NoError(t, err)
	assert.NotNil(t, view.Event.ReminderQueuedAt)
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore([]entities.Event{approved("soon", time.Hour)})
	ctx := context.Background()
	require.NoError(t, ReminderScheduler{Reminders: store, Clock: fixedClock{now: testNow}, IDGen: store}.RunOnce(ctx))

	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: fixedClock{now: testNow}}
	require.NoError(t, relay.RunOnce(ctx))
	require.NoError(t, relay.RunOnce(ctx))

	assert.Equal(t, []string{"communitypulse.event.reminder_due"}, publisher.topics)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "soon", publisher.events[0].PartitionKey)

	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRelayKeepsRowsWhenPublishFails(t *testing.T) {
	store := memory.NewStore([]entities.Event{approved("soon", time.Hour)})
	ctx := context.Background()
	require.NoError(t, ReminderScheduler{Reminders: store, Clock: fixedClock{now: testNow}, IDGen: store}.RunOnce(ctx))

	relay := OutboxRelay{Outbox: store, Publisher: &recordingPublisher{err: errors.New("bus down")}}
	assert.Error(t, relay.RunOnce(ctx))

	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
