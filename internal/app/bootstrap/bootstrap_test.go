package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	eventmemory "communitypulse/contexts/community-events/event-service/adapters/memory"
	eventcommands "communitypulse/contexts/community-events/event-service/application/commands"
	eventworkers "communitypulse/contexts/community-events/event-service/application/workers"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	eventports "communitypulse/contexts/community-events/event-service/ports"
	identityv1 "communitypulse/contracts/identity/v1"
	"communitypulse/internal/platform/config"
	"communitypulse/internal/platform/monitoring"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ eventports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.JWTSecret = "bootstrap-test-secret"
	cfg.LogFormat = "text"
	cfg.LogLevel = "error"
	cfg.WorkerPollInterval = 10 * time.Millisecond
	return cfg
}

func TestBuildAPIInMemoryWiresWorkersAndHealth(t *testing.T) {
	app, err := BuildAPI(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.NotNil(t, app.workers)
	assert.Nil(t, app.postgres)
	assert.Nil(t, app.redis)

	rec := httptest.NewRecorder()
	app.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildWorkerRequiresPostgres(t *testing.T) {
	_, err := BuildWorker(context.Background(), testConfig())
	assert.Error(t, err)
}

func TestWorkersQueueAndRelayReminders(t *testing.T) {
	store := eventmemory.NewStore([]entities.Event{{
		EventID:      "soon",
		OrganizerID:  "organizer-1",
		Title:        "Book swap",
		Category:     entities.CategoryEducation,
		Location:     "Library",
		Date:         time.Now().UTC().Add(time.Hour),
		MaxAttendees: 20,
		Status:       entities.EventStatusApproved,
	}})
	publisher := &recordingPublisher{}
	cfg := testConfig()
	workers := newWorkers(cfg, components{events: store, clock: store, idGen: store}, publisher, nil, nil, NewLogger(cfg, "test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- workers.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(publisher.published()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"communitypulse.event.reminder_due"}, publisher.published())
}

type recordingSender struct {
	mu   sync.Mutex
	sent []eventports.Notification
}

func (s *recordingSender) Send(_ context.Context, notification eventports.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, notification)
	return nil
}

func (s *recordingSender) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]string, 0, len(s.sent))
	for _, item := range s.sent {
		kinds = append(kinds, item.Kind+"/"+string(item.Channel))
	}
	return kinds
}

func TestWorkersDispatchNotificationsFromRelayedEnvelopes(t *testing.T) {
	store := eventmemory.NewStore([]entities.Event{{
		EventID:      "soon",
		OrganizerID:  "organizer-1",
		Title:        "Book swap",
		Category:     entities.CategoryEducation,
		Location:     "Library",
		Date:         time.Now().UTC().Add(time.Hour),
		MaxAttendees: 20,
		Status:       entities.EventStatusApproved,
	}})
	rsvps := eventcommands.RSVPUseCase{RSVPs: store, Clock: store, IDGen: store}
	_, err := rsvps.RequestRSVP(context.Background(), identityv1.User("user-1", false), eventcommands.RequestRSVPCommand{
		EventID:       "soon",
		Name:          "Reader",
		Email:         "reader@example.com",
		Phone:         "555-0199",
		AttendeeCount: 1,
	})
	require.NoError(t, err)

	cfg := testConfig()
	logger := NewLogger(cfg, "test")
	publisher, subscriber := newMessaging(nil, logger)
	sender := &recordingSender{}
	workers := newWorkers(cfg, components{events: store, clock: store, idGen: store}, publisher, subscriber, sender, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- workers.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(sender.kinds()) == 4
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.ElementsMatch(t, []string{
		eventworkers.NotificationRSVPConfirmation + "/email",
		eventworkers.NotificationRSVPConfirmation + "/sms",
		eventworkers.NotificationEventReminder + "/email",
		eventworkers.NotificationEventReminder + "/sms",
	}, sender.kinds())
}

func TestObservedPublisherCountsOutcomes(t *testing.T) {
	metrics := monitoring.New()
	ok := observedPublisher{next: &recordingPublisher{}, metrics: metrics}
	failing := observedPublisher{next: &recordingPublisher{err: errors.New("down")}, metrics: metrics}
	ctx := context.Background()

	require.NoError(t, ok.Publish(ctx, "communitypulse.event.approved", eventports.EventEnvelope{}))
	require.Error(t, failing.Publish(ctx, "communitypulse.event.approved", eventports.EventEnvelope{}))

	count, err := testutil.GatherAndCount(metrics.Registry(), "communitypulse_outbox_messages_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
