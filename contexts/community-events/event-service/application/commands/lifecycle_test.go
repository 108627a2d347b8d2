package commands

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"communitypulse/contexts/community-events/event-service/adapters/memory"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	identityv1 "communitypulse/contracts/identity/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLifecycleUseCases(clock *fixedClock, seed ...entities.Event) (EventUseCase, RSVPUseCase, *memory.Store) {
	store := memory.NewStore(seed)
	return EventUseCase{Events: store, Clock: clock, IDGen: store},
		RSVPUseCase{RSVPs: store, Clock: clock, IDGen: store},
		store
}

func outboxTypes(t *testing.T, store *memory.Store) []string {
	t.Helper()
	pending, err := store.ListPendingOutbox(context.Background(), 100)
	require.NoError(t, err)
	types := make([]string, 0, len(pending))
	for _, message := range pending {
		types = append(types, message.EventType)
	}
	return types
}

func TestUpdateEventAuthorization(t *testing.T) {
	events, _, _ := newLifecycleUseCases(&fixedClock{now: testNow}, approvedEvent("event-1", 10))
	ctx := context.Background()

	_, err := events.UpdateEvent(ctx, identityv1.Anonymous(), "event-1", validEventCommand())
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = events.UpdateEvent(ctx, identityv1.User("stranger", false), "event-1", validEventCommand())
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = events.UpdateEvent(ctx, identityv1.User("organizer-1", false), "event-missing", validEventCommand())
	assert.ErrorIs(t, err, domainerrors.ErrEventNotFound)

	cmd := validEventCommand()
	cmd.Category = "karaoke"
	_, err = events.UpdateEvent(ctx, identityv1.User("organizer-1", false), "event-1", cmd)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUpdateEventByOrganizerReturnsApprovedEventToReview(t *testing.T) {
	events, _, store := newLifecycleUseCases(&fixedClock{now: testNow}, approvedEvent("event-1", 10))
	ctx := context.Background()

	view, err := events.UpdateEvent(ctx, identityv1.User("organizer-1", false), "event-1", validEventCommand())
	require.NoError(t, err)
	assert.Equal(t, "Jazz night", view.Event.Title)
	assert.Equal(t, entities.CategoryMusic, view.Event.Category)
	assert.Equal(t, entities.EventStatusPending, view.Event.Status)
	assert.Empty(t, view.Event.DecidedBy)
	assert.Nil(t, view.Event.DecidedAt)
	assert.Equal(t, []string{EventTypeEventUpdated}, outboxTypes(t, store))
}

func TestUpdateEventByAdminKeepsStatus(t *testing.T) {
	events, _, _ := newLifecycleUseCases(&fixedClock{now: testNow}, approvedEvent("event-1", 10))

	view, err := events.UpdateEvent(context.Background(), identityv1.User("admin-1", true), "event-1", validEventCommand())
	require.NoError(t, err)
	assert.Equal(t, entities.EventStatusApproved, view.Event.Status)
	assert.Equal(t, 40, view.Event.MaxAttendees)
}

func TestUpdateEventCannotShrinkBelowCommittedSeats(t *testing.T) {
	events, rsvps, _ := newLifecycleUseCases(&fixedClock{now: testNow}, approvedEvent("event-1", 10))
	ctx := context.Background()

	_, err := rsvps.RequestRSVP(ctx, identityv1.User("user-a", false), rsvpFor("event-1", 4))
	require.NoError(t, err)

	cmd := validEventCommand()
	cmd.MaxAttendees = 3
	_, err = events.UpdateEvent(ctx, identityv1.User("organizer-1", false), "event-1", cmd)
	assert.ErrorIs(t, err, domainerrors.ErrCapacityExceeded)

	cmd.MaxAttendees = 4
	view, err := events.UpdateEvent(ctx, identityv1.User("organizer-1", false), "event-1", cmd)
	require.NoError(t, err)
	assert.Equal(t, 4, view.CommittedAttendees)
	assert.Equal(t, 0, view.RemainingCapacity())
}

func TestUpdateEventRejectsPastAndRejectedEvents(t *testing.T) {
	past := approvedEvent("event-past", 10)
	past.Date = testNow.Add(-time.Hour)
	rejected := approvedEvent("event-rejected", 10)
	rejected.Status = entities.EventStatusRejected
	events, _, _ := newLifecycleUseCases(&fixedClock{now: testNow}, past, rejected)
	admin := identityv1.User("admin-1", true)

	_, err := events.UpdateEvent(context.Background(), admin, "event-past", validEventCommand())
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
	_, err = events.UpdateEvent(context.Background(), admin, "event-rejected", validEventCommand())
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
}

func TestUpdateEventDateChangeRearmsReminder(t *testing.T) {
	event := approvedEvent("event-1", 10)
	queuedAt := testNow.Add(-time.Minute)
	event.ReminderQueuedAt = &queuedAt
	events, _, _ := newLifecycleUseCases(&fixedClock{now: testNow}, event)
	admin := identityv1.User("admin-1", true)

	cmd := validEventCommand()
	cmd.Date = event.Date
	view, err := events.UpdateEvent(context.Background(), admin, "event-1", cmd)
	require.NoError(t, err)
	assert.NotNil(t, view.Event.ReminderQueuedAt)

	cmd.Date = event.Date.Add(24 * time.Hour)
	view, err = events.UpdateEvent(context.Background(), admin, "event-1", cmd)
	require.NoError(t, err)
	assert.Nil(t, view.Event.ReminderQueuedAt)
}

func TestDeleteEventRemovesDependentsAndNamesAttendees(t *testing.T) {
	events, rsvps, store := newLifecycleUseCases(&fixedClock{now: testNow},
		approvedEvent("event-1", 10), approvedEvent("event-2", 10))
	ctx := context.Background()

	_, err := rsvps.RequestRSVP(ctx, identityv1.User("user-a", false), rsvpFor("event-1", 2))
	require.NoError(t, err)
	_, err = rsvps.RequestRSVP(ctx, identityv1.User("user-a", false), rsvpFor("event-2", 1))
	require.NoError(t, err)

	err = events.DeleteEvent(ctx, identityv1.User("stranger", false), "event-1")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	err = events.DeleteEvent(ctx, identityv1.Anonymous(), "event-1")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	require.NoError(t, events.DeleteEvent(ctx, identityv1.User("organizer-1", false), "event-1"))

	_, err = store.GetEventView(ctx, "event-1")
	assert.ErrorIs(t, err, domainerrors.ErrEventNotFound)
	err = events.DeleteEvent(ctx, identityv1.User("organizer-1", false), "event-1")
	assert.ErrorIs(t, err, domainerrors.ErrEventNotFound)

	snapshot, err := store.ReadSnapshot(ctx, "organizer-1")
	require.NoError(t, err)
	require.Len(t, snapshot.Ledger, 1)
	assert.Equal(t, "event-2", snapshot.Ledger[0].EventID)

	// The surviving reservation still cancels through the rebuilt ledger index.
	removed, err := rsvps.CancelRSVP(ctx, identityv1.User("user-a", false), "event-2")
	require.NoError(t, err)
	assert.True(t, removed)
	snapshot, err = store.ReadSnapshot(ctx, "organizer-1")
	require.NoError(t, err)
	require.Len(t, snapshot.Ledger, 1)
	assert.NotNil(t, snapshot.Ledger[0].CancelledAt)

	pending, err := store.ListPendingOutbox(ctx, 100)
	require.NoError(t, err)
	var deleted map[string]any
	for _, message := range pending {
		if message.EventType != EventTypeEventDeleted {
			continue
		}
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(message.Payload, &envelope))
		require.NoError(t, json.Unmarshal(envelope.Data, &deleted))
	}
	require.NotNil(t, deleted)
	attendees, ok := deleted["attendees"].([]any)
	require.True(t, ok)
	require.Len(t, attendees, 1)
	assert.Equal(t, "guest@example.com", attendees[0].(map[string]any)["email"])
}

func TestDeleteEventKeepsPastEvents(t *testing.T) {
	past := approvedEvent("event-past", 10)
	past.Date = testNow.Add(-time.Hour)
	events, _, _ := newLifecycleUseCases(&fixedClock{now: testNow}, past)

	err := events.DeleteEvent(context.Background(), identityv1.User("admin-1", true), "event-past")
	assert.ErrorIs(t, err, domainerrors.ErrEventFrozen)
}

func TestMarkAttendanceAfterEventStart(t *testing.T) {
	clock := &fixedClock{now: testNow}
	_, rsvps, store := newLifecycleUseCases(clock, approvedEvent("event-1", 10))
	ctx := context.Background()

	admitted, err := rsvps.RequestRSVP(ctx, identityv1.User("user-a", false), rsvpFor("event-1", 2))
	require.NoError(t, err)
	rsvpID := admitted.RSVP.RSVPID

	organizer := identityv1.User("organizer-1", false)
	_, err = rsvps.MarkAttendance(ctx, organizer, rsvpID, true)
	assert.ErrorIs(t, err, domainerrors.ErrAttendanceEarly)

	clock.now = testNow.Add(73 * time.Hour)
	_, err = rsvps.MarkAttendance(ctx, identityv1.User("user-a", false), rsvpID, true)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	_, err = rsvps.MarkAttendance(ctx, organizer, "rsvp-missing", true)
	assert.ErrorIs(t, err, domainerrors.ErrRSVPNotFound)

	marked, err := rsvps.MarkAttendance(ctx, organizer, rsvpID, true)
	require.NoError(t, err)
	assert.True(t, marked.Attended)
	require.NotNil(t, marked.AttendanceMarkedAt)
	assert.Equal(t, clock.now, *marked.AttendanceMarkedAt)

	marked, err = rsvps.MarkAttendance(ctx, identityv1.User("admin-1", true), rsvpID, false)
	require.NoError(t, err)
	assert.False(t, marked.Attended)

	stored, ok, err := store.GetRSVP(ctx, "event-1", "user-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, stored.Attended)
	assert.Equal(t, 2, stored.AttendeeCount)
	assert.Contains(t, outboxTypes(t, store), EventTypeRSVPAttendance)
}
