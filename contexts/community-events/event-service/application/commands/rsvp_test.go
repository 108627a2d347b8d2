package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"communitypulse/contexts/community-events/event-service/adapters/memory"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	identityv1 "communitypulse/contracts/identity/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func approvedEvent(eventID string, maxAttendees int) entities.Event {
	return entities.Event{
		EventID:      eventID,
		OrganizerID:  "organizer-1",
		Title:        "Park cleanup",
		Description:  "Bring gloves",
		Category:     entities.CategoryCommunity,
		Location:     "Riverside Park",
		Date:         testNow.Add(72 * time.Hour),
		MaxAttendees: maxAttendees,
		Status:       entities.EventStatusApproved,
		CreatedAt:    testNow.Add(-time.Hour),
		UpdatedAt:    testNow.Add(-time.Hour),
	}
}

func newRSVPUseCase(seed ...entities.Event) (RSVPUseCase, *memory.Store) {
	store := memory.NewStore(seed)
	return RSVPUseCase{
		RSVPs: store,
		Clock: &fixedClock{now: testNow},
		IDGen: store,
	}, store
}

func rsvpFor(eventID string, count int) RequestRSVPCommand {
	return RequestRSVPCommand{
		EventID:       eventID,
		Name:          "Guest",
		Email:         "guest@example.com",
		Phone:         "555-0101",
		AttendeeCount: count,
	}
}

func TestRequestRSVPEnforcesCapacityAcrossUsers(t *testing.T) {
	uc, _ := newRSVPUseCase(approvedEvent("event-1", 3))
	ctx := context.Background()

	first, err := uc.RequestRSVP(ctx, identityv1.User("user-a", false), rsvpFor("event-1", 1))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, 1, first.CommittedAttendees)

	_, err = uc.RequestRSVP(ctx, identityv1.User("user-b", false), rsvpFor("event-1", 3))
	assert.ErrorIs(t, err, domainerrors.ErrCapacityExceeded)

	third, err := uc.RequestRSVP(ctx, identityv1.User("user-c", false), rsvpFor("event-1", 1))
	require.NoError(t, err)
	assert.Equal(t, 2, third.CommittedAttendees)
}

func TestRequestRSVPResubmissionOnlyConsumesDelta(t *testing.T) {
	uc, store := newRSVPUseCase(approvedEvent("event-1", 5))
	ctx := context.Background()
	actor := identityv1.User("user-a", false)

	first, err := uc.RequestRSVP(ctx, actor, rsvpFor("event-1", 4))
	require.NoError(t, err)

	second, err := uc.RequestRSVP(ctx, actor, rsvpFor("event-1", 5))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.RSVP.RSVPID, second.RSVP.RSVPID)
	assert.Equal(t, 5, second.CommittedAttendees)

	_, err = uc.RequestRSVP(ctx, identityv1.User("user-b", false), rsvpFor("event-1", 1))
	assert.ErrorIs(t, err, domainerrors.ErrCapacityExceeded)

	snapshot, err := store.ReadSnapshot(ctx, "")
	require.NoError(t, err)
	require.Len(t, snapshot.Ledger, 1)
	assert.Equal(t, 5, snapshot.Ledger[0].AttendeeCount)
}

func TestRequestRSVPRejectsClosedEvents(t *testing.T) {
	pending := approvedEvent("pending", 10)
	pending.Status = entities.EventStatusPending
	past := approvedEvent("past", 10)
	past.Date = testNow.Add(-time.Hour)
	uc, _ := newRSVPUseCase(pending, past)
	ctx := context.Background()
	actor := identityv1.User("user-a", false)

	_, err := uc.RequestRSVP(ctx, actor, rsvpFor("pending", 1))
	assert.ErrorIs(t, err, domainerrors.ErrEventNotOpen)

	_, err = uc.RequestRSVP(ctx, actor, rsvpFor("past", 1))
	assert.ErrorIs(t, err, domainerrors.ErrEventNotOpen)

	_, err = uc.RequestRSVP(ctx, actor, rsvpFor("missing", 1))
	assert.ErrorIs(t, err, domainerrors.ErrEventNotFound)
}

func TestRequestRSVPValidatesBeforeAdmission(t *testing.T) {
	uc, _ := newRSVPUseCase(approvedEvent("event-1", 10))
	ctx := context.Background()

	_, err := uc.RequestRSVP(ctx, identityv1.Anonymous(), rsvpFor("event-1", 1))
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	actor := identityv1.User("user-a", false)
	cases := []RequestRSVPCommand{
		rsvpFor("event-1", 0),
		rsvpFor("event-1", 11),
		{EventID: "event-1", Email: "guest@example.com", Phone: "1", AttendeeCount: 1},
		{EventID: "event-1", Name: "Guest", Email: "not-an-email", Phone: "1", AttendeeCount: 1},
	}
	for i, cmd := range cases {
		_, err := uc.RequestRSVP(ctx, actor, cmd)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "case %d", i)
	}
}

func TestConcurrentRSVPsNeverExceedCapacity(t *testing.T) {
	uc, store := newRSVPUseCase(approvedEvent("event-1", 10))
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.RequestRSVP(ctx, identityv1.User(fmt.Sprintf("user-%d", i), false), rsvpFor("event-1", 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, domainerrors.ErrCapacityExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, admitted)
	assert.Equal(t, 15, rejected)
	view, err := store.GetEventView(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, 10, view.CommittedAttendees)
	assert.Equal(t, 0, view.RemainingCapacity())
}

func TestCancelRSVPFreesSeatsAndStampsLedger(t *testing.T) {
	uc, store := newRSVPUseCase(approvedEvent("event-1", 2))
	ctx := context.Background()
	actor := identityv1.User("user-a", false)

	_, err := uc.RequestRSVP(ctx, actor, rsvpFor("event-1", 2))
	require.NoError(t, err)

	removed, err := uc.CancelRSVP(ctx, actor, "event-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = uc.CancelRSVP(ctx, actor, "event-1")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = uc.RequestRSVP(ctx, identityv1.User("user-b", false), rsvpFor("event-1", 2))
	require.NoError(t, err)

	snapshot, err := store.ReadSnapshot(ctx, "organizer-1")
	require.NoError(t, err)
	require.Len(t, snapshot.Ledger, 2)
	cancelled := 0
	for _, record := range snapshot.Ledger {
		if record.CancelledAt != nil {
			cancelled++
			assert.Equal(t, "user-a", record.UserID)
		}
	}
	assert.Equal(t, 1, cancelled)

	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	types := make([]string, 0, len(pending))
	for _, message := range pending {
		types = append(types, message.EventType)
	}
	assert.ElementsMatch(t, []string{EventTypeRSVPAdmitted, EventTypeRSVPCancelled, EventTypeRSVPAdmitted}, types)
}
