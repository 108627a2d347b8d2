package commands

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"communitypulse/contexts/community-events/event-service/adapters/memory"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	identityv1 "communitypulse/contracts/identity/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventUseCase() (EventUseCase, *memory.Store) {
	store := memory.NewStore(nil)
	return EventUseCase{
		Events: store,
		Clock:  &fixedClock{now: testNow},
		IDGen:  store,
	}, store
}

func validEventCommand() CreateEventCommand {
	return CreateEventCommand{
		Title:        "Jazz night",
		Description:  "Open stage",
		Category:     "Music",
		Location:     "Town Hall",
		Date:         testNow.Add(48 * time.Hour),
		MaxAttendees: 40,
	}
}

func TestCreateEventStartsPendingEvenForAdmins(t *testing.T) {
	uc, store := newEventUseCase()
	ctx := context.Background()

	event, err := uc.CreateEvent(ctx, identityv1.User("admin-1", true), validEventCommand())
	require.NoError(t, err)
	assert.Equal(t, entities.EventStatusPending, event.Status)
	assert.Equal(t, entities.CategoryMusic, event.Category)
	assert.Equal(t, "admin-1", event.OrganizerID)

	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, EventTypeEventSubmitted, pending[0].EventType)
	assert.Equal(t, event.EventID, pending[0].PartitionKey)
}

func TestCreateEventValidation(t *testing.T) {
	uc, _ := newEventUseCase()
	ctx := context.Background()
	actor := identityv1.User("user-1", false)

	_, err := uc.CreateEvent(ctx, identityv1.Anonymous(), validEventCommand())
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	mutations := []func(*CreateEventCommand){
		func(cmd *CreateEventCommand) { cmd.Title = "  " },
		func(cmd *CreateEventCommand) { cmd.Description = "" },
		func(cmd *CreateEventCommand) { cmd.Location = "" },
		func(cmd *CreateEventCommand) { cmd.MaxAttendees = 0 },
		func(cmd *CreateEventCommand) { cmd.Date = testNow },
		func(cmd *CreateEventCommand) { cmd.Category = "gaming" },
	}
	for i, mutate := range mutations {
		cmd := validEventCommand()
		mutate(&cmd)
		_, err := uc.CreateEvent(ctx, actor, cmd)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "mutation %d", i)
	}
}

func TestDecideEventIsOneShot(t *testing.T) {
	uc, _ := newEventUseCase()
	ctx := context.Background()
	admin := identityv1.User("admin-1", true)

	event, err := uc.CreateEvent(ctx, identityv1.User("user-1", false), validEventCommand())
	require.NoError(t, err)

	_, err = uc.DecideEvent(ctx, identityv1.User("user-1", false), event.EventID, true)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	_, err = uc.DecideEvent(ctx, identityv1.Anonymous(), event.EventID, true)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	rejected, err := uc.DecideEvent(ctx, admin, event.EventID, false)
	require.NoError(t, err)
	assert.Equal(t, entities.EventStatusRejected, rejected.Status)
	assert.Equal(t, "admin-1", rejected.DecidedBy)
	require.NotNil(t, rejected.DecidedAt)

	_, err = uc.DecideEvent(ctx, admin, event.EventID, false)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
	_, err = uc.DecideEvent(ctx, admin, event.EventID, true)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)

	_, err = uc.DecideEvent(ctx, admin, "missing", true)
	assert.ErrorIs(t, err, domainerrors.ErrEventNotFound)
}

func TestConcurrentDecisionsOnlyOneWins(t *testing.T) {
	uc, _ := newEventUseCase()
	ctx := context.Background()
	admin := identityv1.User("admin-1", true)

	event, err := uc.CreateEvent(ctx, identityv1.User("user-1", false), validEventCommand())
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()
			if _, err := uc.DecideEvent(ctx, admin, event.EventID, approve); err == nil {
				wins.Add(1)
			}
		}(i%2 == 0)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
