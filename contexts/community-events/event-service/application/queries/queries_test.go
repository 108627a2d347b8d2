package queries

import (
	"context"
	"fmt"
	"testing"
	"time"

	"communitypulse/contexts/community-events/event-service/adapters/memory"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"
	identityv1 "communitypulse/contracts/identity/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type staticDirectory map[string]string

func (d staticDirectory) DisplayNames(_ context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if name, ok := d[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type staticUsers ports.UserStats

func (s staticUsers) UserStats(context.Context) (ports.UserStats, error) {
	return ports.UserStats(s), nil
}

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func event(eventID string, category entities.Category, status entities.EventStatus, offset time.Duration) entities.Event {
	return entities.Event{
		EventID:      eventID,
		OrganizerID:  "organizer-1",
		Title:        "Event " + eventID,
		Description:  "Description",
		Category:     category,
		Location:     "North Side Library",
		Date:         testNow.Add(offset),
		MaxAttendees: 100,
		Status:       status,
		CreatedAt:    testNow.Add(-48 * time.Hour).Add(offset / 100),
	}
}

func seedRSVPs(t *testing.T, store *memory.Store, eventID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		userID := fmt.Sprintf("%s-user-%d", eventID, i)
		_, err := store.AdmitRSVP(context.Background(), eventID, userID,
			func(event entities.Event, _ *entities.RSVP, _ int) (ports.Admission, error) {
				return ports.Admission{
					RSVP: entities.RSVP{
						RSVPID:        userID,
						EventID:       event.EventID,
						UserID:        userID,
						Name:          "Guest",
						Email:         "guest@example.com",
						Phone:         "1",
						AttendeeCount: 1,
						CreatedAt:     testNow.Add(-time.Hour),
					},
				}, nil
			})
		require.NoError(t, err)
	}
}

func newQueries(seed ...entities.Event) (EventQueries, *memory.Store) {
	store := memory.NewStore(seed)
	return EventQueries{
		Events:    store,
		RSVPs:     store,
		Feedback:  store,
		Directory: staticDirectory{"organizer-1": "Olive"},
		Clock:     fixedClock{now: testNow},
	}, store
}

func TestListEventsFiltersAndOrders(t *testing.T) {
	q, store := newQueries(
		event("later", entities.CategoryMusic, entities.EventStatusApproved, 72*time.Hour),
		event("sooner", entities.CategoryMusic, entities.EventStatusApproved, 24*time.Hour),
		event("sports", entities.CategorySports, entities.EventStatusApproved, 48*time.Hour),
		event("pending", entities.CategoryMusic, entities.EventStatusPending, 24*time.Hour),
		event("old", entities.CategoryMusic, entities.EventStatusApproved, -24*time.Hour),
		event("older", entities.CategoryMusic, entities.EventStatusApproved, -72*time.Hour),
	)
	seedRSVPs(t, store, "later", 11)
	ctx := context.Background()

	upcoming, err := q.ListEvents(ctx, ListEventsQuery{Category: "music", Upcoming: true})
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "sooner", upcoming[0].Event.EventID)
	assert.Equal(t, "later", upcoming[1].Event.EventID)
	assert.False(t, upcoming[0].Trending())
	assert.True(t, upcoming[1].Trending())
	assert.Equal(t, 11, upcoming[1].RSVPCount)

	past, err := q.ListEvents(ctx, ListEventsQuery{})
	require.NoError(t, err)
	require.Len(t, past, 2)
	assert.Equal(t, "old", past[0].Event.EventID)
	assert.Equal(t, "older", past[1].Event.EventID)

	byLocation, err := q.ListEvents(ctx, ListEventsQuery{Location: "north side", Upcoming: true})
	require.NoError(t, err)
	assert.Len(t, byLocation, 3)
	none, err := q.ListEvents(ctx, ListEventsQuery{Location: "harbor", Upcoming: true})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = q.ListEvents(ctx, ListEventsQuery{Category: "gaming"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestTrendingNeedsMoreThanTenRSVPs(t *testing.T) {
	q, store := newQueries(event("e", entities.CategoryArt, entities.EventStatusApproved, time.Hour))
	seedRSVPs(t, store, "e", 10)
	detail, err := q.GetEvent(context.Background(), identityv1.Anonymous(), "e")
	require.NoError(t, err)
	assert.False(t, detail.View.Trending())
	assert.Equal(t, "Olive", detail.OrganizerName)
}

func TestGetEventHidesUnapprovedFromOthers(t *testing.T) {
	q, _ := newQueries(event("pending", entities.CategoryFood, entities.EventStatusPending, time.Hour))
	ctx := context.Background()

	_, err := q.GetEvent(ctx, identityv1.Anonymous(), "pending")
	assert.ErrorIs(t, err, domainerrors.ErrEventNotFound)
	_, err = q.GetEvent(ctx, identityv1.User("someone", false), "pending")
	assert.ErrorIs(t, err, domainerrors.ErrEventNotFound)

	_, err = q.GetEvent(ctx, identityv1.User("organizer-1", false), "pending")
	assert.NoError(t, err)
	_, err = q.GetEvent(ctx, identityv1.User("admin", true), "pending")
	assert.NoError(t, err)
}

func TestListEventRSVPsRequiresOrganizerOrAdmin(t *testing.T) {
	q, store := newQueries(event("e", entities.CategoryArt, entities.EventStatusApproved, time.Hour))
	seedRSVPs(t, store, "e", 2)
	ctx := context.Background()

	_, err := q.ListEventRSVPs(ctx, identityv1.Anonymous(), "e")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	_, err = q.ListEventRSVPs(ctx, identityv1.User("someone", false), "e")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	items, err := q.ListEventRSVPs(ctx, identityv1.User("organizer-1", false), "e")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestListPendingEventsOldestFirst(t *testing.T) {
	first := event("first", entities.CategoryArt, entities.EventStatusPending, time.Hour)
	second := event("second", entities.CategoryArt, entities.EventStatusPending, time.Hour)
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	q, _ := newQueries(second, first)
	ctx := context.Background()

	_, err := q.ListPendingEvents(ctx, identityv1.User("user", false))
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	items, err := q.ListPendingEvents(ctx, identityv1.User("admin", true))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Event.EventID)
}

func TestAnalyticsAggregatesSnapshot(t *testing.T) {
	events := []entities.Event{
		event("a", entities.CategoryMusic, entities.EventStatusApproved, 24*time.Hour),
		event("b", entities.CategoryMusic, entities.EventStatusApproved, 48*time.Hour),
		event("c", entities.CategorySports, entities.EventStatusApproved, -24*time.Hour),
		event("d", entities.CategoryFood, entities.EventStatusPending, 24*time.Hour),
		event("e", entities.CategoryFood, entities.EventStatusRejected, 24*time.Hour),
	}
	store := memory.NewStore(events)
	seedRSVPs(t, store, "b", 3)
	seedRSVPs(t, store, "c", 3)
	seedRSVPs(t, store, "a", 1)
	require.NoError(t, store.CreateFeedback(context.Background(), entities.Feedback{FeedbackID: "f1", EventID: "c", UserID: "u1", Rating: 5}))
	require.NoError(t, store.CreateFeedback(context.Background(), entities.Feedback{FeedbackID: "f2", EventID: "c", UserID: "u2", Rating: 4}))
	require.NoError(t, store.CreateFeedback(context.Background(), entities.Feedback{FeedbackID: "f3", EventID: "c", UserID: "u3", Rating: 4}))

	q := AnalyticsQuery{
		Snapshots: store,
		Users:     staticUsers{Total: 7, NewLastWeek: 2},
		Clock:     fixedClock{now: testNow},
	}
	ctx := context.Background()

	_, err := q.Analytics(ctx, identityv1.User("user", false))
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	result, err := q.Analytics(ctx, identityv1.User("admin", true))
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalEvents)
	assert.Equal(t, 3, result.ByStatus[entities.EventStatusApproved])
	assert.Equal(t, 1, result.ByStatus[entities.EventStatusPending])
	assert.Equal(t, 1, result.ByStatus[entities.EventStatusRejected])
	assert.Equal(t, 2, result.UpcomingEvents)
	require.Len(t, result.Categories, len(entities.Categories()))
	assert.Equal(t, CategoryCount{Category: entities.CategorySports, Count: 1}, result.Categories[0])
	assert.Equal(t, CategoryCount{Category: entities.CategoryMusic, Count: 2}, result.Categories[1])
	assert.Equal(t, CategoryCount{Category: entities.CategoryArt, Count: 0}, result.Categories[3])

	require.Len(t, result.Popular, 3)
	assert.Equal(t, "c", result.Popular[0].EventID)
	assert.Equal(t, "b", result.Popular[1].EventID)
	assert.Equal(t, "a", result.Popular[2].EventID)

	assert.Equal(t, 3, result.FeedbackTotal)
	assert.InDelta(t, 13.0/3.0, result.AverageRating, 1e-9)
	assert.Equal(t, 7, result.Users.Total)
}
