package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"communitypulse/contexts/community-events/event-service/domain/entities"
	"communitypulse/contexts/community-events/event-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFeedbackNewestFirstWithStableTies(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	entries := []entities.Feedback{
		{FeedbackID: "fb-c", CreatedAt: base},
		{FeedbackID: "fb-a", CreatedAt: base.Add(time.Hour)},
		{FeedbackID: "fb-b", CreatedAt: base.Add(time.Hour)},
		{FeedbackID: "fb-d", CreatedAt: base.Add(2 * time.Hour)},
	}
	for i, entry := range entries {
		entry.EventID = "event-1"
		entry.UserID = fmt.Sprintf("user-%d", i)
		entry.Rating = 4
		require.NoError(t, store.CreateFeedback(ctx, entry))
	}
	require.NoError(t, store.CreateFeedback(ctx, entities.Feedback{
		FeedbackID: "fb-other", EventID: "event-2", UserID: "user-0", Rating: 5, CreatedAt: base,
	}))

	// Map iteration order varies per run, so repeat the read.
	for range 20 {
		items, err := store.ListFeedback(ctx, "event-1")
		require.NoError(t, err)
		ids := make([]string, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.FeedbackID)
		}
		require.Equal(t, []string{"fb-d", "fb-a", "fb-b", "fb-c"}, ids)
	}
}

func TestListRSVPsByCreationOrder(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	event := entities.Event{
		EventID:      "event-1",
		Status:       entities.EventStatusApproved,
		Date:         base.Add(72 * time.Hour),
		MaxAttendees: 10,
	}
	store := NewStore([]entities.Event{event})
	ctx := context.Background()

	users := []string{"user-c", "user-a", "user-b"}
	for i, userID := range users {
		_, err := store.AdmitRSVP(ctx, "event-1", userID, admitAt(userID, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	items, err := store.ListRSVPs(ctx, "event-1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, users[i], item.UserID)
	}
}

func admitAt(userID string, at time.Time) ports.AdmitFunc {
	return func(event entities.Event, _ *entities.RSVP, _ int) (ports.Admission, error) {
		return ports.Admission{
			RSVP: entities.RSVP{
				RSVPID:        "rsvp-" + at.Format("150405"),
				EventID:       event.EventID,
				UserID:        userID,
				AttendeeCount: 1,
				CreatedAt:     at,
				UpdatedAt:     at,
			},
			Envelope: ports.EventEnvelope{EventID: "envelope-" + at.Format("150405"), OccurredAt: at},
		}, nil
	}
}
