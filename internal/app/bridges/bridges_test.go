package bridges

import (
	"testing"
	"time"

	evententities "communitypulse/contexts/community-events/event-service/domain/entities"
	eventports "communitypulse/contexts/community-events/event-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupActivityByOrganizer(t *testing.T) {
	date := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	cancelled := date.Add(-time.Hour)
	snapshot := eventports.Snapshot{
		Events: []eventports.EventView{
			{Event: evententities.Event{EventID: "e1", OrganizerID: "org-b", Date: date, MaxAttendees: 10, Status: evententities.EventStatusApproved}},
			{Event: evententities.Event{EventID: "e2", OrganizerID: "org-a", Date: date, MaxAttendees: 5, Status: evententities.EventStatusPending}},
		},
		Ledger: []evententities.RSVPRecord{
			{EventID: "e1", UserID: "u1", AttendeeCount: 2, CreatedAt: date.Add(-48 * time.Hour)},
			{EventID: "e1", UserID: "u2", AttendeeCount: 1, CreatedAt: date.Add(-48 * time.Hour), CancelledAt: &cancelled},
			{EventID: "unknown", UserID: "u3", AttendeeCount: 1},
		},
		Feedback: []evententities.Feedback{
			{EventID: "e1", UserID: "u1", Rating: 4},
		},
	}

	items := GroupActivity(snapshot)
	require.Len(t, items, 2)
	assert.Equal(t, "org-a", items[0].OrganizerID)
	assert.False(t, items[0].Events[0].Approved)
	assert.Empty(t, items[0].RSVPs)

	orgB := items[1]
	assert.Equal(t, "org-b", orgB.OrganizerID)
	require.Len(t, orgB.Events, 1)
	assert.True(t, orgB.Events[0].Approved)
	assert.Len(t, orgB.RSVPs, 2)
	require.NotNil(t, orgB.RSVPs[1].CancelledAt)
	require.Len(t, orgB.Ratings, 1)
	assert.Equal(t, 4, orgB.Ratings[0].Rating)
}
