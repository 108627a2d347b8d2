// Package bridges adapts one service's module to another service's ports.
// Services never import each other; the composition root joins them here.
package bridges

import (
	"context"
	"sort"

	evententities "communitypulse/contexts/community-events/event-service/domain/entities"
	eventports "communitypulse/contexts/community-events/event-service/ports"
	trustentities "communitypulse/contexts/community-events/trust-score-service/domain/entities"
	trustports "communitypulse/contexts/community-events/trust-score-service/ports"
	identityapp "communitypulse/contexts/identity-access/identity-service/application"
)

// Directory exposes identity display names to event and trust services.
type Directory struct {
	Identity identityapp.Service
}

func (d Directory) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	return d.Identity.DisplayNames(ctx, userIDs)
}

// UserStats feeds identity counts into event analytics.
type UserStats struct {
	Identity identityapp.Service
}

func (u UserStats) UserStats(ctx context.Context) (eventports.UserStats, error) {
	stats, err := u.Identity.Stats(ctx)
	if err != nil {
		return eventports.UserStats{}, err
	}
	return eventports.UserStats{
		Total:       stats.TotalUsers,
		NewLastWeek: stats.NewSince,
	}, nil
}

// Activity turns one event-service snapshot into per-organizer scoring input.
type Activity struct {
	Snapshots eventports.SnapshotReader
}

func (a Activity) OrganizerActivity(ctx context.Context, organizerID string) ([]trustentities.OrganizerActivity, error) {
	snapshot, err := a.Snapshots.ReadSnapshot(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	return GroupActivity(snapshot), nil
}

// GroupActivity is ordered by organizer id.
func GroupActivity(snapshot eventports.Snapshot) []trustentities.OrganizerActivity {
	byOrganizer := make(map[string]*trustentities.OrganizerActivity)
	organizerOf := make(map[string]string, len(snapshot.Events))
	for _, view := range snapshot.Events {
		event := view.Event
		organizerOf[event.EventID] = event.OrganizerID
		activity, ok := byOrganizer[event.OrganizerID]
		if !ok {
			activity = &trustentities.OrganizerActivity{OrganizerID: event.OrganizerID}
			byOrganizer[event.OrganizerID] = activity
		}
		activity.Events = append(activity.Events, trustentities.EventFact{
			EventID:      event.EventID,
			Date:         event.Date,
			MaxAttendees: event.MaxAttendees,
			Approved:     event.Status == evententities.EventStatusApproved,
		})
	}
	for _, record := range snapshot.Ledger {
		organizerID, ok := organizerOf[record.EventID]
		if !ok {
			continue
		}
		activity := byOrganizer[organizerID]
		activity.RSVPs = append(activity.RSVPs, trustentities.RSVPFact{
			EventID:       record.EventID,
			AttendeeCount: record.AttendeeCount,
			CreatedAt:     record.CreatedAt,
			CancelledAt:   record.CancelledAt,
		})
	}
	for _, feedback := range snapshot.Feedback {
		organizerID, ok := organizerOf[feedback.EventID]
		if !ok {
			continue
		}
		activity := byOrganizer[organizerID]
		activity.Ratings = append(activity.Ratings, trustentities.RatingFact{
			EventID: feedback.EventID,
			Rating:  feedback.Rating,
		})
	}

	items := make([]trustentities.OrganizerActivity, 0, len(byOrganizer))
	for _, activity := range byOrganizer {
		items = append(items, *activity)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].OrganizerID < items[j].OrganizerID
	})
	return items
}

var (
	_ eventports.OrganizerDirectory = Directory{}
	_ eventports.UserStatsReader    = UserStats{}
	_ trustports.Directory          = Directory{}
	_ trustports.ActivitySource     = Activity{}
)
