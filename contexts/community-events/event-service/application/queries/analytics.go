package queries

import (
	"context"
	"sort"
	"time"

	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"
)

const popularEventsLimit = 5

type CategoryCount struct {
	Category entities.Category
	Count    int
}

type PopularEvent struct {
	EventID   string
	Title     string
	Date      time.Time
	RSVPCount int
}

type Analytics struct {
	TotalEvents    int
	ByStatus       map[entities.EventStatus]int
	UpcomingEvents int
	Categories     []CategoryCount
	Popular        []PopularEvent
	FeedbackTotal  int
	AverageRating  float64
	Users          ports.UserStats
	GeneratedAt    time.Time
}

type AnalyticsQuery struct {
	Snapshots ports.SnapshotReader
	Users     ports.UserStatsReader
	Clock     ports.Clock
}

// Analytics aggregates the whole event store from one consistent snapshot.
// The result depends only on the stored data and the clock.
func (q AnalyticsQuery) Analytics(ctx context.Context, actor ports.Actor) (Analytics, error) {
	if !actor.Admin() {
		return Analytics{}, domainerrors.ErrForbidden
	}
	snapshot, err := q.Snapshots.ReadSnapshot(ctx, "")
	if err != nil {
		return Analytics{}, err
	}
	now := time.Now().UTC()
	if q.Clock != nil {
		now = q.Clock.Now().UTC()
	}
	out := summarize(snapshot, now)
	if q.Users != nil {
		users, err := q.Users.UserStats(ctx)
		if err != nil {
			return Analytics{}, err
		}
		out.Users = users
	}
	return out, nil
}

func summarize(snapshot ports.Snapshot, now time.Time) Analytics {
	out := Analytics{
		TotalEvents: len(snapshot.Events),
		ByStatus: map[entities.EventStatus]int{
			entities.EventStatusPending:  0,
			entities.EventStatusApproved: 0,
			entities.EventStatusRejected: 0,
		},
		GeneratedAt: now,
	}

	perCategory := make(map[entities.Category]int)
	approved := make([]ports.EventView, 0, len(snapshot.Events))
	for _, view := range snapshot.Events {
		out.ByStatus[view.Event.Status]++
		perCategory[view.Event.Category]++
		if view.Event.Status != entities.EventStatusApproved {
			continue
		}
		approved = append(approved, view)
		if view.Event.Date.After(now) {
			out.UpcomingEvents++
		}
	}
	for _, category := range entities.Categories() {
		out.Categories = append(out.Categories, CategoryCount{Category: category, Count: perCategory[category]})
	}

	sort.SliceStable(approved, func(i, j int) bool {
		left, right := approved[i], approved[j]
		if left.RSVPCount != right.RSVPCount {
			return left.RSVPCount > right.RSVPCount
		}
		if !left.Event.Date.Equal(right.Event.Date) {
			return left.Event.Date.Before(right.Event.Date)
		}
		return left.Event.EventID < right.Event.EventID
	})
	for i := 0; i < len(approved) && i < popularEventsLimit; i++ {
		out.Popular = append(out.Popular, PopularEvent{
			EventID:   approved[i].Event.EventID,
			Title:     approved[i].Event.Title,
			Date:      approved[i].Event.Date,
			RSVPCount: approved[i].RSVPCount,
		})
	}

	out.FeedbackTotal = len(snapshot.Feedback)
	if out.FeedbackTotal > 0 {
		sum := 0
		for _, feedback := range snapshot.Feedback {
			sum += feedback.Rating
		}
		out.AverageRating = float64(sum) / float64(out.FeedbackTotal)
	}
	return out
}
