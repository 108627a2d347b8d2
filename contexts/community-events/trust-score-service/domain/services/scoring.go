package services

import (
	"time"

	"communitypulse/contexts/community-events/trust-score-service/domain/entities"
)

const (
	attendanceWeight   = 0.4
	ratingWeight       = 0.4
	reliabilityWeight  = 0.2
	maxRating          = 5.0
	minScore, maxScore = 0.0, 100.0
)

// Score derives an organizer's trust score from its activity as of now.
// An event counts as hosted once it is approved and its date has passed.
// Organizers without hosted events score 0.
func Score(activity entities.OrganizerActivity, now time.Time) entities.TrustScore {
	out := entities.TrustScore{
		OrganizerID: activity.OrganizerID,
		AvgRating:   averageRating(activity.Ratings),
	}

	byEvent := make(map[string][]entities.RSVPFact)
	for _, fact := range activity.RSVPs {
		byEvent[fact.EventID] = append(byEvent[fact.EventID], fact)
	}

	var attendanceSum, cancellationSum float64
	for _, event := range activity.Events {
		if !event.Approved || event.Date.After(now) {
			continue
		}
		out.EventsHosted++
		attendanceSum += attendanceRatio(event, byEvent[event.EventID])
		cancellationSum += cancellationRatio(event, byEvent[event.EventID])
	}
	if out.EventsHosted == 0 {
		return out
	}

	hosted := float64(out.EventsHosted)
	out.AttendanceRate = attendanceSum / hosted
	out.CancellationRate = cancellationSum / hosted
	out.Score = clamp(100*(attendanceWeight*out.AttendanceRate+
		ratingWeight*(out.AvgRating/maxRating)+
		reliabilityWeight*(1-out.CancellationRate)), minScore, maxScore)
	return out
}

// attendanceRatio compares the seats held at the event date with capacity.
// A reservation counts when it was made at or before the date and was not
// cancelled at or before it.
func attendanceRatio(event entities.EventFact, rsvps []entities.RSVPFact) float64 {
	if event.MaxAttendees <= 0 {
		return 0
	}
	attendees := 0
	for _, fact := range rsvps {
		if fact.CreatedAt.After(event.Date) {
			continue
		}
		if fact.CancelledAt != nil && !fact.CancelledAt.After(event.Date) {
			continue
		}
		attendees += fact.AttendeeCount
	}
	ratio := float64(attendees) / float64(event.MaxAttendees)
	if ratio > 1 {
		return 1
	}
	return ratio
}

func cancellationRatio(event entities.EventFact, rsvps []entities.RSVPFact) float64 {
	if len(rsvps) == 0 {
		return 0
	}
	cancelled := 0
	for _, fact := range rsvps {
		if fact.CancelledAt != nil && !fact.CancelledAt.After(event.Date) {
			cancelled++
		}
	}
	return float64(cancelled) / float64(len(rsvps))
}

func averageRating(ratings []entities.RatingFact) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, rating := range ratings {
		sum += rating.Rating
	}
	return float64(sum) / float64(len(ratings))
}

func clamp(value, low, high float64) float64 {
	switch {
	case value < low:
		return low
	case value > high:
		return high
	}
	return value
}
