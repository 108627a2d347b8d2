package entities

import "time"

// EventFact is the slice of an event that scoring needs.
type EventFact struct {
	EventID      string
	Date         time.Time
	MaxAttendees int
	Approved     bool
}

// RSVPFact is one reservation history record. CancelledAt is nil while the
// reservation is live.
type RSVPFact struct {
	EventID       string
	AttendeeCount int
	CreatedAt     time.Time
	CancelledAt   *time.Time
}

type RatingFact struct {
	EventID string
	Rating  int
}

// OrganizerActivity is everything one organizer's score is computed from.
type OrganizerActivity struct {
	OrganizerID string
	Events      []EventFact
	RSVPs       []RSVPFact
	Ratings     []RatingFact
}

type TrustScore struct {
	OrganizerID      string
	OrganizerName    string
	EventsHosted     int
	AttendanceRate   float64
	AvgRating        float64
	CancellationRate float64
	Score            float64
}
