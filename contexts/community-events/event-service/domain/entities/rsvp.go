package entities

import (
	"regexp"
	"strings"
	"time"

	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
)

const (
	MinAttendeeCount = 1
	MaxAttendeeCount = 10
)

// RSVP is a live reservation, unique per (EventID, UserID).
type RSVP struct {
	RSVPID        string
	EventID       string
	UserID        string
	Name          string
	Email         string
	Phone         string
	AttendeeCount int
	// Attended is the organizer's check-in record. Trust scoring does not
	// read it; attendance there comes from the ledger.
	Attended           bool
	AttendanceMarkedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MarkAttendance records whether the reservation holder showed up. It is
// accepted from the event start onward.
func (r RSVP) MarkAttendance(event Event, attended bool, at time.Time) (RSVP, error) {
	if !event.HasHappened(at) {
		return r, domainerrors.ErrAttendanceEarly
	}
	markedAt := at.UTC()
	r.Attended = attended
	r.AttendanceMarkedAt = &markedAt
	r.UpdatedAt = markedAt
	return r, nil
}

// RSVPRecord is the append-only history of one reservation: created once,
// stamped when cancelled. Trust scoring reads it to reconstruct attendance
// at event time and cancellation ratios.
type RSVPRecord struct {
	RecordID      string
	EventID       string
	UserID        string
	AttendeeCount int
	CreatedAt     time.Time
	CancelledAt   *time.Time
}

// CheckAdmission evaluates a request for requested seats against the event's
// committed seat total. A prior reservation by the same user only consumes
// the difference.
func CheckAdmission(event Event, committed int, existing *RSVP, requested int, now time.Time) error {
	if !event.OpenForRSVP(now) {
		return domainerrors.ErrEventNotOpen
	}
	delta := requested
	if existing != nil {
		delta -= existing.AttendeeCount
	}
	if committed+delta > event.MaxAttendees {
		return domainerrors.ErrCapacityExceeded
	}
	return nil
}

var contactEmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidContactEmail(email string) bool {
	return contactEmailPattern.MatchString(strings.TrimSpace(email))
}
