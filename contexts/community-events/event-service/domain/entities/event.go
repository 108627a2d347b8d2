package entities

import (
	"fmt"
	"strings"
	"time"

	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
)

type Category string

const (
	CategorySports    Category = "sports"
	CategoryMusic     Category = "music"
	CategoryFood      Category = "food"
	CategoryArt       Category = "art"
	CategoryEducation Category = "education"
	CategoryCommunity Category = "community"
)

var categories = []Category{
	CategorySports,
	CategoryMusic,
	CategoryFood,
	CategoryArt,
	CategoryEducation,
	CategoryCommunity,
}

func Categories() []Category {
	return append([]Category(nil), categories...)
}

func ParseCategory(raw string) (Category, bool) {
	value := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, category := range categories {
		if category == value {
			return value, true
		}
	}
	return "", false
}

type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// TrendingThreshold is the live RSVP count an event must exceed to trend.
const TrendingThreshold = 10

type Event struct {
	EventID          string
	OrganizerID      string
	Title            string
	Description      string
	Category         Category
	Location         string
	Date             time.Time
	MaxAttendees     int
	Status           EventStatus
	DecidedBy        string
	DecidedAt        *time.Time
	ReminderQueuedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OpenForRSVP reports whether admissions are accepted at now.
func (e Event) OpenForRSVP(now time.Time) bool {
	return e.Status == EventStatusApproved && e.Date.After(now)
}

func (e Event) HasHappened(now time.Time) bool {
	return !e.Date.After(now)
}

// Decide moves a pending event to approved or rejected. Any other starting
// state fails, including re-rejecting a rejected event.
func (e Event) Decide(approve bool, adminID string, at time.Time) (Event, error) {
	if e.Status != EventStatusPending {
		return e, domainerrors.ErrEventNotPending
	}
	decidedAt := at.UTC()
	if approve {
		e.Status = EventStatusApproved
	} else {
		e.Status = EventStatusRejected
	}
	e.DecidedBy = strings.TrimSpace(adminID)
	e.DecidedAt = &decidedAt
	e.UpdatedAt = decidedAt
	return e, nil
}

// EventDetails are the fields an organizer chooses and may later revise.
type EventDetails struct {
	Title        string
	Description  string
	Category     Category
	Location     string
	Date         time.Time
	MaxAttendees int
}

// Revise replaces the editable details. Rejected events and events that
// already took place are frozen, and capacity never drops below committed
// seats. An organizer edit sends an approved event back to review; an admin
// edit keeps its status.
func (e Event) Revise(details EventDetails, committed int, byAdmin bool, at time.Time) (Event, error) {
	if e.Status == EventStatusRejected || e.HasHappened(at) {
		return e, domainerrors.ErrEventFrozen
	}
	if details.MaxAttendees < committed {
		return e, fmt.Errorf("%w: %d seats are already committed", domainerrors.ErrCapacityExceeded, committed)
	}
	if !details.Date.Equal(e.Date) {
		e.ReminderQueuedAt = nil
	}
	e.Title = details.Title
	e.Description = details.Description
	e.Category = details.Category
	e.Location = details.Location
	e.Date = details.Date.UTC()
	e.MaxAttendees = details.MaxAttendees
	if e.Status == EventStatusApproved && !byAdmin {
		e.Status = EventStatusPending
		e.DecidedBy = ""
		e.DecidedAt = nil
	}
	e.UpdatedAt = at.UTC()
	return e, nil
}

// CheckRemovable allows deleting events that have not taken place. Past
// events stay because trust scores and feedback are derived from them.
func (e Event) CheckRemovable(at time.Time) error {
	if e.HasHappened(at) {
		return domainerrors.ErrEventFrozen
	}
	return nil
}

func IsTrending(rsvpCount int) bool {
	return rsvpCount > TrendingThreshold
}
