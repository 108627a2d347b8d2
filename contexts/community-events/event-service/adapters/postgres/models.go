package postgresadapter

import (
	"strings"
	"time"

	"communitypulse/contexts/community-events/event-service/domain/entities"
)

type eventModel struct {
	EventID          string     `gorm:"column:event_id;primaryKey"`
	OrganizerID      string     `gorm:"column:organizer_id;not null;index:idx_events_organizer"`
	Title            string     `gorm:"column:title;not null"`
	Description      string     `gorm:"column:description;not null"`
	Category         string     `gorm:"column:category;not null"`
	Location         string     `gorm:"column:location;not null"`
	Date             time.Time  `gorm:"column:date;not null;index:idx_events_status_date,priority:2"`
	MaxAttendees     int        `gorm:"column:max_attendees;not null"`
	Status           string     `gorm:"column:status;not null;index:idx_events_status_date,priority:1"`
	DecidedBy        string     `gorm:"column:decided_by"`
	DecidedAt        *time.Time `gorm:"column:decided_at"`
	ReminderQueuedAt *time.Time `gorm:"column:reminder_queued_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;not null"`
}

func (eventModel) TableName() string {
	return "events"
}

func eventModelFromEntity(event entities.Event) eventModel {
	return eventModel{
		EventID:          strings.TrimSpace(event.EventID),
		OrganizerID:      strings.TrimSpace(event.OrganizerID),
		Title:            event.Title,
		Description:      event.Description,
		Category:         string(event.Category),
		Location:         event.Location,
		Date:             event.Date.UTC(),
		MaxAttendees:     event.MaxAttendees,
		Status:           string(event.Status),
		DecidedBy:        event.DecidedBy,
		DecidedAt:        utcPtr(event.DecidedAt),
		ReminderQueuedAt: utcPtr(event.ReminderQueuedAt),
		CreatedAt:        event.CreatedAt.UTC(),
		UpdatedAt:        event.UpdatedAt.UTC(),
	}
}

func (m eventModel) toEntity() entities.Event {
	return entities.Event{
		EventID:          m.EventID,
		OrganizerID:      m.OrganizerID,
		Title:            m.Title,
		Description:      m.Description,
		Category:         entities.Category(m.Category),
		Location:         m.Location,
		Date:             m.Date.UTC(),
		MaxAttendees:     m.MaxAttendees,
		Status:           entities.EventStatus(m.Status),
		DecidedBy:        m.DecidedBy,
		DecidedAt:        utcPtr(m.DecidedAt),
		ReminderQueuedAt: utcPtr(m.ReminderQueuedAt),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type rsvpModel struct {
	RSVPID        string `gorm:"column:rsvp_id;primaryKey"`
	EventID       string `gorm:"column:event_id;not null;uniqueIndex:idx_rsvps_event_user,priority:1"`
	UserID        string `gorm:"column:user_id;not null;uniqueIndex:idx_rsvps_event_user,priority:2"`
	Name          string `gorm:"column:name;not null"`
	Email         string `gorm:"column:email;not null"`
	Phone         string `gorm:"column:phone;not null"`
	AttendeeCount int    `gorm:"column:attendee_count;not null"`
	Attended      bool   `gorm:"column:attended;not null;default:false"`
	// AttendanceMarkedAt is nil until the organizer records attendance.
	AttendanceMarkedAt *time.Time `gorm:"column:attendance_marked_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null"`
}

func (rsvpModel) TableName() string {
	return "rsvps"
}

func rsvpModelFromEntity(rsvp entities.RSVP) rsvpModel {
	return rsvpModel{
		RSVPID:             strings.TrimSpace(rsvp.RSVPID),
		EventID:            strings.TrimSpace(rsvp.EventID),
		UserID:             strings.TrimSpace(rsvp.UserID),
		Name:               rsvp.Name,
		Email:              rsvp.Email,
		Phone:              rsvp.Phone,
		AttendeeCount:      rsvp.AttendeeCount,
		Attended:           rsvp.Attended,
		AttendanceMarkedAt: utcPtr(rsvp.AttendanceMarkedAt),
		CreatedAt:          rsvp.CreatedAt.UTC(),
		UpdatedAt:          rsvp.UpdatedAt.UTC(),
	}
}

func (m rsvpModel) toEntity() entities.RSVP {
	return entities.RSVP{
		RSVPID:             m.RSVPID,
		EventID:            m.EventID,
		UserID:             m.UserID,
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		AttendeeCount:      m.AttendeeCount,
		Attended:           m.Attended,
		AttendanceMarkedAt: utcPtr(m.AttendanceMarkedAt),
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

type ledgerModel struct {
	RecordID      string     `gorm:"column:record_id;primaryKey"`
	EventID       string     `gorm:"column:event_id;not null;index:idx_rsvp_ledger_event"`
	UserID        string     `gorm:"column:user_id;not null"`
	AttendeeCount int        `gorm:"column:attendee_count;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	CancelledAt   *time.Time `gorm:"column:cancelled_at"`
}

func (ledgerModel) TableName() string {
	return "rsvp_ledger"
}

func (m ledgerModel) toEntity() entities.RSVPRecord {
	return entities.RSVPRecord{
		RecordID:      m.RecordID,
		EventID:       m.EventID,
		UserID:        m.UserID,
		AttendeeCount: m.AttendeeCount,
		CreatedAt:     m.CreatedAt.UTC(),
		CancelledAt:   utcPtr(m.CancelledAt),
	}
}

type feedbackModel struct {
	FeedbackID string    `gorm:"column:feedback_id;primaryKey"`
	EventID    string    `gorm:"column:event_id;not null;uniqueIndex:idx_event_feedback_event_user,priority:1"`
	UserID     string    `gorm:"column:user_id;not null;uniqueIndex:idx_event_feedback_event_user,priority:2"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    string    `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (feedbackModel) TableName() string {
	return "event_feedback"
}

func (m feedbackModel) toEntity() entities.Feedback {
	return entities.Feedback{
		FeedbackID: m.FeedbackID,
		EventID:    m.EventID,
		UserID:     m.UserID,
		Rating:     m.Rating,
		Comment:    m.Comment,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type;not null"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;not null"`
	Status       string     `gorm:"column:status;not null;index:idx_event_outbox_status_created,priority:1"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null;index:idx_event_outbox_status_created,priority:2"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "event_outbox"
}

// rsvpAggregate is one row of the per-event RSVP totals query.
type rsvpAggregate struct {
	EventID            string `gorm:"column:event_id"`
	RSVPCount          int64  `gorm:"column:rsvp_count"`
	CommittedAttendees int64  `gorm:"column:committed_attendees"`
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := value.UTC()
	return &copied
}
