package ports

import (
	"context"
	"time"

	"communitypulse/contexts/community-events/event-service/domain/entities"
	contractsv1 "communitypulse/contracts/gen/events/v1"
	identityv1 "communitypulse/contracts/identity/v1"
)

type Actor = identityv1.Caller

type EventEnvelope = contractsv1.Envelope

// EventView is an event joined with its live RSVP aggregates.
type EventView struct {
	Event              entities.Event
	RSVPCount          int
	CommittedAttendees int
}

func (v EventView) Trending() bool {
	return entities.IsTrending(v.RSVPCount)
}

func (v EventView) RemainingCapacity() int {
	remaining := v.Event.MaxAttendees - v.CommittedAttendees
	if remaining < 0 {
		return 0
	}
	return remaining
}

type TimeWindow string

const (
	WindowAny      TimeWindow = ""
	WindowUpcoming TimeWindow = "upcoming"
	WindowPast     TimeWindow = "past"
)

// EventFilter selects events. Upcoming windows sort by date ascending, past
// windows by date descending, and WindowAny by creation time ascending.
type EventFilter struct {
	Status   entities.EventStatus
	Category entities.Category
	Location string
	Window   TimeWindow
	Now      time.Time
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event entities.Event, envelope EventEnvelope) error
	GetEventView(ctx context.Context, eventID string) (EventView, error)
	ListEventViews(ctx context.Context, filter EventFilter) ([]EventView, error)
	// DecideEvent runs decide against the locked current row and persists the
	// returned event and envelope together.
	DecideEvent(ctx context.Context, eventID string, decide DecideFunc) (entities.Event, error)
	// UpdateEvent runs revise against the locked event and its committed
	// seats and persists the result with its envelope.
	UpdateEvent(ctx context.Context, eventID string, revise UpdateFunc) (EventView, error)
	// DeleteEvent removes the event together with its reservations, ledger
	// records and feedback once remove accepts. The envelope is kept.
	DeleteEvent(ctx context.Context, eventID string, remove RemoveFunc) (entities.Event, error)
}

type DecideFunc func(current entities.Event) (entities.Event, EventEnvelope, error)

type UpdateFunc func(current EventView) (entities.Event, EventEnvelope, error)

// RemoveFunc sees the live reservations so the envelope can name who to
// notify.
type RemoveFunc func(current entities.Event, rsvps []entities.RSVP) (EventEnvelope, error)

type AttendanceFunc func(event entities.Event, current entities.RSVP) (entities.RSVP, EventEnvelope, error)

// Admission is what an AdmitFunc wants persisted: the reservation and the
// outbox event describing it.
type Admission struct {
	RSVP     entities.RSVP
	Envelope EventEnvelope
}

// AdmitFunc decides an admission while the store holds the event's admission
// lock. existing is nil when the user has no reservation yet; committed is
// the current sum of attendee counts for the event.
type AdmitFunc func(event entities.Event, existing *entities.RSVP, committed int) (Admission, error)

type AdmissionResult struct {
	Event              entities.Event
	RSVP               entities.RSVP
	Created            bool
	CommittedAttendees int
}

type CancellationFunc func(cancelled entities.RSVP) (EventEnvelope, error)

type RSVPRepository interface {
	AdmitRSVP(ctx context.Context, eventID string, userID string, admit AdmitFunc) (AdmissionResult, error)
	// CancelRSVP removes the user's reservation and stamps its ledger record.
	// It reports false without error when there was nothing to cancel.
	CancelRSVP(ctx context.Context, eventID string, userID string, at time.Time, event CancellationFunc) (entities.RSVP, bool, error)
	GetRSVP(ctx context.Context, eventID string, userID string) (entities.RSVP, bool, error)
	ListRSVPs(ctx context.Context, eventID string) ([]entities.RSVP, error)
	// MarkAttendance loads the reservation and its event under the event lock.
	MarkAttendance(ctx context.Context, rsvpID string, mark AttendanceFunc) (entities.RSVP, error)
}

type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, feedback entities.Feedback) error
	ListFeedback(ctx context.Context, eventID string) ([]entities.Feedback, error)
}

// Snapshot is a consistent read of events with their RSVP aggregates, ledger
// records and feedback.
type Snapshot struct {
	Events   []EventView
	Ledger   []entities.RSVPRecord
	Feedback []entities.Feedback
}

type SnapshotReader interface {
	// ReadSnapshot reads every event of organizerID, or all events when
	// organizerID is empty.
	ReadSnapshot(ctx context.Context, organizerID string) (Snapshot, error)
}

type ReminderRepository interface {
	ListDueReminders(ctx context.Context, now time.Time, window time.Duration, limit int) ([]EventView, error)
	// QueueReminder marks the event reminded and appends envelope. It reports
	// false when another run queued the reminder first.
	QueueReminder(ctx context.Context, eventID string, at time.Time, envelope EventEnvelope) (bool, error)
}

type OrganizerDirectory interface {
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// UserStats is the user-base summary shown next to event analytics.
type UserStats struct {
	Total       int
	NewLastWeek int
}

type UserStatsReader interface {
	UserStats(ctx context.Context) (UserStats, error)
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

// Notification is one message to one recipient.
type Notification struct {
	Kind      string
	Channel   NotificationChannel
	Recipient string
	Subject   string
	Body      string
	EventID   string
	RSVPID    string
}

type NotificationSender interface {
	Send(ctx context.Context, notification Notification) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
