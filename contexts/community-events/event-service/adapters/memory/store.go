package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store keeps the event-service state in process memory. A single store-wide
// lock serializes every read-check-write, so admissions cannot interleave.
type Store struct {
	mu sync.RWMutex

	events   map[string]entities.Event
	rsvps    map[string]entities.RSVP
	ledger   []entities.RSVPRecord
	open     map[string]int
	feedback map[string]entities.Feedback
	outbox   map[string]outboxRecord
}

func NewStore(seed []entities.Event) *Store {
	events := make(map[string]entities.Event, len(seed))
	for _, item := range seed {
		events[item.EventID] = item
	}
	return &Store{
		events:   events,
		rsvps:    make(map[string]entities.RSVP),
		ledger:   make([]entities.RSVPRecord, 0),
		open:     make(map[string]int),
		feedback: make(map[string]entities.Feedback),
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) CreateEvent(ctx context.Context, event entities.Event, envelope ports.EventEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.EventID]; exists {
		return domainerrors.ErrConflict
	}
	if err := s.checkOutboxLocked(envelope); err != nil {
		return err
	}
	s.events[event.EventID] = event
	return s.appendOutboxLocked(envelope)
}

func (s *Store) GetEventView(_ context.Context, eventID string) (ports.EventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[strings.TrimSpace(eventID)]
	if !ok {
		return ports.EventView{}, domainerrors.ErrEventNotFound
	}
	return s.viewLocked(event), nil
}

func (s *Store) ListEventViews(_ context.Context, filter ports.EventFilter) ([]ports.EventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	location := strings.ToLower(strings.TrimSpace(filter.Location))
	items := make([]ports.EventView, 0, len(s.events))
	for _, event := range s.events {
		if filter.Status != "" && event.Status != filter.Status {
			continue
		}
		if filter.Category != "" && event.Category != filter.Category {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(event.Location), location) {
			continue
		}
		switch filter.Window {
		case ports.WindowUpcoming:
			if !event.Date.After(filter.Now) {
				continue
			}
		case ports.WindowPast:
			if event.Date.After(filter.Now) {
				continue
			}
		}
		items = append(items, s.viewLocked(event))
	}
	sortViews(items, filter.Window)
	return items, nil
}

func (s *Store) DecideEvent(ctx context.Context, eventID string, decide ports.DecideFunc) (entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.events[strings.TrimSpace(eventID)]
	if !ok {
		return entities.Event{}, domainerrors.ErrEventNotFound
	}
	next, envelope, err := decide(current)
	if err != nil {
		return entities.Event{}, err
	}
	if err := ctx.Err(); err != nil {
		return entities.Event{}, err
	}
	if err := s.checkOutboxLocked(envelope); err != nil {
		return entities.Event{}, err
	}
	s.events[current.EventID] = next
	return next, s.appendOutboxLocked(envelope)
}

func (s *Store) UpdateEvent(ctx context.Context, eventID string, revise ports.UpdateFunc) (ports.EventView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.events[strings.TrimSpace(eventID)]
	if !ok {
		return ports.EventView{}, domainerrors.ErrEventNotFound
	}
	next, envelope, err := revise(s.viewLocked(current))
	if err != nil {
		return ports.EventView{}, err
	}
	if err := ctx.Err(); err != nil {
		return ports.EventView{}, err
	}
	if err := s.checkOutboxLocked(envelope); err != nil {
		return ports.EventView{}, err
	}
	s.events[current.EventID] = next
	return s.viewLocked(next), s.appendOutboxLocked(envelope)
}

func (s *Store) DeleteEvent(ctx context.Context, eventID string, remove ports.RemoveFunc) (entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.events[strings.TrimSpace(eventID)]
	if !ok {
		return entities.Event{}, domainerrors.ErrEventNotFound
	}
	envelope, err := remove(current, s.rsvpsLocked(current.EventID))
	if err != nil {
		return entities.Event{}, err
	}
	if err := ctx.Err(); err != nil {
		return entities.Event{}, err
	}
	if err := s.checkOutboxLocked(envelope); err != nil {
		return entities.Event{}, err
	}

	delete(s.events, current.EventID)
	for key, item := range s.rsvps {
		if item.EventID == current.EventID {
			delete(s.rsvps, key)
		}
	}
	for key, item := range s.feedback {
		if item.EventID == current.EventID {
			delete(s.feedback, key)
		}
	}
	kept := s.ledger[:0]
	for _, record := range s.ledger {
		if record.EventID != current.EventID {
			kept = append(kept, record)
		}
	}
	s.ledger = kept
	// Ledger positions shifted, so the open index is rebuilt.
	s.open = make(map[string]int, len(s.open))
	for idx, record := range s.ledger {
		if record.CancelledAt == nil {
			s.open[rsvpKey(record.EventID, record.UserID)] = idx
		}
	}
	return current, s.appendOutboxLocked(envelope)
}

func (s *Store) AdmitRSVP(
	ctx context.Context,
	eventID string,
	userID string,
	admit ports.AdmitFunc,
) (ports.AdmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[strings.TrimSpace(eventID)]
	if !ok {
		return ports.AdmissionResult{}, domainerrors.ErrEventNotFound
	}
	key := rsvpKey(event.EventID, userID)
	var existing *entities.RSVP
	if current, ok := s.rsvps[key]; ok {
		existing = &current
	}
	committed := s.committedLocked(event.EventID)

	admission, err := admit(event, existing, committed)
	if err != nil {
		return ports.AdmissionResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ports.AdmissionResult{}, err
	}
	if err := s.checkOutboxLocked(admission.Envelope); err != nil {
		return ports.AdmissionResult{}, err
	}

	rsvp := admission.RSVP
	s.rsvps[key] = rsvp
	if existing == nil {
		s.open[key] = len(s.ledger)
		s.ledger = append(s.ledger, entities.RSVPRecord{
			RecordID:      rsvp.RSVPID,
			EventID:       rsvp.EventID,
			UserID:        rsvp.UserID,
			AttendeeCount: rsvp.AttendeeCount,
			CreatedAt:     rsvp.CreatedAt,
		})
	} else if idx, ok := s.open[key]; ok {
		s.ledger[idx].AttendeeCount = rsvp.AttendeeCount
	}
	if err := s.appendOutboxLocked(admission.Envelope); err != nil {
		return ports.AdmissionResult{}, err
	}

	return ports.AdmissionResult{
		Event:              event,
		RSVP:               rsvp,
		Created:            existing == nil,
		CommittedAttendees: s.committedLocked(event.EventID),
	}, nil
}

func (s *Store) CancelRSVP(
	ctx context.Context,
	eventID string,
	userID string,
	at time.Time,
	event ports.CancellationFunc,
) (entities.RSVP, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rsvpKey(eventID, userID)
	current, ok := s.rsvps[key]
	if !ok {
		return entities.RSVP{}, false, nil
	}
	envelope, err := event(current)
	if err != nil {
		return entities.RSVP{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return entities.RSVP{}, false, err
	}
	if err := s.checkOutboxLocked(envelope); err != nil {
		return entities.RSVP{}, false, err
	}

	delete(s.rsvps, key)
	if idx, ok := s.open[key]; ok {
		cancelledAt := at.UTC()
		s.ledger[idx].CancelledAt = &cancelledAt
		delete(s.open, key)
	}
	return current, true, s.appendOutboxLocked(envelope)
}

func (s *Store) MarkAttendance(ctx context.Context, rsvpID string, mark ports.AttendanceFunc) (entities.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rsvpID = strings.TrimSpace(rsvpID)
	key, current, ok := "", entities.RSVP{}, false
	for candidate, item := range s.rsvps {
		if item.RSVPID == rsvpID {
			key, current, ok = candidate, item, true
			break
		}
	}
	if !ok {
		return entities.RSVP{}, domainerrors.ErrRSVPNotFound
	}
	event, ok := s.events[current.EventID]
	if !ok {
		return entities.RSVP{}, domainerrors.ErrRSVPNotFound
	}
	next, envelope, err := mark(event, current)
	if err != nil {
		return entities.RSVP{}, err
	}
	if err := ctx.Err(); err != nil {
		return entities.RSVP{}, err
	}
	if err := s.checkOutboxLocked(envelope); err != nil {
		return entities.RSVP{}, err
	}
	s.rsvps[key] = next
	return next, s.appendOutboxLocked(envelope)
}

func (s *Store) GetRSVP(_ context.Context, eventID string, userID string) (entities.RSVP, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.rsvps[rsvpKey(eventID, userID)]
	return item, ok, nil
}

func (s *Store) ListRSVPs(_ context.Context, eventID string) ([]entities.RSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rsvpsLocked(strings.TrimSpace(eventID)), nil
}

func (s *Store) rsvpsLocked(eventID string) []entities.RSVP {
	items := make([]entities.RSVP, 0)
	for _, item := range s.rsvps {
		if item.EventID == eventID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].RSVPID < items[j].RSVPID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

func (s *Store) CreateFeedback(ctx context.Context, feedback entities.Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rsvpKey(feedback.EventID, feedback.UserID)
	if _, exists := s.feedback[key]; exists {
		return domainerrors.ErrFeedbackExists
	}
	s.feedback[key] = feedback
	return nil
}

func (s *Store) ListFeedback(_ context.Context, eventID string) ([]entities.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eventID = strings.TrimSpace(eventID)
	items := make([]entities.Feedback, 0)
	for _, item := range s.feedback {
		if item.EventID == eventID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].FeedbackID < items[j].FeedbackID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// ReadSnapshot copies everything under one read lock, so an in-flight
// admission is either fully visible or not visible at all.
func (s *Store) ReadSnapshot(_ context.Context, organizerID string) (ports.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	organizerID = strings.TrimSpace(organizerID)
	selected := make(map[string]struct{})
	snapshot := ports.Snapshot{}
	for _, event := range s.events {
		if organizerID != "" && event.OrganizerID != organizerID {
			continue
		}
		selected[event.EventID] = struct{}{}
		snapshot.Events = append(snapshot.Events, s.viewLocked(event))
	}
	sortViews(snapshot.Events, ports.WindowAny)
	for _, record := range s.ledger {
		if _, ok := selected[record.EventID]; ok {
			snapshot.Ledger = append(snapshot.Ledger, copyRecord(record))
		}
	}
	for _, item := range s.feedback {
		if _, ok := selected[item.EventID]; ok {
			snapshot.Feedback = append(snapshot.Feedback, item)
		}
	}
	sort.Slice(snapshot.Feedback, func(i, j int) bool {
		return snapshot.Feedback[i].FeedbackID < snapshot.Feedback[j].FeedbackID
	})
	return snapshot, nil
}

func (s *Store) ListDueReminders(_ context.Context, now time.Time, window time.Duration, limit int) ([]ports.EventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	horizon := now.Add(window)
	items := make([]ports.EventView, 0)
	for _, event := range s.events {
		if event.Status != entities.EventStatusApproved || event.ReminderQueuedAt != nil {
			continue
		}
		if !event.Date.After(now) || event.Date.After(horizon) {
			continue
		}
		items = append(items, s.viewLocked(event))
	}
	sortViews(items, ports.WindowUpcoming)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) QueueReminder(ctx context.Context, eventID string, at time.Time, envelope ports.EventEnvelope) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[strings.TrimSpace(eventID)]
	if !ok {
		return false, domainerrors.ErrEventNotFound
	}
	if event.ReminderQueuedAt != nil {
		return false, nil
	}
	if err := s.checkOutboxLocked(envelope); err != nil {
		return false, err
	}
	queuedAt := at.UTC()
	event.ReminderQueuedAt = &queuedAt
	s.events[event.EventID] = event
	return true, s.appendOutboxLocked(envelope)
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) viewLocked(event entities.Event) ports.EventView {
	view := ports.EventView{Event: event}
	for _, item := range s.rsvps {
		if item.EventID != event.EventID {
			continue
		}
		view.RSVPCount++
		view.CommittedAttendees += item.AttendeeCount
	}
	return view
}

func (s *Store) committedLocked(eventID string) int {
	total := 0
	for _, item := range s.rsvps {
		if item.EventID == eventID {
			total += item.AttendeeCount
		}
	}
	return total
}

// checkOutboxLocked rejects an envelope whose id was already used for a
// different payload. It runs before any state change.
func (s *Store) checkOutboxLocked(envelope ports.EventEnvelope) error {
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		return nil
	}
	existing, ok := s.outbox[outboxID]
	if !ok {
		return nil
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	if !bytes.Equal(existing.message.Payload, payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (s *Store) appendOutboxLocked(envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, ok := s.outbox[outboxID]; ok {
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func sortViews(items []ports.EventView, window ports.TimeWindow) {
	sort.Slice(items, func(i, j int) bool {
		left, right := items[i].Event, items[j].Event
		switch window {
		case ports.WindowUpcoming:
			if !left.Date.Equal(right.Date) {
				return left.Date.Before(right.Date)
			}
		case ports.WindowPast:
			if !left.Date.Equal(right.Date) {
				return left.Date.After(right.Date)
			}
		default:
			if !left.CreatedAt.Equal(right.CreatedAt) {
				return left.CreatedAt.Before(right.CreatedAt)
			}
		}
		return left.EventID < right.EventID
	})
}

func copyRecord(record entities.RSVPRecord) entities.RSVPRecord {
	if record.CancelledAt != nil {
		cancelledAt := *record.CancelledAt
		record.CancelledAt = &cancelledAt
	}
	return record
}

func rsvpKey(eventID string, userID string) string {
	return strings.TrimSpace(eventID) + "|" + strings.TrimSpace(userID)
}

var (
	_ ports.EventRepository    = (*Store)(nil)
	_ ports.RSVPRepository     = (*Store)(nil)
	_ ports.FeedbackRepository = (*Store)(nil)
	_ ports.SnapshotReader     = (*Store)(nil)
	_ ports.ReminderRepository = (*Store)(nil)
	_ ports.OutboxRepository   = (*Store)(nil)
	_ ports.Clock              = (*Store)(nil)
	_ ports.IDGenerator        = (*Store)(nil)
)
