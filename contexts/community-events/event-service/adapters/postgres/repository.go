package postgresadapter

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the event-service tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&eventModel{},
		&rsvpModel{},
		&ledgerModel{},
		&feedbackModel{},
		&outboxModel{},
	); err != nil {
		return r.logError("events_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) CreateEvent(ctx context.Context, event entities.Event, envelope ports.EventEnvelope) error {
	row := eventModelFromEntity(event)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		return insertOutboxEnvelopeTx(tx, envelope)
	})
	if err != nil && !errors.Is(err, domainerrors.ErrConflict) {
		return r.logError("events_repo_create_event_failed", err, "event_id", row.EventID)
	}
	return err
}

func (r *Repository) GetEventView(ctx context.Context, eventID string) (ports.EventView, error) {
	var row eventModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.EventView{}, domainerrors.ErrEventNotFound
		}
		return ports.EventView{}, r.logError("events_repo_get_event_failed", err, "event_id", strings.TrimSpace(eventID))
	}
	views, err := withAggregates(r.db.WithContext(ctx), []eventModel{row})
	if err != nil {
		return ports.EventView{}, r.logError("events_repo_aggregate_failed", err, "event_id", row.EventID)
	}
	return views[0], nil
}

func (r *Repository) ListEventViews(ctx context.Context, filter ports.EventFilter) ([]ports.EventView, error) {
	query := r.db.WithContext(ctx).Model(&eventModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(location))+"%")
	}
	switch filter.Window {
	case ports.WindowUpcoming:
		query = query.Where("date > ?", filter.Now.UTC()).Order("date ASC")
	case ports.WindowPast:
		query = query.Where("date <= ?", filter.Now.UTC()).Order("date DESC")
	default:
		query = query.Order("created_at ASC")
	}

	var rows []eventModel
	if err := query.Order("event_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("events_repo_list_events_failed", err)
	}
	views, err := withAggregates(r.db.WithContext(ctx), rows)
	if err != nil {
		return nil, r.logError("events_repo_aggregate_failed", err)
	}
	return views, nil
}

func (r *Repository) DecideEvent(ctx context.Context, eventID string, decide ports.DecideFunc) (entities.Event, error) {
	var decided entities.Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}
		next, envelope, err := decide(current.toEntity())
		if err != nil {
			return err
		}
		if err := tx.Model(&eventModel{}).
			Where("event_id = ?", current.EventID).
			Updates(map[string]any{
				"status":     string(next.Status),
				"decided_by": next.DecidedBy,
				"decided_at": utcPtr(next.DecidedAt),
				"updated_at": next.UpdatedAt.UTC(),
			}).Error; err != nil {
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		decided = next
		return nil
	})
	if err != nil {
		return entities.Event{}, r.passDomainError("events_repo_decide_event_failed", err, "event_id", eventID)
	}
	return decided, nil
}

func (r *Repository) UpdateEvent(ctx context.Context, eventID string, revise ports.UpdateFunc) (ports.EventView, error) {
	var view ports.EventView
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}
		views, err := withAggregates(tx, []eventModel{current})
		if err != nil {
			return err
		}
		next, envelope, err := revise(views[0])
		if err != nil {
			return err
		}
		if err := tx.Model(&eventModel{}).
			Where("event_id = ?", current.EventID).
			Updates(map[string]any{
				"title":              next.Title,
				"description":        next.Description,
				"category":           string(next.Category),
				"location":           next.Location,
				"date":               next.Date.UTC(),
				"max_attendees":      next.MaxAttendees,
				"status":             string(next.Status),
				"decided_by":         next.DecidedBy,
				"decided_at":         utcPtr(next.DecidedAt),
				"reminder_queued_at": utcPtr(next.ReminderQueuedAt),
				"updated_at":         next.UpdatedAt.UTC(),
			}).Error; err != nil {
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		view = views[0]
		view.Event = next
		return nil
	})
	if err != nil {
		return ports.EventView{}, r.passDomainError("events_repo_update_event_failed", err, "event_id", eventID)
	}
	return view, nil
}

// DeleteEvent removes dependents before the event row. Outbox rows stay so
// the deletion itself is still relayed.
func (r *Repository) DeleteEvent(ctx context.Context, eventID string, remove ports.RemoveFunc) (entities.Event, error) {
	var deleted entities.Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}
		var rows []rsvpModel
		if err := tx.Where("event_id = ?", current.EventID).
			Order("created_at ASC, rsvp_id ASC").
			Find(&rows).Error; err != nil {
			return err
		}
		rsvps := make([]entities.RSVP, 0, len(rows))
		for _, row := range rows {
			rsvps = append(rsvps, row.toEntity())
		}
		envelope, err := remove(current.toEntity(), rsvps)
		if err != nil {
			return err
		}
		for _, model := range []any{&feedbackModel{}, &ledgerModel{}, &rsvpModel{}, &eventModel{}} {
			if err := tx.Where("event_id = ?", current.EventID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		deleted = current.toEntity()
		return nil
	})
	if err != nil {
		return entities.Event{}, r.passDomainError("events_repo_delete_event_failed", err, "event_id", eventID)
	}
	return deleted, nil
}

// AdmitRSVP locks the event row for the whole read-check-write, which
// serializes admissions per event across processes.
func (r *Repository) AdmitRSVP(
	ctx context.Context,
	eventID string,
	userID string,
	admit ports.AdmitFunc,
) (ports.AdmissionResult, error) {
	var result ports.AdmissionResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eventRow, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}
		event := eventRow.toEntity()

		var existing *entities.RSVP
		var existingRow rsvpModel
		err = tx.Where("event_id = ? AND user_id = ?", event.EventID, strings.TrimSpace(userID)).
			Take(&existingRow).Error
		switch {
		case err == nil:
			current := existingRow.toEntity()
			existing = &current
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		var committed int64
		if err := tx.Model(&rsvpModel{}).
			Where("event_id = ?", event.EventID).
			Select("COALESCE(SUM(attendee_count), 0)").
			Scan(&committed).Error; err != nil {
			return err
		}

		admission, err := admit(event, existing, int(committed))
		if err != nil {
			return err
		}
		row := rsvpModelFromEntity(admission.RSVP)
		previous := 0
		if existing == nil {
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrConflict
				}
				return err
			}
			ledger := ledgerModel{
				RecordID:      row.RSVPID,
				EventID:       row.EventID,
				UserID:        row.UserID,
				AttendeeCount: row.AttendeeCount,
				CreatedAt:     row.CreatedAt,
			}
			if err := tx.Create(&ledger).Error; err != nil {
				return err
			}
		} else {
			previous = existing.AttendeeCount
			updated := tx.Model(&rsvpModel{}).
				Where("rsvp_id = ?", existing.RSVPID).
				Updates(map[string]any{
					"name":           row.Name,
					"email":          row.Email,
					"phone":          row.Phone,
					"attendee_count": row.AttendeeCount,
					"updated_at":     row.UpdatedAt,
				})
			if updated.Error != nil {
				return updated.Error
			}
			// The reservation read above must still exist, or the outbox
			// would describe an admission that never landed.
			if updated.RowsAffected != 1 {
				return domainerrors.ErrConflict
			}
			if err := tx.Model(&ledgerModel{}).
				Where("event_id = ? AND user_id = ? AND cancelled_at IS NULL", row.EventID, row.UserID).
				Update("attendee_count", row.AttendeeCount).Error; err != nil {
				return err
			}
		}
		if err := insertOutboxEnvelopeTx(tx, admission.Envelope); err != nil {
			return err
		}

		result = ports.AdmissionResult{
			Event:              event,
			RSVP:               row.toEntity(),
			Created:            existing == nil,
			CommittedAttendees: int(committed) - previous + row.AttendeeCount,
		}
		return nil
	})
	if err != nil {
		return ports.AdmissionResult{}, r.passDomainError("events_repo_admit_rsvp_failed", err,
			"event_id", eventID, "user_id", userID)
	}
	return result, nil
}

func (r *Repository) CancelRSVP(
	ctx context.Context,
	eventID string,
	userID string,
	at time.Time,
	event ports.CancellationFunc,
) (entities.RSVP, bool, error) {
	var cancelled entities.RSVP
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Same lock order as AdmitRSVP: event row first, so a cancel and an
		// admission for one event never interleave.
		eventRow, err := lockEvent(tx, eventID)
		if errors.Is(err, domainerrors.ErrEventNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var row rsvpModel
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ? AND user_id = ?", eventRow.EventID, strings.TrimSpace(userID)).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		envelope, err := event(row.toEntity())
		if err != nil {
			return err
		}
		if err := tx.Where("rsvp_id = ?", row.RSVPID).Delete(&rsvpModel{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&ledgerModel{}).
			Where("event_id = ? AND user_id = ? AND cancelled_at IS NULL", row.EventID, row.UserID).
			Update("cancelled_at", at.UTC()).Error; err != nil {
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		cancelled = row.toEntity()
		removed = true
		return nil
	})
	if err != nil {
		return entities.RSVP{}, false, r.passDomainError("events_repo_cancel_rsvp_failed", err,
			"event_id", eventID, "user_id", userID)
	}
	return cancelled, removed, nil
}

// MarkAttendance resolves the reservation's event first, then locks the event
// before the reservation, the order every other RSVP write uses.
func (r *Repository) MarkAttendance(ctx context.Context, rsvpID string, mark ports.AttendanceFunc) (entities.RSVP, error) {
	rsvpID = strings.TrimSpace(rsvpID)
	var marked entities.RSVP
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eventIDs []string
		if err := tx.Model(&rsvpModel{}).
			Where("rsvp_id = ?", rsvpID).
			Pluck("event_id", &eventIDs).Error; err != nil {
			return err
		}
		if len(eventIDs) == 0 {
			return domainerrors.ErrRSVPNotFound
		}
		eventRow, err := lockEvent(tx, eventIDs[0])
		if errors.Is(err, domainerrors.ErrEventNotFound) {
			return domainerrors.ErrRSVPNotFound
		}
		if err != nil {
			return err
		}
		var row rsvpModel
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("rsvp_id = ?", rsvpID).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrRSVPNotFound
		}
		if err != nil {
			return err
		}
		next, envelope, err := mark(eventRow.toEntity(), row.toEntity())
		if err != nil {
			return err
		}
		if err := tx.Model(&rsvpModel{}).
			Where("rsvp_id = ?", row.RSVPID).
			Updates(map[string]any{
				"attended":             next.Attended,
				"attendance_marked_at": utcPtr(next.AttendanceMarkedAt),
				"updated_at":           next.UpdatedAt.UTC(),
			}).Error; err != nil {
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		marked = next
		return nil
	})
	if err != nil {
		return entities.RSVP{}, r.passDomainError("events_repo_mark_attendance_failed", err, "rsvp_id", rsvpID)
	}
	return marked, nil
}

func (r *Repository) GetRSVP(ctx context.Context, eventID string, userID string) (entities.RSVP, bool, error) {
	var row rsvpModel
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", strings.TrimSpace(eventID), strings.TrimSpace(userID)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.RSVP{}, false, nil
	}
	if err != nil {
		return entities.RSVP{}, false, r.logError("events_repo_get_rsvp_failed", err, "event_id", eventID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListRSVPs(ctx context.Context, eventID string) ([]entities.RSVP, error) {
	var rows []rsvpModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("created_at ASC, rsvp_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("events_repo_list_rsvps_failed", err, "event_id", eventID)
	}
	items := make([]entities.RSVP, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateFeedback(ctx context.Context, feedback entities.Feedback) error {
	row := feedbackModel{
		FeedbackID: strings.TrimSpace(feedback.FeedbackID),
		EventID:    strings.TrimSpace(feedback.EventID),
		UserID:     strings.TrimSpace(feedback.UserID),
		Rating:     feedback.Rating,
		Comment:    feedback.Comment,
		CreatedAt:  feedback.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrFeedbackExists
		}
		return r.logError("events_repo_create_feedback_failed", err, "event_id", row.EventID)
	}
	return nil
}

func (r *Repository) ListFeedback(ctx context.Context, eventID string) ([]entities.Feedback, error) {
	var rows []feedbackModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("created_at DESC, feedback_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("events_repo_list_feedback_failed", err, "event_id", eventID)
	}
	items := make([]entities.Feedback, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// ReadSnapshot reads events, ledger and feedback inside one REPEATABLE READ
// transaction so all three come from the same database snapshot.
func (r *Repository) ReadSnapshot(ctx context.Context, organizerID string) (ports.Snapshot, error) {
	organizerID = strings.TrimSpace(organizerID)
	var snapshot ports.Snapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&eventModel{})
		if organizerID != "" {
			query = query.Where("organizer_id = ?", organizerID)
		}
		var rows []eventModel
		if err := query.Order("created_at ASC, event_id ASC").Find(&rows).Error; err != nil {
			return err
		}
		views, err := withAggregates(tx, rows)
		if err != nil {
			return err
		}
		snapshot.Events = views
		if len(rows) == 0 {
			return nil
		}

		eventIDs := make([]string, 0, len(rows))
		for _, row := range rows {
			eventIDs = append(eventIDs, row.EventID)
		}
		var ledger []ledgerModel
		if err := tx.Where("event_id IN ?", eventIDs).
			Order("created_at ASC, record_id ASC").
			Find(&ledger).Error; err != nil {
			return err
		}
		for _, row := range ledger {
			snapshot.Ledger = append(snapshot.Ledger, row.toEntity())
		}
		var feedback []feedbackModel
		if err := tx.Where("event_id IN ?", eventIDs).
			Order("feedback_id ASC").
			Find(&feedback).Error; err != nil {
			return err
		}
		for _, row := range feedback {
			snapshot.Feedback = append(snapshot.Feedback, row.toEntity())
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return ports.Snapshot{}, r.logError("events_repo_read_snapshot_failed", err, "organizer_id", organizerID)
	}
	return snapshot, nil
}

func (r *Repository) ListDueReminders(ctx context.Context, now time.Time, window time.Duration, limit int) ([]ports.EventView, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []eventModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND reminder_queued_at IS NULL AND date > ? AND date <= ?",
			string(entities.EventStatusApproved), now.UTC(), now.Add(window).UTC()).
		Order("date ASC, event_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("events_repo_list_due_reminders_failed", err)
	}
	views, err := withAggregates(r.db.WithContext(ctx), rows)
	if err != nil {
		return nil, r.logError("events_repo_aggregate_failed", err)
	}
	return views, nil
}

func (r *Repository) QueueReminder(ctx context.Context, eventID string, at time.Time, envelope ports.EventEnvelope) (bool, error) {
	queued := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&eventModel{}).
			Where("event_id = ? AND reminder_queued_at IS NULL", strings.TrimSpace(eventID)).
			Update("reminder_queued_at", at.UTC())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		queued = true
		return nil
	})
	if err != nil {
		return false, r.passDomainError("events_repo_queue_reminder_failed", err, "event_id", eventID)
	}
	return queued, nil
}

func lockEvent(tx *gorm.DB, eventID string) (eventModel, error) {
	var row eventModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return eventModel{}, domainerrors.ErrEventNotFound
	}
	return row, err
}

func withAggregates(db *gorm.DB, rows []eventModel) ([]ports.EventView, error) {
	views := make([]ports.EventView, 0, len(rows))
	if len(rows) == 0 {
		return views, nil
	}
	eventIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		eventIDs = append(eventIDs, row.EventID)
	}
	var aggregates []rsvpAggregate
	if err := db.Model(&rsvpModel{}).
		Select("event_id, COUNT(*) AS rsvp_count, COALESCE(SUM(attendee_count), 0) AS committed_attendees").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&aggregates).Error; err != nil {
		return nil, err
	}
	byEvent := make(map[string]rsvpAggregate, len(aggregates))
	for _, item := range aggregates {
		byEvent[item.EventID] = item
	}
	for _, row := range rows {
		aggregate := byEvent[row.EventID]
		views = append(views, ports.EventView{
			Event:              row.toEntity(),
			RSVPCount:          int(aggregate.RSVPCount),
			CommittedAttendees: int(aggregate.CommittedAttendees),
		})
	}
	return views, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// passDomainError returns domain errors untouched and logs everything else.
func (r *Repository) passDomainError(event string, err error, attrs ...any) error {
	if isDomainError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return r.logError(event, err, attrs...)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domainerrors.ErrValidation,
		domainerrors.ErrForbidden,
		domainerrors.ErrEventNotFound,
		domainerrors.ErrRSVPNotFound,
		domainerrors.ErrInvalidState,
		domainerrors.ErrEventNotOpen,
		domainerrors.ErrCapacityExceeded,
		domainerrors.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-events/event-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("event repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.EventRepository    = (*Repository)(nil)
	_ ports.RSVPRepository     = (*Repository)(nil)
	_ ports.FeedbackRepository = (*Repository)(nil)
	_ ports.SnapshotReader     = (*Repository)(nil)
	_ ports.ReminderRepository = (*Repository)(nil)
	_ ports.OutboxRepository   = (*Repository)(nil)
)
