package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "communitypulse/contexts/community-events/event-service/application"
	"communitypulse/contexts/community-events/event-service/application/commands"
	"communitypulse/contexts/community-events/event-service/ports"
)

const (
	NotificationRSVPConfirmation = "rsvp_confirmation"
	NotificationEventReminder    = "event_reminder"
	NotificationEventCancelled   = "event_cancelled"
)

// NotificationDispatcher turns relayed envelopes into attendee messages:
// confirmations on admission, reminders when an event comes due, and a
// cancellation notice when an event is deleted.
type NotificationDispatcher struct {
	RSVPs  ports.RSVPRepository
	Sender ports.NotificationSender
	Logger *slog.Logger
}

// Topics lists the bus topics Handle understands.
func (d NotificationDispatcher) Topics() []string {
	types := []string{commands.EventTypeRSVPAdmitted, EventTypeReminderDue, commands.EventTypeEventDeleted}
	topics := make([]string, 0, len(types))
	for _, eventType := range types {
		topics = append(topics, ports.EventEnvelope{EventType: eventType}.Topic())
	}
	return topics
}

type admittedPayload struct {
	RSVPID        string `json:"rsvp_id"`
	EventID       string `json:"event_id"`
	EventTitle    string `json:"event_title"`
	EventDate     string `json:"event_date"`
	EventLocation string `json:"event_location"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AttendeeCount int    `json:"attendee_count"`
}

type reminderPayload struct {
	EventID  string `json:"event_id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

type deletedPayload struct {
	EventID    string `json:"event_id"`
	EventTitle string `json:"event_title"`
	EventDate  string `json:"event_date"`
	Attendees  []struct {
		RSVPID string `json:"rsvp_id"`
		Email  string `json:"email"`
		Phone  string `json:"phone"`
	} `json:"attendees"`
}

// Handle sends every notification an envelope calls for. Unknown event types
// are ignored. A failed send does not stop the remaining recipients; the
// joined error is returned so the bus logs it.
func (d NotificationDispatcher) Handle(ctx context.Context, envelope ports.EventEnvelope) error {
	var (
		notifications []ports.Notification
		err           error
	)
	switch envelope.EventType {
	case commands.EventTypeRSVPAdmitted:
		notifications, err = d.confirmation(envelope)
	case EventTypeReminderDue:
		notifications, err = d.reminders(ctx, envelope)
	case commands.EventTypeEventDeleted:
		notifications, err = d.cancellations(envelope)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode %s envelope %s: %w", envelope.EventType, envelope.EventID, err)
	}
	return d.sendAll(ctx, envelope, notifications)
}

func (d NotificationDispatcher) confirmation(envelope ports.EventEnvelope) ([]ports.Notification, error) {
	var payload admittedPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return nil, err
	}
	when := formatWhen(payload.EventDate, "Monday, January 02 at 03:04 PM")
	subject := "RSVP Confirmation: " + payload.EventTitle
	body := fmt.Sprintf("You're confirmed for %s.\nWhen: %s\nWhere: %s\nAttendees: %d",
		payload.EventTitle, when, payload.EventLocation, payload.AttendeeCount)
	sms := fmt.Sprintf("RSVP confirmed for %s on %s", payload.EventTitle, formatWhen(payload.EventDate, "01/02"))
	return contactNotifications(NotificationRSVPConfirmation, payload.EventID, payload.RSVPID,
		payload.Email, payload.Phone, subject, body, sms), nil
}

func (d NotificationDispatcher) reminders(ctx context.Context, envelope ports.EventEnvelope) ([]ports.Notification, error) {
	var payload reminderPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return nil, err
	}
	rsvps, err := d.RSVPs.ListRSVPs(ctx, payload.EventID)
	if err != nil {
		return nil, err
	}
	when := formatWhen(payload.Date, "Monday, January 02 at 03:04 PM")
	subject := fmt.Sprintf("Reminder: %s starting soon!", payload.Title)
	body := fmt.Sprintf("%s is coming up.\nWhen: %s\nWhere: %s", payload.Title, when, payload.Location)
	sms := fmt.Sprintf("Reminder: %s at %s", payload.Title, formatWhen(payload.Date, "01/02 03:04 PM"))

	notifications := make([]ports.Notification, 0, 2*len(rsvps))
	for _, rsvp := range rsvps {
		notifications = append(notifications, contactNotifications(NotificationEventReminder, payload.EventID,
			rsvp.RSVPID, rsvp.Email, rsvp.Phone, subject, body, sms)...)
	}
	return notifications, nil
}

func (d NotificationDispatcher) cancellations(envelope ports.EventEnvelope) ([]ports.Notification, error) {
	var payload deletedPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return nil, err
	}
	when := formatWhen(payload.EventDate, "Monday, January 02")
	subject := "Cancelled: " + payload.EventTitle
	body := fmt.Sprintf("%s on %s has been cancelled by the organizer.", payload.EventTitle, when)
	sms := fmt.Sprintf("%s on %s is cancelled", payload.EventTitle, formatWhen(payload.EventDate, "01/02"))

	notifications := make([]ports.Notification, 0, 2*len(payload.Attendees))
	for _, attendee := range payload.Attendees {
		notifications = append(notifications, contactNotifications(NotificationEventCancelled, payload.EventID,
			attendee.RSVPID, attendee.Email, attendee.Phone, subject, body, sms)...)
	}
	return notifications, nil
}

func (d NotificationDispatcher) sendAll(ctx context.Context, envelope ports.EventEnvelope, notifications []ports.Notification) error {
	logger := application.ResolveLogger(d.Logger)
	var errs []error
	sent := 0
	for _, notification := range notifications {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.Sender.Send(ctx, notification); err != nil {
			logger.Warn("notification send failed",
				"event", "events_notification_send_failed",
				"module", "community-events/event-service",
				"layer", "worker",
				"kind", notification.Kind,
				"channel", string(notification.Channel),
				"event_id", notification.EventID,
				"rsvp_id", notification.RSVPID,
				"error", err.Error(),
			)
			errs = append(errs, err)
			continue
		}
		sent++
	}
	logger.Info("notifications dispatched",
		"event", "events_notifications_dispatched",
		"module", "community-events/event-service",
		"layer", "worker",
		"envelope_id", envelope.EventID,
		"event_type", envelope.EventType,
		"sent_count", sent,
		"failed_count", len(errs),
	)
	return errors.Join(errs...)
}

// contactNotifications builds an email when an address is known and an SMS
// when a phone number is known.
func contactNotifications(kind, eventID, rsvpID, email, phone, subject, body, sms string) []ports.Notification {
	items := make([]ports.Notification, 0, 2)
	if email = strings.TrimSpace(email); email != "" {
		items = append(items, ports.Notification{
			Kind:      kind,
			Channel:   ports.ChannelEmail,
			Recipient: email,
			Subject:   subject,
			Body:      body,
			EventID:   eventID,
			RSVPID:    rsvpID,
		})
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		items = append(items, ports.Notification{
			Kind:      kind,
			Channel:   ports.ChannelSMS,
			Recipient: phone,
			Body:      sms,
			EventID:   eventID,
			RSVPID:    rsvpID,
		})
	}
	return items
}

func formatWhen(raw string, layout string) string {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return parsed.UTC().Format(layout)
}
