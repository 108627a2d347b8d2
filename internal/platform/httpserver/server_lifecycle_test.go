package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"communitypulse/contexts/community-events/event-service/domain/entities"
	eventports "communitypulse/contexts/community-events/event-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventBody(title string, maxAttendees int) map[string]any {
	return map[string]any{
		"title":         title,
		"description":   "Bring gloves",
		"category":      "community",
		"location":      "Harbor Front",
		"date":          time.Now().UTC().Add(96 * time.Hour).Format(time.RFC3339),
		"max_attendees": maxAttendees,
	}
}

func approveEvent(t *testing.T, server *Server, admin string, eventID string) {
	t.Helper()
	rr, _ := doRequest(t, server, http.MethodPost, "/admin/approve-event/"+eventID+"?approve=true", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func requestRSVP(t *testing.T, server *Server, token string, eventID string, count int) string {
	t.Helper()
	rr, env := doRequest(t, server, http.MethodPost, "/rsvp/"+eventID, token, map[string]any{
		"name":           "Guest",
		"email":          "guest@example.com",
		"phone":          "555-0101",
		"attendee_count": count,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var admitted struct {
		RSVP struct {
			RSVPID string `json:"rsvp_id"`
		} `json:"rsvp"`
	}
	decodeData(t, env, &admitted)
	return admitted.RSVP.RSVPID
}

func TestUpdateEventRoutes(t *testing.T) {
	server := newTestServer()
	admin := signup(t, server, "Ada", testAdminEmail)
	organizer := signup(t, server, "Olive", "olive@example.com")
	stranger := signup(t, server, "Sam", "sam@example.com")
	guest := signup(t, server, "Gus", "gus@example.com")

	event := createEvent(t, server, organizer, 5)
	approveEvent(t, server, admin, event.EventID)
	requestRSVP(t, server, guest, event.EventID, 3)

	rr, env := doRequest(t, server, http.MethodPut, "/events/"+event.EventID, "", eventBody("Renamed", 5))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPut, "/events/"+event.EventID, stranger, eventBody("Renamed", 5))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPut, "/events/missing", organizer, eventBody("Renamed", 5))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPut, "/events/"+event.EventID, organizer, eventBody("Renamed", 2))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPut, "/events/"+event.EventID, admin, eventBody("Renamed by admin", 8))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated eventPayload
	decodeData(t, env, &updated)
	assert.Equal(t, "approved", updated.Status)
	assert.Equal(t, 3, updated.CommittedAttendees)
	assert.Equal(t, 5, updated.RemainingCapacity)

	rr, env = doRequest(t, server, http.MethodPut, "/events/"+event.EventID, organizer, eventBody("Renamed", 8))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, env, &updated)
	assert.Equal(t, "pending", updated.Status, "organizer edits go back to review")

	rr, _ = doRequest(t, server, http.MethodGet, "/events/"+event.EventID, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "pending events are hidden from the public")
}

func TestDeleteEventRoutes(t *testing.T) {
	server := newTestServer()
	admin := signup(t, server, "Ada", testAdminEmail)
	organizer := signup(t, server, "Olive", "olive@example.com")
	stranger := signup(t, server, "Sam", "sam@example.com")

	first := createEvent(t, server, organizer, 5)
	second := createEvent(t, server, organizer, 5)

	rr, env := doRequest(t, server, http.MethodDelete, "/events/"+first.EventID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodDelete, "/events/"+first.EventID, stranger, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodDelete, "/events/"+first.EventID, organizer, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var deleted struct {
		EventID string `json:"event_id"`
		Deleted bool   `json:"deleted"`
	}
	decodeData(t, env, &deleted)
	assert.Equal(t, first.EventID, deleted.EventID)
	assert.True(t, deleted.Deleted)

	rr, env = doRequest(t, server, http.MethodDelete, "/events/"+first.EventID, organizer, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, _ = doRequest(t, server, http.MethodDelete, "/events/"+second.EventID, admin, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMarkAttendanceRoute(t *testing.T) {
	server := newTestServer()
	admin := signup(t, server, "Ada", testAdminEmail)
	organizer := signup(t, server, "Olive", "olive@example.com")
	guest := signup(t, server, "Gus", "gus@example.com")

	event := createEvent(t, server, organizer, 5)
	approveEvent(t, server, admin, event.EventID)
	rsvpID := requestRSVP(t, server, guest, event.EventID, 2)
	attendPath := "/rsvp/" + rsvpID + "/attend"

	rr, env := doRequest(t, server, http.MethodPost, attendPath, organizer, nil)
	assert.Equal(t, http.StatusConflict, rr.Code, "attendance opens at the event start")
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	// Move the event into the past through the store port.
	_, err := server.modules.Events.Store.UpdateEvent(context.Background(), event.EventID,
		func(current eventports.EventView) (entities.Event, eventports.EventEnvelope, error) {
			next := current.Event
			next.Date = time.Now().UTC().Add(-time.Hour)
			return next, eventports.EventEnvelope{}, nil
		})
	require.NoError(t, err)

	rr, env = doRequest(t, server, http.MethodPost, attendPath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPost, attendPath, guest, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPost, "/rsvp/missing/attend", organizer, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPost, attendPath+"?attended=maybe", organizer, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	var marked struct {
		RSVPID             string `json:"rsvp_id"`
		Attended           bool   `json:"attended"`
		AttendanceMarkedAt string `json:"attendance_marked_at"`
	}
	rr, env = doRequest(t, server, http.MethodPost, attendPath, organizer, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, env, &marked)
	assert.Equal(t, rsvpID, marked.RSVPID)
	assert.True(t, marked.Attended, "attended defaults to true")
	assert.NotEmpty(t, marked.AttendanceMarkedAt)

	rr, env = doRequest(t, server, http.MethodPost, attendPath+"?attended=false", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, env, &marked)
	assert.False(t, marked.Attended)

	rr, env = doRequest(t, server, http.MethodPost, attendPath, organizer, `{"attended":true}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, env, &marked)
	assert.True(t, marked.Attended)

	rr, env = doRequest(t, server, http.MethodGet, "/events/"+event.EventID+"/rsvps", organizer, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var listed struct {
		Items []struct {
			RSVPID   string `json:"rsvp_id"`
			Attended bool   `json:"attended"`
		} `json:"items"`
	}
	decodeData(t, env, &listed)
	require.Len(t, listed.Items, 1)
	assert.True(t, listed.Items[0].Attended)
}
