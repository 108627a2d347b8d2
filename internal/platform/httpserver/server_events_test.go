package httpserver

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventPayload struct {
	EventID            string `json:"event_id"`
	Status             string `json:"status"`
	RSVPCount          int    `json:"rsvp_count"`
	CommittedAttendees int    `json:"committed_attendees"`
	RemainingCapacity  int    `json:"remaining_capacity"`
	Trending           bool   `json:"trending"`
	Organizer          *struct {
		Name string `json:"name"`
	} `json:"organizer"`
}

func createEvent(t *testing.T, server *Server, token string, maxAttendees int) eventPayload {
	t.Helper()
	rr, env := doRequest(t, server, http.MethodPost, "/events", token, map[string]any{
		"title":         "Harbor cleanup",
		"description":   "Bring gloves",
		"category":      "community",
		"location":      "Harbor Front",
		"date":          time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
		"max_attendees": maxAttendees,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var event eventPayload
	decodeData(t, env, &event)
	return event
}

func TestCreateEventRequiresIdentity(t *testing.T) {
	server := newTestServer()
	rr, env := doRequest(t, server, http.MethodPost, "/events", "", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPost, "/events", "", map[string]any{"title": "x", "date": "tomorrow"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPost, "/events", "", `{"title":`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)
}

func TestInvalidBearerTokenIsRejected(t *testing.T) {
	server := newTestServer()
	rr, env := doRequest(t, server, http.MethodGet, "/events", "not-a-jwt", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "public listing ignores the header")

	rr, env = doRequest(t, server, http.MethodGet, "/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)
}

func TestEventApprovalAndAdmissionFlow(t *testing.T) {
	server := newTestServer()
	admin := signup(t, server, "Ada", testAdminEmail)
	organizer := signup(t, server, "Olive", "olive@example.com")

	event := createEvent(t, server, organizer, 2)
	assert.Equal(t, "pending", event.Status)

	rr, env := doRequest(t, server, http.MethodGet, "/events", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Items []eventPayload `json:"items"`
	}
	decodeData(t, env, &listed)
	assert.Empty(t, listed.Items)

	rr, env = doRequest(t, server, http.MethodGet, "/events/"+event.EventID, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPost, "/admin/approve-event/"+event.EventID, organizer, `{"approve":true}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodPost, "/admin/approve-event/"+event.EventID, admin, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rr, _ = doRequest(t, server, http.MethodPost, "/admin/approve-event/"+event.EventID+"?approve=true", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, env = doRequest(t, server, http.MethodPost, "/admin/approve-event/"+event.EventID, admin, `{"approve":false}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	rr, env = doRequest(t, server, http.MethodGet, "/events", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, env, &listed)
	require.Len(t, listed.Items, 1)
	assert.False(t, listed.Items[0].Trending)

	guests := make([]string, 3)
	for i := range guests {
		guests[i] = signup(t, server, fmt.Sprintf("Guest %d", i), fmt.Sprintf("guest%d@example.com", i))
	}
	rsvp := func(token string, count int) (int, string) {
		rr, env := doRequest(t, server, http.MethodPost, "/rsvp/"+event.EventID, token, map[string]any{
			"name":           "Guest",
			"email":          "guest@example.com",
			"phone":          "555-0101",
			"attendee_count": count,
		})
		return rr.Code, env.Error.Code
	}

	code, _ := rsvp(guests[0], 1)
	assert.Equal(t, http.StatusCreated, code)
	code, errCode := rsvp(guests[1], 2)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CAPACITY_EXCEEDED", errCode)
	code, _ = rsvp(guests[2], 1)
	assert.Equal(t, http.StatusCreated, code)
	code, _ = rsvp(guests[0], 1)
	assert.Equal(t, http.StatusOK, code, "re-submission updates in place")
	code, errCode = rsvp("", 1)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHENTICATED", errCode)

	rr, env = doRequest(t, server, http.MethodGet, "/events/"+event.EventID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail eventPayload
	decodeData(t, env, &detail)
	assert.Equal(t, 2, detail.CommittedAttendees)
	assert.Equal(t, 0, detail.RemainingCapacity)
	require.NotNil(t, detail.Organizer)
	assert.Equal(t, "Olive", detail.Organizer.Name)

	rr, _ = doRequest(t, server, http.MethodGet, "/events/"+event.EventID+"/rsvps", guests[0], nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr, _ = doRequest(t, server, http.MethodGet, "/events/"+event.EventID+"/rsvps", organizer, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env = doRequest(t, server, http.MethodPost, "/feedback/"+event.EventID, guests[0], `{"rating":5}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	rr, _ = doRequest(t, server, http.MethodDelete, "/rsvp/"+event.EventID, guests[2], nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	code, _ = rsvp(guests[1], 1)
	assert.Equal(t, http.StatusCreated, code)

	rr, _ = doRequest(t, server, http.MethodGet, "/admin/analytics", organizer, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr, env = doRequest(t, server, http.MethodGet, "/admin/analytics", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var analytics struct {
		Events struct {
			Total int `json:"total"`
		} `json:"events"`
		Users struct {
			Total int `json:"total"`
		} `json:"users"`
	}
	decodeData(t, env, &analytics)
	assert.Equal(t, 1, analytics.Events.Total)
	assert.Equal(t, 5, analytics.Users.Total)
}

func TestListEventsRejectsBadUpcomingFlag(t *testing.T) {
	server := newTestServer()
	rr, env := doRequest(t, server, http.MethodGet, "/events?upcoming=soon", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rr, _ = doRequest(t, server, http.MethodGet, "/events?upcoming=false&category=music", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTrustScoreEndpoints(t *testing.T) {
	server := newTestServer()
	admin := signup(t, server, "Ada", testAdminEmail)
	organizer := signup(t, server, "Olive", "olive@example.com")
	event := createEvent(t, server, organizer, 10)

	rr, _ := doRequest(t, server, http.MethodGet, "/admin/trust-scores", organizer, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, env := doRequest(t, server, http.MethodGet, "/admin/trust-scores", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var scores struct {
		Items []struct {
			OrganizerID  string  `json:"organizer_id"`
			EventsHosted int     `json:"events_hosted"`
			TrustScore   float64 `json:"trust_score"`
		} `json:"items"`
	}
	decodeData(t, env, &scores)
	require.Len(t, scores.Items, 1)
	assert.Equal(t, 0, scores.Items[0].EventsHosted)
	assert.Equal(t, 0.0, scores.Items[0].TrustScore)

	rr, _ = doRequest(t, server, http.MethodGet, "/organizers/"+scores.Items[0].OrganizerID+"/trust-score", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr, env = doRequest(t, server, http.MethodGet, "/organizers/nobody/trust-score", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.NotEmpty(t, event.EventID)
}
