package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	eventerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	eventhttp "communitypulse/contexts/community-events/event-service/transport/http"
)

func writeEventDomainError(w http.ResponseWriter, err error) string {
	switch {
	case errors.Is(err, eventerrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return "VALIDATION_ERROR"
	case errors.Is(err, eventerrors.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error(), nil)
		return "UNAUTHENTICATED"
	case errors.Is(err, eventerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return "FORBIDDEN"
	case errors.Is(err, eventerrors.ErrEventNotFound), errors.Is(err, eventerrors.ErrRSVPNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return "NOT_FOUND"
	case errors.Is(err, eventerrors.ErrEventNotOpen):
		writeError(w, http.StatusConflict, "EVENT_NOT_OPEN", err.Error(), nil)
		return "EVENT_NOT_OPEN"
	case errors.Is(err, eventerrors.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "CAPACITY_EXCEEDED", err.Error(), nil)
		return "CAPACITY_EXCEEDED"
	case errors.Is(err, eventerrors.ErrInvalidState):
		writeError(w, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
		return "INVALID_STATE"
	case errors.Is(err, eventerrors.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return "CONFLICT"
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return "INTERNAL_ERROR"
	}
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	upcoming := true
	if raw := strings.TrimSpace(query.Get("upcoming")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "upcoming must be true or false", nil)
			return
		}
		upcoming = parsed
	}
	resp, err := s.modules.Events.Handler.ListEventsHandler(r.Context(), query.Get("category"), query.Get("location"), upcoming)
	if err != nil {
		writeEventDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	if caller.IsAnonymous() {
		s.observe("create_event", writeEventDomainError(w, eventerrors.ErrUnauthenticated))
		return
	}
	var req eventhttp.CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Events.Handler.CreateEventHandler(r.Context(), caller, req)
	if err != nil {
		s.observe("create_event", writeEventDomainError(w, err))
		return
	}
	s.observe("create_event", "ok")
	writeSuccess(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	if caller.IsAnonymous() {
		s.observe("update_event", writeEventDomainError(w, eventerrors.ErrUnauthenticated))
		return
	}
	var req eventhttp.CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Events.Handler.UpdateEventHandler(r.Context(), caller, r.PathValue("event_id"), req)
	if err != nil {
		s.observe("update_event", writeEventDomainError(w, err))
		return
	}
	s.observe("update_event", "ok")
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Events.Handler.DeleteEventHandler(r.Context(), caller, r.PathValue("event_id"))
	if err != nil {
		s.observe("delete_event", writeEventDomainError(w, err))
		return
	}
	s.observe("delete_event", "ok")
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Events.Handler.GetEventHandler(r.Context(), caller, r.PathValue("event_id"))
	if err != nil {
		writeEventDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleListEventRSVPs(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Events.Handler.ListEventRSVPsHandler(r.Context(), caller, r.PathValue("event_id"))
	if err != nil {
		writeEventDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Events.Handler.ListFeedbackHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeEventDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleListPendingEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Events.Handler.ListPendingEventsHandler(r.Context(), caller)
	if err != nil {
		writeEventDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// handleDecideEvent takes the decision from a JSON body or the approve query
// parameter. One of them is required.
func (s *Server) handleDecideEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	if !caller.Admin() {
		s.observe("decide_event", writeEventDomainError(w, eventerrors.ErrForbidden))
		return
	}
	approve, ok := resolveApprove(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Events.Handler.DecideEventHandler(r.Context(), caller, r.PathValue("event_id"), approve)
	if err != nil {
		s.observe("decide_event", writeEventDomainError(w, err))
		return
	}
	s.observe("decide_event", "ok")
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleRequestRSVP(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	var req eventhttp.RSVPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Events.Handler.RequestRSVPHandler(r.Context(), caller, r.PathValue("event_id"), req)
	if err != nil {
		s.observe("request_rsvp", writeEventDomainError(w, err))
		return
	}
	s.observe("request_rsvp", "ok")
	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, resp)
}

func (s *Server) handleCancelRSVP(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Events.Handler.CancelRSVPHandler(r.Context(), caller, r.PathValue("event_id"))
	if err != nil {
		s.observe("cancel_rsvp", writeEventDomainError(w, err))
		return
	}
	s.observe("cancel_rsvp", "ok")
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	if caller.IsAnonymous() {
		s.observe("mark_attendance", writeEventDomainError(w, eventerrors.ErrUnauthenticated))
		return
	}
	attended, ok := resolveAttended(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Events.Handler.MarkAttendanceHandler(r.Context(), caller, r.PathValue("rsvp_id"), attended)
	if err != nil {
		s.observe("mark_attendance", writeEventDomainError(w, err))
		return
	}
	s.observe("mark_attendance", "ok")
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	var req eventhttp.FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Events.Handler.SubmitFeedbackHandler(r.Context(), caller, r.PathValue("event_id"), req)
	if err != nil {
		s.observe("submit_feedback", writeEventDomainError(w, err))
		return
	}
	s.observe("submit_feedback", "ok")
	writeSuccess(w, http.StatusCreated, resp)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Events.Handler.AnalyticsHandler(r.Context(), caller)
	if err != nil {
		writeEventDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func resolveApprove(w http.ResponseWriter, r *http.Request) (bool, bool) {
	if raw := strings.TrimSpace(r.URL.Query().Get("approve")); raw != "" {
		approve, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "approve must be true or false", nil)
			return false, false
		}
		return approve, true
	}
	var req eventhttp.DecideEventRequest
	if !decodeJSON(w, r, &req) {
		return false, false
	}
	if req.Approve == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "approve is required", nil)
		return false, false
	}
	return *req.Approve, true
}

// resolveAttended reads the attended query parameter, then an optional JSON
// body. With neither present the holder is marked as attended.
func resolveAttended(w http.ResponseWriter, r *http.Request) (bool, bool) {
	if raw := strings.TrimSpace(r.URL.Query().Get("attended")); raw != "" {
		attended, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "attended must be true or false", nil)
			return false, false
		}
		return attended, true
	}
	if r.ContentLength == 0 {
		return true, true
	}
	var req eventhttp.AttendanceRequest
	if !decodeJSON(w, r, &req) {
		return false, false
	}
	if req.Attended == nil {
		return true, true
	}
	return *req.Attended, true
}
