package httpserver

import (
	"errors"
	"net/http"

	pollerrors "communitypulse/contexts/community-signals/poll-service/domain/errors"
	pollhttp "communitypulse/contexts/community-signals/poll-service/transport/http"
)

// PollClosed is matched before InvalidState since it wraps it.
func writePollDomainError(w http.ResponseWriter, err error) string {
	switch {
	case errors.Is(err, pollerrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return "VALIDATION_ERROR"
	case errors.Is(err, pollerrors.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error(), nil)
		return "UNAUTHENTICATED"
	case errors.Is(err, pollerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return "FORBIDDEN"
	case errors.Is(err, pollerrors.ErrPollNotFound),
		errors.Is(err, pollerrors.ErrOptionNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return "NOT_FOUND"
	case errors.Is(err, pollerrors.ErrPollClosed):
		writeError(w, http.StatusConflict, "POLL_CLOSED", err.Error(), nil)
		return "POLL_CLOSED"
	case errors.Is(err, pollerrors.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "ALREADY_VOTED", err.Error(), nil)
		return "ALREADY_VOTED"
	case errors.Is(err, pollerrors.ErrInvalidState):
		writeError(w, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
		return "INVALID_STATE"
	case errors.Is(err, pollerrors.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return "CONFLICT"
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return "INTERNAL_ERROR"
	}
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Polls.Handler.ListPollsHandler(r.Context())
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Polls.Handler.GetPollHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	var req pollhttp.VoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Polls.Handler.CastVoteHandler(r.Context(), caller, req)
	if err != nil {
		s.observe("cast_vote", writePollDomainError(w, err))
		return
	}
	s.observe("cast_vote", "ok")
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	var req pollhttp.CreatePollRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Polls.Handler.CreatePollHandler(r.Context(), caller, req)
	if err != nil {
		s.observe("create_poll", writePollDomainError(w, err))
		return
	}
	s.observe("create_poll", "ok")
	writeSuccess(w, http.StatusCreated, resp)
}

func (s *Server) handleClosePoll(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Polls.Handler.ClosePollHandler(r.Context(), caller, r.PathValue("poll_id"))
	if err != nil {
		s.observe("close_poll", writePollDomainError(w, err))
		return
	}
	s.observe("close_poll", "ok")
	writeSuccess(w, http.StatusOK, resp)
}
