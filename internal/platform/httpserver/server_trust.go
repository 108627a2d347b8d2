package httpserver

import (
	"errors"
	"net/http"

	trusterrors "communitypulse/contexts/community-events/trust-score-service/domain/errors"
)

func writeTrustDomainError(w http.ResponseWriter, err error) string {
	switch {
	case errors.Is(err, trusterrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return "FORBIDDEN"
	case errors.Is(err, trusterrors.ErrOrganizerNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return "NOT_FOUND"
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return "INTERNAL_ERROR"
	}
}

func (s *Server) handleListTrustScores(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Trust.Handler.ListTrustScoresHandler(r.Context(), caller)
	if err != nil {
		writeTrustDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleOrganizerTrustScore(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Trust.Handler.OrganizerScoreHandler(r.Context(), r.PathValue("organizer_id"))
	if err != nil {
		writeTrustDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}
