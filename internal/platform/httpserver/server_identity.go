package httpserver

import (
	"errors"
	"net/http"

	identityerrors "communitypulse/contexts/identity-access/identity-service/domain/errors"
	identityhttp "communitypulse/contexts/identity-access/identity-service/transport/http"
)

func writeIdentityDomainError(w http.ResponseWriter, err error) string {
	switch {
	case errors.Is(err, identityerrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return "VALIDATION_ERROR"
	case errors.Is(err, identityerrors.ErrEmailTaken):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return "CONFLICT"
	case errors.Is(err, identityerrors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error(), nil)
		return "INVALID_CREDENTIALS"
	case errors.Is(err, identityerrors.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error(), nil)
		return "UNAUTHENTICATED"
	case errors.Is(err, identityerrors.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return "NOT_FOUND"
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return "INTERNAL_ERROR"
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Identity.Handler.SignupHandler(r.Context(), req)
	if err != nil {
		s.observe("signup", writeIdentityDomainError(w, err))
		return
	}
	s.observe("signup", "ok")
	writeSuccess(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Identity.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		s.observe("login", writeIdentityDomainError(w, err))
		return
	}
	s.observe("login", "ok")
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Identity.Handler.MeHandler(r.Context(), caller)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}
