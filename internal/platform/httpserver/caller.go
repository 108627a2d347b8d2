package httpserver

import (
	"net/http"
	"strings"

	identityv1 "communitypulse/contracts/identity/v1"
)

// resolveCaller reads the optional bearer token. No header means anonymous;
// a malformed or invalid token is rejected with 401 and false.
func (s *Server) resolveCaller(w http.ResponseWriter, r *http.Request) (identityv1.Caller, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return identityv1.Anonymous(), true
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authorization header must be a bearer token", nil)
		return identityv1.Caller{}, false
	}
	caller, err := s.modules.Identity.Handler.ResolveCaller(r.Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or expired token", nil)
		return identityv1.Caller{}, false
	}
	return caller, true
}

// observe records an engine operation outcome: "ok" or the written error code.
func (s *Server) observe(operation string, outcome string) {
	s.metrics.ObserveOperation(operation, outcome)
}
