package httpserver

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	whispererrors "communitypulse/contexts/community-signals/whisper-service/domain/errors"
	whisperhttp "communitypulse/contexts/community-signals/whisper-service/transport/http"
)

const whisperRateLimitScope = "whispers"

func writeWhisperDomainError(w http.ResponseWriter, err error) string {
	switch {
	case errors.Is(err, whispererrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return "VALIDATION_ERROR"
	case errors.Is(err, whispererrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return "FORBIDDEN"
	case errors.Is(err, whispererrors.ErrWhisperNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return "NOT_FOUND"
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return "INTERNAL_ERROR"
	}
}

func (s *Server) handleListWhispers(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
			return
		}
		limit = parsed
	}
	resp, err := s.modules.Whispers.Handler.ListWhispersHandler(r.Context(), caller, query.Get("location"), limit)
	if err != nil {
		writeWhisperDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (s *Server) handlePostWhisper(w http.ResponseWriter, r *http.Request) {
	if !s.allowWhisper(w, r) {
		return
	}
	var req whisperhttp.PostWhisperRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Whispers.Handler.PostWhisperHandler(r.Context(), req)
	if err != nil {
		s.observe("post_whisper", writeWhisperDomainError(w, err))
		return
	}
	s.observe("post_whisper", "ok")
	writeSuccess(w, http.StatusCreated, resp)
}

func (s *Server) handleModerateWhisper(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.resolveCaller(w, r)
	if !ok {
		return
	}
	if !caller.Admin() {
		s.observe("moderate_whisper", writeWhisperDomainError(w, whispererrors.ErrForbidden))
		return
	}
	var req whisperhttp.ModerateWhisperRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Approve == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "approve is required", nil)
		return
	}
	resp, err := s.modules.Whispers.Handler.ModerateWhisperHandler(r.Context(), caller, r.PathValue("whisper_id"), *req.Approve)
	if err != nil {
		s.observe("moderate_whisper", writeWhisperDomainError(w, err))
		return
	}
	s.observe("moderate_whisper", "ok")
	writeSuccess(w, http.StatusOK, resp)
}

// allowWhisper applies the per-IP limit to anonymous posting. A limiter
// failure lets the request through.
func (s *Server) allowWhisper(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	decision, err := s.limiter.Allow(r.Context(), whisperRateLimitScope, resolveClientIP(r, s.trustProxy))
	if err != nil {
		s.logger.Warn("rate limiter unavailable",
			"event", "http_rate_limit_unavailable",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		return true
	}
	if decision.Allowed {
		return true
	}
	s.metrics.ObserveRateLimited(whisperRateLimitScope)
	retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many whispers from this address, try again later", map[string]any{
		"retry_after_seconds": retryAfter,
	})
	return false
}
