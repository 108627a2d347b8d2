package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	eventservice "communitypulse/contexts/community-events/event-service"
	trustscoreservice "communitypulse/contexts/community-events/trust-score-service"
	pollservice "communitypulse/contexts/community-signals/poll-service"
	whisperservice "communitypulse/contexts/community-signals/whisper-service"
	identityservice "communitypulse/contexts/identity-access/identity-service"
	"communitypulse/internal/platform/monitoring"
	"communitypulse/internal/platform/ratelimit"

	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"

	_ "communitypulse/internal/platform/httpserver/docs"
)

type Modules struct {
	Identity identityservice.Module
	Events   eventservice.Module
	Trust    trustscoreservice.Module
	Polls    pollservice.Module
	Whispers whisperservice.Module
}

type Option func(*Server)

func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = limiter }
}

func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Server) { s.metrics = metrics }
}

// WithTrustedProxy makes per-address limits read the address appended to
// X-Forwarded-For by the reverse proxy in front of the server.
func WithTrustedProxy(trusted bool) Option {
	return func(s *Server) { s.trustProxy = trusted }
}

// WithHealthCheck adds a dependency check to GET /healthz.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) { s.health = check }
}

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	modules Modules
	limiter *ratelimit.Limiter
	metrics *monitoring.Metrics
	health  func(context.Context) error

	trustProxy bool
}

func New(modules Modules, logger *slog.Logger, addr string, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		modules: modules,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// Handler is the mux wrapped with request metrics and panic recovery.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server stopping",
			"event", "http_server_stopping",
			"module", "internal/platform/httpserver",
			"layer", "platform",
		)
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.mux.HandleFunc("POST /signup", s.handleSignup)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("GET /me", s.handleMe)

	s.mux.HandleFunc("GET /events", s.handleListEvents)
	s.mux.HandleFunc("POST /events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /events/{event_id}", s.handleGetEvent)
	s.mux.HandleFunc("PUT /events/{event_id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /events/{event_id}", s.handleDeleteEvent)
	s.mux.HandleFunc("GET /events/{event_id}/rsvps", s.handleListEventRSVPs)
	s.mux.HandleFunc("GET /events/{event_id}/feedback", s.handleListFeedback)
	s.mux.HandleFunc("GET /admin/pending-events", s.handleListPendingEvents)
	s.mux.HandleFunc("POST /admin/pending-events", s.handleListPendingEvents)
	s.mux.HandleFunc("POST /admin/approve-event/{event_id}", s.handleDecideEvent)
	s.mux.HandleFunc("POST /rsvp/{event_id}", s.handleRequestRSVP)
	s.mux.HandleFunc("DELETE /rsvp/{event_id}", s.handleCancelRSVP)
	s.mux.HandleFunc("POST /rsvp/{rsvp_id}/attend", s.handleMarkAttendance)
	s.mux.HandleFunc("POST /feedback/{event_id}", s.handleSubmitFeedback)
	s.mux.HandleFunc("GET /admin/analytics", s.handleAnalytics)

	s.mux.HandleFunc("GET /admin/trust-scores", s.handleListTrustScores)
	s.mux.HandleFunc("GET /organizers/{organizer_id}/trust-score", s.handleOrganizerTrustScore)

	s.mux.HandleFunc("GET /polls", s.handleListPolls)
	s.mux.HandleFunc("GET /polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("POST /votes", s.handleCastVote)
	s.mux.HandleFunc("POST /admin/polls", s.handleCreatePoll)
	s.mux.HandleFunc("POST /admin/polls/{poll_id}/close", s.handleClosePoll)

	s.mux.HandleFunc("GET /whispers", s.handleListWhispers)
	s.mux.HandleFunc("POST /whispers", s.handlePostWhisper)
	s.mux.HandleFunc("POST /whispers/moderate/{whisper_id}", s.handleModerateWhisper)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.logger.Warn("health check failed",
				"event", "http_health_check_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "dependency unavailable", nil)
			return
		}
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.Error("http handler panicked",
					"event", "http_handler_panic",
					"module", "internal/platform/httpserver",
					"layer", "platform",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", recovered,
				)
				writeError(recorder, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
			}
			_, pattern := s.mux.Handler(r)
			s.metrics.ObserveHTTP(pattern, r.Method, recorder.status, time.Since(started))
		}()
		next.ServeHTTP(recorder, r)
	})
}
