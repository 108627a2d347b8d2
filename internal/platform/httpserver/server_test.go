package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	eventservice "communitypulse/contexts/community-events/event-service"
	trustscoreservice "communitypulse/contexts/community-events/trust-score-service"
	pollservice "communitypulse/contexts/community-signals/poll-service"
	whisperservice "communitypulse/contexts/community-signals/whisper-service"
	identityservice "communitypulse/contexts/identity-access/identity-service"
	"communitypulse/internal/app/bridges"
	"communitypulse/internal/platform/monitoring"

	"github.com/stretchr/testify/require"
)

const testAdminEmail = "admin@example.com"

func newTestModules() Modules {
	logger := slog.Default()
	identity := identityservice.NewInMemoryModule("test-secret", []string{testAdminEmail}, logger)
	directory := bridges.Directory{Identity: identity.Service}
	events := eventservice.NewInMemoryModule(nil, directory, bridges.UserStats{Identity: identity.Service}, logger)
	trust := trustscoreservice.NewModule(trustscoreservice.Dependencies{
		Activity:  bridges.Activity{Snapshots: events.Snapshots},
		Directory: directory,
		Clock:     events.Store,
		Logger:    logger,
	})
	return Modules{
		Identity: identity,
		Events:   events,
		Trust:    trust,
		Polls:    pollservice.NewInMemoryModule(nil, logger),
		Whispers: whisperservice.NewInMemoryModule(nil, logger),
	}
}

func newTestServer(opts ...Option) *Server {
	opts = append([]Option{WithMetrics(monitoring.New())}, opts...)
	return New(newTestModules(), slog.Default(), ":0", opts...)
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  ErrorBody       `json:"error"`
}

func doRequest(t *testing.T, server *Server, method string, path string, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return doRequestWithHeaders(t, server, method, path, token, body, nil)
}

func doRequestWithHeaders(
	t *testing.T,
	server *Server,
	method string,
	path string,
	token string,
	body any,
	headers http.Header,
) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch value := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(value))
	default:
		raw, err := json.Marshal(value)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for name, values := range headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	var decoded envelope
	if rr.Body.Len() > 0 && rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded), rr.Body.String())
	}
	return rr, decoded
}

func decodeData(t *testing.T, env envelope, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func signup(t *testing.T, server *Server, name string, email string) string {
	t.Helper()
	rr, env := doRequest(t, server, http.MethodPost, "/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"phone":    "555-0100",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var session struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, env, &session)
	require.NotEmpty(t, session.AccessToken)
	return session.AccessToken
}
