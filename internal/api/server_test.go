package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/auth"
	"github.com/fritterapp/fritter-server/internal/dto"
	"github.com/fritterapp/fritter-server/internal/ratelimit"
	"github.com/fritterapp/fritter-server/internal/service"
	"github.com/fritterapp/fritter-server/internal/sse"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
	"github.com/fritterapp/fritter-server/internal/validation"
)

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	client humatest.TestAPI
}

// testEnvelope mirrors Envelope and ErrorEnvelope for decoding.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// testUser is a registered account with a live session.
type testUser struct {
	ID    string
	Token string
}

func (u testUser) auth() string {
	return "Authorization: Bearer " + u.Token
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	dir := t.TempDir()

	graph, err := store.New(filepath.Join(dir, "graph"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = graph.Close() })

	freets, err := sqlite.Open(filepath.Join(dir, "freets.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = freets.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sseManager := sse.NewManager(logger)

	v := validation.New()
	rules := validation.NewRules(graph, freets, v)
	enricher := dto.NewEnricher(graph)

	services := &Services{
		User:     service.NewUserService(graph, freets, rules, v, tokens, sseManager, logger),
		Freet:    service.NewFreetService(graph, freets, rules, logger),
		Bookmark: service.NewBookmarkService(graph, rules, enricher, sseManager, logger),
		Tag:      service.NewTagService(graph, rules, sseManager, logger),
		Persona:  service.NewPersonaService(graph, rules, enricher, sseManager, logger),
		Follow:   service.NewFollowService(graph, rules, enricher, sseManager, logger),
		Like:     service.NewLikeService(graph, rules, sseManager, logger),
		Stats:    service.NewStatsService(graph, freets),
	}

	server := NewServer(graph, freets, services, tokens, sseManager, opts, logger)

	return &testServer{
		Server: server,
		client: humatest.Wrap(t, server.API()),
	}
}

// signUp registers username and signs in.
func (ts *testServer) signUp(t *testing.T, username string) testUser {
	t.Helper()

	creds := map[string]string{"username": username, "password": "correct horse battery"}

	resp := ts.client.Post("/api/users", creds)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.client.Post("/api/users/session", creds)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[service.AuthResponse](t, resp)
	return testUser{ID: env.Data.User.ID, Token: env.Data.AccessToken}
}

// postFreet publishes content as u and returns the freet id.
func (ts *testServer) postFreet(t *testing.T, u testUser, content string) string {
	t.Helper()

	resp := ts.client.Post("/api/freets", u.auth(), map[string]string{"content": content})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[CreateFreetResponse](t, resp).Data.Freet.ID
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()

	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	assert.Equal(t, EnvelopeVersion, env.Version)
	return env
}

// requireError asserts an error envelope with the given status and code.
func requireError(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) testEnvelope[json.RawMessage] {
	t.Helper()

	require.Equal(t, status, resp.Code, resp.Body.String())
	env := decode[json.RawMessage](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, code, env.Code)
	assert.NotEmpty(t, env.Error)
	return env
}

func TestServer_Health(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.client.Get("/api/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["graph"].Status)
	assert.Equal(t, "0 freets", env.Data.Components["freets"].Message)
	assert.Equal(t, "0 connected clients", env.Data.Components["sse"].Message)
}

func TestServer_EventsRequireSession(t *testing.T) {
	ts := setupTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	requireError(t, rec, http.StatusForbidden, "UNAUTHORIZED")
	assert.Contains(t, rec.Body.String(), "You must be logged in to do that.")
}

func TestServer_LoginRateLimit(t *testing.T) {
	limiter := ratelimit.New(ratelimit.PerMinute(1), 2)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{LoginLimiter: limiter})

	creds := map[string]string{"username": "nobody", "password": "wrong password"}
	for range 2 {
		resp := ts.client.Post("/api/users/session", "X-Forwarded-For: 10.0.0.1", creds)
		requireError(t, resp, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	}

	resp := ts.client.Post("/api/users/session", "X-Forwarded-For: 10.0.0.1", creds)
	requireError(t, resp, http.StatusTooManyRequests, "RATE_LIMITED")

	// Other clients keep their own budget.
	resp = ts.client.Post("/api/users/session", "X-Forwarded-For: 10.0.0.2", creds)
	requireError(t, resp, http.StatusUnauthorized, "INVALID_CREDENTIALS")
}
