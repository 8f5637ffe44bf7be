package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/auth"
	"github.com/fritterapp/fritter-server/internal/dto"
	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/sse"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
	"github.com/fritterapp/fritter-server/internal/validation"
)

// recordingEmitter keeps every emitted event for assertions.
type recordingEmitter struct {
	mu           sync.Mutex
	events       []sse.Event
	disconnected []string
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if evt, ok := event.(sse.Event); ok {
		r.events = append(r.events, evt)
	}
}

func (r *recordingEmitter) DisconnectUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = append(r.disconnected, userID)
	return 1
}

// ofType returns the recorded events of typ in emission order.
func (r *recordingEmitter) ofType(typ sse.EventType) []sse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sse.Event
	for _, evt := range r.events {
		if evt.Type == typ {
			out = append(out, evt)
		}
	}
	return out
}

type testEnv struct {
	graph  *store.Store
	freets *sqlite.Store
	events *recordingEmitter

	users     *UserService
	bookmarks *BookmarkService
	tags      *TagService
	personas  *PersonaService
	follows   *FollowService
	likes     *LikeService
	freetSvc  *FreetService
	stats     *StatsService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	graph, err := store.New(filepath.Join(dir, "graph"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = graph.Close() })

	freets, err := sqlite.Open(filepath.Join(dir, "freets.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = freets.Close() })

	tokens, err := auth.NewTokenService(make([]byte, 32), time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validation.New()
	rules := validation.NewRules(graph, freets, v)
	enricher := dto.NewEnricher(graph)
	events := &recordingEmitter{}

	return &testEnv{
		graph:     graph,
		freets:    freets,
		events:    events,
		users:     NewUserService(graph, freets, rules, v, tokens, events, logger),
		bookmarks: NewBookmarkService(graph, rules, enricher, events, logger),
		tags:      NewTagService(graph, rules, events, logger),
		personas:  NewPersonaService(graph, rules, enricher, events, logger),
		follows:   NewFollowService(graph, rules, enricher, events, logger),
		likes:     NewLikeService(graph, rules, events, logger),
		freetSvc:  NewFreetService(graph, freets, rules, logger),
		stats:     NewStatsService(graph, freets),
	}
}

// register creates an account through the service and returns its id.
func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()
	view, err := e.users.Register(context.Background(), RegisterRequest{
		Username: username,
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return view.ID
}

// freet publishes a freet as authorID and returns its id.
func (e *testEnv) freet(t *testing.T, authorID, content string) string {
	t.Helper()
	f, err := e.freets.CreateFreet(context.Background(), authorID, content)
	require.NoError(t, err)
	return f.ID
}

func ptr[T any](v T) *T { return &v }

// codeOf returns the domain error code carried by err.
func codeOf(t *testing.T, err error) domainerrors.Code {
	t.Helper()
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	return de.Code
}
