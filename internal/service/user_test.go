package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/sse"
	"github.com/fritterapp/fritter-server/internal/store"
)

// brokenAccountGraph clears freet references normally but cannot remove
// the account itself.
type brokenAccountGraph struct {
	*store.Store
}

func (brokenAccountGraph) CascadeDeleteUser(context.Context, string) (*store.CascadeResult, error) {
	return nil, errors.New("cascade delete user: disk full")
}

func TestUserService_Register(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	view, err := env.users.Register(ctx, RegisterRequest{Username: "alice", Password: "long enough"})
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)

	tests := []struct {
		name string
		req  RegisterRequest
		code domainerrors.Code
	}{
		{"taken", RegisterRequest{Username: "alice", Password: "long enough"}, domainerrors.CodeAlreadyExists},
		{"taken ignoring case", RegisterRequest{Username: "ALICE", Password: "long enough"}, domainerrors.CodeAlreadyExists},
		{"space in name", RegisterRequest{Username: "al ice", Password: "long enough"}, domainerrors.CodeValidation},
		{"short password", RegisterRequest{Username: "bob", Password: "short"}, domainerrors.CodeValidation},
		{"missing name", RegisterRequest{Password: "long enough"}, domainerrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Register(ctx, tt.req)
			assert.Equal(t, tt.code, codeOf(t, err))
		})
	}
}

func TestUserService_Login(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	resp, err := env.users.Login(ctx, LoginRequest{Username: "alice", Password: "correct horse battery"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, alice, resp.User.ID)
	assert.Equal(t, 3600, resp.ExpiresIn)

	_, err = env.users.Login(ctx, LoginRequest{Username: "alice", Password: "wrong password"})
	assert.Equal(t, domainerrors.CodeInvalidCredentials, codeOf(t, err))

	_, err = env.users.Login(ctx, LoginRequest{Username: "nobody", Password: "wrong password"})
	assert.Equal(t, domainerrors.CodeInvalidCredentials, codeOf(t, err))
}

func TestUserService_Me(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	me, err := env.users.Me(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	_, err = env.users.Me(ctx, "")
	assert.Equal(t, domainerrors.CodeUnauthorized, codeOf(t, err))
}

func TestUserService_DeleteUserCascades(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	aliceFreet, err := env.freetSvc.CreateFreet(ctx, alice, "by alice")
	require.NoError(t, err)
	bobFreet, err := env.freetSvc.CreateFreet(ctx, bob, "by bob")
	require.NoError(t, err)

	// alice's own graph.
	_, err = env.personas.CreatePersona(ctx, alice, "friends")
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, alice, bob, ptr("friends"))
	require.NoError(t, err)
	_, err = env.bookmarks.CreateBookmark(ctx, alice, bobFreet.ID)
	require.NoError(t, err)
	_, err = env.tags.AddTag(ctx, alice, bobFreet.ID, "fun")
	require.NoError(t, err)
	_, err = env.likes.Like(ctx, alice, bobFreet.ID)
	require.NoError(t, err)

	// Other users pointing at alice.
	_, err = env.follows.Follow(ctx, carol, alice, nil)
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, carol, bob, nil)
	require.NoError(t, err)
	_, err = env.bookmarks.CreateBookmark(ctx, carol, aliceFreet.ID)
	require.NoError(t, err)

	result, err := env.users.DeleteUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Freets)
	assert.Equal(t, 1, result.Bookmarks)
	assert.Equal(t, 1, result.Personas)
	assert.Equal(t, 2, result.Follows)
	assert.Equal(t, 1, result.Likes)

	// carol keeps only the follow to bob and loses the bookmark of alice's freet.
	carolFollows, err := env.follows.ListFollows(ctx, carol, carol, nil)
	require.NoError(t, err)
	require.Len(t, carolFollows, 1)
	assert.Equal(t, bob, carolFollows[0].FriendID)

	carolBookmarks, err := env.bookmarks.ListBookmarks(ctx, carol, nil)
	require.NoError(t, err)
	assert.Empty(t, carolBookmarks)

	stats, err := env.stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 1, stats.Freets)
	assert.Equal(t, 0, stats.Bookmarks)
	assert.Equal(t, 0, stats.Tags)
	assert.Equal(t, 0, stats.Personas)
	assert.Equal(t, 1, stats.Follows)
	assert.Equal(t, 0, stats.Likes)

	lost := env.events.ofType(sse.EventFollowerLost)
	require.Len(t, lost, 1)
	assert.Equal(t, bob, lost[0].UserID)
	assert.Equal(t, []string{alice}, env.events.disconnected)

	_, err = env.users.DeleteUser(ctx, alice)
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(t, err))
}

func TestUserService_DeleteUserKeepsFreetsWhenGraphFails(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	first := env.freet(t, alice, "first")
	second := env.freet(t, alice, "second")
	_, err := env.follows.Follow(ctx, alice, bob, nil)
	require.NoError(t, err)

	env.users.graph = brokenAccountGraph{Store: env.graph}

	_, err = env.users.DeleteUser(ctx, alice)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeInternal, codeOf(t, err))

	me, err := env.users.Me(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	for _, freetID := range []string{first, second} {
		_, err := env.freets.GetFreet(ctx, freetID)
		assert.NoError(t, err, "freet %s should survive", freetID)
	}
	assert.Empty(t, env.events.disconnected)

	// Once the graph recovers the same request completes.
	env.users.graph = env.graph
	result, err := env.users.DeleteUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Freets)
	assert.Equal(t, 1, result.Follows)
}

func TestUserService_DeleteUserByUsername(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, err := env.users.DeleteUserByUsername(ctx, "nobody")
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(t, err))

	_, err = env.users.DeleteUserByUsername(ctx, "alice")
	require.NoError(t, err)

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserService_ListUsersCounts(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	_, err := env.follows.Follow(ctx, alice, bob, nil)
	require.NoError(t, err)

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	counts := make(map[string][2]int)
	for _, u := range users {
		counts[u.Username] = [2]int{u.Following, u.Followers}
	}
	assert.Equal(t, [2]int{1, 0}, counts["alice"])
	assert.Equal(t, [2]int{0, 1}, counts["bob"])
}
