package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/sse"
)

func TestLikeService_LikeAndUnlike(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	freetID := env.freet(t, alice, "hello")

	like, err := env.likes.Like(ctx, bob, freetID)
	require.NoError(t, err)
	assert.Equal(t, freetID, like.FreetID)

	_, err = env.likes.Like(ctx, bob, freetID)
	assert.Equal(t, domainerrors.CodeAlreadyExists, codeOf(t, err))

	received := env.events.ofType(sse.EventLikeReceived)
	require.Len(t, received, 1)
	assert.Equal(t, alice, received[0].UserID)
	data, ok := received[0].Data.(sse.LikeReceivedEventData)
	require.True(t, ok)
	assert.Equal(t, "bob", data.LikedBy)

	require.NoError(t, env.likes.Unlike(ctx, bob, freetID))

	err = env.likes.Unlike(ctx, bob, freetID)
	assert.Equal(t, domainerrors.CodeConflict, codeOf(t, err))
}

func TestLikeService_OwnFreetIsSilent(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	freetID := env.freet(t, alice, "hello")

	_, err := env.likes.Like(ctx, alice, freetID)
	require.NoError(t, err)
	assert.Empty(t, env.events.ofType(sse.EventLikeReceived))
}

func TestLikeService_FreetMustExist(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.likes.Like(ctx, alice, uuid.NewString())
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(t, err))

	err = env.likes.Unlike(ctx, alice, "bad")
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(t, err))
}
