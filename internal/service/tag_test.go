package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/sse"
)

// Bookmark F1, tag it "recipe", tag it again, remove it, remove it again.
func TestTagService_RecipeScenario(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	f1 := env.freet(t, alice, "F1")

	_, err := env.bookmarks.CreateBookmark(ctx, alice, f1)
	require.NoError(t, err)

	tag, err := env.tags.AddTag(ctx, alice, f1, "recipe")
	require.NoError(t, err)
	assert.Equal(t, "recipe", tag.Name)

	_, err = env.tags.AddTag(ctx, alice, f1, "recipe")
	assert.Equal(t, domainerrors.CodeAlreadyExists, codeOf(t, err))
	assert.Equal(t, 403, domainerrors.CodeAlreadyExists.HTTPStatus())

	require.NoError(t, env.tags.RemoveTag(ctx, alice, f1, "recipe"))

	err = env.tags.RemoveTag(ctx, alice, f1, "recipe")
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(t, err))

	assert.Len(t, env.events.ofType(sse.EventTagAdded), 1)
	assert.Len(t, env.events.ofType(sse.EventTagRemoved), 1)
}

func TestTagService_ListAndGet(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	f1 := env.freet(t, alice, "F1")

	_, err := env.bookmarks.CreateBookmark(ctx, alice, f1)
	require.NoError(t, err)
	for _, name := range []string{"recipe", "dinner"} {
		_, err := env.tags.AddTag(ctx, alice, f1, name)
		require.NoError(t, err)
	}

	tags, err := env.tags.ListTags(ctx, alice, f1)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	got, err := env.tags.GetTag(ctx, alice, f1, "dinner")
	require.NoError(t, err)
	assert.Equal(t, "dinner", got.Name)

	_, err = env.tags.GetTag(ctx, alice, f1, "lunch")
	assert.Equal(t, domainerrors.CodeForbidden, codeOf(t, err))
}

func TestTagService_BookmarkMustExist(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	f1 := env.freet(t, alice, "F1")

	_, err := env.tags.ListTags(ctx, alice, f1)
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(t, err))

	_, err = env.tags.AddTag(ctx, alice, f1, "recipe")
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(t, err))
}

func TestTagService_RejectsBadNames(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	f1 := env.freet(t, alice, "F1")

	_, err := env.bookmarks.CreateBookmark(ctx, alice, f1)
	require.NoError(t, err)

	_, err = env.tags.AddTag(ctx, alice, f1, "")
	assert.Equal(t, domainerrors.CodeValidation, codeOf(t, err))

	// Twenty characters is the limit, counted in code points.
	_, err = env.tags.AddTag(ctx, alice, f1, strings.Repeat("é", 20))
	require.NoError(t, err)
	_, err = env.tags.AddTag(ctx, alice, f1, strings.Repeat("é", 21))
	assert.Equal(t, domainerrors.CodeValidation, codeOf(t, err))
}

func TestTagService_CaseSensitiveNames(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	f1 := env.freet(t, alice, "F1")

	_, err := env.bookmarks.CreateBookmark(ctx, alice, f1)
	require.NoError(t, err)

	_, err = env.tags.AddTag(ctx, alice, f1, "Recipe")
	require.NoError(t, err)
	_, err = env.tags.AddTag(ctx, alice, f1, "recipe")
	require.NoError(t, err)

	tags, err := env.tags.ListTags(ctx, alice, f1)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}
