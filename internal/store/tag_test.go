package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/store"
)

func TestAddTag(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	b, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)

	tag, err := s.AddTag(ctx, b.ID, "recipe")
	require.NoError(t, err)
	assert.Equal(t, b.ID, tag.BookmarkID)

	got, err := s.GetTag(ctx, b.ID, "recipe")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := s.AddTag(ctx, b.ID, "recipe")
		require.ErrorIs(t, err, store.ErrTagExists)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		_, err := s.AddTag(ctx, b.ID, "RECIPE")
		require.NoError(t, err)
	})

	t.Run("missing bookmark", func(t *testing.T) {
		_, err := s.AddTag(ctx, "bookmark-missing", "x")
		require.ErrorIs(t, err, store.ErrBookmarkNotFound)
	})

	t.Run("name length", func(t *testing.T) {
		_, err := s.AddTag(ctx, b.ID, "")
		require.ErrorIs(t, err, store.ErrInvalidTagName)

		_, err = s.AddTag(ctx, b.ID, strings.Repeat("a", 21))
		require.ErrorIs(t, err, store.ErrInvalidTagName)

		_, err = s.AddTag(ctx, b.ID, strings.Repeat("ü", 20))
		require.NoError(t, err, "length counts characters, not bytes")
	})
}

func TestRemoveTag(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	b, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)

	_, err = s.AddTag(ctx, b.ID, "recipe")
	require.NoError(t, err)

	require.NoError(t, s.RemoveTag(ctx, b.ID, "recipe"))
	require.ErrorIs(t, s.RemoveTag(ctx, b.ID, "recipe"), store.ErrTagNotFound)

	_, err = s.GetTag(ctx, b.ID, "recipe")
	require.ErrorIs(t, err, store.ErrTagNotFound)

	// The name can be reused after removal.
	_, err = s.AddTag(ctx, b.ID, "recipe")
	require.NoError(t, err)
}

func TestListTagsByBookmark_Isolated(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	b1, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)
	b2, err := s.CreateBookmark(ctx, alice.ID, "freet-2")
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.AddTag(ctx, b1.ID, name)
		require.NoError(t, err)
	}
	_, err = s.AddTag(ctx, b2.ID, "a")
	require.NoError(t, err)

	tags, err := s.ListTagsByBookmark(ctx, b1.ID)
	require.NoError(t, err)
	require.Len(t, tags, 3)

	names := make(map[string]bool)
	for _, tag := range tags {
		assert.Equal(t, b1.ID, tag.BookmarkID)
		assert.False(t, names[tag.Name], "duplicate tag name %q", tag.Name)
		names[tag.Name] = true
	}

	n, err := s.RemoveTagsForBookmark(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	other, err := s.ListTagsByBookmark(ctx, b2.ID)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
