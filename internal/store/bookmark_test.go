package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/store"
)

func TestCreateBookmark(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")

	b, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, b.UserID)
	assert.Equal(t, "freet-1", b.FreetID)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := s.GetBookmarkByUserAndFreet(ctx, alice.ID, "freet-1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	byID, err := s.GetBookmark(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, byID.ID)
}

func TestCreateBookmark_OnePerUserAndFreet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	_, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)

	_, err = s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.ErrorIs(t, err, store.ErrBookmarkExists)

	// Another user may bookmark the same freet.
	_, err = s.CreateBookmark(ctx, bob.ID, "freet-1")
	require.NoError(t, err)

	// Delete then create again is allowed.
	require.NoError(t, s.DeleteBookmark(ctx, alice.ID, "freet-1"))
	_, err = s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)

	bookmarks, err := s.ListBookmarksByUser(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Len(t, bookmarks, 1)
}

func TestDeleteBookmark_Twice(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	_, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)

	require.NoError(t, s.DeleteBookmark(ctx, alice.ID, "freet-1"))
	require.ErrorIs(t, s.DeleteBookmark(ctx, alice.ID, "freet-1"), store.ErrBookmarkNotFound)
}

func TestDeleteBookmark_RemovesTags(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	b, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)

	_, err = s.AddTag(ctx, b.ID, "recipe")
	require.NoError(t, err)
	_, err = s.AddTag(ctx, b.ID, "later")
	require.NoError(t, err)

	require.NoError(t, s.DeleteBookmark(ctx, alice.ID, "freet-1"))

	tags, err := s.ListTagsByBookmark(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)

	n, err := s.Tags.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListBookmarksByUser_NewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	for _, freetID := range []string{"freet-1", "freet-2", "freet-3"} {
		_, err := s.CreateBookmark(ctx, alice.ID, freetID)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	_, err := s.CreateBookmark(ctx, bob.ID, "freet-1")
	require.NoError(t, err)

	bookmarks, err := s.ListBookmarksByUser(ctx, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, bookmarks, 3)
	assert.Equal(t, "freet-3", bookmarks[0].FreetID)
	assert.Equal(t, "freet-2", bookmarks[1].FreetID)
	assert.Equal(t, "freet-1", bookmarks[2].FreetID)
}

func TestListBookmarksByUser_TagFilter(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")

	b1, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)
	b2, err := s.CreateBookmark(ctx, alice.ID, "freet-2")
	require.NoError(t, err)
	_, err = s.CreateBookmark(ctx, alice.ID, "freet-3")
	require.NoError(t, err)

	_, err = s.AddTag(ctx, b1.ID, "recipe")
	require.NoError(t, err)
	_, err = s.AddTag(ctx, b2.ID, "recipe")
	require.NoError(t, err)
	_, err = s.AddTag(ctx, b2.ID, "Recipe")
	require.NoError(t, err)

	tests := []struct {
		tag  string
		want int
	}{
		{"", 3},
		{"recipe", 2},
		{"Recipe", 1},
		{"RECIPE", 0},
		{"missing", 0},
	}
	for _, tt := range tests {
		t.Run("tag="+tt.tag, func(t *testing.T) {
			bookmarks, err := s.ListBookmarksByUser(ctx, alice.ID, tt.tag)
			require.NoError(t, err)
			assert.Len(t, bookmarks, tt.want)
			assert.NotNil(t, bookmarks)
		})
	}
}

func TestDeleteBookmarksForFreet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	b, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)
	_, err = s.AddTag(ctx, b.ID, "recipe")
	require.NoError(t, err)
	_, err = s.CreateBookmark(ctx, bob.ID, "freet-1")
	require.NoError(t, err)
	_, err = s.CreateBookmark(ctx, bob.ID, "freet-2")
	require.NoError(t, err)

	n, err := s.DeleteBookmarksForFreet(ctx, "freet-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := s.Bookmarks.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	tags, err := s.Tags.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, tags)
}

func TestDeleteBookmarksForUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	_, err := s.CreateBookmark(ctx, alice.ID, "freet-1")
	require.NoError(t, err)
	_, err = s.CreateBookmark(ctx, alice.ID, "freet-2")
	require.NoError(t, err)
	_, err = s.CreateBookmark(ctx, bob.ID, "freet-1")
	require.NoError(t, err)

	n, err := s.DeleteBookmarksForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	bobs, err := s.ListBookmarksByUser(ctx, bob.ID, "")
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}
