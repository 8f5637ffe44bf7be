package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/id"
)

// CreateBookmark saves freetID for userID and stamps the creation time.
// Returns ErrBookmarkExists if the user already bookmarked the freet.
func (s *Store) CreateBookmark(ctx context.Context, userID, freetID string) (*domain.Bookmark, error) {
	bookmarkID, err := id.Generate(id.PrefixBookmark)
	if err != nil {
		return nil, err
	}

	bookmark := &domain.Bookmark{
		CreatedAt: time.Now(),
		ID:        bookmarkID,
		UserID:    userID,
		FreetID:   freetID,
	}

	err = s.Bookmarks.Create(ctx, bookmark)
	if errors.Is(err, ErrAlreadyExists) {
		return nil, ErrBookmarkExists
	}
	if err != nil {
		return nil, fmt.Errorf("create bookmark: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("bookmark created",
			"id", bookmark.ID,
			"user_id", userID,
			"freet_id", freetID,
		)
	}
	return bookmark, nil
}

// GetBookmark retrieves a bookmark by ID.
func (s *Store) GetBookmark(ctx context.Context, bookmarkID string) (*domain.Bookmark, error) {
	bookmark, err := s.Bookmarks.Get(ctx, bookmarkID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return bookmark, nil
}

// GetBookmarkByUserAndFreet retrieves the bookmark userID holds on freetID.
func (s *Store) GetBookmarkByUserAndFreet(ctx context.Context, userID, freetID string) (*domain.Bookmark, error) {
	bookmark, err := s.Bookmarks.GetByIndex(ctx, "user_freet", pair(userID, freetID))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark by freet: %w", err)
	}
	return bookmark, nil
}

// ListBookmarksByUser returns the user's bookmarks, newest first.
// A non-empty tag keeps only bookmarks carrying a tag with exactly that name.
func (s *Store) ListBookmarksByUser(ctx context.Context, userID, tag string) ([]*domain.Bookmark, error) {
	var bookmarks []*domain.Bookmark

	err := s.view(ctx, func(txn *badger.Txn) error {
		all, err := s.Bookmarks.listByLookupTxn(txn, "user", userID)
		if err != nil {
			return err
		}

		if tag == "" {
			bookmarks = all
			return nil
		}

		bookmarks = make([]*domain.Bookmark, 0, len(all))
		for _, b := range all {
			tagged, err := s.Tags.existsByIndexTxn(txn, "bookmark_name", pair(b.ID, tag))
			if err != nil {
				return err
			}
			if tagged {
				bookmarks = append(bookmarks, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	slices.SortFunc(bookmarks, func(a, b *domain.Bookmark) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return bookmarks, nil
}

// DeleteBookmark removes the bookmark userID holds on freetID together with
// all of its tags.
func (s *Store) DeleteBookmark(ctx context.Context, userID, freetID string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		bookmark, err := s.Bookmarks.getByIndexTxn(txn, "user_freet", pair(userID, freetID))
		if err != nil {
			return err
		}
		return s.deleteBookmarkTxn(txn, bookmark.ID)
	})
	if errors.Is(err, ErrNotFound) {
		return ErrBookmarkNotFound
	}
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// DeleteBookmarksForUser removes every bookmark owned by userID and their tags.
func (s *Store) DeleteBookmarksForUser(ctx context.Context, userID string) (int, error) {
	return s.deleteBookmarksByLookup(ctx, "user", userID)
}

// DeleteBookmarksForFreet removes every bookmark referencing freetID and their tags.
func (s *Store) DeleteBookmarksForFreet(ctx context.Context, freetID string) (int, error) {
	return s.deleteBookmarksByLookup(ctx, "freet", freetID)
}

func (s *Store) deleteBookmarksByLookup(ctx context.Context, indexName, value string) (int, error) {
	var deleted int
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		deleted, err = s.deleteBookmarksByLookupTxn(txn, indexName, value)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete bookmarks by %s: %w", indexName, err)
	}

	if s.logger != nil && deleted > 0 {
		s.logger.Debug("bookmarks deleted", "by", indexName, "value", value, "count", deleted)
	}
	return deleted, nil
}

func (s *Store) deleteBookmarksByLookupTxn(txn *badger.Txn, indexName, value string) (int, error) {
	ids := s.Bookmarks.idsByLookupTxn(txn, indexName, value)
	for _, bookmarkID := range ids {
		if err := s.deleteBookmarkTxn(txn, bookmarkID); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return len(ids), nil
}

// deleteBookmarkTxn deletes a bookmark and the tags keyed by its id.
func (s *Store) deleteBookmarkTxn(txn *badger.Txn, bookmarkID string) error {
	if _, err := s.removeTagsForBookmarkTxn(txn, bookmarkID); err != nil {
		return err
	}
	_, err := s.Bookmarks.deleteTxn(txn, bookmarkID)
	return err
}
