package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/dgraph-io/badger/v4"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/id"
)

// AddTag attaches name to the bookmark.
// Returns ErrBookmarkNotFound if the bookmark is gone, ErrInvalidTagName if
// the name is out of bounds and ErrTagExists if the bookmark already has it.
func (s *Store) AddTag(ctx context.Context, bookmarkID, name string) (*domain.Tag, error) {
	if n := utf8.RuneCountInString(name); n < domain.TagNameMinLength || n > domain.TagNameMaxLength {
		return nil, ErrInvalidTagName
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, err
	}

	tag := &domain.Tag{
		CreatedAt:  time.Now(),
		ID:         tagID,
		BookmarkID: bookmarkID,
		Name:       name,
	}

	err = s.update(ctx, func(txn *badger.Txn) error {
		// The bookmark read joins the transaction's conflict set, so a
		// concurrent bookmark delete aborts this write.
		if _, err := s.Bookmarks.getTxn(txn, bookmarkID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrBookmarkNotFound
			}
			return err
		}
		return s.Tags.createTxn(txn, tag)
	})
	switch {
	case errors.Is(err, ErrBookmarkNotFound):
		return nil, ErrBookmarkNotFound
	case errors.Is(err, ErrAlreadyExists):
		return nil, ErrTagExists
	case err != nil:
		return nil, fmt.Errorf("add tag: %w", err)
	}
	return tag, nil
}

// GetTag retrieves the tag called name on the bookmark.
func (s *Store) GetTag(ctx context.Context, bookmarkID, name string) (*domain.Tag, error) {
	tag, err := s.Tags.GetByIndex(ctx, "bookmark_name", pair(bookmarkID, name))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// ListTagsByBookmark returns the bookmark's tags ordered by creation.
func (s *Store) ListTagsByBookmark(ctx context.Context, bookmarkID string) ([]*domain.Tag, error) {
	tags, err := s.Tags.ListByLookup(ctx, "bookmark", bookmarkID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	slices.SortFunc(tags, func(a, b *domain.Tag) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return tags, nil
}

// RemoveTag detaches name from the bookmark.
// Returns ErrTagNotFound if the bookmark does not carry it.
func (s *Store) RemoveTag(ctx context.Context, bookmarkID, name string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		tag, err := s.Tags.getByIndexTxn(txn, "bookmark_name", pair(bookmarkID, name))
		if err != nil {
			return err
		}
		_, err = s.Tags.deleteTxn(txn, tag.ID)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return ErrTagNotFound
	}
	if err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	return nil
}

// RemoveTagsForBookmark deletes every tag on the bookmark.
func (s *Store) RemoveTagsForBookmark(ctx context.Context, bookmarkID string) (int, error) {
	var removed int
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		removed, err = s.removeTagsForBookmarkTxn(txn, bookmarkID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("remove tags: %w", err)
	}
	return removed, nil
}

func (s *Store) removeTagsForBookmarkTxn(txn *badger.Txn, bookmarkID string) (int, error) {
	ids := s.Tags.idsByLookupTxn(txn, "bookmark", bookmarkID)
	for _, tagID := range ids {
		if _, err := s.Tags.deleteTxn(txn, tagID); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return len(ids), nil
}
