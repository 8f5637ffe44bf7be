package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// CascadeResult counts what a user deletion removed.
type CascadeResult struct {
	Bookmarks int `json:"bookmarks"`
	Personas  int `json:"personas"`
	Follows   int `json:"follows"`
	Likes     int `json:"likes"`
}

func (r *CascadeResult) add(o *CascadeResult) {
	r.Bookmarks += o.Bookmarks
	r.Personas += o.Personas
	r.Follows += o.Follows
	r.Likes += o.Likes
}

// CascadeDeleteUser removes the user together with its bookmarks (and their
// tags), personas, likes and every follow it appears in. Freets live in the
// relational store and are removed by the caller.
//
// The cascade is one transaction when it fits in one. Larger graphs are
// deleted in batches with the user record going last, so a failed run leaves
// the account in place and can be repeated.
func (s *Store) CascadeDeleteUser(ctx context.Context, userID string) (*CascadeResult, error) {
	result, err := s.cascadeDeleteUserTxn(ctx, userID)
	if errors.Is(err, badger.ErrTxnTooBig) {
		if s.logger != nil {
			s.logger.Warn("user graph too large for one transaction, deleting in batches", "user_id", userID)
		}
		result, err = s.cascadeDeleteUserInBatches(ctx, userID)
	}
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cascade delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user cascade deleted",
			"user_id", userID,
			"bookmarks", result.Bookmarks,
			"personas", result.Personas,
			"follows", result.Follows,
			"likes", result.Likes,
		)
	}
	return result, nil
}

func (s *Store) cascadeDeleteUserTxn(ctx context.Context, userID string) (*CascadeResult, error) {
	result := &CascadeResult{}

	err := s.update(ctx, func(txn *badger.Txn) error {
		// Reset in case the transaction is replayed after a conflict.
		*result = CascadeResult{}

		if _, err := s.Users.getTxn(txn, userID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var err error
		if result.Bookmarks, err = s.deleteBookmarksByLookupTxn(txn, "user", userID); err != nil {
			return fmt.Errorf("bookmarks: %w", err)
		}
		if result.Follows, err = s.deleteFollowsForUserTxn(txn, userID); err != nil {
			return fmt.Errorf("follows: %w", err)
		}
		if result.Personas, err = s.deletePersonasForUserTxn(txn, userID); err != nil {
			return fmt.Errorf("personas: %w", err)
		}
		if result.Likes, err = s.deleteLikesByLookupTxn(txn, "user", userID); err != nil {
			return fmt.Errorf("likes: %w", err)
		}

		_, err = s.Users.deleteTxn(txn, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) cascadeDeleteUserInBatches(ctx context.Context, userID string) (*CascadeResult, error) {
	var bookmarkIDs, followIDs, personaIDs, likeIDs []string
	err := s.view(ctx, func(txn *badger.Txn) error {
		if _, err := s.Users.getTxn(txn, userID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		bookmarkIDs = s.Bookmarks.idsByLookupTxn(txn, "user", userID)
		followIDs = s.followIDsForUserTxn(txn, userID)
		personaIDs = s.Personas.idsByLookupTxn(txn, "user", userID)
		likeIDs = s.Likes.idsByLookupTxn(txn, "user", userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CascadeResult{}
	if result.Bookmarks, err = s.deleteInBatches(ctx, bookmarkIDs, s.deleteBookmarkTxn); err != nil {
		return nil, fmt.Errorf("bookmarks: %w", err)
	}
	if result.Follows, err = s.deleteInBatches(ctx, followIDs, s.Follows.removeTxn); err != nil {
		return nil, fmt.Errorf("follows: %w", err)
	}
	// Personas go after follows so no remaining follow points at one.
	if result.Personas, err = s.deleteInBatches(ctx, personaIDs, s.Personas.removeTxn); err != nil {
		return nil, fmt.Errorf("personas: %w", err)
	}
	if result.Likes, err = s.deleteInBatches(ctx, likeIDs, s.Likes.removeTxn); err != nil {
		return nil, fmt.Errorf("likes: %w", err)
	}

	// Sweeps anything written since the ids were read, then the user.
	rest, err := s.cascadeDeleteUserTxn(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.add(rest)
	return result, nil
}

// CascadeDeleteFreet removes every bookmark (and their tags) and like that
// references freetID. Like CascadeDeleteUser it falls back to batches when
// the freet is referenced too often for one transaction.
func (s *Store) CascadeDeleteFreet(ctx context.Context, freetID string) (bookmarks, likes int, err error) {
	bookmarks, likes, err = s.cascadeDeleteFreetTxn(ctx, freetID)
	if errors.Is(err, badger.ErrTxnTooBig) {
		if s.logger != nil {
			s.logger.Warn("freet references too many for one transaction, deleting in batches", "freet_id", freetID)
		}
		bookmarks, likes, err = s.cascadeDeleteFreetInBatches(ctx, freetID)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("cascade delete freet: %w", err)
	}
	return bookmarks, likes, nil
}

func (s *Store) cascadeDeleteFreetTxn(ctx context.Context, freetID string) (bookmarks, likes int, err error) {
	err = s.update(ctx, func(txn *badger.Txn) error {
		var err error
		if bookmarks, err = s.deleteBookmarksByLookupTxn(txn, "freet", freetID); err != nil {
			return fmt.Errorf("bookmarks: %w", err)
		}
		if likes, err = s.deleteLikesByLookupTxn(txn, "freet", freetID); err != nil {
			return fmt.Errorf("likes: %w", err)
		}
		return nil
	})
	return bookmarks, likes, err
}

func (s *Store) cascadeDeleteFreetInBatches(ctx context.Context, freetID string) (bookmarks, likes int, err error) {
	var bookmarkIDs, likeIDs []string
	err = s.view(ctx, func(txn *badger.Txn) error {
		bookmarkIDs = s.Bookmarks.idsByLookupTxn(txn, "freet", freetID)
		likeIDs = s.Likes.idsByLookupTxn(txn, "freet", freetID)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if bookmarks, err = s.deleteInBatches(ctx, bookmarkIDs, s.deleteBookmarkTxn); err != nil {
		return 0, 0, fmt.Errorf("bookmarks: %w", err)
	}
	if likes, err = s.deleteInBatches(ctx, likeIDs, s.Likes.removeTxn); err != nil {
		return 0, 0, fmt.Errorf("likes: %w", err)
	}

	restBookmarks, restLikes, err := s.cascadeDeleteFreetTxn(ctx, freetID)
	if err != nil {
		return 0, 0, err
	}
	return bookmarks + restBookmarks, likes + restLikes, nil
}
