package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/id"
)

// CreateLike records that userID liked freetID.
// Returns ErrLikeExists if the like is already recorded.
func (s *Store) CreateLike(ctx context.Context, userID, freetID string) (*domain.Like, error) {
	likeID, err := id.Generate(id.PrefixLike)
	if err != nil {
		return nil, err
	}

	like := &domain.Like{
		CreatedAt: time.Now(),
		ID:        likeID,
		UserID:    userID,
		FreetID:   freetID,
	}

	err = s.Likes.Create(ctx, like)
	if errors.Is(err, ErrAlreadyExists) {
		return nil, ErrLikeExists
	}
	if err != nil {
		return nil, fmt.Errorf("create like: %w", err)
	}
	return like, nil
}

// GetLike retrieves userID's like on freetID.
func (s *Store) GetLike(ctx context.Context, userID, freetID string) (*domain.Like, error) {
	like, err := s.Likes.GetByIndex(ctx, "user_freet", pair(userID, freetID))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrLikeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}
	return like, nil
}

// DeleteLike removes userID's like on freetID.
func (s *Store) DeleteLike(ctx context.Context, userID, freetID string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		like, err := s.Likes.getByIndexTxn(txn, "user_freet", pair(userID, freetID))
		if err != nil {
			return err
		}
		_, err = s.Likes.deleteTxn(txn, like.ID)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return ErrLikeNotFound
	}
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

// CountLikesForFreet returns how many users liked freetID.
func (s *Store) CountLikesForFreet(ctx context.Context, freetID string) (int, error) {
	n, err := s.Likes.CountByLookup(ctx, "freet", freetID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

// DeleteLikesForFreet removes every like on freetID.
func (s *Store) DeleteLikesForFreet(ctx context.Context, freetID string) (int, error) {
	return s.deleteLikesByLookup(ctx, "freet", freetID)
}

// DeleteLikesForUser removes every like given by userID.
func (s *Store) DeleteLikesForUser(ctx context.Context, userID string) (int, error) {
	return s.deleteLikesByLookup(ctx, "user", userID)
}

func (s *Store) deleteLikesByLookup(ctx context.Context, indexName, value string) (int, error) {
	var deleted int
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		deleted, err = s.deleteLikesByLookupTxn(txn, indexName, value)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete likes by %s: %w", indexName, err)
	}
	return deleted, nil
}

func (s *Store) deleteLikesByLookupTxn(txn *badger.Txn, indexName, value string) (int, error) {
	ids := s.Likes.idsByLookupTxn(txn, indexName, value)
	for _, likeID := range ids {
		if _, err := s.Likes.deleteTxn(txn, likeID); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return len(ids), nil
}
