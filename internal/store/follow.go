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

// CreateFollow creates the edge userID -> friendID, optionally filed under
// personaID. The friend must exist and the persona, when given, must belong
// to userID. Returns ErrSelfFollow, ErrUserNotFound, ErrPersonaNotFound or
// ErrFollowExists.
func (s *Store) CreateFollow(ctx context.Context, userID, friendID, personaID string) (*domain.Follow, error) {
	if userID == friendID {
		return nil, ErrSelfFollow
	}

	followID, err := id.Generate(id.PrefixFollow)
	if err != nil {
		return nil, err
	}

	follow := &domain.Follow{
		CreatedAt: time.Now(),
		ID:        followID,
		UserID:    userID,
		FriendID:  friendID,
		PersonaID: personaID,
	}

	err = s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.Users.getTxn(txn, friendID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := s.checkPersonaOwnerTxn(txn, userID, personaID); err != nil {
			return err
		}
		return s.Follows.createTxn(txn, follow)
	})
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrPersonaNotFound):
		return nil, err
	case errors.Is(err, ErrAlreadyExists):
		return nil, ErrFollowExists
	case err != nil:
		return nil, fmt.Errorf("create follow: %w", err)
	}
	return follow, nil
}

// GetFollow retrieves the edge userID -> friendID.
func (s *Store) GetFollow(ctx context.Context, userID, friendID string) (*domain.Follow, error) {
	follow, err := s.Follows.GetByIndex(ctx, "user_friend", pair(userID, friendID))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrFollowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get follow: %w", err)
	}
	return follow, nil
}

// DeleteFollow removes the edge userID -> friendID.
func (s *Store) DeleteFollow(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return ErrSelfFollow
	}

	err := s.update(ctx, func(txn *badger.Txn) error {
		follow, err := s.Follows.getByIndexTxn(txn, "user_friend", pair(userID, friendID))
		if err != nil {
			return err
		}
		_, err = s.Follows.deleteTxn(txn, follow.ID)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return ErrFollowNotFound
	}
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// ReclassifyFollow files the edge userID -> friendID under personaID.
// An empty personaID moves the follow back to unclassified.
func (s *Store) ReclassifyFollow(ctx context.Context, userID, friendID, personaID string) (*domain.Follow, error) {
	var follow *domain.Follow
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		follow, err = s.Follows.getByIndexTxn(txn, "user_friend", pair(userID, friendID))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrFollowNotFound
			}
			return err
		}
		if err := s.checkPersonaOwnerTxn(txn, userID, personaID); err != nil {
			return err
		}
		follow.Classify(personaID)
		return s.Follows.updateTxn(txn, follow)
	})
	switch {
	case errors.Is(err, ErrFollowNotFound), errors.Is(err, ErrPersonaNotFound):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("reclassify follow: %w", err)
	}
	return follow, nil
}

// ListFollowsByUser returns the user's outgoing follows, newest first.
func (s *Store) ListFollowsByUser(ctx context.Context, userID string) ([]*domain.Follow, error) {
	return s.listFollows(ctx, "user", userID)
}

// ListFollowsByPersona returns the follows filed under the persona, newest first.
func (s *Store) ListFollowsByPersona(ctx context.Context, personaID string) ([]*domain.Follow, error) {
	return s.listFollows(ctx, "persona", personaID)
}

// ListFollowersOf returns the follows pointing at friendID, newest first.
func (s *Store) ListFollowersOf(ctx context.Context, friendID string) ([]*domain.Follow, error) {
	return s.listFollows(ctx, "friend", friendID)
}

// CountFollows returns how many users userID follows and how many follow it.
func (s *Store) CountFollows(ctx context.Context, userID string) (following, followers int, err error) {
	err = s.view(ctx, func(txn *badger.Txn) error {
		following = len(s.Follows.idsByLookupTxn(txn, "user", userID))
		followers = len(s.Follows.idsByLookupTxn(txn, "friend", userID))
		return nil
	})
	return following, followers, err
}

func (s *Store) listFollows(ctx context.Context, indexName, value string) ([]*domain.Follow, error) {
	follows, err := s.Follows.ListByLookup(ctx, indexName, value)
	if err != nil {
		return nil, fmt.Errorf("list follows by %s: %w", indexName, err)
	}
	slices.SortFunc(follows, func(a, b *domain.Follow) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return follows, nil
}

// UngroupPersona clears the persona of every follow filed under it and
// returns how many follows changed. The follows themselves are kept.
func (s *Store) UngroupPersona(ctx context.Context, personaID string) (int, error) {
	var ungrouped int
	err := s.update(ctx, func(txn *badger.Txn) error {
		ungrouped = 0
		for _, followID := range s.Follows.idsByLookupTxn(txn, "persona", personaID) {
			follow, err := s.Follows.getTxn(txn, followID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			follow.Ungroup()
			if err := s.Follows.updateTxn(txn, follow); err != nil {
				return err
			}
			ungrouped++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ungroup persona: %w", err)
	}

	if s.logger != nil && ungrouped > 0 {
		s.logger.Debug("persona ungrouped", "persona_id", personaID, "follows", ungrouped)
	}
	return ungrouped, nil
}

// DeleteFollowsForUser removes every follow where userID is the follower or
// the followee.
func (s *Store) DeleteFollowsForUser(ctx context.Context, userID string) (int, error) {
	var deleted int
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		deleted, err = s.deleteFollowsForUserTxn(txn, userID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete follows for user: %w", err)
	}
	return deleted, nil
}

// followIDsForUserTxn returns the ids of every follow userID is either side of.
func (s *Store) followIDsForUserTxn(txn *badger.Txn, userID string) []string {
	ids := s.Follows.idsByLookupTxn(txn, "user", userID)
	ids = append(ids, s.Follows.idsByLookupTxn(txn, "friend", userID)...)
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (s *Store) deleteFollowsForUserTxn(txn *badger.Txn, userID string) (int, error) {
	ids := s.followIDsForUserTxn(txn, userID)
	for _, followID := range ids {
		if _, err := s.Follows.deleteTxn(txn, followID); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return len(ids), nil
}

// checkPersonaOwnerTxn verifies that personaID, when set, names a persona of userID.
func (s *Store) checkPersonaOwnerTxn(txn *badger.Txn, userID, personaID string) error {
	if personaID == "" {
		return nil
	}
	persona, err := s.Personas.getTxn(txn, personaID)
	if errors.Is(err, ErrNotFound) {
		return ErrPersonaNotFound
	}
	if err != nil {
		return err
	}
	if !persona.IsOwnedBy(userID) {
		return ErrPersonaNotFound
	}
	return nil
}
