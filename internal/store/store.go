package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/fritterapp/fritter-server/internal/domain"
)

// maxConflictRetries bounds how often a read-write transaction is replayed
// after badger reports a write conflict.
const maxConflictRetries = 3

// Store wraps a Badger database instance holding the social graph:
// users, bookmarks, tags, personas, follows and likes.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// cascadeBatch is how many records each transaction of a batched
	// cascade deletes.
	cascadeBatch int

	// Generic entities
	Users     *Entity[domain.User]
	Bookmarks *Entity[domain.Bookmark]
	Tags      *Entity[domain.Tag]
	Personas  *Entity[domain.Persona]
	Follows   *Entity[domain.Follow]
	Likes     *Entity[domain.Like]
}

// New creates a new Store instance backed by the badger directory at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	store, err := open(opts, logger)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}
	return store, nil
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:           db,
		logger:       logger,
		cascadeBatch: defaultCascadeBatch,
	}

	store.initUsers()
	store.initBookmarks()
	store.initTags()
	store.initPersonas()
	store.initFollows()
	store.initLikes()

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// update runs fn in a read-write transaction and commits it.
// Conflicting commits are replayed so that the loser of a race re-reads
// the winner's writes and fails its own uniqueness checks.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if s.logger != nil {
			s.logger.Debug("transaction conflict, retrying", "attempt", attempt+1)
		}
	}
	return fmt.Errorf("transaction failed after %d retries: %w", maxConflictRetries, err)
}

// view runs fn in a read-only transaction.
func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// initUsers initializes the Users entity on the store.
// Usernames are indexed case-insensitively.
func (s *Store) initUsers() {
	s.Users = NewEntity(s, userPrefix, func(u *domain.User) string { return u.ID }).
		WithUniqueIndexTransform("username",
			func(u *domain.User) []string {
				return []string{normalizeUsername(u.Username)}
			},
			normalizeUsername,
		)
}

// initBookmarks indexes bookmarks by (user, freet) for uniqueness and by
// each side for listing and cascades.
func (s *Store) initBookmarks() {
	s.Bookmarks = NewEntity(s, bookmarkPrefix, func(b *domain.Bookmark) string { return b.ID }).
		WithUniqueIndex("user_freet", func(b *domain.Bookmark) []string {
			return []string{pair(b.UserID, b.FreetID)}
		}).
		WithLookup("user", func(b *domain.Bookmark) []string {
			return []string{b.UserID}
		}).
		WithLookup("freet", func(b *domain.Bookmark) []string {
			return []string{b.FreetID}
		})
}

func (s *Store) initTags() {
	s.Tags = NewEntity(s, tagPrefix, func(t *domain.Tag) string { return t.ID }).
		WithUniqueIndex("bookmark_name", func(t *domain.Tag) []string {
			return []string{pair(t.BookmarkID, t.Name)}
		}).
		WithLookup("bookmark", func(t *domain.Tag) []string {
			return []string{t.BookmarkID}
		})
}

func (s *Store) initPersonas() {
	s.Personas = NewEntity(s, personaPrefix, func(p *domain.Persona) string { return p.ID }).
		WithUniqueIndex("user_name", func(p *domain.Persona) []string {
			return []string{pair(p.UserID, p.Name)}
		}).
		WithLookup("user", func(p *domain.Persona) []string {
			return []string{p.UserID}
		})
}

// initFollows indexes follows in both directions plus by persona.
// Unclassified follows carry no persona lookup key.
func (s *Store) initFollows() {
	s.Follows = NewEntity(s, followPrefix, func(f *domain.Follow) string { return f.ID }).
		WithUniqueIndex("user_friend", func(f *domain.Follow) []string {
			return []string{pair(f.UserID, f.FriendID)}
		}).
		WithLookup("user", func(f *domain.Follow) []string {
			return []string{f.UserID}
		}).
		WithLookup("friend", func(f *domain.Follow) []string {
			return []string{f.FriendID}
		}).
		WithLookup("persona", func(f *domain.Follow) []string {
			if f.PersonaID == "" {
				return nil
			}
			return []string{f.PersonaID}
		})
}

func (s *Store) initLikes() {
	s.Likes = NewEntity(s, likePrefix, func(l *domain.Like) string { return l.ID }).
		WithUniqueIndex("user_freet", func(l *domain.Like) []string {
			return []string{pair(l.UserID, l.FreetID)}
		}).
		WithLookup("user", func(l *domain.Like) []string {
			return []string{l.UserID}
		}).
		WithLookup("freet", func(l *domain.Like) []string {
			return []string{l.FreetID}
		})
}
