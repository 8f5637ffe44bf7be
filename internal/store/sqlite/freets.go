package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// freetColumns is the ordered list of columns selected in freet queries.
// Must match the scan order in scanFreet.
const freetColumns = `id, author_id, content, created_at, updated_at`

func scanFreet(scanner interface{ Scan(dest ...any) error }) (*domain.Freet, error) {
	var (
		f         domain.Freet
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&f.ID, &f.AuthorID, &f.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFreet inserts a new freet written by authorID.
func (s *Store) CreateFreet(ctx context.Context, authorID, content string) (*domain.Freet, error) {
	now := time.Now().UTC()
	f := &domain.Freet{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   content,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO freets (id, author_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID,
		f.AuthorID,
		f.Content,
		formatTime(f.CreatedAt),
		formatTime(f.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert freet: %w", err)
	}
	return f, nil
}

// GetFreet retrieves a freet by ID.
// Returns store.ErrFreetNotFound if the freet does not exist.
func (s *Store) GetFreet(ctx context.Context, freetID string) (*domain.Freet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+freetColumns+` FROM freets WHERE id = ?`, freetID)

	f, err := scanFreet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrFreetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get freet: %w", err)
	}
	return f, nil
}

// ListFreetsByAuthor returns the author's freets, newest first.
func (s *Store) ListFreetsByAuthor(ctx context.Context, authorID string) ([]*domain.Freet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+freetColumns+` FROM freets WHERE author_id = ? ORDER BY created_at DESC, id DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list freets: %w", err)
	}
	defer rows.Close()

	var freets []*domain.Freet
	for rows.Next() {
		f, err := scanFreet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan freet: %w", err)
		}
		freets = append(freets, f)
	}
	return freets, rows.Err()
}

// DeleteFreet removes a freet by ID.
// Returns store.ErrFreetNotFound if nothing was deleted.
func (s *Store) DeleteFreet(ctx context.Context, freetID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM freets WHERE id = ?`, freetID)
	if err != nil {
		return fmt.Errorf("delete freet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete freet: %w", err)
	}
	if n == 0 {
		return store.ErrFreetNotFound
	}
	return nil
}

// DeleteFreetsByAuthor removes every freet by authorID and returns the
// deleted ids so callers can cascade to bookmarks and likes.
func (s *Store) DeleteFreetsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM freets WHERE author_id = ?`, authorID)
	if err != nil {
		return nil, fmt.Errorf("select freet ids: %w", err)
	}

	var ids []string
	for rows.Next() {
		var freetID string
		if err := rows.Scan(&freetID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan freet id: %w", err)
		}
		ids = append(ids, freetID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM freets WHERE author_id = ?`, authorID); err != nil {
		return nil, fmt.Errorf("delete freets: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}

// CountFreets returns the number of stored freets.
func (s *Store) CountFreets(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM freets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count freets: %w", err)
	}
	return n, nil
}

// AllFreets iterates every freet in creation order. The iteration stops at
// the first error, which is yielded with a nil freet.
func (s *Store) AllFreets(ctx context.Context) iter.Seq2[*domain.Freet, error] {
	return func(yield func(*domain.Freet, error) bool) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+freetColumns+` FROM freets ORDER BY created_at, id`)
		if err != nil {
			yield(nil, fmt.Errorf("list freets: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			f, err := scanFreet(rows)
			if err != nil {
				yield(nil, fmt.Errorf("scan freet: %w", err))
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// ImportFreet stores a freet exactly as given, keeping its id and
// timestamps. It reports false when a freet with that id already exists.
func (s *Store) ImportFreet(ctx context.Context, f *domain.Freet) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO freets (id, author_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID,
		f.AuthorID,
		f.Content,
		formatTime(f.CreatedAt),
		formatTime(f.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("import freet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("import freet: %w", err)
	}
	return n > 0, nil
}
