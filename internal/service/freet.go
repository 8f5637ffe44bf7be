package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/dto"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
	"github.com/fritterapp/fritter-server/internal/validation"
)

// FreetService manages freets. Freets live in SQLite; the bookmarks and
// likes that reference them live in the graph store and are removed with them.
type FreetService struct {
	store  *store.Store
	freets *sqlite.Store
	rules  *validation.Rules
	logger *slog.Logger
}

// NewFreetService creates a new freet service.
func NewFreetService(store *store.Store, freets *sqlite.Store, rules *validation.Rules, logger *slog.Logger) *FreetService {
	return &FreetService{
		store:  store,
		freets: freets,
		rules:  rules,
		logger: logger,
	}
}

// CreateFreet publishes content as the caller.
func (s *FreetService) CreateFreet(ctx context.Context, userID, content string) (dto.FreetView, error) {
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.ValidFreetContent(content),
	); err != nil {
		return dto.FreetView{}, err
	}

	freet, err := s.freets.CreateFreet(ctx, userID, strings.TrimSpace(content))
	if err != nil {
		return dto.FreetView{}, storeError(err)
	}

	s.logger.Info("freet created",
		"freet_id", freet.ID,
		"user_id", userID,
	)
	return s.view(ctx, freet)
}

// GetFreet returns a freet with its author and like count.
func (s *FreetService) GetFreet(ctx context.Context, freetID string) (dto.FreetView, error) {
	var freet *domain.Freet
	if err := validation.Chain(ctx, s.rules.FreetExists(freetID, &freet)); err != nil {
		return dto.FreetView{}, err
	}
	return s.view(ctx, freet)
}

// ListFreets returns the freets written by authorID, newest first.
func (s *FreetService) ListFreets(ctx context.Context, authorID string) ([]dto.FreetView, error) {
	var author *domain.User
	if err := validation.Chain(ctx, s.rules.UserExists(authorID, &author)); err != nil {
		return nil, err
	}

	freets, err := s.freets.ListFreetsByAuthor(ctx, authorID)
	if err != nil {
		return nil, storeError(err)
	}

	views := make([]dto.FreetView, 0, len(freets))
	for _, f := range freets {
		likes, err := s.store.CountLikesForFreet(ctx, f.ID)
		if err != nil {
			return nil, storeError(err)
		}
		views = append(views, dto.NewFreetView(f, author, likes))
	}
	return views, nil
}

// DeleteFreet deletes the caller's freet together with every bookmark and
// like that points at it.
func (s *FreetService) DeleteFreet(ctx context.Context, userID, freetID string) error {
	var freet *domain.Freet
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.FreetExists(freetID, &freet),
		s.rules.FreetAuthor(userID, &freet),
	); err != nil {
		return err
	}

	if err := s.freets.DeleteFreet(ctx, freetID); err != nil {
		return storeError(err)
	}

	bookmarks, likes, err := s.store.CascadeDeleteFreet(ctx, freetID)
	if err != nil {
		s.logger.Error("freet cascade failed",
			"freet_id", freetID,
			"error", err,
		)
		return storeError(err)
	}

	s.logger.Info("freet deleted",
		"freet_id", freetID,
		"user_id", userID,
		"bookmarks", bookmarks,
		"likes", likes,
	)
	return nil
}

func (s *FreetService) view(ctx context.Context, freet *domain.Freet) (dto.FreetView, error) {
	author, err := s.store.GetUser(ctx, freet.AuthorID)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return dto.FreetView{}, storeError(err)
	}

	likes, err := s.store.CountLikesForFreet(ctx, freet.ID)
	if err != nil {
		return dto.FreetView{}, storeError(err)
	}
	return dto.NewFreetView(freet, author, likes), nil
}
