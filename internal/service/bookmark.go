package service

import (
	"context"
	"log/slog"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/dto"
	"github.com/fritterapp/fritter-server/internal/sse"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/validation"
)

// BookmarkService orchestrates bookmark operations.
// Bookmarks are private: every operation acts on the caller's own bookmarks.
type BookmarkService struct {
	store    *store.Store
	rules    *validation.Rules
	enricher *dto.Enricher
	events   EventEmitter
	logger   *slog.Logger
}

// NewBookmarkService creates a new bookmark service.
func NewBookmarkService(store *store.Store, rules *validation.Rules, enricher *dto.Enricher, events EventEmitter, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{
		store:    store,
		rules:    rules,
		enricher: enricher,
		events:   events,
		logger:   logger,
	}
}

// ListBookmarks returns the caller's bookmarks, newest first.
// A non-nil tag restricts the list to bookmarks carrying that exact name;
// no match yields an empty list.
func (s *BookmarkService) ListBookmarks(ctx context.Context, userID string, tag *string) ([]dto.BookmarkView, error) {
	rules := []validation.Rule{s.rules.LoggedIn(userID)}
	filter := ""
	if tag != nil {
		filter = *tag
		rules = append(rules, s.rules.ValidTag(filter))
	}
	if err := validation.Chain(ctx, rules...); err != nil {
		return nil, err
	}

	bookmarks, err := s.store.ListBookmarksByUser(ctx, userID, filter)
	if err != nil {
		return nil, storeError(err)
	}

	views, err := s.enricher.Bookmarks(ctx, bookmarks)
	if err != nil {
		return nil, storeError(err)
	}
	return views, nil
}

// CreateBookmark bookmarks freetID for the caller.
func (s *BookmarkService) CreateBookmark(ctx context.Context, userID, freetID string) (dto.BookmarkView, error) {
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.FreetExists(freetID, nil),
		s.rules.FreetNotBookmarked(userID, freetID),
	); err != nil {
		return dto.BookmarkView{}, err
	}

	bookmark, err := s.store.CreateBookmark(ctx, userID, freetID)
	if err != nil {
		return dto.BookmarkView{}, storeError(err)
	}

	view := dto.NewBookmarkView(bookmark, nil)
	s.events.Emit(sse.NewBookmarkCreatedEvent(userID, view))

	s.logger.Info("bookmark created",
		"bookmark_id", bookmark.ID,
		"freet_id", freetID,
		"user_id", userID,
	)
	return view, nil
}

// DeleteBookmark removes the caller's bookmark of freetID and its tags.
func (s *BookmarkService) DeleteBookmark(ctx context.Context, userID, freetID string) error {
	var bookmark *domain.Bookmark
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.BookmarkExists(userID, freetID, &bookmark),
	); err != nil {
		return err
	}

	if err := s.store.DeleteBookmark(ctx, userID, freetID); err != nil {
		return storeError(err)
	}

	s.events.Emit(sse.NewBookmarkDeletedEvent(userID, freetID))

	s.logger.Info("bookmark deleted",
		"bookmark_id", bookmark.ID,
		"freet_id", freetID,
		"user_id", userID,
	)
	return nil
}
