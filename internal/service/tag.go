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

// TagService orchestrates the tags on a caller's bookmark.
// A bookmark is addressed by the freet it points at.
type TagService struct {
	store  *store.Store
	rules  *validation.Rules
	events EventEmitter
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, rules *validation.Rules, events EventEmitter, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		rules:  rules,
		events: events,
		logger: logger,
	}
}

// ListTags returns every tag on the caller's bookmark of freetID.
func (s *TagService) ListTags(ctx context.Context, userID, freetID string) ([]dto.TagView, error) {
	var bookmark *domain.Bookmark
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.BookmarkExists(userID, freetID, &bookmark),
	); err != nil {
		return nil, err
	}

	tags, err := s.store.ListTagsByBookmark(ctx, bookmark.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return dto.NewTagViews(tags), nil
}

// GetTag returns one tag on the caller's bookmark of freetID.
func (s *TagService) GetTag(ctx context.Context, userID, freetID, name string) (dto.TagView, error) {
	var (
		bookmark *domain.Bookmark
		tag      *domain.Tag
	)
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.BookmarkExists(userID, freetID, &bookmark),
		s.rules.ValidTag(name),
		s.rules.TagVisible(&bookmark, name, &tag),
	); err != nil {
		return dto.TagView{}, err
	}
	return dto.NewTagView(tag), nil
}

// AddTag adds name to the caller's bookmark of freetID.
func (s *TagService) AddTag(ctx context.Context, userID, freetID, name string) (dto.TagView, error) {
	var bookmark *domain.Bookmark
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.BookmarkExists(userID, freetID, &bookmark),
		s.rules.ValidTag(name),
		s.rules.TagAbsent(&bookmark, name),
	); err != nil {
		return dto.TagView{}, err
	}

	tag, err := s.store.AddTag(ctx, bookmark.ID, name)
	if err != nil {
		return dto.TagView{}, storeError(err)
	}

	s.events.Emit(sse.NewTagAddedEvent(userID, freetID, name))

	s.logger.Info("tag added to bookmark",
		"tag", name,
		"bookmark_id", bookmark.ID,
		"user_id", userID,
	)
	return dto.NewTagView(tag), nil
}

// RemoveTag removes name from the caller's bookmark of freetID.
func (s *TagService) RemoveTag(ctx context.Context, userID, freetID, name string) error {
	var bookmark *domain.Bookmark
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.BookmarkExists(userID, freetID, &bookmark),
		s.rules.ValidTag(name),
		s.rules.TagPresent(&bookmark, name, nil),
	); err != nil {
		return err
	}

	if err := s.store.RemoveTag(ctx, bookmark.ID, name); err != nil {
		return storeError(err)
	}

	s.events.Emit(sse.NewTagRemovedEvent(userID, freetID, name))

	s.logger.Info("tag removed from bookmark",
		"tag", name,
		"bookmark_id", bookmark.ID,
		"user_id", userID,
	)
	return nil
}
