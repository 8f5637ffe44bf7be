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

// LikeService records likes on freets.
type LikeService struct {
	store  *store.Store
	rules  *validation.Rules
	events EventEmitter
	logger *slog.Logger
}

// NewLikeService creates a new like service.
func NewLikeService(store *store.Store, rules *validation.Rules, events EventEmitter, logger *slog.Logger) *LikeService {
	return &LikeService{
		store:  store,
		rules:  rules,
		events: events,
		logger: logger,
	}
}

// Like records that the caller liked freetID and tells the author.
func (s *LikeService) Like(ctx context.Context, userID, freetID string) (dto.LikeView, error) {
	var freet *domain.Freet
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.FreetExists(freetID, &freet),
		s.rules.NotLiked(userID, freetID),
	); err != nil {
		return dto.LikeView{}, err
	}

	like, err := s.store.CreateLike(ctx, userID, freetID)
	if err != nil {
		return dto.LikeView{}, storeError(err)
	}

	if !freet.IsAuthor(userID) {
		if liker, err := s.store.GetUser(ctx, userID); err == nil {
			s.events.Emit(sse.NewLikeReceivedEvent(freet.AuthorID, freetID, liker.Username))
		}
	}

	s.logger.Info("like added",
		"like_id", like.ID,
		"freet_id", freetID,
		"user_id", userID,
	)
	return dto.NewLikeView(like), nil
}

// Unlike removes the caller's like on freetID.
func (s *LikeService) Unlike(ctx context.Context, userID, freetID string) error {
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.FreetExists(freetID, nil),
		s.rules.Liked(userID, freetID),
	); err != nil {
		return err
	}

	if err := s.store.DeleteLike(ctx, userID, freetID); err != nil {
		return storeError(err)
	}

	s.logger.Info("like deleted",
		"freet_id", freetID,
		"user_id", userID,
	)
	return nil
}
