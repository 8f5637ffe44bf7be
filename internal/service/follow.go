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

// FollowService orchestrates follow edges and their persona classification.
type FollowService struct {
	store    *store.Store
	rules    *validation.Rules
	enricher *dto.Enricher
	events   EventEmitter
	logger   *slog.Logger
}

// NewFollowService creates a new follow service.
func NewFollowService(store *store.Store, rules *validation.Rules, enricher *dto.Enricher, events EventEmitter, logger *slog.Logger) *FollowService {
	return &FollowService{
		store:    store,
		rules:    rules,
		enricher: enricher,
		events:   events,
		logger:   logger,
	}
}

// ListFollows returns the outgoing follows of account, newest first.
// A non-nil name restricts the list to follows account filed under its
// persona of that name.
func (s *FollowService) ListFollows(ctx context.Context, userID, account string, name *string) ([]dto.FollowView, error) {
	rules := []validation.Rule{
		s.rules.LoggedIn(userID),
		s.rules.AccountProvided(account),
		s.rules.AccountExists(account, nil),
	}
	var persona *domain.Persona
	if name != nil {
		rules = append(rules, s.rules.AccountPersonaExists(account, *name, &persona))
	}
	if err := validation.Chain(ctx, rules...); err != nil {
		return nil, err
	}

	var (
		follows []*domain.Follow
		err     error
	)
	if persona != nil {
		follows, err = s.store.ListFollowsByPersona(ctx, persona.ID)
	} else {
		follows, err = s.store.ListFollowsByUser(ctx, account)
	}
	if err != nil {
		return nil, storeError(err)
	}

	views, err := s.enricher.Follows(ctx, follows)
	if err != nil {
		return nil, storeError(err)
	}
	return views, nil
}

// Follow creates the edge userID -> friendID. A nil name leaves the follow
// unclassified; otherwise it is filed under the caller's persona of that name.
func (s *FollowService) Follow(ctx context.Context, userID, friendID string, name *string) (dto.FollowView, error) {
	rules := []validation.Rule{
		s.rules.LoggedIn(userID),
		s.rules.UserExists(friendID, nil),
		s.rules.NotSelfFollow(userID, friendID),
		s.rules.NotFollowing(userID, friendID),
	}
	var persona *domain.Persona
	if name != nil {
		rules = append(rules, s.rules.PersonaExists(userID, *name, &persona))
	}
	if err := validation.Chain(ctx, rules...); err != nil {
		return dto.FollowView{}, err
	}

	personaID := ""
	if persona != nil {
		personaID = persona.ID
	}

	follow, err := s.store.CreateFollow(ctx, userID, friendID, personaID)
	if err != nil {
		return dto.FollowView{}, storeError(err)
	}

	view, err := s.enricher.Follow(ctx, follow)
	if err != nil {
		return dto.FollowView{}, storeError(err)
	}

	s.events.Emit(sse.NewFollowCreatedEvent(userID, view))
	s.notifyFollowerGained(ctx, userID, friendID)

	s.logger.Info("follow created",
		"follow_id", follow.ID,
		"user_id", userID,
		"friend_id", friendID,
		"persona_id", personaID,
	)
	return view, nil
}

// Unfollow removes the edge userID -> friendID.
func (s *FollowService) Unfollow(ctx context.Context, userID, friendID string) error {
	var follow *domain.Follow
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.UserExists(friendID, nil),
		s.rules.NotSelfUnfollow(userID, friendID),
		s.rules.Following(userID, friendID, &follow),
	); err != nil {
		return err
	}

	if err := s.store.DeleteFollow(ctx, userID, friendID); err != nil {
		return storeError(err)
	}

	s.events.Emit(sse.NewFollowDeletedEvent(userID, friendID))
	s.events.Emit(sse.NewFollowerLostEvent(friendID, userID))

	s.logger.Info("follow deleted",
		"follow_id", follow.ID,
		"user_id", userID,
		"friend_id", friendID,
	)
	return nil
}

// Reclassify files the edge userID -> friendID under the caller's persona
// called name. A nil name moves the follow back to unclassified.
func (s *FollowService) Reclassify(ctx context.Context, userID, friendID string, name *string) (dto.FollowView, error) {
	rules := []validation.Rule{
		s.rules.LoggedIn(userID),
		s.rules.UserExists(friendID, nil),
		s.rules.Following(userID, friendID, nil),
	}
	var persona *domain.Persona
	if name != nil {
		rules = append(rules, s.rules.PersonaExists(userID, *name, &persona))
	}
	if err := validation.Chain(ctx, rules...); err != nil {
		return dto.FollowView{}, err
	}

	personaID := ""
	if persona != nil {
		personaID = persona.ID
	}

	follow, err := s.store.ReclassifyFollow(ctx, userID, friendID, personaID)
	if err != nil {
		return dto.FollowView{}, storeError(err)
	}

	view, err := s.enricher.Follow(ctx, follow)
	if err != nil {
		return dto.FollowView{}, storeError(err)
	}

	s.events.Emit(sse.NewFollowUpdatedEvent(userID, view))

	s.logger.Info("follow reclassified",
		"follow_id", follow.ID,
		"user_id", userID,
		"friend_id", friendID,
		"state", string(follow.State()),
	)
	return view, nil
}

func (s *FollowService) notifyFollowerGained(ctx context.Context, userID, friendID string) {
	follower, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("skipping follower notification",
			"user_id", userID,
			"error", err,
		)
		return
	}
	s.events.Emit(sse.NewFollowerGainedEvent(friendID, dto.NewUserView(follower)))
}
