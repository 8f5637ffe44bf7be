package dto

import (
	"context"
	"errors"
	"fmt"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// Store defines the interface for fetching related entities during enrichment.
// This allows Enricher to remain testable and independent of concrete store implementation.
type Store interface {
	GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	GetPersona(ctx context.Context, id string) (*domain.Persona, error)
	ListTagsByBookmark(ctx context.Context, bookmarkID string) ([]*domain.Tag, error)
	ListFollowsByPersona(ctx context.Context, personaID string) ([]*domain.Follow, error)
}

// Enricher gathers the related records a projection needs.
//
//   - Batch fetching: usernames are loaded once per call, not per follow
//   - Graceful degradation: a missing friend or persona leaves display fields empty
type Enricher struct {
	store Store
}

// NewEnricher creates a new enricher.
func NewEnricher(store Store) *Enricher {
	return &Enricher{store: store}
}

// Bookmark projects one bookmark with its tag names.
func (e *Enricher) Bookmark(ctx context.Context, b *domain.Bookmark) (BookmarkView, error) {
	tags, err := e.store.ListTagsByBookmark(ctx, b.ID)
	if err != nil {
		return BookmarkView{}, fmt.Errorf("fetch tags: %w", err)
	}
	return NewBookmarkView(b, tags), nil
}

// Bookmarks projects bookmarks in order.
func (e *Enricher) Bookmarks(ctx context.Context, bookmarks []*domain.Bookmark) ([]BookmarkView, error) {
	views := make([]BookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		view, err := e.Bookmark(ctx, b)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Persona projects one persona with the friends filed under it.
func (e *Enricher) Persona(ctx context.Context, p *domain.Persona) (PersonaView, error) {
	follows, err := e.store.ListFollowsByPersona(ctx, p.ID)
	if err != nil {
		return PersonaView{}, fmt.Errorf("fetch follows: %w", err)
	}
	return NewPersonaView(p, follows), nil
}

// Personas projects personas in order.
func (e *Enricher) Personas(ctx context.Context, personas []*domain.Persona) ([]PersonaView, error) {
	views := make([]PersonaView, 0, len(personas))
	for _, p := range personas {
		view, err := e.Persona(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Follow projects one follow.
func (e *Enricher) Follow(ctx context.Context, f *domain.Follow) (FollowView, error) {
	views, err := e.Follows(ctx, []*domain.Follow{f})
	if err != nil {
		return FollowView{}, err
	}
	return views[0], nil
}

// Follows projects follows in order, batching the friend lookups.
// A persona reference that no longer resolves renders as unclassified.
func (e *Enricher) Follows(ctx context.Context, follows []*domain.Follow) ([]FollowView, error) {
	friendIDs := make([]string, 0, len(follows))
	seen := make(map[string]bool, len(follows))
	for _, f := range follows {
		if !seen[f.FriendID] {
			seen[f.FriendID] = true
			friendIDs = append(friendIDs, f.FriendID)
		}
	}

	// Batch fetch friends
	var friendMap map[string]*domain.User
	if len(friendIDs) > 0 {
		friends, err := e.store.GetUsersByIDs(ctx, friendIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch friends: %w", err)
		}
		friendMap = make(map[string]*domain.User, len(friends))
		for _, u := range friends {
			friendMap[u.ID] = u
		}
	}

	personaMap := make(map[string]*domain.Persona)
	views := make([]FollowView, 0, len(follows))
	for _, f := range follows {
		var persona *domain.Persona
		if f.PersonaID != "" {
			p, ok := personaMap[f.PersonaID]
			if !ok {
				var err error
				p, err = e.store.GetPersona(ctx, f.PersonaID)
				if err != nil && !errors.Is(err, store.ErrPersonaNotFound) {
					return nil, fmt.Errorf("fetch persona: %w", err)
				}
				personaMap[f.PersonaID] = p
			}
			persona = p
		}
		views = append(views, NewFollowView(f, friendMap[f.FriendID], persona))
	}
	return views, nil
}
