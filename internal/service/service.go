// Package service orchestrates requests: each operation runs its validation
// chain, performs one store operation and projects the result.
package service

import (
	"errors"

	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/store"
)

// EventEmitter receives activity events. *sse.Manager implements it.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter discards every event.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(any) {}

// NewNoopEmitter returns an emitter for callers without an activity stream.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// userDisconnector is implemented by emitters that hold per-user connections.
type userDisconnector interface {
	DisconnectUser(userID string) int
}

// storeError converts a store failure that slipped past validation, usually
// because a concurrent request won the race, into a domain error.
func storeError(err error) error {
	var de *domainerrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, store.ErrBookmarkExists):
		return domainerrors.AlreadyExists("Cannot bookmark freet that is already bookmarked by you.")
	case errors.Is(err, store.ErrTagExists):
		return domainerrors.AlreadyExists("Cannot add tag that already exists on this bookmark.")
	case errors.Is(err, store.ErrPersonaExists):
		return domainerrors.AlreadyExists("The persona name already exists.")
	case errors.Is(err, store.ErrFollowExists):
		return domainerrors.AlreadyExists("Already following this user.")
	case errors.Is(err, store.ErrLikeExists):
		return domainerrors.AlreadyExists("Like already exists.")
	case errors.Is(err, store.ErrUsernameTaken):
		return domainerrors.AlreadyExists("An account with this username already exists.")
	case errors.Is(err, store.ErrSelfFollow):
		return domainerrors.Conflict("Cannot follow yourself.")
	case errors.Is(err, store.ErrFollowNotFound):
		return domainerrors.Conflict("Not following this user.")
	case errors.Is(err, store.ErrLikeNotFound):
		return domainerrors.Conflict("Like does not exist.")
	case errors.Is(err, store.ErrPersonaNotFound):
		return domainerrors.Forbidden("The persona does not exist.")
	case errors.Is(err, store.ErrInvalidTagName):
		return domainerrors.Validation("Tag cannot be empty or more than 20 characters.")
	case errors.Is(err, store.ErrBookmarkNotFound):
		return domainerrors.NotFound("Bookmark does not exist.")
	case errors.Is(err, store.ErrTagNotFound):
		return domainerrors.NotFound("Tag does not exist on this bookmark.")
	case errors.Is(err, store.ErrUserNotFound):
		return domainerrors.NotFound("User does not exist.")
	case errors.Is(err, store.ErrFreetNotFound):
		return domainerrors.NotFound("Freet does not exist.")
	default:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "internal error")
	}
}
