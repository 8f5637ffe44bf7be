package validation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fritterapp/fritter-server/internal/domain"
	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/id"
	"github.com/fritterapp/fritter-server/internal/store"
)

// GraphReader is the part of the social graph store the rules consult.
type GraphReader interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetBookmarkByUserAndFreet(ctx context.Context, userID, freetID string) (*domain.Bookmark, error)
	GetTag(ctx context.Context, bookmarkID, name string) (*domain.Tag, error)
	GetPersonaByName(ctx context.Context, userID, name string) (*domain.Persona, error)
	GetFollow(ctx context.Context, userID, friendID string) (*domain.Follow, error)
	GetLike(ctx context.Context, userID, freetID string) (*domain.Like, error)
}

// FreetReader looks up freets.
type FreetReader interface {
	GetFreet(ctx context.Context, id string) (*domain.Freet, error)
}

// Rules builds Rule values bound to the current store state.
//
// Rules that resolve an entity accept an optional destination pointer so the
// caller can reuse the record without a second lookup. Pass nil to discard it.
type Rules struct {
	graph  GraphReader
	freets FreetReader
	v      *Validator
}

// NewRules creates a rule factory.
func NewRules(graph GraphReader, freets FreetReader, v *Validator) *Rules {
	return &Rules{graph: graph, freets: freets, v: v}
}

// LoggedIn fails when no user is acting.
func (r *Rules) LoggedIn(userID string) Rule {
	return func(context.Context) error {
		if userID == "" {
			return domainerrors.ErrUnauthorized
		}
		return nil
	}
}

// ValidTag checks the tag name format.
func (r *Rules) ValidTag(name string) Rule {
	return func(context.Context) error { return r.v.Tag(name) }
}

// ValidPersonaName checks the persona name format.
func (r *Rules) ValidPersonaName(name string) Rule {
	return func(context.Context) error { return r.v.PersonaName(name) }
}

// ValidFreetContent checks the freet body format.
func (r *Rules) ValidFreetContent(content string) Rule {
	return func(context.Context) error { return r.v.FreetContent(content) }
}

// ValidUsername checks the username format.
func (r *Rules) ValidUsername(username string) Rule {
	return func(context.Context) error { return r.v.Username(username) }
}

// UsernameAvailable fails when an account already uses username.
func (r *Rules) UsernameAvailable(username string) Rule {
	return func(ctx context.Context) error {
		_, err := r.graph.GetUserByUsername(ctx, username)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return nil
		case err != nil:
			return internal(err)
		}
		return domainerrors.AlreadyExists("An account with this username already exists.")
	}
}

// FreetExists fails with NotFound when freetID is malformed or unknown.
func (r *Rules) FreetExists(freetID string, dst **domain.Freet) Rule {
	return func(ctx context.Context) error {
		notFound := domainerrors.NotFoundf("Freet with freet ID %s does not exist.", freetID)
		if _, err := uuid.Parse(freetID); err != nil {
			return notFound
		}

		freet, err := r.freets.GetFreet(ctx, freetID)
		if errors.Is(err, store.ErrFreetNotFound) {
			return notFound
		}
		if err != nil {
			return internal(err)
		}
		assign(dst, freet)
		return nil
	}
}

// FreetAuthor fails unless userID wrote the freet. Run after FreetExists.
func (r *Rules) FreetAuthor(userID string, freet **domain.Freet) Rule {
	return func(context.Context) error {
		if *freet == nil || !(*freet).IsAuthor(userID) {
			return domainerrors.Forbidden("Cannot modify other users' freets.")
		}
		return nil
	}
}

// UserExists fails with NotFound when userID is malformed or unknown.
func (r *Rules) UserExists(userID string, dst **domain.User) Rule {
	return r.userExists(userID, dst, "The user with id, %s, does not exist.")
}

// AccountProvided fails with BadRequest when the account query is empty.
func (r *Rules) AccountProvided(account string) Rule {
	return func(context.Context) error {
		if account == "" {
			return domainerrors.BadRequest("Provided account id must be nonempty.")
		}
		return nil
	}
}

// AccountExists is UserExists with the wording used for the account query.
func (r *Rules) AccountExists(account string, dst **domain.User) Rule {
	return r.userExists(account, dst, "A user with userid %s does not exist.")
}

func (r *Rules) userExists(userID string, dst **domain.User, format string) Rule {
	return func(ctx context.Context) error {
		notFound := domainerrors.NotFoundf(format, userID)
		if !id.Valid(id.PrefixUser, userID) {
			return notFound
		}

		user, err := r.graph.GetUser(ctx, userID)
		if errors.Is(err, store.ErrUserNotFound) {
			return notFound
		}
		if err != nil {
			return internal(err)
		}
		assign(dst, user)
		return nil
	}
}

// BookmarkExists fails with NotFound when userID has not bookmarked freetID.
// Bookmarks are addressed by the caller's own (user, freet) pair, so a
// resolved bookmark is always owned by userID.
func (r *Rules) BookmarkExists(userID, freetID string, dst **domain.Bookmark) Rule {
	return func(ctx context.Context) error {
		notFound := domainerrors.NotFoundf("Bookmark for freet %s does not exist.", freetID)
		if _, err := uuid.Parse(freetID); err != nil {
			return notFound
		}

		bookmark, err := r.graph.GetBookmarkByUserAndFreet(ctx, userID, freetID)
		if errors.Is(err, store.ErrBookmarkNotFound) {
			return notFound
		}
		if err != nil {
			return internal(err)
		}
		assign(dst, bookmark)
		return nil
	}
}

// FreetNotBookmarked fails when userID already bookmarked freetID.
func (r *Rules) FreetNotBookmarked(userID, freetID string) Rule {
	return func(ctx context.Context) error {
		_, err := r.graph.GetBookmarkByUserAndFreet(ctx, userID, freetID)
		switch {
		case errors.Is(err, store.ErrBookmarkNotFound):
			return nil
		case err != nil:
			return internal(err)
		}
		return domainerrors.AlreadyExists("Cannot bookmark freet that is already bookmarked by you.")
	}
}

// TagAbsent fails when the bookmark already carries name. Run after BookmarkExists.
func (r *Rules) TagAbsent(bookmark **domain.Bookmark, name string) Rule {
	return func(ctx context.Context) error {
		_, err := r.graph.GetTag(ctx, (*bookmark).ID, name)
		switch {
		case errors.Is(err, store.ErrTagNotFound):
			return nil
		case err != nil:
			return internal(err)
		}
		return domainerrors.AlreadyExistsf("Cannot add tag, %s, that already exists on this bookmark.", name)
	}
}

// TagPresent fails with NotFound when the bookmark does not carry name.
// Run after BookmarkExists.
func (r *Rules) TagPresent(bookmark **domain.Bookmark, name string, dst **domain.Tag) Rule {
	return r.tagPresent(bookmark, name, dst,
		domainerrors.NotFoundf("Cannot remove tag, %s, that does not exist on this bookmark.", name))
}

// TagVisible is TagPresent for reads; a missing tag is reported as Forbidden.
func (r *Rules) TagVisible(bookmark **domain.Bookmark, name string, dst **domain.Tag) Rule {
	return r.tagPresent(bookmark, name, dst,
		domainerrors.Forbiddenf("The tag, %s, does not exist on this bookmark.", name))
}

func (r *Rules) tagPresent(bookmark **domain.Bookmark, name string, dst **domain.Tag, missing error) Rule {
	return func(ctx context.Context) error {
		tag, err := r.graph.GetTag(ctx, (*bookmark).ID, name)
		if errors.Is(err, store.ErrTagNotFound) {
			return missing
		}
		if err != nil {
			return internal(err)
		}
		assign(dst, tag)
		return nil
	}
}

// PersonaNameAvailable fails when userID already has a persona called name.
func (r *Rules) PersonaNameAvailable(userID, name string) Rule {
	return func(ctx context.Context) error {
		_, err := r.graph.GetPersonaByName(ctx, userID, name)
		switch {
		case errors.Is(err, store.ErrPersonaNotFound):
			return nil
		case err != nil:
			return internal(err)
		}
		return domainerrors.AlreadyExistsf("The persona name, %s, already exists.", name)
	}
}

// PersonaExists fails with Forbidden when userID has no persona called name.
func (r *Rules) PersonaExists(userID, name string, dst **domain.Persona) Rule {
	return r.personaExists(userID, name, dst,
		domainerrors.Forbiddenf("The persona name, %s, does not exist.", name))
}

// PersonaQueried is PersonaExists with the wording used for the name query.
func (r *Rules) PersonaQueried(userID, name string, dst **domain.Persona) Rule {
	return r.personaExists(userID, name, dst,
		domainerrors.Forbiddenf("No persona with name, %s, exists for current user.", name))
}

// AccountPersonaExists fails with NotFound when account has no persona called name.
func (r *Rules) AccountPersonaExists(account, name string, dst **domain.Persona) Rule {
	return r.personaExists(account, name, dst,
		domainerrors.NotFoundf("The persona name, %s, does not exist.", name))
}

func (r *Rules) personaExists(userID, name string, dst **domain.Persona, missing error) Rule {
	return func(ctx context.Context) error {
		persona, err := r.graph.GetPersonaByName(ctx, userID, name)
		if errors.Is(err, store.ErrPersonaNotFound) {
			return missing
		}
		if err != nil {
			return internal(err)
		}
		assign(dst, persona)
		return nil
	}
}

// NotSelfFollow fails when userID targets itself.
func (r *Rules) NotSelfFollow(userID, friendID string) Rule {
	return r.notSelf(userID, friendID, "Cannot follow yourself.")
}

// NotSelfUnfollow fails when userID targets itself.
func (r *Rules) NotSelfUnfollow(userID, friendID string) Rule {
	return r.notSelf(userID, friendID, "Cannot unfollow yourself.")
}

func (r *Rules) notSelf(userID, friendID, msg string) Rule {
	return func(context.Context) error {
		if userID == friendID {
			return domainerrors.Conflict(msg)
		}
		return nil
	}
}

// NotFollowing fails when the edge userID -> friendID already exists.
func (r *Rules) NotFollowing(userID, friendID string) Rule {
	return func(ctx context.Context) error {
		_, err := r.graph.GetFollow(ctx, userID, friendID)
		switch {
		case errors.Is(err, store.ErrFollowNotFound):
			return nil
		case err != nil:
			return internal(err)
		}
		return domainerrors.AlreadyExistsf("Already following user with id, %s.", friendID)
	}
}

// Following fails when the edge userID -> friendID does not exist.
func (r *Rules) Following(userID, friendID string, dst **domain.Follow) Rule {
	return func(ctx context.Context) error {
		follow, err := r.graph.GetFollow(ctx, userID, friendID)
		if errors.Is(err, store.ErrFollowNotFound) {
			return domainerrors.Conflictf("Not following user with id, %s.", friendID)
		}
		if err != nil {
			return internal(err)
		}
		assign(dst, follow)
		return nil
	}
}

// NotLiked fails when userID already liked freetID.
func (r *Rules) NotLiked(userID, freetID string) Rule {
	return func(ctx context.Context) error {
		_, err := r.graph.GetLike(ctx, userID, freetID)
		switch {
		case errors.Is(err, store.ErrLikeNotFound):
			return nil
		case err != nil:
			return internal(err)
		}
		return domainerrors.AlreadyExists("Like already exists.")
	}
}

// Liked fails when userID has not liked freetID.
func (r *Rules) Liked(userID, freetID string) Rule {
	return func(ctx context.Context) error {
		_, err := r.graph.GetLike(ctx, userID, freetID)
		if errors.Is(err, store.ErrLikeNotFound) {
			return domainerrors.Conflict("Like does not exist.")
		}
		if err != nil {
			return internal(err)
		}
		return nil
	}
}

func assign[T any](dst **T, v *T) {
	if dst != nil {
		*dst = v
	}
}

func internal(err error) error {
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "lookup failed")
}
