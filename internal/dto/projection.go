// Package dto projects domain records into the shapes clients receive.
//
// Projections are pure: they never fail and never touch storage. Lookups
// needed to fill display fields happen in Enricher before projection.
package dto

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fritterapp/fritter-server/internal/domain"
)

// FormatDate renders t as "March 3rd 2024, 4:05:06 pm" in UTC.
func FormatDate(t time.Time) string {
	t = t.UTC()
	return t.Format("January ") + humanize.Ordinal(t.Day()) + t.Format(" 2006, 3:04:05 pm")
}

// BookmarkView is a bookmark without its owner.
type BookmarkView struct {
	ID          string   `json:"id"`
	FreetID     string   `json:"freetId"`
	Tags        []string `json:"tags"`
	DateCreated string   `json:"dateCreated"`
}

// NewBookmarkView flattens tags to their names.
func NewBookmarkView(b *domain.Bookmark, tags []*domain.Tag) BookmarkView {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return BookmarkView{
		ID:          b.ID,
		FreetID:     b.FreetID,
		Tags:        names,
		DateCreated: FormatDate(b.CreatedAt),
	}
}

// TagView is a single tag.
type TagView struct {
	ID          string `json:"id"`
	BookmarkID  string `json:"bookmarkId"`
	Name        string `json:"name"`
	DateCreated string `json:"dateCreated"`
}

// NewTagView projects a tag.
func NewTagView(t *domain.Tag) TagView {
	return TagView{
		ID:          t.ID,
		BookmarkID:  t.BookmarkID,
		Name:        t.Name,
		DateCreated: FormatDate(t.CreatedAt),
	}
}

// NewTagViews projects a slice of tags.
func NewTagViews(tags []*domain.Tag) []TagView {
	views := make([]TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, NewTagView(t))
	}
	return views
}

// PersonaView is a persona with its follows flattened to friend ids.
type PersonaView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Follows     []string `json:"follows"`
	DateCreated string   `json:"dateCreated"`
}

// NewPersonaView projects a persona and the follows filed under it.
func NewPersonaView(p *domain.Persona, follows []*domain.Follow) PersonaView {
	friends := make([]string, 0, len(follows))
	for _, f := range follows {
		friends = append(friends, f.FriendID)
	}
	return PersonaView{
		ID:          p.ID,
		Name:        p.Name,
		Follows:     friends,
		DateCreated: FormatDate(p.CreatedAt),
	}
}

// FollowView is a follow edge with the friend's username and the persona,
// if any, it is filed under.
type FollowView struct {
	ID             string `json:"id"`
	FriendID       string `json:"friendId"`
	FriendUsername string `json:"friendUsername"`
	PersonaID      string `json:"personaId,omitempty"`
	PersonaName    string `json:"personaName,omitempty"`
	DateCreated    string `json:"dateCreated"`
}

// NewFollowView projects a follow. friend and persona may be nil; a nil
// persona renders the follow as unclassified.
func NewFollowView(f *domain.Follow, friend *domain.User, persona *domain.Persona) FollowView {
	view := FollowView{
		ID:          f.ID,
		FriendID:    f.FriendID,
		DateCreated: FormatDate(f.CreatedAt),
	}
	if friend != nil {
		view.FriendUsername = friend.Username
	}
	if persona != nil && f.State() == domain.FollowClassified {
		view.PersonaID = persona.ID
		view.PersonaName = persona.Name
	}
	return view
}

// FreetView is a freet with its author's username and like count.
type FreetView struct {
	ID           string `json:"id"`
	AuthorID     string `json:"authorId"`
	Author       string `json:"author"`
	Content      string `json:"content"`
	Likes        int    `json:"likes"`
	DateCreated  string `json:"dateCreated"`
	DateModified string `json:"dateModified"`
}

// NewFreetView projects a freet. author may be nil for deleted accounts.
func NewFreetView(f *domain.Freet, author *domain.User, likes int) FreetView {
	view := FreetView{
		ID:           f.ID,
		AuthorID:     f.AuthorID,
		Content:      f.Content,
		Likes:        likes,
		DateCreated:  FormatDate(f.CreatedAt),
		DateModified: FormatDate(f.UpdatedAt),
	}
	if author != nil {
		view.Author = author.Username
	}
	return view
}

// LikeView is a like without its owner.
type LikeView struct {
	ID          string `json:"id"`
	FreetID     string `json:"freetId"`
	DateCreated string `json:"dateCreated"`
}

// NewLikeView projects a like.
func NewLikeView(l *domain.Like) LikeView {
	return LikeView{ID: l.ID, FreetID: l.FreetID, DateCreated: FormatDate(l.CreatedAt)}
}

// UserView is the public account shape. The password hash never leaves the server.
type UserView struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	DateJoined string `json:"dateJoined"`
}

// NewUserView projects a user.
func NewUserView(u *domain.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, DateJoined: FormatDate(u.CreatedAt)}
}
