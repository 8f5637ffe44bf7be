package domain

import "time"

// Tag name length bounds, counted in code points.
const (
	TagNameMinLength = 1
	TagNameMaxLength = 20
)

// Tag is a free-text label attached to exactly one bookmark.
// Names are unique within a bookmark and compared case-sensitively.
// A tag has no life outside its bookmark; deleting the bookmark deletes it.
type Tag struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	BookmarkID string    `json:"bookmark_id"`
	Name       string    `json:"name"`
}
