package domain

import "time"

// FreetContentMaxLength is the longest freet body accepted, in code points.
const FreetContentMaxLength = 140

// Freet is a short post. Freets live in the relational store and are
// referenced by bookmarks and likes through FreetID.
type Freet struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
}

// IsAuthor reports whether userID wrote the freet.
func (f *Freet) IsAuthor(userID string) bool {
	return f.AuthorID == userID
}
