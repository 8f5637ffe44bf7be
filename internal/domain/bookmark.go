package domain

import "time"

// Bookmark is a saved reference from a user to a freet.
// At most one bookmark exists per (UserID, FreetID).
type Bookmark struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FreetID   string    `json:"freet_id"`
}

// IsOwnedBy reports whether the bookmark belongs to userID.
func (b *Bookmark) IsOwnedBy(userID string) bool {
	return b.UserID == userID
}
