package domain

import "time"

// Username length bounds, counted in code points.
const (
	UsernameMinLength = 1
	UsernameMaxLength = 30
)

// User represents an authenticated account. It is the identity anchor for
// bookmarks, personas, follows, likes and authored freets.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash,omitempty"` // Never leaves the server
}
