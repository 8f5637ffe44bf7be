package domain

import "time"

// Like records that a user liked a freet. One per (UserID, FreetID).
type Like struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FreetID   string    `json:"freet_id"`
}
