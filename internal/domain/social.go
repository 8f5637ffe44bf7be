package domain

import "time"

// Persona name length bounds, counted in code points.
const (
	PersonaNameMinLength = 1
	PersonaNameMaxLength = 30
)

// Persona is a named bucket a user files outgoing follows under.
// Names are unique per user.
type Persona struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
}

// IsOwnedBy reports whether the persona belongs to userID.
func (p *Persona) IsOwnedBy(userID string) bool {
	return p.UserID == userID
}

// Follow is a directed edge from UserID (follower) to FriendID (followee).
//
// PersonaID is empty when the follow is unclassified. When set it always
// names a persona owned by UserID. Deleting that persona clears the field
// and keeps the edge.
type Follow struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	PersonaID string    `json:"persona_id,omitempty"`
}

// FollowState is the classification state of a follow.
type FollowState string

const (
	// FollowUnclassified means the follow is not filed under any persona.
	FollowUnclassified FollowState = "unclassified"
	// FollowClassified means the follow is filed under a persona.
	FollowClassified FollowState = "classified"
)

// State returns the classification state.
func (f *Follow) State() FollowState {
	if f.PersonaID == "" {
		return FollowUnclassified
	}
	return FollowClassified
}

// Classify files the follow under personaID.
// An empty personaID clears the classification.
func (f *Follow) Classify(personaID string) {
	f.PersonaID = personaID
}

// Ungroup clears the classification.
func (f *Follow) Ungroup() {
	f.PersonaID = ""
}
