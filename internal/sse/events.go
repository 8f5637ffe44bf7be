// Package sse implements Server-Sent Events for per-user activity updates.
package sse

import (
	"time"

	"github.com/fritterapp/fritter-server/internal/dto"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventFollowCreated is sent to the follower when a follow is created.
	EventFollowCreated EventType = "follow.created"
	// EventFollowUpdated is sent to the follower when a follow changes persona.
	EventFollowUpdated EventType = "follow.updated"
	// EventFollowDeleted is sent to the follower when a follow is removed.
	EventFollowDeleted EventType = "follow.deleted"

	// EventFollowerGained is sent to the followed user.
	EventFollowerGained EventType = "follower.gained"
	// EventFollowerLost is sent to the unfollowed user.
	EventFollowerLost EventType = "follower.lost"

	EventPersonaCreated EventType = "persona.created"
	// EventPersonaDeleted carries how many follows were ungrouped.
	EventPersonaDeleted EventType = "persona.deleted"

	EventBookmarkCreated EventType = "bookmark.created"
	EventBookmarkDeleted EventType = "bookmark.deleted"
	EventTagAdded        EventType = "tag.added"
	EventTagRemoved      EventType = "tag.removed"

	// EventLikeReceived is sent to a freet's author when someone likes it.
	EventLikeReceived EventType = "like.received"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID restricts delivery to one user's connections. Empty means
	// every connected client.
	UserID string `json:"-"`
}

// FollowEventData is the payload for follow events seen by the follower.
type FollowEventData struct {
	Follow dto.FollowView `json:"follow"`
}

// FollowDeletedEventData is the payload when the follower drops a follow.
type FollowDeletedEventData struct {
	FriendID string `json:"friendId"`
}

// FollowerEventData is the payload seen by the followed user.
type FollowerEventData struct {
	Follower dto.UserView `json:"follower"`
}

// FollowerLostEventData is the payload when a follower goes away.
type FollowerLostEventData struct {
	FollowerID string `json:"followerId"`
}

// PersonaEventData is the payload for persona creation.
type PersonaEventData struct {
	Persona dto.PersonaView `json:"persona"`
}

// PersonaDeletedEventData reports the removed persona and the ungroup cascade.
type PersonaDeletedEventData struct {
	PersonaID string `json:"personaId"`
	Name      string `json:"name"`
	Ungrouped int    `json:"ungrouped"`
}

// BookmarkEventData is the payload for bookmark creation.
type BookmarkEventData struct {
	Bookmark dto.BookmarkView `json:"bookmark"`
}

// BookmarkDeletedEventData is the payload for bookmark removal.
type BookmarkDeletedEventData struct {
	FreetID string `json:"freetId"`
}

// TagEventData is the payload for tag events.
type TagEventData struct {
	FreetID string `json:"freetId"`
	Tag     string `json:"tag"`
}

// LikeReceivedEventData is the payload sent to a freet's author.
type LikeReceivedEventData struct {
	FreetID string `json:"freetId"`
	LikedBy string `json:"likedBy"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func newEvent(typ EventType, userID string, data any) Event {
	return Event{
		Type:      typ,
		Data:      data,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// NewFollowCreatedEvent notifies userID of its new follow.
func NewFollowCreatedEvent(userID string, follow dto.FollowView) Event {
	return newEvent(EventFollowCreated, userID, FollowEventData{Follow: follow})
}

// NewFollowUpdatedEvent notifies userID that a follow moved persona.
func NewFollowUpdatedEvent(userID string, follow dto.FollowView) Event {
	return newEvent(EventFollowUpdated, userID, FollowEventData{Follow: follow})
}

// NewFollowDeletedEvent notifies userID that it no longer follows friendID.
func NewFollowDeletedEvent(userID, friendID string) Event {
	return newEvent(EventFollowDeleted, userID, FollowDeletedEventData{FriendID: friendID})
}

// NewFollowerGainedEvent notifies friendID that follower started following it.
func NewFollowerGainedEvent(friendID string, follower dto.UserView) Event {
	return newEvent(EventFollowerGained, friendID, FollowerEventData{Follower: follower})
}

// NewFollowerLostEvent notifies friendID that followerID stopped following it.
func NewFollowerLostEvent(friendID, followerID string) Event {
	return newEvent(EventFollowerLost, friendID, FollowerLostEventData{FollowerID: followerID})
}

// NewPersonaCreatedEvent creates a persona.created event.
func NewPersonaCreatedEvent(userID string, persona dto.PersonaView) Event {
	return newEvent(EventPersonaCreated, userID, PersonaEventData{Persona: persona})
}

// NewPersonaDeletedEvent creates a persona.deleted event.
func NewPersonaDeletedEvent(userID, personaID, name string, ungrouped int) Event {
	return newEvent(EventPersonaDeleted, userID, PersonaDeletedEventData{
		PersonaID: personaID,
		Name:      name,
		Ungrouped: ungrouped,
	})
}

// NewBookmarkCreatedEvent creates a bookmark.created event.
func NewBookmarkCreatedEvent(userID string, bookmark dto.BookmarkView) Event {
	return newEvent(EventBookmarkCreated, userID, BookmarkEventData{Bookmark: bookmark})
}

// NewBookmarkDeletedEvent creates a bookmark.deleted event.
func NewBookmarkDeletedEvent(userID, freetID string) Event {
	return newEvent(EventBookmarkDeleted, userID, BookmarkDeletedEventData{FreetID: freetID})
}

// NewTagAddedEvent creates a tag.added event.
func NewTagAddedEvent(userID, freetID, tag string) Event {
	return newEvent(EventTagAdded, userID, TagEventData{FreetID: freetID, Tag: tag})
}

// NewTagRemovedEvent creates a tag.removed event.
func NewTagRemovedEvent(userID, freetID, tag string) Event {
	return newEvent(EventTagRemoved, userID, TagEventData{FreetID: freetID, Tag: tag})
}

// NewLikeReceivedEvent notifies authorID that likedBy liked one of its freets.
func NewLikeReceivedEvent(authorID, freetID, likedBy string) Event {
	return newEvent(EventLikeReceived, authorID, LikeReceivedEventData{FreetID: freetID, LikedBy: likedBy})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, "", HeartbeatEventData{ServerTime: time.Now()})
}
