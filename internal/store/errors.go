package store

import "errors"

// Generic entity errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Entity-specific errors. Services translate these into domain errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrBookmarkExists   = errors.New("bookmark already exists")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagExists        = errors.New("tag already exists")
	ErrInvalidTagName   = errors.New("invalid tag name")
	ErrPersonaNotFound  = errors.New("persona not found")
	ErrPersonaExists    = errors.New("persona already exists")
	ErrFollowNotFound   = errors.New("follow not found")
	ErrFollowExists     = errors.New("follow already exists")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrFreetNotFound    = errors.New("freet not found")
	ErrLikeNotFound     = errors.New("like not found")
	ErrLikeExists       = errors.New("like already exists")
)
