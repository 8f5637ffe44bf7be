package api

import (
	"github.com/fritterapp/fritter-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	User     *service.UserService
	Freet    *service.FreetService
	Bookmark *service.BookmarkService
	Tag      *service.TagService
	Persona  *service.PersonaService
	Follow   *service.FollowService
	Like     *service.LikeService
	Stats    *service.StatsService
}
