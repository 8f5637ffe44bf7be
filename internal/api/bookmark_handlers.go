package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/dto"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/bookmarks",
		Summary:     "List bookmarks",
		Description: "Returns the caller's bookmarks, newest first, optionally only those carrying a tag",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBookmark",
		Method:        http.MethodPost,
		Path:          "/api/bookmarks",
		Summary:       "Bookmark freet",
		Description:   "Bookmarks a freet for the caller",
		Tags:          []string{"Bookmarks"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBookmark",
		Method:      http.MethodDelete,
		Path:        "/api/bookmarks/{freetId}",
		Summary:     "Delete bookmark",
		Description: "Removes the caller's bookmark of a freet together with its tags",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBookmark)
}

// === DTOs ===

// ListBookmarksInput optionally filters bookmarks by tag.
type ListBookmarksInput struct {
	Tag string `query:"tag" doc:"Only bookmarks carrying this tag"`

	// An empty ?tag= is a bad tag, not an absent filter.
	hasTag bool
}

// Resolve records whether the tag parameter was sent at all.
func (i *ListBookmarksInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.hasTag = u.Query().Has("tag")
	return nil
}

// ListBookmarksOutput wraps a bookmark list for Huma.
type ListBookmarksOutput struct {
	Body []dto.BookmarkView
}

// FreetRefRequest names a freet in a request body.
type FreetRefRequest struct {
	FreetID string `json:"freetId,omitempty" doc:"Freet ID"`
}

// CreateBookmarkInput wraps the create bookmark request for Huma.
type CreateBookmarkInput struct {
	Body FreetRefRequest
}

// CreateBookmarkResponse is returned after bookmarking a freet.
type CreateBookmarkResponse struct {
	Message  string           `json:"message" doc:"Human-readable summary"`
	Bookmark dto.BookmarkView `json:"bookmark" doc:"The new bookmark"`
}

// CreateBookmarkOutput wraps the create bookmark response for Huma.
type CreateBookmarkOutput struct {
	Body CreateBookmarkResponse
}

// === Handlers ===

func (s *Server) handleListBookmarks(ctx context.Context, input *ListBookmarksInput) (*ListBookmarksOutput, error) {
	var tag *string
	if input.hasTag {
		tag = &input.Tag
	}

	bookmarks, err := s.services.Bookmark.ListBookmarks(ctx, GetUserID(ctx), tag)
	if err != nil {
		return nil, err
	}
	return &ListBookmarksOutput{Body: bookmarks}, nil
}

func (s *Server) handleCreateBookmark(ctx context.Context, input *CreateBookmarkInput) (*CreateBookmarkOutput, error) {
	bookmark, err := s.services.Bookmark.CreateBookmark(ctx, GetUserID(ctx), input.Body.FreetID)
	if err != nil {
		return nil, err
	}

	return &CreateBookmarkOutput{
		Body: CreateBookmarkResponse{
			Message:  "Your bookmark was created successfully.",
			Bookmark: bookmark,
		},
	}, nil
}

func (s *Server) handleDeleteBookmark(ctx context.Context, input *FreetPathInput) (*MessageOutput, error) {
	if err := s.services.Bookmark.DeleteBookmark(ctx, GetUserID(ctx), input.FreetID); err != nil {
		return nil, err
	}
	return message("Your bookmark was deleted successfully."), nil
}
