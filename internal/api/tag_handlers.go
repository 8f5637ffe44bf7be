package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/dto"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/bookmarks/{freetId}/tags",
		Summary:     "List tags",
		Description: "Returns the tags on the caller's bookmark of a freet",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/bookmarks/{freetId}/tags/{tag}",
		Summary:     "Get tag",
		Description: "Returns one tag on the caller's bookmark of a freet",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/bookmarks/{freetId}/tags",
		Summary:       "Add tag",
		Description:   "Tags the caller's bookmark of a freet",
		Tags:          []string{"Tags"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/bookmarks/{freetId}/tags/{tag}",
		Summary:     "Remove tag",
		Description: "Removes a tag from the caller's bookmark of a freet",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)
}

// === DTOs ===

// ListTagsOutput wraps a tag list for Huma.
type ListTagsOutput struct {
	Body []dto.TagView
}

// TagPathInput addresses one tag on a bookmark.
type TagPathInput struct {
	FreetID string `path:"freetId" doc:"Bookmarked freet ID"`
	Tag     string `path:"tag" doc:"Tag name"`
}

// TagOutput wraps a tag for Huma.
type TagOutput struct {
	Body dto.TagView
}

// CreateTagRequest is the request body for tagging a bookmark.
type CreateTagRequest struct {
	Tag string `json:"tag,omitempty" doc:"Tag name, 1 to 20 characters"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	FreetID string `path:"freetId" doc:"Bookmarked freet ID"`
	Body    CreateTagRequest
}

// CreateTagResponse is returned after tagging a bookmark.
type CreateTagResponse struct {
	Message string      `json:"message" doc:"Human-readable summary"`
	Tag     dto.TagView `json:"tag" doc:"The new tag"`
}

// CreateTagOutput wraps the create tag response for Huma.
type CreateTagOutput struct {
	Body CreateTagResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *FreetPathInput) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.ListTags(ctx, GetUserID(ctx), input.FreetID)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: tags}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagPathInput) (*TagOutput, error) {
	tag, err := s.services.Tag.GetTag(ctx, GetUserID(ctx), input.FreetID, input.Tag)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: tag}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*CreateTagOutput, error) {
	tag, err := s.services.Tag.AddTag(ctx, GetUserID(ctx), input.FreetID, input.Body.Tag)
	if err != nil {
		return nil, err
	}

	return &CreateTagOutput{
		Body: CreateTagResponse{
			Message: "Your tag was created successfully.",
			Tag:     tag,
		},
	}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagPathInput) (*MessageOutput, error) {
	if err := s.services.Tag.RemoveTag(ctx, GetUserID(ctx), input.FreetID, input.Tag); err != nil {
		return nil, err
	}
	return message("Your tag was deleted successfully."), nil
}
