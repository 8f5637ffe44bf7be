package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/dto"
)

func (s *Server) registerLikeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createLike",
		Method:        http.MethodPost,
		Path:          "/api/likes",
		Summary:       "Like freet",
		Description:   "Likes a freet and notifies its author",
		Tags:          []string{"Likes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteLike",
		Method:      http.MethodDelete,
		Path:        "/api/likes/{freetId}",
		Summary:     "Unlike freet",
		Description: "Removes the caller's like of a freet",
		Tags:        []string{"Likes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteLike)
}

// === DTOs ===

// CreateLikeInput wraps the like request for Huma.
type CreateLikeInput struct {
	Body FreetRefRequest
}

// CreateLikeResponse is returned after liking a freet.
type CreateLikeResponse struct {
	Message string       `json:"message" doc:"Human-readable summary"`
	Like    dto.LikeView `json:"like" doc:"The new like"`
}

// CreateLikeOutput wraps the like response for Huma.
type CreateLikeOutput struct {
	Body CreateLikeResponse
}

// === Handlers ===

func (s *Server) handleCreateLike(ctx context.Context, input *CreateLikeInput) (*CreateLikeOutput, error) {
	like, err := s.services.Like.Like(ctx, GetUserID(ctx), input.Body.FreetID)
	if err != nil {
		return nil, err
	}

	return &CreateLikeOutput{
		Body: CreateLikeResponse{
			Message: "Your like was added successfully.",
			Like:    like,
		},
	}, nil
}

func (s *Server) handleDeleteLike(ctx context.Context, input *FreetPathInput) (*MessageOutput, error) {
	if err := s.services.Like.Unlike(ctx, GetUserID(ctx), input.FreetID); err != nil {
		return nil, err
	}
	return message("Your like was deleted successfully."), nil
}
