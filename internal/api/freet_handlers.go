package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/dto"
)

func (s *Server) registerFreetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createFreet",
		Method:        http.MethodPost,
		Path:          "/api/freets",
		Summary:       "Create freet",
		Description:   "Posts a freet of 1 to 140 characters",
		Tags:          []string{"Freets"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFreet)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFreets",
		Method:      http.MethodGet,
		Path:        "/api/freets",
		Summary:     "List freets",
		Description: "Returns an author's freets, newest first",
		Tags:        []string{"Freets"},
	}, s.handleListFreets)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFreet",
		Method:      http.MethodGet,
		Path:        "/api/freets/{freetId}",
		Summary:     "Get freet",
		Description: "Returns a freet with its like count",
		Tags:        []string{"Freets"},
	}, s.handleGetFreet)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFreet",
		Method:      http.MethodDelete,
		Path:        "/api/freets/{freetId}",
		Summary:     "Delete freet",
		Description: "Deletes one of the caller's freets and every bookmark, tag and like on it",
		Tags:        []string{"Freets"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteFreet)
}

// === DTOs ===

// CreateFreetRequest is the request body for posting a freet.
type CreateFreetRequest struct {
	Content string `json:"content,omitempty" doc:"Freet text"`
}

// CreateFreetInput wraps the create freet request for Huma.
type CreateFreetInput struct {
	Body CreateFreetRequest
}

// CreateFreetResponse is returned after posting a freet.
type CreateFreetResponse struct {
	Message string        `json:"message" doc:"Human-readable summary"`
	Freet   dto.FreetView `json:"freet" doc:"The new freet"`
}

// CreateFreetOutput wraps the create freet response for Huma.
type CreateFreetOutput struct {
	Body CreateFreetResponse
}

// ListFreetsInput selects the author whose freets are listed.
type ListFreetsInput struct {
	Author string `query:"author" doc:"Author user ID"`
}

// ListFreetsOutput wraps a freet list for Huma.
type ListFreetsOutput struct {
	Body []dto.FreetView
}

// FreetPathInput addresses a single freet.
type FreetPathInput struct {
	FreetID string `path:"freetId" doc:"Freet ID"`
}

// FreetOutput wraps a freet for Huma.
type FreetOutput struct {
	Body dto.FreetView
}

// === Handlers ===

func (s *Server) handleCreateFreet(ctx context.Context, input *CreateFreetInput) (*CreateFreetOutput, error) {
	freet, err := s.services.Freet.CreateFreet(ctx, GetUserID(ctx), input.Body.Content)
	if err != nil {
		return nil, err
	}

	return &CreateFreetOutput{
		Body: CreateFreetResponse{
			Message: "Your freet was created successfully.",
			Freet:   freet,
		},
	}, nil
}

func (s *Server) handleListFreets(ctx context.Context, input *ListFreetsInput) (*ListFreetsOutput, error) {
	freets, err := s.services.Freet.ListFreets(ctx, input.Author)
	if err != nil {
		return nil, err
	}
	return &ListFreetsOutput{Body: freets}, nil
}

func (s *Server) handleGetFreet(ctx context.Context, input *FreetPathInput) (*FreetOutput, error) {
	freet, err := s.services.Freet.GetFreet(ctx, input.FreetID)
	if err != nil {
		return nil, err
	}
	return &FreetOutput{Body: freet}, nil
}

func (s *Server) handleDeleteFreet(ctx context.Context, input *FreetPathInput) (*MessageOutput, error) {
	if err := s.services.Freet.DeleteFreet(ctx, GetUserID(ctx), input.FreetID); err != nil {
		return nil, err
	}
	return message("Your freet was deleted successfully."), nil
}
