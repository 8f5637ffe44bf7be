package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/dto"
)

func (s *Server) registerFollowRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFollows",
		Method:      http.MethodGet,
		Path:        "/api/follows",
		Summary:     "List follows",
		Description: "Returns an account's follows, newest first, optionally only those under one of its personas",
		Tags:        []string{"Follows"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFollows)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createFollow",
		Method:        http.MethodPost,
		Path:          "/api/follows",
		Summary:       "Follow user",
		Description:   "Follows a user, optionally filed under one of the caller's personas",
		Tags:          []string{"Follows"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFollow",
		Method:      http.MethodDelete,
		Path:        "/api/follows/{friendId}",
		Summary:     "Unfollow user",
		Description: "Stops following a user",
		Tags:        []string{"Follows"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateFollow",
		Method:      http.MethodPatch,
		Path:        "/api/follows/{friendId}",
		Summary:     "Reclassify follow",
		Description: "Moves a follow under another persona, or leaves it unclassified when no name is given",
		Tags:        []string{"Follows"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateFollow)
}

// === DTOs ===

// ListFollowsInput selects whose follows are listed.
type ListFollowsInput struct {
	Account string `query:"account" doc:"User ID whose follows are listed"`
	Name    string `query:"name" doc:"Only follows under this persona of the account"`

	hasName bool
}

// Resolve records whether the name parameter was sent at all.
func (i *ListFollowsInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.hasName = u.Query().Has("name")
	return nil
}

// ListFollowsOutput wraps a follow list for Huma.
type ListFollowsOutput struct {
	Body []dto.FollowView
}

// CreateFollowRequest is the request body for following a user.
type CreateFollowRequest struct {
	FriendID string  `json:"friendId,omitempty" doc:"User ID to follow"`
	Name     *string `json:"name,omitempty" doc:"Persona to file the follow under"`
}

// CreateFollowInput wraps the create follow request for Huma.
type CreateFollowInput struct {
	Body CreateFollowRequest
}

// FollowResponse is returned after creating or reclassifying a follow.
type FollowResponse struct {
	Message string         `json:"message" doc:"Human-readable summary"`
	Follow  dto.FollowView `json:"follow" doc:"The follow"`
}

// FollowOutput wraps a follow response for Huma.
type FollowOutput struct {
	Body FollowResponse
}

// FriendPathInput addresses a follow by the followed user.
type FriendPathInput struct {
	FriendID string `path:"friendId" doc:"Followed user ID"`
}

// UpdateFollowRequest is the request body for reclassifying a follow.
type UpdateFollowRequest struct {
	Name *string `json:"name,omitempty" doc:"Persona to file the follow under; omit to unclassify"`
}

// UpdateFollowInput wraps the reclassify request for Huma.
type UpdateFollowInput struct {
	FriendID string               `path:"friendId" doc:"Followed user ID"`
	Body     *UpdateFollowRequest `required:"false"`
}

// === Handlers ===

func (s *Server) handleListFollows(ctx context.Context, input *ListFollowsInput) (*ListFollowsOutput, error) {
	var name *string
	if input.hasName {
		name = &input.Name
	}

	follows, err := s.services.Follow.ListFollows(ctx, GetUserID(ctx), input.Account, name)
	if err != nil {
		return nil, err
	}
	return &ListFollowsOutput{Body: follows}, nil
}

func (s *Server) handleCreateFollow(ctx context.Context, input *CreateFollowInput) (*FollowOutput, error) {
	follow, err := s.services.Follow.Follow(ctx, GetUserID(ctx), input.Body.FriendID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your follow to %s was created successfully.", input.Body.FriendID)
	if follow.PersonaName != "" {
		msg = fmt.Sprintf("Your follow to %s under persona, %s, was created successfully.", input.Body.FriendID, follow.PersonaName)
	}

	return &FollowOutput{Body: FollowResponse{Message: msg, Follow: follow}}, nil
}

func (s *Server) handleDeleteFollow(ctx context.Context, input *FriendPathInput) (*MessageOutput, error) {
	if err := s.services.Follow.Unfollow(ctx, GetUserID(ctx), input.FriendID); err != nil {
		return nil, err
	}
	return message(fmt.Sprintf("Your follow to %s was deleted successfully.", input.FriendID)), nil
}

func (s *Server) handleUpdateFollow(ctx context.Context, input *UpdateFollowInput) (*FollowOutput, error) {
	var name *string
	if input.Body != nil {
		name = input.Body.Name
	}

	follow, err := s.services.Follow.Reclassify(ctx, GetUserID(ctx), input.FriendID, name)
	if err != nil {
		return nil, err
	}

	return &FollowOutput{
		Body: FollowResponse{
			Message: fmt.Sprintf("Your follow to %s was updated successfully.", input.FriendID),
			Follow:  follow,
		},
	}, nil
}
