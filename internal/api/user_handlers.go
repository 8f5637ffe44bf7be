package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/dto"
	"github.com/fritterapp/fritter-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "registerUser",
		Method:        http.MethodPost,
		Path:          "/api/users",
		Summary:       "Register",
		Description:   "Creates a new account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "createSession",
		Method:      http.MethodPost,
		Path:        "/api/users/session",
		Summary:     "Sign in",
		Description: "Checks credentials and returns a PASETO access token",
		Tags:        []string{"Users"},
		Middlewares: huma.Middlewares{s.loginRateLimit},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/users/me",
		Summary:     "Get current user",
		Description: "Returns the signed in account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCurrentUser",
		Method:      http.MethodDelete,
		Path:        "/api/users",
		Summary:     "Delete account",
		Description: "Deletes the signed in account with its freets, bookmarks, tags, personas, follows and likes",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCurrentUser)
}

// === DTOs ===

// CredentialsRequest is the body of registration and sign in.
type CredentialsRequest struct {
	Username string `json:"username,omitempty" doc:"Username, 1 to 30 characters without spaces"`
	Password string `json:"password,omitempty" doc:"Password, at least 8 characters"`
}

// CredentialsInput wraps a credentials body for Huma.
type CredentialsInput struct {
	Body CredentialsRequest
}

// RegisterResponse is returned after registration.
type RegisterResponse struct {
	Message string       `json:"message" doc:"Human-readable summary"`
	User    dto.UserView `json:"user" doc:"The new account"`
}

// RegisterOutput wraps the registration response for Huma.
type RegisterOutput struct {
	Body RegisterResponse
}

// LoginOutput wraps the sign in response for Huma.
type LoginOutput struct {
	Body *service.AuthResponse
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body dto.UserView
}

// DeleteUserResponse reports what an account deletion removed.
type DeleteUserResponse struct {
	Message string                    `json:"message" doc:"Human-readable summary"`
	Deleted *service.DeleteUserResult `json:"deleted" doc:"Counts of removed records"`
}

// DeleteUserOutput wraps the delete account response for Huma.
type DeleteUserOutput struct {
	Body DeleteUserResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *CredentialsInput) (*RegisterOutput, error) {
	user, err := s.services.User.Register(ctx, service.RegisterRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{
		Body: RegisterResponse{
			Message: "Your account was created successfully.",
			User:    user,
		},
	}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *CredentialsInput) (*LoginOutput, error) {
	resp, err := s.services.User.Login(ctx, service.LoginRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: resp}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := s.services.User.Me(ctx, GetUserID(ctx))
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleDeleteCurrentUser(ctx context.Context, _ *struct{}) (*DeleteUserOutput, error) {
	result, err := s.services.User.DeleteUser(ctx, GetUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &DeleteUserOutput{
		Body: DeleteUserResponse{
			Message: "Your account was deleted successfully.",
			Deleted: result,
		},
	}, nil
}
