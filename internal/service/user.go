package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fritterapp/fritter-server/internal/auth"
	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/dto"
	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/id"
	"github.com/fritterapp/fritter-server/internal/sse"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
	"github.com/fritterapp/fritter-server/internal/validation"
)

const msgInvalidLogin = "invalid username or password"

// RegisterRequest contains the data needed to open an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned on a successful login.
type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int          `json:"expiresIn"`
	User        dto.UserView `json:"user"`
}

// DeleteUserResult counts everything removed with an account.
type DeleteUserResult struct {
	store.CascadeResult
	Freets int `json:"freets"`
}

// UserSummary is an account with its follow counts.
type UserSummary struct {
	dto.UserView
	Following int `json:"following"`
	Followers int `json:"followers"`
}

// accountGraph is the part of the graph store that account deletion writes.
type accountGraph interface {
	CascadeDeleteFreet(ctx context.Context, freetID string) (bookmarks, likes int, err error)
	CascadeDeleteUser(ctx context.Context, userID string) (*store.CascadeResult, error)
}

// UserService handles accounts: registration, login and deletion.
type UserService struct {
	store     *store.Store
	graph     accountGraph
	freets    *sqlite.Store
	rules     *validation.Rules
	validator *validation.Validator
	tokens    *auth.TokenService
	events    EventEmitter
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	store *store.Store,
	freets *sqlite.Store,
	rules *validation.Rules,
	validator *validation.Validator,
	tokens *auth.TokenService,
	events EventEmitter,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		store:     store,
		graph:     store,
		freets:    freets,
		rules:     rules,
		validator: validator,
		tokens:    tokens,
		events:    events,
		logger:    logger,
	}
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (dto.UserView, error) {
	if err := s.validator.Validate(req); err != nil {
		return dto.UserView{}, err
	}
	if err := validation.Chain(ctx,
		s.rules.ValidUsername(req.Username),
		s.rules.UsernameAvailable(req.Username),
	); err != nil {
		return dto.UserView{}, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return dto.UserView{}, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return dto.UserView{}, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		CreatedAt:    time.Now(),
		ID:           userID,
		Username:     req.Username,
		PasswordHash: passwordHash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return dto.UserView{}, storeError(err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"username", user.Username,
	)
	return dto.NewUserView(user), nil
}

// Login checks credentials and issues an access token.
// Unknown usernames and wrong passwords fail the same way.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, domainerrors.InvalidCredentials(msgInvalidLogin)
	}
	if err != nil {
		return nil, storeError(err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials(msgInvalidLogin)
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.AccessTokenDuration().Seconds()),
		User:        dto.NewUserView(user),
	}, nil
}

// Me returns the caller's account.
func (s *UserService) Me(ctx context.Context, userID string) (dto.UserView, error) {
	var user *domain.User
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.UserExists(userID, &user),
	); err != nil {
		return dto.UserView{}, err
	}
	return dto.NewUserView(user), nil
}

// DeleteUser removes the caller's account together with its freets and
// everything in the graph that references the account or those freets.
func (s *UserService) DeleteUser(ctx context.Context, userID string) (*DeleteUserResult, error) {
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.UserExists(userID, nil),
	); err != nil {
		return nil, err
	}

	// Captured before the cascade removes the edges.
	following, err := s.store.ListFollowsByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}

	// The graph goes first: until CascadeDeleteUser commits, a failure leaves
	// the account and its freets in place.
	authored, err := s.freets.ListFreetsByAuthor(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	cascaded := make(map[string]bool, len(authored))
	for _, f := range authored {
		if err := s.cascadeFreet(ctx, userID, f.ID); err != nil {
			return nil, err
		}
		cascaded[f.ID] = true
	}

	cascade, err := s.graph.CascadeDeleteUser(ctx, userID)
	if err != nil {
		s.logger.Error("account cascade failed",
			"user_id", userID,
			"error", err,
		)
		return nil, storeError(err)
	}

	freetIDs, err := s.freets.DeleteFreetsByAuthor(ctx, userID)
	if err != nil {
		s.logger.Error("freets left behind by deleted account",
			"user_id", userID,
			"freets", len(authored),
			"error", err,
		)
		return nil, storeError(err)
	}
	// Freets published while the graph was being cleared.
	for _, freetID := range freetIDs {
		if !cascaded[freetID] {
			if err := s.cascadeFreet(ctx, userID, freetID); err != nil {
				return nil, err
			}
		}
	}

	for _, f := range following {
		s.events.Emit(sse.NewFollowerLostEvent(f.FriendID, userID))
	}
	if d, ok := s.events.(userDisconnector); ok {
		d.DisconnectUser(userID)
	}

	result := &DeleteUserResult{CascadeResult: *cascade, Freets: len(freetIDs)}
	s.logger.Info("user deleted",
		"user_id", userID,
		"freets", result.Freets,
		"bookmarks", result.Bookmarks,
		"personas", result.Personas,
		"follows", result.Follows,
		"likes", result.Likes,
	)
	return result, nil
}

func (s *UserService) cascadeFreet(ctx context.Context, userID, freetID string) error {
	if _, _, err := s.graph.CascadeDeleteFreet(ctx, freetID); err != nil {
		s.logger.Error("freet cascade failed during account deletion",
			"user_id", userID,
			"freet_id", freetID,
			"error", err,
		)
		return storeError(err)
	}
	return nil
}

// DeleteUserByUsername runs DeleteUser for the account called username.
func (s *UserService) DeleteUserByUsername(ctx context.Context, username string) (*DeleteUserResult, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundf("No user with username, %s, exists.", username)
		}
		return nil, storeError(err)
	}
	return s.DeleteUser(ctx, user.ID)
}

// ListUsers returns every account with its follow counts.
func (s *UserService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		following, followers, err := s.store.CountFollows(ctx, u.ID)
		if err != nil {
			return nil, storeError(err)
		}
		summaries = append(summaries, UserSummary{
			UserView:  dto.NewUserView(u),
			Following: following,
			Followers: followers,
		})
	}
	return summaries, nil
}
