package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fritterapp/fritter-server/internal/auth"
	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/store"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userIDKey is the context key for the authenticated user ID.
const userIDKey ctxKey = "userID"

// GetUserID returns the session user from ctx, or "" for anonymous requests.
// Services reject the empty id with "You must be logged in to do that."
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// sessionUser adapts GetUserID to sse.UserResolver.
func sessionUser(r *http.Request) (string, bool) {
	userID := GetUserID(r.Context())
	return userID, userID != ""
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// authMiddleware validates Bearer tokens and stores the user ID in context.
// Missing, invalid or expired tokens and tokens of deleted accounts all
// continue anonymously; operations that need a session reject them later.
func authMiddleware(tokens *auth.TokenService, users *store.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.VerifyAccessToken(token)
			if err != nil {
				logger.Debug("ignoring invalid access token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if _, err := users.GetUser(r.Context(), claims.UserID); err != nil {
				if !errors.Is(err, store.ErrUserNotFound) {
					logger.Warn("session user lookup failed", "user_id", claims.UserID, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setUserID(r.Context(), claims.UserID)))
		})
	}
}

// requireSession rejects anonymous requests on plain net/http routes with the
// same envelope huma handlers produce.
func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserID(r.Context()) == "" {
			writeError(w, domainerrors.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
