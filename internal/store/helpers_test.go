package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/id"
	"github.com/fritterapp/fritter-server/internal/store"
)

func createTestUser(t *testing.T, s *store.Store, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		CreatedAt: time.Now(),
		ID:        id.MustGenerate(id.PrefixUser),
		Username:  username,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}
