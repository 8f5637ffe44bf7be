package dto_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/dto"
	"github.com/fritterapp/fritter-server/internal/store"
)

type fakeStore struct {
	users        map[string]*domain.User
	personas     map[string]*domain.Persona
	tags         map[string][]*domain.Tag
	userBatches  int
	personaCalls int
}

func (f *fakeStore) GetUsersByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	f.userBatches++
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPersona(_ context.Context, id string) (*domain.Persona, error) {
	f.personaCalls++
	if p, ok := f.personas[id]; ok {
		return p, nil
	}
	return nil, store.ErrPersonaNotFound
}

func (f *fakeStore) ListTagsByBookmark(_ context.Context, bookmarkID string) ([]*domain.Tag, error) {
	return f.tags[bookmarkID], nil
}

func (f *fakeStore) ListFollowsByPersona(context.Context, string) ([]*domain.Follow, error) {
	return nil, nil
}

func TestEnricher_Follows_BatchesLookups(t *testing.T) {
	fs := &fakeStore{
		users: map[string]*domain.User{
			"user-b": {ID: "user-b", Username: "bob"},
			"user-c": {ID: "user-c", Username: "carol"},
		},
		personas: map[string]*domain.Persona{
			"persona-1": {ID: "persona-1", Name: "family"},
		},
	}
	e := dto.NewEnricher(fs)

	follows := []*domain.Follow{
		{ID: "f1", FriendID: "user-b", PersonaID: "persona-1"},
		{ID: "f2", FriendID: "user-c", PersonaID: "persona-1"},
		{ID: "f3", FriendID: "user-d", PersonaID: "persona-deleted"},
	}

	views, err := e.Follows(context.Background(), follows)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, "bob", views[0].FriendUsername)
	assert.Equal(t, "family", views[0].PersonaName)
	assert.Equal(t, "carol", views[1].FriendUsername)
	assert.Empty(t, views[2].FriendUsername)
	assert.Empty(t, views[2].PersonaID, "dangling persona renders unclassified")

	assert.Equal(t, 1, fs.userBatches)
	assert.Equal(t, 2, fs.personaCalls, "each persona id is fetched once")
}

func TestEnricher_Bookmarks(t *testing.T) {
	fs := &fakeStore{
		tags: map[string][]*domain.Tag{
			"b1": {{Name: "recipe"}},
		},
	}
	e := dto.NewEnricher(fs)

	views, err := e.Bookmarks(context.Background(), []*domain.Bookmark{{ID: "b1"}, {ID: "b2"}})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, []string{"recipe"}, views[0].Tags)
	assert.Empty(t, views[1].Tags)
}

func TestEnricher_EmptyInput(t *testing.T) {
	fs := &fakeStore{}
	e := dto.NewEnricher(fs)

	views, err := e.Follows(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
	assert.Zero(t, fs.userBatches)
}
