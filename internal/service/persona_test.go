package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/sse"
)

// Persona "family", follow bob under it, delete it, bob's follow is unclassified.
func TestPersonaService_FamilyScenario(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	family, err := env.personas.CreatePersona(ctx, alice, "family")
	require.NoError(t, err)

	follow, err := env.follows.Follow(ctx, alice, bob, ptr("family"))
	require.NoError(t, err)
	assert.Equal(t, family.ID, follow.PersonaID)
	assert.Equal(t, "family", follow.PersonaName)

	before, err := env.follows.ListFollows(ctx, alice, alice, nil)
	require.NoError(t, err)

	ungrouped, err := env.personas.DeletePersona(ctx, alice, "family")
	require.NoError(t, err)
	assert.Equal(t, 1, ungrouped)

	after, err := env.follows.ListFollows(ctx, alice, alice, nil)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	assert.Equal(t, bob, after[0].FriendID)
	assert.Empty(t, after[0].PersonaID)
	assert.Empty(t, after[0].PersonaName)

	deleted := env.events.ofType(sse.EventPersonaDeleted)
	require.Len(t, deleted, 1)
	data, ok := deleted[0].Data.(sse.PersonaDeletedEventData)
	require.True(t, ok)
	assert.Equal(t, 1, data.Ungrouped)
}

func TestPersonaService_DeleteKeepsOtherPersonas(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	_, err := env.personas.CreatePersona(ctx, alice, "family")
	require.NoError(t, err)
	work, err := env.personas.CreatePersona(ctx, alice, "work")
	require.NoError(t, err)

	_, err = env.follows.Follow(ctx, alice, bob, ptr("family"))
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, alice, carol, ptr("work"))
	require.NoError(t, err)

	_, err = env.personas.DeletePersona(ctx, alice, "family")
	require.NoError(t, err)

	got, err := env.personas.GetPersona(ctx, alice, "work")
	require.NoError(t, err)
	assert.Equal(t, work.ID, got.ID)
	assert.Equal(t, []string{carol}, got.Follows)

	list, err := env.personas.ListPersonas(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "work", list[0].Name)
}

func TestPersonaService_NamesUniquePerUser(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	_, err := env.personas.CreatePersona(ctx, alice, "family")
	require.NoError(t, err)

	_, err = env.personas.CreatePersona(ctx, alice, "family")
	assert.Equal(t, domainerrors.CodeAlreadyExists, codeOf(t, err))

	_, err = env.personas.CreatePersona(ctx, bob, "family")
	require.NoError(t, err)
}

func TestPersonaService_MissingPersona(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.personas.GetPersona(ctx, alice, "ghost")
	assert.Equal(t, domainerrors.CodeForbidden, codeOf(t, err))

	_, err = env.personas.DeletePersona(ctx, alice, "ghost")
	assert.Equal(t, domainerrors.CodeForbidden, codeOf(t, err))
}

func TestPersonaService_RejectsBadNames(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	for _, name := range []string{"", strings.Repeat("n", 31)} {
		_, err := env.personas.CreatePersona(ctx, alice, name)
		assert.Equal(t, domainerrors.CodeValidation, codeOf(t, err), "name %q", name)
	}

	_, err := env.personas.CreatePersona(ctx, alice, strings.Repeat("n", 30))
	require.NoError(t, err)
}

func TestPersonaService_RequiresLogin(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.personas.ListPersonas(context.Background(), "")
	assert.Equal(t, domainerrors.CodeUnauthorized, codeOf(t, err))
}
