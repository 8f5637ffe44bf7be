package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/dto"
)

// alice files bob under "family", deletes the persona, and bob's follow is
// left unclassified.
func TestScenario_DeletingPersonaUngroupsFollows(t *testing.T) {
	ts := setupTestServer(t, Options{})
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")

	resp := ts.client.Post("/api/personas", alice.auth(), map[string]string{"name": "family"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	family := decode[CreatePersonaResponse](t, resp).Data.Persona

	resp = ts.client.Post("/api/follows", alice.auth(), map[string]string{"friendId": bob.ID, "name": "family"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[FollowResponse](t, resp).Data
	assert.Equal(t, family.ID, created.Follow.PersonaID)
	assert.Equal(t, "Your follow to "+bob.ID+" under persona, family, was created successfully.", created.Message)

	resp = ts.client.Delete("/api/personas/family", alice.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 1, decode[DeletePersonaResponse](t, resp).Data.Ungrouped)

	resp = ts.client.Get("/api/follows?account="+alice.ID, alice.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The persona fields are omitted, not null or empty.
	var raw testEnvelope[[]map[string]json.RawMessage]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	require.Len(t, raw.Data, 1)
	assert.Equal(t, `"`+bob.ID+`"`, string(raw.Data[0]["friendId"]))
	assert.NotContains(t, raw.Data[0], "personaId")
	assert.NotContains(t, raw.Data[0], "personaName")
}

// alice bookmarks F1, tags it "recipe", cannot tag it twice, removes the tag
// and cannot remove it again.
func TestScenario_TagLifecycle(t *testing.T) {
	ts := setupTestServer(t, Options{})
	author := ts.signUp(t, "author")
	alice := ts.signUp(t, "alice")
	f1 := ts.postFreet(t, author, "pasta with lemon")

	resp := ts.client.Post("/api/bookmarks", alice.auth(), map[string]string{"freetId": f1})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.client.Post("/api/bookmarks/"+f1+"/tags", alice.auth(), map[string]string{"tag": "recipe"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "recipe", decode[CreateTagResponse](t, resp).Data.Tag.Name)

	resp = ts.client.Post("/api/bookmarks/"+f1+"/tags", alice.auth(), map[string]string{"tag": "recipe"})
	requireError(t, resp, http.StatusForbidden, "ALREADY_EXISTS")

	resp = ts.client.Delete("/api/bookmarks/"+f1+"/tags/recipe", alice.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Your tag was deleted successfully.", decode[MessageResponse](t, resp).Data.Message)

	resp = ts.client.Delete("/api/bookmarks/"+f1+"/tags/recipe", alice.auth())
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestScenario_FilterByMissingTagIsEmpty(t *testing.T) {
	ts := setupTestServer(t, Options{})
	author := ts.signUp(t, "author")
	alice := ts.signUp(t, "alice")
	f1 := ts.postFreet(t, author, "hello")

	resp := ts.client.Post("/api/bookmarks", alice.auth(), map[string]string{"freetId": f1})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.client.Get("/api/bookmarks?tag=missing", alice.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[[]dto.BookmarkView](t, resp)
	assert.True(t, env.Success)
	require.NotNil(t, env.Data)
	assert.Empty(t, env.Data)
	assert.Contains(t, resp.Body.String(), `"data":[]`)
}
