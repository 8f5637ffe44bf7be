package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/dto"
)

func (s *Server) registerPersonaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPersonas",
		Method:      http.MethodGet,
		Path:        "/api/personas",
		Summary:     "List personas",
		Description: "Returns the caller's personas in creation order, or the one named by ?name",
		Tags:        []string{"Personas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPersonas)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPersona",
		Method:        http.MethodPost,
		Path:          "/api/personas",
		Summary:       "Create persona",
		Description:   "Creates a named group for the caller's follows",
		Tags:          []string{"Personas"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePersona)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePersona",
		Method:      http.MethodDelete,
		Path:        "/api/personas/{name}",
		Summary:     "Delete persona",
		Description: "Deletes a persona. Follows filed under it become unclassified",
		Tags:        []string{"Personas"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePersona)
}

// === DTOs ===

// ListPersonasInput optionally selects a single persona by name.
type ListPersonasInput struct {
	Name string `query:"name" doc:"Persona name"`

	hasName bool
}

// Resolve records whether the name parameter was sent at all.
func (i *ListPersonasInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.hasName = u.Query().Has("name")
	return nil
}

// ListPersonasOutput wraps either a persona list or, with ?name, one persona.
type ListPersonasOutput struct {
	Body any
}

// PersonaRequest is the request body for creating a persona.
type PersonaRequest struct {
	Name string `json:"name,omitempty" doc:"Persona name, 1 to 30 characters"`
}

// CreatePersonaInput wraps the create persona request for Huma.
type CreatePersonaInput struct {
	Body PersonaRequest
}

// CreatePersonaResponse is returned after creating a persona.
type CreatePersonaResponse struct {
	Message string          `json:"message" doc:"Human-readable summary"`
	Persona dto.PersonaView `json:"persona" doc:"The new persona"`
}

// CreatePersonaOutput wraps the create persona response for Huma.
type CreatePersonaOutput struct {
	Body CreatePersonaResponse
}

// DeletePersonaInput addresses a persona by name.
type DeletePersonaInput struct {
	Name string `path:"name" doc:"Persona name"`
}

// DeletePersonaResponse reports how many follows lost their persona.
type DeletePersonaResponse struct {
	Message   string `json:"message" doc:"Human-readable summary"`
	Ungrouped int    `json:"ungrouped" doc:"Follows left unclassified"`
}

// DeletePersonaOutput wraps the delete persona response for Huma.
type DeletePersonaOutput struct {
	Body DeletePersonaResponse
}

// === Handlers ===

func (s *Server) handleListPersonas(ctx context.Context, input *ListPersonasInput) (*ListPersonasOutput, error) {
	userID := GetUserID(ctx)

	if input.hasName {
		persona, err := s.services.Persona.GetPersona(ctx, userID, input.Name)
		if err != nil {
			return nil, err
		}
		return &ListPersonasOutput{Body: persona}, nil
	}

	personas, err := s.services.Persona.ListPersonas(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListPersonasOutput{Body: personas}, nil
}

func (s *Server) handleCreatePersona(ctx context.Context, input *CreatePersonaInput) (*CreatePersonaOutput, error) {
	persona, err := s.services.Persona.CreatePersona(ctx, GetUserID(ctx), input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &CreatePersonaOutput{
		Body: CreatePersonaResponse{
			Message: "Your persona was created successfully.",
			Persona: persona,
		},
	}, nil
}

func (s *Server) handleDeletePersona(ctx context.Context, input *DeletePersonaInput) (*DeletePersonaOutput, error) {
	ungrouped, err := s.services.Persona.DeletePersona(ctx, GetUserID(ctx), input.Name)
	if err != nil {
		return nil, err
	}

	return &DeletePersonaOutput{
		Body: DeletePersonaResponse{
			Message:   "Your persona was deleted successfully.",
			Ungrouped: ungrouped,
		},
	}, nil
}
