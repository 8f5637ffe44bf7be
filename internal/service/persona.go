package service

import (
	"context"
	"log/slog"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/dto"
	"github.com/fritterapp/fritter-server/internal/sse"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/validation"
)

// PersonaService orchestrates the named groups a user files follows under.
type PersonaService struct {
	store    *store.Store
	rules    *validation.Rules
	enricher *dto.Enricher
	events   EventEmitter
	logger   *slog.Logger
}

// NewPersonaService creates a new persona service.
func NewPersonaService(store *store.Store, rules *validation.Rules, enricher *dto.Enricher, events EventEmitter, logger *slog.Logger) *PersonaService {
	return &PersonaService{
		store:    store,
		rules:    rules,
		enricher: enricher,
		events:   events,
		logger:   logger,
	}
}

// ListPersonas returns the caller's personas in creation order.
func (s *PersonaService) ListPersonas(ctx context.Context, userID string) ([]dto.PersonaView, error) {
	if err := validation.Chain(ctx, s.rules.LoggedIn(userID)); err != nil {
		return nil, err
	}

	personas, err := s.store.ListPersonasByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}

	views, err := s.enricher.Personas(ctx, personas)
	if err != nil {
		return nil, storeError(err)
	}
	return views, nil
}

// GetPersona returns the caller's persona called name.
func (s *PersonaService) GetPersona(ctx context.Context, userID, name string) (dto.PersonaView, error) {
	var persona *domain.Persona
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.ValidPersonaName(name),
		s.rules.PersonaQueried(userID, name, &persona),
	); err != nil {
		return dto.PersonaView{}, err
	}

	view, err := s.enricher.Persona(ctx, persona)
	if err != nil {
		return dto.PersonaView{}, storeError(err)
	}
	return view, nil
}

// CreatePersona creates a persona called name for the caller.
func (s *PersonaService) CreatePersona(ctx context.Context, userID, name string) (dto.PersonaView, error) {
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.ValidPersonaName(name),
		s.rules.PersonaNameAvailable(userID, name),
	); err != nil {
		return dto.PersonaView{}, err
	}

	persona, err := s.store.CreatePersona(ctx, userID, name)
	if err != nil {
		return dto.PersonaView{}, storeError(err)
	}

	view := dto.NewPersonaView(persona, nil)
	s.events.Emit(sse.NewPersonaCreatedEvent(userID, view))

	s.logger.Info("persona created",
		"persona_id", persona.ID,
		"name", name,
		"user_id", userID,
	)
	return view, nil
}

// DeletePersona deletes the caller's persona called name, then moves every
// follow filed under it back to unclassified. The follows themselves are kept.
// It returns how many follows were ungrouped.
func (s *PersonaService) DeletePersona(ctx context.Context, userID, name string) (int, error) {
	var persona *domain.Persona
	if err := validation.Chain(ctx,
		s.rules.LoggedIn(userID),
		s.rules.ValidPersonaName(name),
		s.rules.PersonaExists(userID, name, &persona),
	); err != nil {
		return 0, err
	}

	if _, err := s.store.DeletePersona(ctx, userID, persona.ID); err != nil {
		return 0, storeError(err)
	}

	// Follows still pointing at the deleted persona already render as
	// unclassified, so a failure here leaves the graph readable.
	ungrouped, err := s.store.UngroupPersona(ctx, persona.ID)
	if err != nil {
		s.logger.Error("failed to ungroup follows of deleted persona",
			"persona_id", persona.ID,
			"user_id", userID,
			"error", err,
		)
		return 0, storeError(err)
	}

	s.events.Emit(sse.NewPersonaDeletedEvent(userID, persona.ID, persona.Name, ungrouped))

	s.logger.Info("persona deleted",
		"persona_id", persona.ID,
		"name", name,
		"user_id", userID,
		"ungrouped", ungrouped,
	)
	return ungrouped, nil
}
