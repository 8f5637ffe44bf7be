package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/id"
)

// CreatePersona creates a persona called name for userID.
// Returns ErrPersonaExists if the user already has a persona with that name.
func (s *Store) CreatePersona(ctx context.Context, userID, name string) (*domain.Persona, error) {
	personaID, err := id.Generate(id.PrefixPersona)
	if err != nil {
		return nil, err
	}

	persona := &domain.Persona{
		CreatedAt: time.Now(),
		ID:        personaID,
		UserID:    userID,
		Name:      name,
	}

	err = s.Personas.Create(ctx, persona)
	if errors.Is(err, ErrAlreadyExists) {
		return nil, ErrPersonaExists
	}
	if err != nil {
		return nil, fmt.Errorf("create persona: %w", err)
	}
	return persona, nil
}

// GetPersona retrieves a persona by ID.
func (s *Store) GetPersona(ctx context.Context, personaID string) (*domain.Persona, error) {
	persona, err := s.Personas.Get(ctx, personaID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPersonaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get persona: %w", err)
	}
	return persona, nil
}

// GetPersonaByName retrieves userID's persona called name.
func (s *Store) GetPersonaByName(ctx context.Context, userID, name string) (*domain.Persona, error) {
	persona, err := s.Personas.GetByIndex(ctx, "user_name", pair(userID, name))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPersonaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get persona by name: %w", err)
	}
	return persona, nil
}

// ListPersonasByUser returns the user's personas in creation order.
func (s *Store) ListPersonasByUser(ctx context.Context, userID string) ([]*domain.Persona, error) {
	personas, err := s.Personas.ListByLookup(ctx, "user", userID)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	slices.SortFunc(personas, func(a, b *domain.Persona) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return personas, nil
}

// DeletePersona removes a persona owned by userID and returns it.
// Follows filed under the persona are left untouched; callers must follow up
// with UngroupPersona.
func (s *Store) DeletePersona(ctx context.Context, userID, personaID string) (*domain.Persona, error) {
	var deleted *domain.Persona
	err := s.update(ctx, func(txn *badger.Txn) error {
		persona, err := s.Personas.getTxn(txn, personaID)
		if err != nil {
			return err
		}
		if !persona.IsOwnedBy(userID) {
			return ErrNotFound
		}
		deleted, err = s.Personas.deleteTxn(txn, personaID)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPersonaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete persona: %w", err)
	}
	return deleted, nil
}

// DeletePersonasForUser removes every persona owned by userID.
func (s *Store) DeletePersonasForUser(ctx context.Context, userID string) (int, error) {
	var deleted int
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		deleted, err = s.deletePersonasForUserTxn(txn, userID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete personas for user: %w", err)
	}
	return deleted, nil
}

func (s *Store) deletePersonasForUserTxn(txn *badger.Txn, userID string) (int, error) {
	ids := s.Personas.idsByLookupTxn(txn, "user", userID)
	for _, personaID := range ids {
		if _, err := s.Personas.deleteTxn(txn, personaID); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return len(ids), nil
}
