package service

import (
	"context"
	"fmt"

	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
)

// Stats is a snapshot of record counts across both stores.
type Stats struct {
	store.Stats
	Freets int `json:"freets"`
}

// StatsService reports record counts for operators.
type StatsService struct {
	store  *store.Store
	freets *sqlite.Store
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, freets *sqlite.Store) *StatsService {
	return &StatsService{store: store, freets: freets}
}

// Stats counts every entity kind.
func (s *StatsService) Stats(ctx context.Context) (*Stats, error) {
	graph, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph stats: %w", err)
	}
	freets, err := s.freets.CountFreets(ctx)
	if err != nil {
		return nil, fmt.Errorf("freet stats: %w", err)
	}
	return &Stats{Stats: *graph, Freets: freets}, nil
}
