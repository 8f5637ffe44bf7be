package store

import (
	"context"
	"fmt"
)

// Stats holds record counts for the social graph.
type Stats struct {
	Users     int `json:"users"`
	Bookmarks int `json:"bookmarks"`
	Tags      int `json:"tags"`
	Personas  int `json:"personas"`
	Follows   int `json:"follows"`
	Likes     int `json:"likes"`
}

// Stats counts every entity kind.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	counters := []struct {
		name  string
		count func(context.Context) (int, error)
		dest  *int
	}{
		{"users", s.Users.Count, &stats.Users},
		{"bookmarks", s.Bookmarks.Count, &stats.Bookmarks},
		{"tags", s.Tags.Count, &stats.Tags},
		{"personas", s.Personas.Count, &stats.Personas},
		{"follows", s.Follows.Count, &stats.Follows},
		{"likes", s.Likes.Count, &stats.Likes},
	}

	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dest = n
	}
	return stats, nil
}
