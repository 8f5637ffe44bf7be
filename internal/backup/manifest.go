package backup

import (
	"time"

	"github.com/fritterapp/fritter-server/internal/store"
)

// FormatVersion is the backup format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Archive entry names.
const (
	manifestFile = "manifest.json"
	graphFile    = "graph.badger"
	freetsFile   = "entities/freets.jsonl"
)

// fileSuffix marks backup archives inside the backup directory.
const fileSuffix = ".fritter.zip"

// Manifest describes backup contents and metadata.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// GraphVersion is the badger version the graph snapshot was taken at.
	GraphVersion uint64 `json:"graph_version"`

	Counts EntityCounts `json:"counts"`
}

// EntityCounts tracks entity counts for validation and progress reporting.
type EntityCounts struct {
	store.Stats
	Freets int `json:"freets"`
}
