package backup

import "time"

// BackupOptions configures backup creation.
type BackupOptions struct {
	OutputPath string // Where to write the backup file
}

// BackupResult describes a finished backup.
type BackupResult struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Counts   EntityCounts  `json:"counts"`
	Duration time.Duration `json:"duration"`
	Checksum string        `json:"checksum"`
}

// BackupInfo describes a backup archive on disk.
type BackupInfo struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// RestoreOptions configures restoration.
type RestoreOptions struct {
	DryRun bool // Validate without writing
}

// RestoreResult describes a finished restore.
type RestoreResult struct {
	Manifest *Manifest     `json:"manifest"`
	Freets   int           `json:"freets"`
	Skipped  int           `json:"skipped"`
	Counts   EntityCounts  `json:"counts"`
	Duration time.Duration `json:"duration"`
}
