package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fritterapp/fritter-server/internal/backup/stream"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
)

// BackupService manages backup creation and listing.
type BackupService struct {
	graph     *store.Store
	freets    *sqlite.Store
	backupDir string
	logger    *slog.Logger
}

// NewBackupService creates a BackupService.
func NewBackupService(graph *store.Store, freets *sqlite.Store, backupDir string, logger *slog.Logger) *BackupService {
	return &BackupService{
		graph:     graph,
		freets:    freets,
		backupDir: backupDir,
		logger:    logger,
	}
}

// Create writes a new backup archive holding a graph snapshot, every freet
// and a manifest with entity counts.
func (s *BackupService) Create(ctx context.Context, opts BackupOptions) (*BackupResult, error) {
	start := time.Now()

	if err := os.MkdirAll(s.backupDir, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		timestamp := start.Format("2006-01-02-150405")
		outputPath = filepath.Join(s.backupDir, "backup-"+timestamp+fileSuffix)
	}

	s.logger.Info("creating backup", "output", outputPath)

	stats, err := s.graph.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("count graph: %w", err)
	}

	// Write to a temp file so a failed backup never leaves a partial archive.
	tmpPath := outputPath + ".tmp"
	manifest, err := s.writeArchive(ctx, tmpPath, *stats)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("finalize backup: %w", err)
	}

	size, checksum, err := fileChecksum(outputPath)
	if err != nil {
		return nil, err
	}

	result := &BackupResult{
		Path:     outputPath,
		Size:     size,
		Counts:   manifest.Counts,
		Duration: time.Since(start),
		Checksum: checksum,
	}

	s.logger.Info("backup complete",
		"path", result.Path,
		"size", result.Size,
		"duration", result.Duration,
		"checksum", result.Checksum)

	return result, nil
}

func (s *BackupService) writeArchive(ctx context.Context, path string, stats store.Stats) (*Manifest, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	gw, err := zw.Create(graphFile)
	if err != nil {
		return nil, fmt.Errorf("create graph entry: %w", err)
	}
	version, err := s.graph.Backup(gw)
	if err != nil {
		return nil, err
	}

	fw, err := stream.NewWriter(zw, freetsFile)
	if err != nil {
		return nil, fmt.Errorf("create freets entry: %w", err)
	}
	for freet, err := range s.freets.AllFreets(ctx) {
		if err != nil {
			return nil, err
		}
		if err := fw.Write(freet); err != nil {
			return nil, fmt.Errorf("write freet %s: %w", freet.ID, err)
		}
	}

	manifest := &Manifest{
		Version:      FormatVersion,
		CreatedAt:    time.Now().UTC(),
		GraphVersion: version,
		Counts: EntityCounts{
			Stats:  stats,
			Freets: fw.Count(),
		},
	}

	mw, err := zw.Create(manifestFile)
	if err != nil {
		return nil, fmt.Errorf("create manifest entry: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync backup file: %w", err)
	}
	return manifest, nil
}

func fileChecksum(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return 0, "", fmt.Errorf("checksum backup: %w", err)
	}
	return size, hex.EncodeToString(h.Sum(nil)), nil
}

// List returns all available backups, newest first.
func (s *BackupService) List(ctx context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			ID:        strings.TrimSuffix(entry.Name(), fileSuffix),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	slices.SortFunc(backups, func(a, b BackupInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return backups, nil
}

// Get returns a backup by ID.
func (s *BackupService) Get(ctx context.Context, id string) (*BackupInfo, error) {
	path := s.GetPath(id)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &BackupInfo{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a backup.
func (s *BackupService) Delete(ctx context.Context, id string) error {
	path := s.GetPath(id)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}

	return os.Remove(path)
}

// GetPath returns the file path for a backup ID.
func (s *BackupService) GetPath(id string) string {
	return filepath.Join(s.backupDir, filepath.Base(id)+fileSuffix)
}
