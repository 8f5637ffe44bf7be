package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fritterapp/fritter-server/internal/backup/stream"
	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
)

// RestoreService restores from backups.
type RestoreService struct {
	graph  *store.Store
	freets *sqlite.Store
	logger *slog.Logger
}

// NewRestoreService creates a RestoreService.
func NewRestoreService(graph *store.Store, freets *sqlite.Store, logger *slog.Logger) *RestoreService {
	return &RestoreService{
		graph:  graph,
		freets: freets,
		logger: logger,
	}
}

// Validate opens a backup and checks its manifest without importing.
func (s *RestoreService) Validate(ctx context.Context, path string) (*Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer zr.Close()

	return readManifest(&zr.Reader)
}

func readManifest(zr *zip.Reader) (*Manifest, error) {
	rc, err := stream.OpenFile(zr, manifestFile)
	if err != nil {
		return nil, ErrInvalidManifest
	}
	defer rc.Close()

	var manifest Manifest
	if err := json.NewDecoder(rc).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if manifest.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %s (want %s)", ErrVersionMismatch, manifest.Version, FormatVersion)
	}
	return &manifest, nil
}

// Restore loads a backup into empty stores. With DryRun set the archive is
// read end to end but nothing is written.
func (s *RestoreService) Restore(ctx context.Context, path string, opts RestoreOptions) (*RestoreResult, error) {
	start := time.Now()

	s.logger.Info("starting restore", "path", path, "dry_run", opts.DryRun)

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer zr.Close()

	manifest, err := readManifest(&zr.Reader)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{Manifest: manifest}

	if !opts.DryRun {
		if err := s.ensureEmpty(ctx); err != nil {
			return nil, err
		}

		rc, err := stream.OpenFile(&zr.Reader, graphFile)
		if err != nil {
			return nil, fmt.Errorf("open graph snapshot: %w", err)
		}
		err = s.graph.Load(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}

	rc, err := stream.OpenFile(&zr.Reader, freetsFile)
	if err != nil {
		return nil, fmt.Errorf("open freets: %w", err)
	}
	for freet, err := range stream.NewReader[domain.Freet](rc).All() {
		if err != nil {
			return nil, fmt.Errorf("read freet: %w", err)
		}
		if opts.DryRun {
			result.Freets++
			continue
		}

		inserted, err := s.freets.ImportFreet(ctx, &freet)
		if err != nil {
			return nil, err
		}
		if inserted {
			result.Freets++
		} else {
			result.Skipped++
		}
	}

	if opts.DryRun {
		result.Counts = manifest.Counts
	} else {
		counts, err := s.counts(ctx)
		if err != nil {
			return nil, err
		}
		result.Counts = *counts
	}
	result.Duration = time.Since(start)

	s.logger.Info("restore complete",
		"freets", result.Freets,
		"skipped", result.Skipped,
		"duration", result.Duration)

	return result, nil
}

func (s *RestoreService) ensureEmpty(ctx context.Context) error {
	counts, err := s.counts(ctx)
	if err != nil {
		return err
	}
	if counts.Users > 0 || counts.Freets > 0 {
		return errors.Join(ErrStoreNotEmpty,
			fmt.Errorf("found %d users and %d freets", counts.Users, counts.Freets))
	}
	return nil
}

func (s *RestoreService) counts(ctx context.Context) (*EntityCounts, error) {
	stats, err := s.graph.Stats(ctx)
	if err != nil {
		return nil, err
	}
	freets, err := s.freets.CountFreets(ctx)
	if err != nil {
		return nil, err
	}
	return &EntityCounts{Stats: *stats, Freets: freets}, nil
}
