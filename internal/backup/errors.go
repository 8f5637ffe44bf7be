// Package backup writes and restores portable snapshots of a Fritter data directory.
package backup

import "errors"

var (
	// ErrInvalidManifest indicates the manifest is missing or malformed.
	ErrInvalidManifest = errors.New("invalid or missing manifest")

	// ErrVersionMismatch indicates the backup version is not supported.
	ErrVersionMismatch = errors.New("backup version not supported")

	// ErrBackupNotFound indicates the requested backup does not exist.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrStoreNotEmpty indicates a restore target already holds accounts.
	ErrStoreNotEmpty = errors.New("restore target is not empty")
)
