package backup_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/backup"
	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/id"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
)

type testStores struct {
	graph  *store.Store
	freets *sqlite.Store
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func openStores(t *testing.T, dir string) *testStores {
	t.Helper()

	graph, err := store.New(filepath.Join(dir, "graph"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = graph.Close() })

	freets, err := sqlite.Open(filepath.Join(dir, "freets.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = freets.Close() })

	return &testStores{graph: graph, freets: freets}
}

// seed creates two users where alice follows bob and likes his freet.
func seed(t *testing.T, s *testStores) (alice, bob *domain.User, freet *domain.Freet) {
	t.Helper()
	ctx := context.Background()

	alice = &domain.User{CreatedAt: time.Now(), ID: id.MustGenerate(id.PrefixUser), Username: "alice"}
	bob = &domain.User{CreatedAt: time.Now(), ID: id.MustGenerate(id.PrefixUser), Username: "bob"}
	require.NoError(t, s.graph.CreateUser(ctx, alice))
	require.NoError(t, s.graph.CreateUser(ctx, bob))

	freet, err := s.freets.CreateFreet(ctx, bob.ID, "hello from bob")
	require.NoError(t, err)
	_, err = s.freets.CreateFreet(ctx, alice.ID, "hello from alice")
	require.NoError(t, err)

	_, err = s.graph.CreateFollow(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)
	_, err = s.graph.CreateLike(ctx, alice.ID, freet.ID)
	require.NoError(t, err)

	return alice, bob, freet
}

func TestBackupService_Create(t *testing.T) {
	tmp := t.TempDir()
	src := openStores(t, filepath.Join(tmp, "src"))
	seed(t, src)

	backupDir := filepath.Join(tmp, "backups")
	svc := backup.NewBackupService(src.graph, src.freets, backupDir, testLogger())

	result, err := svc.Create(context.Background(), backup.BackupOptions{})
	require.NoError(t, err)

	assert.FileExists(t, result.Path)
	assert.Positive(t, result.Size)
	assert.Len(t, result.Checksum, 64)
	assert.Equal(t, 2, result.Counts.Users)
	assert.Equal(t, 2, result.Counts.Freets)
	assert.Equal(t, 1, result.Counts.Follows)
	assert.Equal(t, 1, result.Counts.Likes)

	backups, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, result.Path, backups[0].Path)

	info, err := svc.Get(context.Background(), backups[0].ID)
	require.NoError(t, err)
	assert.Equal(t, result.Size, info.Size)

	require.NoError(t, svc.Delete(context.Background(), backups[0].ID))
	_, err = svc.Get(context.Background(), backups[0].ID)
	assert.ErrorIs(t, err, backup.ErrBackupNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), backups[0].ID), backup.ErrBackupNotFound)
}

func TestBackupService_ListMissingDir(t *testing.T) {
	src := openStores(t, t.TempDir())
	svc := backup.NewBackupService(src.graph, src.freets, filepath.Join(t.TempDir(), "none"), testLogger())

	backups, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestRestoreService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := openStores(t, filepath.Join(tmp, "src"))
	alice, bob, freet := seed(t, src)

	created, err := backup.NewBackupService(src.graph, src.freets, filepath.Join(tmp, "backups"), testLogger()).
		Create(ctx, backup.BackupOptions{})
	require.NoError(t, err)

	dst := openStores(t, filepath.Join(tmp, "dst"))
	restorer := backup.NewRestoreService(dst.graph, dst.freets, testLogger())

	result, err := restorer.Restore(ctx, created.Path, backup.RestoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Freets)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, created.Counts, result.Counts)

	// Lookup indexes come back with the graph.
	got, err := dst.graph.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	follow, err := dst.graph.GetFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, follow.PersonaID)

	_, err = dst.graph.GetLike(ctx, alice.ID, freet.ID)
	require.NoError(t, err)

	restored, err := dst.freets.GetFreet(ctx, freet.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello from bob", restored.Content)
	assert.True(t, freet.CreatedAt.Equal(restored.CreatedAt))

	// A second restore into the now populated stores is refused.
	_, err = restorer.Restore(ctx, created.Path, backup.RestoreOptions{})
	assert.ErrorIs(t, err, backup.ErrStoreNotEmpty)
}

func TestRestoreService_DryRun(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := openStores(t, filepath.Join(tmp, "src"))
	seed(t, src)

	created, err := backup.NewBackupService(src.graph, src.freets, filepath.Join(tmp, "backups"), testLogger()).
		Create(ctx, backup.BackupOptions{})
	require.NoError(t, err)

	// Dry runs do not require an empty target.
	result, err := backup.NewRestoreService(src.graph, src.freets, testLogger()).
		Restore(ctx, created.Path, backup.RestoreOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Freets)
	assert.Equal(t, created.Counts, result.Counts)

	n, err := src.freets.CountFreets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRestoreService_Validate(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	src := openStores(t, filepath.Join(tmp, "src"))
	restorer := backup.NewRestoreService(src.graph, src.freets, testLogger())

	created, err := backup.NewBackupService(src.graph, src.freets, filepath.Join(tmp, "backups"), testLogger()).
		Create(ctx, backup.BackupOptions{OutputPath: filepath.Join(tmp, "empty.fritter.zip")})
	require.NoError(t, err)

	manifest, err := restorer.Validate(ctx, created.Path)
	require.NoError(t, err)
	assert.Equal(t, backup.FormatVersion, manifest.Version)
	assert.Zero(t, manifest.Counts.Users)

	notZip := filepath.Join(tmp, "garbage.fritter.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0o600))
	_, err = restorer.Validate(ctx, notZip)
	require.Error(t, err)
	assert.False(t, errors.Is(err, backup.ErrVersionMismatch))
}
