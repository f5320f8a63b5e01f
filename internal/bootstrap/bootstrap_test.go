package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
	"github.com/saturnino-fabrica-de-software/facegate/internal/snapshot"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		StoreBackend:    config.StoreBackendFile,
		UserDataFile:    filepath.Join(dir, "user_data.json"),
		ProviderType:    "mock",
		SnapshotBackend: config.SnapshotBackendLocal,
		ImageDir:        filepath.Join(dir, "images"),
	}
}

func TestNew_FileBackend(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &repository.FileStore{}, app.Store)
	assert.IsType(t, &snapshot.Local{}, app.Snapshots)
	assert.NotNil(t, app.Service)
	assert.FileExists(t, cfg.UserDataFile)
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProviderType = "rekognition"

	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.ErrorContains(t, err, "create face encoder")
}

func TestNewUserStore_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = "redis"

	_, _, err := NewUserStore(context.Background(), cfg)

	assert.Error(t, err)
}

func TestNewSnapshotStore(t *testing.T) {
	cfg := testConfig(t)

	local, err := NewSnapshotStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.ImageDir, local.(*snapshot.Local).Dir())

	cfg.SnapshotBackend = config.SnapshotBackendS3
	cfg.S3Bucket = "snaps"
	cfg.S3Region = "us-east-1"
	cfg.S3Endpoint = "http://127.0.0.1:9000"
	cfg.S3AccessKey = "minio"
	cfg.S3SecretKey = "minio123"

	remote, err := NewSnapshotStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &snapshot.S3{}, remote)

	cfg.SnapshotBackend = "ftp"
	_, err = NewSnapshotStore(context.Background(), cfg)
	assert.Error(t, err)
}
