package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TIMELY_PASSWORD", "hunter2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "", cfg.BasePath)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "timely.db", cfg.Database.DSN)
}

func TestLoadRequiresPassword(t *testing.T) {
	t.Setenv("TIMELY_PASSWORD", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TIMELY_PASSWORD", "hunter2")
	t.Setenv("TIMELY_ADDR", ":9999")
	t.Setenv("TIMELY_DATABASE_DRIVER", "postgres")
	t.Setenv("TIMELY_DATABASE_DSN", "postgres://localhost/timely")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/timely", cfg.Database.DSN)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("TIMELY_PASSWORD", "hunter2")
	t.Setenv("TIMELY_DATABASE_DRIVER", "oracle")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadNormalizesBasePath(t *testing.T) {
	t.Setenv("TIMELY_PASSWORD", "hunter2")

	t.Setenv("TIMELY_BASE_PATH", "/timely/")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/timely", cfg.BasePath)

	t.Setenv("TIMELY_BASE_PATH", "timely")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "/timely", cfg.BasePath)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TIMELY_PASSWORD", "hunter2")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7777\"\nbase_path: /todo\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Addr)
	assert.Equal(t, "/todo", cfg.BasePath)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	t.Setenv("TIMELY_PASSWORD", "hunter2")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}
