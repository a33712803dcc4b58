package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sheetload/pkg/sheetload"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `destination:
  host: myhost
  port: 5433
  database: mydb
  user: loader
  password: secret
  sslmode: require
  location: ./data/db.sqlite3

table: contacts
sheet: People
batch_size: 250
workers: 6
concurrent: 3
on_failure: abort
normalize_dates: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "myhost", cfg.Destination.Host)
	assert.Equal(t, 5433, cfg.Destination.Port)
	assert.Equal(t, "mydb", cfg.Destination.Database)
	assert.Equal(t, "loader", cfg.Destination.User)
	assert.Equal(t, "secret", cfg.Destination.Password)
	assert.Equal(t, "require", cfg.Destination.SSLMode)
	assert.Equal(t, "./data/db.sqlite3", cfg.Destination.Location)
	assert.Equal(t, "contacts", cfg.Table)
	assert.Equal(t, "People", cfg.Sheet)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, 3, cfg.Concurrent)
	assert.Equal(t, "abort", cfg.OnFailure)
	assert.True(t, cfg.NormalizeDates)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("batch_size: 50\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.Destination.Host)
	assert.Equal(t, 0, cfg.Destination.Port)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.ErrorIs(t, err, sheetload.ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("table: staff\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "staff", cfg.Table)
}
