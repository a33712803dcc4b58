package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sheetload/internal/store/sqlite"
	"github.com/vvka-141/sheetload/pkg/sheetload"
)

func TestFactory_OpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite3")
	var open sheetload.StoreFactory = NewFactory().Open

	s, err := open(context.Background(), sheetload.Target{Backend: sheetload.BackendSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer s.Close()

	lite, ok := s.(*sqlite.Store)
	require.True(t, ok)
	assert.Equal(t, path, lite.Path())
}

func TestFactory_InvalidTargets(t *testing.T) {
	tests := []struct {
		name   string
		target sheetload.Target
	}{
		{"postgres without settings", sheetload.Target{Backend: sheetload.BackendPostgres}},
		{"unknown backend", sheetload.Target{Backend: sheetload.Backend(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(WithConnectRetries()).Open(context.Background(), tt.target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, sheetload.ErrInvalidConfig))
		})
	}
}

func TestWithConnectRetries(t *testing.T) {
	assert.False(t, NewFactory().retryConnect)
	assert.True(t, NewFactory(WithConnectRetries()).retryConnect)
}
