package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sheetload/internal/config"
	"github.com/vvka-141/sheetload/pkg/sheetload"
)

func fullFlags() *TargetFlags {
	return &TargetFlags{
		Host:     "localhost",
		Port:     5432,
		Database: "crm",
		Username: "loader",
		Password: "secret",
	}
}

func TestResolveTarget_DefaultsToSQLite(t *testing.T) {
	target, err := ResolveTarget(nil, nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, sheetload.BackendSQLite, target.Backend)
	assert.Equal(t, filepath.Join(os.TempDir(), "sheetload", "db.sqlite3"), target.SQLitePath)
	assert.Nil(t, target.Postgres)
}

func TestResolveTarget_SQLiteLocation(t *testing.T) {
	tests := []struct {
		name    string
		flags   *TargetFlags
		env     *EnvVars
		project *config.ProjectConfig
		dir     string
		want    string
	}{
		{
			name:  "flag wins",
			flags: &TargetFlags{Location: "/data/flag.db"},
			env:   &EnvVars{Location: "/data/env.db"},
			want:  "/data/flag.db",
		},
		{
			name: "env used when flag empty",
			env:  &EnvVars{Location: "/data/env.db"},
			project: &config.ProjectConfig{
				Destination: config.DestinationConfig{Location: "/data/project.db"},
			},
			want: "/data/env.db",
		},
		{
			name: "project file last",
			project: &config.ProjectConfig{
				Destination: config.DestinationConfig{Location: "/data/project.db"},
			},
			want: "/data/project.db",
		},
		{
			name:  "relative path joined with dir",
			flags: &TargetFlags{Location: "out/people.db"},
			dir:   "/work",
			want:  filepath.Join("/work", "out/people.db"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ResolveTarget(tt.flags, tt.env, tt.project, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, sheetload.BackendSQLite, target.Backend)
			assert.Equal(t, tt.want, target.SQLitePath)
		})
	}
}

func TestResolveTarget_PostgresFromFlags(t *testing.T) {
	target, err := ResolveTarget(fullFlags(), nil, nil, "")
	require.NoError(t, err)

	require.Equal(t, sheetload.BackendPostgres, target.Backend)
	assert.Equal(t, "localhost", target.Postgres.Host)
	assert.Equal(t, 5432, target.Postgres.Port)
	assert.Equal(t, "crm", target.Postgres.Database)
	assert.Equal(t, "loader", target.Postgres.Username)
	assert.Equal(t, "secret", target.Postgres.Password)
	assert.Equal(t, "prefer", target.Postgres.SSLMode)
}

func TestResolveTarget_MissingFieldNamed(t *testing.T) {
	tests := []struct {
		name    string
		flags   *TargetFlags
		missing string
	}{
		{"only host", &TargetFlags{Host: "localhost"}, `"database"`},
		{"no user", &TargetFlags{Host: "h", Port: 1, Database: "d", Password: "p"}, `"user"`},
		{"no password", &TargetFlags{Host: "h", Port: 1, Database: "d", Username: "u"}, `"password"`},
		{"no host", &TargetFlags{Port: 1, Database: "d", Username: "u", Password: "p"}, `"host"`},
		{"no port", &TargetFlags{Host: "h", Database: "d", Username: "u", Password: "p"}, `"port"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveTarget(tt.flags, nil, nil, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, sheetload.ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestResolveTarget_Precedence(t *testing.T) {
	env := &EnvVars{
		Host:     "env-host",
		Port:     "6000",
		Database: "env-db",
		User:     "env-user",
		Password: "env-pass",
	}
	project := &config.ProjectConfig{
		Destination: config.DestinationConfig{
			Host:     "file-host",
			Port:     7000,
			Database: "file-db",
			User:     "file-user",
			Password: "file-pass",
			SSLMode:  "require",
		},
	}

	target, err := ResolveTarget(&TargetFlags{Host: "flag-host"}, env, project, "")
	require.NoError(t, err)

	cfg := target.Postgres
	assert.Equal(t, "flag-host", cfg.Host)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "env-db", cfg.Database)
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "env-pass", cfg.Password)
	assert.Equal(t, "require", cfg.SSLMode)
}

func TestResolveTarget_ProjectFileCompletesEnv(t *testing.T) {
	project := &config.ProjectConfig{
		Destination: config.DestinationConfig{Host: "db", Port: 5432, User: "u", Password: "p"},
	}
	target, err := ResolveTarget(nil, &EnvVars{Database: "people"}, project, "")
	require.NoError(t, err)
	assert.Equal(t, "people", target.Postgres.Database)
	assert.Equal(t, "db", target.Postgres.Host)
}

func TestResolveTarget_InvalidEnvPort(t *testing.T) {
	_, err := ResolveTarget(nil, &EnvVars{Port: "abc"}, nil, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sheetload.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "SHEETLOAD_PORT")
}

func TestResolveTarget_ConnectionString(t *testing.T) {
	flags := &TargetFlags{Connection: "postgresql://u:p@db:5433/people?sslmode=disable"}
	target, err := ResolveTarget(flags, nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, sheetload.BackendPostgres, target.Backend)
	assert.Equal(t, 5433, target.Postgres.Port)
	assert.Equal(t, "disable", target.Postgres.SSLMode)
}

func TestResolveTarget_ConnectionStringIncomplete(t *testing.T) {
	_, err := ResolveTarget(&TargetFlags{Connection: "postgresql://u@db:5432/people"}, nil, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"password"`)
}

func TestResolveTarget_ConnectionConflict(t *testing.T) {
	flags := fullFlags()
	flags.Connection = "postgresql://u:p@db:5432/people"

	_, err := ResolveTarget(flags, nil, nil, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sheetload.ErrInvalidConfig))
	assert.True(t, strings.Contains(err.Error(), "cannot specify both"))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SHEETLOAD_HOST", "h")
	t.Setenv("SHEETLOAD_PORT", "1234")
	t.Setenv("SHEETLOAD_DATABASE", "d")
	t.Setenv("SHEETLOAD_USER", "u")
	t.Setenv("SHEETLOAD_PASSWORD", "p")
	t.Setenv("SHEETLOAD_LOCATION", "/tmp/x.db")

	env := LoadFromEnvironment()
	assert.Equal(t, &EnvVars{
		Host:     "h",
		Port:     "1234",
		Database: "d",
		User:     "u",
		Password: "p",
		Location: "/tmp/x.db",
	}, env)
}
