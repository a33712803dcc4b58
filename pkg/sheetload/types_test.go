package sheetload_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/sheetload/pkg/sheetload"
)

func fullConnection() *sheetload.ConnectionConfig {
	return &sheetload.ConnectionConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "people",
		Username: "loader",
		Password: "secret",
	}
}

func TestConnectionConfig_Validate_NamesFirstMissingField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *sheetload.ConnectionConfig)
		missing string
	}{
		{"database", func(c *sheetload.ConnectionConfig) { c.Database = "" }, `"database"`},
		{"user", func(c *sheetload.ConnectionConfig) { c.Username = "" }, `"user"`},
		{"password", func(c *sheetload.ConnectionConfig) { c.Password = "" }, `"password"`},
		{"host", func(c *sheetload.ConnectionConfig) { c.Host = "" }, `"host"`},
		{"port", func(c *sheetload.ConnectionConfig) { c.Port = 0 }, `"port"`},
		{"host only", func(c *sheetload.ConnectionConfig) {
			*c = sheetload.ConnectionConfig{Host: "db.internal"}
		}, `"database"`},
		{"user and password missing", func(c *sheetload.ConnectionConfig) {
			c.Username = ""
			c.Password = ""
		}, `"user"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fullConnection()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, sheetload.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("Expected error to name %s, got %q", tt.missing, err.Error())
			}
		})
	}
}

func TestConnectionConfig_Validate_Complete(t *testing.T) {
	if err := fullConnection().Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestConnectionConfig_IsEmpty(t *testing.T) {
	var nilCfg *sheetload.ConnectionConfig
	if !nilCfg.IsEmpty() {
		t.Error("nil config should be empty")
	}
	if !(&sheetload.ConnectionConfig{SSLMode: "disable"}).IsEmpty() {
		t.Error("sslmode alone should not count as a connection field")
	}
	if (&sheetload.ConnectionConfig{Port: 5432}).IsEmpty() {
		t.Error("port set should not be empty")
	}
}

func TestIngestConfig_Validate(t *testing.T) {
	valid := func() sheetload.IngestConfig {
		return sheetload.IngestConfig{
			Target:    sheetload.Target{Backend: sheetload.BackendSQLite, SQLitePath: "/tmp/x.sqlite3"},
			Table:     "people",
			BatchSize: 100,
			OnFailure: sheetload.FailureFail,
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *sheetload.IngestConfig)
		wantError bool
	}{
		{"valid", func(c *sheetload.IngestConfig) {}, false},
		{"zero batch", func(c *sheetload.IngestConfig) { c.BatchSize = 0 }, true},
		{"empty table", func(c *sheetload.IngestConfig) { c.Table = "" }, true},
		{"long table", func(c *sheetload.IngestConfig) { c.Table = strings.Repeat("t", 64) }, true},
		{"negative workers", func(c *sheetload.IngestConfig) { c.MaxWorkers = -1 }, true},
		{"bad policy", func(c *sheetload.IngestConfig) { c.OnFailure = "retry" }, true},
		{"sqlite without path", func(c *sheetload.IngestConfig) { c.Target.SQLitePath = "" }, true},
		{"incomplete postgres", func(c *sheetload.IngestConfig) {
			c.Target = sheetload.Target{Backend: sheetload.BackendPostgres, Postgres: &sheetload.ConnectionConfig{Host: "h"}}
		}, true},
		{"complete postgres", func(c *sheetload.IngestConfig) {
			c.Target = sheetload.Target{Backend: sheetload.BackendPostgres, Postgres: fullConnection()}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !errors.Is(err, sheetload.ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    sheetload.FailurePolicy
		wantErr bool
	}{
		{"", sheetload.FailureFail, false},
		{"continue", sheetload.FailureContinue, false},
		{"fail", sheetload.FailureFail, false},
		{"abort", sheetload.FailureAbort, false},
		{"ignore", "", true},
	}
	for _, tt := range tests {
		got, err := sheetload.ParseFailurePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFailurePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFailurePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTarget_StringHidesPassword(t *testing.T) {
	target := sheetload.Target{Backend: sheetload.BackendPostgres, Postgres: fullConnection()}
	if strings.Contains(target.String(), "secret") {
		t.Errorf("Target.String() leaked the password: %s", target.String())
	}
	if got := (sheetload.Target{SQLitePath: "/tmp/db"}).String(); got != "sqlite:///tmp/db" {
		t.Errorf("unexpected sqlite target string %q", got)
	}
}
