package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vvka-141/sheetload/pkg/sheetload"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// DestinationConfig is the destination section of sheetload.yaml.
// Any of host, port, database, user or password selects PostgreSQL.
type DestinationConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
	Location string `yaml:"location,omitempty"`
}

type ProjectConfig struct {
	Destination    DestinationConfig `yaml:"destination"`
	Table          string            `yaml:"table,omitempty"`
	Sheet          string            `yaml:"sheet,omitempty"`
	BatchSize      int               `yaml:"batch_size,omitempty"`
	Workers        int               `yaml:"workers,omitempty"`
	Concurrent     int               `yaml:"concurrent,omitempty"`
	OnFailure      string            `yaml:"on_failure,omitempty"`
	NormalizeDates bool              `yaml:"normalize_dates,omitempty"`
}

const ConfigFileName = "sheetload.yaml"

// Load reads sheetload.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the config at path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, sheetload.ErrInvalidConfig)
	}
	return &cfg, nil
}
