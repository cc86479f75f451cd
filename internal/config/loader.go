package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// EnvConfigPath names the YAML file to load. Without it ./mintmarket.yaml
	// is used when present.
	EnvConfigPath     = "MINTMARKET_CONFIG"
	defaultConfigPath = "./mintmarket.yaml"
)

// Load assembles the configuration from env-default tags, the YAML file and
// the environment, later sources winning. Backend-dependent defaults are
// derived before Validate runs.
func Load() (*Config, error) {
	path, explicit := os.Getenv(EnvConfigPath), true
	if path == "" {
		path, explicit = defaultConfigPath, false
	}

	var cfg Config
	if err := readSources(path, explicit, &cfg); err != nil {
		return nil, err
	}

	cfg.deriveDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func readSources(path string, explicit bool, cfg *Config) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
	}
	return nil
}

// deriveDefaults fills settings whose default depends on other settings.
func (c *Config) deriveDefaults() {
	if c.Ledger.Backend == BackendSQLite && c.Ledger.DSN == "" && c.Ledger.Path != "" {
		c.Ledger.DSN = "file:" + c.Ledger.Path + ".db"
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "mintmarket:events"
	}
}
