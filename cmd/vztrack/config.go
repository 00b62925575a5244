package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/fieldscope/vztrack/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# vztrack configuration

# Directory holding per-user local stores (my_projects_<username>.db).
# local_root:

# Shared directory holding master_projects.db, sync_inbox/ and sync_archive/.
# In production this is a mounted network drive.
# shared_root:

# Logging: debug, info, warn, error; console or json.
log_level: info
log_format: console

# Base URL of the read-only reporting API.
reporting_base_url: http://localhost:8000/api

# Listen address for the REST backend (vztrack serve).
listen_addr: :8080
`

// loadConfig reads config.yaml from the config directory, creating the
// directory and a default file on first run. A missing file is not an error;
// defaults apply.
func loadConfig(configDir string) (types.Config, error) {
	var cfg types.Config

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return cfg, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return cfg, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("reporting_base_url", "http://localhost:8000/api")
	v.SetDefault("listen_addr", ":8080")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ensureDefaultConfigFile creates a default config.yaml if none exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
