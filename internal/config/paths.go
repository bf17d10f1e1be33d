package config

import (
	"fmt"
	"os"
	"path/filepath"
)

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "opboxlink")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "opboxlink")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// sampleConfig returns a fully-defaulted Config suitable as a starting
// point for a new deployment.
func sampleConfig() *Config {
	cfg := &Config{
		Role: "robot",
		Link: LinkConfig{
			PeerAddress: "localhost",
			PeerPort:    33000,
			Label:       "robot-link",
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// InitConfigToPath writes a sample configuration file to path, refusing to
// overwrite an existing file unless force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %q already exists (use --force to overwrite)", path)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: create directory %q: %w", dir, err)
		}
	}

	return Save(sampleConfig(), path)
}

// InitConfig writes a sample configuration file to the default location.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// MustLoad loads configuration from configPath, or the default location if
// configPath is empty, returning a descriptive error if neither exists.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf(
				"no configuration file found at default location: %s\n\n"+
					"Please initialize a configuration file first:\n"+
					"  opboxlinkd init\n\n"+
					"Or specify a custom config file:\n"+
					"  opboxlinkd <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf(
			"configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  opboxlinkd init --config %s",
			configPath, configPath)
	}

	return Load(configPath)
}
