package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{Role: "opbox"}
	ApplyDefaults(cfg)

	require.Equal(t, "localhost", cfg.Link.PeerAddress)
	require.Equal(t, 9000, cfg.Link.PeerPort)
	require.Equal(t, "opbox", cfg.Link.Label)
	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, ":8080", cfg.Diagnostic.Address)
	require.True(t, cfg.Alerts.Error.BuzzerEnabled)
}

func TestValidateRejectsMissingRole(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	cfg := &Config{Role: "topside"}
	ApplyDefaults(cfg)
	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	cfg := &Config{Role: "robot"}
	ApplyDefaults(cfg)
	require.NoError(t, Validate(cfg))
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
role: opbox
link:
  peer_address: 192.168.1.50
  peer_port: 9001
logging:
  level: DEBUG
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "opbox", cfg.Role)
	require.Equal(t, "192.168.1.50", cfg.Link.PeerAddress)
	require.Equal(t, 9001, cfg.Link.PeerPort)
	require.Equal(t, "DEBUG", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := &Config{Role: "robot", Link: LinkConfig{PeerAddress: "localhost", PeerPort: 9000}}
	ApplyDefaults(original)
	require.NoError(t, Save(original, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, original.Role, loaded.Role)
	require.Equal(t, original.Link.PeerPort, loaded.Link.PeerPort)
}
