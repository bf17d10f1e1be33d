// Package config loads opboxlink's configuration from a YAML file and
// OPBOXLINK_-prefixed environment variables, then fills every field still at
// its zero value with a built-in default. An environment variable overrides
// the file only for a key the file sets.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is opboxlink's full static configuration surface.
type Config struct {
	// Role selects whether this process runs the robot-side or opbox-side
	// link. Valid values: "robot", "opbox".
	Role string `mapstructure:"role" validate:"required,oneof=robot opbox" yaml:"role"`

	Link       LinkConfig       `mapstructure:"link" yaml:"link"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Diagnostic DiagnosticConfig `mapstructure:"diagnostic" yaml:"diagnostic"`
	Alerts     AlertsConfig     `mapstructure:"alerts" yaml:"alerts"`
	Indicators IndicatorConfig  `mapstructure:"indicators" yaml:"indicators"`
	Danger     []DangerRule     `mapstructure:"danger_rules" yaml:"danger_rules"`
}

// LinkConfig describes the peer this process talks to.
type LinkConfig struct {
	// PeerAddress is the remote host, or "localhost" to select the
	// dual-socket loopback transceiver.
	PeerAddress string `mapstructure:"peer_address" validate:"required" yaml:"peer_address"`
	// PeerPort is the base port per the loopback/remote pairing rule.
	PeerPort int `mapstructure:"peer_port" validate:"required,gt=0,lt=65536" yaml:"peer_port"`
	// Label is a human-readable identifier for this link instance, used in
	// logs and traces.
	Label string `mapstructure:"label" yaml:"label"`
}

// LoggingConfig controls the package-level logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name" yaml:"service_name"`
	SampleFraction float64 `mapstructure:"sample_fraction" validate:"gte=0,lte=1" yaml:"sample_fraction"`
}

// MetricsConfig controls the Prometheus metrics exposition.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
}

// DiagnosticConfig controls the read-only diagnostic HTTP surface.
type DiagnosticConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
}

// SeverityAlertConfig mirrors one severity's alert behavior.
type SeverityAlertConfig struct {
	BuzzerEnabled       bool          `mapstructure:"buzzer_enabled" yaml:"buzzer_enabled"`
	PopupEnabled        bool          `mapstructure:"popup_enabled" yaml:"popup_enabled"`
	PopupLifetime       time.Duration `mapstructure:"popup_lifetime" yaml:"popup_lifetime"`
}

// AlertsConfig configures WARN/ERROR embedding behavior.
type AlertsConfig struct {
	Warn  SeverityAlertConfig `mapstructure:"warn" yaml:"warn"`
	Error SeverityAlertConfig `mapstructure:"error" yaml:"error"`
}

// IndicatorConfig names the actuator sink paths for the opbox-side LED and
// buzzer. An empty path selects an in-memory sink (bench testing without
// attached hardware).
type IndicatorConfig struct {
	LEDSinkPath    string `mapstructure:"led_sink_path" yaml:"led_sink_path"`
	BuzzerSinkPath string `mapstructure:"buzzer_sink_path" yaml:"buzzer_sink_path"`
}

// DangerRule is one configured danger-aggregator escalation rule.
type DangerRule struct {
	DiagnosticName     string `mapstructure:"diagnostic_name" validate:"required" yaml:"diagnostic_name"`
	TargetLevel        string `mapstructure:"target_level" validate:"required" yaml:"target_level"`
	MinConsecutive     int    `mapstructure:"min_consecutive" validate:"required,gt=0" yaml:"min_consecutive"`
	EscalationSeverity string `mapstructure:"escalation_severity" validate:"required,oneof=WARNING ERROR FATAL" yaml:"escalation_severity"`
}

const envPrefix = "OPBOXLINK"

// Load reads configuration from configPath (YAML; empty uses only defaults),
// applies OPBOXLINK_<SECTION>_<KEY> environment overrides to the keys the file
// sets, fills in defaults, and validates the result. Keys the file does not
// set are not read from the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %q: %w", path, err)
	}
	return nil
}
