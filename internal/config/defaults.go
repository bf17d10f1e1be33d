package config

import "time"

// ApplyDefaults fills in any zero-valued field with opboxlink's built-in
// defaults, leaving non-zero values untouched. A value explicitly set to its
// zero value (false, 0, "") cannot be told apart from an unset one and is
// defaulted too.
func ApplyDefaults(cfg *Config) {
	if cfg.Link.PeerAddress == "" {
		cfg.Link.PeerAddress = "localhost"
	}
	if cfg.Link.PeerPort == 0 {
		cfg.Link.PeerPort = 9000
	}
	if cfg.Link.Label == "" {
		cfg.Link.Label = cfg.Role
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "opboxlink"
	}
	if cfg.Telemetry.SampleFraction == 0 {
		cfg.Telemetry.SampleFraction = 1.0
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}

	if cfg.Diagnostic.Address == "" {
		cfg.Diagnostic.Address = ":8080"
	}

	applySeverityDefaults(&cfg.Alerts.Warn, false)
	applySeverityDefaults(&cfg.Alerts.Error, true)
}

func applySeverityDefaults(sev *SeverityAlertConfig, isError bool) {
	if sev.PopupLifetime == 0 {
		sev.PopupLifetime = 10 * time.Second
	}
	if !isError {
		return
	}
	// ERROR severity defaults to both buzzer and popup enabled; WARN leaves
	// the zero-value (disabled) unless the config file turns it on.
	if !sev.BuzzerEnabled && !sev.PopupEnabled {
		sev.BuzzerEnabled = true
		sev.PopupEnabled = true
	}
}
