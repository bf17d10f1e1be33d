package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct-tag validation over cfg and its nested sections.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for i, rule := range cfg.Danger {
		if err := validate.Struct(rule); err != nil {
			return fmt.Errorf("danger_rules[%d]: %w", i, err)
		}
	}
	return nil
}
