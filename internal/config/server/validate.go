package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags first and then the rules that span several
// fields.
func Validate(cfg *BaseServerConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	for name, value := range map[string]string{
		"shutdown_timeout":   cfg.ShutdownTimeout,
		"http.read_timeout":  cfg.HTTP.ReadTimeout,
		"http.write_timeout": cfg.HTTP.WriteTimeout,
		"http.idle_timeout":  cfg.HTTP.IdleTimeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: invalid duration %q", name, value)
		}
	}

	switch cfg.Metadata.Type {
	case "sqlite":
		if cfg.Metadata.SQLite.Path == "" {
			return errors.New("metadata.sqlite.path: required when metadata.type is sqlite")
		}
	case "badger":
		if cfg.Metadata.Badger.Path == "" && !cfg.Metadata.Badger.InMemory {
			return errors.New("metadata.badger.path: required unless metadata.badger.in_memory is set")
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		return errors.New("metrics.path: required when metrics are enabled")
	}

	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}

// Duration parses a configured duration, falling back when it is empty or
// malformed.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
