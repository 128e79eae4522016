package config

import (
	"slices"

	"github.com/mrz1836/lhc/internal/errors"
)

// releaseChannels are the channel names accepted by the channel setting.
var releaseChannels = []string{"alpha", "beta", "rc", "production"} //nolint:gochecknoglobals // fixed vocabulary

// ValidOutputFormats returns the accepted output.format values.
func ValidOutputFormats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - channel is empty or a known release channel
//   - output.format is text, json or yaml
//   - timeout is positive and remote is set
//   - log sizes and counts are positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.Channel != "" && !slices.Contains(releaseChannels, cfg.Channel) {
		return errors.Wrapf(errors.ErrInvalidChannel,
			"channel must be one of %v, got %q", releaseChannels, cfg.Channel)
	}

	if !slices.Contains(ValidOutputFormats(), cfg.Output.Format) {
		return errors.Wrapf(errors.ErrConfigInvalidOutput,
			"output.format must be one of %v, got %q", ValidOutputFormats(), cfg.Output.Format)
	}

	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGit,
			"timeout must be positive, got %s", cfg.Timeout)
	}

	if cfg.Remote == "" {
		return errors.Wrap(errors.ErrConfigInvalidGit, "remote must not be empty")
	}

	return validateLogConfig(&cfg.Log)
}

// validateLogConfig checks log rotation values.
func validateLogConfig(cfg *LogConfig) error {
	if cfg.MaxSizeMB <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_size_mb must be positive, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_backups must be positive, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_age_days must be positive, got %d", cfg.MaxAgeDays)
	}
	return nil
}
