package config

import (
	"github.com/mrz1836/lhc/internal/constants"
)

// Output formats accepted by output.format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Remote:  constants.DefaultRemote,
		Timeout: constants.GitCommandTimeout,
		Output: OutputConfig{
			Format: FormatText,
		},
		Log: LogConfig{
			MaxSizeMB:  constants.LogMaxSizeMB,
			MaxBackups: constants.LogMaxBackups,
			MaxAgeDays: constants.LogMaxAgeDays,
			Compress:   constants.LogCompress,
		},
	}
}
