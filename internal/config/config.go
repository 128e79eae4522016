// Package config provides lhc's tool settings with layered precedence.
//
// Settings are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (LHC_* prefix, plus LHC_CONFIG_PATH,
//     LHC_TRAIN_NAME and LHC_RELEASE_CHANNEL)
//  3. Project settings (.lhc.d/config.yaml in the repository root)
//  4. Global settings (~/.lhc/config.yaml)
//  5. Built-in defaults
//
// These are settings for the tool itself. Build properties live in the .lhc
// configuration language file handled by internal/buildconfig.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import other internal packages.
package config

import "time"

// Config is the root settings structure for lhc.
type Config struct {
	// ConfigFile is the path of the .lhc configuration language file.
	// Empty means search upward from the working directory.
	ConfigFile string `yaml:"config_file" mapstructure:"config_file"`

	// Train is the default build train.
	Train string `yaml:"train" mapstructure:"train"`

	// Channel is the default release channel.
	Channel string `yaml:"channel" mapstructure:"channel"`

	// Remote is the git remote whose tags are considered.
	Remote string `yaml:"remote" mapstructure:"remote"`

	// Timeout bounds the git work of a single invocation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Defines are KEY=VALUE pairs applied to every evaluation before -D flags.
	// They are kept as a list because settings keys are case-insensitive.
	Defines []string `yaml:"defines" mapstructure:"defines"`

	// Output controls how results are printed.
	Output OutputConfig `yaml:"output" mapstructure:"output"`

	// Log controls the rotating log file.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// OutputConfig contains settings for printed results.
type OutputConfig struct {
	// Format is text, json or yaml.
	Format string `yaml:"format" mapstructure:"format"`

	// TypedValues exports properties as booleans, numbers, lists and maps
	// where their text allows it.
	TypedValues bool `yaml:"typed_values" mapstructure:"typed_values"`
}

// LogConfig contains rotation settings for ~/.lhc/logs/lhc.log.
type LogConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}
