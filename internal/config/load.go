package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/lhc/internal/constants"
	"github.com/mrz1836/lhc/internal/errors"
)

// newViperInstance creates a Viper instance with lhc's environment binding
// and defaults. Keys map to LHC_<KEY> with dots replaced by underscores; the
// train, channel and config_file keys also honour the historical variable
// names.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Errors are only returned for an empty key.
	_ = v.BindEnv("config_file", "LHC_CONFIG_FILE", constants.EnvConfigPath)
	_ = v.BindEnv("train", "LHC_TRAIN", constants.EnvTrainName)
	_ = v.BindEnv("channel", "LHC_CHANNEL", constants.EnvReleaseChannel)
	return v
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tags exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("config_file", d.ConfigFile)
	v.SetDefault("train", d.Train)
	v.SetDefault("channel", d.Channel)
	v.SetDefault("remote", d.Remote)
	v.SetDefault("timeout", d.Timeout.String())
	v.SetDefault("defines", []string{})
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.typed_values", d.Output.TypedValues)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// viperDecoderOption configures mapstructure to parse durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

// unmarshalAndValidate unmarshals viper settings into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads settings for the repository rooted at root from all sources
// with proper precedence. Missing settings files are not an error.
func Load(ctx context.Context, root string) (*Config, error) {
	globalPath := ""
	if p, err := GlobalConfigPath(); err == nil {
		globalPath = p
	}

	cfg, err := LoadFromPaths(ctx, ProjectConfigPath(root), globalPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("config_file", cfg.ConfigFile).
		Str("train", cfg.Train).
		Str("channel", cfg.Channel).
		Str("output.format", cfg.Output.Format).
		Msg("settings loaded")

	return cfg, nil
}

// LoadFromPaths loads settings from specific files. The project file takes
// precedence over the global one; either path may be empty or missing.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" && fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" && fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads settings and applies CLI flag overrides, which have
// the highest precedence. Only non-zero override values are applied.
func LoadWithOverrides(ctx context.Context, root string, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx, root)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// applyOverrides merges non-zero override values into cfg. Override defines
// are appended, so later entries win when the list is applied in order.
//
// TypedValues is a bool and cannot be overridden to false here; the CLI
// sets it directly when its flag changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.ConfigFile != "" {
		cfg.ConfigFile = overrides.ConfigFile
	}
	if overrides.Train != "" {
		cfg.Train = overrides.Train
	}
	if overrides.Channel != "" {
		cfg.Channel = overrides.Channel
	}
	if overrides.Remote != "" {
		cfg.Remote = overrides.Remote
	}
	if overrides.Timeout != 0 {
		cfg.Timeout = overrides.Timeout
	}
	if overrides.Output.Format != "" {
		cfg.Output.Format = overrides.Output.Format
	}
	if overrides.Output.TypedValues {
		cfg.Output.TypedValues = true
	}
	if len(overrides.Defines) > 0 {
		cfg.Defines = append(cfg.Defines, overrides.Defines...)
	}
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
