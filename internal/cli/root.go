// Package cli provides the command-line interface for lhc.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/lhc/internal/config"
	"github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// It must only be called after the root command's PersistentPreRunE has
// executed; before that it returns a zero-value logger. Safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates and returns the root command for the lhc CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "lhc",
		Short: "lhc - release engineering assistant",
		Long: `lhc evaluates per-train build configuration and derives releases from git history.

Features:
  • A small configuration language with references and conditional overrides
  • Conventional commit linting
  • Commit ranges and reachability queries
  • Semantic versions and release notes computed from tags and commits`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return errors.NewExitCode2Error(fmt.Errorf("%w: %q must be one of %v",
					errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats()))
			}

			logger := InitLogger(v.GetBool("verbose"), v.GetBool("quiet"), globalLogSettings(cmd.Context()))
			globalLoggerMu.Lock()
			globalLogger = logger
			globalLoggerMu.Unlock()

			logger.Debug().Str("command", cmd.CommandPath()).Msg("starting")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddConfigCommand(cmd, flags)
	AddCommitsCommand(cmd, flags)
	AddReachableCommand(cmd, flags)
	AddDescribeCommand(cmd, flags)
	AddLintCommand(cmd, flags)

	return cmd
}

// globalLogSettings reads log rotation settings from the global settings
// file, falling back to defaults when it is missing or invalid.
func globalLogSettings(ctx context.Context) config.LogConfig {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return config.DefaultConfig().Log
	}
	cfg, err := config.LoadFromPaths(ctx, "", path)
	if err != nil {
		return config.DefaultConfig().Log
	}
	return cfg.Log
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	return executeRoot(ctx, cmd)
}

// executeRoot runs root and prints a failure with its suggested next step on
// stderr, unless the failing command already reported it.
func executeRoot(ctx context.Context, root *cobra.Command) error {
	executed, err := root.ExecuteContextC(ctx)
	if err == nil || executed == nil || executed.SilenceErrors {
		return err
	}
	tui.NewTTYOutput(executed.ErrOrStderr()).Error(err)
	return err
}
