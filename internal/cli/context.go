package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/lhc/internal/buildconfig"
	"github.com/mrz1836/lhc/internal/config"
	"github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/git"
	"github.com/mrz1836/lhc/internal/history"
)

// ExecutionContext holds the resolved repository, settings and history
// access shared by the commands.
type ExecutionContext struct {
	// Root is the repository's working tree root.
	Root string

	// Settings are the merged tool settings with flag overrides applied.
	Settings *config.Config

	// BuildConfigPath is the .lhc file in use, empty when none was found.
	BuildConfigPath string

	// BuildConfig is the parsed .lhc file, nil when none was found.
	BuildConfig *buildconfig.Configuration

	// Accessor reads commits through the git CLI.
	Accessor *git.CLIAccessor

	// Traverser walks history through Accessor.
	Traverser *history.Traverser

	logger zerolog.Logger
}

// ResolveExecutionContext detects the repository containing flags.Repo,
// loads settings with flag overrides, and locates and parses the .lhc file.
//
// A missing .lhc file is not an error here; commands that need one call
// RequireBuildConfig. A .lhc file that exists but does not parse is.
func ResolveExecutionContext(ctx context.Context, flags *GlobalFlags, logger zerolog.Logger) (*ExecutionContext, error) {
	dir := flags.Repo
	if dir == "" {
		dir = "."
	}

	repoInfo, err := git.DetectRepo(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}
	if repoInfo.IsShallow {
		logger.Warn().Str("root", repoInfo.Root).Msg("shallow clone, history walks may stop early")
	}

	settings, err := config.LoadWithOverrides(logger.WithContext(ctx), repoInfo.Root, &config.Config{
		ConfigFile: flags.ConfigFile,
		Train:      flags.Train,
		Channel:    flags.Channel,
		Output:     config.OutputConfig{Format: flags.Output},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	acc, err := git.NewAccessor(ctx, repoInfo.Root, git.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	ec := &ExecutionContext{
		Root:      repoInfo.Root,
		Settings:  settings,
		Accessor:  acc,
		Traverser: history.New(acc, history.WithLogger(logger)),
		logger:    logger,
	}

	if err := ec.loadBuildConfig(dir); err != nil {
		return nil, err
	}
	return ec, nil
}

// loadBuildConfig reads the configured .lhc file, or searches upward from dir.
func (ec *ExecutionContext) loadBuildConfig(dir string) error {
	path := ec.Settings.ConfigFile
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(ec.Root, path)
	}
	if path == "" {
		found, err := buildconfig.Find(dir)
		if stderrors.Is(err, errors.ErrBuildConfigNotFound) {
			ec.logger.Debug().Str("dir", dir).Msg("no .lhc file found")
			return nil
		}
		if err != nil {
			return err
		}
		path = found
	}

	cfg, err := buildconfig.Load(path)
	if err != nil {
		return err
	}
	ec.BuildConfigPath = path
	ec.BuildConfig = cfg
	ec.logger.Debug().Str("path", path).Int("elements", len(cfg.Elements())).Msg("loaded build configuration")
	return nil
}

// RequireBuildConfig returns ErrBuildConfigNotFound when no .lhc file was loaded.
func (ec *ExecutionContext) RequireBuildConfig() error {
	if ec.BuildConfig == nil {
		return errors.Wrap(errors.ErrBuildConfigNotFound, "no .lhc file in the repository or its parents")
	}
	return nil
}

// Defines returns the settings defines followed by args, later entries winning.
func (ec *ExecutionContext) Defines(args ...string) (buildconfig.Defines, error) {
	d := buildconfig.Defines{}
	if err := d.Define(ec.Settings.Defines...); err != nil {
		return nil, errors.Wrap(err, "settings defines")
	}
	if err := d.Define(args...); err != nil {
		return nil, err
	}
	return d, nil
}

// Evaluate resolves the build configuration for a train with the given
// initial defines. The channel comes from the settings.
func (ec *ExecutionContext) Evaluate(train string, initial buildconfig.Defines, opts ...buildconfig.EvalOption) (buildconfig.Defines, error) {
	if err := ec.RequireBuildConfig(); err != nil {
		return nil, err
	}
	opts = append([]buildconfig.EvalOption{buildconfig.WithLogger(ec.logger)}, opts...)
	return ec.BuildConfig.EvalFor(train, ec.Settings.Channel, initial, opts...)
}

// Options evaluates the build configuration for the configured train and
// decodes the result. Without a .lhc file it returns empty options.
func (ec *ExecutionContext) Options() (*buildconfig.Options, error) {
	if ec.BuildConfig == nil {
		return &buildconfig.Options{Train: ec.Settings.Train, Channel: ec.Settings.Channel}, nil
	}
	initial, err := ec.Defines()
	if err != nil {
		return nil, err
	}
	values, err := ec.Evaluate(ec.Settings.Train, initial)
	if err != nil {
		return nil, err
	}
	return buildconfig.DecodeOptions(values)
}

// Format returns the effective output format.
func (ec *ExecutionContext) Format() string {
	return ec.Settings.Output.Format
}
