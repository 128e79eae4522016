// Package constants provides centralized constant values used throughout lhc.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by lhc.
const (
	// LHCHome is the hidden directory in the user's home where lhc keeps
	// global settings and logs.
	LHCHome = ".lhc"

	// ProjectSettingsDir is the per-repository settings directory. It is
	// distinct from the .lhc configuration language file at the repo root.
	ProjectSettingsDir = ".lhc.d"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Environment variables recognized for compatibility with existing lhc setups.
const (
	// EnvHome overrides the location of LHCHome.
	EnvHome = "LHC_HOME"

	// EnvConfigPath names the .lhc configuration file to use.
	EnvConfigPath = "LHC_CONFIG_PATH"

	// EnvTrainName selects the build train.
	EnvTrainName = "LHC_TRAIN_NAME"

	// EnvReleaseChannel selects the release channel.
	EnvReleaseChannel = "LHC_RELEASE_CHANNEL"

	// EnvPrefix is the prefix for viper-bound settings (LHC_OUTPUT_FORMAT, ...).
	EnvPrefix = "LHC"
)

// Log rotation defaults for the CLI log file.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
	LogCompress   = true
)

// Git defaults.
const (
	// DefaultRemote is the remote consulted when none is configured.
	DefaultRemote = "origin"

	// DefaultTarget is the reference releases are computed for by default.
	DefaultTarget = "HEAD"
)

// GitCommandTimeout bounds a whole CLI invocation's git work.
const GitCommandTimeout = 2 * time.Minute

// GitLab CI variables consulted when linting without --since.
const (
	EnvCI                         = "CI"
	EnvCICommitBeforeSHA          = "CI_COMMIT_BEFORE_SHA"
	EnvCIMergeRequestDiffBaseSHA  = "CI_MERGE_REQUEST_DIFF_BASE_SHA"
	EnvCIDefaultBranch            = "CI_DEFAULT_BRANCH"
	EnvCICommitBranch             = "CI_COMMIT_BRANCH"
	EnvCIMergeRequestSourceBranch = "CI_MERGE_REQUEST_SOURCE_BRANCH_NAME"
)

// NullSHA is the all-zero object name CI systems report for new branches.
const NullSHA = "0000000000000000000000000000000000000000"
