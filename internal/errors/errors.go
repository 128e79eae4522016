// Package errors provides centralized error handling for lhc.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
// Domain packages build typed errors on top of these sentinels so callers can
// recover structured details with errors.As() while still matching the kind.
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for the configuration language.
var (
	// ErrParse indicates that a configuration file could not be parsed.
	ErrParse = errors.New("configuration parse error")

	// ErrCycle indicates that a property transitively depends on itself.
	ErrCycle = errors.New("property reference cycle")

	// ErrConditionalAssignment indicates that two or more assignments for the
	// same property are satisfied at once and neither overrides the other.
	ErrConditionalAssignment = errors.New("ambiguous conditional assignment")

	// ErrNoInheritedValue indicates that $(inherited) was used without a parent scope.
	ErrNoInheritedValue = errors.New("no inherited value")

	// ErrNoDefaultValue indicates that a demanded property has no value.
	ErrNoDefaultValue = errors.New("no default value provided")

	// ErrBuildConfigNotFound indicates that no .lhc file could be located.
	ErrBuildConfigNotFound = errors.New("lhc configuration file not found")

	// ErrInvalidDefine indicates a malformed -D key=value argument.
	ErrInvalidDefine = errors.New("invalid define")

	// ErrInvalidOptions indicates that resolved properties could not be decoded into options.
	ErrInvalidOptions = errors.New("invalid options")
)

// Sentinel errors for commit graph traversal and git access.
var (
	// ErrObjectNotFound indicates that the graph accessor could not produce a commit.
	ErrObjectNotFound = errors.New("object not found")

	// ErrReferenceNotFoundFromLeaf indicates that the start reference is not an
	// ancestor of the leaf commit.
	ErrReferenceNotFoundFromLeaf = errors.New("reference not found starting from leaf")

	// ErrNotReachable indicates that a commit is not an ancestor of another.
	ErrNotReachable = errors.New("commit not reachable")

	// ErrInvalidReference indicates a reference name that does not resolve to a commit.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidObjectID indicates a malformed commit hash.
	ErrInvalidObjectID = errors.New("invalid object id")

	// ErrGitOperation indicates that a git command failed.
	ErrGitOperation = errors.New("git operation failed")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")
)

// Sentinel errors for release computation.
var (
	// ErrInvalidCommitMessage indicates a commit message that is not a conventional commit.
	ErrInvalidCommitMessage = errors.New("not a conventional commit")

	// ErrInvalidVersion indicates a version string that is not semantic.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidChannel indicates an unknown release channel.
	ErrInvalidChannel = errors.New("invalid release channel")

	// ErrInvalidPattern indicates a project ID regular expression that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrLint indicates that one or more commits or the branch name failed linting.
	ErrLint = errors.New("lint failed")
)

// Sentinel errors for tool settings and the CLI.
var (
	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidOutput indicates an invalid output configuration value.
	ErrConfigInvalidOutput = errors.New("invalid output configuration")

	// ErrConfigInvalidGit indicates an invalid git-related setting.
	ErrConfigInvalidGit = errors.New("invalid git configuration")

	// ErrConfigInvalidLog indicates an invalid log configuration value.
	ErrConfigInvalidLog = errors.New("invalid log configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// Commands should silence cobra's error printing when this is returned.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
