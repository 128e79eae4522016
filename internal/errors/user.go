package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal,
// and the first match wins, so more specific kinds come first.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Configuration language
	// ===================
	{
		err: ErrParse,
		info: ErrorInfo{
			Message: "The lhc configuration file could not be parsed.",
			Action:  "Fix the statement at the reported line and column, then run 'lhc config check'.",
		},
	},
	{
		err: ErrCycle,
		info: ErrorInfo{
			Message: "A property refers back to itself through other properties.",
			Action:  "Break the cycle by removing one of the $(...) references listed in the error.",
		},
	},
	{
		err: ErrConditionalAssignment,
		info: ErrorInfo{
			Message: "More than one assignment applies to the same property.",
			Action:  "Add conditions so that exactly one assignment matches, or make one assignment more specific.",
		},
	},
	{
		err: ErrNoInheritedValue,
		info: ErrorInfo{
			Message: "An assignment uses $(inherited) but there is no parent scope to inherit from.",
			Action:  "Remove $(inherited) from the assignment or evaluate it with a parent scope.",
		},
	},
	{
		err: ErrNoDefaultValue,
		info: ErrorInfo{
			Message: "A required property has no value.",
			Action:  "Add an unconditional assignment for the property or pass it with -D name=value.",
		},
	},
	{
		err: ErrBuildConfigNotFound,
		info: ErrorInfo{
			Message: "No .lhc configuration file was found.",
			Action:  "Create a .lhc file at the repository root or set LHC_CONFIG_PATH.",
		},
	},
	{
		err: ErrInvalidDefine,
		info: ErrorInfo{
			Message: "A -D define is malformed.",
			Action:  "Use the form -D name=value with a valid property name.",
		},
	},
	{
		err: ErrInvalidOptions,
		info: ErrorInfo{
			Message: "Resolved properties have values of the wrong type.",
			Action:  "Check list and map properties such as commit_categories contain valid JSON.",
		},
	},

	// ===================
	// Commit graph
	// ===================
	{
		err: ErrReferenceNotFoundFromLeaf,
		info: ErrorInfo{
			Message: "The starting reference is not part of the history being walked.",
			Action:  "Make sure the reference is an ancestor of the target (try 'lhc reachable').",
		},
	},
	{
		err: ErrObjectNotFound,
		info: ErrorInfo{
			Message: "A commit could not be read from the repository.",
			Action:  "Fetch the full history (shallow clones lack ancestors) and retry.",
		},
	},
	{
		err: ErrInvalidReference,
		info: ErrorInfo{
			Message: "The reference does not name a commit.",
			Action:  "Pass a commit hash, branch, or tag that exists locally.",
		},
	},
	{
		err: ErrInvalidObjectID,
		info: ErrorInfo{
			Message: "The commit hash is malformed.",
			Action:  "Pass a full 40 or 64 character hexadecimal hash.",
		},
	},
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "This command must be run inside a git repository.",
			Action:  "Change to a directory inside a git repository.",
		},
	},
	{
		err: ErrGitOperation,
		info: ErrorInfo{
			Message: "A git command failed.",
			Action:  "Run with --verbose to see the git output.",
		},
	},

	// ===================
	// Release computation
	// ===================
	{
		err: ErrInvalidCommitMessage,
		info: ErrorInfo{
			Message: "A commit message does not follow the conventional commit format.",
			Action:  "Use 'type(scope): summary', for example 'fix(parser): handle empty lines'.",
		},
	},
	{
		err: ErrInvalidVersion,
		info: ErrorInfo{
			Message: "A version string is not a valid semantic version.",
		},
	},
	{
		err: ErrInvalidChannel,
		info: ErrorInfo{
			Message: "Unknown release channel.",
			Action:  "Use one of: alpha, beta, rc, production.",
		},
	},
	{
		err: ErrInvalidPattern,
		info: ErrorInfo{
			Message: "A project ID pattern is not a valid regular expression.",
			Action:  "Fix project_id_regexes in the .lhc file.",
		},
	},
	{
		err: ErrLint,
		info: ErrorInfo{
			Message: "Some commits do not meet the repository's commit conventions.",
			Action:  "Reword the listed commits with 'git rebase -i' and run lint again.",
		},
	},

	// ===================
	// Settings & CLI
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is missing.",
		},
	},
	{
		err: ErrConfigInvalidOutput,
		info: ErrorInfo{
			Message: "Output settings are invalid.",
			Action:  "Check the output section of .lhc.d/config.yaml or ~/.lhc/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidLog,
		info: ErrorInfo{
			Message: "Log settings are invalid.",
			Action:  "Check the log section of .lhc.d/config.yaml or ~/.lhc/config.yaml.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use one of the formats listed in the command help.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was empty.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that have no clear action, the action string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
