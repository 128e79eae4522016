package release

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mrz1836/lhc/internal/buildconfig"
	lhcerrors "github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/history"
)

// lintSubjectPattern is stricter than the release parser: types are lowercase
// ASCII and scopes are restricted to word characters and dashes.
var lintSubjectPattern = regexp.MustCompile(`^([a-z0-9]+)(\([a-zA-Z0-9_-]+\))?(!)?: .*`)

// LintReason says what rule a commit or branch broke.
type LintReason string

// Lint reasons.
const (
	ReasonMissingSubject         LintReason = "MissingSubject"
	ReasonSubjectTooLong         LintReason = "SubjectTooLong"
	ReasonSubjectFormat          LintReason = "SubjectFormat"
	ReasonUnknownCategory        LintReason = "UnknownCategory"
	ReasonBodyLineTooLong        LintReason = "BodyLineTooLong"
	ReasonMissingTrailer         LintReason = "MissingTrailer"
	ReasonBranchMissingProjectID LintReason = "BranchMissingProjectID"
)

// LintIssue is one violation.
type LintIssue struct {
	Reason LintReason
	// Commit is empty for branch issues.
	Commit  history.ObjectID
	Subject string
	// Detail carries the offending category, configured limit, or expected trailer value.
	Detail string
}

// String renders the issue with the offending commit on the following line.
func (i LintIssue) String() string {
	var msg string
	switch i.Reason {
	case ReasonMissingSubject:
		msg = "Commit is missing subject"
	case ReasonSubjectTooLong:
		msg = fmt.Sprintf("Commit has a subject line that is longer than %s characters", i.Detail)
	case ReasonSubjectFormat:
		msg = "Commit subject does not meet conventional commit specifications"
	case ReasonUnknownCategory:
		msg = fmt.Sprintf("Commit subject has unrecognized category '%s'", i.Detail)
	case ReasonBodyLineTooLong:
		msg = fmt.Sprintf("Commit body has one or more lines longer than %s characters", i.Detail)
	case ReasonMissingTrailer:
		msg = "Commit is missing a trailer " + i.Detail
	case ReasonBranchMissingProjectID:
		return fmt.Sprintf("Branch '%s' does not contain a project ID", i.Detail)
	}
	return fmt.Sprintf("%s:\n%s %s", msg, i.Commit.Short(), i.Subject)
}

// LintError collects every issue found in one lint run.
type LintError struct {
	Issues []LintIssue
}

func (e *LintError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%d commits have errors:\n%s", len(e.Issues), strings.Join(parts, "\n\n"))
}

func (e *LintError) Unwrap() error {
	return lhcerrors.ErrLint
}

// Linter checks commit messages and branch names against the lint options of
// an evaluated configuration.
type Linter struct {
	opts       *buildconfig.Options
	branch     string
	projectIDs []string
}

// NewLinter prepares a linter for commits made on branch. Project IDs are
// read from the slash-separated components of the branch name using the
// configured project ID patterns. branch may be empty for detached heads.
func NewLinter(opts *buildconfig.Options, branch string, cache *PatternCache) (*Linter, error) {
	if cache == nil {
		cache = NewPatternCache()
	}
	patterns, err := cache.CompileAll(opts.ProjectIDRegexes)
	if err != nil {
		return nil, err
	}
	return &Linter{
		opts:       opts,
		branch:     branch,
		projectIDs: BranchProjectIDs(branch, opts.ProjectIDPrefix, patterns),
	}, nil
}

// BranchProjectIDs returns one project ID per branch name component that
// matches a pattern, using the first matching pattern for each component.
func BranchProjectIDs(branch, prefix string, patterns []*regexp.Regexp) []string {
	if branch == "" || len(patterns) == 0 {
		return nil
	}
	var ids []string
	for _, component := range strings.Split(branch, "/") {
		for _, re := range patterns {
			found := ProjectIDs(component, prefix, []*regexp.Regexp{re})
			if len(found) == 0 {
				continue
			}
			if !slices.Contains(ids, found[0]) {
				ids = append(ids, found[0])
			}
			break
		}
	}
	return ids
}

// ProjectIDs returns the IDs found in the branch name.
func (l *Linter) ProjectIDs() []string {
	return l.projectIDs
}

// CheckBranch reports a branch without a project ID when branch names must
// carry one.
func (l *Linter) CheckBranch() *LintIssue {
	if l.opts.LintBranchNames != buildconfig.BranchLintAlways || l.branch == "" {
		return nil
	}
	if len(l.projectIDs) > 0 {
		return nil
	}
	return &LintIssue{Reason: ReasonBranchMissingProjectID, Detail: l.branch}
}

// Check returns the first issue found in the commit, or nil.
func (l *Linter) Check(c *history.Commit) *LintIssue {
	paragraphs := splitParagraphs(c.Message)
	if len(paragraphs) == 0 {
		return &LintIssue{Reason: ReasonMissingSubject, Commit: c.ID}
	}

	subject := c.Subject()
	issue := func(reason LintReason, detail string) *LintIssue {
		return &LintIssue{Reason: reason, Commit: c.ID, Subject: subject, Detail: detail}
	}

	if limit := l.opts.SubjectMaxLength; limit > 0 && utf8.RuneCountInString(subject) > limit {
		return issue(ReasonSubjectTooLong, fmt.Sprint(limit))
	}

	if !c.IsMerge() && !strings.HasPrefix(subject, "Merge") && !strings.HasPrefix(subject, "Revert") {
		m := lintSubjectPattern.FindStringSubmatch(subject)
		if m == nil {
			return issue(ReasonSubjectFormat, "")
		}
		if len(l.opts.CommitCategories) > 0 && !slices.Contains(l.opts.CommitCategories, m[1]) {
			return issue(ReasonUnknownCategory, m[1])
		}
	}

	if limit := l.opts.BodyMaxLength; limit > 0 && bodyExceeds(paragraphs[1:], limit) {
		return issue(ReasonBodyLineTooLong, fmt.Sprint(limit))
	}

	if l.opts.ProjectIDTrailer == "" {
		return nil
	}
	trailers := messageTrailers(c.Message)
	for _, id := range l.projectIDs {
		if !slices.Contains(trailers, Trailer{Key: l.opts.ProjectIDTrailer, Value: id}) {
			return issue(ReasonMissingTrailer, fmt.Sprintf("'%s' with expected value '%s'", l.opts.ProjectIDTrailer, id))
		}
	}
	return nil
}

// Lint checks the branch and every commit and returns a *LintError listing
// all issues, or nil.
func (l *Linter) Lint(commits []*history.Commit) error {
	var issues []LintIssue
	if issue := l.CheckBranch(); issue != nil {
		issues = append(issues, *issue)
	}
	for _, c := range commits {
		if issue := l.Check(c); issue != nil {
			issues = append(issues, *issue)
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return &LintError{Issues: issues}
}

func splitParagraphs(message string) []string {
	var res []string
	for _, p := range strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

// bodyExceeds reports a line longer than limit. Lines without whitespace,
// such as URLs, cannot be wrapped and are ignored.
func bodyExceeds(paragraphs []string, limit int) bool {
	for _, p := range paragraphs {
		for _, line := range strings.Split(p, "\n") {
			if strings.IndexFunc(line, unicode.IsSpace) >= 0 && utf8.RuneCountInString(line) > limit {
				return true
			}
		}
	}
	return false
}

// messageTrailers reads the trailer block at the end of any message,
// conventional or not.
func messageTrailers(message string) []Trailer {
	paragraphs := splitParagraphs(message)
	if len(paragraphs) < 2 {
		return nil
	}
	var trailers []Trailer
	for _, line := range strings.Split(paragraphs[len(paragraphs)-1], "\n") {
		t, ok := parseTrailer(strings.TrimSpace(line))
		if !ok {
			return nil
		}
		trailers = append(trailers, t)
	}
	return trailers
}
