package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lhc/internal/constants"
	"github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/git"
	"github.com/mrz1836/lhc/internal/history"
	"github.com/mrz1836/lhc/internal/release"
)

// lintOptions holds flags specific to the lint command.
type lintOptions struct {
	since  string
	to     string
	branch string
}

// lintReport is the structured result of the lint command.
type lintReport struct {
	Branch     string              `json:"branch,omitempty" yaml:"branch,omitempty"`
	ProjectIDs []string            `json:"projectIds" yaml:"projectIds"`
	Commits    int                 `json:"commits" yaml:"commits"`
	Issues     []lintReportedIssue `json:"issues" yaml:"issues"`
}

type lintReportedIssue struct {
	Reason  string `json:"reason" yaml:"reason"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// ciBaseVariables are checked in order for the commit linting starts after.
//
//nolint:gochecknoglobals // fixed lookup order
var ciBaseVariables = []string{
	constants.EnvCICommitBeforeSHA,
	constants.EnvCIMergeRequestDiffBaseSHA,
	constants.EnvCIDefaultBranch,
}

// AddLintCommand adds the lint command to the root command.
func AddLintCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check commit messages against the repository conventions",
		Long: `Check that commits use conventional commit subjects with a configured
category, respect the subject and body length limits, and carry a trailer
for every project ID in the branch name.

Without --since, linting starts after the commit named by the first set CI
variable among CI_COMMIT_BEFORE_SHA, CI_MERGE_REQUEST_DIFF_BASE_SHA and
CI_DEFAULT_BRANCH, when it is an ancestor of --to. Otherwise only --to itself
is checked.

Examples:
  lhc lint
  lhc lint --since origin/main
  lhc lint --since v1.2.0 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return silenceStructuredErrors(cmd, runLint(cmd, flags, opts))
		},
	}

	cmd.Flags().StringVar(&opts.since, "since", "", "exclusive start reference")
	cmd.Flags().StringVar(&opts.to, "to", "HEAD", "last commit to check")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "branch name to read project IDs from (defaults to the current branch)")

	root.AddCommand(cmd)
}

func runLint(cmd *cobra.Command, flags *GlobalFlags, opts *lintOptions) error {
	env, err := newCommandEnv(cmd, flags)
	if err != nil {
		return err
	}
	defer env.cancel()

	bopts, err := env.ec.Options()
	if err != nil {
		return env.fail(err)
	}

	leaf, err := env.ec.Accessor.Resolve(env.ctx, opts.to)
	if err != nil {
		return env.fail(err)
	}

	base, err := lintBase(env.ctx, env, opts.since, leaf)
	if err != nil {
		return env.fail(err)
	}

	commits, err := env.ec.Traverser.CommitsSince(env.ctx, leaf, base, nil)
	if err != nil {
		return env.fail(err)
	}

	branch := opts.branch
	if branch == "" {
		branch = currentBranch(env.ctx, env.ec.Root)
	}

	linter, err := release.NewLinter(bopts, branch, nil)
	if err != nil {
		return env.fail(err)
	}

	env.logger.Debug().
		Str("base", base.Short()).
		Str("leaf", leaf.Short()).
		Str("branch", branch).
		Strs("project_ids", linter.ProjectIDs()).
		Int("commits", len(commits)).
		Int("cached_commits", env.ec.Accessor.CachedCommits()).
		Msg("linting commits")

	lintErr := linter.Lint(commits)

	if env.structured() {
		report := lintReport{
			Branch:     branch,
			ProjectIDs: linter.ProjectIDs(),
			Commits:    len(commits),
			Issues:     []lintReportedIssue{},
		}
		var le *release.LintError
		if stderrors.As(lintErr, &le) {
			for _, issue := range le.Issues {
				report.Issues = append(report.Issues, lintReportedIssue{
					Reason:  string(issue.Reason),
					Commit:  issue.Commit.String(),
					Subject: issue.Subject,
					Message: issue.String(),
				})
			}
		}
		if err := env.out.Value(report); err != nil {
			return err
		}
		if lintErr != nil {
			return stderrors.Join(errors.ErrJSONErrorOutput, lintErr)
		}
		return nil
	}

	if lintErr != nil {
		return lintErr
	}
	env.out.Success(fmt.Sprintf("%d %s checked, no issues found", len(commits), plural(len(commits), "commit", "commits")))
	return nil
}

// lintBase returns the commit linting starts after. An empty result lints
// the whole history of leaf.
func lintBase(ctx context.Context, env *commandEnv, since string, leaf history.ObjectID) (history.ObjectID, error) {
	if since != "" {
		return env.ec.Accessor.Resolve(ctx, since)
	}

	if base, ok := ciLintBase(ctx, env, leaf); ok {
		env.logger.Debug().Str("base", base.Short()).Msg("linting from CI base commit")
		return base, nil
	}

	parents, err := env.ec.Accessor.Parents(ctx, leaf)
	if err != nil {
		return "", err
	}
	if len(parents) == 0 {
		return "", nil
	}
	return parents[0], nil
}

// ciLintBase reads the first set CI base variable and returns its commit
// when it differs from leaf and is one of its ancestors.
func ciLintBase(ctx context.Context, env *commandEnv, leaf history.ObjectID) (history.ObjectID, bool) {
	var ref string
	for _, name := range ciBaseVariables {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" && v != constants.NullSHA {
			ref = v
			break
		}
	}
	if ref == "" {
		return "", false
	}

	id, err := env.ec.Accessor.Resolve(ctx, ref)
	if err != nil {
		env.logger.Debug().Err(err).Str("ref", ref).Msg("CI base does not resolve")
		return "", false
	}
	if id == leaf {
		return "", false
	}
	reachable, err := env.ec.Traverser.IsReachable(ctx, id, leaf)
	if err != nil || !reachable {
		return "", false
	}
	return id, true
}

// currentBranch returns the checked out branch, falling back to the CI
// branch variables for detached heads.
func currentBranch(ctx context.Context, root string) string {
	branch, err := git.CurrentBranch(ctx, root)
	if err == nil && branch != "HEAD" {
		return branch
	}
	for _, name := range []string{constants.EnvCICommitBranch, constants.EnvCIMergeRequestSourceBranch} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
