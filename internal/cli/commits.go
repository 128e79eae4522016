package cli

import (
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lhc/internal/history"
	"github.com/mrz1836/lhc/internal/release"
)

// commitsOptions holds flags specific to the commits command.
type commitsOptions struct {
	since string
	to    string
	types []string
}

// commitEntry is the structured form of one listed commit.
type commitEntry struct {
	Hash    string    `json:"hash" yaml:"hash"`
	Author  string    `json:"author" yaml:"author"`
	Date    time.Time `json:"date" yaml:"date"`
	Subject string    `json:"subject" yaml:"subject"`
}

// AddCommitsCommand adds the commits command to the root command.
func AddCommitsCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &commitsOptions{}

	cmd := &cobra.Command{
		Use:   "commits",
		Short: "List the commits since a reference",
		Long: `List the commits reachable from --to that are newer than --since,
newest committer date first.

Without --since the whole history of --to is listed.

Examples:
  lhc commits --since v1.2.0
  lhc commits --since origin/main --to my-branch -o json
  lhc commits --since v1.2.0 --type feat --type fix`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return silenceStructuredErrors(cmd, runCommits(cmd, flags, opts))
		},
	}

	cmd.Flags().StringVar(&opts.since, "since", "", "exclusive start reference (tag, branch or hash)")
	cmd.Flags().StringVar(&opts.to, "to", "HEAD", "leaf reference to walk from")
	cmd.Flags().StringSliceVar(&opts.types, "type", nil, "only list conventional commits of these types")

	root.AddCommand(cmd)
}

func runCommits(cmd *cobra.Command, flags *GlobalFlags, opts *commitsOptions) error {
	env, err := newCommandEnv(cmd, flags)
	if err != nil {
		return err
	}
	defer env.cancel()

	commits, err := env.ec.Traverser.CommitsBetween(env.ctx, opts.since, opts.to, typeFilter(opts.types))
	if err != nil {
		return env.fail(err)
	}

	env.logger.Debug().
		Str("since", opts.since).
		Str("to", opts.to).
		Int("count", len(commits)).
		Msg("listed commits")

	if env.structured() {
		entries := make([]commitEntry, 0, len(commits))
		for _, c := range commits {
			entries = append(entries, commitEntry{
				Hash:    c.ID.String(),
				Author:  c.Author,
				Date:    c.Date.UTC(),
				Subject: c.Subject(),
			})
		}
		return env.out.Value(entries)
	}

	rows := make([][]string, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, []string{c.ID.Short(), c.Date.Format(time.DateOnly), c.Subject()})
	}
	env.out.Table([]string{"HASH", "DATE", "SUBJECT"}, rows)
	return nil
}

// typeFilter keeps conventional commits whose type is in types. An empty
// list keeps everything.
func typeFilter(types []string) history.Predicate {
	if len(types) == 0 {
		return nil
	}
	return func(c *history.Commit) bool {
		cc, err := release.ParseConventional(c.Message)
		return err == nil && slices.Contains(types, cc.Header.Type)
	}
}
