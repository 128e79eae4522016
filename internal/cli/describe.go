package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/lhc/internal/buildconfig"
	"github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/git"
	"github.com/mrz1836/lhc/internal/history"
	"github.com/mrz1836/lhc/internal/release"
	"github.com/mrz1836/lhc/internal/tui"
)

// Values accepted by describe --show besides a version number.
const (
	showLatest = "latest"
	showAll    = "all"
)

// formatVersionOnly prints only the version number.
const formatVersionOnly = "version"

// maxConcurrentDescribes bounds the releases computed at once by --show all.
const maxConcurrentDescribes = 4

var (
	glamourRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer for performance
	glamourRendererOnce sync.Once             //nolint:gochecknoglobals // sync.Once for renderer initialization
)

// getGlamourRenderer returns a cached glamour renderer for release notes.
func getGlamourRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			glamourRenderer = r
		}
	})
	return glamourRenderer
}

// describeOptions holds flags specific to the describe command.
type describeOptions struct {
	target           string
	show             string
	format           string
	render           bool
	titleCategories  bool
	redactHashes     bool
	redactProjectIDs bool
	fetch            bool
	outputFile       string
}

// AddDescribeCommand adds the describe command to the root command.
func AddDescribeCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &describeOptions{}

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe a release computed from tags and commits",
		Long: `Describe the release at --target: its version and the conventional commits
since the previous production release, grouped by category.

When --target carries a version tag that version is reported. Otherwise the
next version is derived from the commits for the configured channel.

Examples:
  lhc describe
  lhc describe --format version --channel beta
  lhc describe --show 1.4.0 --render
  lhc describe --show all -o json --redact-project-ids`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return silenceStructuredErrors(cmd, runDescribe(cmd, flags, opts))
		},
	}

	cmd.Flags().StringVar(&opts.target, "target", "HEAD", "commit to describe when --show is latest")
	cmd.Flags().StringVar(&opts.show, "show", showLatest, "release to show: latest, all, or a version number")
	cmd.Flags().StringVar(&opts.format, "format", "", "text, json, yaml or version (defaults to --output)")
	cmd.Flags().BoolVar(&opts.render, "render", false, "render text notes as styled markdown")
	cmd.Flags().BoolVar(&opts.titleCategories, "title-categories", false, "title-case category headings without a display name")
	cmd.Flags().BoolVar(&opts.redactHashes, "redact-hashes", false, "leave commit hashes out of the notes")
	cmd.Flags().BoolVar(&opts.redactProjectIDs, "redact-project-ids", false, "leave project IDs out of the notes")
	cmd.Flags().BoolVar(&opts.fetch, "fetch", false, "fetch tags from the configured remote first")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "", "write the result to a file instead of stdout")

	root.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, flags *GlobalFlags, opts *describeOptions) error {
	env, err := newCommandEnv(cmd, flags)
	if err != nil {
		return err
	}
	defer env.cancel()

	format := opts.format
	if format == "" {
		format = env.ec.Format()
	}
	if format == "" {
		format = OutputText
	}
	if format != formatVersionOnly && !IsValidOutputFormat(format) {
		return errors.NewExitCode2Error(fmt.Errorf("%w: --format %q must be one of text, json, yaml, version",
			errors.ErrInvalidOutputFormat, format))
	}

	channel, err := release.ParseChannel(env.ec.Settings.Channel)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	bopts, err := env.ec.Options()
	if err != nil {
		return env.fail(err)
	}

	if opts.fetch {
		env.logger.Debug().Str("remote", env.ec.Settings.Remote).Msg("fetching tags")
		if err := git.FetchTags(env.ctx, env.ec.Root, env.ec.Settings.Remote); err != nil {
			return env.fail(err)
		}
	}

	tags, err := git.ListTags(env.ctx, env.ec.Root)
	if err != nil {
		return env.fail(err)
	}

	calc := release.NewCalculator(env.ec.Traverser, release.WithLogger(env.logger))

	var releases []*release.Release
	switch opts.show {
	case showLatest:
		target, err := env.ec.Accessor.Resolve(env.ctx, opts.target)
		if err != nil {
			return env.fail(err)
		}
		rel, err := calc.Compute(env.ctx, tags, bopts, target, channel)
		if err != nil {
			return env.fail(err)
		}
		releases = append(releases, rel)
	case showAll:
		releases, err = describeAll(env, calc, tags, bopts)
		if err != nil {
			return env.fail(err)
		}
	default:
		target, err := versionTarget(tags, bopts, opts.show)
		if err != nil {
			return env.fail(err)
		}
		rel, err := calc.Compute(env.ctx, tags, bopts, target, channel)
		if err != nil {
			return env.fail(err)
		}
		releases = append(releases, rel)
	}

	env.logger.Debug().
		Str("show", opts.show).
		Int("releases", len(releases)).
		Int("cached_commits", env.ec.Accessor.CachedCommits()).
		Msg("computed releases")

	for i, rel := range releases {
		if opts.redactHashes || opts.redactProjectIDs {
			releases[i] = rel.Redact(opts.redactHashes, opts.redactProjectIDs)
		}
	}

	w := env.w
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile) //#nosec G304 -- path chosen by the user
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.outputFile, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	return writeReleases(w, format, releases, bopts, opts)
}

// describeAll computes the release at every version tag, newest version first.
func describeAll(env *commandEnv, calc *release.Calculator, tags []git.Tag, bopts *buildconfig.Options) ([]*release.Release, error) {
	type tagged struct {
		target  history.ObjectID
		version *semver.Version
	}
	var versions []tagged
	for _, t := range tags {
		if v, ok := release.ParseTagVersion(bopts.TagPrefix, t.Name); ok {
			versions = append(versions, tagged{target: t.Target, version: v})
		}
	}
	slices.SortFunc(versions, func(a, b tagged) int {
		return b.version.Compare(a.version)
	})

	releases := make([]*release.Release, len(versions))
	g, ctx := errgroup.WithContext(env.ctx)
	g.SetLimit(maxConcurrentDescribes)
	for i, v := range versions {
		g.Go(func() error {
			rel, err := calc.Compute(ctx, tags, bopts, v.target, release.VersionChannel(v.version))
			if err != nil {
				return errors.Wrapf(err, "failed to describe %s", v.version)
			}
			releases[i] = rel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return releases, nil
}

// versionTarget returns the commit tagged with version.
func versionTarget(tags []git.Tag, bopts *buildconfig.Options, version string) (history.ObjectID, error) {
	want, err := semver.StrictNewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return "", errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidVersion, "--show %q", version))
	}
	for _, t := range tags {
		if v, ok := release.ParseTagVersion(bopts.TagPrefix, t.Name); ok && v.Equal(want) {
			return t.Target, nil
		}
	}
	msg := "no version " + want.String() + " found in commit history"
	if bopts.Train != "" {
		msg += " for train '" + bopts.Train + "'"
	}
	return "", errors.Wrap(errors.ErrInvalidVersion, msg)
}

// writeReleases prints releases in format.
func writeReleases(w io.Writer, format string, releases []*release.Release, bopts *buildconfig.Options, opts *describeOptions) error {
	switch format {
	case formatVersionOnly:
		for _, rel := range releases {
			if _, err := fmt.Fprintln(w, rel.Version.String()); err != nil {
				return err
			}
		}
		return nil
	case OutputJSON, OutputYAML:
		out := tui.NewStructuredOutput(w, format)
		docs := make([]release.Document, 0, len(releases))
		for _, rel := range releases {
			docs = append(docs, rel.Document(bopts))
		}
		if opts.show == showAll {
			return out.Value(docs)
		}
		return out.Value(docs[0])
	}

	var dopts []release.DescribeOption
	if opts.titleCategories {
		dopts = append(dopts, release.WithTitleCasedCategories())
	}
	notes := make([]string, 0, len(releases))
	for _, rel := range releases {
		notes = append(notes, rel.Describe(bopts, dopts...))
	}
	text := strings.Join(notes, "\n\n")

	if opts.render {
		if renderer := getGlamourRenderer(); renderer != nil {
			if rendered, err := renderer.Render(text); err == nil {
				_, err = io.WriteString(w, rendered)
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
