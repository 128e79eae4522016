package release

import (
	"context"
	"regexp"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/mrz1836/lhc/internal/buildconfig"
	lhcerrors "github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/git"
	"github.com/mrz1836/lhc/internal/history"
)

// Change is one conventional commit in a release.
type Change struct {
	Summary    string   `json:"summary" yaml:"summary"`
	Body       string   `json:"body,omitempty" yaml:"body,omitempty"`
	CommitHash string   `json:"commitHash" yaml:"commitHash"`
	ProjectIDs []string `json:"projectIds" yaml:"projectIds"`
}

// Release is a computed or tagged software release.
type Release struct {
	Version *semver.Version
	// TagName is empty when the release is not tagged yet.
	TagName    string
	ObjectHash history.ObjectID
	Train      string
	// Body is the annotation of the release tag, if any.
	Body     string
	Trailers []Trailer
	// Changes groups commits by conventional commit type, newest first.
	Changes map[string][]Change
	// Categories lists the keys of Changes in presentation order.
	Categories []string
	// BadCommits are commits that are not conventional or have an
	// unconfigured type. They are not part of Changes.
	BadCommits []*history.Commit
}

// Channel returns the channel encoded in the release version.
func (r *Release) Channel() Channel {
	return VersionChannel(r.Version)
}

// IsTagged reports whether a tag already marks the release.
func (r *Release) IsTagged() bool {
	return r.TagName != ""
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithPatternCache shares a compiled pattern cache between calculators.
func WithPatternCache(p *PatternCache) Option {
	return func(c *Calculator) {
		c.patterns = p
	}
}

// Calculator computes releases from a commit graph and its version tags.
type Calculator struct {
	traverser *history.Traverser
	patterns  *PatternCache
	logger    zerolog.Logger
}

// NewCalculator returns a Calculator walking history through t.
func NewCalculator(t *history.Traverser, opts ...Option) *Calculator {
	c := &Calculator{traverser: t, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.patterns == nil {
		c.patterns = NewPatternCache()
	}
	return c
}

// versionTag is a tag whose name parses as a version.
type versionTag struct {
	tag     git.Tag
	version *semver.Version
}

// Compute describes the release at target.
//
// The previous release is the newest production version tag reachable from
// target, excluding tags on target itself. The commits since then make up the
// release. If target carries a version tag, that tag names the release;
// otherwise the next version is derived from the commits for channel.
func (c *Calculator) Compute(ctx context.Context, tags []git.Tag, opts *buildconfig.Options,
	target history.ObjectID, channel Channel,
) (*Release, error) {
	if opts == nil {
		opts = &buildconfig.Options{}
	}
	if channel == "" {
		channel = ChannelProduction
	}

	versions := versionTags(tags, opts.TagPrefix)

	last, err := c.lastReachable(ctx, versions, target)
	if err != nil {
		return nil, err
	}

	var since history.ObjectID
	if last != nil {
		since = last.tag.Target
		c.logger.Debug().
			Str("tag", last.tag.Name).
			Str("version", last.version.String()).
			Msg("found previous release")
	}

	commits, err := c.traverser.CommitsSince(ctx, target, since, nil)
	if err != nil {
		return nil, lhcerrors.Wrapf(err, "failed to collect commits for %s", target.Short())
	}

	patterns, err := c.patterns.CompileAll(opts.ProjectIDRegexes)
	if err != nil {
		return nil, err
	}

	rel := &Release{
		ObjectHash: target,
		Train:      opts.TrainDisplayName,
		Changes:    make(map[string][]Change),
	}
	if rel.Train == "" {
		rel.Train = opts.Train
	}

	var parsed []*ConventionalCommit
	for _, commit := range commits {
		cc, err := ParseConventional(commit.Message)
		if err != nil || (len(opts.CommitCategories) > 0 && !slices.Contains(opts.CommitCategories, cc.Header.Type)) {
			rel.BadCommits = append(rel.BadCommits, commit)
			continue
		}
		parsed = append(parsed, cc)
		rel.Changes[cc.Header.Type] = append(rel.Changes[cc.Header.Type], newChange(commit.ID, cc, opts, patterns))
	}
	rel.Categories = orderCategories(rel.Changes, opts.CommitCategories)

	if len(rel.BadCommits) > 0 {
		c.logger.Warn().
			Int("count", len(rel.BadCommits)).
			Msg("commits are not conventional or use an unconfigured type")
	}

	if tagged := taggedAt(versions, target); tagged != nil {
		rel.Version = tagged.version
		rel.TagName = tagged.tag.Name
		rel.setAnnotation(tagged.tag)
		return rel, nil
	}

	var previous []*semver.Version
	if last != nil {
		previous = append(previous, last.version)
		if channel.IsPrerelease() {
			for _, v := range versions {
				if VersionChannel(v.version) == channel && v.version.GreaterThan(last.version) {
					previous = append(previous, v.version)
				}
			}
		}
	}
	rel.Version = NextVersion(previous, BumpForAll(parsed, opts), channel)

	c.logger.Debug().
		Str("version", rel.Version.String()).
		Int("commits", len(commits)).
		Msg("computed next version")

	return rel, nil
}

// versionTags returns the tags that parse as versions, oldest version first.
func versionTags(tags []git.Tag, prefix string) []versionTag {
	var res []versionTag
	for _, t := range tags {
		if v, ok := ParseTagVersion(prefix, t.Name); ok {
			res = append(res, versionTag{tag: t, version: v})
		}
	}
	slices.SortStableFunc(res, func(a, b versionTag) int {
		return a.version.Compare(b.version)
	})
	return res
}

// lastReachable returns the newest production tag reachable from target,
// ignoring tags on target.
func (c *Calculator) lastReachable(ctx context.Context, versions []versionTag, target history.ObjectID) (*versionTag, error) {
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		if v.tag.Target == target || VersionChannel(v.version) != ChannelProduction {
			continue
		}
		ok, err := c.traverser.IsReachable(ctx, v.tag.Target, target)
		if err != nil {
			return nil, lhcerrors.Wrapf(err, "failed to check tag %s", v.tag.Name)
		}
		if ok {
			return &v, nil
		}
	}
	return nil, nil
}

// taggedAt returns the highest version tagged on target, if any.
func taggedAt(versions []versionTag, target history.ObjectID) *versionTag {
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].tag.Target == target {
			return &versions[i]
		}
	}
	return nil
}

// setAnnotation fills Body and Trailers from an annotated tag. Annotations
// written as conventional commits contribute their body and trailers only.
func (r *Release) setAnnotation(t git.Tag) {
	if !t.Annotated || t.Message == "" {
		return
	}
	if cc, err := ParseConventional(t.Message); err == nil {
		r.Body = cc.Body
		r.Trailers = cc.Trailers
		return
	}
	r.Body = t.Message
}

func newChange(id history.ObjectID, cc *ConventionalCommit, opts *buildconfig.Options, patterns []*regexp.Regexp) Change {
	ch := Change{
		Summary:    cc.Header.Summary,
		Body:       cc.Body,
		CommitHash: id.String(),
		ProjectIDs: []string{},
	}
	if opts.ProjectIDTrailer != "" {
		ch.ProjectIDs = append(ch.ProjectIDs, cc.TrailerValues(opts.ProjectIDTrailer)...)
	}
	for _, pid := range ProjectIDs(cc.Header.Summary+"\n"+cc.Body, opts.ProjectIDPrefix, patterns) {
		if !slices.Contains(ch.ProjectIDs, pid) {
			ch.ProjectIDs = append(ch.ProjectIDs, pid)
		}
	}
	return ch
}

// orderCategories lists configured categories first, in configuration
// order, then any others alphabetically.
func orderCategories(changes map[string][]Change, configured []string) []string {
	res := make([]string, 0, len(changes))
	for _, c := range configured {
		if _, ok := changes[c]; ok && !slices.Contains(res, c) {
			res = append(res, c)
		}
	}
	var rest []string
	for c := range changes {
		if !slices.Contains(res, c) {
			rest = append(rest, c)
		}
	}
	slices.Sort(rest)
	return append(res, rest...)
}

// Redact returns a copy of r without commit hashes and/or project IDs.
func (r *Release) Redact(hashes, projectIDs bool) *Release {
	cp := *r
	cp.Changes = make(map[string][]Change, len(r.Changes))
	for cat, changes := range r.Changes {
		out := make([]Change, len(changes))
		for i, ch := range changes {
			if hashes {
				ch.CommitHash = ""
			}
			if projectIDs {
				ch.ProjectIDs = []string{}
			}
			out[i] = ch
		}
		cp.Changes[cat] = out
	}
	return &cp
}
