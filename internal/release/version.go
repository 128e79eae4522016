package release

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/mrz1836/lhc/internal/buildconfig"
	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// Channel is the audience a release is staged for.
type Channel string

// Release channels, from least to most public.
const (
	ChannelAlpha      Channel = "alpha"
	ChannelBeta       Channel = "beta"
	ChannelRC         Channel = "rc"
	ChannelProduction Channel = "production"
)

// Channels returns every known channel.
func Channels() []Channel {
	return []Channel{ChannelAlpha, ChannelBeta, ChannelRC, ChannelProduction}
}

// ParseChannel validates a channel name. An empty name means production.
func ParseChannel(s string) (Channel, error) {
	if s == "" {
		return ChannelProduction, nil
	}
	c := Channel(s)
	if !slices.Contains(Channels(), c) {
		return "", lhcerrors.Wrapf(lhcerrors.ErrInvalidChannel, "%q (expected one of alpha, beta, rc, production)", s)
	}
	return c, nil
}

// IsPrerelease reports whether versions on the channel carry a prerelease suffix.
func (c Channel) IsPrerelease() bool {
	return c == ChannelAlpha || c == ChannelBeta || c == ChannelRC
}

func (c Channel) String() string {
	return string(c)
}

// VersionChannel returns the channel named by the first matching prerelease
// identifier of v, or production when there is none.
func VersionChannel(v *semver.Version) Channel {
	if v.Prerelease() == "" {
		return ChannelProduction
	}
	for _, id := range strings.Split(v.Prerelease(), ".") {
		if c := Channel(id); c.IsPrerelease() {
			return c
		}
	}
	return ChannelProduction
}

// ShortVersion strips prerelease and build metadata.
func ShortVersion(v *semver.Version) *semver.Version {
	return semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
}

// ParseTagVersion strips prefix from a tag name and parses the remainder as
// a strict semantic version. ok is false for tags that are not versions.
func ParseTagVersion(prefix, tag string) (v *semver.Version, ok bool) {
	if !strings.HasPrefix(tag, prefix) {
		return nil, false
	}
	v, err := semver.StrictNewVersion(strings.TrimPrefix(tag, prefix))
	if err != nil {
		return nil, false
	}
	return v, true
}

// Bump is a semantic version increment. Bumps are ordered: a set of changes
// bumps by its largest member.
type Bump int

// Bumps in increasing order.
const (
	BumpPrerelease Bump = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

// ParseBump parses "patch", "minor", "major" or a prerelease channel name.
func ParseBump(s string) (Bump, error) {
	switch s {
	case "patch":
		return BumpPatch, nil
	case "minor":
		return BumpMinor, nil
	case "major":
		return BumpMajor, nil
	}
	if Channel(s).IsPrerelease() {
		return BumpPrerelease, nil
	}
	return 0, lhcerrors.Wrapf(lhcerrors.ErrInvalidVersion, "unknown version increment %q", s)
}

func (b Bump) String() string {
	switch b {
	case BumpPrerelease:
		return "prerelease"
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	default:
		return fmt.Sprintf("Bump(%d)", int(b))
	}
}

// Apply increments v. Prerelease bumps increment the patch number like
// BumpPatch; the channel suffix is added by NextVersion.
func (b Bump) Apply(v *semver.Version) *semver.Version {
	switch b {
	case BumpMajor:
		return semver.New(v.Major()+1, 0, 0, "", "")
	case BumpMinor:
		return semver.New(v.Major(), v.Minor()+1, 0, "", "")
	default:
		return semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
	}
}

// BumpFor returns the increment a single commit asks for: breaking changes
// are major, then the configured categories_increment for the commit type,
// then minor for feat types, then patch.
func BumpFor(c *ConventionalCommit, opts *buildconfig.Options) Bump {
	if c.IsBreaking() {
		return BumpMajor
	}
	if opts != nil {
		if raw, ok := opts.CategoryIncrements[c.Header.Type]; ok {
			if b, err := ParseBump(raw); err == nil {
				return b
			}
		}
	}
	if strings.HasPrefix(c.Header.Type, "feat") {
		return BumpMinor
	}
	return BumpPatch
}

// BumpForAll returns the largest bump among commits, never less than patch.
func BumpForAll(commits []*ConventionalCommit, opts *buildconfig.Options) Bump {
	result := BumpPatch
	for _, c := range commits {
		result = max(result, BumpFor(c, opts))
		if result == BumpMajor {
			break
		}
	}
	return result
}

// NextVersion computes the version following previous for the given bump.
//
// The last production version is bumped; with no production versions the
// result is 0.0.1. On a prerelease channel the result carries a
// "<channel>.N" suffix, where N continues the newest earlier prerelease of
// that channel with the same major.minor.patch and starts at 1 otherwise.
func NextVersion(previous []*semver.Version, bump Bump, channel Channel) *semver.Version {
	sorted := slices.Clone(previous)
	slices.SortStableFunc(sorted, func(a, b *semver.Version) int {
		return a.Compare(b)
	})

	var lastProduction, lastChannel *semver.Version
	for _, v := range sorted {
		switch VersionChannel(v) {
		case ChannelProduction:
			lastProduction = v
		case channel:
			lastChannel = v
		}
	}

	if lastProduction == nil {
		return semver.New(0, 0, 1, "", "")
	}

	next := bump.Apply(lastProduction)
	if !channel.IsPrerelease() {
		return next
	}

	n := 1
	if lastChannel != nil && ShortVersion(lastChannel).Equal(next) {
		n = prereleaseNumber(lastChannel, channel) + 1
	}
	return semver.New(next.Major(), next.Minor(), next.Patch(), fmt.Sprintf("%s.%d", channel, n), "")
}

// prereleaseNumber returns the number following the channel identifier, or 0.
func prereleaseNumber(v *semver.Version, channel Channel) int {
	ids := strings.Split(v.Prerelease(), ".")
	i := slices.Index(ids, string(channel))
	if i < 0 || i+1 >= len(ids) {
		return 0
	}
	n, err := strconv.Atoi(ids[i+1])
	if err != nil {
		return 0
	}
	return n
}
