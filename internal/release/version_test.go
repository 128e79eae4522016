package release

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mrz1836/lhc/internal/buildconfig"
	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

func versions(t *testing.T, raw ...string) []*semver.Version {
	t.Helper()
	out := make([]*semver.Version, 0, len(raw))
	for _, r := range raw {
		v, err := semver.StrictNewVersion(r)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestParseChannel(t *testing.T) {
	t.Parallel()

	for _, c := range Channels() {
		got, err := ParseChannel(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseChannel("")
	require.NoError(t, err)
	assert.Equal(t, ChannelProduction, got)

	_, err = ParseChannel("nightly")
	require.ErrorIs(t, err, lhcerrors.ErrInvalidChannel)

	assert.True(t, ChannelRC.IsPrerelease())
	assert.False(t, ChannelProduction.IsPrerelease())
}

func TestVersionChannel(t *testing.T) {
	t.Parallel()

	tests := map[string]Channel{
		"1.0.0":             ChannelProduction,
		"1.0.0-beta.2":      ChannelBeta,
		"1.0.0-rc.1":        ChannelRC,
		"1.0.0-build.alpha": ChannelAlpha,
		"1.0.0-nightly":     ChannelProduction,
	}
	for raw, expected := range tests {
		assert.Equal(t, expected, VersionChannel(semver.MustParse(raw)), raw)
	}
}

func TestParseTagVersion(t *testing.T) {
	t.Parallel()

	v, ok := ParseTagVersion("ios/v", "ios/v1.2.3")
	require.True(t, ok)
	assert.Equal(t, "1.2.3", v.String())

	_, ok = ParseTagVersion("ios/v", "android/v1.2.3")
	assert.False(t, ok)

	_, ok = ParseTagVersion("", "v1.2.3")
	assert.False(t, ok, "prefix must be configured")

	_, ok = ParseTagVersion("", "1.2")
	assert.False(t, ok)
}

func TestParseBump(t *testing.T) {
	t.Parallel()

	tests := map[string]Bump{
		"patch": BumpPatch,
		"minor": BumpMinor,
		"major": BumpMajor,
		"beta":  BumpPrerelease,
	}
	for raw, expected := range tests {
		got, err := ParseBump(raw)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}

	_, err := ParseBump("huge")
	require.ErrorIs(t, err, lhcerrors.ErrInvalidVersion)
	_, err = ParseBump("production")
	require.Error(t, err)

	assert.Less(t, BumpPrerelease, BumpPatch)
	assert.Less(t, BumpMinor, BumpMajor)
}

func TestBumpFor(t *testing.T) {
	t.Parallel()

	opts := &buildconfig.Options{
		CategoryIncrements: map[string]string{"perf": "minor", "feat": "patch", "docs": "bogus"},
	}

	tests := []struct {
		message  string
		opts     *buildconfig.Options
		expected Bump
	}{
		{"fix: x", nil, BumpPatch},
		{"feat: x", nil, BumpMinor},
		{"feature: x", nil, BumpMinor},
		{"fix!: x", nil, BumpMajor},
		{"perf: x", opts, BumpMinor},
		{"feat: x", opts, BumpPatch},
		{"feat!: x", opts, BumpMajor},
		{"docs: x", opts, BumpPatch},
	}
	for _, tc := range tests {
		cc, err := ParseConventional(tc.message)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, BumpFor(cc, tc.opts), tc.message)
	}
}

func TestBumpForAll(t *testing.T) {
	t.Parallel()

	parse := func(msgs ...string) []*ConventionalCommit {
		out := make([]*ConventionalCommit, 0, len(msgs))
		for _, m := range msgs {
			cc, err := ParseConventional(m)
			require.NoError(t, err)
			out = append(out, cc)
		}
		return out
	}

	assert.Equal(t, BumpPatch, BumpForAll(nil, nil))
	assert.Equal(t, BumpMinor, BumpForAll(parse("fix: a", "feat: b", "chore: c"), nil))
	assert.Equal(t, BumpMajor, BumpForAll(parse("fix: a", "chore!: c", "feat: b"), nil))

	opts := &buildconfig.Options{CategoryIncrements: map[string]string{"fix": "alpha"}}
	assert.Equal(t, BumpPatch, BumpForAll(parse("fix: a"), opts), "never below patch")
}

func TestNextVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous []string
		bump     Bump
		channel  Channel
		expected string
	}{
		{"no releases", nil, BumpMajor, ChannelProduction, "0.0.1"},
		{"only prereleases", []string{"1.0.0-beta.1"}, BumpMinor, ChannelBeta, "0.0.1"},
		{"patch", []string{"1.2.3"}, BumpPatch, ChannelProduction, "1.2.4"},
		{"minor", []string{"1.2.3"}, BumpMinor, ChannelProduction, "1.3.0"},
		{"major", []string{"1.2.3"}, BumpMajor, ChannelProduction, "2.0.0"},
		{"newest production wins", []string{"1.4.0", "1.2.3", "2.0.0-rc.1"}, BumpPatch, ChannelProduction, "1.4.1"},
		{"first prerelease", []string{"1.2.3"}, BumpMinor, ChannelBeta, "1.3.0-beta.1"},
		{"continue prerelease", []string{"1.2.3", "1.3.0-beta.1", "1.3.0-beta.2"}, BumpMinor, ChannelBeta, "1.3.0-beta.3"},
		{"numeric prerelease order", []string{"1.2.3", "1.3.0-rc.10", "1.3.0-rc.9"}, BumpMinor, ChannelRC, "1.3.0-rc.11"},
		{"other short version restarts", []string{"1.2.3", "1.2.4-beta.5"}, BumpMinor, ChannelBeta, "1.3.0-beta.1"},
		{"other channel ignored", []string{"1.2.3", "1.3.0-alpha.4"}, BumpMinor, ChannelBeta, "1.3.0-beta.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NextVersion(versions(t, tc.previous...), tc.bump, tc.channel)
			assert.Equal(t, tc.expected, got.String())
		})
	}
}

func TestNextVersion_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		major := rapid.Uint64Range(0, 20).Draw(t, "major")
		minor := rapid.Uint64Range(0, 20).Draw(t, "minor")
		patch := rapid.Uint64Range(0, 20).Draw(t, "patch")
		bump := rapid.SampledFrom([]Bump{BumpPatch, BumpMinor, BumpMajor}).Draw(t, "bump")
		channel := rapid.SampledFrom(Channels()).Draw(t, "channel")

		last := semver.New(major, minor, patch, "", "")
		next := NextVersion([]*semver.Version{last}, bump, channel)

		if !ShortVersion(next).GreaterThan(last) {
			t.Fatalf("next %s is not greater than %s", next, last)
		}
		if VersionChannel(next) != channel {
			t.Fatalf("next %s is on channel %s, expected %s", next, VersionChannel(next), channel)
		}
	})
}
