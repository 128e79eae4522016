package release

import (
	"encoding/json"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/lhc/internal/buildconfig"
)

const (
	hashA = "0123456789abcdef0123456789abcdef01234567"
	hashB = "89abcdef0123456789abcdef0123456789abcdef"
)

func sampleRelease() *Release {
	return &Release{
		Version:    semver.MustParse("2.1.0"),
		ObjectHash: hashA,
		Changes: map[string][]Change{
			"feat": {
				{Summary: "add export", CommitHash: hashA, ProjectIDs: []string{"TEST-1", "TEST-2"}},
				{Summary: "add import", CommitHash: hashB, ProjectIDs: []string{}},
			},
			"fix":   {{Summary: "fix crash", CommitHash: hashB, ProjectIDs: []string{}}},
			"chore": {{Summary: "tidy", CommitHash: "", ProjectIDs: []string{}}},
		},
		Categories: []string{"feat", "fix", "chore"},
	}
}

func TestChange_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "- 01234567: add export [TEST-1] [TEST-2]",
		Change{Summary: "add export", CommitHash: hashA, ProjectIDs: []string{"TEST-1", "TEST-2"}}.String())
	assert.Equal(t, "- tidy", Change{Summary: "tidy"}.String())
}

func TestRelease_Describe(t *testing.T) {
	t.Parallel()

	rel := sampleRelease()

	expected := "# Version 2.1.0 (Not Tagged):\n\n" +
		"## feat:\n" +
		"- 01234567: add export [TEST-1] [TEST-2]\n" +
		"- 89abcdef: add import\n" +
		"## fix:\n" +
		"- 89abcdef: fix crash\n" +
		"## chore:\n" +
		"- tidy"
	assert.Equal(t, expected, rel.Describe(nil))
}

func TestRelease_DescribeWithOptions(t *testing.T) {
	t.Parallel()

	rel := sampleRelease()
	rel.TagName = "v2.1.0"
	rel.Train = "iOS App"
	rel.Body = "Big release."

	opts := &buildconfig.Options{
		CommitCategories:           []string{"feat", "fix", "chore"},
		CategoryDisplayNames:       []string{"New Features", "Bug Fixes", "Chores"},
		ChangelogExcludeCategories: []string{"chore"},
	}

	expected := "# iOS App 2.1.0:\n\n" +
		"Big release.\n\n" +
		"## New Features:\n" +
		"- 01234567: add export [TEST-1] [TEST-2]\n" +
		"- 89abcdef: add import\n" +
		"## Bug Fixes:\n" +
		"- 89abcdef: fix crash"
	assert.Equal(t, expected, rel.Describe(opts))
}

func TestRelease_DescribeTitleCase(t *testing.T) {
	t.Parallel()

	rel := sampleRelease()
	opts := &buildconfig.Options{ChangelogExcludeCategories: []string{"fix", "chore"}}

	out := rel.Describe(opts, WithTitleCasedCategories())
	assert.Contains(t, out, "## Feat:\n")
	assert.NotContains(t, out, "fix crash")
}

func TestRelease_DescribeEmpty(t *testing.T) {
	t.Parallel()

	rel := &Release{Version: semver.MustParse("0.0.1"), TagName: "v0.0.1"}
	assert.Equal(t, "# Version 0.0.1:", rel.Describe(nil))
}

func TestRelease_Document(t *testing.T) {
	t.Parallel()

	rel := sampleRelease()
	rel.Version = semver.MustParse("2.1.0-beta.3")
	rel.Trailers = []Trailer{{Key: "Approved-by", Value: "QA"}}

	doc := rel.Document(&buildconfig.Options{ChangelogExcludeCategories: []string{"chore"}})
	assert.Equal(t, "2.1.0-beta.3", doc.Version)
	assert.Equal(t, "2.1.0", doc.ShortVersion)
	assert.Equal(t, ChannelBeta, doc.Channel)
	assert.NotContains(t, doc.Changes, "chore")
	assert.Equal(t, map[string]string{"Approved-by": "QA"}, doc.TagTrailers)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"version", "shortVersion", "object_hash", "changes", "channel", "tag_trailers"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "tag_name", "untagged releases omit tag_name")

	feat := raw["changes"].(map[string]any)["feat"].([]any)[0].(map[string]any)
	assert.Equal(t, "add export", feat["summary"])
	assert.Equal(t, hashA, feat["commitHash"])
	assert.Equal(t, []any{"TEST-1", "TEST-2"}, feat["projectIds"])

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "shortVersion: 2.1.0\n")
	assert.Contains(t, string(out), "channel: beta\n")
}
