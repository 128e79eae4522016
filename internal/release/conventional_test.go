package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

func TestParseConventional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		message  string
		expected *ConventionalCommit
	}{
		{
			name:    "subject only",
			message: "fix: handle empty input",
			expected: &ConventionalCommit{
				Header: Header{Type: "fix", Summary: "handle empty input"},
			},
		},
		{
			name:    "scope and bang",
			message: "feat(parser)!: drop legacy syntax\n",
			expected: &ConventionalCommit{
				Header: Header{Type: "feat", Scope: "parser", Breaking: true, Summary: "drop legacy syntax"},
			},
		},
		{
			name:    "body and trailers",
			message: "fix(api): retry on timeout\n\nThe client now retries.\n\nSecond paragraph.\n\nProject-Id: TEST-12\nReviewed-by: Ada",
			expected: &ConventionalCommit{
				Header: Header{Type: "fix", Scope: "api", Summary: "retry on timeout"},
				Body:   "The client now retries.\n\nSecond paragraph.",
				Trailers: []Trailer{
					{Key: "Project-Id", Value: "TEST-12"},
					{Key: "Reviewed-by", Value: "Ada"},
				},
			},
		},
		{
			name:    "breaking change trailer",
			message: "refactor: rename flags\n\nBREAKING CHANGE: --foo is now --bar",
			expected: &ConventionalCommit{
				Header:   Header{Type: "refactor", Summary: "rename flags"},
				Trailers: []Trailer{{Key: "BREAKING CHANGE", Value: "--foo is now --bar"}},
			},
		},
		{
			name:    "lowercase key is body",
			message: "docs: readme\n\nnote: this is prose",
			expected: &ConventionalCommit{
				Header: Header{Type: "docs", Summary: "readme"},
				Body:   "note: this is prose",
			},
		},
		{
			name:    "trailers stop at first non-trailer line",
			message: "chore: bump\n\nSee: this\nplain line\nKey: value",
			expected: &ConventionalCommit{
				Header:   Header{Type: "chore", Summary: "bump"},
				Body:     "See: this\nplain line",
				Trailers: []Trailer{{Key: "Key", Value: "value"}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cc, err := ParseConventional(tc.message)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cc)
		})
	}
}

func TestParseConventional_Invalid(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{
		"",
		"Merge branch 'feature'",
		"feat:missing space",
		"feat(): empty scope",
		"feat(a b): spaced scope",
		"fe at: spaced type",
		"feat: ",
	} {
		_, err := ParseConventional(msg)
		require.ErrorIs(t, err, lhcerrors.ErrInvalidCommitMessage, msg)
	}
}

func TestConventionalCommit_IsBreaking(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message  string
		expected bool
	}{
		{"feat: x", false},
		{"feat!: x", true},
		{"feat: x\n\nBREAKING CHANGE: y", true},
		{"feat: x\n\nBREAKING-CHANGE: y", true},
		{"feat: x\n\nBreaking-Change: y", false},
	}
	for _, tc := range tests {
		cc, err := ParseConventional(tc.message)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, cc.IsBreaking(), tc.message)
	}
}

func TestConventionalCommit_TrailerValues(t *testing.T) {
	t.Parallel()

	cc, err := ParseConventional("fix: x\n\nProject-Id: A-1\nOther: no\nProject-Id: A-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1", "A-2"}, cc.TrailerValues("Project-Id"))
	assert.Nil(t, cc.TrailerValues("Missing"))
}

func TestConventionalCommit_String(t *testing.T) {
	t.Parallel()

	msg := "feat(ui)!: new layout\n\nMore text.\n\nProject-Id: A-1"
	cc, err := ParseConventional(msg)
	require.NoError(t, err)
	assert.Equal(t, msg, cc.String())

	again, err := ParseConventional(cc.String())
	require.NoError(t, err)
	assert.Equal(t, cc, again)
}
