package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

var errSample = fmt.Errorf("outer: %w", fmt.Errorf("inner"))

func TestOutputInterface(t *testing.T) {
	var buf bytes.Buffer
	var out Output = NewTTYOutput(&buf)
	assert.NotNil(t, out)
	out = NewStructuredOutput(&buf, FormatJSON)
	assert.NotNil(t, out)
}

func TestTTYOutput_Messages(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Success("parsed")
	out.Error(errSample)
	out.Warning("careful")
	out.Info("fyi")

	output := buf.String()
	assert.Contains(t, output, "✓")
	assert.Contains(t, output, "parsed")
	assert.Contains(t, output, "✗")
	assert.Contains(t, output, "outer: inner")
	assert.Contains(t, output, "⚠")
	assert.Contains(t, output, "careful")
	assert.Contains(t, output, "fyi")
}

func TestTTYOutput_ErrorSuggestion(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Error(lhcerrors.Wrap(lhcerrors.ErrBuildConfigNotFound, "no .lhc file"))
	assert.Equal(t,
		"✗ no .lhc file: lhc configuration file not found\n"+
			"  ▸ Try: Create a .lhc file at the repository root or set LHC_CONFIG_PATH.\n",
		buf.String())

	buf.Reset()
	out.Error(errSample)
	assert.NotContains(t, buf.String(), "Try:", "unknown errors carry no suggestion")
}

func TestTTYOutput_Table(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := NewTTYOutput(&buf)
	out.Table([]string{"HASH", "SUBJECT"}, [][]string{
		{"abcdef12", "feat: add button"},
		{"0123", "fix"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "HASH      SUBJECT", lines[0])
	assert.Equal(t, "abcdef12  feat: add button", lines[1])
	assert.Equal(t, "0123      fix", lines[2])
}

func TestTTYOutput_TableNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTTYOutput(&buf).Table(nil, [][]string{{"x"}})
	assert.Empty(t, buf.String())
}

func TestTTYOutput_Value(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	require.NoError(t, out.Value("1.2.3"))
	assert.Equal(t, "1.2.3\n", buf.String())

	buf.Reset()
	require.NoError(t, out.Value(map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a": 1}`, buf.String())
}

func TestStructuredOutput_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewStructuredOutput(&buf, FormatJSON)
	out.Error(errSample)

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]string{"type": "error", "message": "outer: inner", "details": "inner"}, got)

	buf.Reset()
	out.Table([]string{"a", "b"}, [][]string{{"1"}})
	assert.JSONEq(t, `[{"a": "1", "b": ""}]`, buf.String())

	buf.Reset()
	require.NoError(t, out.Value(map[string]string{"url": "https://x?a=b&c=d"}))
	assert.Contains(t, buf.String(), "a=b&c=d", "HTML characters are not escaped")
}

func TestStructuredOutput_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewStructuredOutput(&buf, FormatYAML)
	out.Success("done")

	var got map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]string{"type": "success", "message": "done"}, got)

	buf.Reset()
	out.Error(lhcerrors.ErrNotGitRepo)
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Change to a directory inside a git repository.", got["suggestion"])

	buf.Reset()
	require.NoError(t, out.Value(map[string][]string{"trains": {"ios", "android"}}))
	assert.Equal(t, "trains:\n  - ios\n  - android\n", buf.String())
}

func TestNewOutput_FormatSelection(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	out, err := NewOutput(&buf, FormatJSON)
	require.NoError(t, err)
	assert.IsType(t, &StructuredOutput{}, out)

	out, err = NewOutput(&buf, FormatYAML)
	require.NoError(t, err)
	assert.IsType(t, &StructuredOutput{}, out)

	out, err = NewOutput(&buf, "")
	require.NoError(t, err)
	assert.IsType(t, &TTYOutput{}, out)

	_, err = NewOutput(&buf, "xml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestHasColorSupport(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, HasColorSupport(), "NO_COLOR disables colors even when empty")
}

func TestPadRight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcd", padRight("abcd", 2))
	assert.Equal(t, "✓ ", padRight("✓", 2))
}
