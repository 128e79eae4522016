package cli

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/lhc/internal/errors"
)

func TestExitCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 1, ExitError)
	assert.Equal(t, 2, ExitInvalidInput)
}

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddGlobalFlags(cmd, flags)

	cmd.SetArgs([]string{"-o", "json", "-t", "ios", "-c", "beta", "--repo", "/tmp/x", "--config", "a.lhc", "-v"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, GlobalFlags{
		Output:     "json",
		Verbose:    true,
		Repo:       "/tmp/x",
		ConfigFile: "a.lhc",
		Train:      "ios",
		Channel:    "beta",
	}, *flags)
}

func TestGlobalFlags_Defaults(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	assert.Empty(t, flags.Output)
	assert.Equal(t, ".", flags.Repo)
	assert.False(t, flags.Verbose)
	assert.False(t, flags.Quiet)
}

func TestBindGlobalFlags(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.False(t, v.GetBool("verbose"))

	t.Setenv("LHC_VERBOSE", "true")
	assert.True(t, v.GetBool("verbose"), "LHC_VERBOSE enables debug logging")
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   bool
	}{
		{"", true},
		{"text", true},
		{"json", true},
		{"yaml", true},
		{"JSON", false},
		{"xml", false},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsValidOutputFormat(tc.format))
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", stderrors.New("boom"), ExitError},
		{"lint failure", fmt.Errorf("x: %w", errors.ErrLint), ExitError},
		{"exit code 2 wrapper", errors.NewExitCode2Error(stderrors.New("bad")), ExitInvalidInput},
		{"invalid output", fmt.Errorf("x: %w", errors.ErrInvalidOutputFormat), ExitInvalidInput},
		{"invalid define", errors.Wrap(errors.ErrInvalidDefine, "1x"), ExitInvalidInput},
		{"invalid channel", errors.Wrap(errors.ErrInvalidChannel, "nightly"), ExitInvalidInput},
		{"invalid argument", errors.ErrInvalidArgument, ExitInvalidInput},
		{"unknown flag", stderrors.New("unknown flag: --nope"), ExitInvalidInput},
		{"arg count", stderrors.New("accepts 1 arg(s), received 0"), ExitInvalidInput},
		{"exclusive flags", stderrors.New("if any flags in the group [verbose quiet] are set none of the others can be"), ExitInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}
