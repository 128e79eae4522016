package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/lhc/internal/buildconfig"
	"github.com/mrz1836/lhc/internal/errors"
)

func TestResolveExecutionContext(t *testing.T) {
	dir := testRepo(t)
	commit(t, dir, "chore: init")
	writeBuildConfig(t, dir, "train = android\ntag_prefix[train=ios] = ios/v\n")
	sub := filepath.Join(dir, "pkg", "sub")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	ec, err := ResolveExecutionContext(context.Background(), &GlobalFlags{Repo: sub, Train: "ios", Output: OutputJSON}, zerolog.Nop())
	require.NoError(t, err)

	root, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(ec.Root)
	require.NoError(t, err)
	assert.Equal(t, root, gotRoot)

	require.NotNil(t, ec.BuildConfig)
	assert.Equal(t, OutputJSON, ec.Format())
	assert.Equal(t, "ios", ec.Settings.Train)

	opts, err := ec.Options()
	require.NoError(t, err)
	assert.Equal(t, "ios", opts.Train)
	assert.Equal(t, "ios/v", opts.TagPrefix)
}

func TestResolveExecutionContext_NoBuildConfig(t *testing.T) {
	dir := testRepo(t)

	ec, err := ResolveExecutionContext(context.Background(), &GlobalFlags{Repo: dir, Channel: "rc"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, ec.BuildConfig)
	require.ErrorIs(t, ec.RequireBuildConfig(), errors.ErrBuildConfigNotFound)

	opts, err := ec.Options()
	require.NoError(t, err)
	assert.Equal(t, &buildconfig.Options{Channel: "rc"}, opts)

	_, err = ec.Evaluate("", nil)
	require.ErrorIs(t, err, errors.ErrBuildConfigNotFound)
}

func TestResolveExecutionContext_MissingExplicitConfig(t *testing.T) {
	dir := testRepo(t)

	_, err := ResolveExecutionContext(context.Background(), &GlobalFlags{Repo: dir, ConfigFile: "missing.lhc"}, zerolog.Nop())
	require.Error(t, err)
}

func TestExecutionContext_Defines(t *testing.T) {
	dir := testRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".lhc.d"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lhc.d", "config.yaml"),
		[]byte("defines:\n  - CONFIGURATION=Debug\n  - SIGN\n"), 0o600))

	ec, err := ResolveExecutionContext(context.Background(), &GlobalFlags{Repo: dir}, zerolog.Nop())
	require.NoError(t, err)

	d, err := ec.Defines("CONFIGURATION=Release")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"CONFIGURATION": "Release", "SIGN": "YES"}, d.Strings())

	_, err = ec.Defines("9=x")
	require.ErrorIs(t, err, errors.ErrInvalidDefine)
}
