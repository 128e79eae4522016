package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/lhc/internal/constants"
)

// testEnv isolates a test from the user's settings, log directory and CI
// variables. Tests using it cannot run in parallel.
func testEnv(t *testing.T) {
	t.Helper()

	t.Setenv(constants.EnvHome, t.TempDir())
	t.Setenv("NO_COLOR", "1")
	for _, name := range []string{
		constants.EnvConfigPath,
		constants.EnvTrainName,
		constants.EnvReleaseChannel,
		constants.EnvCICommitBeforeSHA,
		constants.EnvCIMergeRequestDiffBaseSHA,
		constants.EnvCIDefaultBranch,
		constants.EnvCICommitBranch,
		constants.EnvCIMergeRequestSourceBranch,
		"LHC_TRAIN",
		"LHC_CHANNEL",
		"LHC_OUTPUT_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

// testRepo creates an empty repository on branch main.
func testRepo(t *testing.T) string {
	t.Helper()

	testEnv(t)
	dir := t.TempDir()
	runGit(t, dir, "init", "-q", "-b", "main")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "config", "tag.gpgsign", "false")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

//nolint:gochecknoglobals // monotonically increasing commit dates
var commitClock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// commit makes an empty commit and returns its hash. Successive commits get
// increasing dates.
func commit(t *testing.T, dir, message string) string {
	t.Helper()

	commitClock = commitClock.Add(time.Minute)
	date := commitClock.Format(time.RFC3339)

	cmd := exec.CommandContext(context.Background(), "git", "commit", "-q", "--allow-empty", "-m", message)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git commit: %s", out)

	return runGit(t, dir, "rev-parse", "HEAD")
}

func writeBuildConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lhc"), []byte(content), 0o600))
}

// runCLI executes the root command against the repository in dir and
// returns what it wrote to stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--repo", dir}, args...))

	err := executeRoot(context.Background(), cmd)
	t.Cleanup(CloseLogFile)
	return out.String(), err
}
