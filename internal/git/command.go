// Package git reads commit history from a repository through the git CLI.
// This file provides shared git command execution utilities.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// RunCommand executes a git command in the specified directory and returns its
// trimmed output. All errors are wrapped with ErrGitOperation and include
// stderr for debugging.
func RunCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	out, err := runCommand(ctx, workDir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runCommand is RunCommand without trimming, for output where trailing
// whitespace matters (commit messages).
func runCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally, not user input
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(stderr.String()), lhcerrors.ErrGitOperation)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], lhcerrors.ErrGitOperation)
	}

	return stdout.String(), nil
}
