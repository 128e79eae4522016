package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// RepoInfo contains information about a git repository.
type RepoInfo struct {
	// Root is the absolute path of the working tree.
	Root string

	// GitDir is the repository's git directory.
	GitDir string

	// IsWorktree indicates a linked worktree.
	IsWorktree bool

	// IsShallow indicates a shallow clone, where history walks stop early.
	IsShallow bool
}

// DetectRepo returns information about the git repository at the given path.
func DetectRepo(ctx context.Context, path string) (*RepoInfo, error) {
	toplevel, err := RunCommand(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lhcerrors.ErrNotGitRepo, err)
	}

	gitDir, err := RunCommand(ctx, path, "rev-parse", "--git-dir")
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(path, gitDir)
	}

	shallow, err := RunCommand(ctx, path, "rev-parse", "--is-shallow-repository")
	if err != nil {
		return nil, err
	}

	return &RepoInfo{
		Root:       toplevel,
		GitDir:     filepath.Clean(gitDir),
		IsWorktree: strings.Contains(gitDir, "worktrees/") || strings.Contains(gitDir, "worktrees\\"),
		IsShallow:  shallow == "true",
	}, nil
}

// CurrentBranch returns the checked out branch name, or "HEAD" when detached.
func CurrentBranch(ctx context.Context, path string) (string, error) {
	branch, err := RunCommand(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read current branch: %w", err)
	}
	return branch, nil
}
