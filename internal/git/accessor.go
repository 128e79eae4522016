package git

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/history"
)

// commitFormat is the git log format read by Commit. Fields are NUL separated
// and the raw message comes last, so it may contain anything but NUL.
const commitFormat = "%H%x00%P%x00%an%x00%ae%x00%ct%x00%B"

// CLIAccessor implements history.Accessor using the git CLI.
//
// Commits are immutable, so fetched records and parent lists are cached for
// the accessor's lifetime. The cache is guarded by a mutex and the accessor
// is safe for concurrent use.
type CLIAccessor struct {
	workDir string
	logger  zerolog.Logger

	mu      sync.RWMutex
	commits map[history.ObjectID]*history.Commit
	parents map[history.ObjectID][]history.ObjectID
}

// AccessorOption configures a CLIAccessor.
type AccessorOption func(*CLIAccessor)

// WithLogger sets the logger used for debug tracing of git calls.
func WithLogger(logger zerolog.Logger) AccessorOption {
	return func(a *CLIAccessor) {
		a.logger = logger
	}
}

// NewAccessor creates a CLIAccessor for the repository containing workDir.
// Returns an error if the directory is not a git repository.
func NewAccessor(ctx context.Context, workDir string, opts ...AccessorOption) (*CLIAccessor, error) {
	if workDir == "" {
		return nil, fmt.Errorf("work directory cannot be empty: %w", lhcerrors.ErrEmptyValue)
	}

	a := &CLIAccessor{
		workDir: workDir,
		logger:  zerolog.Nop(),
		commits: make(map[history.ObjectID]*history.Commit),
		parents: make(map[history.ObjectID][]history.ObjectID),
	}
	for _, opt := range opts {
		opt(a)
	}

	if _, err := RunCommand(ctx, workDir, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %w", lhcerrors.ErrNotGitRepo, err)
	}

	return a, nil
}

// Resolve implements history.Accessor. It accepts anything git rev-parse
// understands that names a commit: hashes, abbreviations, branches, tags, HEAD~2.
func (a *CLIAccessor) Resolve(ctx context.Context, ref string) (history.ObjectID, error) {
	if ref == "" {
		return "", fmt.Errorf("reference: %w", lhcerrors.ErrEmptyValue)
	}

	if strings.HasPrefix(ref, "-") {
		return "", lhcerrors.Wrapf(lhcerrors.ErrInvalidReference, "%q", ref)
	}

	out, err := RunCommand(ctx, a.workDir, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", lhcerrors.Wrapf(lhcerrors.ErrInvalidReference,
			"%q is not a tag, branch, or commit hash", ref)
	}

	return history.ParseObjectID(out)
}

// Parents implements history.Accessor.
func (a *CLIAccessor) Parents(ctx context.Context, id history.ObjectID) ([]history.ObjectID, error) {
	a.mu.RLock()
	if c, ok := a.commits[id]; ok {
		a.mu.RUnlock()
		return slices.Clone(c.Parents), nil
	}
	if p, ok := a.parents[id]; ok {
		a.mu.RUnlock()
		return slices.Clone(p), nil
	}
	a.mu.RUnlock()

	out, err := RunCommand(ctx, a.workDir, "rev-list", "--parents", "-n", "1", string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read parents of %s: %w", id.Short(), err)
	}

	fields := strings.Fields(out)
	if len(fields) == 0 || fields[0] != string(id) {
		return nil, fmt.Errorf("unexpected rev-list output for %s: %w", id.Short(), lhcerrors.ErrGitOperation)
	}
	parents, err := parseIDs(fields[1:])
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.parents[id] = parents
	a.mu.Unlock()

	return slices.Clone(parents), nil
}

// Commit implements history.Accessor.
func (a *CLIAccessor) Commit(ctx context.Context, id history.ObjectID) (*history.Commit, error) {
	a.mu.RLock()
	cached, ok := a.commits[id]
	a.mu.RUnlock()
	if ok {
		return copyCommit(cached), nil
	}

	out, err := runCommand(ctx, a.workDir, "log", "-1", "--no-show-signature", "--format="+commitFormat, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", id.Short(), err)
	}

	c, err := parseCommit(out)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", id.Short(), err)
	}
	a.logger.Debug().Str("commit", c.ID.Short()).Int("parents", len(c.Parents)).Msg("fetched commit")

	a.mu.Lock()
	a.commits[id] = c
	a.mu.Unlock()

	return copyCommit(c), nil
}

// CachedCommits returns how many commit records are cached.
func (a *CLIAccessor) CachedCommits() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.commits)
}

var errMalformedLog = errors.New("malformed git log output")

func parseCommit(out string) (*history.Commit, error) {
	fields := strings.SplitN(out, "\x00", 6)
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: %w", errMalformedLog, lhcerrors.ErrGitOperation)
	}

	id, err := history.ParseObjectID(fields[0])
	if err != nil {
		return nil, err
	}
	parents, err := parseIDs(strings.Fields(fields[1]))
	if err != nil {
		return nil, err
	}
	seconds, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp %q: %w", errMalformedLog, fields[4], lhcerrors.ErrGitOperation)
	}

	return &history.Commit{
		ID:      id,
		Parents: parents,
		Author:  fields[2],
		Email:   fields[3],
		Date:    time.Unix(seconds, 0).UTC(),
		Message: strings.TrimRight(fields[5], "\n"),
	}, nil
}

func parseIDs(fields []string) ([]history.ObjectID, error) {
	ids := make([]history.ObjectID, 0, len(fields))
	for _, f := range fields {
		oid, err := history.ParseObjectID(f)
		if err != nil {
			return nil, err
		}
		ids = append(ids, oid)
	}
	return ids, nil
}

func copyCommit(c *history.Commit) *history.Commit {
	cp := *c
	cp.Parents = slices.Clone(c.Parents)
	return &cp
}
