package history

import (
	"context"
	"crypto/sha1" //nolint:gosec // test IDs only
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// graph builds in-memory commit graphs from short names.
type graph struct {
	acc  *MemoryAccessor
	base time.Time
}

func newGraph() *graph {
	return &graph{
		acc:  NewMemoryAccessor(),
		base: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func id(name string) ObjectID {
	sum := sha1.Sum([]byte(name)) //nolint:gosec // test IDs only
	return ObjectID(hex.EncodeToString(sum[:]))
}

// add creates commit name at base+minutes with the given parents.
func (g *graph) add(name string, minutes int, parents ...string) ObjectID {
	c := &Commit{
		ID:      id(name),
		Author:  "Test",
		Email:   "test@lhc.local",
		Date:    g.base.Add(time.Duration(minutes) * time.Minute),
		Message: name + "\n\nbody of " + name,
	}
	for _, p := range parents {
		c.Parents = append(c.Parents, id(p))
	}
	g.acc.Add(c)
	g.acc.SetRef(name, c.ID)
	return c.ID
}

func subjects(commits []*Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Subject()
	}
	return out
}

// linear returns l -> c2 -> c3 -> s -> root, newest first.
func linear() *graph {
	g := newGraph()
	g.add("root", 0)
	g.add("s", 1, "root")
	g.add("c3", 2, "s")
	g.add("c2", 3, "c3")
	g.add("l", 4, "c2")
	return g
}

// diamond returns l with parents a and b, both children of s.
func diamond() *graph {
	g := newGraph()
	g.add("root", 0)
	g.add("s", 1, "root")
	g.add("a", 2, "s")
	g.add("b", 3, "s")
	g.add("l", 4, "a", "b")
	return g
}

func TestCommitsSince_LinearChain(t *testing.T) {
	t.Parallel()

	g := linear()
	commits, err := New(g.acc).CommitsSince(context.Background(), id("l"), id("s"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"l", "c2", "c3"}, subjects(commits))
}

func TestCommitsSince_StartIsLeaf(t *testing.T) {
	t.Parallel()

	g := linear()
	commits, err := New(g.acc).CommitsSince(context.Background(), id("l"), id("l"), nil)
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestCommitsSince_WholeHistory(t *testing.T) {
	t.Parallel()

	g := linear()
	commits, err := New(g.acc).CommitsSince(context.Background(), id("l"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"l", "c2", "c3", "s", "root"}, subjects(commits))
}

func TestCommitsSince_UnreachableStart(t *testing.T) {
	t.Parallel()

	g := linear()
	g.add("side", 10, "root")

	_, err := New(g.acc).CommitsSince(context.Background(), id("l"), id("side"), nil)
	require.ErrorIs(t, err, lhcerrors.ErrReferenceNotFoundFromLeaf)

	var rerr *ReferenceNotFoundError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, id("side"), rerr.Reference)
	assert.Equal(t, id("l"), rerr.Leaf)
}

func TestCommitsSince_Diamond(t *testing.T) {
	t.Parallel()

	t.Run("stops at common ancestor", func(t *testing.T) {
		t.Parallel()

		g := diamond()
		commits, err := New(g.acc).CommitsSince(context.Background(), id("l"), id("s"), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"l", "b", "a"}, subjects(commits))
		assert.Zero(t, g.acc.Lookups(id("s")))
	})

	t.Run("visits common ancestor once", func(t *testing.T) {
		t.Parallel()

		g := diamond()
		commits, err := New(g.acc).CommitsSince(context.Background(), id("l"), "", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"l", "b", "a", "s", "root"}, subjects(commits))
		assert.Equal(t, 1, g.acc.Lookups(id("s")))
		assert.Equal(t, 1, g.acc.Lookups(id("root")))
	})
}

func TestCommitsSince_OrdersByDateNotTopology(t *testing.T) {
	t.Parallel()

	g := newGraph()
	g.add("root", 0)
	// parent committed with a clock ahead of its child
	g.add("skewed", 30, "root")
	g.add("child", 5, "skewed")

	commits, err := New(g.acc).CommitsSince(context.Background(), id("child"), id("root"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"skewed", "child"}, subjects(commits))
}

func TestCommitsSince_EqualDatesKeepDiscoveryOrder(t *testing.T) {
	t.Parallel()

	g := newGraph()
	g.add("root", 0)
	g.add("p2", 1, "root")
	g.add("p1", 1, "p2")
	g.add("leaf", 1, "p1")

	commits, err := New(g.acc).CommitsSince(context.Background(), id("leaf"), id("root"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf", "p1", "p2"}, subjects(commits))
}

func TestCommitsSince_PredicateFiltersWithoutPruning(t *testing.T) {
	t.Parallel()

	g := newGraph()
	g.add("fix: root", 0)
	g.add("fix: old", 1, "fix: root")
	g.add("chore: middle", 2, "fix: old")
	g.add("fix: new", 3, "chore: middle")

	keepFixes := func(c *Commit) bool {
		return c.Subject() != "chore: middle"
	}

	commits, err := New(g.acc).CommitsSince(context.Background(), id("fix: new"), id("fix: root"), keepFixes)
	require.NoError(t, err)
	assert.Equal(t, []string{"fix: new", "fix: old"}, subjects(commits))
}

func TestCommitsSince_MissingObject(t *testing.T) {
	t.Parallel()

	g := newGraph()
	g.add("orphan", 1, "gone")

	_, err := New(g.acc).CommitsSince(context.Background(), id("orphan"), "", nil)
	require.ErrorIs(t, err, lhcerrors.ErrObjectNotFound)
	require.ErrorIs(t, err, lhcerrors.ErrInvalidReference, "accessor cause is preserved")

	var oerr *ObjectNotFoundError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, id("gone"), oerr.ID)
}

func TestIsReachable(t *testing.T) {
	t.Parallel()

	g := diamond()
	g.add("side", 9, "root")
	tr := New(g.acc)

	tests := []struct {
		name     string
		target   string
		leaf     string
		expected bool
	}{
		{"leaf itself", "l", "l", true},
		{"direct parent", "a", "l", true},
		{"second parent", "b", "l", true},
		{"common ancestor", "s", "l", true},
		{"root", "root", "l", true},
		{"descendant", "l", "a", false},
		{"sibling branch", "side", "l", false},
		{"sibling parent", "a", "b", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ok, err := tr.IsReachable(context.Background(), id(tc.target), id(tc.leaf))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}
}

func TestIsReachable_MissingObject(t *testing.T) {
	t.Parallel()

	g := newGraph()
	g.add("orphan", 1, "gone")

	_, err := New(g.acc).IsReachable(context.Background(), id("elsewhere"), id("orphan"))
	require.ErrorIs(t, err, lhcerrors.ErrObjectNotFound)
}

func TestIsReachable_Concurrent(t *testing.T) {
	t.Parallel()

	g := diamond()
	tr := New(g.acc)

	var eg errgroup.Group
	for i := 0; i < 16; i++ {
		eg.Go(func() error {
			ok, err := tr.IsReachable(context.Background(), id("root"), id("l"))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("root should be reachable")
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
}

func TestCommitsBetween(t *testing.T) {
	t.Parallel()

	g := linear()
	tr := New(g.acc)

	commits, err := tr.CommitsBetween(context.Background(), "s", "l", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"l", "c2", "c3"}, subjects(commits))

	commits, err = tr.CommitsBetween(context.Background(), "", "c3", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "s", "root"}, subjects(commits))

	_, err = tr.CommitsBetween(context.Background(), "nope", "l", nil)
	require.ErrorIs(t, err, lhcerrors.ErrInvalidReference)
}

func TestParseObjectID(t *testing.T) {
	t.Parallel()

	sha1ID := "0123456789ABCDEF0123456789abcdef01234567"
	parsed, err := ParseObjectID(sha1ID)
	require.NoError(t, err)
	assert.Equal(t, ObjectID("0123456789abcdef0123456789abcdef01234567"), parsed)
	assert.Equal(t, "01234567", parsed.Short())

	sha256ID := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	_, err = ParseObjectID(sha256ID)
	require.NoError(t, err)

	for _, bad := range []string{"", "abc", "zz23456789abcdef0123456789abcdef01234567"} {
		_, err := ParseObjectID(bad)
		require.ErrorIs(t, err, lhcerrors.ErrInvalidObjectID, bad)
	}
}

func TestCommit_Subject(t *testing.T) {
	t.Parallel()

	c := &Commit{Message: "feat: add thing  \n\nDetails"}
	assert.Equal(t, "feat: add thing", c.Subject())
	assert.False(t, c.IsMerge())
}
