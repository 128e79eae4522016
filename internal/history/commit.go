// Package history walks commit graphs.
//
// The traversals only need point queries against an Accessor: fetch a commit,
// list its parents, resolve a reference. They expand a breadth-first frontier
// from a leaf commit with an explicit queue and a visited set, so deep
// histories and merge-heavy graphs are handled without recursion.
package history

import (
	"context"
	"strings"
	"time"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// ObjectID is a full lowercase hexadecimal commit hash (SHA-1 or SHA-256).
type ObjectID string

// Hash lengths accepted by ParseObjectID.
const (
	SHA1Length   = 40
	SHA256Length = 64
)

// ParseObjectID validates a full commit hash and normalizes it to lowercase.
func ParseObjectID(s string) (ObjectID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != SHA1Length && len(s) != SHA256Length {
		return "", lhcerrors.Wrapf(lhcerrors.ErrInvalidObjectID, "%q has length %d", s, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", lhcerrors.Wrapf(lhcerrors.ErrInvalidObjectID, "%q", s)
		}
	}
	return ObjectID(s), nil
}

// String returns the full hash.
func (id ObjectID) String() string {
	return string(id)
}

// Short returns the first eight characters of the hash.
func (id ObjectID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Commit is the record an Accessor returns for one commit.
type Commit struct {
	ID      ObjectID
	Parents []ObjectID
	Author  string
	Email   string
	// Date is the committer date.
	Date    time.Time
	Message string
}

// Subject returns the first line of the message.
func (c *Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Accessor is the read-only view of a commit graph the traversals need.
// Implementations used concurrently must be safe for concurrent reads.
type Accessor interface {
	// Parents returns the parent IDs of a commit, in order.
	Parents(ctx context.Context, id ObjectID) ([]ObjectID, error)
	// Commit fetches a commit record.
	Commit(ctx context.Context, id ObjectID) (*Commit, error)
	// Resolve turns a reference (hash, branch, tag, HEAD) into a commit ID.
	Resolve(ctx context.Context, ref string) (ObjectID, error)
}
