package history

import (
	"context"
	"slices"
	"sort"

	"github.com/rs/zerolog"
)

// Predicate selects which commits a traversal returns.
type Predicate func(*Commit) bool

// Traverser runs graph walks against an Accessor. It holds no per-walk state,
// so one Traverser may serve concurrent calls when its Accessor allows it.
type Traverser struct {
	acc    Accessor
	logger zerolog.Logger
}

// Option configures a Traverser.
type Option func(*Traverser)

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Traverser) {
		t.logger = logger
	}
}

// New returns a Traverser over acc.
func New(acc Accessor, opts ...Option) *Traverser {
	t := &Traverser{acc: acc, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Accessor returns the underlying accessor.
func (t *Traverser) Accessor() Accessor {
	return t.acc
}

// CommitsSince returns the commits reachable from leaf that are newer than start.
//
// The walk expands one frontier generation at a time. When a generation
// contains start the walk stops and the commits gathered from earlier
// generations are returned, newest committer date first. Ties keep discovery
// order. The result is date ordered, not topologically ordered.
//
// An empty start returns the whole history of leaf, sorted the same way. A
// non-empty start that is never met fails with a *ReferenceNotFoundError.
// keep, when non-nil, filters the result only: parents of dropped commits are
// still walked.
func (t *Traverser) CommitsSince(ctx context.Context, leaf, start ObjectID, keep Predicate) ([]*Commit, error) {
	seen := make(map[ObjectID]struct{})
	var result []*Commit

	frontier := []ObjectID{leaf}
	for len(frontier) > 0 {
		if start != "" && slices.Contains(frontier, start) {
			t.logger.Debug().
				Str("leaf", leaf.Short()).
				Str("start", start.Short()).
				Int("commits", len(result)).
				Msg("reached start commit")
			sortNewestFirst(result)
			return result, nil
		}

		var next []ObjectID
		for _, id := range frontier {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			c, err := t.acc.Commit(ctx, id)
			if err != nil {
				return nil, &ObjectNotFoundError{ID: id, Err: err}
			}
			if keep == nil || keep(c) {
				result = append(result, c)
			}
			next = append(next, c.Parents...)
		}
		frontier = next
	}

	if start != "" {
		return nil, &ReferenceNotFoundError{Reference: start, Leaf: leaf}
	}

	sortNewestFirst(result)
	return result, nil
}

// IsReachable reports whether target is leaf or one of its ancestors.
// Only parent lists are fetched.
func (t *Traverser) IsReachable(ctx context.Context, target, leaf ObjectID) (bool, error) {
	seen := make(map[ObjectID]struct{})

	frontier := []ObjectID{leaf}
	for len(frontier) > 0 {
		if slices.Contains(frontier, target) {
			return true, nil
		}

		var next []ObjectID
		for _, id := range frontier {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			parents, err := t.acc.Parents(ctx, id)
			if err != nil {
				return false, &ObjectNotFoundError{ID: id, Err: err}
			}
			next = append(next, parents...)
		}
		frontier = next
	}

	t.logger.Debug().
		Str("target", target.Short()).
		Str("leaf", leaf.Short()).
		Int("visited", len(seen)).
		Msg("target not reachable")
	return false, nil
}

// CommitsBetween resolves both references and returns CommitsSince for them.
// An empty since walks the whole history of to.
func (t *Traverser) CommitsBetween(ctx context.Context, since, to string, keep Predicate) ([]*Commit, error) {
	leaf, err := t.acc.Resolve(ctx, to)
	if err != nil {
		return nil, err
	}

	var start ObjectID
	if since != "" {
		if start, err = t.acc.Resolve(ctx, since); err != nil {
			return nil, err
		}
	}

	return t.CommitsSince(ctx, leaf, start, keep)
}

func sortNewestFirst(commits []*Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Date.After(commits[j].Date)
	})
}
