package history

import (
	"context"
	"slices"
	"sync"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// MemoryAccessor is an Accessor over commits held in memory. It counts
// lookups per commit, which makes it useful for checking traversal behavior.
// It is safe for concurrent use.
type MemoryAccessor struct {
	mu      sync.RWMutex
	commits map[ObjectID]*Commit
	refs    map[string]ObjectID
	lookups map[ObjectID]int
}

// NewMemoryAccessor returns an accessor holding the given commits.
func NewMemoryAccessor(commits ...*Commit) *MemoryAccessor {
	m := &MemoryAccessor{
		commits: make(map[ObjectID]*Commit, len(commits)),
		refs:    make(map[string]ObjectID),
		lookups: make(map[ObjectID]int),
	}
	for _, c := range commits {
		m.Add(c)
	}
	return m
}

// Add stores or replaces a commit.
func (m *MemoryAccessor) Add(c *Commit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits[c.ID] = c
}

// SetRef points a named reference at a commit.
func (m *MemoryAccessor) SetRef(name string, id ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[name] = id
}

// Lookups returns how many times id was fetched through Commit or Parents.
func (m *MemoryAccessor) Lookups(id ObjectID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookups[id]
}

func (m *MemoryAccessor) get(id ObjectID) (*Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups[id]++
	c, ok := m.commits[id]
	if !ok {
		return nil, lhcerrors.Wrapf(lhcerrors.ErrInvalidReference, "no commit %s", id)
	}
	return c, nil
}

// Parents implements Accessor.
func (m *MemoryAccessor) Parents(_ context.Context, id ObjectID) ([]ObjectID, error) {
	c, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.Parents), nil
}

// Commit implements Accessor.
func (m *MemoryAccessor) Commit(_ context.Context, id ObjectID) (*Commit, error) {
	c, err := m.get(id)
	if err != nil {
		return nil, err
	}
	cp := *c
	cp.Parents = slices.Clone(c.Parents)
	return &cp, nil
}

// Resolve implements Accessor. Known commit IDs resolve to themselves.
func (m *MemoryAccessor) Resolve(_ context.Context, ref string) (ObjectID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.refs[ref]; ok {
		return id, nil
	}
	if _, ok := m.commits[ObjectID(ref)]; ok {
		return ObjectID(ref), nil
	}
	return "", lhcerrors.Wrapf(lhcerrors.ErrInvalidReference, "%q", ref)
}
